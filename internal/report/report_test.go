package report

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubProfiles struct {
	allow bool
	calls int
}

func (s *stubProfiles) CanViewProfile(viewer domain.Viewer, targetID int64, targetDeleted bool) bool {
	s.calls++
	return s.allow && !targetDeleted
}

func TestColumnsAndHeaders(t *testing.T) {
	t.Parallel()

	cols := Columns()
	keys := make([]string, 0, len(cols))
	for _, col := range cols {
		keys = append(keys, col.Key)
		if col.Sortable != (col.Key == ColumnTimeCreated) {
			t.Fatalf("column %s sortable = %v", col.Key, col.Sortable)
		}
	}
	wantKeys := []string{"s_no", "affected_user", "subject", "message", "timecreated"}
	if !reflect.DeepEqual(keys, wantKeys) {
		t.Fatalf("column keys = %v, want %v", keys, wantKeys)
	}

	headers := Headers(lang.New("en"))
	wantHeaders := []string{"S.No.", "Affected user", "Email subject", "Email message", "Date"}
	if !reflect.DeepEqual(headers, wantHeaders) {
		t.Fatalf("Headers() = %v, want %v", headers, wantHeaders)
	}
}

func TestResolveSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		column    string
		direction string
		want      domain.Sort
		wantErr   bool
	}{
		{name: "default", want: domain.Sort{Column: "timecreated", Direction: domain.SortDesc}},
		{name: "ascending", column: "timecreated", direction: "asc", want: domain.Sort{Column: "timecreated", Direction: domain.SortAsc}},
		{name: "numeric constant", column: "timecreated", direction: "4", want: domain.Sort{Column: "timecreated", Direction: domain.SortAsc}},
		{name: "direction only", direction: "3", want: domain.Sort{Column: "timecreated", Direction: domain.SortDesc}},
		{name: "non sortable column", column: "subject", wantErr: true},
		{name: "affected user not sortable", column: "affected_user", wantErr: true},
		{name: "unknown column", column: "password", wantErr: true},
		{name: "bad direction", column: "timecreated", direction: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveSort(tt.column, tt.direction)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("ResolveSort() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveSort() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ResolveSort() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPaging(t *testing.T) {
	t.Parallel()

	if got := SerialNumber(0, 10, 0); got != 1 {
		t.Fatalf("SerialNumber(0,10,0) = %d, want 1", got)
	}
	if got := SerialNumber(2, 10, 3); got != 24 {
		t.Fatalf("SerialNumber(2,10,3) = %d, want 24", got)
	}

	pageCounts := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 1},
		{5, math.MaxInt, 1},
		{math.MaxInt64, math.MaxInt, 1},
	}
	for _, pc := range pageCounts {
		if got := PageCount(pc.total, pc.size); got != pc.want {
			t.Fatalf("PageCount(%d,%d) = %d, want %d", pc.total, pc.size, got, pc.want)
		}
	}

	if got := ClampPage(7, 3); got != 2 {
		t.Fatalf("ClampPage(7,3) = %d, want 2", got)
	}
	if got := ClampPage(-1, 3); got != 0 {
		t.Fatalf("ClampPage(-1,3) = %d, want 0", got)
	}
	if got := ClampPage(1, 3); got != 1 {
		t.Fatalf("ClampPage(1,3) = %d, want 1", got)
	}
	if got := ClampPage(3, 0); got != 0 {
		t.Fatalf("ClampPage(3,0) = %d, want 0", got)
	}
}

func TestPagingWithHugePageSize(t *testing.T) {
	t.Parallel()

	pages := PageCount(5, math.MaxInt)
	if pages != 1 {
		t.Fatalf("expected a single page, got %d", pages)
	}
	page := ClampPage(3, pages)
	if page != 0 {
		t.Fatalf("expected page clamped to 0, got %d", page)
	}
	if got := SerialNumber(page, math.MaxInt, 4); got != 5 {
		t.Fatalf("expected serial 5 on the only page, got %d", got)
	}
}

func TestSerialNumbersContinuousAcrossPages(t *testing.T) {
	t.Parallel()

	const pageSize = 4
	want := 1
	for page := 0; page < 3; page++ {
		f := NewFormatter(FormatterOptions{Page: page, PageSize: pageSize})
		for i := 0; i < pageSize; i++ {
			row := f.Format(domain.FailureRecord{})
			if row[0].Text != strconv.Itoa(want) {
				t.Fatalf("page %d row %d serial = %s, want %d", page, i, row[0].Text, want)
			}
			want++
		}
	}
}

func TestFormatterRendersCells(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("AWST", 8*60*60)

	profiles := &stubProfiles{allow: true}
	f := NewFormatter(FormatterOptions{
		Profiles: profiles,
		WWWRoot:  "https://lms.example.com/",
		Location: loc,
		Page:     1,
		PageSize: 10,
	})

	row := f.Format(domain.FailureRecord{
		ID:            9,
		RelatedUserID: 42,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Other:         `{"subject":"Welcome","message":"Hello there","toid":42}`,
		TimeCreated:   time.Date(2024, time.March, 4, 6, 5, 0, 0, time.UTC),
	})

	want := Row{
		{Text: "11"},
		{Text: "Ada Lovelace", Link: "https://lms.example.com/user/profile.php?id=42"},
		{Text: "Welcome"},
		{Text: "Hello there"},
		{Text: "Monday, 04 March 2024, 02:05 PM"},
	}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("Format() = %+v, want %+v", row, want)
	}
	if f.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", f.Count())
	}
}

func TestFormatterLinkRules(t *testing.T) {
	t.Parallel()

	record := domain.FailureRecord{RelatedUserID: 5, FirstName: "Grace", LastName: "Hopper"}

	t.Run("no link when profile hidden", func(t *testing.T) {
		t.Parallel()

		f := NewFormatter(FormatterOptions{Profiles: &stubProfiles{allow: false}, WWWRoot: "https://lms"})
		if link := f.Format(record)[1].Link; link != "" {
			t.Fatalf("Link = %q, want empty", link)
		}
	})

	t.Run("no link for deleted user", func(t *testing.T) {
		t.Parallel()

		deleted := record
		deleted.UserDeleted = true
		f := NewFormatter(FormatterOptions{Profiles: &stubProfiles{allow: true}, WWWRoot: "https://lms"})
		if link := f.Format(deleted)[1].Link; link != "" {
			t.Fatalf("Link = %q, want empty", link)
		}
	})

	t.Run("no link while downloading", func(t *testing.T) {
		t.Parallel()

		profiles := &stubProfiles{allow: true}
		f := NewFormatter(FormatterOptions{Profiles: profiles, WWWRoot: "https://lms", Downloading: true, Page: 3, PageSize: 10})
		row := f.Format(record)
		if row[1].Link != "" {
			t.Fatalf("Link = %q, want empty", row[1].Link)
		}
		if row[0].Text != "1" {
			t.Fatalf("download serial = %s, want 1", row[0].Text)
		}
		if profiles.calls != 0 {
			t.Fatalf("profile checks = %d, want 0 while downloading", profiles.calls)
		}
	})
}

func TestFormatterMalformedPayload(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	malformed := 0
	f := NewFormatter(FormatterOptions{
		Logger:      zap.New(core),
		OnMalformed: func() { malformed++ },
	})

	row := f.Format(domain.FailureRecord{ID: 77, FirstName: "Ada", Other: "{not json"})
	if row[2].Text != "" || row[3].Text != "" {
		t.Fatalf("subject/message = %q/%q, want empty", row[2].Text, row[3].Text)
	}
	if row[1].Text != "Ada" {
		t.Fatalf("affected user = %q, want Ada", row[1].Text)
	}
	if malformed != 1 {
		t.Fatalf("malformed hook calls = %d, want 1", malformed)
	}
	if logs.FilterMessage("failed to decode email payload").Len() != 1 {
		t.Fatalf("expected one warn log, got %d entries", logs.Len())
	}
}

func TestRowTexts(t *testing.T) {
	t.Parallel()

	row := Row{{Text: "1"}, {Text: "Ada", Link: "https://lms/user/profile.php?id=1"}}
	if got := row.Texts(); !reflect.DeepEqual(got, []string{"1", "Ada"}) {
		t.Fatalf("Texts() = %v", got)
	}
}

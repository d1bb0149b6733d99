package domain

import (
	"errors"
	"testing"
)

func TestParsePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    EmailPayload
		wantErr bool
	}{
		{
			name:  "subject and message",
			input: `{"toid":5,"fromid":2,"subject":"Welcome","message":"Hello there","errorinfo":"SMTP connect() failed"}`,
			want:  EmailPayload{Subject: "Welcome", Message: "Hello there"},
		},
		{name: "empty payload", input: "", want: EmailPayload{}},
		{name: "json null", input: "null", want: EmailPayload{}},
		{name: "missing message", input: `{"subject":"Only subject"}`, want: EmailPayload{Subject: "Only subject"}},
		{name: "invalid json", input: `{"subject":`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePayload(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParsePayload() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParsePayload() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSortDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    SortDirection
		wantErr bool
	}{
		{input: "asc", want: SortAsc},
		{input: " DESC ", want: SortDesc},
		{input: "4", want: SortAsc},
		{input: "3", want: SortDesc},
		{input: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSortDirection(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("ParseSortDirection(%q) error = %v, want ErrValidation", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseSortDirection(%q) unexpected error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseSortDirection(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFailureRecordAffectedUser(t *testing.T) {
	t.Parallel()

	record := FailureRecord{FirstName: " Ada ", LastName: "Lovelace"}
	if got := record.AffectedUser(); got != "Ada Lovelace" {
		t.Fatalf("AffectedUser() = %q, want %q", got, "Ada Lovelace")
	}

	onlyFirst := FailureRecord{FirstName: "Ada"}
	if got := onlyFirst.AffectedUser(); got != "Ada" {
		t.Fatalf("AffectedUser() = %q, want %q", got, "Ada")
	}
}

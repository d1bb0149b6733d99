// Package report defines the failed emails table: its columns, sorting
// rules and how each log row turns into displayed cells.
package report

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
)

// UniqueID identifies the table in persisted session state.
const UniqueID = "report_failedemails_table"

// Column keys, in display order.
const (
	ColumnSerial       = "s_no"
	ColumnAffectedUser = "affected_user"
	ColumnSubject      = "subject"
	ColumnMessage      = "message"
	ColumnTimeCreated  = "timecreated"
)

// DateTimeLayout matches the platform's "day date time" format.
const DateTimeLayout = "Monday, 02 January 2006, 03:04 PM"

type Column struct {
	Key       string
	HeaderKey string
	Sortable  bool
}

var columns = []Column{
	{Key: ColumnSerial, HeaderKey: lang.SerialNumber},
	{Key: ColumnAffectedUser, HeaderKey: lang.AffectedUser},
	{Key: ColumnSubject, HeaderKey: lang.EmailSubject},
	{Key: ColumnMessage, HeaderKey: lang.EmailMessage},
	{Key: ColumnTimeCreated, HeaderKey: lang.Date, Sortable: true},
}

func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Headers returns the localized column headers in display order.
func Headers(strs *lang.Strings) []string {
	headers := make([]string, 0, len(columns))
	for _, col := range columns {
		headers = append(headers, strs.Get(col.HeaderKey))
	}
	return headers
}

// DefaultSort is newest first.
func DefaultSort() domain.Sort {
	return domain.Sort{Column: repository.SortColumnTimeCreated, Direction: domain.SortDesc}
}

// ResolveSort validates a requested sort against the table's sortable
// columns. An empty column selects the default sort; an empty direction
// keeps the default direction.
func ResolveSort(column string, direction string) (domain.Sort, error) {
	sort := DefaultSort()

	column = strings.TrimSpace(column)
	if column != "" {
		col, ok := lookupColumn(column)
		if !ok || !col.Sortable {
			return domain.Sort{}, fmt.Errorf("%w: column %q is not sortable", domain.ErrValidation, column)
		}
		sort.Column = col.Key
	}

	if strings.TrimSpace(direction) != "" {
		dir, err := domain.ParseSortDirection(direction)
		if err != nil {
			return domain.Sort{}, err
		}
		sort.Direction = dir
	}

	return sort, nil
}

// SerialNumber is the 1-based row counter, continuous across pages.
func SerialNumber(page int, pageSize int, index int) int {
	if page < 0 {
		page = 0
	}
	return page*pageSize + index + 1
}

// PageCount returns ceil(total/pageSize), at least 1 so an empty report
// still renders page 0.
func PageCount(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return int((total-1)/int64(pageSize)) + 1
}

// ClampPage keeps page within [0, pages-1].
func ClampPage(page int, pages int) int {
	if page < 0 || pages <= 0 {
		return 0
	}
	if page >= pages {
		return pages - 1
	}
	return page
}

func lookupColumn(key string) (Column, bool) {
	for _, col := range columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// ProfileURL links to a user's profile page under wwwroot.
func ProfileURL(wwwroot string, userID int64) string {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(userID, 10))
	return strings.TrimRight(wwwroot, "/") + "/user/profile.php?" + q.Encode()
}

// FormatTime renders a log timestamp in the configured zone.
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateTimeLayout)
}

package report

import (
	"strconv"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/access"
	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"go.uber.org/zap"
)

// Cell is one rendered value. Link is set only when the value should be
// shown as a hyperlink.
type Cell struct {
	Text string
	Link string
}

type Row []Cell

// Texts flattens the row to plain strings for export writers.
func (r Row) Texts() []string {
	out := make([]string, len(r))
	for i, cell := range r {
		out[i] = cell.Text
	}
	return out
}

// MalformedPayloadHook is told about each row whose payload could not be
// decoded.
type MalformedPayloadHook func()

type FormatterOptions struct {
	Viewer      domain.Viewer
	Profiles    access.ProfileVisibility
	WWWRoot     string
	Location    *time.Location
	Downloading bool
	Page        int
	PageSize    int
	Logger      *zap.Logger
	OnMalformed MalformedPayloadHook
}

// Formatter turns failure records into rows. It counts rows itself, so a
// Formatter serves exactly one page or one download.
type Formatter struct {
	opts  FormatterOptions
	count int
}

func NewFormatter(opts FormatterOptions) *Formatter {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Downloading {
		opts.Page = 0
	}
	return &Formatter{opts: opts}
}

func (f *Formatter) Format(record domain.FailureRecord) Row {
	serial := SerialNumber(f.opts.Page, f.opts.PageSize, f.count)
	f.count++

	payload, err := domain.ParsePayload(record.Other)
	if err != nil {
		f.opts.Logger.Warn("failed to decode email payload",
			zap.Int64("logId", record.ID),
			zap.Error(err),
		)
		if f.opts.OnMalformed != nil {
			f.opts.OnMalformed()
		}
	}

	return Row{
		{Text: strconv.Itoa(serial)},
		f.affectedUser(record),
		{Text: payload.Subject},
		{Text: payload.Message},
		{Text: FormatTime(record.TimeCreated, f.opts.Location)},
	}
}

// Count is the number of rows formatted so far.
func (f *Formatter) Count() int {
	return f.count
}

func (f *Formatter) affectedUser(record domain.FailureRecord) Cell {
	cell := Cell{Text: record.AffectedUser()}
	if f.opts.Downloading || f.opts.Profiles == nil {
		return cell
	}
	if f.opts.Profiles.CanViewProfile(f.opts.Viewer, record.RelatedUserID, record.UserDeleted) {
		cell.Link = ProfileURL(f.opts.WWWRoot, record.RelatedUserID)
	}
	return cell
}

package handler

import (
	"bufio"
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/export"
	infraredis "github.com/kursadbilgin/failedemails-report/internal/infra/redis"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
	"github.com/kursadbilgin/failedemails-report/internal/observability"
	"github.com/kursadbilgin/failedemails-report/internal/report"
	"github.com/kursadbilgin/failedemails-report/internal/service"
	"go.uber.org/zap"
)

// ReportPath is where the report is mounted.
const ReportPath = "/report/failedemails"

//go:embed templates/*.html
var templateFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templateFS, "templates/report.html"))

type ReportService interface {
	Page(ctx context.Context, req service.PageRequest) (*service.ReportPage, error)
	AllowDownload(ctx context.Context, viewer domain.Viewer) error
	Download(ctx context.Context, req service.DownloadRequest, w io.Writer) (int, error)
	DownloadFilename(format export.Format) string
}

// TableStateStore keeps each session's last sort.
type TableStateStore interface {
	Load(ctx context.Context, sessionID string, table string) (infraredis.TableState, bool, error)
	Save(ctx context.Context, sessionID string, table string, state infraredis.TableState) error
	Reset(ctx context.Context, sessionID string, table string) error
}

type ReportRouteOptions struct {
	AuthHeader string
	Lang       string
	Logger     *zap.Logger
}

type ReportHandler struct {
	service ReportService
	state   TableStateStore
	strings *lang.Strings
	lang    string
	logger  *zap.Logger
}

func NewReportHandler(svc ReportService, state TableStateStore, opts ReportRouteOptions) (*ReportHandler, error) {
	if svc == nil {
		return nil, fmt.Errorf("report service is required")
	}
	if state == nil {
		return nil, fmt.Errorf("table state store is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}

	return &ReportHandler{
		service: svc,
		state:   state,
		strings: lang.New(opts.Lang),
		lang:    opts.Lang,
		logger:  opts.Logger,
	}, nil
}

func RegisterReportRoutes(router fiber.Router, svc ReportService, state TableStateStore, auth Authenticator, opts ReportRouteOptions) error {
	if auth == nil {
		return fmt.Errorf("authenticator is required")
	}
	h, err := NewReportHandler(svc, state, opts)
	if err != nil {
		return err
	}

	router.Get(ReportPath, ViewerMiddleware(auth, opts.AuthHeader), SessionMiddleware(), h.Report)
	return nil
}

// Report renders one page of the failed emails table, or streams the
// whole table when a download format is requested.
func (h *ReportHandler) Report(c *fiber.Ctx) error {
	viewer, ok := viewerFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	ctx := c.UserContext()
	sessionID := sessionFromCtx(c)

	if c.Query("treset") == "1" {
		if err := h.state.Reset(ctx, sessionID, report.UniqueID); err != nil {
			observability.WithContextLogger(h.logger, ctx).Warn("failed to reset table state", zap.Error(err))
		}
	}

	sort, explicit, err := h.resolveSort(ctx, c, sessionID)
	if err != nil {
		return toHTTPError(err)
	}

	if download := strings.TrimSpace(c.Query("download")); download != "" {
		return h.download(c, viewer, sessionID, sort, download)
	}

	page, err := parsePage(c.Query("page"))
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.service.Page(ctx, service.PageRequest{Viewer: viewer, Page: page, Sort: sort})
	if err != nil {
		return toHTTPError(err)
	}

	if explicit {
		h.saveState(ctx, sessionID, sort)
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, h.view(c.Path(), result)); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *ReportHandler) download(c *fiber.Ctx, viewer domain.Viewer, sessionID string, sort domain.Sort, raw string) error {
	ctx := c.UserContext()

	format, err := export.ParseFormat(raw)
	if err != nil {
		return toHTTPError(err)
	}
	if err := h.service.AllowDownload(ctx, viewer); err != nil {
		return toHTTPError(err)
	}

	// Table state is written before the body starts streaming.
	h.saveState(ctx, sessionID, sort)

	filename := h.service.DownloadFilename(format)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, contentDisposition(filename))

	// The stream outlives the handler, so it gets a fresh context that only
	// carries the log fields of this request.
	streamCtx := observability.WithViewerID(
		observability.WithRequestID(context.Background(), requestCorrelationID(c)),
		viewer.User.ID,
	)
	req := service.DownloadRequest{Viewer: viewer, Sort: sort, Format: format}
	svc := h.service
	logger := observability.WithContextLogger(h.logger, streamCtx)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if _, err := svc.Download(streamCtx, req, w); err != nil {
			logger.Error("download stream failed", zap.String("format", format.String()), zap.Error(err))
		}
		if err := w.Flush(); err != nil {
			logger.Warn("failed to flush download", zap.Error(err))
		}
	})
	return nil
}

// resolveSort prefers the query string, then the session's stored state,
// then the table default. explicit is true when the query chose it.
func (h *ReportHandler) resolveSort(ctx context.Context, c *fiber.Ctx, sessionID string) (domain.Sort, bool, error) {
	column := c.Query("tsort")
	direction := c.Query("tdir")
	if column != "" || direction != "" {
		sort, err := report.ResolveSort(column, direction)
		return sort, true, err
	}

	state, ok, err := h.state.Load(ctx, sessionID, report.UniqueID)
	if err != nil {
		observability.WithContextLogger(h.logger, ctx).Warn("failed to load table state", zap.Error(err))
		return report.DefaultSort(), false, nil
	}
	if !ok {
		return report.DefaultSort(), false, nil
	}

	sort, err := report.ResolveSort(state.SortColumn, state.SortDirection.String())
	if err != nil {
		observability.WithContextLogger(h.logger, ctx).Warn("ignoring stale table state", zap.Error(err))
		return report.DefaultSort(), false, nil
	}
	return sort, false, nil
}

func (h *ReportHandler) saveState(ctx context.Context, sessionID string, sort domain.Sort) {
	state := infraredis.TableState{SortColumn: sort.Column, SortDirection: sort.Direction}
	if err := h.state.Save(ctx, sessionID, report.UniqueID, state); err != nil {
		observability.WithContextLogger(h.logger, ctx).Warn("failed to save table state", zap.Error(err))
	}
}

func parsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: page must be a number", domain.ErrValidation)
	}
	if page < 0 {
		return 0, nil
	}
	return page, nil
}

func contentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		strings.ReplaceAll(filename, `"`, ""),
		url.PathEscape(filename),
	)
}

type headerView struct {
	Key       string
	Text      string
	SortURL   string
	Indicator string
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type reportView struct {
	Lang          string
	Title         string
	TableID       string
	Headers       []headerView
	Rows          []report.Row
	Empty         bool
	NoRecords     string
	Pages         int
	PageLinks     []pageLink
	PrevURL       string
	NextURL       string
	PageLabel     string
	PreviousLabel string
	NextLabel     string
	Action        string
	Formats       []export.Format
	DownloadAs    string
	DownloadLabel string
}

func (h *ReportHandler) view(path string, page *service.ReportPage) reportView {
	v := reportView{
		Lang:          h.lang,
		Title:         page.Title,
		TableID:       report.UniqueID,
		Rows:          page.Rows,
		Empty:         page.Total == 0,
		NoRecords:     h.strings.Get(lang.NoRecords),
		Pages:         page.Pages,
		PageLabel:     h.strings.Get(lang.Page),
		PreviousLabel: h.strings.Get(lang.Previous),
		NextLabel:     h.strings.Get(lang.Next),
		Action:        path,
		Formats:       export.Formats(),
		DownloadAs:    h.strings.Get(lang.DownloadAs),
		DownloadLabel: h.strings.Get(lang.Download),
	}

	for i, col := range page.Columns {
		hv := headerView{Key: col.Key, Text: page.Headers[i]}
		if col.Sortable {
			next := domain.SortDesc
			if page.Sort.Column == col.Key {
				if page.Sort.Direction == domain.SortDesc {
					next = domain.SortAsc
					hv.Indicator = "▼"
				} else {
					hv.Indicator = "▲"
				}
			}
			hv.SortURL = pageURL(path, url.Values{
				"tsort": {col.Key},
				"tdir":  {strings.ToLower(next.String())},
			})
		}
		v.Headers = append(v.Headers, hv)
	}

	for p := 0; p < page.Pages; p++ {
		v.PageLinks = append(v.PageLinks, pageLink{
			Number:  p + 1,
			URL:     pageURL(path, url.Values{"page": {strconv.Itoa(p)}}),
			Current: p == page.Page,
		})
	}
	if page.Page > 0 {
		v.PrevURL = pageURL(path, url.Values{"page": {strconv.Itoa(page.Page - 1)}})
	}
	if page.Page < page.Pages-1 {
		v.NextURL = pageURL(path, url.Values{"page": {strconv.Itoa(page.Page + 1)}})
	}

	return v
}

func pageURL(path string, values url.Values) string {
	return path + "?" + values.Encode()
}

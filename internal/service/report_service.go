package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/access"
	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/export"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
	"github.com/kursadbilgin/failedemails-report/internal/observability"
	"github.com/kursadbilgin/failedemails-report/internal/ratelimit"
	"github.com/kursadbilgin/failedemails-report/internal/report"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
	"github.com/kursadbilgin/failedemails-report/internal/settings"
	"go.uber.org/zap"
)

// PageSizer resolves how many rows one report page shows.
type PageSizer interface {
	ItemsPerPage(ctx context.Context) (int, error)
}

type ReportConfig struct {
	WWWRoot  string
	Location *time.Location
}

type ReportService struct {
	failures repository.FailureRepository
	pageSize PageSizer
	profiles access.ProfileVisibility
	limiter  ratelimit.RateLimiter
	strings  *lang.Strings
	metrics  *observability.Metrics
	cfg      ReportConfig
	logger   *zap.Logger
}

type PageRequest struct {
	Viewer domain.Viewer
	Page   int
	Sort   domain.Sort
}

// ReportPage is one rendered page of the report.
type ReportPage struct {
	Title    string
	Headers  []string
	Columns  []report.Column
	Rows     []report.Row
	Total    int64
	Page     int
	PageSize int
	Pages    int
	Sort     domain.Sort
}

type DownloadRequest struct {
	Viewer domain.Viewer
	Sort   domain.Sort
	Format export.Format
}

func NewReportService(
	failures repository.FailureRepository,
	pageSize PageSizer,
	profiles access.ProfileVisibility,
	limiter ratelimit.RateLimiter,
	strs *lang.Strings,
	metrics *observability.Metrics,
	cfg ReportConfig,
	logger *zap.Logger,
) (*ReportService, error) {
	if failures == nil {
		return nil, fmt.Errorf("failure repository is required")
	}
	if pageSize == nil {
		return nil, fmt.Errorf("page size resolver is required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile visibility is required")
	}
	if strs == nil {
		strs = lang.New("en")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReportService{
		failures: failures,
		pageSize: pageSize,
		profiles: profiles,
		limiter:  limiter,
		strings:  strs,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Page counts the failed emails, clamps the requested page into range and
// formats the rows on it.
func (s *ReportService) Page(ctx context.Context, req PageRequest) (*ReportPage, error) {
	if err := access.RequireReport(req.Viewer); err != nil {
		s.metrics.IncReportView("forbidden")
		return nil, err
	}

	pageSize, err := s.pageSize.ItemsPerPage(ctx)
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Warn("falling back to default page size", zap.Error(err))
	}
	if pageSize <= 0 {
		pageSize = settings.DefaultItemsPerPage
	}

	start := time.Now()
	total, err := s.failures.Count(ctx)
	s.metrics.ObserveQueryDuration("count", time.Since(start))
	if err != nil {
		s.metrics.IncReportView("error")
		return nil, err
	}

	pages := report.PageCount(total, pageSize)
	page := report.ClampPage(req.Page, pages)

	start = time.Now()
	records, err := s.failures.List(ctx, req.Sort, page*pageSize, pageSize)
	s.metrics.ObserveQueryDuration("list", time.Since(start))
	if err != nil {
		s.metrics.IncReportView("error")
		return nil, err
	}

	formatter := s.newFormatter(req.Viewer, false, page, pageSize)
	rows := make([]report.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, formatter.Format(record))
	}

	s.metrics.IncReportView("ok")
	return &ReportPage{
		Title:    s.strings.Get(lang.FailedEmailsReport),
		Headers:  report.Headers(s.strings),
		Columns:  report.Columns(),
		Rows:     rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
		Sort:     req.Sort,
	}, nil
}

// AllowDownload applies the per-viewer download rate limit.
func (s *ReportService) AllowDownload(ctx context.Context, viewer domain.Viewer) error {
	if err := access.RequireReport(viewer); err != nil {
		return err
	}
	if s.limiter == nil {
		return nil
	}

	allowed, err := s.limiter.Allow(ctx, "user:"+strconv.FormatInt(viewer.User.ID, 10))
	if err != nil {
		return fmt.Errorf("failed to check download rate limit: %w", err)
	}
	if !allowed {
		s.metrics.IncDownloadRateLimited()
		return fmt.Errorf("%w: too many downloads, try again later", domain.ErrRateLimited)
	}
	return nil
}

// Download streams every failed email to w in the requested format and
// returns the number of rows written.
func (s *ReportService) Download(ctx context.Context, req DownloadRequest, w io.Writer) (int, error) {
	if err := access.RequireReport(req.Viewer); err != nil {
		return 0, err
	}

	writer, err := export.NewWriter(req.Format, w)
	if err != nil {
		return 0, err
	}
	if err := writer.Start(s.SheetTitle(), report.Headers(s.strings)); err != nil {
		return 0, err
	}

	formatter := s.newFormatter(req.Viewer, true, 0, 0)
	start := time.Now()
	err = s.failures.Stream(ctx, req.Sort, func(record domain.FailureRecord) error {
		return writer.WriteRow(formatter.Format(record).Texts())
	})
	s.metrics.ObserveQueryDuration("stream", time.Since(start))
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("download aborted",
			zap.String("format", req.Format.String()),
			zap.Int("rows", formatter.Count()),
			zap.Error(err),
		)
		return formatter.Count(), fmt.Errorf("failed to stream download: %w", err)
	}

	if err := writer.Finish(); err != nil {
		return formatter.Count(), err
	}

	s.metrics.IncDownload(req.Format.String())
	s.metrics.AddDownloadRows(req.Format.String(), formatter.Count())
	observability.WithContextLogger(s.logger, ctx).Info("report downloaded",
		zap.String("format", req.Format.String()),
		zap.Int("rows", formatter.Count()),
	)
	return formatter.Count(), nil
}

// DownloadFilename is the attachment name offered for a format.
func (s *ReportService) DownloadFilename(format export.Format) string {
	return format.Filename(s.strings.Get(lang.FailedEmailsReport))
}

// SheetTitle names the exported sheet or document.
func (s *ReportService) SheetTitle() string {
	return s.strings.Get(lang.PluginName)
}

func (s *ReportService) newFormatter(viewer domain.Viewer, downloading bool, page int, pageSize int) *report.Formatter {
	return report.NewFormatter(report.FormatterOptions{
		Viewer:      viewer,
		Profiles:    s.profiles,
		WWWRoot:     s.cfg.WWWRoot,
		Location:    s.cfg.Location,
		Downloading: downloading,
		Page:        page,
		PageSize:    pageSize,
		Logger:      s.logger,
		OnMalformed: s.metrics.IncMalformedPayload,
	})
}

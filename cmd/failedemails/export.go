package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kursadbilgin/failedemails-report/internal/access"
	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/export"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
	"github.com/kursadbilgin/failedemails-report/internal/service"
	"github.com/kursadbilgin/failedemails-report/internal/settings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exportOptions struct {
	format    string
	output    string
	sort      string
	direction string
}

func exportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full report to a file",
		Long: `Write every failed email to a file without going through HTTP.

The export runs as the site, so affected users are never linked.
Use --output - to write to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			return runExport(cmd, rt, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", string(export.FormatCSV), "Download format: csv, excel, json or html")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file (default: report name with the format's extension)")
	cmd.Flags().StringVar(&opts.sort, "sort", repository.SortColumnTimeCreated, "Sort column: timecreated or affected_user")
	cmd.Flags().StringVar(&opts.direction, "dir", "desc", "Sort direction: asc or desc")

	return cmd
}

func parseExportOptions(opts exportOptions) (export.Format, domain.Sort, error) {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return "", domain.Sort{}, err
	}
	direction, err := domain.ParseSortDirection(opts.direction)
	if err != nil {
		return "", domain.Sort{}, err
	}
	sort := domain.Sort{Column: opts.sort, Direction: direction}
	if err := repository.ValidateSort(sort); err != nil {
		return "", domain.Sort{}, err
	}
	return format, sort, nil
}

// writeOutput runs write against stdout for "-" and against a new file
// otherwise. The file's close error is returned when the write succeeded.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) (err error) {
	if path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return write(f)
}

func runExport(cmd *cobra.Command, rt *runtime, opts exportOptions) error {
	format, sort, err := parseExportOptions(opts)
	if err != nil {
		return err
	}

	loc, err := rt.cfg.Location()
	if err != nil {
		return err
	}

	// Offline exports read settings straight from the database.
	settingsSvc, err := settings.NewService(repository.NewGormConfigRepo(rt.db), nil, rt.logger)
	if err != nil {
		return err
	}
	users := repository.NewGormUserRepo(rt.db)
	policy, err := access.NewPolicy(users, access.Options{ForceLoginForProfiles: rt.cfg.ForceLoginForProfiles})
	if err != nil {
		return err
	}

	svc, err := service.NewReportService(
		repository.NewGormFailureRepo(rt.db),
		settingsSvc,
		policy,
		nil,
		lang.New(rt.cfg.Lang),
		nil,
		service.ReportConfig{WWWRoot: rt.cfg.WWWRoot, Location: loc},
		rt.logger,
	)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = svc.DownloadFilename(format)
	}

	var rows int
	err = writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		var err error
		rows, err = svc.Download(cmd.Context(), service.DownloadRequest{
			Viewer: access.SystemViewer(),
			Sort:   sort,
			Format: format,
		}, w)
		return err
	})
	if err != nil {
		return err
	}

	rt.logger.Info("report exported",
		zap.String("format", format.String()),
		zap.String("output", output),
		zap.Int("rows", rows),
	)
	return nil
}

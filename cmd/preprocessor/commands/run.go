package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openmaine/budget-preprocessor/cmd/preprocessor/ui"
	"github.com/openmaine/budget-preprocessor/internal/artifact"
	"github.com/openmaine/budget-preprocessor/internal/config"
	"github.com/openmaine/budget-preprocessor/internal/extract"
	"github.com/openmaine/budget-preprocessor/internal/history"
	"github.com/openmaine/budget-preprocessor/internal/observability"
	"github.com/openmaine/budget-preprocessor/internal/pdf"
	"github.com/openmaine/budget-preprocessor/internal/pipeline"
	"github.com/openmaine/budget-preprocessor/internal/transform"
	"github.com/openmaine/budget-preprocessor/internal/validate"
)

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ui.Init(noColor, verbose)

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: cfg.Logging.Format,
	})

	mode := selectedMode()
	ui.Section("Budget Preprocessing")
	ui.Info("Mode: %s", mode)
	ui.Info("Budget PDFs: %s", cfg.Sources.BudgetDir)
	ui.Info("Revenue PDFs: %s", cfg.Sources.RevenueDir)
	ui.Info("Output root: %s", cfg.Output.Root)
	ui.Newline()

	var mapping *transform.DepartmentMapping
	if cfg.Mapping.DepartmentCSV != "" {
		mapping, err = transform.LoadDepartmentMapping(cfg.Mapping.DepartmentCSV)
		if err != nil {
			return fmt.Errorf("load department mapping: %w", err)
		}
		ui.Verbose("department mapping loaded from %s", cfg.Mapping.DepartmentCSV)
	}

	extractor := extract.NewExtractor(pdf.NewReader(), cfg.Budget.EndPage)
	transformer := transform.NewTransformer(mapping)
	validator := validate.NewValidator(
		&pipeline.Chain{Extractor: extractor, Transformer: transformer},
		cfg.Validation.Tolerance(),
	)
	writer := artifact.NewWriter(cfg.BudgetOutputDir(), cfg.RevenueOutputDir(), cfg.PositionsOutputDir())
	loader := artifact.NewLoader(cfg.BudgetOutputDir(), cfg.RevenueOutputDir(), cfg.PositionsOutputDir())

	// The spinner covers discovery and the first file; the progress bar
	// takes over once the file count is known.
	scan := ui.NewSpinner("Scanning source directories")
	var bar *ui.ProgressBar
	driver := pipeline.NewDriver(pipeline.Deps{
		Logger:      logger,
		Extractor:   extractor,
		Transformer: transformer,
		Validator:   validator,
		Writer:      writer,
		Loader:      loader,
		BudgetDir:   cfg.Sources.BudgetDir,
		RevenueDir:  cfg.Sources.RevenueDir,
		OnProgress: func(done, total int) {
			if bar == nil {
				scan.Stop()
				bar = ui.NewProgressBar(int64(total), "Processing")
			}
			bar.Set(int64(done))
		},
	})

	scan.Start()
	report, err := driver.Run(ctx, mode)
	scan.Stop()
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	recordHistory(ctx, cfg, report)
	printSummary(report)

	if !report.Success() {
		return fmt.Errorf("%d of %d files failed", report.Failed(), report.Processed())
	}
	ui.Success("All %d files processed", report.Processed())
	return nil
}

// recordHistory persists the run outcome when a history database is
// configured. Failure to record never fails the run.
func recordHistory(ctx context.Context, cfg *config.Config, report *pipeline.RunReport) {
	if cfg.History.SQLitePath == "" {
		return
	}
	store, err := history.Open(cfg.History.SQLitePath)
	if err != nil {
		ui.Warning("run history unavailable: %v", err)
		return
	}
	defer store.Close()
	if err := store.RecordRun(ctx, report); err != nil {
		ui.Warning("could not record run: %v", err)
	}
}

func printSummary(report *pipeline.RunReport) {
	ui.Section("Run Summary")

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rows = append(rows, []string{
			o.Document.Path,
			string(o.Document.Family),
			string(o.Stage),
			string(o.Status),
			outcomeDetail(o),
		})
	}
	ui.Table([]string{"File", "Family", "Stage", "Status", "Detail"}, rows)

	ui.Newline()
	ui.Info("processed=%d succeeded=%d failed=%d skipped=%d",
		report.Processed(), report.Succeeded(), report.Failed(), report.Skipped())
}

func outcomeDetail(o pipeline.FileOutcome) string {
	switch {
	case o.Err != "":
		return o.Err
	case o.Status == pipeline.StatusMismatch && o.Validation != nil:
		parts := make([]string, 0, len(o.Validation.Discrepancies))
		for _, d := range o.Validation.Discrepancies {
			parts = append(parts, d.Field+": expected "+d.Expected+", got "+d.Actual)
		}
		return strings.Join(parts, "; ")
	case o.ArtifactPath != "":
		return o.ArtifactPath
	case o.Validation != nil:
		return strconv.Itoa(o.Validation.ActualRows) + " rows"
	default:
		return ""
	}
}

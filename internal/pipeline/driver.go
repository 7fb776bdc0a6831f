// Package pipeline drives the per-file extract, transform, validate, write
// sequence over the discovered source documents and aggregates the run
// report. Files are processed sequentially and independently: one malformed
// PDF never blocks the rest of the run.
package pipeline

import (
	"context"
	"time"

	"github.com/openmaine/budget-preprocessor/internal/artifact"
	"github.com/openmaine/budget-preprocessor/internal/domain"
	"github.com/openmaine/budget-preprocessor/internal/observability"
	"github.com/openmaine/budget-preprocessor/internal/validate"
)

// Extractor produces a raw table from a source document.
type Extractor interface {
	Extract(ctx context.Context, doc domain.SourceDocument) (*domain.RawTable, error)
}

// Transformer normalizes a raw table.
type Transformer interface {
	Transform(raw *domain.RawTable, doc domain.SourceDocument) (*domain.NormalizedTable, error)
}

// Validator compares a table against aggregates re-derived from the PDF.
type Validator interface {
	Validate(ctx context.Context, doc domain.SourceDocument, table *domain.NormalizedTable) (*validate.Report, error)
}

// Writer persists a normalized table as its family's artifact.
type Writer interface {
	Write(table *domain.NormalizedTable) (string, error)
}

// Loader loads a previously written artifact, used by validate-only runs.
type Loader interface {
	Load(family domain.Family, period string) (*domain.NormalizedTable, error)
}

// Chain implements validate.TableDeriver by running extraction and
// transformation, so the validator's trusted aggregates come straight from
// the source PDF.
type Chain struct {
	Extractor   Extractor
	Transformer Transformer
}

// Derive re-derives the normalized table for a document.
func (c *Chain) Derive(ctx context.Context, doc domain.SourceDocument) (*domain.NormalizedTable, error) {
	raw, err := c.Extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	return c.Transformer.Transform(raw, doc)
}

// Deps wires the driver's collaborators. Everything is an interface so runs
// can be exercised without real PDFs.
type Deps struct {
	Logger      *observability.Logger
	Extractor   Extractor
	Transformer Transformer
	Validator   Validator
	Writer      Writer
	Loader      Loader
	BudgetDir   string
	RevenueDir  string
	// OnProgress, when set, is called after each file completes.
	OnProgress func(done, total int)
}

// Driver runs the preprocessing pipeline.
type Driver struct {
	deps Deps
}

// NewDriver creates a driver.
func NewDriver(deps Deps) *Driver {
	if deps.Logger == nil {
		deps.Logger = observability.Nop()
	}
	return &Driver{deps: deps}
}

// Run processes every document matching the mode and returns the run
// report. A per-file failure is recorded and the run continues; only
// discovery problems or context cancellation abort the run itself.
func (d *Driver) Run(ctx context.Context, mode Mode) (*RunReport, error) {
	report := NewRunReport(mode)

	docs, err := d.discoverForMode(mode)
	if err != nil {
		d.deps.Logger.WithStage(string(StageDiscover)).Error().Err(err).Msg("run aborted")
		return nil, err
	}

	d.deps.Logger.Info().
		Str("mode", string(mode)).
		Int("files", len(docs)).
		Msg("run started")

	for i, doc := range docs {
		if ctx.Err() != nil {
			report.FinishedAt = time.Now()
			return report, ctx.Err()
		}

		var outcome FileOutcome
		if mode == ModeValidateOnly {
			outcome = d.validateExisting(ctx, doc)
		} else {
			outcome = d.processOne(ctx, doc)
		}
		report.add(outcome)

		if d.deps.OnProgress != nil {
			d.deps.OnProgress(i+1, len(docs))
		}
	}

	report.FinishedAt = time.Now()
	d.logSummary(report)
	return report, nil
}

func (d *Driver) discoverForMode(mode Mode) ([]domain.SourceDocument, error) {
	var docs []domain.SourceDocument

	appendFamily := func(found []domain.SourceDocument, err error) error {
		if err != nil {
			return err
		}
		docs = append(docs, found...)
		return nil
	}

	includeBudget := mode == ModeAll || mode == ModeBudget || mode == ModeValidateOnly
	includeRevenue := mode == ModeAll || mode == ModeRevenue || mode == ModeValidateOnly
	includePositions := mode == ModeAll || mode == ModePositions || mode == ModeValidateOnly

	if includeBudget {
		if err := appendFamily(DiscoverBudget(d.deps.BudgetDir)); err != nil {
			return nil, err
		}
	}
	if includeRevenue {
		if err := appendFamily(DiscoverRevenue(d.deps.RevenueDir)); err != nil {
			return nil, err
		}
	}
	if includePositions {
		if err := appendFamily(DiscoverPositions(d.deps.BudgetDir)); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// processOne runs extract, transform, validate, write for one document.
// Stage errors end the file's processing; a validation mismatch blocks the
// write so a bad table never overwrites a good artifact.
func (d *Driver) processOne(ctx context.Context, doc domain.SourceDocument) FileOutcome {
	log := d.deps.Logger.WithFile(doc.Path)

	raw, err := d.deps.Extractor.Extract(ctx, doc)
	if err != nil {
		log.WithStage(string(StageExtract)).Error().Err(err).Msg("file failed")
		return failed(doc, StageExtract, err)
	}

	table, err := d.deps.Transformer.Transform(raw, doc)
	if err != nil {
		log.WithStage(string(StageTransform)).Error().Err(err).Msg("file failed")
		return failed(doc, StageTransform, err)
	}

	vr, err := d.deps.Validator.Validate(ctx, doc, table)
	if err != nil {
		log.WithStage(string(StageValidate)).Error().Err(err).Msg("file failed")
		return failed(doc, StageValidate, err)
	}
	if !vr.Pass {
		d.logMismatch(log, vr)
		return FileOutcome{Document: doc, Stage: StageValidate, Status: StatusMismatch, Validation: vr}
	}

	path, err := d.deps.Writer.Write(table)
	if err != nil {
		log.WithStage(string(StageWrite)).Error().Err(err).Msg("file failed")
		return failed(doc, StageWrite, err)
	}

	log.Info().
		Str("artifact", path).
		Int("rows", table.RowCount()).
		Str("sum", table.AmountSum().String()).
		Msg("artifact written")
	return FileOutcome{
		Document:     doc,
		Stage:        StageWrite,
		Status:       StatusWritten,
		Validation:   vr,
		ArtifactPath: path,
	}
}

// validateExisting compares the artifact already on disk against aggregates
// re-derived from the source PDF. Nothing is written in this mode.
func (d *Driver) validateExisting(ctx context.Context, doc domain.SourceDocument) FileOutcome {
	log := d.deps.Logger.WithFile(doc.Path)

	table, err := d.deps.Loader.Load(doc.Family, doc.Period)
	if err != nil {
		if artifact.LoadKindOf(err) == artifact.LoadMissing {
			log.Debug().Msg("no artifact to validate")
			return FileOutcome{Document: doc, Stage: StageValidate, Status: StatusSkipped, Err: err.Error()}
		}
		log.WithStage(string(StageValidate)).Error().Err(err).Msg("artifact unreadable")
		return failed(doc, StageValidate, err)
	}

	vr, err := d.deps.Validator.Validate(ctx, doc, table)
	if err != nil {
		log.WithStage(string(StageValidate)).Error().Err(err).Msg("file failed")
		return failed(doc, StageValidate, err)
	}
	if !vr.Pass {
		d.logMismatch(log, vr)
		return FileOutcome{Document: doc, Stage: StageValidate, Status: StatusMismatch, Validation: vr}
	}

	log.Info().Int("rows", vr.ActualRows).Msg("artifact validated")
	return FileOutcome{Document: doc, Stage: StageValidate, Status: StatusValidated, Validation: vr}
}

func (d *Driver) logMismatch(log *observability.Logger, vr *validate.Report) {
	evt := log.Warn().
		Int("expected_rows", vr.ExpectedRows).
		Int("actual_rows", vr.ActualRows).
		Str("expected_sum", vr.ExpectedSum.String()).
		Str("actual_sum", vr.ActualSum.String())
	for _, disc := range vr.Discrepancies {
		evt = evt.Str("discrepancy:"+disc.Field, disc.Expected+" != "+disc.Actual)
	}
	evt.Msg("validation mismatch, artifact not written")
}

func (d *Driver) logSummary(report *RunReport) {
	d.deps.Logger.Info().
		Str("mode", string(report.Mode)).
		Int("processed", report.Processed()).
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Int("skipped", report.Skipped()).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("run finished")
}

func failed(doc domain.SourceDocument, stage Stage, err error) FileOutcome {
	return FileOutcome{Document: doc, Stage: stage, Status: StatusFailed, Err: err.Error()}
}

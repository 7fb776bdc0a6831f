package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmaine/budget-preprocessor/internal/domain"
	"github.com/openmaine/budget-preprocessor/internal/validate"
)

// Mode selects which document families a run processes and whether
// artifacts are written.
type Mode string

const (
	ModeAll          Mode = "all"
	ModeBudget       Mode = "budget-only"
	ModeRevenue      Mode = "revenue-only"
	ModePositions    Mode = "positions-only"
	ModeValidateOnly Mode = "validate-only"
)

// Stage names the pipeline stage a file reached.
type Stage string

const (
	StageDiscover  Stage = "discover"
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageValidate  Stage = "validate"
	StageWrite     Stage = "write"
)

// FileStatus is the terminal status of one file's processing.
type FileStatus string

const (
	// StatusWritten: artifact written after passing validation.
	StatusWritten FileStatus = "written"
	// StatusValidated: validation passed in validate-only mode; no write.
	StatusValidated FileStatus = "validated"
	// StatusMismatch: validation failed beyond tolerance; write blocked.
	StatusMismatch FileStatus = "validation-mismatch"
	// StatusFailed: a stage returned a hard error.
	StatusFailed FileStatus = "failed"
	// StatusSkipped: nothing to do for this file in this mode (for example
	// no artifact exists yet in validate-only mode).
	StatusSkipped FileStatus = "skipped"
)

// FileOutcome records how far one source document got and how it ended.
type FileOutcome struct {
	Document     domain.SourceDocument
	Stage        Stage
	Status       FileStatus
	Err          string
	Validation   *validate.Report
	ArtifactPath string
}

// RunReport aggregates per-file outcomes for one invocation. It exists only
// for the duration of the run: it drives the exit code, the log summary,
// and the optional history record.
type RunReport struct {
	ID         uuid.UUID
	Mode       Mode
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []FileOutcome
}

// NewRunReport creates an empty report for a run starting now.
func NewRunReport(mode Mode) *RunReport {
	return &RunReport{
		ID:        uuid.New(),
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

func (r *RunReport) add(o FileOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Processed returns the number of files the run looked at.
func (r *RunReport) Processed() int { return len(r.Outcomes) }

// Succeeded counts files that wrote an artifact or validated cleanly.
func (r *RunReport) Succeeded() int {
	return r.count(StatusWritten) + r.count(StatusValidated)
}

// Failed counts hard failures and validation mismatches.
func (r *RunReport) Failed() int {
	return r.count(StatusFailed) + r.count(StatusMismatch)
}

// Skipped counts files with nothing to do in this mode.
func (r *RunReport) Skipped() int { return r.count(StatusSkipped) }

func (r *RunReport) count(s FileStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Success reports whether the run as a whole succeeded: every file either
// completed or was skipped by explicit mode. Any hard error or uncorrected
// validation failure makes the run fail while the other files still get
// processed.
func (r *RunReport) Success() bool {
	return r.Failed() == 0
}

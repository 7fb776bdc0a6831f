// Package artifact serializes normalized tables to their family's artifact
// format and loads them back, classifying load failures for the consumer's
// fallback contract. Budgets are written as Parquet, revenue and positions
// as JSON objects.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// schemaVersion is embedded in object artifacts so consumers can detect
// schema drift as a schema-mismatch rather than a decode failure.
const schemaVersion = 1

// Writer serializes normalized tables to conventionally named artifact
// paths, atomically.
type Writer struct {
	budgetDir    string
	revenueDir   string
	positionsDir string
}

// NewWriter creates a writer over the three family output directories.
func NewWriter(budgetDir, revenueDir, positionsDir string) *Writer {
	return &Writer{
		budgetDir:    budgetDir,
		revenueDir:   revenueDir,
		positionsDir: positionsDir,
	}
}

// BudgetArtifactPath returns the conventional budget artifact path.
func BudgetArtifactPath(dir, period string) string {
	return filepath.Join(dir, period+"_budget.parquet")
}

// RevenueArtifactPath returns the conventional revenue artifact path.
func RevenueArtifactPath(dir, year string) string {
	return filepath.Join(dir, "revenue_"+year+".json")
}

// PositionsArtifactPath returns the conventional positions artifact path.
func PositionsArtifactPath(dir, period string) string {
	return filepath.Join(dir, period+"_positions.json")
}

// Write serializes the table to its family's artifact path and returns that
// path. The write is atomic with respect to partial failure: content goes to
// a temporary file in the target directory which is then renamed over the
// canonical path, so a crash mid-write never leaves a corrupted artifact
// where the consumer expects a loadable one.
func (w *Writer) Write(table *domain.NormalizedTable) (string, error) {
	var (
		path   string
		encode func(io.Writer) error
	)

	switch table.Family {
	case domain.FamilyBudget:
		path = BudgetArtifactPath(w.budgetDir, table.Period)
		encode = func(out io.Writer) error { return encodeBudgetParquet(out, table) }
	case domain.FamilyRevenue:
		path = RevenueArtifactPath(w.revenueDir, table.Period)
		encode = func(out io.Writer) error { return encodeObjectJSON(out, table) }
	case domain.FamilyPositions:
		path = PositionsArtifactPath(w.positionsDir, table.Period)
		encode = func(out io.Writer) error { return encodeObjectJSON(out, table) }
	default:
		return "", domain.WriteError(fmt.Sprintf("unknown artifact family %q", table.Family), nil)
	}

	if err := writeAtomic(path, encode); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes via a temp file in the same directory followed by a
// rename, the only replace primitive that is atomic on the filesystems the
// output directory lives on.
func writeAtomic(path string, encode func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.WriteError("create artifact directory "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return domain.WriteError("create temporary artifact file in "+dir, err)
	}
	tmpPath := tmp.Name()

	if err := encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return domain.WriteError("serialize artifact "+path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return domain.WriteError("sync artifact "+path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return domain.WriteError("close temporary artifact file "+tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return domain.WriteError("replace artifact "+path, err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		return domain.WriteError("chmod artifact "+path, err)
	}
	return nil
}

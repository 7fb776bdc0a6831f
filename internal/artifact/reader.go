package artifact

import (
	"errors"
	"fmt"
	"os"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// LoadErrorKind enumerates the artifact load failure kinds the consumer's
// fallback contract is defined over: any of these means "treat as a cache
// miss and extract from the PDF on demand".
type LoadErrorKind string

const (
	LoadMissing        LoadErrorKind = "missing"
	LoadCorrupt        LoadErrorKind = "corrupt"
	LoadSchemaMismatch LoadErrorKind = "schema-mismatch"
)

// LoadError classifies why an artifact could not be loaded.
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifact %s (%s): %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("artifact %s (%s)", e.Path, e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadKindOf returns the load failure kind of err, or "" when err is not a
// LoadError.
func LoadKindOf(err error) LoadErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// LoadBudget loads a budget Parquet artifact.
func LoadBudget(path string) (*domain.NormalizedTable, error) {
	if err := classifyMissing(path); err != nil {
		return nil, err
	}
	table, err := decodeBudgetParquet(path)
	if err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Path: path, Err: err}
	}
	return table, nil
}

// LoadRevenue loads a revenue JSON artifact.
func LoadRevenue(path string) (*domain.NormalizedTable, error) {
	return loadObject(path, domain.FamilyRevenue)
}

// LoadPositions loads a positions JSON artifact.
func LoadPositions(path string) (*domain.NormalizedTable, error) {
	return loadObject(path, domain.FamilyPositions)
}

func loadObject(path string, family domain.Family) (*domain.NormalizedTable, error) {
	if err := classifyMissing(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Path: path, Err: err}
	}
	defer f.Close()

	table, err := decodeObjectJSON(f, family)
	if err != nil {
		kind := LoadCorrupt
		var se *schemaError
		if errors.As(err, &se) {
			kind = LoadSchemaMismatch
		}
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}
	return table, nil
}

func classifyMissing(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &LoadError{Kind: LoadMissing, Path: path, Err: err}
		}
		return &LoadError{Kind: LoadCorrupt, Path: path, Err: err}
	}
	return nil
}

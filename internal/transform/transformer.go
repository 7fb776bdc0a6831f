// Package transform normalizes raw extracted tables into typed tables:
// formatting artifacts stripped, amounts parsed exactly, the period assigned
// to every row, and family-specific subtotal rows derived. Transformation is
// deterministic: the same raw table and metadata always produce the same
// normalized table.
package transform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// Transformer converts raw tables into normalized tables.
type Transformer struct {
	mapping *DepartmentMapping
}

// NewTransformer creates a transformer. The department mapping may be nil,
// in which case budget categories fall back to the department name.
func NewTransformer(mapping *DepartmentMapping) *Transformer {
	return &Transformer{mapping: mapping}
}

// Transform produces exactly one normalized table from a raw table, or fails
// with a transform error on schema mismatch: unexpected column count,
// unresolvable numeric cell, or duplicate key. Parse failures are never
// silently zeroed.
func (t *Transformer) Transform(raw *domain.RawTable, doc domain.SourceDocument) (*domain.NormalizedTable, error) {
	if raw.Family != doc.Family {
		return nil, domain.TransformError(
			fmt.Sprintf("raw table family %q does not match document family %q", raw.Family, doc.Family), nil)
	}

	switch doc.Family {
	case domain.FamilyBudget:
		return t.transformBudget(raw, doc)
	case domain.FamilyRevenue:
		return t.transformRevenue(raw, doc)
	case domain.FamilyPositions:
		return t.transformPositions(raw, doc)
	default:
		return nil, domain.TransformError(fmt.Sprintf("unknown document family %q", doc.Family), nil)
	}
}

// resolveAmount resolves a tagged cell to an exact decimal amount. Currency
// symbols, thousands separators, and parenthesized negatives are stripped
// before parsing.
func resolveAmount(c domain.Cell) (decimal.Decimal, error) {
	if c.Kind != domain.CellNumeric {
		return decimal.Zero, fmt.Errorf("cell %q is not numeric", c.Raw)
	}
	s := strings.TrimSpace(c.Raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable numeric cell %q: %w", c.Raw, err)
	}
	return d, nil
}

// resolveNullable resolves a cell that may legitimately be blank. Empty
// cells become null; text cells are still an error.
func resolveNullable(c domain.Cell) (decimal.NullDecimal, error) {
	if c.Kind == domain.CellEmpty {
		return decimal.NullDecimal{}, nil
	}
	d, err := resolveAmount(c)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func textCell(c domain.Cell) (string, error) {
	if c.Kind != domain.CellText || strings.TrimSpace(c.Raw) == "" {
		return "", fmt.Errorf("expected text cell, got %q", c.Raw)
	}
	return strings.TrimSpace(c.Raw), nil
}

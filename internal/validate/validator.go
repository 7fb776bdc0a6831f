// Package validate recomputes trusted aggregates directly from the source
// PDF and compares them to the transformed table. Mismatches are reported,
// never raised: a failed comparison lands on the report and the driver
// decides whether to skip the write.
package validate

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// TableDeriver re-derives a normalized table from a source document. The
// driver wires in the same extract+transform chain, so validation derives
// its trusted values from the PDF itself rather than from the table under
// test.
type TableDeriver interface {
	Derive(ctx context.Context, doc domain.SourceDocument) (*domain.NormalizedTable, error)
}

// Discrepancy is one expected/actual disagreement.
type Discrepancy struct {
	Field    string
	Expected string
	Actual   string
}

// Report is the per-document validation outcome.
type Report struct {
	Document      domain.SourceDocument
	ExpectedRows  int
	ActualRows    int
	ExpectedSum   decimal.Decimal
	ActualSum     decimal.Decimal
	Pass          bool
	Discrepancies []Discrepancy
}

// Validator compares transformed tables against re-derived aggregates.
type Validator struct {
	deriver   TableDeriver
	tolerance decimal.Decimal
}

// NewValidator creates a validator. Row counts must match exactly; sums may
// deviate by at most tolerance (absorbing rounding artifacts, not real
// discrepancies).
func NewValidator(deriver TableDeriver, tolerance decimal.Decimal) *Validator {
	return &Validator{deriver: deriver, tolerance: tolerance}
}

// Validate produces the validation report for a transformed table. The
// returned error is non-nil only when the re-derivation itself fails (the
// source PDF became unreadable); aggregate disagreements set Pass=false.
func (v *Validator) Validate(ctx context.Context, doc domain.SourceDocument, table *domain.NormalizedTable) (*Report, error) {
	derived, err := v.deriver.Derive(ctx, doc)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Document:     doc,
		ExpectedRows: derived.RowCount(),
		ActualRows:   table.RowCount(),
		ExpectedSum:  derived.AmountSum(),
		ActualSum:    table.AmountSum(),
		Pass:         true,
	}

	if report.ExpectedRows != report.ActualRows {
		report.fail("row count",
			strconv.Itoa(report.ExpectedRows), strconv.Itoa(report.ActualRows))
	}

	if report.ExpectedSum.Sub(report.ActualSum).Abs().GreaterThan(v.tolerance) {
		report.fail("amount sum",
			report.ExpectedSum.String(), report.ActualSum.String())
	}

	if doc.Family == domain.FamilyRevenue {
		v.checkRevenueTotal(report, table)
	}

	return report, nil
}

// checkRevenueTotal cross-checks the exhibit's own total row against the sum
// of its line items. A missing total row is itself a mismatch: the table
// cannot be trusted without it.
func (v *Validator) checkRevenueTotal(report *Report, table *domain.NormalizedTable) {
	lineSum := decimal.Zero
	var total *domain.RevenueLine
	for i := range table.Revenue {
		l := &table.Revenue[i]
		if l.IsTotal {
			total = l
			continue
		}
		if l.FYTDActual.Valid {
			lineSum = lineSum.Add(l.FYTDActual.Decimal)
		}
	}

	if total == nil || !total.FYTDActual.Valid {
		report.fail("FYTD actual total row", lineSum.String(), "missing")
		return
	}
	if total.FYTDActual.Decimal.Sub(lineSum).Abs().GreaterThan(v.tolerance) {
		report.fail("FYTD actual total", total.FYTDActual.Decimal.String(), lineSum.String())
	}
}

func (r *Report) fail(field, expected, actual string) {
	r.Pass = false
	r.Discrepancies = append(r.Discrepancies, Discrepancy{
		Field:    field,
		Expected: expected,
		Actual:   actual,
	})
}

package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind tags a raw cell as it was found in the PDF. Numeric cells keep
// their original formatting ("1,234", "(56)") and are resolved to strict
// values during transformation.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumeric
)

// Cell is one untyped value from an extracted table row.
type Cell struct {
	Kind CellKind
	Raw  string
}

// TextCell returns a text cell.
func TextCell(raw string) Cell { return Cell{Kind: CellText, Raw: raw} }

// NumericCell returns a numeric-looking cell, formatting preserved.
func NumericCell(raw string) Cell { return Cell{Kind: CellNumeric, Raw: raw} }

// EmptyCell returns an empty cell.
func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

// ClassifyCell tags a raw value by lexical shape. "-" and "" are empty,
// currency/percent formatted numbers are numeric, everything else is text.
func ClassifyCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" {
		return EmptyCell()
	}
	if looksNumeric(trimmed) {
		return NumericCell(trimmed)
	}
	return TextCell(trimmed)
}

func looksNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ',' || r == '.' || r == '(' || r == ')' || r == '$' || r == '%' || r == '-' || r == ' ':
		default:
			return false
		}
	}
	return digits > 0
}

// RawTable is the output of extraction: ordered rows of tagged cells, page
// order preserved. Transient; discarded after transformation.
type RawTable struct {
	Family Family
	Rows   [][]Cell
}

// BudgetLine is one normalized budget row: a funding source within a
// department, with appropriations for both years of the biennium.
type BudgetLine struct {
	Department    string
	FundingSource string
	Category      string // canonical category from the department mapping
	Period        string
	FirstYear     string
	SecondYear    string
	AmountFirst   decimal.Decimal
	AmountSecond  decimal.Decimal
}

// RevenueLine is one normalized General Fund revenue source row.
// Variance percentages can be blank in the source; those stay null rather
// than being coerced to zero.
type RevenueLine struct {
	Source          string
	Period          string
	IsTotal         bool // the exhibit's own total row
	MonthActual     decimal.NullDecimal
	MonthBudget     decimal.NullDecimal
	MonthVariance   decimal.NullDecimal
	MonthPctVar     decimal.NullDecimal
	FYTDActual      decimal.NullDecimal
	FYTDBudget      decimal.NullDecimal
	FYTDVariance    decimal.NullDecimal
	FYTDPctVar      decimal.NullDecimal
	TotalBudgetedFY decimal.NullDecimal
}

// Values returns the nine numeric columns in source order.
func (l RevenueLine) Values() []decimal.NullDecimal {
	return []decimal.NullDecimal{
		l.MonthActual, l.MonthBudget, l.MonthVariance, l.MonthPctVar,
		l.FYTDActual, l.FYTDBudget, l.FYTDVariance, l.FYTDPctVar,
		l.TotalBudgetedFY,
	}
}

// PositionLine is one normalized position-count row. Subtotal rows carry the
// per-department TOTAL POSITIONS derived during transformation.
type PositionLine struct {
	Department   string
	PositionType string
	Period       string
	FirstYear    decimal.Decimal
	SecondYear   decimal.Decimal
	Total        decimal.Decimal
	IsSubtotal   bool
}

// NormalizedTable is the typed result of transforming one source document.
// Exactly one of the per-family slices is populated, selected by Family.
// Treated as a value; never mutated after creation.
type NormalizedTable struct {
	Family    Family
	Period    string
	Budget    []BudgetLine
	Revenue   []RevenueLine
	Positions []PositionLine
}

// RowCount returns the number of normalized rows.
func (t *NormalizedTable) RowCount() int {
	switch t.Family {
	case FamilyBudget:
		return len(t.Budget)
	case FamilyRevenue:
		return len(t.Revenue)
	case FamilyPositions:
		return len(t.Positions)
	}
	return 0
}

// AmountSum returns the grand total over every numeric column of every row,
// the aggregate the validator compares against a re-derivation from the
// source PDF.
func (t *NormalizedTable) AmountSum() decimal.Decimal {
	sum := decimal.Zero
	switch t.Family {
	case FamilyBudget:
		for _, l := range t.Budget {
			sum = sum.Add(l.AmountFirst).Add(l.AmountSecond)
		}
	case FamilyRevenue:
		for _, l := range t.Revenue {
			for _, v := range l.Values() {
				if v.Valid {
					sum = sum.Add(v.Decimal)
				}
			}
		}
	case FamilyPositions:
		for _, l := range t.Positions {
			sum = sum.Add(l.FirstYear).Add(l.SecondYear)
		}
	}
	return sum
}

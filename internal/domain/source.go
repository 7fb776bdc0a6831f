package domain

import "fmt"

// Family identifies a PDF document category. Each family has its own
// extraction ruleset, normalized schema, and artifact format.
type Family string

const (
	FamilyBudget    Family = "budget"
	FamilyRevenue   Family = "revenue"
	FamilyPositions Family = "positions"
)

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	switch f {
	case FamilyBudget, FamilyRevenue, FamilyPositions:
		return true
	}
	return false
}

// SourceDocument is one PDF file discovered at run start. Immutable.
type SourceDocument struct {
	Path   string
	Family Family
	Period string // fiscal-year range ("2024-2025") or single year ("2020")
}

func (d SourceDocument) String() string {
	return fmt.Sprintf("%s[%s %s]", d.Path, d.Family, d.Period)
}

// PeriodYears splits a biennium period like "2024-2025" into its two year
// labels. Single-year periods return the year twice.
func (d SourceDocument) PeriodYears() (first, second string) {
	for i := 0; i < len(d.Period); i++ {
		if d.Period[i] == '-' {
			return d.Period[:i], d.Period[i+1:]
		}
	}
	return d.Period, d.Period
}

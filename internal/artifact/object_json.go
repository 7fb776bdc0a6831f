package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// objectArtifact is the JSON envelope for revenue and positions artifacts.
// Amounts are decimal strings so values survive the round trip exactly.
type objectArtifact struct {
	SchemaVersion int              `json:"schema_version"`
	Family        string           `json:"family"`
	Period        string           `json:"period"`
	Revenue       []revenueRecord  `json:"revenue,omitempty"`
	Positions     []positionRecord `json:"positions,omitempty"`
}

type revenueRecord struct {
	Source          string  `json:"source"`
	Period          string  `json:"period"`
	IsTotal         bool    `json:"is_total"`
	MonthActual     *string `json:"month_actual"`
	MonthBudget     *string `json:"month_budget"`
	MonthVariance   *string `json:"month_variance"`
	MonthPctVar     *string `json:"month_pct_variance"`
	FYTDActual      *string `json:"fytd_actual"`
	FYTDBudget      *string `json:"fytd_budget"`
	FYTDVariance    *string `json:"fytd_variance"`
	FYTDPctVar      *string `json:"fytd_pct_variance"`
	TotalBudgetedFY *string `json:"total_budgeted_fy"`
}

type positionRecord struct {
	Department   string `json:"department"`
	PositionType string `json:"position_type"`
	Period       string `json:"period"`
	FirstYear    string `json:"first_year"`
	SecondYear   string `json:"second_year"`
	Total        string `json:"total"`
	IsSubtotal   bool   `json:"is_subtotal"`
}

func encodeObjectJSON(out io.Writer, table *domain.NormalizedTable) error {
	env := objectArtifact{
		SchemaVersion: schemaVersion,
		Family:        string(table.Family),
		Period:        table.Period,
	}

	switch table.Family {
	case domain.FamilyRevenue:
		env.Revenue = make([]revenueRecord, 0, len(table.Revenue))
		for _, l := range table.Revenue {
			env.Revenue = append(env.Revenue, revenueRecord{
				Source:          l.Source,
				Period:          l.Period,
				IsTotal:         l.IsTotal,
				MonthActual:     nullString(l.MonthActual),
				MonthBudget:     nullString(l.MonthBudget),
				MonthVariance:   nullString(l.MonthVariance),
				MonthPctVar:     nullString(l.MonthPctVar),
				FYTDActual:      nullString(l.FYTDActual),
				FYTDBudget:      nullString(l.FYTDBudget),
				FYTDVariance:    nullString(l.FYTDVariance),
				FYTDPctVar:      nullString(l.FYTDPctVar),
				TotalBudgetedFY: nullString(l.TotalBudgetedFY),
			})
		}
	case domain.FamilyPositions:
		env.Positions = make([]positionRecord, 0, len(table.Positions))
		for _, l := range table.Positions {
			env.Positions = append(env.Positions, positionRecord{
				Department:   l.Department,
				PositionType: l.PositionType,
				Period:       l.Period,
				FirstYear:    l.FirstYear.String(),
				SecondYear:   l.SecondYear.String(),
				Total:        l.Total.String(),
				IsSubtotal:   l.IsSubtotal,
			})
		}
	default:
		return fmt.Errorf("family %q is not an object-artifact family", table.Family)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func decodeObjectJSON(r io.Reader, want domain.Family) (*domain.NormalizedTable, error) {
	var env objectArtifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	if err := checkObjectSchema(env, want); err != nil {
		return nil, err
	}

	table := &domain.NormalizedTable{Family: want, Period: env.Period}
	switch want {
	case domain.FamilyRevenue:
		table.Revenue = make([]domain.RevenueLine, 0, len(env.Revenue))
		for _, r := range env.Revenue {
			line := domain.RevenueLine{
				Source:  r.Source,
				Period:  r.Period,
				IsTotal: r.IsTotal,
			}
			var err error
			if line.MonthActual, err = parseNull(r.MonthActual); err != nil {
				return nil, err
			}
			if line.MonthBudget, err = parseNull(r.MonthBudget); err != nil {
				return nil, err
			}
			if line.MonthVariance, err = parseNull(r.MonthVariance); err != nil {
				return nil, err
			}
			if line.MonthPctVar, err = parseNull(r.MonthPctVar); err != nil {
				return nil, err
			}
			if line.FYTDActual, err = parseNull(r.FYTDActual); err != nil {
				return nil, err
			}
			if line.FYTDBudget, err = parseNull(r.FYTDBudget); err != nil {
				return nil, err
			}
			if line.FYTDVariance, err = parseNull(r.FYTDVariance); err != nil {
				return nil, err
			}
			if line.FYTDPctVar, err = parseNull(r.FYTDPctVar); err != nil {
				return nil, err
			}
			if line.TotalBudgetedFY, err = parseNull(r.TotalBudgetedFY); err != nil {
				return nil, err
			}
			table.Revenue = append(table.Revenue, line)
		}
	case domain.FamilyPositions:
		table.Positions = make([]domain.PositionLine, 0, len(env.Positions))
		for _, r := range env.Positions {
			first, err := decimal.NewFromString(r.FirstYear)
			if err != nil {
				return nil, fmt.Errorf("position first-year count %q: %w", r.FirstYear, err)
			}
			second, err := decimal.NewFromString(r.SecondYear)
			if err != nil {
				return nil, fmt.Errorf("position second-year count %q: %w", r.SecondYear, err)
			}
			total, err := decimal.NewFromString(r.Total)
			if err != nil {
				return nil, fmt.Errorf("position total %q: %w", r.Total, err)
			}
			table.Positions = append(table.Positions, domain.PositionLine{
				Department:   r.Department,
				PositionType: r.PositionType,
				Period:       r.Period,
				FirstYear:    first,
				SecondYear:   second,
				Total:        total,
				IsSubtotal:   r.IsSubtotal,
			})
		}
	}
	return table, nil
}

// checkObjectSchema reports a schema mismatch for artifacts written by a
// different version or for the wrong family.
func checkObjectSchema(env objectArtifact, want domain.Family) error {
	if env.SchemaVersion != schemaVersion {
		return &schemaError{fmt.Sprintf("schema version %d, expected %d", env.SchemaVersion, schemaVersion)}
	}
	if env.Family != string(want) {
		return &schemaError{fmt.Sprintf("artifact family %q, expected %q", env.Family, want)}
	}
	return nil
}

// schemaError marks a decode failure as schema-mismatch rather than corrupt.
type schemaError struct{ msg string }

func (e *schemaError) Error() string { return e.msg }

func nullString(v decimal.NullDecimal) *string {
	if !v.Valid {
		return nil
	}
	s := v.Decimal.String()
	return &s
}

func parseNull(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("numeric value %q: %w", *s, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

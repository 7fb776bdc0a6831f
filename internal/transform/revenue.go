package transform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

const revenueRawColumns = 10 // source + nine numeric columns

func (t *Transformer) transformRevenue(raw *domain.RawTable, doc domain.SourceDocument) (*domain.NormalizedTable, error) {
	out := &domain.NormalizedTable{
		Family:  domain.FamilyRevenue,
		Period:  doc.Period,
		Revenue: make([]domain.RevenueLine, 0, len(raw.Rows)),
	}

	seen := make(map[string]bool, len(raw.Rows))

	for i, row := range raw.Rows {
		if len(row) != revenueRawColumns {
			return nil, domain.TransformError(
				fmt.Sprintf("revenue row %d has %d columns, expected %d", i, len(row), revenueRawColumns), nil)
		}

		source, err := textCell(row[0])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("revenue row %d source", i), err)
		}
		if seen[source] {
			return nil, domain.TransformError(fmt.Sprintf("duplicate revenue source %q", source), nil)
		}
		seen[source] = true

		values := make([]decimal.NullDecimal, revenueRawColumns-1)
		for c := 1; c < revenueRawColumns; c++ {
			v, err := resolveNullable(row[c])
			if err != nil {
				return nil, domain.TransformError(
					fmt.Sprintf("revenue row %d (%s) column %d", i, source, c), err)
			}
			values[c-1] = v
		}

		out.Revenue = append(out.Revenue, domain.RevenueLine{
			Source:          source,
			Period:          doc.Period,
			IsTotal:         strings.HasPrefix(strings.ToUpper(source), "TOTAL"),
			MonthActual:     values[0],
			MonthBudget:     values[1],
			MonthVariance:   values[2],
			MonthPctVar:     values[3],
			FYTDActual:      values[4],
			FYTDBudget:      values[5],
			FYTDVariance:    values[6],
			FYTDPctVar:      values[7],
			TotalBudgetedFY: values[8],
		})
	}

	return out, nil
}

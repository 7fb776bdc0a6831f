package artifact

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// budgetRecord is the Parquet row schema for budget artifacts. Amounts are
// stored as float64; the source values carry at most two decimal places, so
// the shortest-representation round trip back to decimal is exact at budget
// magnitudes.
type budgetRecord struct {
	Department    string  `parquet:"department"`
	FundingSource string  `parquet:"funding_source"`
	Category      string  `parquet:"category"`
	Period        string  `parquet:"period"`
	FirstYear     string  `parquet:"first_year"`
	SecondYear    string  `parquet:"second_year"`
	AmountFirst   float64 `parquet:"amount_first_year"`
	AmountSecond  float64 `parquet:"amount_second_year"`
}

func encodeBudgetParquet(out io.Writer, table *domain.NormalizedTable) error {
	records := make([]budgetRecord, 0, len(table.Budget))
	for _, l := range table.Budget {
		records = append(records, budgetRecord{
			Department:    l.Department,
			FundingSource: l.FundingSource,
			Category:      l.Category,
			Period:        l.Period,
			FirstYear:     l.FirstYear,
			SecondYear:    l.SecondYear,
			AmountFirst:   l.AmountFirst.InexactFloat64(),
			AmountSecond:  l.AmountSecond.InexactFloat64(),
		})
	}

	w := parquet.NewGenericWriter[budgetRecord](out)
	if _, err := w.Write(records); err != nil {
		w.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return w.Close()
}

func decodeBudgetParquet(path string) (*domain.NormalizedTable, error) {
	records, err := parquet.ReadFile[budgetRecord](path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("budget artifact has no rows")
	}

	table := &domain.NormalizedTable{
		Family: domain.FamilyBudget,
		Period: records[0].Period,
		Budget: make([]domain.BudgetLine, 0, len(records)),
	}
	for _, r := range records {
		table.Budget = append(table.Budget, domain.BudgetLine{
			Department:    r.Department,
			FundingSource: r.FundingSource,
			Category:      r.Category,
			Period:        r.Period,
			FirstYear:     r.FirstYear,
			SecondYear:    r.SecondYear,
			AmountFirst:   decimal.NewFromFloat(r.AmountFirst),
			AmountSecond:  decimal.NewFromFloat(r.AmountSecond),
		})
	}
	return table, nil
}

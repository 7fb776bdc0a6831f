package transform

import (
	"fmt"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

const budgetRawColumns = 4 // department, funding source, amount x2

func (t *Transformer) transformBudget(raw *domain.RawTable, doc domain.SourceDocument) (*domain.NormalizedTable, error) {
	firstYear, secondYear := doc.PeriodYears()

	out := &domain.NormalizedTable{
		Family: domain.FamilyBudget,
		Period: doc.Period,
		Budget: make([]domain.BudgetLine, 0, len(raw.Rows)),
	}

	type key struct{ dept, source string }
	seen := make(map[key]bool, len(raw.Rows))

	for i, row := range raw.Rows {
		if len(row) != budgetRawColumns {
			return nil, domain.TransformError(
				fmt.Sprintf("budget row %d has %d columns, expected %d", i, len(row), budgetRawColumns), nil)
		}

		dept, err := textCell(row[0])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("budget row %d department", i), err)
		}
		source, err := textCell(row[1])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("budget row %d funding source", i), err)
		}

		k := key{dept, source}
		if seen[k] {
			return nil, domain.TransformError(
				fmt.Sprintf("duplicate budget key %q / %q", dept, source), nil)
		}
		seen[k] = true

		amountFirst, err := resolveAmount(row[2])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("budget row %d (%s / %s) first-year amount", i, dept, source), err)
		}
		amountSecond, err := resolveAmount(row[3])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("budget row %d (%s / %s) second-year amount", i, dept, source), err)
		}

		out.Budget = append(out.Budget, domain.BudgetLine{
			Department:    dept,
			FundingSource: source,
			Category:      t.mapping.Category(dept),
			Period:        doc.Period,
			FirstYear:     firstYear,
			SecondYear:    secondYear,
			AmountFirst:   amountFirst,
			AmountSecond:  amountSecond,
		})
	}

	return out, nil
}

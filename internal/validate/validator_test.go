package validate

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

type fixedDeriver struct {
	table *domain.NormalizedTable
	err   error
}

func (d *fixedDeriver) Derive(ctx context.Context, doc domain.SourceDocument) (*domain.NormalizedTable, error) {
	return d.table, d.err
}

func sampleBudgetTable() *domain.NormalizedTable {
	line := func(dept, source, first, second string) domain.BudgetLine {
		return domain.BudgetLine{
			Department:    dept,
			FundingSource: source,
			Period:        "2024-2025",
			FirstYear:     "2024",
			SecondYear:    "2025",
			AmountFirst:   decimal.RequireFromString(first),
			AmountSecond:  decimal.RequireFromString(second),
		}
	}
	return &domain.NormalizedTable{
		Family: domain.FamilyBudget,
		Period: "2024-2025",
		Budget: []domain.BudgetLine{
			line("EDUCATION", "GENERAL FUND", "1437050543", "1451982110"),
			line("EDUCATION", "FEDERAL EXPENDITURES FUND", "-5250", "0"),
			line("CORRECTIONS", "GENERAL FUND", "243110887", "245002143"),
		},
	}
}

func budgetDoc() domain.SourceDocument {
	return domain.SourceDocument{
		Path:   "z_Data/ME/budget_2024-2025.pdf",
		Family: domain.FamilyBudget,
		Period: "2024-2025",
	}
}

func tolerance() decimal.Decimal {
	return decimal.RequireFromString("0.01")
}

func TestValidate_MatchingTablePasses(t *testing.T) {
	v := NewValidator(&fixedDeriver{table: sampleBudgetTable()}, tolerance())

	report, err := v.Validate(context.Background(), budgetDoc(), sampleBudgetTable())
	require.NoError(t, err)

	assert.True(t, report.Pass)
	assert.Empty(t, report.Discrepancies)
	assert.Equal(t, 3, report.ExpectedRows)
	assert.Equal(t, 3, report.ActualRows)
	assert.True(t, report.ExpectedSum.Equal(report.ActualSum))
}

func TestValidate_DroppedRowDetected(t *testing.T) {
	v := NewValidator(&fixedDeriver{table: sampleBudgetTable()}, tolerance())

	table := sampleBudgetTable()
	table.Budget = table.Budget[:2]

	report, err := v.Validate(context.Background(), budgetDoc(), table)
	require.NoError(t, err)

	assert.False(t, report.Pass)
	require.Len(t, report.Discrepancies, 2) // row count and sum both move
	assert.Equal(t, "row count", report.Discrepancies[0].Field)
	assert.Equal(t, "3", report.Discrepancies[0].Expected)
	assert.Equal(t, "2", report.Discrepancies[0].Actual)
}

func TestValidate_SumSkewBeyondToleranceDetected(t *testing.T) {
	v := NewValidator(&fixedDeriver{table: sampleBudgetTable()}, tolerance())

	table := sampleBudgetTable()
	table.Budget[0].AmountFirst = table.Budget[0].AmountFirst.Add(decimal.NewFromInt(1))

	report, err := v.Validate(context.Background(), budgetDoc(), table)
	require.NoError(t, err)

	assert.False(t, report.Pass)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "amount sum", report.Discrepancies[0].Field)
}

func TestValidate_SkewWithinTolerancePasses(t *testing.T) {
	v := NewValidator(&fixedDeriver{table: sampleBudgetTable()}, tolerance())

	table := sampleBudgetTable()
	table.Budget[0].AmountFirst = table.Budget[0].AmountFirst.Add(decimal.RequireFromString("0.01"))

	report, err := v.Validate(context.Background(), budgetDoc(), table)
	require.NoError(t, err)

	assert.True(t, report.Pass)
}

func TestValidate_DerivationFailureIsAnError(t *testing.T) {
	v := NewValidator(&fixedDeriver{err: domain.ExtractionError("pdf vanished", nil)}, tolerance())

	_, err := v.Validate(context.Background(), budgetDoc(), sampleBudgetTable())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeExtraction, domain.ErrorTypeOf(err))
}

func revenueTable(withTotal bool) *domain.NormalizedTable {
	null := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Valid: true, Decimal: decimal.RequireFromString(s)}
	}
	lines := []domain.RevenueLine{
		{Source: "Sales and Use Tax", Period: "2020", FYTDActual: null("1504210884")},
		{Source: "Individual Income Tax", Period: "2020", FYTDActual: null("1540332190")},
	}
	if withTotal {
		lines = append(lines, domain.RevenueLine{
			Source: "TOTAL REVENUE", Period: "2020", IsTotal: true,
			FYTDActual: null("3044543074"),
		})
	}
	return &domain.NormalizedTable{Family: domain.FamilyRevenue, Period: "2020", Revenue: lines}
}

func revenueDoc() domain.SourceDocument {
	return domain.SourceDocument{
		Path:   "z_Data/ME General Fund Sources/revenue_2020.pdf",
		Family: domain.FamilyRevenue,
		Period: "2020",
	}
}

func TestValidate_RevenueTotalRowCrossCheck(t *testing.T) {
	v := NewValidator(&fixedDeriver{table: revenueTable(true)}, tolerance())

	report, err := v.Validate(context.Background(), revenueDoc(), revenueTable(true))
	require.NoError(t, err)
	assert.True(t, report.Pass)
}

func TestValidate_RevenueTotalRowDisagrees(t *testing.T) {
	table := revenueTable(true)
	table.Revenue[2].FYTDActual.Decimal = table.Revenue[2].FYTDActual.Decimal.Add(decimal.NewFromInt(500))

	v := NewValidator(&fixedDeriver{table: table}, tolerance())

	report, err := v.Validate(context.Background(), revenueDoc(), table)
	require.NoError(t, err)

	assert.False(t, report.Pass)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "FYTD actual total", report.Discrepancies[0].Field)
}

func TestValidate_RevenueMissingTotalRowIsMismatch(t *testing.T) {
	v := NewValidator(&fixedDeriver{table: revenueTable(false)}, tolerance())

	report, err := v.Validate(context.Background(), revenueDoc(), revenueTable(false))
	require.NoError(t, err)

	assert.False(t, report.Pass)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "FYTD actual total row", report.Discrepancies[0].Field)
	assert.Equal(t, "missing", report.Discrepancies[0].Actual)
}

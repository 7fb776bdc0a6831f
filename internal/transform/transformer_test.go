package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

func budgetDoc() domain.SourceDocument {
	return domain.SourceDocument{
		Path:   "z_Data/ME/budget_2024-2025.pdf",
		Family: domain.FamilyBudget,
		Period: "2024-2025",
	}
}

func budgetRaw() *domain.RawTable {
	return &domain.RawTable{
		Family: domain.FamilyBudget,
		Rows: [][]domain.Cell{
			{
				domain.TextCell("DEPARTMENT OF EDUCATION"),
				domain.TextCell("GENERAL FUND"),
				domain.NumericCell("1,437,050,543"),
				domain.NumericCell("1,451,982,110"),
			},
			{
				domain.TextCell("DEPARTMENT OF EDUCATION"),
				domain.TextCell("FEDERAL EXPENDITURES FUND"),
				domain.NumericCell("(5,250)"),
				domain.NumericCell("0"),
			},
		},
	}
}

func TestTransformBudget(t *testing.T) {
	tr := NewTransformer(nil)

	table, err := tr.Transform(budgetRaw(), budgetDoc())
	require.NoError(t, err)

	assert.Equal(t, domain.FamilyBudget, table.Family)
	assert.Equal(t, "2024-2025", table.Period)
	require.Len(t, table.Budget, 2)

	line := table.Budget[0]
	assert.Equal(t, "DEPARTMENT OF EDUCATION", line.Department)
	assert.Equal(t, "GENERAL FUND", line.FundingSource)
	// Without a mapping the category falls back to the department name.
	assert.Equal(t, "DEPARTMENT OF EDUCATION", line.Category)
	assert.Equal(t, "2024", line.FirstYear)
	assert.Equal(t, "2025", line.SecondYear)
	assert.True(t, line.AmountFirst.Equal(decimal.RequireFromString("1437050543")))

	// Parenthesized amounts resolve to negatives.
	assert.True(t, table.Budget[1].AmountFirst.Equal(decimal.NewFromInt(-5250)))
	assert.True(t, table.Budget[1].AmountSecond.IsZero())
}

func TestTransformBudget_Deterministic(t *testing.T) {
	tr := NewTransformer(nil)

	a, err := tr.Transform(budgetRaw(), budgetDoc())
	require.NoError(t, err)
	b, err := tr.Transform(budgetRaw(), budgetDoc())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTransformBudget_Errors(t *testing.T) {
	tr := NewTransformer(nil)
	doc := budgetDoc()

	t.Run("family mismatch", func(t *testing.T) {
		raw := &domain.RawTable{Family: domain.FamilyRevenue}
		_, err := tr.Transform(raw, doc)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeTransform, domain.ErrorTypeOf(err))
	})

	t.Run("wrong column count", func(t *testing.T) {
		raw := &domain.RawTable{Family: domain.FamilyBudget, Rows: [][]domain.Cell{
			{domain.TextCell("DEPT"), domain.TextCell("FUND")},
		}}
		_, err := tr.Transform(raw, doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 4")
	})

	t.Run("duplicate key", func(t *testing.T) {
		raw := budgetRaw()
		raw.Rows = append(raw.Rows, raw.Rows[0])
		_, err := tr.Transform(raw, doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate budget key")
	})

	t.Run("unparseable amount is not zeroed", func(t *testing.T) {
		raw := budgetRaw()
		raw.Rows[0][2] = domain.TextCell("N/A")
		_, err := tr.Transform(raw, doc)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeTransform, domain.ErrorTypeOf(err))
		assert.Contains(t, err.Error(), "first-year amount")
	})
}

func TestTransformRevenue(t *testing.T) {
	tr := NewTransformer(nil)
	doc := domain.SourceDocument{
		Path:   "z_Data/ME General Fund Sources/revenue_2020.pdf",
		Family: domain.FamilyRevenue,
		Period: "2020",
	}

	num := func(s string) domain.Cell { return domain.NumericCell(s) }
	raw := &domain.RawTable{
		Family: domain.FamilyRevenue,
		Rows: [][]domain.Cell{
			{
				domain.TextCell("Sales and Use Tax"),
				num("145423312"), num("138500000"), num("6923312"), num("5.0"),
				num("1504210884"), num("1497287572"), num("6923312"), num("0.5"),
				num("1497287572"),
			},
			{
				domain.TextCell("Transfers to Municipalities"),
				domain.EmptyCell(), domain.EmptyCell(), domain.EmptyCell(), domain.EmptyCell(),
				num("-74210331"), num("-74210331"), domain.EmptyCell(), domain.EmptyCell(),
				num("-74210331"),
			},
			{
				domain.TextCell("TOTAL REVENUE"),
				num("145423312"), num("138500000"), num("6923312"), num("5.0"),
				num("1430000553"), num("1423077241"), num("6923312"), num("0.5"),
				num("1423077241"),
			},
		},
	}

	table, err := tr.Transform(raw, doc)
	require.NoError(t, err)
	require.Len(t, table.Revenue, 3)

	sales := table.Revenue[0]
	assert.Equal(t, "Sales and Use Tax", sales.Source)
	assert.Equal(t, "2020", sales.Period)
	assert.False(t, sales.IsTotal)
	assert.True(t, sales.MonthActual.Valid)
	assert.True(t, sales.MonthActual.Decimal.Equal(decimal.NewFromInt(145423312)))

	transfers := table.Revenue[1]
	assert.False(t, transfers.MonthActual.Valid, "blank cells stay null")
	assert.True(t, transfers.FYTDActual.Valid)
	assert.True(t, transfers.FYTDActual.Decimal.IsNegative())

	assert.True(t, table.Revenue[2].IsTotal)
}

func TestTransformRevenue_DuplicateSource(t *testing.T) {
	tr := NewTransformer(nil)
	doc := domain.SourceDocument{Family: domain.FamilyRevenue, Period: "2020"}

	row := make([]domain.Cell, 10)
	row[0] = domain.TextCell("Sales and Use Tax")
	for i := 1; i < 10; i++ {
		row[i] = domain.NumericCell("1")
	}
	raw := &domain.RawTable{Family: domain.FamilyRevenue, Rows: [][]domain.Cell{row, row}}

	_, err := tr.Transform(raw, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate revenue source")
}

func TestTransformPositions(t *testing.T) {
	tr := NewTransformer(nil)
	doc := domain.SourceDocument{
		Path:   "z_Data/ME/budget_2024-2025.pdf",
		Family: domain.FamilyPositions,
		Period: "2024-2025",
	}

	raw := &domain.RawTable{
		Family: domain.FamilyPositions,
		Rows: [][]domain.Cell{
			{
				domain.TextCell("DEPARTMENT OF AGRICULTURE"),
				domain.TextCell("POSITIONS - LEGISLATIVE COUNT"),
				domain.NumericCell("760.500"),
				domain.NumericCell("760.500"),
			},
			{
				domain.TextCell("DEPARTMENT OF AGRICULTURE"),
				domain.TextCell("POSITIONS - FTE COUNT"),
				domain.NumericCell("14.884"),
				domain.NumericCell("14.884"),
			},
			{
				domain.TextCell("ARTS COMMISSION"),
				domain.EmptyCell(),
				domain.EmptyCell(),
				domain.EmptyCell(),
			},
		},
	}

	table, err := tr.Transform(raw, doc)
	require.NoError(t, err)
	require.Len(t, table.Positions, 4)

	assert.Equal(t, "POSITIONS - LEGISLATIVE COUNT", table.Positions[0].PositionType)
	assert.False(t, table.Positions[0].IsSubtotal)

	// Per-department subtotal is derived from the source's own values.
	subtotal := table.Positions[2]
	assert.Equal(t, "DEPARTMENT OF AGRICULTURE", subtotal.Department)
	assert.Equal(t, "TOTAL POSITIONS", subtotal.PositionType)
	assert.True(t, subtotal.IsSubtotal)
	assert.True(t, subtotal.FirstYear.Equal(decimal.RequireFromString("775.384")))
	assert.True(t, subtotal.Total.Equal(decimal.RequireFromString("1550.768")))

	// A department with no position lines keeps a zero total row.
	empty := table.Positions[3]
	assert.Equal(t, "ARTS COMMISSION", empty.Department)
	assert.Equal(t, "TOTAL POSITIONS", empty.PositionType)
	assert.True(t, empty.FirstYear.IsZero())
	assert.False(t, empty.IsSubtotal)
}

func TestTransformPositions_DuplicateTypeInDepartment(t *testing.T) {
	tr := NewTransformer(nil)
	doc := domain.SourceDocument{Family: domain.FamilyPositions, Period: "2024-2025"}

	row := []domain.Cell{
		domain.TextCell("DEPARTMENT OF AGRICULTURE"),
		domain.TextCell("POSITIONS - LEGISLATIVE COUNT"),
		domain.NumericCell("1.000"),
		domain.NumericCell("1.000"),
	}
	raw := &domain.RawTable{Family: domain.FamilyPositions, Rows: [][]domain.Cell{row, row}}

	_, err := tr.Transform(raw, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate position type")
}

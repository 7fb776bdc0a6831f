package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

const budgetCoverPage = `STATE OF MAINE
BIENNIAL BUDGET BRIEFING DOCUMENT
2024-2025 BIENNIUM`

const budgetTablePage = `GENERAL FUND AND OTHER FUND APPROPRIATIONS BY DEPARTMENT
01 DEPARTMENT OF AGRICULTURE, CONSERVATION AND FORESTRY
GENERAL FUND 45,093,154 45,332,102
FEDERAL EXPENDITURES FUND 11,422,151 11,422,762
OTHER SPECIAL REVENUE FUNDS 30,936,331 (1,234)
03 DEPARTMENT OF ADMINISTRATIVE AND FINANCIAL SERVICES
GENERAL FUND 298,431,571 301,002,168`

func TestParseBudgetPages(t *testing.T) {
	pages := []string{budgetCoverPage, budgetTablePage}

	table, err := ParseBudgetPages(pages, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.FamilyBudget, table.Family)
	require.Len(t, table.Rows, 4)

	first := table.Rows[0]
	require.Len(t, first, 4)
	assert.Equal(t, "DEPARTMENT OF AGRICULTURE, CONSERVATION AND FORESTRY", first[0].Raw)
	assert.Equal(t, "GENERAL FUND", first[1].Raw)
	assert.Equal(t, domain.CellNumeric, first[2].Kind)
	assert.Equal(t, "45,093,154", first[2].Raw)
	assert.Equal(t, "45,332,102", first[3].Raw)

	// Parenthesized negatives keep their formatting for the transform.
	assert.Equal(t, "(1,234)", table.Rows[2][3].Raw)

	// The second department heading resets the current department.
	assert.Equal(t, "DEPARTMENT OF ADMINISTRATIVE AND FINANCIAL SERVICES", table.Rows[3][0].Raw)
}

func TestParseBudgetPages_EndPageBeyondDocument(t *testing.T) {
	pages := []string{budgetCoverPage, budgetTablePage}

	// An end page past the document length clamps to the last page.
	table, err := ParseBudgetPages(pages, 9)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 4)
}

func TestParseBudgetPages_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pages   []string
		endPage int
		wantMsg string
	}{
		{
			name:    "single page document",
			pages:   []string{budgetCoverPage},
			endPage: 8,
			wantMsg: "no headline-table pages",
		},
		{
			name:    "no table content",
			pages:   []string{budgetCoverPage, "APPENDIX\nNARRATIVE TEXT ONLY"},
			endPage: 2,
			wantMsg: "no recognizable budget table",
		},
		{
			name:    "funding line before department",
			pages:   []string{budgetCoverPage, "GENERAL FUND 1,000 2,000"},
			endPage: 2,
			wantMsg: "before any department heading",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBudgetPages(tt.pages, tt.endPage)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, domain.ErrorTypeExtraction, domain.ErrorTypeOf(err))
		})
	}
}

package extract

import (
	"regexp"
	"strings"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// fundingPattern matches a funding source line: a name followed by two
// amounts, parenthesized when negative ("FEDERAL FUNDS 1,234 (56)").
var fundingPattern = regexp.MustCompile(`^(.+?)\s+(\(?\d{1,3}(?:,\d{3})*\)?)\s+(\(?\d{1,3}(?:,\d{3})*\)?)$`)

// ParseBudgetPages parses the headline table of a biennial budget document.
// The table spans pages 2..endPage: a department heading line starts with
// its numeric code, followed by one line per funding source with the two
// fiscal-year amounts. Raw rows are [department, funding source, amount1,
// amount2].
func ParseBudgetPages(pages []string, endPage int) (*domain.RawTable, error) {
	if endPage > len(pages) {
		endPage = len(pages)
	}
	if endPage < 2 {
		return nil, domain.ExtractionError("budget PDF has no headline-table pages", nil)
	}
	// Page order is preserved by the join; the first page is the cover.
	text := strings.Join(pages[1:endPage], "\n")

	table := &domain.RawTable{Family: domain.FamilyBudget}
	currentDept := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line[0] >= '0' && line[0] <= '9' {
			// Department heading: "<code> <name>"
			parts := strings.SplitN(line, " ", 2)
			if len(parts) > 1 {
				currentDept = strings.TrimSpace(parts[1])
			} else {
				currentDept = line
			}
			continue
		}

		m := fundingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if currentDept == "" {
			return nil, domain.ExtractionError("funding source line before any department heading; layout not recognized", nil)
		}
		table.Rows = append(table.Rows, []domain.Cell{
			domain.TextCell(currentDept),
			domain.TextCell(strings.TrimSpace(m[1])),
			domain.NumericCell(m[2]),
			domain.NumericCell(m[3]),
		})
	}

	if len(table.Rows) == 0 {
		return nil, domain.ExtractionError("no recognizable budget table found", nil)
	}
	return table, nil
}

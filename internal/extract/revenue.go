package extract

import (
	"regexp"
	"strings"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// revenueColumns is the fixed numeric column count of the Exhibit I table:
// month actual/budget/variance/%, FYTD actual/budget/variance/%, and the
// total budgeted fiscal year.
const revenueColumns = 9

// splitNumber repairs digit groups the text layer broke apart ("1 234" for
// "1234"), matching a leading digit not preceded by a digit or decimal
// point.
var splitNumber = regexp.MustCompile(`(^|[^0-9.])([0-9]) +([0-9]+)\b`)

// ParseRevenuePages parses the General Fund revenue sources table from the
// Exhibit I page of a monthly revenue report. Raw rows are [source, nine
// numeric columns]; "-" cells are empty.
func ParseRevenuePages(pages []string) (*domain.RawTable, error) {
	pageText, err := findExhibitPage(pages, "Exhibit I")
	if err != nil {
		return nil, err
	}

	lines := strings.Split(pageText, "\n")
	startIdx, endIdx := -1, -1
	for i, line := range lines {
		if strings.HasPrefix(line, "Sales and Use Tax") && startIdx == -1 {
			startIdx = i
		}
		if strings.HasPrefix(line, "NOTES:") {
			endIdx = i
			break
		}
	}
	if startIdx == -1 || endIdx == -1 {
		return nil, domain.ExtractionError("could not find revenue table boundaries on Exhibit I page", nil)
	}

	table := &domain.RawTable{Family: domain.FamilyRevenue}
	for _, line := range lines[startIdx:endIdx] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row, ok := parseRevenueLine(line)
		if ok {
			table.Rows = append(table.Rows, row)
		}
	}

	if len(table.Rows) == 0 {
		return nil, domain.ExtractionError("no recognizable revenue table rows on Exhibit I page", nil)
	}
	return table, nil
}

func parseRevenueLine(line string) ([]domain.Cell, bool) {
	line = strings.ReplaceAll(line, "$ ", "")
	line = strings.ReplaceAll(line, "%", "")
	line = strings.ReplaceAll(line, ",", "")
	line = strings.ReplaceAll(line, "( ", "(")
	line = strings.ReplaceAll(line, " )", ")")
	line = fixSplitNumbers(line)

	fields := strings.Fields(line)
	if len(fields) <= revenueColumns {
		return nil, false
	}

	values := fields[len(fields)-revenueColumns:]
	source := strings.Join(fields[:len(fields)-revenueColumns], " ")

	row := make([]domain.Cell, 0, revenueColumns+1)
	row = append(row, domain.TextCell(source))
	for _, v := range values {
		if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
			v = "-" + v[1:len(v)-1]
		}
		row = append(row, domain.ClassifyCell(v))
	}
	return row, true
}

func fixSplitNumbers(line string) string {
	for {
		fixed := splitNumber.ReplaceAllString(line, "${1}${2}${3}")
		if fixed == line {
			return fixed
		}
		line = fixed
	}
}

// findExhibitPage returns the text of the page whose first line ends with
// the exhibit name.
func findExhibitPage(pages []string, exhibit string) (string, error) {
	for _, page := range pages {
		first := firstLine(page)
		if strings.HasSuffix(first, exhibit) || strings.HasSuffix(first, strings.ToUpper(exhibit)) {
			return page, nil
		}
	}
	return "", domain.ExtractionError(exhibit+" page not found in revenue PDF", nil)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

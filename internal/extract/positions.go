package extract

import (
	"regexp"
	"strings"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

const (
	deptTotalsMarker = "DEPARTMENT TOTALS - ALL FUNDS"
	deptEndMarker    = "DEPARTMENT TOTAL - ALL FUNDS"
)

var (
	deptCodePattern = regexp.MustCompile(`^\d+\s*(.+)$`)
	positionPattern = regexp.MustCompile(`(?i)POSITIONS\s*-\s*([^-]+?)\s+([0-9,]+\.?\d*)\s+([0-9,]+\.?\d*)`)
)

// ParsePositionPages parses position counts from a budget document. Position
// lines appear inside each department's "DEPARTMENT TOTALS - ALL FUNDS"
// section. Raw rows are [department, position type, count1, count2]; a
// department section with no position lines yields one row with an empty
// type so the transform can still emit its zero total.
func ParsePositionPages(pages []string) (*domain.RawTable, error) {
	lines := strings.Split(strings.Join(pages, "\n"), "\n")
	table := &domain.RawTable{Family: domain.FamilyPositions}

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.Contains(line, deptTotalsMarker) {
			i++
			continue
		}

		// Department name is on the line above the marker, prefixed with
		// its numeric code.
		dept := ""
		if i > 0 {
			deptLine := strings.TrimSpace(lines[i-1])
			if m := deptCodePattern.FindStringSubmatch(deptLine); m != nil {
				dept = strings.TrimSpace(m[1])
			} else {
				dept = deptLine
			}
		}
		if dept == "" {
			return nil, domain.ExtractionError("department totals section without a department heading", nil)
		}

		j := i + 1
		found := 0
		for j < len(lines) {
			posLine := strings.TrimSpace(lines[j])
			if strings.Contains(posLine, deptEndMarker) {
				break
			}
			if strings.HasPrefix(strings.ToUpper(posLine), "POSITIONS") {
				if m := positionPattern.FindStringSubmatch(posLine); m != nil {
					table.Rows = append(table.Rows, []domain.Cell{
						domain.TextCell(dept),
						domain.TextCell("POSITIONS - " + strings.ToUpper(strings.TrimSpace(m[1]))),
						domain.NumericCell(m[2]),
						domain.NumericCell(m[3]),
					})
					found++
				}
			}
			j++
		}

		if found == 0 {
			table.Rows = append(table.Rows, []domain.Cell{
				domain.TextCell(dept),
				domain.EmptyCell(),
				domain.EmptyCell(),
				domain.EmptyCell(),
			})
		}
		i = j
	}

	if len(table.Rows) == 0 {
		return nil, domain.ExtractionError("no department position sections found", nil)
	}
	return table, nil
}

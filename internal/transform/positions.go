package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

const positionsRawColumns = 4 // department, position type, count x2

const totalPositionsType = "TOTAL POSITIONS"

func (t *Transformer) transformPositions(raw *domain.RawTable, doc domain.SourceDocument) (*domain.NormalizedTable, error) {
	out := &domain.NormalizedTable{
		Family: domain.FamilyPositions,
		Period: doc.Period,
	}

	// Rows arrive grouped by department in document order. The subtotal row
	// per department is derived here by summing the source's own values, so
	// no re-rounding can change totals.
	var (
		currentDept string
		deptLines   []domain.PositionLine
		deptSeen    map[string]bool
	)

	flush := func() {
		if currentDept == "" {
			return
		}
		if len(deptLines) == 0 {
			// Department section with no position lines keeps its zero total.
			out.Positions = append(out.Positions, domain.PositionLine{
				Department:   currentDept,
				PositionType: totalPositionsType,
				Period:       doc.Period,
			})
			return
		}
		totalFirst, totalSecond := decimal.Zero, decimal.Zero
		for _, l := range deptLines {
			totalFirst = totalFirst.Add(l.FirstYear)
			totalSecond = totalSecond.Add(l.SecondYear)
		}
		out.Positions = append(out.Positions, deptLines...)
		if totalFirst.IsPositive() {
			out.Positions = append(out.Positions, domain.PositionLine{
				Department:   currentDept,
				PositionType: totalPositionsType,
				Period:       doc.Period,
				FirstYear:    totalFirst,
				SecondYear:   totalSecond,
				Total:        totalFirst.Add(totalSecond),
				IsSubtotal:   true,
			})
		}
	}

	for i, row := range raw.Rows {
		if len(row) != positionsRawColumns {
			return nil, domain.TransformError(
				fmt.Sprintf("positions row %d has %d columns, expected %d", i, len(row), positionsRawColumns), nil)
		}

		dept, err := textCell(row[0])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("positions row %d department", i), err)
		}
		if dept != currentDept {
			flush()
			currentDept = dept
			deptLines = nil
			deptSeen = make(map[string]bool)
		}

		if row[1].Kind == domain.CellEmpty {
			// Marker row for a department with no position lines.
			continue
		}

		ptype, err := textCell(row[1])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("positions row %d position type", i), err)
		}
		if deptSeen[ptype] {
			return nil, domain.TransformError(
				fmt.Sprintf("duplicate position type %q for department %q", ptype, dept), nil)
		}
		deptSeen[ptype] = true

		first, err := resolveAmount(row[2])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("positions row %d (%s) first-year count", i, dept), err)
		}
		second, err := resolveAmount(row[3])
		if err != nil {
			return nil, domain.TransformError(fmt.Sprintf("positions row %d (%s) second-year count", i, dept), err)
		}

		deptLines = append(deptLines, domain.PositionLine{
			Department:   dept,
			PositionType: ptype,
			Period:       doc.Period,
			FirstYear:    first,
			SecondYear:   second,
			Total:        first.Add(second),
		})
	}
	flush()

	return out, nil
}

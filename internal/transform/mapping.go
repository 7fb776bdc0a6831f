package transform

import (
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// departmentRow is one row of the department mapping CSV.
type departmentRow struct {
	Department string `csv:"Department"`
	Category   string `csv:"Category"`
}

// DepartmentMapping maps raw department names from the budget PDFs to
// canonical reporting categories.
type DepartmentMapping struct {
	byDept map[string]string
}

// LoadDepartmentMapping reads the mapping CSV.
func LoadDepartmentMapping(path string) (*DepartmentMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ConfigError("open department mapping "+path, err)
	}
	defer f.Close()

	var rows []departmentRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, domain.ConfigError("parse department mapping "+path, err)
	}

	m := &DepartmentMapping{byDept: make(map[string]string, len(rows))}
	for _, r := range rows {
		dept := strings.TrimSpace(r.Department)
		cat := strings.TrimSpace(r.Category)
		if dept == "" || cat == "" {
			continue
		}
		m.byDept[dept] = cat
	}
	return m, nil
}

// Category returns the canonical category for a department, falling back to
// the department name itself when unmapped. Safe on a nil mapping.
func (m *DepartmentMapping) Category(dept string) string {
	if m != nil {
		if cat, ok := m.byDept[dept]; ok {
			return cat
		}
	}
	return dept
}

package pipeline

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

var (
	bienniumPattern = regexp.MustCompile(`\d{4}-\d{4}`)
	yearPattern     = regexp.MustCompile(`\b(\d{4})\b`)
)

// DiscoverBudget enumerates budget PDFs in dir. The period is the biennium
// range in the filename ("2024-2025 ME State Budget.pdf"); PDFs without one
// are not budget documents and are ignored.
func DiscoverBudget(dir string) ([]domain.SourceDocument, error) {
	return discover(dir, domain.FamilyBudget, func(name string) string {
		return bienniumPattern.FindString(name)
	})
}

// DiscoverRevenue enumerates revenue PDFs in dir. The period is the fiscal
// year in the filename ("FY 2020 Revenue ME.pdf").
func DiscoverRevenue(dir string) ([]domain.SourceDocument, error) {
	return discover(dir, domain.FamilyRevenue, func(name string) string {
		m := yearPattern.FindStringSubmatch(name)
		if m == nil {
			return ""
		}
		return m[1]
	})
}

// DiscoverPositions enumerates the budget PDFs again under the positions
// family: position counts live in the budget documents themselves.
func DiscoverPositions(dir string) ([]domain.SourceDocument, error) {
	return discover(dir, domain.FamilyPositions, func(name string) string {
		return bienniumPattern.FindString(name)
	})
}

func discover(dir string, family domain.Family, period func(string) string) ([]domain.SourceDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.IOError("read source directory "+dir, err)
	}

	var docs []domain.SourceDocument
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		p := period(e.Name())
		if p == "" {
			continue
		}
		docs = append(docs, domain.SourceDocument{
			Path:   filepath.Join(dir, e.Name()),
			Family: family,
			Period: p,
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

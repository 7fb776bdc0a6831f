// Package extract turns PDF page text into raw tables using per-family
// layout rulesets. The rulesets are hand-tuned to the two Maine report
// layouts plus the position counts embedded in the budget documents; there
// is no cross-family fallback.
package extract

import (
	"context"
	"fmt"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// TextSource supplies page text for a PDF file.
type TextSource interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// Extractor selects the ruleset for a document's declared family and
// produces a raw table of tagged cells.
type Extractor struct {
	source TextSource
	// budgetEndPage returns the last headline-table page for a budget
	// period. The headline table spans pages 2..endPage.
	budgetEndPage func(period string) int
}

// NewExtractor creates an extractor over the given text source.
func NewExtractor(source TextSource, budgetEndPage func(period string) int) *Extractor {
	return &Extractor{source: source, budgetEndPage: budgetEndPage}
}

// Extract reads the source document and produces its raw table. Multi-page
// tables are concatenated in page order. Fails with an extraction error when
// the PDF cannot be opened, contains no recognizable table, or its layout
// does not match the family's template.
func (e *Extractor) Extract(ctx context.Context, doc domain.SourceDocument) (*domain.RawTable, error) {
	pages, err := e.source.PageTexts(ctx, doc.Path)
	if err != nil {
		return nil, err
	}

	switch doc.Family {
	case domain.FamilyBudget:
		return ParseBudgetPages(pages, e.budgetEndPage(doc.Period))
	case domain.FamilyRevenue:
		return ParseRevenuePages(pages)
	case domain.FamilyPositions:
		return ParsePositionPages(pages)
	default:
		return nil, domain.ExtractionError(fmt.Sprintf("unknown document family %q", doc.Family), nil)
	}
}

package artifact

import (
	"fmt"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// Loader resolves artifacts by the family+period naming convention and
// loads them. It is the same convention the downstream consumer uses, so a
// load failure here is exactly what would trigger the consumer's on-demand
// extraction fallback.
type Loader struct {
	budgetDir    string
	revenueDir   string
	positionsDir string
}

// NewLoader creates a loader over the three family output directories.
func NewLoader(budgetDir, revenueDir, positionsDir string) *Loader {
	return &Loader{
		budgetDir:    budgetDir,
		revenueDir:   revenueDir,
		positionsDir: positionsDir,
	}
}

// Load loads the artifact for a family and period.
func (l *Loader) Load(family domain.Family, period string) (*domain.NormalizedTable, error) {
	switch family {
	case domain.FamilyBudget:
		return LoadBudget(BudgetArtifactPath(l.budgetDir, period))
	case domain.FamilyRevenue:
		return LoadRevenue(RevenueArtifactPath(l.revenueDir, period))
	case domain.FamilyPositions:
		return LoadPositions(PositionsArtifactPath(l.positionsDir, period))
	default:
		return nil, fmt.Errorf("unknown artifact family %q", family)
	}
}

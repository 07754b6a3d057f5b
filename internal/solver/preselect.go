package solver

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

// Preselect force les packages qui sont seuls à couvrir un item requis et
// renvoie l'ensemble restant à couvrir. Le forçage n'a lieu qu'en facturation
// mensuelle (voir DESIGN.md); dans l'autre mode la recherche les trouve.
func Preselect(cat *catalog.Catalog, required *bitset.BitSet, mode domain.BillingMode) ([]int, *bitset.BitSet) {
	var forced []int
	if mode == domain.BillingMonthly {
		unique := required.Intersection(cat.UniquelyCovered())
		for id, ok := unique.NextSet(0); ok; id, ok = unique.NextSet(id + 1) {
			idx, found := cat.UniqueCoverer(id)
			if !found || !cat.Eligible(idx, mode) || containsInt(forced, idx) {
				continue
			}
			forced = append(forced, idx)
		}
	}

	remaining := required.Clone()
	for _, idx := range forced {
		remaining.InPlaceDifference(cat.Coverage(idx))
	}
	return forced, remaining
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

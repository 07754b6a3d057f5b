package solver

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

// DominanceOrder fixe l'ordre de parcours des candidats du filtre de dominance.
type DominanceOrder string

const (
	// OrderPrice parcourt les candidats par prix croissant (ordre du catalogue à prix égal).
	OrderPrice DominanceOrder = "price"
	// OrderCatalog conserve l'ordre du catalogue: un package cher rencontré avant
	// un package moins cher qui le domine n'est pas éliminé.
	OrderCatalog DominanceOrder = "catalog"
)

// Candidates renvoie, dans l'ordre du catalogue, les packages éligibles qui
// couvrent au moins un item requis.
func Candidates(cat *catalog.Catalog, required *bitset.BitSet, mode domain.BillingMode) []int {
	var out []int
	for idx := 0; idx < cat.NumPackages(); idx++ {
		if !cat.Eligible(idx, mode) {
			continue
		}
		if cat.Coverage(idx).IntersectionCardinality(required) > 0 {
			out = append(out, idx)
		}
	}
	return out
}

// FilterDominated écarte tout candidat dont la couverture des items requis est
// incluse dans celle d'un candidat déjà retenu, à prix inférieur ou égal.
func FilterDominated(cat *catalog.Catalog, candidates []int, required *bitset.BitSet, mode domain.BillingMode, order DominanceOrder) []int {
	walk := append([]int(nil), candidates...)
	if order != OrderCatalog {
		sort.SliceStable(walk, func(i, j int) bool {
			pi, _ := cat.Price(walk[i], mode)
			pj, _ := cat.Price(walk[j], mode)
			return pi < pj
		})
	}

	type keptPackage struct {
		price    int64
		coverage *bitset.BitSet
	}
	kept := make([]keptPackage, 0, len(walk))
	out := make([]int, 0, len(walk))

	for _, idx := range walk {
		price, _ := cat.Price(idx, mode)
		restricted := cat.Coverage(idx).Intersection(required)
		dominated := false
		for _, k := range kept {
			if k.price <= price && k.coverage.IsSuperSet(restricted) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		kept = append(kept, keptPackage{price: price, coverage: restricted})
		out = append(out, idx)
	}
	return out
}

// Package solver calcule la combinaison de packages la moins chère couvrant
// un ensemble d'items (couverture d'ensemble pondérée).
//
// Étapes: Resolve -> Preselect -> Candidates/FilterDominated -> Search.
package solver

import (
	"context"

	"github.com/bits-and-blooms/bitset"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

type Solution struct {
	// Required est l'ensemble résolu, avant soustraction des packages forcés.
	Required *bitset.BitSet
	Dropped  *bitset.BitSet
	Billing  domain.BillingMode

	// Packages: index catalogue des packages retenus, forcés en premier.
	Packages    []int
	Preselected []int
	TotalPrice  int64
	Stats       Stats
}

// Solve exécute toute la chaîne pour une requête. Aucune donnée partagée
// n'est modifiée: plusieurs Solve peuvent tourner en parallèle sur le même
// catalogue.
func Solve(ctx context.Context, cat *catalog.Catalog, req domain.PlanRequest, opts Options) (Solution, error) {
	opts = opts.withDefaults()
	mode := req.Billing()

	res, err := Resolve(cat, req)
	if err != nil {
		return Solution{}, err
	}
	sol := Solution{Required: res.Required, Dropped: res.Dropped, Billing: mode}

	forced, remaining := Preselect(cat, res.Required, mode)
	sol.Preselected = forced
	for _, idx := range forced {
		price, _ := cat.Price(idx, mode)
		sol.TotalPrice += price
	}

	candidates := Candidates(cat, remaining, mode)
	filtered := FilterDominated(cat, candidates, remaining, mode, opts.DominanceOrder)

	found, price, stats, err := Search(ctx, cat, remaining, filtered, mode, opts)
	stats.Candidates = len(candidates)
	stats.AfterDominance = len(filtered)
	sol.Stats = stats
	if err != nil {
		return sol, err
	}

	sol.Packages = append(append([]int(nil), forced...), found...)
	sol.TotalPrice += price
	return sol, nil
}

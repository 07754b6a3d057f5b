package solver

import (
	"fmt"
	"strconv"

	"github.com/bits-and-blooms/bitset"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

// Resolution est l'ensemble requis d'une requête.
type Resolution struct {
	Required *bitset.BitSet
	// Dropped contient les items demandés qu'aucun package ne fournit dans le
	// mode de facturation actif.
	Dropped *bitset.BitSet
}

// Resolve transforme une requête en ensemble d'items à couvrir. Toute
// référence inconnue fait échouer la requête.
func Resolve(cat *catalog.Catalog, req domain.PlanRequest) (Resolution, error) {
	if !req.Live && !req.Highlights {
		return Resolution{}, fmt.Errorf("%w: at least one of 'live' or 'highlights' must be true", ErrInvalidRequest)
	}

	set := cat.NewSet()
	for _, id := range req.Items {
		item, ok := cat.Item(id)
		if !ok {
			return Resolution{}, &NotFoundError{Kind: "game", Name: strconv.FormatUint(uint64(id), 10)}
		}
		set.Set(item)
	}
	for _, team := range req.Teams {
		items, ok := cat.TeamItems(team)
		if !ok {
			return Resolution{}, &NotFoundError{Kind: "team", Name: team}
		}
		set.InPlaceUnion(items)
	}
	for _, tournament := range req.Tournaments {
		items, ok := cat.TournamentItems(tournament)
		if !ok {
			return Resolution{}, &NotFoundError{Kind: "tournament", Name: tournament}
		}
		set.InPlaceUnion(items)
	}
	if req.AllItems {
		set = cat.LiveItems().Clone()
	}

	if req.Highlights {
		highlights := cat.HighlightVariants(set)
		if req.Live {
			set.InPlaceUnion(highlights)
		} else {
			set = highlights
		}
	}

	universe := cat.Universe(req.Billing())
	dropped := set.Difference(universe)
	set.InPlaceIntersection(universe)
	return Resolution{Required: set, Dropped: dropped}, nil
}

package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

type pkgSpec struct {
	id         uint
	monthly    *int64
	yearly     *int64
	live       []uint
	highlights []uint
}

func yearly(id uint, price int64, live ...uint) pkgSpec {
	return pkgSpec{id: id, monthly: domain.Cents(price), yearly: domain.Cents(price), live: live}
}

func games(ids ...uint) []domain.Game {
	out := make([]domain.Game, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Game{ID: id, TeamHome: "Home", TeamAway: "Away", TournamentName: "Cup"})
	}
	return out
}

func buildCatalog(t *testing.T, gs []domain.Game, specs ...pkgSpec) *catalog.Catalog {
	t.Helper()
	data := domain.CatalogData{Games: gs}
	for _, s := range specs {
		data.Packages = append(data.Packages, domain.Package{
			ID:                      s.id,
			Name:                    "pkg",
			MonthlyPriceCents:       s.monthly,
			YearlyMonthlyPriceCents: s.yearly,
		})
		offers := map[uint]*domain.Offer{}
		var order []uint
		get := func(g uint) *domain.Offer {
			if o, ok := offers[g]; ok {
				return o
			}
			o := &domain.Offer{GameID: g, PackageID: s.id}
			offers[g] = o
			order = append(order, g)
			return o
		}
		for _, g := range s.live {
			get(g).Live = true
		}
		for _, g := range s.highlights {
			get(g).Highlights = true
		}
		for _, g := range order {
			data.Offers = append(data.Offers, *offers[g])
		}
	}
	cat, err := catalog.Build(data)
	require.NoError(t, err)
	return cat
}

// ids convertit des index catalogue en IDs de packages.
func ids(cat *catalog.Catalog, idxs []int) []uint {
	out := make([]uint, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, cat.Package(idx).ID)
	}
	return out
}

func idx(t *testing.T, cat *catalog.Catalog, id uint) int {
	t.Helper()
	i, ok := cat.PackageIndex(id)
	require.True(t, ok, "package %d", id)
	return i
}

// item renvoie l'item live du match gameID.
func item(t *testing.T, cat *catalog.Catalog, gameID uint) uint {
	t.Helper()
	it, ok := cat.Item(gameID)
	require.True(t, ok, "game %d", gameID)
	return it
}

package app

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
	"github.com/Guilhem-Bonnet/streamplan/internal/solver"
)

// RankedPackage est un package du classement renvoyé avec le plan.
type RankedPackage struct {
	domain.Package
	Selected bool `json:"selected"`
	// Covered: nombre d'items requis que le package fournit.
	Covered int `json:"covered"`
	// Weight: items couverts par centime dans le mode actif; 0 si gratuit ou inutile.
	Weight float64 `json:"weight"`
}

// BuildRows construit le tableau comparatif: une ligne par équipe, par
// compétition (avec ses matchs en sous-lignes) et par match demandé. Les
// noms doivent avoir été validés par solver.Resolve.
func BuildRows(cat *catalog.Catalog, req domain.PlanRequest, required *bitset.BitSet) []domain.Row {
	var rows []domain.Row
	for _, team := range dedupeStrings(req.Teams) {
		items, ok := cat.TeamItems(team)
		if !ok {
			continue
		}
		rows = append(rows, groupRow(cat, team, items, required))
	}
	for _, tournament := range dedupeStrings(req.Tournaments) {
		items, ok := cat.TournamentItems(tournament)
		if !ok {
			continue
		}
		rows = append(rows, groupRow(cat, tournament, items, required))
	}
	for _, id := range dedupeUints(req.Items) {
		if g, ok := cat.Game(id); ok {
			rows = append(rows, gameRow(cat, g))
		}
	}
	return rows
}

func groupRow(cat *catalog.Catalog, key string, items, required *bitset.BitSet) domain.Row {
	live := items.Intersection(required)
	highlights := cat.HighlightVariants(items)
	highlights.InPlaceIntersection(required)

	row := domain.Row{
		Key:                        key,
		ProviderCoverage:           map[string]domain.Coverage{},
		ProviderCoverageHighlights: map[string]domain.Coverage{},
	}
	for idx, p := range cat.Packages() {
		cov := cat.Coverage(idx)
		row.ProviderCoverage[p.Name] = coverageOf(cov, live)
		row.ProviderCoverageHighlights[p.Name] = coverageOf(cov, highlights)
	}
	for item, ok := items.NextSet(0); ok && item < cat.Offset(); item, ok = items.NextSet(item + 1) {
		row.SubRows = append(row.SubRows, gameRow(cat, cat.ItemGame(item)))
	}
	return row
}

func gameRow(cat *catalog.Catalog, g domain.Game) domain.Row {
	row := domain.Row{
		Key:                        g.String(),
		ProviderCoverage:           map[string]domain.Coverage{},
		ProviderCoverageHighlights: map[string]domain.Coverage{},
	}
	item, ok := cat.Item(g.ID)
	for idx, p := range cat.Packages() {
		cov := cat.Coverage(idx)
		row.ProviderCoverage[p.Name] = fullOrNone(ok && cov.Test(item))
		row.ProviderCoverageHighlights[p.Name] = fullOrNone(ok && cov.Test(item+cat.Offset()))
	}
	return row
}

// coverageOf: NONE si la plage est vide ou non couverte, FULL si entièrement couverte.
func coverageOf(cov, subset *bitset.BitSet) domain.Coverage {
	total := subset.Count()
	if total == 0 {
		return domain.CoverageNone
	}
	switch covered := cov.IntersectionCardinality(subset); {
	case covered == 0:
		return domain.CoverageNone
	case covered == total:
		return domain.CoverageFull
	default:
		return domain.CoveragePartial
	}
}

func fullOrNone(ok bool) domain.Coverage {
	if ok {
		return domain.CoverageFull
	}
	return domain.CoverageNone
}

// RankPackages classe tous les packages: ceux de la solution d'abord, dans
// l'ordre de sélection, puis les autres par items couverts par centime.
func RankPackages(cat *catalog.Catalog, sol solver.Solution) []RankedPackage {
	selected := make(map[int]bool, len(sol.Packages))
	out := make([]RankedPackage, 0, cat.NumPackages())
	for _, idx := range sol.Packages {
		selected[idx] = true
		out = append(out, rankEntry(cat, idx, sol, true))
	}

	rest := make([]RankedPackage, 0, cat.NumPackages()-len(sol.Packages))
	for idx := 0; idx < cat.NumPackages(); idx++ {
		if !selected[idx] {
			rest = append(rest, rankEntry(cat, idx, sol, false))
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Weight > rest[j].Weight })
	return append(out, rest...)
}

func rankEntry(cat *catalog.Catalog, idx int, sol solver.Solution, selected bool) RankedPackage {
	r := RankedPackage{Package: cat.Package(idx), Selected: selected}
	if sol.Required != nil {
		r.Covered = int(cat.Coverage(idx).IntersectionCardinality(sol.Required))
	}
	if price, ok := cat.Price(idx, sol.Billing); ok && price > 0 && r.Covered > 0 {
		r.Weight = float64(r.Covered) / float64(price)
	}
	return r
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func dedupeUints(in []uint) []uint {
	seen := make(map[uint]bool, len(in))
	out := make([]uint, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Package catalog construit l'index des items et la table de couverture des
// packages. Le Catalog est immuable une fois construit et peut être partagé
// entre toutes les requêtes sans verrou.
package catalog

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/zeebo/xxh3"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

// IntegrityError signale un catalogue incohérent. Fatal au chargement.
type IntegrityError struct {
	PackageID uint
	Reason    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog integrity: package %d: %s", e.PackageID, e.Reason)
}

type Catalog struct {
	games     []domain.Game
	gameIndex map[uint]int

	packages     []domain.Package
	packageIndex map[uint]int

	// Items denses: le match d'index i (ordre des IDs) a l'item live i et
	// l'item highlights i+offset, avec offset = nombre de matchs.
	offset uint
	width  uint

	coverage   []*bitset.BitSet
	all        *bitset.BitSet
	allMonthly *bitset.BitSet
	liveItems  *bitset.BitSet

	teams           map[string]*bitset.BitSet
	tournaments     map[string]*bitset.BitSet
	teamNames       []string
	tournamentNames []string

	coverers  map[uint][]int
	unique    map[uint]int
	uniqueSet *bitset.BitSet

	fingerprint string
}

// Build valide les enregistrements bruts et construit le catalogue.
func Build(data domain.CatalogData) (*Catalog, error) {
	if len(data.Packages) == 0 {
		return nil, fmt.Errorf("catalog: no packages")
	}

	games := append([]domain.Game(nil), data.Games...)
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	packages := append([]domain.Package(nil), data.Packages...)
	sort.Slice(packages, func(i, j int) bool { return packages[i].ID < packages[j].ID })

	c := &Catalog{
		games:        games,
		gameIndex:    make(map[uint]int, len(games)),
		packages:     packages,
		packageIndex: make(map[uint]int, len(packages)),
		teams:        map[string]*bitset.BitSet{},
		tournaments:  map[string]*bitset.BitSet{},
		coverers:     map[uint][]int{},
		unique:       map[uint]int{},
	}

	for i, g := range games {
		if _, dup := c.gameIndex[g.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate game id %d", g.ID)
		}
		c.gameIndex[g.ID] = i
	}
	c.offset = uint(len(games))
	c.width = 2 * c.offset

	for i, p := range packages {
		if _, dup := c.packageIndex[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate package id %d", p.ID)
		}
		if p.MonthlyPriceCents == nil && p.YearlyMonthlyPriceCents == nil {
			return nil, &IntegrityError{PackageID: p.ID, Reason: "no price for any billing mode"}
		}
		if (p.MonthlyPriceCents != nil && *p.MonthlyPriceCents < 0) ||
			(p.YearlyMonthlyPriceCents != nil && *p.YearlyMonthlyPriceCents < 0) {
			return nil, &IntegrityError{PackageID: p.ID, Reason: "negative price"}
		}
		c.packageIndex[p.ID] = i
	}

	c.liveItems = c.NewSet()
	for i, g := range games {
		item := uint(i)
		c.liveItems.Set(item)
		addTo(c.teams, g.TeamHome, item, c.NewSet)
		addTo(c.teams, g.TeamAway, item, c.NewSet)
		addTo(c.tournaments, g.TournamentName, item, c.NewSet)
	}
	c.teamNames = sortedKeys(c.teams)
	c.tournamentNames = sortedKeys(c.tournaments)

	c.coverage = make([]*bitset.BitSet, len(packages))
	for i := range c.coverage {
		c.coverage[i] = c.NewSet()
	}
	c.all = c.NewSet()
	c.allMonthly = c.NewSet()

	for _, o := range data.Offers {
		idx, ok := c.packageIndex[o.PackageID]
		if !ok {
			return nil, fmt.Errorf("catalog: offer for game %d references unknown package %d", o.GameID, o.PackageID)
		}
		gi, ok := c.gameIndex[o.GameID]
		if !ok {
			return nil, fmt.Errorf("catalog: offer of package %d references unknown game %d", o.PackageID, o.GameID)
		}
		monthly := packages[idx].MonthlyPriceCents != nil
		var ids []uint
		if o.Live {
			ids = append(ids, uint(gi))
		}
		if o.Highlights {
			ids = append(ids, uint(gi)+c.offset)
		}
		for _, id := range ids {
			c.coverage[idx].Set(id)
			c.all.Set(id)
			if monthly {
				c.allMonthly.Set(id)
			}
		}
	}

	for idx, cov := range c.coverage {
		for id, ok := cov.NextSet(0); ok; id, ok = cov.NextSet(id + 1) {
			c.coverers[id] = append(c.coverers[id], idx)
		}
	}
	c.uniqueSet = c.NewSet()
	for id, idxs := range c.coverers {
		if len(idxs) == 1 {
			c.unique[id] = idxs[0]
			c.uniqueSet.Set(id)
		}
	}

	c.fingerprint = fingerprint(games, packages, data.Offers)
	return c, nil
}

func addTo(m map[string]*bitset.BitSet, key string, id uint, alloc func() *bitset.BitSet) {
	s, ok := m[key]
	if !ok {
		s = alloc()
		m[key] = s
	}
	s.Set(id)
}

func sortedKeys(m map[string]*bitset.BitSet) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fingerprint(games []domain.Game, packages []domain.Package, offers []domain.Offer) string {
	h := xxh3.New()
	var buf []byte
	for _, g := range games {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(g.ID))
		_, _ = h.Write(buf)
		_, _ = h.WriteString(g.TeamHome + "\x00" + g.TeamAway + "\x00" + g.StartsAt + "\x00" + g.TournamentName + "\x00")
	}
	price := func(v *int64) uint64 {
		if v == nil {
			return ^uint64(0)
		}
		return uint64(*v)
	}
	for _, p := range packages {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(p.ID))
		buf = binary.LittleEndian.AppendUint64(buf, price(p.MonthlyPriceCents))
		buf = binary.LittleEndian.AppendUint64(buf, price(p.YearlyMonthlyPriceCents))
		_, _ = h.Write(buf)
		_, _ = h.WriteString(p.Name + "\x00")
	}
	sorted := append([]domain.Offer(nil), offers...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].GameID != sorted[j].GameID {
			return sorted[i].GameID < sorted[j].GameID
		}
		return sorted[i].PackageID < sorted[j].PackageID
	})
	for _, o := range sorted {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(o.GameID))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(o.PackageID))
		var flags byte
		if o.Live {
			flags |= 1
		}
		if o.Highlights {
			flags |= 2
		}
		buf = append(buf, flags)
		_, _ = h.Write(buf)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

package catalog

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

// Les bitsets renvoyés par les accesseurs sont partagés: ne jamais les muter,
// cloner avant toute opération InPlace*.

// NewSet alloue un ensemble vide dimensionné pour tout l'espace d'items.
func (c *Catalog) NewSet() *bitset.BitSet {
	return bitset.New(c.width)
}

func (c *Catalog) Offset() uint { return c.offset }

func (c *Catalog) IsHighlight(id uint) bool { return id >= c.offset }

// Width est le nombre d'items (live et highlights), indépendant des IDs de matchs.
func (c *Catalog) Width() uint { return c.width }

// Item renvoie l'item live du match gameID.
func (c *Catalog) Item(gameID uint) (uint, bool) {
	i, ok := c.gameIndex[gameID]
	return uint(i), ok
}

// Items construit l'ensemble des items live des matchs donnés. Les IDs
// inconnus sont ignorés.
func (c *Catalog) Items(gameIDs ...uint) *bitset.BitSet {
	out := c.NewSet()
	for _, id := range gameIDs {
		if item, ok := c.Item(id); ok {
			out.Set(item)
		}
	}
	return out
}

// ItemGame renvoie le match d'un item, live ou highlight.
func (c *Catalog) ItemGame(item uint) domain.Game {
	if item >= c.offset {
		item -= c.offset
	}
	return c.games[item]
}

// GameID ramène un item (live ou highlight) à l'ID du match.
func (c *Catalog) GameID(item uint) uint { return c.ItemGame(item).ID }

// HighlightVariants renvoie les IDs highlights correspondant aux IDs live de s.
func (c *Catalog) HighlightVariants(s *bitset.BitSet) *bitset.BitSet {
	out := c.NewSet()
	for id, ok := s.NextSet(0); ok && id < c.offset; id, ok = s.NextSet(id + 1) {
		out.Set(id + c.offset)
	}
	return out
}

// SplitVariants sépare un ensemble en sous-ensembles live et highlights.
func (c *Catalog) SplitVariants(s *bitset.BitSet) (live, highlights *bitset.BitSet) {
	live, highlights = c.NewSet(), c.NewSet()
	for id, ok := s.NextSet(0); ok; id, ok = s.NextSet(id + 1) {
		if id < c.offset {
			live.Set(id)
		} else {
			highlights.Set(id)
		}
	}
	return live, highlights
}

func (c *Catalog) NumPackages() int { return len(c.packages) }

// Packages renvoie les packages dans l'ordre du catalogue (ID croissant).
func (c *Catalog) Packages() []domain.Package { return c.packages }

func (c *Catalog) Package(idx int) domain.Package { return c.packages[idx] }

func (c *Catalog) PackageIndex(id uint) (int, bool) {
	idx, ok := c.packageIndex[id]
	return idx, ok
}

func (c *Catalog) Coverage(idx int) *bitset.BitSet { return c.coverage[idx] }

func (c *Catalog) Price(idx int, mode domain.BillingMode) (int64, bool) {
	return c.packages[idx].Price(mode)
}

// Eligible: un package sans le prix du mode actif ne peut pas être choisi.
func (c *Catalog) Eligible(idx int, mode domain.BillingMode) bool {
	_, ok := c.packages[idx].Price(mode)
	return ok
}

// Universe renvoie les items couvrables dans le mode de facturation.
// Mode annuel: tous les items couverts par au moins un package.
func (c *Catalog) Universe(mode domain.BillingMode) *bitset.BitSet {
	if mode == domain.BillingMonthly {
		return c.allMonthly
	}
	return c.all
}

// LiveItems renvoie l'ensemble des IDs live de tous les matchs.
func (c *Catalog) LiveItems() *bitset.BitSet { return c.liveItems }

func (c *Catalog) TeamItems(name string) (*bitset.BitSet, bool) {
	s, ok := c.teams[name]
	return s, ok
}

func (c *Catalog) TournamentItems(name string) (*bitset.BitSet, bool) {
	s, ok := c.tournaments[name]
	return s, ok
}

func (c *Catalog) Teams() []string       { return c.teamNames }
func (c *Catalog) Tournaments() []string { return c.tournamentNames }
func (c *Catalog) Games() []domain.Game  { return c.games }

func (c *Catalog) Game(id uint) (domain.Game, bool) {
	i, ok := c.gameIndex[id]
	if !ok {
		return domain.Game{}, false
	}
	return c.games[i], true
}

// Coverers renvoie les index des packages qui couvrent l'item, tous modes confondus.
func (c *Catalog) Coverers(id uint) []int { return c.coverers[id] }

// UniqueCoverer renvoie le seul package couvrant l'item, s'il est unique.
func (c *Catalog) UniqueCoverer(id uint) (int, bool) {
	idx, ok := c.unique[id]
	return idx, ok
}

func (c *Catalog) UniquelyCovered() *bitset.BitSet { return c.uniqueSet }

// Fingerprint identifie le contenu du catalogue (utilisé comme ETag).
func (c *Catalog) Fingerprint() string { return c.fingerprint }

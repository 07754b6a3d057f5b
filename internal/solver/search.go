package solver

import (
	"container/heap"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

const (
	DefaultRarityThreshold = 4
	DefaultMaxExpansions   = 2_000_000

	ctxCheckEvery = 1024
)

// Options règle la recherche. Les valeurs nulles prennent les défauts.
type Options struct {
	// RarityThreshold: un item couvert par au plus ce nombre de packages sert de graine.
	RarityThreshold int
	// MaxExpansions borne le nombre d'états développés; négatif = illimité.
	MaxExpansions  int
	DominanceOrder DominanceOrder
}

func DefaultOptions() Options {
	return Options{
		RarityThreshold: DefaultRarityThreshold,
		MaxExpansions:   DefaultMaxExpansions,
		DominanceOrder:  OrderPrice,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.RarityThreshold <= 0 {
		o.RarityThreshold = def.RarityThreshold
	}
	if o.MaxExpansions == 0 {
		o.MaxExpansions = def.MaxExpansions
	}
	if o.DominanceOrder == "" {
		o.DominanceOrder = def.DominanceOrder
	}
	return o
}

type Stats struct {
	Candidates     int `json:"candidates"`
	AfterDominance int `json:"after_dominance"`
	Seeds          int `json:"seeds"`
	Expansions     int `json:"expansions"`
	Pruned         int `json:"pruned"`
}

// memoEntry: meilleur état déjà développé pour une couverture exacte.
type memoEntry struct {
	price int64
	next  int
}

type node struct {
	parent int32
	pkg    int32
}

type search struct {
	cat        *catalog.Catalog
	mode       domain.BillingMode
	required   *bitset.BitSet
	candidates []int
	prices     []int64
	// restricted[i]: couverture du candidat i limitée aux items requis.
	restricted []*bitset.BitSet

	arena []node
	queue stateQueue
	memo  map[string]memoEntry
	seq   uint64
	stats Stats
}

// Search renvoie la combinaison la moins chère (puis la plus courte) de
// packages couvrant required, avec son prix. candidates doit contenir des
// index de packages éligibles dans le mode.
func Search(ctx context.Context, cat *catalog.Catalog, required *bitset.BitSet, candidates []int, mode domain.BillingMode, opts Options) ([]int, int64, Stats, error) {
	opts = opts.withDefaults()
	s := &search{
		cat:        cat,
		mode:       mode,
		required:   required,
		candidates: candidates,
		prices:     make([]int64, len(candidates)),
		restricted: make([]*bitset.BitSet, len(candidates)),
		memo:       map[string]memoEntry{},
	}
	for i, idx := range candidates {
		price, ok := cat.Price(idx, mode)
		if !ok {
			return nil, 0, s.stats, fmt.Errorf("package %d has no %s price", cat.Package(idx).ID, mode)
		}
		s.prices[i] = price
		s.restricted[i] = cat.Coverage(idx).Intersection(required)
	}

	if !s.coverable() {
		return nil, 0, s.stats, ErrInfeasible
	}

	s.seed(opts.RarityThreshold)

	for s.queue.Len() > 0 {
		if s.stats.Expansions%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, s.stats, fmt.Errorf("%w: %v", ErrBudgetExceeded, err)
			}
		}

		cur := heap.Pop(&s.queue).(*state)
		if cur.covered.IsSuperSet(required) {
			return s.packages(cur.node), cur.price, s.stats, nil
		}

		// Un état déjà développé avec la même couverture, un prix inférieur ou
		// égal et un index suivant inférieur ou égal atteint toutes les
		// extensions de cur pour moins cher.
		key := setKey(cur.covered)
		if known, ok := s.memo[key]; ok && known.price <= cur.price && known.next <= cur.next {
			s.stats.Pruned++
			continue
		}
		s.memo[key] = memoEntry{price: cur.price, next: cur.next}

		s.stats.Expansions++
		if opts.MaxExpansions > 0 && s.stats.Expansions > opts.MaxExpansions {
			return nil, 0, s.stats, fmt.Errorf("%w: more than %d expansions", ErrBudgetExceeded, opts.MaxExpansions)
		}
		s.expand(cur)
	}
	return nil, 0, s.stats, ErrInfeasible
}

// coverable vérifie que l'union des packages éligibles couvre required; évite
// d'épuiser tout l'espace de recherche pour rien.
func (s *search) coverable() bool {
	union := s.cat.NewSet()
	for idx := 0; idx < s.cat.NumPackages(); idx++ {
		if s.cat.Eligible(idx, s.mode) {
			union.InPlaceUnion(s.cat.Coverage(idx))
		}
	}
	return union.IsSuperSet(s.required)
}

// seed démarre la recherche depuis les packages couvrant les items rares.
// Toute solution contient forcément l'un d'eux.
func (s *search) seed(threshold int) {
	seeded := map[int]bool{}
	for id, ok := s.required.NextSet(0); ok; id, ok = s.required.NextSet(id + 1) {
		var coverers []int
		for _, idx := range s.cat.Coverers(id) {
			if s.cat.Eligible(idx, s.mode) {
				coverers = append(coverers, idx)
			}
		}
		if len(coverers) > threshold {
			continue
		}
		for _, idx := range coverers {
			if seeded[idx] {
				continue
			}
			seeded[idx] = true
			price, _ := s.cat.Price(idx, s.mode)
			s.push(&state{
				price:   price,
				count:   1,
				next:    0,
				covered: s.cat.Coverage(idx).Clone(),
				node:    s.link(-1, idx),
			})
		}
	}
	s.stats.Seeds = len(seeded)

	if s.queue.Len() == 0 {
		s.push(&state{covered: s.cat.NewSet(), node: -1})
	}
}

func (s *search) expand(cur *state) {
	for pos := cur.next; pos < len(s.candidates); pos++ {
		// Un package qui n'apporte aucun item requis ne peut pas améliorer la solution.
		if cur.covered.IsSuperSet(s.restricted[pos]) {
			continue
		}
		idx := s.candidates[pos]
		s.push(&state{
			price:   cur.price + s.prices[pos],
			count:   cur.count + 1,
			next:    pos + 1,
			covered: cur.covered.Union(s.cat.Coverage(idx)),
			node:    s.link(cur.node, idx),
		})
	}
}

func (s *search) push(st *state) {
	st.seq = s.seq
	s.seq++
	heap.Push(&s.queue, st)
}

func (s *search) link(parent int32, pkg int) int32 {
	s.arena = append(s.arena, node{parent: parent, pkg: int32(pkg)})
	return int32(len(s.arena) - 1)
}

// packages reconstruit la liste dans l'ordre d'ajout.
func (s *search) packages(n int32) []int {
	var out []int
	for ; n >= 0; n = s.arena[n].parent {
		out = append(out, int(s.arena[n].pkg))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// setKey encode exactement un ensemble, indépendamment de sa longueur.
func setKey(b *bitset.BitSet) string {
	words := b.Bytes()
	n := len(words)
	for n > 0 && words[n-1] == 0 {
		n--
	}
	buf := make([]byte, 8*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(buf[8*i:], words[i])
	}
	return string(buf)
}

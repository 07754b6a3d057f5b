package app

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Issues d'une requête de plan, utilisées comme clés de compteurs.
const (
	OutcomeCompleted  = "completed"
	OutcomeInfeasible = "infeasible"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
	OutcomeCacheHit   = "cache_hit"
)

// Counters: compteurs par issue, sûrs en concurrence.
type Counters struct {
	counts *xsync.Map[string, *atomic.Int64]
}

func NewCounters() *Counters {
	return &Counters{counts: xsync.NewMap[string, *atomic.Int64]()}
}

func (c *Counters) Inc(outcome string) {
	ctr, _ := c.counts.LoadOrStore(outcome, new(atomic.Int64))
	ctr.Add(1)
}

func (c *Counters) Get(outcome string) int64 {
	if ctr, ok := c.counts.Load(outcome); ok {
		return ctr.Load()
	}
	return 0
}

// Snapshot renvoie une copie des compteurs non nuls.
func (c *Counters) Snapshot() map[string]int64 {
	out := map[string]int64{}
	c.counts.Range(func(outcome string, ctr *atomic.Int64) bool {
		if v := ctr.Load(); v > 0 {
			out[outcome] = v
		}
		return true
	})
	return out
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/maypok86/otter"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
	"github.com/Guilhem-Bonnet/streamplan/internal/solver"
)

// Topics publiés sur le bus.
const (
	TopicPlanCompleted  = "plan.completed"
	TopicPlanInfeasible = "plan.infeasible"
	TopicPlanFailed     = "plan.failed"
)

const infeasibleMessage = "no combination of packages covers the requested items"

type PlannerConfig struct {
	Options       solver.Options
	Timeout       time.Duration
	MaxConcurrent int
	// CacheSize: 0 désactive le cache.
	CacheSize int
}

type PlanResponse struct {
	ID              string             `json:"id"`
	Billing         domain.BillingMode `json:"billing"`
	TotalPriceCents int64              `json:"total_price_cents"`
	Result          []domain.Package   `json:"result"`
	Preselected     []uint             `json:"preselected"`
	Packages        []RankedPackage    `json:"packages"`
	Rows            []domain.Row       `json:"rows"`
	// Uncovered: matchs demandés qu'aucun package ne fournit dans le mode actif.
	Uncovered           []uint       `json:"uncovered"`
	UncoveredHighlights []uint       `json:"uncovered_highlights"`
	Stats               solver.Stats `json:"stats"`
	Cached              bool         `json:"cached"`
}

// PlanEvent est la charge utile des événements plan.*.
type PlanEvent struct {
	ID              string             `json:"id"`
	Billing         domain.BillingMode `json:"billing"`
	TotalPriceCents int64              `json:"total_price_cents,omitempty"`
	Packages        []uint             `json:"packages,omitempty"`
	Error           string             `json:"error,omitempty"`
	DurationMS      int64              `json:"duration_ms"`
}

type PlannerStats struct {
	Outcomes      map[string]int64 `json:"outcomes"`
	InFlight      int              `json:"in_flight"`
	Waiting       int              `json:"waiting"`
	MaxConcurrent int              `json:"max_concurrent"`
	CacheEntries  int              `json:"cache_entries"`
}

// PlannerService orchestre une requête de plan: cache, limite de
// concurrence, recherche bornée, rapport, événements.
type PlannerService struct {
	logger   zerolog.Logger
	cat      *catalog.Catalog
	bus      ports.EventBus
	opts     solver.Options
	timeout  time.Duration
	limiter  *DynamicLimiter
	cache    *otter.Cache[uint64, solver.Solution]
	counters *Counters
}

func NewPlannerService(logger zerolog.Logger, cat *catalog.Catalog, bus ports.EventBus, cfg PlannerConfig) (*PlannerService, error) {
	s := &PlannerService{
		logger:   logger.With().Str("component", "planner").Logger(),
		cat:      cat,
		bus:      bus,
		opts:     cfg.Options,
		timeout:  cfg.Timeout,
		limiter:  NewDynamicLimiter(cfg.MaxConcurrent),
		counters: NewCounters(),
	}
	if cfg.CacheSize > 0 {
		cache, err := otter.MustBuilder[uint64, solver.Solution](cfg.CacheSize).
			Cost(func(_ uint64, _ solver.Solution) uint32 { return 1 }).
			Build()
		if err != nil {
			return nil, fmt.Errorf("build plan cache: %w", err)
		}
		s.cache = &cache
	}
	return s, nil
}

func (s *PlannerService) Catalog() *catalog.Catalog { return s.cat }

func (s *PlannerService) MaxConcurrent() int { return s.limiter.Limit() }

func (s *PlannerService) SetMaxConcurrent(n int) { s.limiter.SetLimit(n) }

func (s *PlannerService) Stats() PlannerStats {
	st := PlannerStats{
		Outcomes:      s.counters.Snapshot(),
		InFlight:      s.limiter.InFlight(),
		Waiting:       s.limiter.Waiting(),
		MaxConcurrent: s.limiter.Limit(),
	}
	if s.cache != nil {
		st.CacheEntries = s.cache.Size()
	}
	return st
}

func (s *PlannerService) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Plan calcule la combinaison la moins chère pour req.
func (s *PlannerService) Plan(ctx context.Context, req domain.PlanRequest) (PlanResponse, error) {
	start := time.Now()
	id := xid.New().String()
	key := requestKey(req)

	// Le catalogue est immuable: une solution dépend seulement de la requête
	// canonique. Le rapport est reconstruit pour respecter l'ordre demandé.
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.counters.Inc(OutcomeCacheHit)
			resp := s.buildResponse(id, req, cached)
			resp.Cached = true
			return resp, nil
		}
	}

	var sol solver.Solution
	err := s.limiter.Do(ctx, func(ctx context.Context) error {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		var err error
		sol, err = solver.Solve(ctx, s.cat, req, s.opts)
		return err
	})
	if err != nil {
		return PlanResponse{}, s.fail(id, req, sol, err, time.Since(start))
	}

	resp := s.buildResponse(id, req, sol)
	if s.cache != nil {
		s.cache.Set(key, sol)
	}
	s.counters.Inc(OutcomeCompleted)

	s.logger.Debug().
		Str("plan_id", id).
		Int("candidates", sol.Stats.Candidates).
		Int("after_dominance", sol.Stats.AfterDominance).
		Int("seeds", sol.Stats.Seeds).
		Int("expansions", sol.Stats.Expansions).
		Int64("total_price_cents", sol.TotalPrice).
		Dur("duration", time.Since(start)).
		Msg("plan computed")

	s.publish(TopicPlanCompleted, PlanEvent{
		ID:              id,
		Billing:         sol.Billing,
		TotalPriceCents: sol.TotalPrice,
		Packages:        packageIDs(s.cat, sol.Packages),
		DurationMS:      time.Since(start).Milliseconds(),
	})
	return resp, nil
}

// fail classe l'erreur, met à jour les compteurs et publie l'événement.
func (s *PlannerService) fail(id string, req domain.PlanRequest, sol solver.Solution, err error, elapsed time.Duration) error {
	evt := PlanEvent{ID: id, Billing: req.Billing(), Error: err.Error(), DurationMS: elapsed.Milliseconds()}

	switch {
	case errors.Is(err, solver.ErrInvalidRequest), errors.Is(err, ports.ErrNotFound):
		s.counters.Inc(OutcomeRejected)
		return err

	case errors.Is(err, solver.ErrInfeasible):
		s.counters.Inc(OutcomeInfeasible)
		s.publish(TopicPlanInfeasible, evt)
		return &CodedError{Code: CodeInfeasible, Message: infeasibleMessage, Err: err}

	case errors.Is(err, solver.ErrBudgetExceeded), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.counters.Inc(OutcomeFailed)
		s.logger.Warn().
			Str("plan_id", id).
			Int("expansions", sol.Stats.Expansions).
			Int("pruned", sol.Stats.Pruned).
			Dur("elapsed", elapsed).
			Msg("search budget exhausted")
		s.publish(TopicPlanFailed, evt)
		return &CodedError{Code: CodeBudgetExceeded, Message: "search budget exceeded", Err: err}

	default:
		s.counters.Inc(OutcomeFailed)
		s.logger.Error().Err(err).Str("plan_id", id).Msg("plan failed")
		s.publish(TopicPlanFailed, evt)
		return err
	}
}

func (s *PlannerService) buildResponse(id string, req domain.PlanRequest, sol solver.Solution) PlanResponse {
	resp := PlanResponse{
		ID:                  id,
		Billing:             sol.Billing,
		TotalPriceCents:     sol.TotalPrice,
		Result:              make([]domain.Package, 0, len(sol.Packages)),
		Preselected:         packageIDs(s.cat, sol.Preselected),
		Packages:            RankPackages(s.cat, sol),
		Rows:                BuildRows(s.cat, req, sol.Required),
		Uncovered:           []uint{},
		UncoveredHighlights: []uint{},
		Stats:               sol.Stats,
	}
	for _, idx := range sol.Packages {
		resp.Result = append(resp.Result, s.cat.Package(idx))
	}
	if sol.Dropped != nil {
		live, highlights := s.cat.SplitVariants(sol.Dropped)
		for i, ok := live.NextSet(0); ok; i, ok = live.NextSet(i + 1) {
			resp.Uncovered = append(resp.Uncovered, s.cat.GameID(i))
		}
		for i, ok := highlights.NextSet(0); ok; i, ok = highlights.NextSet(i + 1) {
			resp.UncoveredHighlights = append(resp.UncoveredHighlights, s.cat.GameID(i))
		}
	}
	return resp
}

func (s *PlannerService) publish(topic string, evt PlanEvent) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("marshal event")
		return
	}
	s.bus.Publish(topic, payload)
}

func packageIDs(cat *catalog.Catalog, idxs []int) []uint {
	out := make([]uint, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, cat.Package(idx).ID)
	}
	return out
}

// requestKey hache la forme canonique de la requête: listes triées et dédoublonnées.
func requestKey(req domain.PlanRequest) uint64 {
	canon := req
	canon.Items = dedupeUints(req.Items)
	sort.Slice(canon.Items, func(i, j int) bool { return canon.Items[i] < canon.Items[j] })
	canon.Teams = dedupeStrings(req.Teams)
	sort.Strings(canon.Teams)
	canon.Tournaments = dedupeStrings(req.Tournaments)
	sort.Strings(canon.Tournaments)

	b, _ := json.Marshal(canon)
	return xxh3.Hash(b)
}

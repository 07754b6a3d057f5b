package solver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

func teamGames() []domain.Game {
	return []domain.Game{
		{ID: 1, TeamHome: "Bayern München", TeamAway: "Real Madrid", TournamentName: "Champions League"},
		{ID: 2, TeamHome: "Hatayspor", TeamAway: "Bayern München", TournamentName: "Friendly"},
		{ID: 3, TeamHome: "Real Madrid", TeamAway: "AS Rom", TournamentName: "Champions League"},
		{ID: 4, TeamHome: "Oxford United", TeamAway: "Los Angeles FC", TournamentName: "Friendly"},
	}
}

func TestResolve_RequiresLiveOrHighlights(t *testing.T) {
	cat := buildCatalog(t, teamGames(), yearly(1, 10, 1, 2, 3, 4))

	_, err := Resolve(cat, domain.PlanRequest{Items: []uint{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestResolve_UnknownTeamIsNotFound(t *testing.T) {
	cat := buildCatalog(t, teamGames(), yearly(1, 10, 1, 2, 3, 4))

	_, err := Resolve(cat, domain.PlanRequest{Teams: []string{"Bayern München", "FC Nowhere"}, Live: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "team", nf.Kind)
	assert.Equal(t, "FC Nowhere", nf.Name)
	assert.Contains(t, err.Error(), "FC Nowhere")
}

func TestResolve_UnknownTournamentAndGame(t *testing.T) {
	cat := buildCatalog(t, teamGames(), yearly(1, 10, 1, 2, 3, 4))

	_, err := Resolve(cat, domain.PlanRequest{Tournaments: []string{"Serie Z"}, Live: true})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "tournament", nf.Kind)

	_, err = Resolve(cat, domain.PlanRequest{Items: []uint{99}, Live: true})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "game", nf.Kind)
	assert.Equal(t, "99", nf.Name)
}

func TestResolve_UnionsTeamsTournamentsAndItems(t *testing.T) {
	cat := buildCatalog(t, teamGames(), yearly(1, 10, 1, 2, 3, 4))

	res, err := Resolve(cat, domain.PlanRequest{
		Items:       []uint{4},
		Teams:       []string{"Hatayspor"},
		Tournaments: []string{"Champions League"},
		Live:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(4), res.Required.Count())
	for _, id := range []uint{1, 2, 3, 4} {
		assert.True(t, res.Required.Test(item(t, cat, id)), "game %d", id)
	}
}

func TestResolve_HighlightVariants(t *testing.T) {
	p := pkgSpec{id: 1, yearly: domain.Cents(10), live: []uint{1, 2, 3, 4}, highlights: []uint{1, 2, 3, 4}}
	cat := buildCatalog(t, teamGames(), p)
	off := cat.Offset()

	onlyHighlights, err := Resolve(cat, domain.PlanRequest{Teams: []string{"Real Madrid"}, Highlights: true})
	require.NoError(t, err)
	assert.Equal(t, uint(2), onlyHighlights.Required.Count())
	assert.True(t, onlyHighlights.Required.Test(item(t, cat, 1)+off))
	assert.True(t, onlyHighlights.Required.Test(item(t, cat, 3)+off))
	assert.False(t, onlyHighlights.Required.Test(item(t, cat, 1)))

	both, err := Resolve(cat, domain.PlanRequest{Teams: []string{"Real Madrid"}, Live: true, Highlights: true})
	require.NoError(t, err)
	assert.Equal(t, uint(4), both.Required.Count())
	assert.True(t, both.Required.Test(item(t, cat, 1)))
	assert.True(t, both.Required.Test(item(t, cat, 3)+off))
}

func TestResolve_DropsItemsOutsideBillingUniverse(t *testing.T) {
	monthlyOnly := pkgSpec{id: 1, monthly: domain.Cents(5), live: []uint{1, 2}}
	yearlyOnly := pkgSpec{id: 2, yearly: domain.Cents(7), live: []uint{3}}
	cat := buildCatalog(t, teamGames(), monthlyOnly, yearlyOnly)

	res, err := Resolve(cat, domain.PlanRequest{AllItems: true, Live: true, OnlyMonthlyBilling: true})
	require.NoError(t, err)
	assert.Equal(t, uint(2), res.Required.Count())
	assert.True(t, res.Dropped.Test(item(t, cat, 3)))
	assert.True(t, res.Dropped.Test(item(t, cat, 4)))

	res, err = Resolve(cat, domain.PlanRequest{AllItems: true, Live: true})
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.Required.Count(), "yearly mode keeps every covered item")
	assert.True(t, res.Dropped.Test(item(t, cat, 4)))
}

func TestResolve_IsIdempotent(t *testing.T) {
	cat := buildCatalog(t, teamGames(), yearly(1, 10, 1, 2), yearly(2, 12, 3, 4))
	req := domain.PlanRequest{Teams: []string{"Bayern München"}, Tournaments: []string{"Friendly"}, Live: true, Highlights: true}

	a, err := Resolve(cat, req)
	require.NoError(t, err)
	b, err := Resolve(cat, req)
	require.NoError(t, err)
	assert.True(t, a.Required.Equal(b.Required))
	assert.Equal(t, setKey(a.Required), setKey(b.Required))
}

package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

func sampleData() domain.CatalogData {
	return domain.CatalogData{
		Games: []domain.Game{
			{ID: 7, TeamHome: "Bayern München", TeamAway: "Real Madrid", TournamentName: "Champions League"},
			{ID: 2, TeamHome: "Hatayspor", TeamAway: "Bayern München", TournamentName: "Süper Lig Friendly"},
		},
		Packages: []domain.Package{
			{ID: 3, Name: "Sky", MonthlyPriceCents: domain.Cents(2500)},
			{ID: 1, Name: "DAZN", MonthlyPriceCents: domain.Cents(2999), YearlyMonthlyPriceCents: domain.Cents(1999)},
		},
		Offers: []domain.Offer{
			{GameID: 7, PackageID: 1, Live: true, Highlights: true},
			{GameID: 2, PackageID: 1, Live: true},
			{GameID: 7, PackageID: 3, Highlights: true},
		},
	}
}

func TestBuild_IndexesAndOffsets(t *testing.T) {
	cat, err := Build(sampleData())
	require.NoError(t, err)

	assert.Equal(t, uint(2), cat.Offset(), "one live item per game")
	assert.Equal(t, uint(4), cat.Width())
	assert.Equal(t, []uint{1, 3}, []uint{cat.Package(0).ID, cat.Package(1).ID}, "packages sorted by id")
	assert.Equal(t, uint(2), cat.Games()[0].ID)

	g2, ok := cat.Item(2)
	require.True(t, ok)
	g7, ok := cat.Item(7)
	require.True(t, ok)
	assert.Equal(t, uint(0), g2)
	assert.Equal(t, uint(1), g7)
	_, ok = cat.Item(42)
	assert.False(t, ok)

	dazn, ok := cat.PackageIndex(1)
	require.True(t, ok)
	cov := cat.Coverage(dazn)
	assert.True(t, cov.Test(g7))
	assert.True(t, cov.Test(g2))
	assert.True(t, cov.Test(g7+cat.Offset()))
	assert.False(t, cov.Test(g2+cat.Offset()))

	assert.True(t, cat.IsHighlight(g7+cat.Offset()))
	assert.Equal(t, uint(7), cat.GameID(g7+cat.Offset()))
	assert.Equal(t, uint(7), cat.GameID(g7))
	assert.Equal(t, "Real Madrid", cat.ItemGame(g7).TeamAway)
}

func TestBuild_SparseGameIDsKeepSetsSmall(t *testing.T) {
	data := domain.CatalogData{
		Games: []domain.Game{
			{ID: 3_000_000_000, TeamHome: "AS Rom", TeamAway: "Oxford United", TournamentName: "Friendly"},
			{ID: 1, TeamHome: "Bayern München", TeamAway: "Real Madrid", TournamentName: "Champions League"},
		},
		Packages: []domain.Package{
			{ID: 1, Name: "A", MonthlyPriceCents: domain.Cents(10)},
			{ID: 2, Name: "B", MonthlyPriceCents: domain.Cents(12)},
		},
		Offers: []domain.Offer{
			{GameID: 1, PackageID: 1, Live: true},
			{GameID: 3_000_000_000, PackageID: 2, Live: true, Highlights: true},
		},
	}

	cat, err := Build(data)
	require.NoError(t, err)
	assert.Equal(t, uint(2), cat.Offset())
	assert.Equal(t, uint(4), cat.Width())
	assert.LessOrEqual(t, cat.NewSet().Len(), uint(64), "set width follows the number of games, not their IDs")

	big, ok := cat.Item(3_000_000_000)
	require.True(t, ok)
	b, _ := cat.PackageIndex(2)
	assert.True(t, cat.Coverage(b).Test(big))
	assert.True(t, cat.Coverage(b).Test(big+cat.Offset()))
	assert.Equal(t, uint(3_000_000_000), cat.GameID(big+cat.Offset()))
	assert.True(t, cat.Items(1, 3_000_000_000, 99).Equal(cat.LiveItems()))
}

func TestBuild_TeamAndTournamentIndexes(t *testing.T) {
	cat, err := Build(sampleData())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bayern München", "Hatayspor", "Real Madrid"}, cat.Teams())
	assert.Equal(t, []string{"Champions League", "Süper Lig Friendly"}, cat.Tournaments())

	bayern, ok := cat.TeamItems("Bayern München")
	require.True(t, ok)
	assert.True(t, bayern.Equal(cat.Items(2, 7)))

	_, ok = cat.TeamItems("Oxford United")
	assert.False(t, ok)

	cl, ok := cat.TournamentItems("Champions League")
	require.True(t, ok)
	assert.True(t, cl.Equal(cat.Items(7)))
}

func TestBuild_UniverseAndUniqueCoverers(t *testing.T) {
	cat, err := Build(sampleData())
	require.NoError(t, err)
	dazn, _ := cat.PackageIndex(1)
	sky, _ := cat.PackageIndex(3)

	assert.Equal(t, uint(3), cat.Universe(domain.BillingYearly).Count())
	assert.Equal(t, uint(3), cat.Universe(domain.BillingMonthly).Count())
	assert.True(t, cat.Eligible(sky, domain.BillingMonthly))
	assert.False(t, cat.Eligible(sky, domain.BillingYearly))

	g2, _ := cat.Item(2)
	g7, _ := cat.Item(7)
	assert.Equal(t, []int{dazn, sky}, cat.Coverers(g7+cat.Offset()))
	got, ok := cat.UniqueCoverer(g2)
	require.True(t, ok)
	assert.Equal(t, dazn, got)
	_, ok = cat.UniqueCoverer(g7 + cat.Offset())
	assert.False(t, ok)
}

func TestBuild_MonthlyUniverseExcludesYearlyOnlyPackages(t *testing.T) {
	data := sampleData()
	data.Packages = append(data.Packages, domain.Package{ID: 9, Name: "Yearly", YearlyMonthlyPriceCents: domain.Cents(100)})
	data.Games = append(data.Games, domain.Game{ID: 4, TeamHome: "AS Rom", TeamAway: "Oxford United", TournamentName: "Friendly"})
	data.Offers = append(data.Offers, domain.Offer{GameID: 4, PackageID: 9, Live: true})

	cat, err := Build(data)
	require.NoError(t, err)
	g4, ok := cat.Item(4)
	require.True(t, ok)
	assert.True(t, cat.Universe(domain.BillingYearly).Test(g4))
	assert.False(t, cat.Universe(domain.BillingMonthly).Test(g4))
}

func TestBuild_RejectsPackageWithoutPrice(t *testing.T) {
	data := sampleData()
	data.Packages = append(data.Packages, domain.Package{ID: 5, Name: "Free"})

	_, err := Build(data)
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, uint(5), integrity.PackageID)
}

func TestBuild_RejectsNegativePrice(t *testing.T) {
	data := sampleData()
	data.Packages[0].MonthlyPriceCents = domain.Cents(-1)

	_, err := Build(data)
	var integrity *IntegrityError
	assert.ErrorAs(t, err, &integrity)
}

func TestBuild_RejectsBrokenReferences(t *testing.T) {
	cases := map[string]func(*domain.CatalogData){
		"unknown package": func(d *domain.CatalogData) {
			d.Offers = append(d.Offers, domain.Offer{GameID: 7, PackageID: 42, Live: true})
		},
		"unknown game": func(d *domain.CatalogData) {
			d.Offers = append(d.Offers, domain.Offer{GameID: 42, PackageID: 1, Live: true})
		},
		"duplicate game": func(d *domain.CatalogData) {
			d.Games = append(d.Games, d.Games[0])
		},
		"duplicate package": func(d *domain.CatalogData) {
			d.Packages = append(d.Packages, d.Packages[0])
		},
		"no packages": func(d *domain.CatalogData) {
			d.Packages = nil
			d.Offers = nil
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			data := sampleData()
			mutate(&data)
			_, err := Build(data)
			assert.Error(t, err)
		})
	}
}

func TestBuild_FingerprintIgnoresInputOrder(t *testing.T) {
	a, err := Build(sampleData())
	require.NoError(t, err)

	shuffled := sampleData()
	shuffled.Offers[0], shuffled.Offers[2] = shuffled.Offers[2], shuffled.Offers[0]
	shuffled.Games[0], shuffled.Games[1] = shuffled.Games[1], shuffled.Games[0]
	b, err := Build(shuffled)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)

	changed := sampleData()
	changed.Packages[0].MonthlyPriceCents = domain.Cents(2600)
	c, err := Build(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestHighlightVariantsAndSplit(t *testing.T) {
	cat, err := Build(sampleData())
	require.NoError(t, err)

	live := cat.Items(2, 7)
	hl := cat.HighlightVariants(live)
	assert.True(t, hl.Test(0+cat.Offset()))
	assert.True(t, hl.Test(1+cat.Offset()))
	assert.Equal(t, uint(2), hl.Count())

	l, h := cat.SplitVariants(live.Union(hl))
	assert.True(t, l.Equal(live))
	assert.True(t, h.Equal(hl))
}

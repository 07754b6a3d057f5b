package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

func TestFilterDominated_DropsPricierTwin(t *testing.T) {
	for _, order := range []DominanceOrder{OrderPrice, OrderCatalog} {
		t.Run(string(order), func(t *testing.T) {
			cat := buildCatalog(t, games(1, 2),
				yearly(1, 10, 1, 2),
				yearly(2, 15, 1, 2),
			)
			required := cat.Items(1, 2)

			got := FilterDominated(cat, Candidates(cat, required, domain.BillingYearly), required, domain.BillingYearly, order)
			assert.Equal(t, []uint{1}, ids(cat, got))
		})
	}
}

func TestFilterDominated_PricierTwinListedFirst(t *testing.T) {
	cat := buildCatalog(t, games(1, 2),
		yearly(1, 15, 1, 2),
		yearly(2, 10, 1, 2),
	)
	required := cat.Items(1, 2)
	cands := Candidates(cat, required, domain.BillingYearly)

	assert.Equal(t, []uint{2}, ids(cat, FilterDominated(cat, cands, required, domain.BillingYearly, OrderPrice)))
	// En ordre catalogue le package cher est vu en premier et survit.
	assert.Equal(t, []uint{1, 2}, ids(cat, FilterDominated(cat, cands, required, domain.BillingYearly, OrderCatalog)))
}

func TestFilterDominated_IgnoresCoverageOutsideRequired(t *testing.T) {
	// Le package 2 couvre en plus le match 3, qui n'est pas demandé.
	cat := buildCatalog(t, games(1, 2, 3),
		yearly(1, 10, 1, 2),
		yearly(2, 12, 1, 2, 3),
		yearly(3, 4, 2),
	)
	required := cat.Items(1, 2)

	got := FilterDominated(cat, Candidates(cat, required, domain.BillingYearly), required, domain.BillingYearly, OrderPrice)
	assert.Equal(t, []uint{3, 1}, ids(cat, got))
}

func TestCandidates_SkipsIneligibleAndUseless(t *testing.T) {
	cat := buildCatalog(t, games(1, 2),
		yearly(1, 10, 1),
		pkgSpec{id: 2, monthly: domain.Cents(3), live: []uint{1}},
		yearly(3, 1, 2),
	)
	required := cat.Items(1)

	assert.Equal(t, []uint{1}, ids(cat, Candidates(cat, required, domain.BillingYearly)))
	assert.Equal(t, []uint{1, 2}, ids(cat, Candidates(cat, required, domain.BillingMonthly)))
}

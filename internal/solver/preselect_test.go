package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

func TestPreselect_MonthlyForcesUniqueCoverer(t *testing.T) {
	cat := buildCatalog(t, games(1, 4),
		pkgSpec{id: 4, monthly: domain.Cents(5), live: []uint{4}},
		yearly(5, 3, 1),
		yearly(6, 4, 1),
	)
	required := cat.Items(1, 4)

	forced, remaining := Preselect(cat, required, domain.BillingMonthly)
	assert.Equal(t, []int{idx(t, cat, 4)}, forced)
	assert.True(t, remaining.Test(item(t, cat, 1)))
	assert.False(t, remaining.Test(item(t, cat, 4)))
	assert.True(t, required.Test(item(t, cat, 4)), "required must stay untouched")
}

func TestPreselect_ForcesEachPackageOnce(t *testing.T) {
	cat := buildCatalog(t, games(1, 2, 3),
		yearly(1, 5, 1, 2),
		yearly(2, 5, 3),
		yearly(3, 5, 3),
	)
	required := cat.Items(1, 2, 3)

	forced, remaining := Preselect(cat, required, domain.BillingMonthly)
	assert.Equal(t, []int{idx(t, cat, 1)}, forced)
	assert.Equal(t, uint(1), remaining.Count())
}

func TestPreselect_YearlyForcesNothing(t *testing.T) {
	cat := buildCatalog(t, games(1), yearly(1, 5, 1))
	required := cat.Items(1)

	forced, remaining := Preselect(cat, required, domain.BillingYearly)
	assert.Empty(t, forced)
	assert.True(t, remaining.Equal(required))
}

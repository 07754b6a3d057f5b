package domain

import "fmt"

// Game est un match diffusable. Son ID sert d'ID d'item "live"; la variante
// "highlights" est encodée par le catalogue (ID + offset).
type Game struct {
	ID             uint   `json:"id"`
	TeamHome       string `json:"team_home"`
	TeamAway       string `json:"team_away"`
	StartsAt       string `json:"starts_at"`
	TournamentName string `json:"tournament_name"`
}

func (g Game) String() string {
	return fmt.Sprintf("%s vs %s (%s)", g.TeamHome, g.TeamAway, g.TournamentName)
}

// Package est un abonnement achetable. Les prix sont en centimes; nil = absent.
type Package struct {
	ID                      uint   `json:"id"`
	Name                    string `json:"name"`
	MonthlyPriceCents       *int64 `json:"monthly_price_cents"`
	YearlyMonthlyPriceCents *int64 `json:"monthly_price_yearly_subscription_in_cents"`
}

// Price renvoie le prix applicable au mode de facturation.
func (p Package) Price(mode BillingMode) (int64, bool) {
	var v *int64
	if mode == BillingMonthly {
		v = p.MonthlyPriceCents
	} else {
		v = p.YearlyMonthlyPriceCents
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Offer indique qu'un package diffuse un match en live et/ou en highlights.
type Offer struct {
	GameID     uint `json:"game_id"`
	PackageID  uint `json:"streaming_package_id"`
	Live       bool `json:"live"`
	Highlights bool `json:"highlights"`
}

// CatalogData regroupe les enregistrements bruts, tels que lus par une source.
type CatalogData struct {
	Games    []Game
	Packages []Package
	Offers   []Offer
}

type BillingMode string

const (
	// BillingYearly: prix mensuel équivalent d'un abonnement annuel (mode par défaut).
	BillingYearly  BillingMode = "yearly"
	BillingMonthly BillingMode = "monthly"
)

func BillingModeFor(onlyMonthly bool) BillingMode {
	if onlyMonthly {
		return BillingMonthly
	}
	return BillingYearly
}

// Cents est un petit helper pour construire des prix optionnels.
func Cents(v int64) *int64 {
	return &v
}

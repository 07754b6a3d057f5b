package domain

// PlanRequest décrit les items à couvrir, indépendamment du transport.
type PlanRequest struct {
	Items              []uint   `json:"items"`
	Teams              []string `json:"teams"`
	Tournaments        []string `json:"tournaments"`
	Live               bool     `json:"live"`
	Highlights         bool     `json:"highlights"`
	OnlyMonthlyBilling bool     `json:"only_monthly_billing"`
	AllItems           bool     `json:"all_items"`
}

func (r PlanRequest) Billing() BillingMode {
	return BillingModeFor(r.OnlyMonthlyBilling)
}

type Coverage string

const (
	CoverageFull    Coverage = "FULL"
	CoveragePartial Coverage = "PARTIAL"
	CoverageNone    Coverage = "NONE"
)

// Row est une ligne du tableau comparatif (équipe, compétition ou match).
type Row struct {
	Key                        string              `json:"key"`
	ProviderCoverage           map[string]Coverage `json:"provider_coverage"`
	ProviderCoverageHighlights map[string]Coverage `json:"provider_coverage_highlights"`
	SubRows                    []Row               `json:"sub_rows"`
}

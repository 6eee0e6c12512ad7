package engine

// ProfitConfig bounds what counts as a worthwhile trade and how large a
// Jito tip to offer, matching original_source/strategy/pricing.rs's
// ProfitConfig defaults.
type ProfitConfig struct {
	MinProfitSOL  float64
	MaxJitoTipSOL float64
	GasCostSOL    float64
	// DynamicTipRatio is the fraction of gross profit offered as tip
	// before the static floor and MaxJitoTipSOL cap are applied (spec.md
	// scenario 6).
	DynamicTipRatio float64
	// StaticTipSOL is the tip floor below which the dynamic amount is
	// never allowed to fall (spec.md §4.7, strategy.static_tip_sol) —
	// thin spreads still need enough tip to win block-engine priority.
	StaticTipSOL float64
}

// DefaultProfitConfig matches original_source/strategy/pricing.rs's
// hardcoded defaults, plus a StaticTipSOL floor the original did not
// have (spec.md §4.7 supplements it).
var DefaultProfitConfig = ProfitConfig{
	MinProfitSOL:    0.01,
	MaxJitoTipSOL:   0.1,
	GasCostSOL:      0.000005,
	DynamicTipRatio: 0.5,
	StaticTipSOL:    0.0001,
}

// CalculateTip returns the tip to offer, in SOL, and whether the trade
// clears MinProfitSOL net of gas and tip, given the gross profit (sell
// proceeds minus input amount, both in SOL) of a two-leg swap.
// Grounded on original_source/strategy/pricing.rs's calculate_profit,
// extended per spec.md §4.7's tip = min(max_tip, max(static_tip,
// gross_profit*dynamic_ratio)): the dynamic amount is raised to
// StaticTipSOL before the MaxJitoTipSOL cap, then net profit = gross -
// gas - tip must exceed MinProfitSOL.
func (cfg ProfitConfig) CalculateTip(grossProfitSOL float64) (tipSOL float64, profitable bool) {
	if grossProfitSOL <= 0 {
		return 0, false
	}

	tip := grossProfitSOL * cfg.DynamicTipRatio
	if tip < cfg.StaticTipSOL {
		tip = cfg.StaticTipSOL
	}
	if tip > cfg.MaxJitoTipSOL {
		tip = cfg.MaxJitoTipSOL
	}

	netProfit := grossProfitSOL - cfg.GasCostSOL - tip
	return tip, netProfit > cfg.MinProfitSOL
}

const lamportsPerSOL = 1_000_000_000

// SOLToLamports converts a SOL-denominated float amount to lamports,
// truncating any sub-lamport remainder.
func SOLToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(sol * lamportsPerSOL)
}

// Package detector evaluates a pair of pool states for a profitable
// price spread and decides the trade direction. Grounded on
// original_source/strategies/arb.rs's process_new_pool spread check.
package detector

import (
	"math"

	"github.com/yimingwow/scavenger/internal/codec"
	"github.com/yimingwow/scavenger/internal/types"
	"go.uber.org/zap"
)

// DefaultSpreadThreshold is the minimum absolute relative price
// difference between the two venues before an opportunity is reported,
// 0.5% (50 bps), the same value as the config default
// strategy.min_spread_bps (spec.md §6), which overrides it.
const DefaultSpreadThreshold = 0.005

// Direction indicates which venue to buy on and which to sell on.
type Direction uint8

const (
	// BuyVenue1SellVenue2 means venue 1 (constant-product) is cheaper:
	// buy there, sell on venue 2 (concentrated liquidity).
	BuyVenue1SellVenue2 Direction = iota
	BuyVenue2SellVenue1
)

// Opportunity is a detected, not-yet-sized arbitrage signal.
type Opportunity struct {
	Token       types.TokenMint
	Venue1Pool  types.PoolAddress
	Venue2Pool  types.PoolAddress
	Venue1Price float64
	Venue2Price float64
	Spread      float64 // |venue2 - venue1| / min(venue1, venue2)
	Direction   Direction
}

// Detector evaluates pair states against a spread threshold.
type Detector struct {
	spreadThreshold float64
	log             *zap.SugaredLogger
}

// New builds a Detector with the given minimum absolute spread (e.g.
// 0.005 for 0.5%). A zero or negative threshold falls back to
// DefaultSpreadThreshold.
func New(spreadThreshold float64, log *zap.SugaredLogger) *Detector {
	if spreadThreshold <= 0 {
		spreadThreshold = DefaultSpreadThreshold
	}
	return &Detector{spreadThreshold: spreadThreshold, log: log}
}

// Evaluate computes each pool's price and returns an Opportunity if the
// absolute spread between venues clears the threshold. A false second
// return means no opportunity — either the spread was too small or one
// side's reserves/price could not be computed, with the reason logged
// at debug level rather than returned as an error (spec.md §4.6: a
// non-opportunity is a routine outcome, not a failure).
func (d *Detector) Evaluate(token types.TokenMint, venue1, venue2 *types.PoolState) (Opportunity, bool) {
	if venue1 == nil || venue2 == nil {
		return Opportunity{}, false
	}

	price1, ok1 := priceOf(venue1)
	price2, ok2 := priceOf(venue2)
	if !ok1 || !ok2 {
		d.log.Debugw("drop: price unavailable", "token", token, "venue1_ok", ok1, "venue2_ok", ok2)
		return Opportunity{}, false
	}
	if price1 <= 0 || price2 <= 0 {
		return Opportunity{}, false
	}

	diff := price2 - price1
	spread := math.Abs(diff) / math.Min(price1, price2)
	if spread < d.spreadThreshold {
		d.log.Debugw("drop: spread below threshold", "token", token, "spread", spread, "threshold", d.spreadThreshold)
		return Opportunity{}, false
	}

	direction := BuyVenue1SellVenue2
	if diff < 0 {
		direction = BuyVenue2SellVenue1
	}

	return Opportunity{
		Token:       token,
		Venue1Pool:  venue1.Pool,
		Venue2Pool:  venue2.Pool,
		Venue1Price: price1,
		Venue2Price: price2,
		Spread:      spread,
		Direction:   direction,
	}, true
}

// priceOf computes a pool's price in venue-native terms: reserveB /
// reserveA for constant-product, or the sqrt-price-derived spot price
// for concentrated liquidity.
func priceOf(state *types.PoolState) (float64, bool) {
	switch state.Venue {
	case types.VenueConstantProduct:
		if state.ReserveA == 0 {
			return 0, false
		}
		return float64(state.ReserveB) / float64(state.ReserveA), true
	case types.VenueConcentratedLiquidity:
		return codec.SqrtPriceX64ToPrice(state.SqrtPriceQ64_64), true
	default:
		return 0, false
	}
}

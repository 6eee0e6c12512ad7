package detector

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"lukechampine.com/uint128"

	"github.com/yimingwow/scavenger/internal/types"
)

func discardLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestEvaluate_DetectsOpportunityAboveThreshold(t *testing.T) {
	d := New(0.005, discardLogger())
	token := solana.NewWallet().PublicKey()

	venue1 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 1000, ReserveB: 1000} // price 1.0
	venue2 := &types.PoolState{Venue: types.VenueConcentratedLiquidity, SqrtPriceQ64_64: uint128.New(0, 2)} // price 4.0

	opp, ok := d.Evaluate(token, venue1, venue2)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, opp.Venue1Price, 1e-9)
	assert.InDelta(t, 4.0, opp.Venue2Price, 1e-6)
	assert.Equal(t, BuyVenue1SellVenue2, opp.Direction)
}

func TestEvaluate_DropsBelowThreshold(t *testing.T) {
	d := New(0.05, discardLogger())
	token := solana.NewWallet().PublicKey()

	venue1 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 1000, ReserveB: 1000}
	venue2 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 1000, ReserveB: 1001}

	_, ok := d.Evaluate(token, venue1, venue2)
	assert.False(t, ok)
}

func TestEvaluate_DropsZeroReserve(t *testing.T) {
	d := New(0.005, discardLogger())
	token := solana.NewWallet().PublicKey()

	venue1 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 0, ReserveB: 1000}
	venue2 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 1000, ReserveB: 2000}

	_, ok := d.Evaluate(token, venue1, venue2)
	assert.False(t, ok)
}

func TestEvaluate_SpreadDividesByCheaperVenue(t *testing.T) {
	// venue1 is the more expensive leg (1.01 vs 1.00): the spread must be
	// relative to the cheaper venue (1.00), not always venue1, so it
	// reads as 1% here rather than ~0.99%.
	d := New(0.005, discardLogger())
	token := solana.NewWallet().PublicKey()

	venue1 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 100, ReserveB: 101} // price 1.01
	venue2 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 100, ReserveB: 100} // price 1.00

	opp, ok := d.Evaluate(token, venue1, venue2)
	assert.True(t, ok)
	assert.InDelta(t, 0.01, opp.Spread, 1e-9)
	assert.Equal(t, BuyVenue2SellVenue1, opp.Direction)
}

func TestEvaluate_DirectionFlipsWithSpreadSign(t *testing.T) {
	d := New(0.005, discardLogger())
	token := solana.NewWallet().PublicKey()

	venue1 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 1000, ReserveB: 2000} // price 2.0
	venue2 := &types.PoolState{Venue: types.VenueConstantProduct, ReserveA: 1000, ReserveB: 1000} // price 1.0

	opp, ok := d.Evaluate(token, venue1, venue2)
	assert.True(t, ok)
	assert.Equal(t, BuyVenue2SellVenue1, opp.Direction)
}

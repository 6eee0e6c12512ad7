package inventory

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/yimingwow/scavenger/internal/types"
)

var wsol = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

func newToken() types.TokenMint {
	return solana.NewWallet().PublicKey()
}

func TestAddPool_IdempotentInsert(t *testing.T) {
	inv := New()
	token := newToken()
	pool := solana.NewWallet().PublicKey()

	state := &types.PoolState{Venue: types.VenueConstantProduct, Pool: pool, MintA: wsol, MintB: token}
	inv.AddPool(state)
	inv.AddPool(state) // re-add, should not duplicate

	pools := inv.PoolsFor(token)
	assert.Len(t, pools, 1)
}

func TestAddPool_BothQuoteLegsDropped(t *testing.T) {
	inv := New()
	usdc := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pool := solana.NewWallet().PublicKey()
	inv.AddPool(&types.PoolState{Venue: types.VenueConstantProduct, Pool: pool, MintA: wsol, MintB: usdc})

	stats := inv.Stats()
	assert.Equal(t, 0, stats.Pools)
}

func TestPairForToken_BuildsOnceBothVenuesSeen(t *testing.T) {
	inv := New()
	token := newToken()
	cpmmPool := solana.NewWallet().PublicKey()
	clPool := solana.NewWallet().PublicKey()

	inv.AddPool(&types.PoolState{Venue: types.VenueConstantProduct, Pool: cpmmPool, MintA: wsol, MintB: token})
	assert.Nil(t, inv.PairForToken(token))

	inv.AddPool(&types.PoolState{Venue: types.VenueConcentratedLiquidity, Pool: clPool, MintA: wsol, MintB: token})
	pair := inv.PairForToken(token)
	assert.NotNil(t, pair)
	assert.Equal(t, cpmmPool, pair.Venue1Pool)
	assert.Equal(t, clPool, *pair.Venue2Pool)
}

func TestPairForPool_FollowsPoolToTokenChain(t *testing.T) {
	inv := New()
	token := newToken()
	cpmmPool := solana.NewWallet().PublicKey()
	clPool := solana.NewWallet().PublicKey()
	inv.AddPool(&types.PoolState{Venue: types.VenueConstantProduct, Pool: cpmmPool, MintA: wsol, MintB: token})
	inv.AddPool(&types.PoolState{Venue: types.VenueConcentratedLiquidity, Pool: clPool, MintA: wsol, MintB: token})

	pair := inv.PairForPool(clPool)
	assert.NotNil(t, pair)
	assert.Equal(t, cpmmPool, pair.Venue1Pool)
}

func TestWatchList_CapAppliedByCaller(t *testing.T) {
	inv := New()
	for i := 0; i < 5; i++ {
		token := newToken()
		inv.AddPool(&types.PoolState{Venue: types.VenueConstantProduct, Pool: solana.NewWallet().PublicKey(), MintA: wsol, MintB: token})
		inv.AddPool(&types.PoolState{Venue: types.VenueConcentratedLiquidity, Pool: solana.NewWallet().PublicKey(), MintA: wsol, MintB: token})
	}
	list := inv.WatchList()
	assert.Len(t, list, 10)
}

func TestHasLiquidity(t *testing.T) {
	inv := New()
	token := newToken()
	assert.False(t, inv.HasLiquidity(token))
	inv.AddPool(&types.PoolState{Venue: types.VenueConstantProduct, Pool: solana.NewWallet().PublicKey(), MintA: wsol, MintB: token})
	assert.True(t, inv.HasLiquidity(token))
}

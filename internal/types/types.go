// Package types holds the cross-package data model shared by the codec,
// inventory, detector, and engine: opaque chain identifiers and the
// tagged venue variant.
package types

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// TokenMint is the 32-byte mint address of an SPL token. Equality is by value.
type TokenMint = solana.PublicKey

// PoolAddress is the 32-byte account address of an AMM pool.
type PoolAddress = solana.PublicKey

// VenueKind tags which AMM variant a pool belongs to. The two layouts
// differ in state representation and price computation (codec.DecodeCPMM
// vs codec.DecodeCL).
type VenueKind uint8

const (
	VenueConstantProduct VenueKind = iota
	VenueConcentratedLiquidity
)

func (v VenueKind) String() string {
	switch v {
	case VenueConstantProduct:
		return "constant_product"
	case VenueConcentratedLiquidity:
		return "concentrated_liquidity"
	default:
		return "unknown"
	}
}

// PoolState is the decoded view of a single pool, as produced by the
// codec package and held by the inventory/detector for the duration of
// one opportunity evaluation. Only one of the two field groups is
// populated, selected by Venue.
type PoolState struct {
	Venue VenueKind
	Pool  PoolAddress

	MintA, MintB         TokenMint
	DecimalsA, DecimalsB uint8

	// ConstantProduct fields.
	ReserveA, ReserveB           uint64
	FeeNumerator, FeeDenominator uint64
	OpenOrders, TargetOrders     solana.PublicKey
	SerumMarket, SerumProgramID  solana.PublicKey
	VaultSignerNonce             uint64
	PoolCoinVault, PoolPcVault   solana.PublicKey

	// ConcentratedLiquidity fields.
	SqrtPriceQ64_64      uint128.Uint128
	Tick                 int32
	Liquidity            uint128.Uint128
	FeeRate              uint16
	TickSpacing          uint16
	VaultA, VaultB       solana.PublicKey

	// LastSeenSlot is freshness metadata set by the producer (ingest or
	// fetch_and_price); it is not authoritative chain state.
	LastSeenSlot uint64
}

// ArbitragePair identifies the two pools on different venues that share a
// non-quote token. At most one entry exists per token in the inventory.
type ArbitragePair struct {
	Token       TokenMint
	Venue1Pool  PoolAddress
	Venue2Pool  *PoolAddress
}

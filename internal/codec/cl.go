package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/yimingwow/scavenger/internal/types"
	"github.com/yimingwow/scavenger/internal/xerrors"
	"lukechampine.com/uint128"
)

// CL field offsets, counted from the start of the raw account bytes
// (the 8-byte anchor discriminator is included in these offsets, unlike
// the CPMM variant which has no discriminator at all). See spec.md §4.1.
const (
	clTickSpacingOffset = 41 // 8 (disc) + 32 (config) + 1 (bump)
	clFeeRateOffset     = 43 // 8 (disc) + 32 (config) + 1 (bump) + 2 (tick_spacing)
	clLiquidityOffset   = 49
	clSqrtPriceOffset   = 65
	clTickOffset        = 81
	clMintAOffset       = 101
	clVaultAOffset      = clMintAOffset + 32 // 133
	clMintBOffset       = 181
	clVaultBOffset      = clMintBOffset + 32 // 213
)

// DecodeCL reconstructs concentrated-liquidity pool state from raw
// account bytes. It fails with xerrors.ErrShortBuffer when the slice is
// smaller than the minimum required prefix (85 bytes — through
// tick_current_index).
func DecodeCL(pool types.PoolAddress, data []byte) (*types.PoolState, error) {
	if len(data) < clMinSpan {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", xerrors.ErrShortBuffer, clMinSpan, len(data))
	}

	tickSpacing := binary.LittleEndian.Uint16(data[clTickSpacingOffset : clTickSpacingOffset+2])
	feeRate := binary.LittleEndian.Uint16(data[clFeeRateOffset : clFeeRateOffset+2])
	liquidity := uint128.FromBytes(data[clLiquidityOffset : clLiquidityOffset+16])
	sqrtPrice := uint128.FromBytes(data[clSqrtPriceOffset : clSqrtPriceOffset+16])
	tick := int32(binary.LittleEndian.Uint32(data[clTickOffset : clTickOffset+4]))

	var mintA, mintB, vaultA, vaultB solana.PublicKey
	if len(data) >= clMintAOffset+32 {
		mintA = solana.PublicKeyFromBytes(data[clMintAOffset : clMintAOffset+32])
	}
	if len(data) >= clVaultAOffset+32 {
		vaultA = solana.PublicKeyFromBytes(data[clVaultAOffset : clVaultAOffset+32])
	}
	if len(data) >= clMintBOffset+32 {
		mintB = solana.PublicKeyFromBytes(data[clMintBOffset : clMintBOffset+32])
	}
	if len(data) >= clVaultBOffset+32 {
		vaultB = solana.PublicKeyFromBytes(data[clVaultBOffset : clVaultBOffset+32])
	}

	return &types.PoolState{
		Venue:           types.VenueConcentratedLiquidity,
		Pool:            pool,
		MintA:           mintA,
		MintB:           mintB,
		SqrtPriceQ64_64: sqrtPrice,
		Tick:            tick,
		Liquidity:       liquidity,
		FeeRate:         feeRate,
		TickSpacing:     tickSpacing,
		VaultA:          vaultA,
		VaultB:          vaultB,
	}, nil
}

// SqrtPriceX64ToPrice converts a Q64.64 sqrt-price to a float64 price:
// price = (sqrt_price / 2^64)^2. Computed in f64 for comparison only; the
// integer sqrt_price is retained on PoolState for any future on-chain-
// accurate quoting (spec.md §4.1).
func SqrtPriceX64ToPrice(sqrtPriceQ64_64 uint128.Uint128) float64 {
	sqrtPrice, _ := sqrtPriceQ64_64.Big().Float64()
	const q64 = 18446744073709551616.0 // 2^64
	p := sqrtPrice / q64
	return p * p
}

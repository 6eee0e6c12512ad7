package codec

import (
	"fmt"
	"math"

	cosmath "cosmossdk.io/math"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// GetAmountOut computes the constant-product swap output, matching
// original_source/amm/math.rs's get_amount_out exactly: the fee is
// folded into the input before the single division at the end, rather
// than divided out of the fee itself first — amount_in_with_fee =
// amount_in*(fee_den-fee_num), numerator = reserve_out*amount_in_with_fee,
// denominator = reserve_in*fee_den + amount_in_with_fee. Deferring the
// division this way (instead of truncating amount_in*fee_num/fee_den up
// front) avoids a rounding error that can overstate amount_out by a
// unit on some inputs. Intermediate products are computed with
// cosmossdk.io/math's arbitrary-precision Int, exactly as the teacher's
// AMMPool.Quote does, since amountIn * reserveOut can exceed 2^64 for
// realistic pools (spec.md §4.1 "256-bit intermediate").
//
// Returns xerrors.ErrQuote if amountIn or either reserve is zero, or if
// feeDenominator is zero.
func GetAmountOut(amountIn, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (uint64, error) {
	if amountIn == 0 {
		return 0, fmt.Errorf("%w: zero amount in", xerrors.ErrQuote)
	}
	if reserveIn == 0 || reserveOut == 0 {
		return 0, fmt.Errorf("%w: zero reserve", xerrors.ErrQuote)
	}
	if feeDenominator == 0 {
		return 0, fmt.Errorf("%w: zero fee denominator", xerrors.ErrQuote)
	}
	if feeNumerator > feeDenominator {
		return 0, fmt.Errorf("%w: fee numerator exceeds denominator", xerrors.ErrQuote)
	}

	in := cosmath.NewIntFromUint64(amountIn)
	feeNum := cosmath.NewIntFromUint64(feeNumerator)
	feeDen := cosmath.NewIntFromUint64(feeDenominator)
	resIn := cosmath.NewIntFromUint64(reserveIn)
	resOut := cosmath.NewIntFromUint64(reserveOut)

	amountInWithFee := in.Mul(feeDen.Sub(feeNum))

	numerator := resOut.Mul(amountInWithFee)
	denominator := resIn.Mul(feeDen).Add(amountInWithFee)
	if denominator.IsZero() {
		return 0, fmt.Errorf("%w: zero denominator", xerrors.ErrQuote)
	}

	amountOut := numerator.Quo(denominator)
	if !amountOut.IsUint64() {
		return 0, fmt.Errorf("%w: overflow", xerrors.ErrQuote)
	}
	return amountOut.Uint64(), nil
}

// TickToPrice converts a CL tick index to a price: 1.0001^tick, the same
// formula the teacher's CLMMPool.CurrentPrice uses math.Pow for. Nothing
// outside its test calls it; the CL variant (spec.md §4.1) carries both
// sqrt_price and tick, and this gives the price implied by the tick.
func TickToPrice(tick int32) float64 {
	return math.Pow(1.0001, float64(tick))
}

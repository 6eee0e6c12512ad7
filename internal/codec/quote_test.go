package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yimingwow/scavenger/internal/xerrors"
)

func TestGetAmountOut_ScenarioOne(t *testing.T) {
	out, err := GetAmountOut(100, 1000, 1000, 25, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), out)
}

func TestGetAmountOut_FeeFreeTruncation(t *testing.T) {
	// A tiny trade against deep reserves with zero fee truncates to zero
	// rather than erroring (spec.md scenario 2).
	out, err := GetAmountOut(1, 1_000_000_000, 1_000_000_000, 0, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), out)
}

func TestGetAmountOut_ZeroAmountIn(t *testing.T) {
	_, err := GetAmountOut(0, 1000, 1000, 25, 10000)
	assert.True(t, errors.Is(err, xerrors.ErrQuote))
}

func TestGetAmountOut_DeferredDivision(t *testing.T) {
	// Counterexample where truncating amount_in*fee_num/fee_den before
	// subtracting (instead of deferring the division to the final
	// quotient) would overstate the result: 29 is correct, not 30.
	out, err := GetAmountOut(13, 50, 200, 3333, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(29), out)
}

func TestGetAmountOut_ZeroReserve(t *testing.T) {
	_, err := GetAmountOut(100, 0, 1000, 25, 10000)
	assert.True(t, errors.Is(err, xerrors.ErrQuote))

	_, err = GetAmountOut(100, 1000, 0, 25, 10000)
	assert.True(t, errors.Is(err, xerrors.ErrQuote))
}

func TestGetAmountOut_Monotonic(t *testing.T) {
	// I5: increasing amount_in never decreases amount_out for fixed
	// reserves/fee.
	prev := uint64(0)
	for _, in := range []uint64{10, 100, 1000, 10000, 100000} {
		out, err := GetAmountOut(in, 5_000_000, 5_000_000, 25, 10000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out, prev)
		prev = out
	}
}

func TestGetAmountOut_ZeroFeeDenominator(t *testing.T) {
	_, err := GetAmountOut(100, 1000, 1000, 0, 0)
	assert.True(t, errors.Is(err, xerrors.ErrQuote))
}

func TestTickToPrice_Zero(t *testing.T) {
	assert.InDelta(t, 1.0, TickToPrice(0), 1e-9)
}

func TestCPMMSwapInstruction_RoundTrip(t *testing.T) {
	// I3: encode/decode round trips, fixed 17-byte length.
	data := EncodeCPMMSwap(1_000_000, 990_000)
	assert.Len(t, data, CPMMSwapInstructionLen)

	amountIn, minOut, err := DecodeCPMMSwap(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), amountIn)
	assert.Equal(t, uint64(990_000), minOut)
}

func TestCPMMSwapInstruction_RejectsWrongOpcode(t *testing.T) {
	data := EncodeCPMMSwap(1, 1)
	data[0] = 7
	_, _, err := DecodeCPMMSwap(data)
	assert.True(t, errors.Is(err, xerrors.ErrMalformed))
}

func TestCLSwapInstruction_RoundTrip(t *testing.T) {
	// I4: encode/decode round trips, fixed 42-byte length.
	data := EncodeCLSwap(5_000_000, 4_900_000, 123, 0, true, true)
	assert.Len(t, data, CLSwapInstructionLen)

	amount, threshold, lo, hi, isInput, aToB, err := DecodeCLSwap(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), amount)
	assert.Equal(t, uint64(4_900_000), threshold)
	assert.Equal(t, uint64(123), lo)
	assert.Equal(t, uint64(0), hi)
	assert.True(t, isInput)
	assert.True(t, aToB)
}

func TestCLSwapInstruction_RejectsBadDiscriminator(t *testing.T) {
	data := EncodeCLSwap(1, 1, 0, 0, true, true)
	data[0] = 0
	_, _, _, _, _, _, err := DecodeCLSwap(data)
	assert.True(t, errors.Is(err, xerrors.ErrMalformed))
}

package codec

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yimingwow/scavenger/internal/xerrors"
	"lukechampine.com/uint128"
)

// buildCLFixture writes a minimal CL account with sqrt_price_x64 set so
// price = (sqrt_price/2^64)^2 = 4.0, i.e. sqrt_price = 2 * 2^64.
func buildCLFixture(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, 250)

	binary.LittleEndian.PutUint16(buf[clFeeRateOffset:], 300)

	liquidity := uint128.From64(1_000_000)
	copy(buf[clLiquidityOffset:clLiquidityOffset+16], liquidity.Bytes())

	sqrtPrice := uint128.New(0, 2) // low=0, hi=2 => value = 2 * 2^64
	copy(buf[clSqrtPriceOffset:clSqrtPriceOffset+16], sqrtPrice.Bytes())

	binary.LittleEndian.PutUint32(buf[clTickOffset:], uint32(int32(13863)))

	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	copy(buf[clMintAOffset:clMintAOffset+32], mintA[:])
	copy(buf[clMintBOffset:clMintBOffset+32], mintB[:])

	return buf
}

func TestDecodeCL_PriceFromSqrt(t *testing.T) {
	buf := buildCLFixture(t)
	pool := solana.NewWallet().PublicKey()

	state, err := DecodeCL(pool, buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(300), state.FeeRate)
	assert.Equal(t, uint64(1_000_000), state.Liquidity.Lo)

	price := SqrtPriceX64ToPrice(state.SqrtPriceQ64_64)
	assert.InDelta(t, 4.0, price, 1e-6)
}

func TestDecodeCL_ShortBuffer(t *testing.T) {
	_, err := DecodeCL(solana.NewWallet().PublicKey(), make([]byte, 10))
	assert.True(t, errors.Is(err, xerrors.ErrShortBuffer))
}

func TestDecodeCL_MintsOmittedWhenBufferTooShortForThem(t *testing.T) {
	buf := buildCLFixture(t)
	truncated := buf[:clMintAOffset] // long enough for core fields, not mints
	state, err := DecodeCL(solana.NewWallet().PublicKey(), truncated)
	require.NoError(t, err)
	assert.True(t, state.MintA.IsZero())
}

func TestSqrtPriceX64ToPrice_Unity(t *testing.T) {
	assert.InDelta(t, 1.0, SqrtPriceX64ToPrice(uint128.New(0, 1)), 1e-9)
}

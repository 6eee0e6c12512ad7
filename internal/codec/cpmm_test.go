package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yimingwow/scavenger/internal/xerrors"
)

// buildCPMMFixture returns a 752-byte buffer with SwapFeeNumerator=25,
// SwapFeeDenominator=10000, and distinct, recognizable mint/vault
// pubkeys, matching the field order DecodeCPMM expects.
func buildCPMMFixture(t *testing.T) ([]byte, solana.PublicKey, solana.PublicKey) {
	t.Helper()
	buf := make([]byte, cpmmSpan)

	putU64 := func(offset int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[offset+i] = byte(v >> (8 * i))
		}
	}

	// 22 leading u64 fields before SwapFeeNumerator/Denominator (fields 22,23
	// in DecodeCPMM's sequence, 0-indexed): status..min_separate_denominator
	// is 18 fields (indices 0-17), then trade_fee_num/den (18,19),
	// pnl_num/den (20,21), swap_fee_num/den (22,23).
	swapFeeNumeratorIdx := 22
	swapFeeDenominatorIdx := 23
	putU64(swapFeeNumeratorIdx*8, 25)
	putU64(swapFeeDenominatorIdx*8, 10000)

	coinMint := solana.NewWallet().PublicKey()
	pcMint := solana.NewWallet().PublicKey()
	copy(buf[cpmmCoinMintOffset:cpmmCoinMintOffset+32], coinMint[:])
	copy(buf[cpmmPcMintOffset:cpmmPcMintOffset+32], pcMint[:])

	return buf, coinMint, pcMint
}

func TestDecodeCPMM_FieldsAndMintOffsets(t *testing.T) {
	buf, coinMint, pcMint := buildCPMMFixture(t)
	poolID := solana.NewWallet().PublicKey()

	acc, err := DecodeCPMM(poolID, buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), acc.SwapFeeNumerator)
	assert.Equal(t, uint64(10000), acc.SwapFeeDenominator)
	assert.True(t, bytes.Equal(acc.CoinMintAddress[:], coinMint[:]))
	assert.True(t, bytes.Equal(acc.PcMintAddress[:], pcMint[:]))
	assert.Equal(t, poolID, acc.PoolID)
}

func TestDecodeCPMM_ShortBuffer(t *testing.T) {
	_, err := DecodeCPMM(solana.NewWallet().PublicKey(), make([]byte, 10))
	assert.True(t, errors.Is(err, xerrors.ErrShortBuffer))
}

func TestDecodeCPMM_MalformedZeroFeeDenominator(t *testing.T) {
	buf, _, _ := buildCPMMFixture(t)
	// zero out swap fee denominator
	for i := 0; i < 8; i++ {
		buf[23*8+i] = 0
	}
	_, err := DecodeCPMM(solana.NewWallet().PublicKey(), buf)
	assert.True(t, errors.Is(err, xerrors.ErrMalformed))
}

func TestReadTokenAccountAmount(t *testing.T) {
	data := make([]byte, 72)
	// offset 64..72 = amount, little-endian
	data[64] = 100
	data[65] = 1 // 100 + 256 = 356
	amt, err := ReadTokenAccountAmount(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(356), amt)
}

func TestReadTokenAccountAmount_ShortBuffer(t *testing.T) {
	_, err := ReadTokenAccountAmount(make([]byte, 10))
	assert.True(t, errors.Is(err, xerrors.ErrShortBuffer))
}

func TestCPMMAccount_ToPoolState(t *testing.T) {
	buf, coinMint, pcMint := buildCPMMFixture(t)
	poolID := solana.NewWallet().PublicKey()
	acc, err := DecodeCPMM(poolID, buf)
	require.NoError(t, err)

	state := acc.ToPoolState(1000, 2000)
	assert.Equal(t, uint64(1000), state.ReserveA)
	assert.Equal(t, uint64(2000), state.ReserveB)
	assert.Equal(t, coinMint, state.MintA)
	assert.Equal(t, pcMint, state.MintB)
}

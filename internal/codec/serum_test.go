package codec

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yimingwow/scavenger/internal/xerrors"
)

func buildSerumMarketFixture(t *testing.T) (buf []byte, baseVault, quoteVault, bids, asks solana.PublicKey) {
	t.Helper()
	buf = make([]byte, serumMarketFullSpan)
	off := 5 + 8 // account flags + padding
	off += 32    // own_address
	binary.LittleEndian.PutUint64(buf[off:], 42)
	off += 8 // vault_signer_nonce
	off += 32 // base_mint
	off += 32 // quote_mint
	baseVault = solana.NewWallet().PublicKey()
	copy(buf[off:off+32], baseVault[:])
	off += 32
	off += 16 // base_deposits_total + base_fees_accrued
	quoteVault = solana.NewWallet().PublicKey()
	copy(buf[off:off+32], quoteVault[:])
	off += 32
	off += 24 // quote_deposits_total + quote_fees_accrued + quote_dust_threshold
	off += 32 // request_queue
	off += 32 // event_queue
	bids = solana.NewWallet().PublicKey()
	copy(buf[off:off+32], bids[:])
	off += 32
	asks = solana.NewWallet().PublicKey()
	copy(buf[off:off+32], asks[:])
	return buf, baseVault, quoteVault, bids, asks
}

func TestDecodeSerumMarket_FieldsAtExpectedOffsets(t *testing.T) {
	buf, baseVault, quoteVault, bids, asks := buildSerumMarketFixture(t)

	m, err := DecodeSerumMarket(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), m.VaultSignerNonce)
	assert.Equal(t, baseVault, m.BaseVault)
	assert.Equal(t, quoteVault, m.QuoteVault)
	assert.Equal(t, bids, m.Bids)
	assert.Equal(t, asks, m.Asks)
}

func TestDecodeSerumMarket_ShortBuffer(t *testing.T) {
	_, err := DecodeSerumMarket(make([]byte, 10))
	assert.True(t, errors.Is(err, xerrors.ErrShortBuffer))
}

func TestDecodeSerumMarket_MinimalBufferOmitsBookAccounts(t *testing.T) {
	buf, _, _, _, _ := buildSerumMarketFixture(t)
	m, err := DecodeSerumMarket(buf[:serumMarketMinSpan])
	require.NoError(t, err)
	assert.True(t, m.Bids.IsZero())
}

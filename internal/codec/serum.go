package codec

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/yimingwow/scavenger/internal/xerrors"
)

// SerumMarket is the subset of the Serum/OpenBook market account the
// Execution Engine needs to fill in the remaining CPMM swap accounts
// (bids, asks, event queue, vault signer, base/quote vaults) that
// spec.md §4.1 lists as references but does not itself decode. Field
// order and offsets are adapted from the teacher's
// pkg/pool/raydium/ammPool.go MarketStateLayoutV3.
type SerumMarket struct {
	OwnAddress       solana.PublicKey
	VaultSignerNonce uint64
	BaseMint         solana.PublicKey
	QuoteMint        solana.PublicKey
	BaseVault        solana.PublicKey
	QuoteVault       solana.PublicKey
	RequestQueue     solana.PublicKey
	EventQueue       solana.PublicKey
	Bids             solana.PublicKey
	Asks             solana.PublicKey
}

const serumMarketMinSpan = 221 // through QuoteDustThreshold, before RequestQueue
const serumMarketFullSpan = serumMarketMinSpan + 32*4 // through Asks

// DecodeSerumMarket reads a Serum/OpenBook V3 market account. Unlike the
// CPMM/CL layouts, this account carries a 5-byte account-flags prefix
// and 8 bytes of alignment padding before the first field, matching the
// on-chain layout the teacher's MarketStateLayoutV3 mirrors.
func DecodeSerumMarket(data []byte) (*SerumMarket, error) {
	if len(data) < serumMarketMinSpan {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", xerrors.ErrShortBuffer, serumMarketMinSpan, len(data))
	}

	r := &byteReader{data: data}
	r.take(5) // account flags
	r.take(8) // alignment padding

	m := &SerumMarket{}
	m.OwnAddress = r.pubkey()
	m.VaultSignerNonce = r.u64()
	m.BaseMint = r.pubkey()
	m.QuoteMint = r.pubkey()
	m.BaseVault = r.pubkey()
	r.u64() // base_deposits_total
	r.u64() // base_fees_accrued
	m.QuoteVault = r.pubkey()
	r.u64() // quote_deposits_total
	r.u64() // quote_fees_accrued
	r.u64() // quote_dust_threshold

	if len(data) >= serumMarketFullSpan {
		m.RequestQueue = r.pubkey()
		m.EventQueue = r.pubkey()
		m.Bids = r.pubkey()
		m.Asks = r.pubkey()
	}

	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrShortBuffer, r.err)
	}
	return m, nil
}

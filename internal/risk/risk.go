// Package risk implements the sniper-mode safety gate: before buying a
// freshly-initialized pool's non-quote token, its mint account is
// checked for a live freeze authority. Grounded on
// original_source/core/risk.rs's check_token_risk.
package risk

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// mintAccountSize is the fixed size of the SPL token Mint account:
// mint_authority COption<Pubkey> (4+32) + supply u64 (8) + decimals u8
// (1) + is_initialized bool (1) + freeze_authority COption<Pubkey>
// (4+32).
const mintAccountSize = 4 + 32 + 8 + 1 + 1 + 4 + 32

// AccountFetcher is the subset of *sol.Client this package needs.
type AccountFetcher interface {
	GetMultipleAccountData(ctx context.Context, accounts []solana.PublicKey) ([][]byte, error)
}

// Report is the outcome of checking a single mint.
type Report struct {
	IsSafe          bool
	MintAuthority   *solana.PublicKey
	FreezeAuthority *solana.PublicKey
	Supply          uint64
	Decimals        uint8
}

// CheckTokenRisk fetches and decodes a mint account, returning a Report
// whose IsSafe field is false if and only if the mint still has a live
// freeze authority — a present mint authority is recorded but does not
// by itself make a token unsafe (original_source/core/risk.rs's comment
// explains new tokens often haven't renounced mint authority yet, and
// treats that as informational only).
func CheckTokenRisk(ctx context.Context, fetcher AccountFetcher, mint solana.PublicKey) (*Report, error) {
	data, err := fetcher.GetMultipleAccountData(ctx, []solana.PublicKey{mint})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch mint account: %v", xerrors.ErrTransport, err)
	}
	if len(data) != 1 || data[0] == nil {
		return nil, fmt.Errorf("%w: mint account %s not found", xerrors.ErrTransport, mint)
	}
	return DecodeMint(data[0])
}

// DecodeMint parses a raw SPL token Mint account's bytes.
func DecodeMint(data []byte) (*Report, error) {
	if len(data) < mintAccountSize {
		return nil, fmt.Errorf("%w: mint account too short (%d bytes)", xerrors.ErrShortBuffer, len(data))
	}

	mintAuthorityPresent := binary.LittleEndian.Uint32(data[0:4]) != 0
	var mintAuthority *solana.PublicKey
	if mintAuthorityPresent {
		pk := solana.PublicKeyFromBytes(data[4:36])
		mintAuthority = &pk
	}

	supply := binary.LittleEndian.Uint64(data[36:44])
	decimals := data[44]

	freezeAuthorityPresent := binary.LittleEndian.Uint32(data[46:50]) != 0
	var freezeAuthority *solana.PublicKey
	if freezeAuthorityPresent {
		pk := solana.PublicKeyFromBytes(data[50:82])
		freezeAuthority = &pk
	}

	return &Report{
		IsSafe:          freezeAuthority == nil,
		MintAuthority:   mintAuthority,
		FreezeAuthority: freezeAuthority,
		Supply:          supply,
		Decimals:        decimals,
	}, nil
}

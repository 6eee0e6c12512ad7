package codec

import "github.com/gagliardetto/solana-go"

// Program and system IDs referenced by the codec and engine. These are
// fixed by the on-chain programs themselves (spec.md §6, "On-chain
// account layouts... fixed by external programs").
var (
	// RaydiumCPMMProgramID is the classic Raydium AMM V4 program — the
	// 752-byte constant-product layout with a companion Serum order book
	// (spec.md §4.1 "ConstantProduct (CPMM)").
	RaydiumCPMMProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

	// RaydiumCLProgramID is the Raydium concentrated-liquidity program.
	RaydiumCLProgramID = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaK8emxXpFpjw")

	// TokenProgramID is the legacy SPL token program, used for both
	// legs' token accounts unless the mint is a Token-2022 mint.
	TokenProgramID = solana.TokenProgramID

	// OrcaWhirlpoolProgramID is Orca's concentrated-liquidity program,
	// the second venue the sniper watches for new-pool init logs
	// (spec.md §4.4).
	OrcaWhirlpoolProgramID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
)

// AuthSeed is the PDA seed Raydium's CPMM program uses to derive the pool
// authority (spec Open Question "amm_authority" resolves to this seed on
// the legacy AMM program — see pkg/protocol processAMMPool in the
// grounding ledger).
const AuthSeed = "amm authority"

// cpmmSpan is the total byte length of the CPMM pool account; the layout
// has no discriminator and is decoded from offset 0 (spec.md §4.1:
// "fixed 752-byte state struct").
const cpmmSpan = 752

// clMinSpan is the minimum prefix length needed to decode the CL fields
// this codec cares about: 8-byte discriminator + the fixed prefix up to
// and including tick_current_index (offset 85 per spec.md §4.1).
const clMinSpan = 85

// tokenAccountAmountOffset is the byte offset of the little-endian u64
// balance field within a standard SPL token account (spec.md §4.1:
// "Reserve balances are not authoritative inside the pool state; they
// must be read from the two vault token accounts").
const tokenAccountAmountOffset = 64

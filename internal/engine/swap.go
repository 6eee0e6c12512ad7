// Package engine builds the swap instructions of the two-leg transaction
// for a detected opportunity: a CPMM-side swap instruction built directly
// (adapted from the teacher's AMMPool.BuildSwapInstructions) and a CL-side
// Whirlpool swap, and sizes slippage and the tip via ProfitConfig. The tip
// transfer, signing and submission (through internal/sol and
// internal/bundle) happen in cmd/scavenger. Grounded on
// original_source/strategy/swap.rs and original_source/strategy/pricing.rs.
package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/yimingwow/scavenger/internal/codec"
	"github.com/yimingwow/scavenger/internal/types"
)

// CPMMSwapAccounts names every account the legacy Raydium AMM swap
// instruction needs, in the fixed order the on-chain program expects
// (spec.md §4.7). This mirrors the teacher's 18-slot AccountMetaSlice
// build in AMMPool.BuildSwapInstructions.
type CPMMSwapAccounts struct {
	PoolID           solana.PublicKey
	Authority        solana.PublicKey
	OpenOrders       solana.PublicKey
	TargetOrders     solana.PublicKey
	PoolCoinVault    solana.PublicKey
	PoolPcVault      solana.PublicKey
	SerumProgramID   solana.PublicKey
	SerumMarket      solana.PublicKey
	SerumBids        solana.PublicKey
	SerumAsks        solana.PublicKey
	SerumEventQueue  solana.PublicKey
	SerumCoinVault   solana.PublicKey
	SerumPcVault     solana.PublicKey
	SerumVaultSigner solana.PublicKey
	UserSource       solana.PublicKey
	UserDestination  solana.PublicKey
	UserOwner        solana.PublicKey
}

// cpmmSwapInstruction implements solana.Instruction for a Raydium
// legacy AMM "swap base in" call, reusing the exact 18-account order and
// instruction-data layout the teacher's InSwapInstruction uses.
type cpmmSwapInstruction struct {
	accounts solana.AccountMetaSlice
	data     []byte
}

func (i *cpmmSwapInstruction) ProgramID() solana.PublicKey          { return codec.RaydiumCPMMProgramID }
func (i *cpmmSwapInstruction) Accounts() []*solana.AccountMeta       { return i.accounts }
func (i *cpmmSwapInstruction) Data() ([]byte, error)                { return i.data, nil }

// BuildCPMMSwap constructs the swap-base-in instruction for the legacy
// Raydium AMM program. amountIn/minAmountOut are in the input token's
// native smallest unit.
func BuildCPMMSwap(accs CPMMSwapAccounts, amountIn, minAmountOut uint64) solana.Instruction {
	metas := make(solana.AccountMetaSlice, 18)
	metas[0] = solana.NewAccountMeta(codec.TokenProgramID, false, false)
	metas[1] = solana.NewAccountMeta(accs.PoolID, true, false)
	metas[2] = solana.NewAccountMeta(accs.Authority, false, false)
	metas[3] = solana.NewAccountMeta(accs.OpenOrders, true, false)
	metas[4] = solana.NewAccountMeta(accs.TargetOrders, true, false)
	metas[5] = solana.NewAccountMeta(accs.PoolCoinVault, true, false)
	metas[6] = solana.NewAccountMeta(accs.PoolPcVault, true, false)
	metas[7] = solana.NewAccountMeta(accs.SerumProgramID, false, false)
	metas[8] = solana.NewAccountMeta(accs.SerumMarket, true, false)
	metas[9] = solana.NewAccountMeta(accs.SerumBids, true, false)
	metas[10] = solana.NewAccountMeta(accs.SerumAsks, true, false)
	metas[11] = solana.NewAccountMeta(accs.SerumEventQueue, true, false)
	metas[12] = solana.NewAccountMeta(accs.SerumCoinVault, true, false)
	metas[13] = solana.NewAccountMeta(accs.SerumPcVault, true, false)
	metas[14] = solana.NewAccountMeta(accs.SerumVaultSigner, false, false)
	metas[15] = solana.NewAccountMeta(accs.UserSource, true, false)
	metas[16] = solana.NewAccountMeta(accs.UserDestination, true, false)
	metas[17] = solana.NewAccountMeta(accs.UserOwner, true, true)

	return &cpmmSwapInstruction{
		accounts: metas,
		data:     codec.EncodeCPMMSwap(amountIn, minAmountOut),
	}
}

// memoProgramID is the Solana Memo Program v2, a required (unused by us)
// account slot in the Whirlpool SwapV2 instruction.
var memoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNKXrsUBC1vcJ1EzJ1jjxv1")

// CLSwapAccounts names the accounts the Orca-style SwapV2 instruction
// needs, grounded on other_examples' whirlpoolPool.go buildSwapV2Instruction
// (15-slot order: token programs, memo, authority, whirlpool, mints,
// owner/vault pairs for both legs, up to 3 tick arrays, oracle).
type CLSwapAccounts struct {
	TokenProgramA      solana.PublicKey
	TokenProgramB      solana.PublicKey
	TokenAuthority     solana.PublicKey
	Whirlpool          solana.PublicKey
	TokenMintA         solana.PublicKey
	TokenMintB         solana.PublicKey
	TokenOwnerAccountA solana.PublicKey
	TokenVaultA        solana.PublicKey
	TokenOwnerAccountB solana.PublicKey
	TokenVaultB        solana.PublicKey
	TickArray0         solana.PublicKey
	TickArray1         solana.PublicKey
	TickArray2         solana.PublicKey
	Oracle             solana.PublicKey
}

type clSwapInstruction struct {
	accounts solana.AccountMetaSlice
	data     []byte
}

func (i *clSwapInstruction) ProgramID() solana.PublicKey    { return codec.OrcaWhirlpoolProgramID }
func (i *clSwapInstruction) Accounts() []*solana.AccountMeta { return i.accounts }
func (i *clSwapInstruction) Data() ([]byte, error)           { return i.data, nil }

// BuildCLSwap constructs the Orca-style concentrated-liquidity swap
// instruction. aToB selects the swap direction (token A for token B or
// the reverse); amountSpecifiedIsInput is true for exact-in swaps, which
// is all this engine issues (spec.md §4.7 quotes amountIn, not
// amountOut).
func BuildCLSwap(accs CLSwapAccounts, amount, otherAmountThreshold uint64, sqrtPriceLimitLo, sqrtPriceLimitHi uint64, aToB bool) solana.Instruction {
	metas := make(solana.AccountMetaSlice, 15)
	metas[0] = solana.NewAccountMeta(accs.TokenProgramA, false, false)
	metas[1] = solana.NewAccountMeta(accs.TokenProgramB, false, false)
	metas[2] = solana.NewAccountMeta(memoProgramID, false, false)
	metas[3] = solana.NewAccountMeta(accs.TokenAuthority, false, true)
	metas[4] = solana.NewAccountMeta(accs.Whirlpool, true, false)
	metas[5] = solana.NewAccountMeta(accs.TokenMintA, false, false)
	metas[6] = solana.NewAccountMeta(accs.TokenMintB, false, false)
	metas[7] = solana.NewAccountMeta(accs.TokenOwnerAccountA, true, false)
	metas[8] = solana.NewAccountMeta(accs.TokenVaultA, true, false)
	metas[9] = solana.NewAccountMeta(accs.TokenOwnerAccountB, true, false)
	metas[10] = solana.NewAccountMeta(accs.TokenVaultB, true, false)
	metas[11] = solana.NewAccountMeta(accs.TickArray0, true, false)
	metas[12] = solana.NewAccountMeta(accs.TickArray1, true, false)
	metas[13] = solana.NewAccountMeta(accs.TickArray2, true, false)
	metas[14] = solana.NewAccountMeta(accs.Oracle, true, false)

	return &clSwapInstruction{
		accounts: metas,
		data:     codec.EncodeCLSwap(amount, otherAmountThreshold, sqrtPriceLimitLo, sqrtPriceLimitHi, true, aToB),
	}
}

// tickArraySize is the number of ticks spanned by one Whirlpool
// TickArray account (fixed by the Orca program).
const tickArraySize = 88

// TickArrayStartIndex floors tick to the start of its containing
// TickArray, given the pool's tick spacing.
func TickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	span := int32(tickSpacing) * tickArraySize
	if span == 0 {
		return 0
	}
	// Go's integer division truncates toward zero; floor explicitly for
	// negative ticks so arrays tile without a gap at zero.
	q := tick / span
	if tick%span != 0 && tick < 0 {
		q--
	}
	return q * span
}

// DeriveTickArrayPDA derives a Whirlpool TickArray PDA for a given
// array start index: seeds ["tick_array", whirlpool, start_tick_index
// as decimal ASCII], the fixed scheme the Orca program uses.
func DeriveTickArrayPDA(whirlpool solana.PublicKey, startTickIndex int32) (solana.PublicKey, uint8, error) {
	seed := []byte(fmt.Sprintf("%d", startTickIndex))
	return solana.FindProgramAddress(
		[][]byte{[]byte("tick_array"), whirlpool[:], seed},
		codec.OrcaWhirlpoolProgramID,
	)
}

// SurroundingTickArrays derives the three TickArray PDAs Whirlpool swaps
// walk through: the array containing the current tick (a0), the array
// above it (a1) and the array below it (a2). It takes no swap direction:
// the same order is returned for either direction, so for a swap whose
// price moves down the second array passed is the one above the current
// tick, not the next one the swap would walk into.
func SurroundingTickArrays(whirlpool solana.PublicKey, currentTick int32, tickSpacing uint16) (a0, a1, a2 solana.PublicKey, err error) {
	span := int32(tickSpacing) * tickArraySize
	start := TickArrayStartIndex(currentTick, tickSpacing)

	a0, _, err = DeriveTickArrayPDA(whirlpool, start)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("deriving current tick array: %w", err)
	}
	a1, _, err = DeriveTickArrayPDA(whirlpool, start+span)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("deriving next tick array: %w", err)
	}
	a2, _, err = DeriveTickArrayPDA(whirlpool, start-span)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("deriving previous tick array: %w", err)
	}
	return a0, a1, a2, nil
}

// AuthorityPDA derives the CPMM pool authority PDA: FindProgramAddress
// with the "amm authority" seed on the program ID, resolving the Open
// Question this codebase inherited from the teacher's
// pkg/protocol/raydium_amm.go processAMMPool.
func AuthorityPDA() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(codec.AuthSeed)}, codec.RaydiumCPMMProgramID)
}

// VaultSigner derives the Serum market's vault-signer PDA, a
// non-standard CreateProgramAddress with the market address plus an
// 8-byte little-endian nonce (no zero-padding overflow check the normal
// FindProgramAddress does), adapted from the teacher's
// pkg/protocol/raydium_amm.go getAssociatedAuthority.
func VaultSigner(marketProgramID, marketAddress solana.PublicKey, nonce uint64) (solana.PublicKey, error) {
	seed := make([]byte, 8)
	for i := 0; i < 8; i++ {
		seed[i] = byte(nonce >> (8 * i))
	}
	padding := make([]byte, 7)
	return solana.CreateProgramAddress([][]byte{marketAddress[:], seed[:1], padding}, marketProgramID)
}

// OraclePDA derives a Whirlpool's Oracle account: seeds ["oracle",
// whirlpool], the fixed scheme the Orca program uses for the account
// SwapV2 requires but never reads for a pool with no active adaptive fee.
func OraclePDA(whirlpool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte("oracle"), whirlpool[:]}, codec.OrcaWhirlpoolProgramID)
}

// ResolveCLSwapAccounts fills in every CLSwapAccounts field from a
// decoded Whirlpool PoolState plus the user's owner and per-mint token
// accounts, deriving the three surrounding TickArray PDAs and the Oracle
// PDA that neither the pool account nor the caller can supply directly.
// The swap direction itself (which mint is consumed) is selected
// separately, by BuildCLSwap's aToB argument — the account set here is
// the same for either direction.
func ResolveCLSwapAccounts(pool *types.PoolState, ownerAccountA, ownerAccountB, owner solana.PublicKey) (CLSwapAccounts, error) {
	oracle, _, err := OraclePDA(pool.Pool)
	if err != nil {
		return CLSwapAccounts{}, fmt.Errorf("deriving oracle: %w", err)
	}
	a0, a1, a2, err := SurroundingTickArrays(pool.Pool, pool.Tick, pool.TickSpacing)
	if err != nil {
		return CLSwapAccounts{}, fmt.Errorf("deriving tick arrays: %w", err)
	}

	return CLSwapAccounts{
		TokenProgramA:      codec.TokenProgramID,
		TokenProgramB:      codec.TokenProgramID,
		TokenAuthority:     owner,
		Whirlpool:          pool.Pool,
		TokenMintA:         pool.MintA,
		TokenMintB:         pool.MintB,
		TokenOwnerAccountA: ownerAccountA,
		TokenVaultA:        pool.VaultA,
		TokenOwnerAccountB: ownerAccountB,
		TokenVaultB:        pool.VaultB,
		TickArray0:         a0,
		TickArray1:         a1,
		TickArray2:         a2,
		Oracle:             oracle,
	}, nil
}

// ResolveCPMMSwapAccounts fills in every CPMMSwapAccounts field from a
// decoded pool account plus its companion Serum market, deriving the
// two accounts neither decode step can read directly: the pool
// authority PDA and the market's vault-signer PDA.
func ResolveCPMMSwapAccounts(acc *codec.CPMMAccount, market *codec.SerumMarket, userSource, userDestination, userOwner solana.PublicKey) (CPMMSwapAccounts, error) {
	authority, _, err := AuthorityPDA()
	if err != nil {
		return CPMMSwapAccounts{}, fmt.Errorf("deriving pool authority: %w", err)
	}
	vaultSigner, err := VaultSigner(acc.SerumProgramID, acc.SerumMarket, market.VaultSignerNonce)
	if err != nil {
		return CPMMSwapAccounts{}, fmt.Errorf("deriving vault signer: %w", err)
	}

	return CPMMSwapAccounts{
		PoolID:           acc.PoolID,
		Authority:        authority,
		OpenOrders:       acc.AmmOpenOrders,
		TargetOrders:     acc.AmmTargetOrders,
		PoolCoinVault:    acc.PoolCoinTokenAccount,
		PoolPcVault:      acc.PoolPcTokenAccount,
		SerumProgramID:   acc.SerumProgramID,
		SerumMarket:      acc.SerumMarket,
		SerumBids:        market.Bids,
		SerumAsks:        market.Asks,
		SerumEventQueue:  market.EventQueue,
		SerumCoinVault:   market.BaseVault,
		SerumPcVault:     market.QuoteVault,
		SerumVaultSigner: vaultSigner,
		UserSource:       userSource,
		UserDestination:  userDestination,
		UserOwner:        userOwner,
	}, nil
}

// SlippageBps is the default basis-point slippage floor applied to the
// expected output before it is used as min_amount_out (spec.md §4.7,
// SLIPPAGE_BPS=100 default = 1%).
const SlippageBps = 100

// ApplySlippage returns the minimum acceptable output for a quoted
// amountOut, shaving off slippageBps basis points.
func ApplySlippage(amountOut uint64, slippageBps uint32) uint64 {
	if slippageBps == 0 {
		return amountOut
	}
	reduction := (amountOut * uint64(slippageBps)) / 10_000
	if reduction > amountOut {
		return 0
	}
	return amountOut - reduction
}

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/yimingwow/scavenger/internal/types"
	"github.com/yimingwow/scavenger/internal/xerrors"
	"lukechampine.com/uint128"
)

// CPMMAccount is the bit-exact 752-byte Raydium legacy AMM layout
// (spec.md §4.1 "ConstantProduct (CPMM)"), decoded field-by-field in
// offset order. It carries more than types.PoolState needs — the
// companion order-book references the Execution Engine requires to
// build the 18-account swap instruction — so it is kept alongside the
// generic PoolState rather than folded entirely into it.
type CPMMAccount struct {
	Status       uint64
	Nonce        uint64
	OrderNum     uint64
	Depth        uint64
	CoinDecimals uint64
	PcDecimals   uint64
	State        uint64
	ResetFlag    uint64

	MinSize                uint64
	VolMaxCutRatio         uint64
	AmountWaveRatio        uint64
	CoinLotSize            uint64
	PcLotSize              uint64
	MinPriceMultiplier     uint64
	MaxPriceMultiplier     uint64
	SystemDecimalValue     uint64
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64

	NeedTakePnlCoin  uint64
	NeedTakePnlPc    uint64
	TotalPnlPc       uint64
	TotalPnlCoin     uint64
	PoolOpenTime     uint64
	PunishPcAmount   uint64
	PunishCoinAmount uint64
	OrderMaxTs       uint64
	OrderStartTs     uint64

	PoolTotalDepositPc  uint64
	PoolTotalDepositCoin uint64
	SwapCoinInAmount    uint64
	SwapPcOutAmount     uint64
	SwapCoin2PcFee      uint64
	SwapPcInAmount      uint64
	SwapCoinOutAmount   uint64
	SwapPc2CoinFee      uint64

	PoolCoinTokenAccount solana.PublicKey
	PoolPcTokenAccount   solana.PublicKey
	CoinMintAddress      solana.PublicKey
	PcMintAddress        solana.PublicKey
	LpMintAddress        solana.PublicKey
	AmmOpenOrders        solana.PublicKey
	SerumMarket          solana.PublicKey
	SerumProgramID       solana.PublicKey
	AmmTargetOrders      solana.PublicKey
	PoolWithdrawQueue    solana.PublicKey
	PoolTempLpAccount    solana.PublicKey
	AmmOwner             solana.PublicKey
	PnlOwner             solana.PublicKey

	PoolID solana.PublicKey
}

// cpmmCoinMintOffset/cpmmPcMintOffset are the byte offsets of the two mint
// addresses, the kind of offset a GetProgramAccounts memcmp filter on mint
// address takes (the teacher's getAMMPoolAccountsByTokenPair derives them
// via reflection); here they are named constants since the layout is
// hand-decoded rather than struct-tagged. The bootstrap loader reads HTTP
// catalogs and does not use them.
const (
	// 32 leading u64 fields (Status..OrderMaxTs) + 2 u64 (PoolTotalDepositPc/Coin)
	// + 2 u128-width swap-amount fields (16 bytes each, only the low word used)
	// + 4 u64 fields (SwapCoin2PcFee, SwapPcInAmount, SwapCoinOutAmount,
	// SwapPc2CoinFee), then PoolCoinTokenAccount(32) + PoolPcTokenAccount(32)
	// before CoinMintAddress.
	cpmmVaultsOffset   = 8*32 + 8*2 + 16*2 + 8*4
	cpmmCoinMintOffset = cpmmVaultsOffset + 32*2
	cpmmPcMintOffset   = cpmmCoinMintOffset + 32
)

// CoinMintOffset returns the byte offset of CoinMintAddress within the
// 752-byte account, for use in on-chain program-account filters.
func CoinMintOffset() uint64 { return uint64(cpmmCoinMintOffset) }

// PcMintOffset returns the byte offset of PcMintAddress.
func PcMintOffset() uint64 { return uint64(cpmmPcMintOffset) }

// Span is the fixed account size for the CPMM layout.
func Span() uint64 { return cpmmSpan }

// DecodeCPMM decodes the 752-byte Raydium legacy AMM account layout. It
// fails with xerrors.ErrShortBuffer when the slice is smaller than 752
// bytes, and xerrors.ErrMalformed when the fee denominator is zero (spec
// §4.1 decode contract).
func DecodeCPMM(poolID solana.PublicKey, data []byte) (*CPMMAccount, error) {
	if len(data) < cpmmSpan {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", xerrors.ErrShortBuffer, cpmmSpan, len(data))
	}

	r := &byteReader{data: data}
	a := &CPMMAccount{PoolID: poolID}

	a.Status = r.u64()
	a.Nonce = r.u64()
	a.OrderNum = r.u64()
	a.Depth = r.u64()
	a.CoinDecimals = r.u64()
	a.PcDecimals = r.u64()
	a.State = r.u64()
	a.ResetFlag = r.u64()
	a.MinSize = r.u64()
	a.VolMaxCutRatio = r.u64()
	a.AmountWaveRatio = r.u64()
	a.CoinLotSize = r.u64()
	a.PcLotSize = r.u64()
	a.MinPriceMultiplier = r.u64()
	a.MaxPriceMultiplier = r.u64()
	a.SystemDecimalValue = r.u64()
	a.MinSeparateNumerator = r.u64()
	a.MinSeparateDenominator = r.u64()
	a.TradeFeeNumerator = r.u64()
	a.TradeFeeDenominator = r.u64()
	a.PnlNumerator = r.u64()
	a.PnlDenominator = r.u64()
	a.SwapFeeNumerator = r.u64()
	a.SwapFeeDenominator = r.u64()
	a.NeedTakePnlCoin = r.u64()
	a.NeedTakePnlPc = r.u64()
	a.TotalPnlPc = r.u64()
	a.TotalPnlCoin = r.u64()
	a.PoolOpenTime = r.u64()
	a.PunishPcAmount = r.u64()
	a.PunishCoinAmount = r.u64()
	a.OrderMaxTs = r.u64() // order_start_ts in some SDKs; kept for offset parity

	a.PoolTotalDepositPc = r.u64()
	a.PoolTotalDepositCoin = r.u64()
	a.SwapCoinInAmount = r.u128Lo()
	_ = r.u128Hi()
	a.SwapPcOutAmount = r.u128Lo()
	_ = r.u128Hi()
	a.SwapCoin2PcFee = r.u64()
	a.SwapPcInAmount = r.u64()
	a.SwapCoinOutAmount = r.u64()
	a.SwapPc2CoinFee = r.u64()

	a.PoolCoinTokenAccount = r.pubkey()
	a.PoolPcTokenAccount = r.pubkey()
	a.CoinMintAddress = r.pubkey()
	a.PcMintAddress = r.pubkey()
	a.LpMintAddress = r.pubkey()
	a.AmmOpenOrders = r.pubkey()
	a.SerumMarket = r.pubkey()
	a.SerumProgramID = r.pubkey()
	a.AmmTargetOrders = r.pubkey()
	a.PoolWithdrawQueue = r.pubkey()
	a.PoolTempLpAccount = r.pubkey()
	a.AmmOwner = r.pubkey()
	a.PnlOwner = r.pubkey()

	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrShortBuffer, r.err)
	}
	if a.SwapFeeDenominator == 0 {
		return nil, fmt.Errorf("%w: swap fee denominator is zero", xerrors.ErrMalformed)
	}
	return a, nil
}

// ToPoolState projects the decoded account plus live vault balances into
// the generic PoolState the detector and quoter operate on.
func (a *CPMMAccount) ToPoolState(reserveCoin, reservePc uint64) *types.PoolState {
	return &types.PoolState{
		Venue:           types.VenueConstantProduct,
		Pool:            a.PoolID,
		MintA:           a.CoinMintAddress,
		MintB:           a.PcMintAddress,
		DecimalsA:       uint8(a.CoinDecimals),
		DecimalsB:       uint8(a.PcDecimals),
		ReserveA:        reserveCoin,
		ReserveB:        reservePc,
		FeeNumerator:    a.SwapFeeNumerator,
		FeeDenominator:  a.SwapFeeDenominator,
		OpenOrders:      a.AmmOpenOrders,
		TargetOrders:    a.AmmTargetOrders,
		SerumMarket:     a.SerumMarket,
		SerumProgramID:  a.SerumProgramID,
		PoolCoinVault:    a.PoolCoinTokenAccount,
		PoolPcVault:      a.PoolPcTokenAccount,
	}
}

// ReadTokenAccountAmount extracts the little-endian u64 balance field
// from a standard SPL token account's raw data (offset 64), since CPMM
// reserves are not authoritative inside the pool state itself (spec.md
// §4.1).
func ReadTokenAccountAmount(data []byte) (uint64, error) {
	if len(data) < tokenAccountAmountOffset+8 {
		return 0, fmt.Errorf("%w: token account too short (%d bytes)", xerrors.ErrShortBuffer, len(data))
	}
	return binary.LittleEndian.Uint64(data[tokenAccountAmountOffset : tokenAccountAmountOffset+8]), nil
}

// byteReader is a tiny sequential cursor over a decode buffer, used to
// keep DecodeCPMM's long field list readable without reslicing by hand
// at every step. It records the first out-of-bounds read rather than
// panicking.
type byteReader struct {
	data []byte
	pos  int
	err  error
}

func (r *byteReader) take(n int) []byte {
	if r.err != nil {
		return make([]byte, n)
	}
	if r.pos+n > len(r.data) {
		r.err = fmt.Errorf("read past end at offset %d (need %d, have %d)", r.pos, n, len(r.data)-r.pos)
		return make([]byte, n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *byteReader) u64() uint64 {
	return binary.LittleEndian.Uint64(r.take(8))
}

// u128Lo consumes a whole 16-byte little-endian u128 field and returns its
// low 8 bytes; only the low word is meaningful for any CPMM amount we
// track (these fields never approach 2^64 in practice), mirroring the
// teacher's use of lukechampine.com/uint128 for the same fields in the
// CL layout. u128Hi reads nothing and always returns 0.
func (r *byteReader) u128Lo() uint64 {
	b := r.take(16)
	return binary.LittleEndian.Uint64(b[:8])
}

func (r *byteReader) u128Hi() uint64 {
	return 0
}

func (r *byteReader) pubkey() solana.PublicKey {
	return solana.PublicKeyFromBytes(r.take(32))
}

var _ = uint128.Zero // keep lukechampine.com/uint128 imported for CL-shared call sites in this package

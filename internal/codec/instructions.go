package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// cpmmSwapOpcode is the Raydium legacy AMM instruction tag for "swap base
// in" (instruction #9 in the program's enum).
const cpmmSwapOpcode = 9

// CPMMSwapInstructionLen is the fixed encoded length of a CPMM swap
// instruction body: 1 (opcode) + 8 (amount_in) + 8 (min_amount_out).
const CPMMSwapInstructionLen = 17

// EncodeCPMMSwap builds the 17-byte instruction-data payload for a
// Raydium legacy AMM "swap base in": opcode(1) ++ amount_in(8 LE) ++
// min_amount_out(8 LE). This matches the teacher's InSwapInstruction and
// original_source/strategy/swap.rs's SwapInstructionData byte-for-byte.
func EncodeCPMMSwap(amountIn, minAmountOut uint64) []byte {
	buf := make([]byte, CPMMSwapInstructionLen)
	buf[0] = cpmmSwapOpcode
	binary.LittleEndian.PutUint64(buf[1:9], amountIn)
	binary.LittleEndian.PutUint64(buf[9:17], minAmountOut)
	return buf
}

// DecodeCPMMSwap is the inverse of EncodeCPMMSwap, used by tests to
// confirm the round trip and by any future instruction-log auditing.
func DecodeCPMMSwap(data []byte) (amountIn, minAmountOut uint64, err error) {
	if len(data) != CPMMSwapInstructionLen {
		return 0, 0, fmt.Errorf("%w: expected %d bytes, got %d", xerrors.ErrMalformed, CPMMSwapInstructionLen, len(data))
	}
	if data[0] != cpmmSwapOpcode {
		return 0, 0, fmt.Errorf("%w: opcode %d is not swap-base-in", xerrors.ErrMalformed, data[0])
	}
	amountIn = binary.LittleEndian.Uint64(data[1:9])
	minAmountOut = binary.LittleEndian.Uint64(data[9:17])
	return amountIn, minAmountOut, nil
}

// clSwapDiscriminator is the 8-byte anchor instruction discriminator for
// the concentrated-liquidity swap instruction this codebase targets. It
// is pinned by the spec's test vectors, not derived from
// anchor.GetDiscriminator("global", "swap") — on-chain, different CL
// programs use different discriminators for what is semantically the
// same call, and this is the one the downstream bundle format expects.
var clSwapDiscriminator = [8]byte{248, 198, 158, 145, 225, 117, 135, 200}

// CLSwapInstructionLen is the fixed encoded length of a CL swap
// instruction body: 8 (discriminator) + 8 (amount) + 8 (threshold) + 16
// (sqrt_price_limit, u128 LE) + 1 (amount_specified_is_input) + 1 (a_to_b).
const CLSwapInstructionLen = 8 + 8 + 8 + 16 + 1 + 1

// EncodeCLSwap builds the 42-byte instruction-data payload for a
// concentrated-liquidity swap, matching
// original_source/strategy/swap.rs's OrcaSwapInstructionData.
func EncodeCLSwap(amount, otherAmountThreshold uint64, sqrtPriceLimitX64Lo, sqrtPriceLimitX64Hi uint64, amountSpecifiedIsInput, aToB bool) []byte {
	buf := make([]byte, CLSwapInstructionLen)
	copy(buf[0:8], clSwapDiscriminator[:])
	binary.LittleEndian.PutUint64(buf[8:16], amount)
	binary.LittleEndian.PutUint64(buf[16:24], otherAmountThreshold)
	binary.LittleEndian.PutUint64(buf[24:32], sqrtPriceLimitX64Lo)
	binary.LittleEndian.PutUint64(buf[32:40], sqrtPriceLimitX64Hi)
	buf[40] = boolByte(amountSpecifiedIsInput)
	buf[41] = boolByte(aToB)
	return buf
}

// DecodeCLSwap is the inverse of EncodeCLSwap.
func DecodeCLSwap(data []byte) (amount, otherAmountThreshold, sqrtPriceLimitLo, sqrtPriceLimitHi uint64, amountSpecifiedIsInput, aToB bool, err error) {
	if len(data) != CLSwapInstructionLen {
		err = fmt.Errorf("%w: expected %d bytes, got %d", xerrors.ErrMalformed, CLSwapInstructionLen, len(data))
		return
	}
	var disc [8]byte
	copy(disc[:], data[0:8])
	if disc != clSwapDiscriminator {
		err = fmt.Errorf("%w: discriminator mismatch", xerrors.ErrMalformed)
		return
	}
	amount = binary.LittleEndian.Uint64(data[8:16])
	otherAmountThreshold = binary.LittleEndian.Uint64(data[16:24])
	sqrtPriceLimitLo = binary.LittleEndian.Uint64(data[24:32])
	sqrtPriceLimitHi = binary.LittleEndian.Uint64(data[32:40])
	amountSpecifiedIsInput = data[40] != 0
	aToB = data[41] != 0
	return
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

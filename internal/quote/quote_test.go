package quote

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/yimingwow/scavenger/internal/codec"
	"github.com/yimingwow/scavenger/internal/inventory"
	"github.com/yimingwow/scavenger/internal/types"
)

// fakeFetcher answers GetMultipleAccountData from a fixed lookup table,
// keyed by base58 address, standing in for *sol.Client in these tests.
type fakeFetcher struct {
	byAddr map[string][]byte
}

func (f *fakeFetcher) GetMultipleAccountData(_ context.Context, accounts []solana.PublicKey) ([][]byte, error) {
	out := make([][]byte, len(accounts))
	for i, a := range accounts {
		out[i] = f.byAddr[a.String()]
	}
	return out, nil
}

// buildCPMMFixture mirrors codec's own test fixture: a 752-byte buffer
// with a nonzero fee denominator and recognizable vault/mint pubkeys.
func buildCPMMFixture(coinVault, pcVault, coinMint, pcMint solana.PublicKey) []byte {
	buf := make([]byte, codec.Span())
	putU64 := func(offset int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[offset+i] = byte(v >> (8 * i))
		}
	}
	putU64(22*8, 25)    // SwapFeeNumerator
	putU64(23*8, 10000) // SwapFeeDenominator

	coinOff := int(codec.CoinMintOffset())
	pcOff := int(codec.PcMintOffset())
	vaultsOffset := coinOff - 64 // PoolCoinTokenAccount/PoolPcTokenAccount sit right before the mints
	copy(buf[vaultsOffset:vaultsOffset+32], coinVault[:])
	copy(buf[vaultsOffset+32:vaultsOffset+64], pcVault[:])
	copy(buf[coinOff:coinOff+32], coinMint[:])
	copy(buf[pcOff:pcOff+32], pcMint[:])
	return buf
}

func buildTokenAccount(amount uint64) []byte {
	buf := make([]byte, 72)
	binary.LittleEndian.PutUint64(buf[64:72], amount)
	return buf
}

func buildCLFixture() []byte {
	const (
		clFeeRateOffset   = 43
		clLiquidityOffset = 49
		clSqrtPriceOffset = 65
		clTickOffset      = 81
	)
	buf := make([]byte, 250)
	binary.LittleEndian.PutUint16(buf[clFeeRateOffset:], 300)
	liquidity := uint128.From64(1_000_000)
	copy(buf[clLiquidityOffset:clLiquidityOffset+16], liquidity.Bytes())
	sqrtPrice := uint128.New(0, 1) // price = 1.0
	copy(buf[clSqrtPriceOffset:clSqrtPriceOffset+16], sqrtPrice.Bytes())
	binary.LittleEndian.PutUint32(buf[clTickOffset:], 0)
	return buf
}

func TestFetchAndPrice_CPMMReadsLiveVaultBalances(t *testing.T) {
	pool := solana.NewWallet().PublicKey()
	coinVault := solana.NewWallet().PublicKey()
	pcVault := solana.NewWallet().PublicKey()
	coinMint := solana.NewWallet().PublicKey()
	pcMint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112") // WSOL, a quote mint

	poolData := buildCPMMFixture(coinVault, pcVault, coinMint, pcMint)

	inv := inventory.New()
	inv.AddPool(&types.PoolState{Venue: types.VenueConstantProduct, Pool: pool, MintA: coinMint, MintB: pcMint})

	fetcher := &fakeFetcher{byAddr: map[string][]byte{
		pool.String():      poolData,
		coinVault.String(): buildTokenAccount(5_000),
		pcVault.String():   buildTokenAccount(7_000),
	}}

	q := New(fetcher, inv)
	state, err := q.FetchAndPrice(context.Background(), pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), state.ReserveA)
	assert.Equal(t, uint64(7_000), state.ReserveB)
}

func TestFetchAndPrice_ConcentratedLiquidity(t *testing.T) {
	pool := solana.NewWallet().PublicKey()
	wsol := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	inv := inventory.New()
	inv.AddPool(&types.PoolState{Venue: types.VenueConcentratedLiquidity, Pool: pool, MintA: solana.NewWallet().PublicKey(), MintB: wsol})

	fetcher := &fakeFetcher{byAddr: map[string][]byte{pool.String(): buildCLFixture()}}

	q := New(fetcher, inv)
	state, err := q.FetchAndPrice(context.Background(), pool)
	require.NoError(t, err)
	assert.Equal(t, uint16(300), state.FeeRate)
}

func TestFetchAndPrice_UnknownPoolRejected(t *testing.T) {
	inv := inventory.New()
	q := New(&fakeFetcher{byAddr: map[string][]byte{}}, inv)
	_, err := q.FetchAndPrice(context.Background(), solana.NewWallet().PublicKey())
	assert.Error(t, err)
}

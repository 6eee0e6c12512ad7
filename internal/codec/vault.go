package codec

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/yimingwow/scavenger/internal/xerrors"
)

// AccountFetcher is the subset of *sol.Client this package depends on,
// kept narrow so codec has no import cycle on internal/sol (mirrors the
// teacher's pattern of small RPC-facing interfaces in pkg/sol).
type AccountFetcher interface {
	GetMultipleAccountData(ctx context.Context, accounts []solana.PublicKey) ([][]byte, error)
}

// FetchCPMMReserves reads the two vault token accounts for a decoded
// CPMM pool and returns their live balances, net of any pending PnL the
// pool has not yet swept — the reserve definition spec.md §4.1 requires
// for quoting ("Reserve balances are not authoritative inside the pool
// state").
func FetchCPMMReserves(ctx context.Context, fetcher AccountFetcher, acc *CPMMAccount) (reserveCoin, reservePc uint64, err error) {
	data, err := fetcher.GetMultipleAccountData(ctx, []solana.PublicKey{acc.PoolCoinTokenAccount, acc.PoolPcTokenAccount})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fetching vault accounts: %v", xerrors.ErrTransport, err)
	}
	if len(data) != 2 {
		return 0, 0, fmt.Errorf("%w: expected 2 vault accounts, got %d", xerrors.ErrTransport, len(data))
	}

	coinBalance, err := ReadTokenAccountAmount(data[0])
	if err != nil {
		return 0, 0, err
	}
	pcBalance, err := ReadTokenAccountAmount(data[1])
	if err != nil {
		return 0, 0, err
	}

	reserveCoin = subSaturating(coinBalance, acc.NeedTakePnlCoin)
	reservePc = subSaturating(pcBalance, acc.NeedTakePnlPc)
	return reserveCoin, reservePc, nil
}

func subSaturating(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

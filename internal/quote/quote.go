// Package quote is the Price Decoder & Quoter: given a pool address, it
// fetches the account (and, for CPMM pools, the two vault accounts) over
// RPC, decodes it with the right codec for the venue, and returns a
// priced types.PoolState ready for the detector. This is the live,
// RPC-backed counterpart to codec.GetAmountOut's pure math — grounded on
// the teacher's SimpleRouter.getPoolData, which likewise dispatches on
// venue before reading reserves.
package quote

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/yimingwow/scavenger/internal/codec"
	"github.com/yimingwow/scavenger/internal/inventory"
	"github.com/yimingwow/scavenger/internal/types"
	"github.com/yimingwow/scavenger/internal/xerrors"
)

// AccountFetcher is the RPC surface this package needs, satisfied by
// *sol.Client and by codec's own AccountFetcher shape.
type AccountFetcher interface {
	GetMultipleAccountData(ctx context.Context, accounts []solana.PublicKey) ([][]byte, error)
}

// Quoter resolves pool addresses to priced PoolState by routing through
// the inventory's venue tag.
type Quoter struct {
	fetcher AccountFetcher
	inv     *inventory.Inventory
}

// New builds a Quoter backed by fetcher for account reads and inv for
// venue lookups.
func New(fetcher AccountFetcher, inv *inventory.Inventory) *Quoter {
	return &Quoter{fetcher: fetcher, inv: inv}
}

// FetchAndPrice reads pool's account data, decodes it with the venue's
// codec, and — for CPMM pools — fetches live vault balances so the
// returned PoolState's reserves reflect the PnL-adjusted definition
// codec.FetchCPMMReserves implements. The venue is taken from whatever
// PoolState the inventory already holds for pool (populated by
// bootstrap or a previous quote).
func (q *Quoter) FetchAndPrice(ctx context.Context, pool types.PoolAddress) (*types.PoolState, error) {
	existing := q.inv.State(pool)
	if existing == nil {
		return nil, fmt.Errorf("%w: pool %s not in inventory", xerrors.ErrDecode, pool)
	}

	data, err := q.fetcher.GetMultipleAccountData(ctx, []solana.PublicKey{pool})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching pool account %s: %v", xerrors.ErrTransport, pool, err)
	}
	if len(data) != 1 || len(data[0]) == 0 {
		return nil, fmt.Errorf("%w: pool account %s returned no data", xerrors.ErrTransport, pool)
	}

	switch existing.Venue {
	case types.VenueConstantProduct:
		return q.priceCPMM(ctx, pool, data[0])
	case types.VenueConcentratedLiquidity:
		return codec.DecodeCL(pool, data[0])
	default:
		return nil, fmt.Errorf("%w: pool %s has unknown venue", xerrors.ErrDecode, pool)
	}
}

func (q *Quoter) priceCPMM(ctx context.Context, pool types.PoolAddress, data []byte) (*types.PoolState, error) {
	acc, err := codec.DecodeCPMM(pool, data)
	if err != nil {
		return nil, err
	}

	reserveCoin, reservePc, err := codec.FetchCPMMReserves(ctx, q.fetcher, acc)
	if err != nil {
		return nil, err
	}

	return acc.ToPoolState(reserveCoin, reservePc), nil
}

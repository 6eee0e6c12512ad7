// Package inventory holds the in-memory Pool Inventory: every pool seen
// since startup, indexed by token mint, plus the derived arbitrage pairs
// (same non-quote token, one pool on each venue). It is read by the
// Opportunity Detector on every account update and written by the
// Bootstrap Loader and the ingest layer, so all access goes through a
// single RWMutex rather than the sharded DashMap the original
// implementation used — a plain map is enough at this pool count and
// keeps the concurrency story in one place, in the spirit of the
// teacher's SimpleRouter holding its pool list behind simple,
// predictable locking rather than a lock-free structure.
package inventory

import (
	"sync"

	"github.com/yimingwow/scavenger/internal/types"
)

// quoteMints are the tokens that never count as the "non-quote leg" of
// an arbitrage pair — wrapped SOL and the major stables. Grounded on
// original_source/strategies/arb.rs's is_quote_token check.
var quoteMints = map[string]bool{
	"So11111111111111111111111111111111111111112": true, // wrapped SOL
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": true, // USDC
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": true, // USDT
}

// IsQuoteMint reports whether mint is treated as the quote leg and
// therefore excluded from pairing.
func IsQuoteMint(mint types.TokenMint) bool {
	return quoteMints[mint.String()]
}

// Inventory is the process-wide pool catalog. Zero value is not usable;
// construct with New.
type Inventory struct {
	mu sync.RWMutex

	// byToken maps a non-quote mint to every pool that trades it,
	// mirroring original_source/state.rs's orca_pools/raydium map split
	// collapsed into one venue-agnostic index (spec.md §4.2 "grouped by
	// non-quote token").
	byToken map[string][]types.PoolAddress

	// pools is the full decoded state for every known pool, keyed by pool
	// address, refreshed on every ingest update.
	pools map[string]*types.PoolState

	// pairsByToken holds at most one ArbitragePair per non-quote token, set
	// once both venues have been seen for that token (spec.md §4.2
	// "built once a token has pools on more than one venue").
	pairsByToken map[string]*types.ArbitragePair

	// poolToToken lets the detector go from a pool address (as delivered by
	// an account-subscribe update) back to the token it trades, without a
	// linear scan (original_source/state.rs's find_pair_by_pool does scan
	// linearly; this trades a little memory for O(1) lookups instead).
	poolToToken map[string]string
}

// New returns an empty Inventory ready for concurrent use.
func New() *Inventory {
	return &Inventory{
		byToken:      make(map[string][]types.PoolAddress),
		pools:        make(map[string]*types.PoolState),
		pairsByToken: make(map[string]*types.ArbitragePair),
		poolToToken:  make(map[string]string),
	}
}

// nonQuoteMint returns the token leg that isn't a quote mint, and false
// if both or neither leg qualifies (the pool is dropped in that case —
// spec.md §4.2 edge case "pool with two quote mints, or two non-quote
// mints, is not indexed").
func nonQuoteMint(state *types.PoolState) (types.TokenMint, bool) {
	aIsQuote := IsQuoteMint(state.MintA)
	bIsQuote := IsQuoteMint(state.MintB)
	switch {
	case aIsQuote && !bIsQuote:
		return state.MintB, true
	case bIsQuote && !aIsQuote:
		return state.MintA, true
	default:
		return types.TokenMint{}, false
	}
}

// AddPool inserts or replaces a pool's decoded state. Insertion is
// idempotent: re-adding the same pool address updates its state in
// place without duplicating the byToken index entry (spec.md I1 "a pool
// inserted twice appears once in pools_for").
func (inv *Inventory) AddPool(state *types.PoolState) {
	token, ok := nonQuoteMint(state)
	if !ok {
		return
	}
	tokenKey := token.String()
	poolKey := state.Pool.String()

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, exists := inv.pools[poolKey]; !exists {
		inv.byToken[tokenKey] = append(inv.byToken[tokenKey], state.Pool)
		inv.poolToToken[poolKey] = tokenKey
	}
	inv.pools[poolKey] = state

	inv.rebuildPairLocked(token)
}

// rebuildPairLocked recomputes the ArbitragePair for a token after a
// pool insertion, called with inv.mu held. A pair exists once the token
// has pools spanning at least two distinct venues (spec.md §4.2).
func (inv *Inventory) rebuildPairLocked(token types.TokenMint) {
	tokenKey := token.String()
	pools := inv.byToken[tokenKey]
	if len(pools) < 2 {
		delete(inv.pairsByToken, tokenKey)
		return
	}

	var venue0Pool, venue1Pool *types.PoolAddress
	for _, addr := range pools {
		state := inv.pools[addr.String()]
		if state == nil {
			continue
		}
		if state.Venue == types.VenueConstantProduct && venue0Pool == nil {
			p := addr
			venue0Pool = &p
		} else if state.Venue == types.VenueConcentratedLiquidity && venue1Pool == nil {
			p := addr
			venue1Pool = &p
		}
	}
	if venue0Pool == nil || venue1Pool == nil {
		delete(inv.pairsByToken, tokenKey)
		return
	}

	pair := &types.ArbitragePair{
		Token:      token,
		Venue1Pool: *venue0Pool,
		Venue2Pool: venue1Pool,
	}
	inv.pairsByToken[tokenKey] = pair
}

// PoolsFor returns every known pool address trading the given token.
// The returned slice is a copy; callers may not mutate the inventory
// through it.
func (inv *Inventory) PoolsFor(token types.TokenMint) []types.PoolAddress {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	src := inv.byToken[token.String()]
	out := make([]types.PoolAddress, len(src))
	copy(out, src)
	return out
}

// HasLiquidity reports whether at least one pool is known for token.
func (inv *Inventory) HasLiquidity(token types.TokenMint) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.byToken[token.String()]) > 0
}

// State returns the last-known decoded state for a pool, or nil if
// unknown.
func (inv *Inventory) State(pool types.PoolAddress) *types.PoolState {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.pools[pool.String()]
}

// PairForToken returns the arbitrage pair for a token, or nil if the
// token does not yet (or no longer) have pools on two venues.
func (inv *Inventory) PairForToken(token types.TokenMint) *types.ArbitragePair {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.pairsByToken[token.String()]
}

// PairForPool looks up the arbitrage pair that a given pool address
// belongs to, following the pool -> token -> pair chain (spec.md §4.2,
// "given a pool address from an account update, find its pair").
func (inv *Inventory) PairForPool(pool types.PoolAddress) *types.ArbitragePair {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	token, ok := inv.poolToToken[pool.String()]
	if !ok {
		return nil
	}
	return inv.pairsByToken[token]
}

// WatchList returns every pool address that currently belongs to a
// completed pair — the set ingest subscribes to for account updates
// (spec.md §4.5 "MAX_SUBS caps the watch list").
func (inv *Inventory) WatchList() []types.PoolAddress {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	seen := make(map[string]bool)
	var out []types.PoolAddress
	for _, pair := range inv.pairsByToken {
		if !seen[pair.Venue1Pool.String()] {
			seen[pair.Venue1Pool.String()] = true
			out = append(out, pair.Venue1Pool)
		}
		if pair.Venue2Pool != nil && !seen[pair.Venue2Pool.String()] {
			seen[pair.Venue2Pool.String()] = true
			out = append(out, *pair.Venue2Pool)
		}
	}
	return out
}

// Stats is a snapshot of inventory size, used for startup/health
// logging (original_source/state.rs's stats()).
type Stats struct {
	Tokens int
	Pools  int
	Pairs  int
}

// Stats returns the current size of the inventory.
func (inv *Inventory) Stats() Stats {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return Stats{
		Tokens: len(inv.byToken),
		Pools:  len(inv.pools),
		Pairs:  len(inv.pairsByToken),
	}
}

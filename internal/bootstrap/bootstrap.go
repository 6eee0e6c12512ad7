// Package bootstrap fetches the initial pool catalog from each venue's
// public listing API and loads it into the Pool Inventory before ingest
// starts subscribing to live updates. Grounded on
// original_source/scout/api.rs's fetch_raydium_pools/fetch_orca_pools
// and original_source/state.rs's load_from_api.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yimingwow/scavenger/internal/inventory"
	"github.com/yimingwow/scavenger/internal/types"
)

const (
	raydiumPairsURL = "https://api.raydium.io/v2/main/pairs"
	orcaWhirlpoolURL = "https://api.mainnet.orca.so/v1/whirlpool/list"

	raydiumCacheFile = "raydium_pairs.json"
	orcaCacheFile    = "orca_whirlpools.json"

	catalogTTL = 10 * time.Minute
)

// rawRaydiumPair is the subset of fields the public Raydium pairs API
// returns that this loader needs.
type rawRaydiumPair struct {
	AmmID     string `json:"ammId"`
	BaseMint  string `json:"baseMint"`
	QuoteMint string `json:"quoteMint"`
}

type rawWhirlpool struct {
	Address  string `json:"address"`
	TokenA   struct{ Mint string `json:"mint"` } `json:"tokenA"`
	TokenB   struct{ Mint string `json:"mint"` } `json:"tokenB"`
}

// fallbackRaydiumPair is the hard-coded single entry used when both the
// live fetch and the disk cache are unavailable — the canonical
// wrapped-SOL/USDC pool, matching original_source/scout/api.rs's
// load_from_cache fallback literal.
var fallbackRaydiumPair = rawRaydiumPair{
	AmmID:     "58oQChx4yWmvKdwLLZzBi4ChoCcTKqdJennsXZGhPG43",
	BaseMint:  "So11111111111111111111111111111111111111112",
	QuoteMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
}

// Loader fetches and caches both venues' pool catalogs.
type Loader struct {
	httpClient *http.Client
	cacheDir   string
	memCache   *gocache.Cache
	log        *zap.SugaredLogger
}

// NewLoader builds a Loader that writes its disk cache under cacheDir
// (created if missing) and keeps a process-lifetime in-memory mirror
// with a 10-minute TTL to avoid re-parsing the disk file on every
// bootstrap retry within a single run.
func NewLoader(cacheDir string, log *zap.SugaredLogger) *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cacheDir:   cacheDir,
		memCache:   gocache.New(catalogTTL, 2*catalogTTL),
		log:        log,
	}
}

// Load fetches both catalogs concurrently and inserts every decodable
// pool pair into inv. It never returns a hard error: fetch failures fall
// back to the disk cache, and disk-cache failures fall back to the
// hard-coded single pair, so the process always has at least one pool
// to work with (spec.md §4.3).
func (l *Loader) Load(ctx context.Context, inv *inventory.Inventory) error {
	var raydiumPairs []rawRaydiumPair
	var whirlpools []rawWhirlpool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pairs, err := l.loadRaydiumPairs(gctx)
		raydiumPairs = pairs
		return err
	})
	g.Go(func() error {
		pools, err := l.loadOrcaWhirlpools(gctx)
		whirlpools = pools
		return err
	})
	if err := g.Wait(); err != nil {
		// Both sub-loaders already fall back internally; an error here
		// means even the hard-coded fallback failed to parse, which
		// indicates a programming error rather than a transient
		// condition, so it is surfaced rather than swallowed.
		return fmt.Errorf("bootstrap: %w", err)
	}

	for _, p := range raydiumPairs {
		insertRaydiumPair(inv, p)
	}
	for _, w := range whirlpools {
		insertWhirlpool(inv, w)
	}

	stats := inv.Stats()
	l.log.Infow("bootstrap loaded", "tokens", stats.Tokens, "pools", stats.Pools, "pairs", stats.Pairs)
	return nil
}

func (l *Loader) loadRaydiumPairs(ctx context.Context) ([]rawRaydiumPair, error) {
	if cached, ok := l.memCache.Get("raydium"); ok {
		return cached.([]rawRaydiumPair), nil
	}

	pairs, err := fetchJSON[[]rawRaydiumPair](ctx, l.httpClient, raydiumPairsURL)
	if err == nil {
		l.writeDiskCache(raydiumCacheFile, pairs)
		l.memCache.Set("raydium", pairs, gocache.DefaultExpiration)
		return pairs, nil
	}
	l.log.Warnw("raydium pairs fetch failed, falling back to cache", "error", err)

	if cached, ok := l.readDiskCache(raydiumCacheFile); ok {
		var out []rawRaydiumPair
		if jsonErr := json.Unmarshal(cached, &out); jsonErr == nil {
			l.memCache.Set("raydium", out, gocache.DefaultExpiration)
			return out, nil
		}
	}

	l.log.Warnw("raydium disk cache unavailable, using hard-coded fallback pair")
	fallback := []rawRaydiumPair{fallbackRaydiumPair}
	l.memCache.Set("raydium", fallback, gocache.DefaultExpiration)
	return fallback, nil
}

func (l *Loader) loadOrcaWhirlpools(ctx context.Context) ([]rawWhirlpool, error) {
	if cached, ok := l.memCache.Get("orca"); ok {
		return cached.([]rawWhirlpool), nil
	}

	pools, err := fetchJSON[[]rawWhirlpool](ctx, l.httpClient, orcaWhirlpoolURL)
	if err == nil {
		l.writeDiskCache(orcaCacheFile, pools)
		l.memCache.Set("orca", pools, gocache.DefaultExpiration)
		return pools, nil
	}
	l.log.Warnw("orca whirlpool fetch failed, falling back to cache", "error", err)

	if cached, ok := l.readDiskCache(orcaCacheFile); ok {
		var out []rawWhirlpool
		if jsonErr := json.Unmarshal(cached, &out); jsonErr == nil {
			l.memCache.Set("orca", out, gocache.DefaultExpiration)
			return out, nil
		}
	}

	// Orca has no documented fallback pool in the original implementation;
	// an empty catalog just means no CL leg is available until the next
	// successful fetch, which the detector already treats as "no pair".
	l.memCache.Set("orca", []rawWhirlpool{}, gocache.DefaultExpiration)
	return nil, nil
}

func fetchJSON[T any](ctx context.Context, client *http.Client, url string) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

func (l *Loader) writeDiskCache(name string, v any) {
	path := filepath.Join(l.cacheDir, name)
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		l.log.Warnw("cache dir create failed", "path", l.cacheDir, "error", err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		l.log.Warnw("cache marshal failed", "name", name, "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		l.log.Warnw("cache write failed", "path", path, "error", err)
	}
}

func (l *Loader) readDiskCache(name string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(l.cacheDir, name))
	if err != nil {
		return nil, false
	}
	return data, true
}

func insertRaydiumPair(inv *inventory.Inventory, p rawRaydiumPair) {
	poolAddr, err := solana.PublicKeyFromBase58(p.AmmID)
	if err != nil {
		return
	}
	baseMint, err := solana.PublicKeyFromBase58(p.BaseMint)
	if err != nil {
		return
	}
	quoteMint, err := solana.PublicKeyFromBase58(p.QuoteMint)
	if err != nil {
		return
	}
	inv.AddPool(&types.PoolState{
		Venue: types.VenueConstantProduct,
		Pool:  poolAddr,
		MintA: baseMint,
		MintB: quoteMint,
	})
}

func insertWhirlpool(inv *inventory.Inventory, w rawWhirlpool) {
	poolAddr, err := solana.PublicKeyFromBase58(w.Address)
	if err != nil {
		return
	}
	mintA, err := solana.PublicKeyFromBase58(w.TokenA.Mint)
	if err != nil {
		return
	}
	mintB, err := solana.PublicKeyFromBase58(w.TokenB.Mint)
	if err != nil {
		return
	}
	inv.AddPool(&types.PoolState{
		Venue: types.VenueConcentratedLiquidity,
		Pool:  poolAddr,
		MintA: mintA,
		MintB: mintB,
	})
}

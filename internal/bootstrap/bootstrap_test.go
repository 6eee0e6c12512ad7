package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yimingwow/scavenger/internal/inventory"
)

func discardLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestInsertRaydiumPair_BuildsArbitragePairWithWhirlpool(t *testing.T) {
	inv := inventory.New()
	insertRaydiumPair(inv, fallbackRaydiumPair)

	stats := inv.Stats()
	assert.Equal(t, 1, stats.Pools)

	insertWhirlpool(inv, rawWhirlpool{
		Address: "11111111111111111111111111111112",
		TokenA:  struct {
			Mint string `json:"mint"`
		}{Mint: fallbackRaydiumPair.BaseMint},
		TokenB: struct {
			Mint string `json:"mint"`
		}{Mint: fallbackRaydiumPair.QuoteMint},
	})

	stats = inv.Stats()
	assert.Equal(t, 1, stats.Pairs)
}

func TestInsertRaydiumPair_SkipsInvalidAddresses(t *testing.T) {
	inv := inventory.New()
	insertRaydiumPair(inv, rawRaydiumPair{AmmID: "not-a-real-pubkey", BaseMint: fallbackRaydiumPair.BaseMint, QuoteMint: fallbackRaydiumPair.QuoteMint})
	stats := inv.Stats()
	assert.Equal(t, 0, stats.Pools)
}

func TestLoad_FallsBackWhenFetchFails(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir, discardLogger())
	// httpClient points at the real URLs but with a near-zero timeout so
	// the request always fails fast and the fallback path is exercised.
	l.httpClient = &http.Client{Timeout: time.Nanosecond}

	inv := inventory.New()
	err := l.Load(context.Background(), inv)
	require.NoError(t, err)

	stats := inv.Stats()
	assert.GreaterOrEqual(t, stats.Pools, 1) // at least the hard-coded Raydium pair
}

func TestFetchJSON_DecodesLiveServerResponse(t *testing.T) {
	raydiumSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]rawRaydiumPair{fallbackRaydiumPair})
	}))
	defer raydiumSrv.Close()

	dir := t.TempDir()
	l := NewLoader(dir, discardLogger())

	pairs, err := fetchJSON[[]rawRaydiumPair](context.Background(), l.httpClient, raydiumSrv.URL)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
	assert.Equal(t, fallbackRaydiumPair.AmmID, pairs[0].AmmID)
}

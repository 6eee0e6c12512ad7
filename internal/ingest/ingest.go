// Package ingest subscribes to live account and transaction-log updates
// over the Solana WebSocket RPC and fans them into a single channel for
// the detector to consume. Grounded on
// original_source/scout/monitor.rs's start_monitoring: arb mode
// subscribes to account changes on the watch list (capped at MaxSubs),
// sniper mode subscribes to program logs looking for new-pool
// initialization events.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/yimingwow/scavenger/internal/types"
)

// MaxSubs is the cap on concurrent account subscriptions, matching
// original_source/scout/monitor.rs's `50.min(total)`.
const MaxSubs = 50

// backoff bounds reconnect attempts: starts at 500ms, doubles, caps at
// 30s (spec.md §4.5).
const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// AccountUpdate is a single account-changed notification, carrying the
// pool address and its freshly-updated raw bytes.
type AccountUpdate struct {
	Pool types.PoolAddress
	Data []byte
	Slot uint64
}

// NewPoolEvent is a sniper-mode signal that a program log indicated a
// new pool was just initialized (spec.md §4.4, grounded on
// original_source/scout/raydium.rs's NewPoolEvent).
type NewPoolEvent struct {
	Signature solana.Signature
	PoolID    solana.PublicKey
}

// Ingestor multiplexes WebSocket subscriptions into update channels.
type Ingestor struct {
	wsEndpoint string
	log        *zap.SugaredLogger
}

// New builds an Ingestor pointed at a Solana WebSocket RPC endpoint.
func New(wsEndpoint string, log *zap.SugaredLogger) *Ingestor {
	return &Ingestor{wsEndpoint: wsEndpoint, log: log}
}

// WatchAccounts subscribes to account-change notifications for every
// address in pools (capped at MaxSubs, logging how many were dropped)
// and forwards decoded updates to the returned channel until ctx is
// canceled. Connection failures are retried with exponential backoff
// rather than terminating the ingest loop (spec.md §4.5).
func (ig *Ingestor) WatchAccounts(ctx context.Context, pools []types.PoolAddress) <-chan AccountUpdate {
	out := make(chan AccountUpdate, 256)

	watched := pools
	if len(watched) > MaxSubs {
		ig.log.Warnw("watch list exceeds subscription cap, truncating", "total", len(watched), "cap", MaxSubs)
		watched = watched[:MaxSubs]
	}

	go ig.runAccountLoop(ctx, watched, out)
	return out
}

func (ig *Ingestor) runAccountLoop(ctx context.Context, pools []types.PoolAddress, out chan<- AccountUpdate) {
	defer close(out)
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		client, err := ws.Connect(ctx, ig.wsEndpoint)
		if err != nil {
			ig.log.Warnw("ws connect failed, retrying", "error", err, "backoff", backoff)
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = initialBackoff // reset on a successful connection
		ig.drainAccountSubs(ctx, client, pools, out)
		client.Close()

		if ctx.Err() != nil {
			return
		}
		ig.log.Warnw("ws connection dropped, reconnecting")
	}
}

// drainAccountSubs subscribes to every pool and blocks until any single
// subscription errors, ctx is canceled, or all subscriptions close.
func (ig *Ingestor) drainAccountSubs(ctx context.Context, client *ws.Client, pools []types.PoolAddress, out chan<- AccountUpdate) {
	type sub struct {
		pool types.PoolAddress
		sub  *ws.AccountSubscription
	}
	var subs []sub
	for _, pool := range pools {
		s, err := client.AccountSubscribeWithOpts(pool, rpc.CommitmentConfirmed, solana.EncodingBase64)
		if err != nil {
			ig.log.Warnw("account_subscribe failed", "pool", pool, "error", err)
			continue
		}
		subs = append(subs, sub{pool: pool, sub: s})
	}
	defer func() {
		for _, s := range subs {
			s.sub.Unsubscribe()
		}
	}()

	results := make(chan AccountUpdate)
	failed := make(chan struct{}, len(subs))
	done := make(chan struct{})
	defer close(done)
	for _, s := range subs {
		go func(pool types.PoolAddress, s *ws.AccountSubscription) {
			for {
				got, err := s.Recv(ctx)
				if err != nil {
					failed <- struct{}{}
					return
				}
				if got == nil || got.Value == nil {
					continue
				}
				select {
				case results <- AccountUpdate{Pool: pool, Data: got.Value.Account.Data.GetBinary(), Slot: got.Context.Slot}:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}(s.pool, s.sub)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-failed:
			return
		case upd, ok := <-results:
			if !ok {
				return
			}
			select {
			case out <- upd:
			case <-ctx.Done():
				return
			}
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// newPoolInitLogs are the log substrings that mark a Raydium/Orca pool
// creation instruction, per original_source/scout/raydium.rs's
// parse_log_for_new_pool.
var newPoolInitLogs = []string{"Initialize2", "Initialize"}

// WatchNewPools subscribes to program logs for the given program IDs
// and emits a NewPoolEvent whenever a log line matches one of
// newPoolInitLogs. The pool/token identities are resolved later by the
// caller fetching and parsing the full transaction (spec.md §4.4);
// here we only surface the signature.
func (ig *Ingestor) WatchNewPools(ctx context.Context, programIDs []solana.PublicKey) <-chan NewPoolEvent {
	out := make(chan NewPoolEvent, 64)
	go ig.runLogLoop(ctx, programIDs, out)
	return out
}

func (ig *Ingestor) runLogLoop(ctx context.Context, programIDs []solana.PublicKey, out chan<- NewPoolEvent) {
	defer close(out)
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		client, err := ws.Connect(ctx, ig.wsEndpoint)
		if err != nil {
			ig.log.Warnw("ws connect failed, retrying", "error", err, "backoff", backoff)
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = initialBackoff
		ig.drainLogSubs(ctx, client, programIDs, out)
		client.Close()

		if ctx.Err() != nil {
			return
		}
		ig.log.Warnw("ws connection dropped, reconnecting")
	}
}

func (ig *Ingestor) drainLogSubs(ctx context.Context, client *ws.Client, programIDs []solana.PublicKey, out chan<- NewPoolEvent) {
	type sub struct {
		programID solana.PublicKey
		sub       *ws.LogSubscription
	}
	var subs []sub
	for _, programID := range programIDs {
		s, err := client.LogsSubscribeMentions(programID, rpc.CommitmentConfirmed)
		if err != nil {
			ig.log.Warnw("logs_subscribe failed", "program", programID, "error", err)
			continue
		}
		subs = append(subs, sub{programID: programID, sub: s})
	}
	defer func() {
		for _, s := range subs {
			s.sub.Unsubscribe()
		}
	}()

	results := make(chan NewPoolEvent)
	failed := make(chan struct{}, len(subs))
	done := make(chan struct{})
	defer close(done)
	for _, s := range subs {
		go func(s *ws.LogSubscription) {
			for {
				got, err := s.Recv(ctx)
				if err != nil {
					failed <- struct{}{}
					return
				}
				if got == nil || got.Value == nil || !isNewPoolLog(got.Value.Logs) {
					continue
				}
				select {
				case results <- NewPoolEvent{Signature: got.Value.Signature}:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}(s.sub)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-failed:
			return
		case evt, ok := <-results:
			if !ok {
				return
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}
}

func isNewPoolLog(logs []string) bool {
	for _, line := range logs {
		for _, marker := range newPoolInitLogs {
			if strings.Contains(line, marker) {
				return true
			}
		}
	}
	return false
}

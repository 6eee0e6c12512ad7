// Package sol wraps the solana-go RPC/WebSocket clients with rate
// limiting, Jito bundle submission, and the wallet-side helpers
// (signing, WSOL cover, ATA selection) the execution engine needs.
// Adapted from the teacher's pkg/sol package: same method set and
// rate-limiting wrapper pattern, with log.Fatalf calls replaced by
// returned errors and structured zap logging, since this code now runs
// inside a long-lived service rather than a one-shot CLI.
package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Client represents a Solana client that handles both RPC and
// (optionally) Jito block-engine bundle submission.
type Client struct {
	rpcClient   *rpc.Client
	jitoClient  *JitoClient
	rateLimiter *RateLimiter
	log         *zap.SugaredLogger
}

// NewClient creates a new Solana client with custom rate limiting. A
// Jito client is attached only if jitoEndpoint is non-empty; failure to
// reach the block engine at startup is logged but not fatal, since the
// arbitrage path can still run without bundle submission (it will just
// fail at submit time).
func NewClient(ctx context.Context, endpoint, jitoEndpoint string, reqLimitPerSecond int, log *zap.SugaredLogger) (*Client, error) {
	c := &Client{
		rpcClient:   rpc.New(endpoint),
		rateLimiter: NewRateLimiter(reqLimitPerSecond),
		log:         log,
	}

	if jitoEndpoint != "" {
		jitoClient, err := NewJitoClient(ctx, jitoEndpoint)
		if err != nil {
			log.Warnw("jito client init failed, bundle submission disabled", "error", err)
		} else {
			c.jitoClient = jitoClient
		}
	}
	return c, nil
}

// HasJito reports whether bundle submission is available.
func (c *Client) HasJito() bool {
	return c.jitoClient != nil
}

// TipAccount returns the block-engine tip account picked at startup, for
// building a standalone tip-transfer instruction outside SendTxWithJito
// (e.g. for the bundle.Submitter HTTP path). ok is false if no Jito
// client is attached.
func (c *Client) TipAccount() (account solana.PublicKey, ok bool) {
	if c.jitoClient == nil {
		return solana.PublicKey{}, false
	}
	return c.jitoClient.tipAccount, true
}

func wrapTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("sol: %s: %w", op, err)
}

package sol

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// SendTx submits a signed transaction directly to the RPC node,
// skipping preflight simulation since the caller is expected to have
// already simulated (spec.md §4.8 "the direct path is a fallback when
// no Jito endpoint is configured").
func (c *Client) SendTx(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.SendTransactionWithOpts(
		ctx, tx,
		rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentProcessed,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: send transaction: %v", xerrors.ErrTransport, err)
	}
	return sig, nil
}

// SendTxWithJito packages the main transaction with a tip transfer into
// a two-transaction bundle and submits it to the configured Jito
// block-engine endpoint, returning the bundle ID for status polling
// (spec.md §4.8). It does not block on bundle confirmation itself —
// callers poll separately via internal/bundle.
func (c *Client) SendTxWithJito(ctx context.Context, jitoTipLamports uint64, signers []solana.PrivateKey, mainTx *solana.Transaction) (string, error) {
	if c.jitoClient == nil {
		return "", fmt.Errorf("%w: no jito client configured", xerrors.ErrBundleTransport)
	}

	res, err := c.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("%w: get_latest_blockhash: %v", xerrors.ErrBundleTransport, err)
	}

	tipTx, err := createTipTransaction(signers[0], jitoTipLamports, res.Value.Blockhash, c.jitoClient.tipAccount.String())
	if err != nil {
		return "", fmt.Errorf("%w: build tip transaction: %v", xerrors.ErrBundleTransport, err)
	}

	bundleRequest := [][]string{{
		encodeTransaction(mainTx),
		encodeTransaction(tipTx),
	}}

	bundleIDRaw, err := c.jitoClient.rpcClient.SendBundle(bundleRequest)
	if err != nil {
		return "", fmt.Errorf("%w: send_bundle: %v", xerrors.ErrBundleRejected, err)
	}
	var bundleID string
	if err := json.Unmarshal(bundleIDRaw, &bundleID); err != nil {
		return "", fmt.Errorf("%w: unmarshal bundle id: %v", xerrors.ErrBundleRejected, err)
	}

	c.log.Infow("bundle submitted", "bundle_id", bundleID)
	return bundleID, nil
}

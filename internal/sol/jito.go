package sol

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	jitorpc "github.com/jito-labs/jito-go-rpc"
)

// JitoClient wraps the block-engine JSON-RPC client and the tip account
// it was handed at startup.
type JitoClient struct {
	rpcClient  *jitorpc.JitoJsonRpcClient
	tipAccount solana.PublicKey
}

// NewJitoClient connects to a Jito block-engine endpoint and picks a
// random tip account, per https://docs.jito.wtf/lowlatencytxnsend/.
func NewJitoClient(ctx context.Context, endpoint string) (*JitoClient, error) {
	rpcClient := jitorpc.NewJitoJsonRpcClient(endpoint, "")
	tipAccount, err := rpcClient.GetRandomTipAccount()
	if err != nil {
		return nil, fmt.Errorf("get random tip account: %w", err)
	}
	tipAccountPublicKey, err := solana.PublicKeyFromBase58(tipAccount.Address)
	if err != nil {
		return nil, fmt.Errorf("parse tip account address: %w", err)
	}
	return &JitoClient{
		rpcClient:  rpcClient,
		tipAccount: tipAccountPublicKey,
	}, nil
}

func createTipTransaction(privateKey solana.PrivateKey, amount uint64, recentBlockhash solana.Hash, tipAddress string) (*solana.Transaction, error) {
	tipAccount, err := solana.PublicKeyFromBase58(tipAddress)
	if err != nil {
		return nil, fmt.Errorf("parse tip account: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(
				amount,
				privateKey.PublicKey(),
				tipAccount,
			).Build(),
		},
		recentBlockhash,
		solana.TransactionPayer(privateKey.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("build tip transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if privateKey.PublicKey().Equals(key) {
			return &privateKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign tip transaction: %w", err)
	}

	return tx, nil
}

func encodeTransaction(tx *solana.Transaction) string {
	serializedTx, err := tx.MarshalBinary()
	if err != nil {
		// MarshalBinary only fails on a transaction that was never signed,
		// which would be a bug in the caller, not a runtime condition.
		panic(fmt.Sprintf("sol: marshal signed transaction: %v", err))
	}
	return base64.StdEncoding.EncodeToString(serializedTx)
}

// BundleStatus is the terminal or in-progress state of a submitted
// bundle, as reported by the block engine.
type BundleStatus struct {
	Confirmation string // "processed", "confirmed", "finalized", or "" if not yet seen
	Slot         uint64
	Succeeded    bool
	Transactions []string
}

// PollBundleStatus polls GetBundleStatuses up to maxAttempts times,
// pollInterval apart, returning as soon as a finalized status is seen
// (spec.md §4.8, grounded on the teacher's CheckBundleStatus and
// original_source/core/jito.rs's polling loop).
func (c *JitoClient) PollBundleStatus(ctx context.Context, bundleID string, maxAttempts int, pollInterval time.Duration) (BundleStatus, error) {
	var last BundleStatus
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(pollInterval):
		}

		statusResponse, err := c.rpcClient.GetBundleStatuses([]string{bundleID})
		if err != nil {
			continue
		}
		if len(statusResponse.Value) == 0 {
			continue
		}

		s := statusResponse.Value[0]
		last = BundleStatus{
			Confirmation: s.ConfirmationStatus,
			Slot:         s.Slot,
			Transactions: s.Transactions,
		}

		if s.ConfirmationStatus == "finalized" {
			last.Succeeded = s.Err.Ok == nil
			return last, nil
		}
	}
	return last, nil
}

package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SignTransaction fetches a finalized-commitment blockhash, builds a
// transaction from instrs paid for by the first signer, and signs it
// with every provided key. Adapted from the teacher's pkg/sol/sign.go;
// the blockhash-fetch failure path is a returned error here rather than
// log.Fatalf, since this runs inside a long-lived engine loop rather
// than a one-shot CLI.
func (c *Client) SignTransaction(ctx context.Context, signers []solana.PrivateKey, instrs ...solana.Instruction) (*solana.Transaction, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("at least one signer is required")
	}

	res, err := c.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, wrapTransport("get_latest_blockhash", err)
	}

	tx, err := solana.NewTransaction(
		instrs,
		res.Value.Blockhash,
		solana.TransactionPayer(signers[0].PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("sol: build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for _, payer := range signers {
			if payer.PublicKey().Equals(key) {
				return &payer
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sol: sign transaction: %w", err)
	}
	return tx, nil
}

package sol

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// GetUserTokenBalance finds the user's token account for tokenMint and
// returns its address and current balance.
func (c *Client) GetUserTokenBalance(ctx context.Context, userAddr, tokenMint solana.PublicKey) (solana.PublicKey, uint64, error) {
	acc, err := c.GetTokenAccountsByOwner(ctx, userAddr,
		&rpc.GetTokenAccountsConfig{Mint: tokenMint.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: "jsonParsed"},
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: get_token_accounts_by_owner: %v", xerrors.ErrTransport, err)
	}
	if len(acc.Value) == 0 {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: no token account for mint %s", xerrors.ErrTransport, tokenMint)
	}

	balance, err := c.GetTokenAccountBalance(ctx, acc.Value[0].Pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: get_token_account_balance: %v", xerrors.ErrTransport, err)
	}
	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: parse token amount: %v", xerrors.ErrMalformed, err)
	}

	return acc.Value[0].Pubkey, amount, nil
}

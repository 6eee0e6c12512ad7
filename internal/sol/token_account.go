package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// SelectOrCreateSPLTokenAccount returns the user's existing token
// account for tokenMint, creating the associated token account (and
// submitting that transaction) if none exists yet.
func (c *Client) SelectOrCreateSPLTokenAccount(ctx context.Context, privateKey solana.PrivateKey, tokenMint solana.PublicKey) (solana.PublicKey, error) {
	user := privateKey.PublicKey()
	acc, err := c.GetTokenAccountsByOwner(ctx, user,
		&rpc.GetTokenAccountsConfig{Mint: tokenMint.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: "jsonParsed"},
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: get_token_accounts_by_owner: %v", xerrors.ErrTransport, err)
	}
	if len(acc.Value) > 0 {
		return acc.Value[0].Pubkey, nil
	}

	ataAddress, _, err := solana.FindAssociatedTokenAddress(user, tokenMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("sol: find associated token address: %w", err)
	}

	createAtaInst, err := associatedtokenaccount.NewCreateInstruction(user, user, tokenMint).ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("sol: build create-ata instruction: %w", err)
	}

	tx, err := c.SignTransaction(ctx, []solana.PrivateKey{privateKey}, createAtaInst)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := c.SendTx(ctx, tx); err != nil {
		return solana.PublicKey{}, err
	}
	return ataAddress, nil
}

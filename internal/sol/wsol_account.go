package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// WSOL is the mint address of wrapped native SOL.
var WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// CoverWsol ensures the user has a WSOL associated token account funded
// with at least amount lamports, creating the account if needed,
// transferring native SOL into it, and syncing the wrapped balance —
// the three-instruction sequence every WSOL-denominated swap leg needs
// before it can spend wrapped SOL (spec.md's supplemented wallet-prep
// features, grounded on the teacher's pkg/sol/wsol_account.go).
func (c *Client) CoverWsol(ctx context.Context, privateKey solana.PrivateKey, amount int64) error {
	user := privateKey.PublicKey()
	var instrs []solana.Instruction

	acc, err := c.GetTokenAccountsByOwner(ctx, user,
		&rpc.GetTokenAccountsConfig{Mint: WSOL.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: "jsonParsed"},
	)
	if err != nil {
		return fmt.Errorf("sol: get_token_accounts_by_owner: %w", err)
	}
	if len(acc.Value) == 0 {
		createAtaInst, err := associatedtokenaccount.NewCreateInstruction(user, user, WSOL).ValidateAndBuild()
		if err != nil {
			return fmt.Errorf("sol: build create-ata instruction: %w", err)
		}
		instrs = append(instrs, createAtaInst)
	}

	wsolAccount, _, err := solana.FindAssociatedTokenAddress(user, WSOL)
	if err != nil {
		return fmt.Errorf("sol: find associated token address: %w", err)
	}

	transferInst, err := system.NewTransferInstruction(uint64(amount), user, wsolAccount).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("sol: build transfer instruction: %w", err)
	}
	instrs = append(instrs, transferInst)

	syncNativeInst, err := token.NewSyncNativeInstruction(wsolAccount).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("sol: build sync-native instruction: %w", err)
	}
	instrs = append(instrs, syncNativeInst)

	tx, err := c.SignTransaction(ctx, []solana.PrivateKey{privateKey}, instrs...)
	if err != nil {
		return err
	}
	_, err = c.SendTx(ctx, tx)
	return err
}

// CloseWsol closes the user's WSOL account, reclaiming rent and
// unwrapping any remaining balance back to native SOL.
func (c *Client) CloseWsol(ctx context.Context, privateKey solana.PrivateKey) error {
	user := privateKey.PublicKey()

	wsolAccount, _, err := solana.FindAssociatedTokenAddress(user, WSOL)
	if err != nil {
		return fmt.Errorf("sol: find associated token address: %w", err)
	}
	closeInst, err := token.NewCloseAccountInstruction(wsolAccount, user, user, []solana.PublicKey{}).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("sol: build close-account instruction: %w", err)
	}

	tx, err := c.SignTransaction(ctx, []solana.PrivateKey{privateKey}, closeInst)
	if err != nil {
		return err
	}
	_, err = c.SendTx(ctx, tx)
	return err
}

package bundle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

func buildSignedTx(t *testing.T) *solana.Transaction {
	t.Helper()
	payer := solana.NewWallet()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if payer.PublicKey().Equals(key) {
			return &payer.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestEncodeSignedTransactions_RoundTrips(t *testing.T) {
	tx := buildSignedTx(t)
	encoded, err := EncodeSignedTransactions([]*solana.Transaction{tx})
	require.NoError(t, err)
	require.Len(t, encoded, 1)
	assert.NotEmpty(t, encoded[0])
}

func TestSendBundle_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"abc-123"}`))
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL)
	id, err := s.SendBundle(context.Background(), []string{"base58tx1", "base58tx2"})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestSendBundle_RPCErrorIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"bad bundle"}}`))
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL)
	_, err := s.SendBundle(context.Background(), []string{"base58tx1"})
	assert.True(t, errors.Is(err, xerrors.ErrBundleRejected))
}

func TestSendBundle_TransportFailure(t *testing.T) {
	s := NewSubmitter("http://127.0.0.1:1") // nothing listening
	_, err := s.SendBundle(context.Background(), []string{"base58tx1"})
	assert.True(t, errors.Is(err, xerrors.ErrBundleTransport))
}

func TestPollStatus_FinalizedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[{"confirmation_status":"finalized","err":{"Ok":null}}]}}`))
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL)
	finalized, succeeded, err := s.PollStatus(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.True(t, finalized)
	assert.True(t, succeeded)
}

func TestPollStatus_NotYetFinalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[{"confirmation_status":"confirmed"}]}}`))
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL)
	finalized, _, err := s.PollStatus(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.False(t, finalized)
}

func TestPollStatus_EmptyValueMeansUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[]}}`))
	}))
	defer srv.Close()

	s := NewSubmitter(srv.URL)
	finalized, succeeded, err := s.PollStatus(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.False(t, finalized)
	assert.False(t, succeeded)
}

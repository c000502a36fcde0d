package horizon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwen-abid/stellarkit-go/core/net"
	skerrors "github.com/marwen-abid/stellarkit-go/errors"
	"github.com/marwen-abid/stellarkit-go/network"
	"github.com/marwen-abid/stellarkit-go/signers"
	"github.com/marwen-abid/stellarkit-go/txbuild"
	"github.com/marwen-abid/stellarkit-go/xdr"
)

const testAddress = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/hal+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"type":   "https://stellar.org/horizon-errors/not_found",
		"title":  "Resource Missing",
		"status": 404,
	})
}

func accountJSON() map[string]any {
	return map[string]any{
		"id":         testAddress,
		"account_id": testAddress,
		"sequence":   "41",
		"balances": []map[string]any{
			{"balance": "12.5000000", "asset_type": "credit_alphanum4", "asset_code": "USD", "asset_issuer": testAddress},
			{"balance": "100.0000000", "asset_type": "native"},
		},
		"signers": []map[string]any{
			{"key": testAddress, "weight": 1, "type": "ed25519_public_key"},
		},
		"thresholds": map[string]any{"low_threshold": 1, "med_threshold": 2, "high_threshold": 3},
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := quietLogger()
	return NewClient(srv.URL,
		WithLogger(logger),
		WithHTTPClient(net.NewClient(net.WithRetryBackoff(time.Millisecond), net.WithLogger(logger))),
	)
}

func TestAccountQueries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/"+testAddress {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, accountJSON())
	})
	c := newTestClient(t, mux)
	id := xdr.MustAccountID(testAddress)

	seq, err := c.AccountSequence(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(41), seq)

	bal, err := c.Balance(context.Background(), id, xdr.NativeAsset())
	require.NoError(t, err)
	assert.Equal(t, int64(100_0000000), bal)

	usd, err := xdr.NewAsset("USD", id)
	require.NoError(t, err)
	bal, err = c.Balance(context.Background(), id, usd)
	require.NoError(t, err)
	assert.Equal(t, int64(12_5000000), bal)

	eur, err := xdr.NewAsset("EUR", id)
	require.NoError(t, err)
	_, err = c.Balance(context.Background(), id, eur)
	assert.Equal(t, skerrors.MISSING_BALANCE, skerrors.CodeOf(err))

	signerList, thresholds, err := c.Signers(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, signerList, 1)
	assert.Equal(t, testAddress, signerList[0].Key.String())
	assert.Equal(t, byte(2), thresholds.Medium)

	other, err := signers.Random()
	require.NoError(t, err)
	otherID, err := xdr.NewPublicKey(other.PublicKey())
	require.NoError(t, err)
	_, err = c.AccountSequence(context.Background(), otherID)
	assert.Equal(t, skerrors.ACCOUNT_NOT_FOUND, skerrors.CodeOf(err))
}

func ledgerHeaderXDR(t *testing.T, seq, baseFee uint32) string {
	t.Helper()
	s, err := xdr.MarshalBase64(xdr.LedgerHeader{
		LedgerVersion: 19,
		LedgerSeq:     seq,
		BaseFee:       baseFee,
		BaseReserve:   5000000,
		MaxTxSetSize:  1000,
	})
	require.NoError(t, err)
	return s
}

func ledgersHandler(record map[string]any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ledgers" {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"_embedded": map[string]any{"records": []map[string]any{record}},
		})
	})
}

func TestNetworkConfiguration(t *testing.T) {
	record := map[string]any{
		"sequence":                500,
		"base_fee_in_stroops":     100,
		"base_reserve_in_stroops": 5000000,
		"max_tx_set_size":         1000,
	}
	cfg, err := newTestClient(t, ledgersHandler(record)).NetworkConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(500), cfg.LedgerSeq)
	assert.Equal(t, uint32(100), cfg.BaseFee)
	assert.Equal(t, uint32(1000), cfg.MaxTxSetSize)

	record["header_xdr"] = ledgerHeaderXDR(t, 500, 100)
	cfg, err = newTestClient(t, ledgersHandler(record)).NetworkConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(5000000), cfg.BaseReserve)

	record["header_xdr"] = ledgerHeaderXDR(t, 500, 200)
	_, err = newTestClient(t, ledgersHandler(record)).NetworkConfiguration(context.Background())
	assert.Equal(t, skerrors.NETWORK_ERROR, skerrors.CodeOf(err))

	record["header_xdr"] = "not xdr"
	_, err = newTestClient(t, ledgersHandler(record)).NetworkConfiguration(context.Background())
	assert.Equal(t, skerrors.NETWORK_ERROR, skerrors.CodeOf(err))
}

func signedEnvelope(t *testing.T) xdr.TransactionEnvelope {
	t.Helper()
	s, err := signers.Random()
	require.NoError(t, err)
	source, err := xdr.NewPublicKey(s.PublicKey())
	require.NoError(t, err)
	env, err := txbuild.New(source, network.Test).
		SetSequence(42).
		SetFee(100).
		AddOperation(xdr.BumpSequence(50)).
		Sign(context.Background(), s)
	require.NoError(t, err)
	return env
}

func resultXDR(t *testing.T, code xdr.TransactionResultCode, ops ...xdr.OperationResult) string {
	t.Helper()
	s, err := xdr.MarshalBase64(xdr.TransactionResult{
		FeeCharged: 100,
		Result:     xdr.TransactionResultResult{Code: code, Results: ops},
	})
	require.NoError(t, err)
	return s
}

func TestSubmitAccepted(t *testing.T) {
	env := signedEnvelope(t)
	blob, err := xdr.MarshalBase64(env)
	require.NoError(t, err)
	hash, err := env.Hash(network.Test)
	require.NoError(t, err)
	success := xdr.OperationResult{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypeBumpSequence}}
	result := resultXDR(t, xdr.TxSuccess, success)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, blob, r.PostForm.Get("tx"))
		writeJSON(w, http.StatusOK, map[string]any{
			"hash":            hash.String(),
			"ledger":          777,
			"fee_charged":     "100",
			"max_fee":         "100",
			"successful":      true,
			"envelope_xdr":    blob,
			"result_xdr":      result,
			"result_meta_xdr": "AAAAAw==",
		})
	}))

	res, err := c.Submit(context.Background(), &env)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), res.Hash)
	assert.Equal(t, int32(777), res.Ledger)
	assert.Equal(t, []byte{0, 0, 0, 3}, res.ResultMeta)
	assert.True(t, txbuild.Interpret(res.Result).Success())
}

func TestSubmitRejected(t *testing.T) {
	env := signedEnvelope(t)
	failed := xdr.OperationResult{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypeBumpSequence, Code: -1}}
	result := resultXDR(t, xdr.TxFailed, failed)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"type":   "https://stellar.org/horizon-errors/transaction_failed",
			"title":  "Transaction Failed",
			"status": 400,
			"extras": map[string]any{
				"result_xdr": result,
				"result_codes": map[string]any{
					"transaction": "tx_failed",
					"operations":  []string{"op_bad_seq"},
				},
			},
		})
	}))

	_, err := c.Submit(context.Background(), &env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, skerrors.ErrSubmissionRejected))
	assert.Equal(t, "submission rejected (400): Transaction Failed: tx_failed [op_bad_seq]", err.Error())

	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	require.NotNil(t, subErr.Result)
	outcome := txbuild.Interpret(*subErr.Result)
	assert.Equal(t, []string{"op_bad_seq"}, outcome.OperationCodes())
	assert.Equal(t, subErr.ResultCodes.Operations, outcome.OperationCodes())
}

func TestSubmitRejectedWithoutProblem(t *testing.T) {
	env := signedEnvelope(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down\n")
	}))

	_, err := c.Submit(context.Background(), &env)
	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, http.StatusTooManyRequests, subErr.Status)
	assert.Equal(t, "slow down", subErr.Detail)
	assert.Nil(t, subErr.Result)
}

func TestTransactionLookup(t *testing.T) {
	result := resultXDR(t, xdr.TxBadSeq)
	mux := http.NewServeMux()
	mux.HandleFunc("/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/abc" {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"hash":        "abc",
			"ledger":      9,
			"fee_charged": "100",
			"max_fee":     "100",
			"successful":  false,
			"result_xdr":  result,
		})
	})
	c := newTestClient(t, mux)

	res, err := c.Transaction(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int32(9), res.Ledger)
	assert.Equal(t, "tx_bad_seq", txbuild.Interpret(res.Result).TransactionCode())

	_, err = c.Transaction(context.Background(), "missing")
	assert.Equal(t, skerrors.NETWORK_ERROR, skerrors.CodeOf(err))
}

package txbuild

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwen-abid/stellarkit-go/xdr"
)

func paymentResult(code int32) xdr.OperationResult {
	return xdr.OperationResult{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypePayment, Code: code}}
}

func TestInterpretSuccess(t *testing.T) {
	o := Interpret(xdr.TransactionResult{
		FeeCharged: 200,
		Result: xdr.TransactionResultResult{
			Code:    xdr.TxSuccess,
			Results: []xdr.OperationResult{paymentResult(0), paymentResult(0)},
		},
	})
	assert.True(t, o.Success())
	assert.NoError(t, o.Err())
	assert.Equal(t, "tx_success", o.TransactionCode())
	assert.Equal(t, []string{"op_success", "op_success"}, o.OperationCodes())
	for _, op := range o.Operations {
		assert.True(t, op.Applied)
	}
	_, failed := o.FailedOperation()
	assert.False(t, failed)
}

func TestInterpretFailedTransaction(t *testing.T) {
	o := Interpret(xdr.TransactionResult{
		FeeCharged: 200,
		Result: xdr.TransactionResultResult{
			Code:    xdr.TxFailed,
			Results: []xdr.OperationResult{paymentResult(0), paymentResult(-2)},
		},
	})
	assert.False(t, o.Success())
	assert.Equal(t, []string{"op_success", "op_underfunded"}, o.OperationCodes())

	// nothing is applied when the transaction fails
	assert.True(t, o.Operations[0].Success)
	assert.False(t, o.Operations[0].Applied)

	op, ok := o.FailedOperation()
	require.True(t, ok)
	assert.Equal(t, 1, op.Index)
	assert.Equal(t, xdr.OperationTypePayment, op.Type)

	err := o.Err()
	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "transaction failed: tx_failed [op_success, op_underfunded]", err.Error())
}

func TestInterpretTransactionLevelFailure(t *testing.T) {
	o := Interpret(xdr.TransactionResult{FeeCharged: 100, Result: xdr.TransactionResultResult{Code: xdr.TxBadSeq}})
	assert.False(t, o.Success())
	assert.Empty(t, o.OperationCodes())
	assert.Equal(t, "transaction failed: tx_bad_seq", o.Err().Error())
}

func TestInterpretFallbacks(t *testing.T) {
	o := Interpret(xdr.TransactionResult{Result: xdr.TransactionResultResult{Code: xdr.TxInternalError, RawCode: -99}})
	assert.True(t, o.Fallback)
	assert.Equal(t, int32(-99), o.RawCode)
	assert.Equal(t, "tx_internal_error", o.TransactionCode())

	o = Interpret(xdr.TransactionResult{Result: xdr.TransactionResultResult{
		Code: xdr.TxFailed,
		Results: []xdr.OperationResult{
			{Code: xdr.OpNoAccount, RawCode: -40},
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: 60, Unknown: true}},
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypeBumpSequence, Code: -30}},
		},
	}})
	assert.False(t, o.Fallback)
	assert.Equal(t, int32(xdr.TxFailed), o.RawCode)
	assert.Equal(t, []string{"op_no_source_account", "op_unknown", "op_code_-30"}, o.OperationCodes())
}

func TestInterpretFeeBump(t *testing.T) {
	inner := xdr.InnerTransactionResult{
		FeeCharged: 100,
		Result: xdr.TransactionResultResult{
			Code:    xdr.TxFailed,
			Results: []xdr.OperationResult{paymentResult(-5)},
		},
	}
	o := Interpret(xdr.TransactionResult{
		FeeCharged: 300,
		Result: xdr.TransactionResultResult{
			Code:            xdr.TxFeeBumpInnerFailed,
			InnerResultPair: &xdr.InnerTransactionResultPair{TransactionHash: xdr.Hash{1}, Result: inner},
		},
	})
	assert.False(t, o.Success())
	require.NotNil(t, o.Inner)
	assert.Equal(t, xdr.Hash{1}, o.InnerHash)
	assert.Equal(t, []string{"op_no_destination"}, o.OperationCodes())
	assert.Equal(t, "transaction failed: tx_fee_bump_inner_failed (inner tx_failed) [op_no_destination]", o.Err().Error())

	inner.Result = xdr.TransactionResultResult{Code: xdr.TxSuccess, Results: []xdr.OperationResult{paymentResult(0)}}
	o = Interpret(xdr.TransactionResult{Result: xdr.TransactionResultResult{
		Code:            xdr.TxFeeBumpInnerSuccess,
		InnerResultPair: &xdr.InnerTransactionResultPair{Result: inner},
	}})
	assert.True(t, o.Success())
}

func TestInterpretDecodedResult(t *testing.T) {
	// fee 100, tx_failed, one create_account result with op_low_reserve
	const blob = "AAAAAAAAAGT/////AAAAAQAAAAAAAAAA/////QAAAAA="
	var r xdr.TransactionResult
	require.NoError(t, xdr.UnmarshalBase64(blob, &r))

	o := Interpret(r)
	assert.Equal(t, int64(100), o.FeeCharged)
	assert.Equal(t, []string{"op_low_reserve"}, o.OperationCodes())
}

func TestInterpretLaterOperationCodes(t *testing.T) {
	o := Interpret(xdr.TransactionResult{Result: xdr.TransactionResultResult{
		Code: xdr.TxFailed,
		Results: []xdr.OperationResult{
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypeManageBuyOffer, Code: -7}},
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypePathPaymentStrictSend, Code: -12}},
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypeLiquidityPoolDeposit, Code: -6}},
			{Code: xdr.OpInner, Tr: &xdr.OperationResultTr{Type: xdr.OperationTypeClawback, Code: 0}},
		},
	}})
	assert.Equal(t, []string{"op_underfunded", "op_under_dest_min", "op_bad_price", "op_success"}, o.OperationCodes())

	failed, ok := o.FailedOperation()
	require.True(t, ok)
	assert.Equal(t, 0, failed.Index)
	assert.False(t, o.Operations[3].Applied)
}

package txbuild

import (
	"fmt"
	"strings"

	"github.com/marwen-abid/stellarkit-go/xdr"
)

// Outcome is the interpreted form of a TransactionResult.
type Outcome struct {
	FeeCharged int64
	Code       xdr.TransactionResultCode
	// RawCode is the discriminant seen on the wire. It differs from Code only
	// when an unrecognised code was mapped to tx_internal_error.
	RawCode    int32
	Fallback   bool
	Operations []OperationOutcome
	// Inner is the outcome of the wrapped transaction of a fee bump.
	Inner     *Outcome
	InnerHash xdr.Hash
}

// OperationOutcome is the interpreted result of one operation.
type OperationOutcome struct {
	Index int
	// Type is the operation kind reported by the server. Only meaningful when
	// Result.Tr is set.
	Type xdr.OperationType
	// Code is the Horizon-style result code, e.g. "op_success" or "op_underfunded".
	Code string
	// Success reports whether this operation, taken alone, succeeded.
	Success bool
	// Applied reports whether its effects reached the ledger. Operations are
	// applied only when the whole transaction succeeded.
	Applied bool
	Result  xdr.OperationResult
}

// Interpret converts a decoded result into an Outcome.
func Interpret(r xdr.TransactionResult) Outcome {
	return interpretResult(r.FeeCharged, r.Result)
}

func interpretResult(fee int64, r xdr.TransactionResultResult) Outcome {
	o := Outcome{
		FeeCharged: fee,
		Code:       r.Code,
		RawCode:    r.RawCode,
		Fallback:   r.IsFallback(),
	}
	if !o.Fallback {
		o.RawCode = int32(r.Code)
	}
	applied := r.Code == xdr.TxSuccess
	for i, res := range r.Results {
		o.Operations = append(o.Operations, interpretOperation(i, res, applied))
	}
	if r.InnerResultPair != nil {
		inner := interpretResult(r.InnerResultPair.Result.FeeCharged, r.InnerResultPair.Result.Result)
		o.Inner = &inner
		o.InnerHash = r.InnerResultPair.TransactionHash
	}
	return o
}

func interpretOperation(i int, r xdr.OperationResult, txApplied bool) OperationOutcome {
	out := OperationOutcome{Index: i, Result: r}
	if r.Code != xdr.OpInner || r.Tr == nil {
		out.Code = r.Code.String()
		return out
	}
	out.Type = r.Tr.Type
	if r.Tr.Unknown {
		out.Code = "op_unknown"
		return out
	}
	out.Code = operationCodeName(r.Tr.Type, r.Tr.Code)
	out.Success = r.Tr.Code == 0
	out.Applied = txApplied && out.Success
	return out
}

// Success reports whether the transaction and all of its operations applied.
// A fee bump succeeds when its inner transaction does.
func (o Outcome) Success() bool {
	switch o.Code {
	case xdr.TxSuccess:
		return true
	case xdr.TxFeeBumpInnerSuccess:
		return o.Inner != nil && o.Inner.Success()
	}
	return false
}

// TransactionCode returns the Horizon-style transaction code, e.g. "tx_bad_seq".
func (o Outcome) TransactionCode() string {
	return o.Code.String()
}

// OperationCodes returns the per-operation codes in order. It is empty for
// outcomes that carry no operation results.
func (o Outcome) OperationCodes() []string {
	src := o
	if len(src.Operations) == 0 && src.Inner != nil {
		src = *src.Inner
	}
	codes := make([]string, len(src.Operations))
	for i, op := range src.Operations {
		codes[i] = op.Code
	}
	return codes
}

// FailedOperation returns the first operation that did not succeed.
func (o Outcome) FailedOperation() (OperationOutcome, bool) {
	for _, op := range o.Operations {
		if !op.Success {
			return op, true
		}
	}
	if o.Inner != nil {
		return o.Inner.FailedOperation()
	}
	return OperationOutcome{}, false
}

// Err returns nil for a successful outcome and a *FailedError otherwise.
func (o Outcome) Err() error {
	if o.Success() {
		return nil
	}
	return &FailedError{Outcome: o}
}

// FailedError reports a transaction the network did not apply.
type FailedError struct {
	Outcome Outcome
}

func (e *FailedError) Error() string {
	msg := "transaction failed: " + e.Outcome.TransactionCode()
	if e.Outcome.Inner != nil {
		msg += " (inner " + e.Outcome.Inner.TransactionCode() + ")"
	}
	if codes := e.Outcome.OperationCodes(); len(codes) > 0 {
		msg += " [" + strings.Join(codes, ", ") + "]"
	}
	return msg
}

var (
	paymentCodes = []string{
		"op_success", "op_malformed", "op_underfunded", "op_src_no_trust",
		"op_src_not_authorized", "op_no_destination", "op_no_trust",
		"op_not_authorized", "op_line_full", "op_no_issuer",
	}
	offerCodes = []string{
		"op_success", "op_malformed", "op_sell_no_trust", "op_buy_no_trust",
		"op_sell_not_authorized", "op_buy_not_authorized", "op_line_full",
		"op_underfunded", "op_cross_self", "op_sell_no_issuer",
		"op_buy_no_issuer", "op_offer_not_found", "op_low_reserve",
	}

	// operationCodes is indexed by operation type, then by -code.
	operationCodes = map[xdr.OperationType][]string{
		xdr.OperationTypeCreateAccount: {
			"op_success", "op_malformed", "op_underfunded", "op_low_reserve", "op_already_exists",
		},
		xdr.OperationTypePayment: paymentCodes,
		xdr.OperationTypePathPaymentStrictReceive: append(append([]string(nil), paymentCodes...),
			"op_too_few_offers", "op_cross_self", "op_over_source_max",
		),
		xdr.OperationTypeManageSellOffer:        offerCodes,
		xdr.OperationTypeCreatePassiveSellOffer: offerCodes,
		xdr.OperationTypeSetOptions: {
			"op_success", "op_low_reserve", "op_too_many_signers", "op_bad_flags",
			"op_invalid_inflation", "op_cant_change", "op_unknown_flag",
			"op_threshold_out_of_range", "op_bad_signer", "op_invalid_home_domain",
			"op_auth_revocable_required",
		},
		xdr.OperationTypeChangeTrust: {
			"op_success", "op_malformed", "op_no_issuer", "op_invalid_limit",
			"op_low_reserve", "op_self_not_allowed", "op_trust_line_missing",
			"op_cannot_delete", "op_not_auth_maintain_liabilities",
		},
		xdr.OperationTypeAllowTrust: {
			"op_success", "op_malformed", "op_no_trustline", "op_not_required",
			"op_cant_revoke", "op_self_not_allowed", "op_low_reserve",
		},
		xdr.OperationTypeAccountMerge: {
			"op_success", "op_malformed", "op_no_account", "op_immutable_set",
			"op_has_sub_entries", "op_seq_num_too_far", "op_dest_full", "op_is_sponsor",
		},
		xdr.OperationTypeInflation: {"op_success", "op_not_time"},
		xdr.OperationTypeManageData: {
			"op_success", "op_not_supported_yet", "op_data_name_not_found",
			"op_low_reserve", "op_data_invalid_name",
		},
		xdr.OperationTypeBumpSequence: {"op_success", "op_bad_seq"},
		xdr.OperationTypeManageBuyOffer: offerCodes,
		xdr.OperationTypePathPaymentStrictSend: append(append([]string(nil), paymentCodes...),
			"op_too_few_offers", "op_cross_self", "op_under_dest_min",
		),
		xdr.OperationTypeCreateClaimableBalance: {
			"op_success", "op_malformed", "op_low_reserve", "op_no_trust",
			"op_not_authorized", "op_underfunded",
		},
		xdr.OperationTypeClaimClaimableBalance: {
			"op_success", "op_does_not_exist", "op_cannot_claim", "op_line_full",
			"op_no_trust", "op_not_authorized",
		},
		xdr.OperationTypeBeginSponsoringFutureReserves: {
			"op_success", "op_malformed", "op_already_sponsored", "op_recursive",
		},
		xdr.OperationTypeEndSponsoringFutureReserves: {"op_success", "op_not_sponsored"},
		xdr.OperationTypeRevokeSponsorship: {
			"op_success", "op_does_not_exist", "op_not_sponsor", "op_low_reserve",
			"op_only_transferable", "op_malformed",
		},
		xdr.OperationTypeClawback: {
			"op_success", "op_malformed", "op_not_clawback_enabled", "op_no_trust", "op_underfunded",
		},
		xdr.OperationTypeClawbackClaimableBalance: {
			"op_success", "op_does_not_exist", "op_not_issuer", "op_not_clawback_enabled",
		},
		xdr.OperationTypeSetTrustLineFlags: {
			"op_success", "op_malformed", "op_no_trustline", "op_cant_revoke",
			"op_invalid_state", "op_low_reserve",
		},
		xdr.OperationTypeLiquidityPoolDeposit: {
			"op_success", "op_malformed", "op_no_trust", "op_not_authorized",
			"op_underfunded", "op_line_full", "op_bad_price", "op_pool_full",
		},
		xdr.OperationTypeLiquidityPoolWithdraw: {
			"op_success", "op_malformed", "op_no_trust", "op_underfunded",
			"op_line_full", "op_under_minimum",
		},
	}
)

func operationCodeName(t xdr.OperationType, code int32) string {
	names := operationCodes[t]
	if code <= 0 && int(-code) < len(names) {
		return names[-code]
	}
	return fmt.Sprintf("op_code_%d", code)
}

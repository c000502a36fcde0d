package xdr

import (
	"fmt"
)

// TransactionResultCode is the transaction-level outcome.
type TransactionResultCode int32

const (
	TxFeeBumpInnerSuccess TransactionResultCode = 1
	TxSuccess             TransactionResultCode = 0
	TxFailed              TransactionResultCode = -1
	TxTooEarly            TransactionResultCode = -2
	TxTooLate             TransactionResultCode = -3
	TxMissingOperation    TransactionResultCode = -4
	TxBadSeq              TransactionResultCode = -5
	TxBadAuth             TransactionResultCode = -6
	TxInsufficientBalance TransactionResultCode = -7
	TxNoAccount           TransactionResultCode = -8
	TxInsufficientFee     TransactionResultCode = -9
	TxBadAuthExtra        TransactionResultCode = -10
	TxInternalError       TransactionResultCode = -11
	TxNotSupported        TransactionResultCode = -12
	TxFeeBumpInnerFailed  TransactionResultCode = -13
	TxBadSponsorship      TransactionResultCode = -14
	TxBadMinSeqAgeOrGap   TransactionResultCode = -15
	TxMalformed           TransactionResultCode = -16
	TxSorobanInvalid      TransactionResultCode = -17
)

var transactionResultCodeNames = map[TransactionResultCode]string{
	TxFeeBumpInnerSuccess: "tx_fee_bump_inner_success",
	TxSuccess:             "tx_success",
	TxFailed:              "tx_failed",
	TxTooEarly:            "tx_too_early",
	TxTooLate:             "tx_too_late",
	TxMissingOperation:    "tx_missing_operation",
	TxBadSeq:              "tx_bad_seq",
	TxBadAuth:             "tx_bad_auth",
	TxInsufficientBalance: "tx_insufficient_balance",
	TxNoAccount:           "tx_no_source_account",
	TxInsufficientFee:     "tx_insufficient_fee",
	TxBadAuthExtra:        "tx_bad_auth_extra",
	TxInternalError:       "tx_internal_error",
	TxNotSupported:        "tx_not_supported",
	TxFeeBumpInnerFailed:  "tx_fee_bump_inner_failed",
	TxBadSponsorship:      "tx_bad_sponsorship",
	TxBadMinSeqAgeOrGap:   "tx_bad_minseq_age_or_gap",
	TxMalformed:           "tx_malformed",
	TxSorobanInvalid:      "tx_soroban_invalid",
}

// Known reports whether c is a code this package recognises.
func (c TransactionResultCode) Known() bool {
	_, ok := transactionResultCodeNames[c]
	return ok
}

// String returns the Horizon-style name of c, e.g. "tx_bad_seq".
func (c TransactionResultCode) String() string {
	if name, ok := transactionResultCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("tx_code_%d", int32(c))
}

// OperationResultCode is the outer per-operation outcome.
type OperationResultCode int32

const (
	OpInner             OperationResultCode = 0
	OpBadAuth           OperationResultCode = -1
	OpNoAccount         OperationResultCode = -2
	OpNotSupported      OperationResultCode = -3
	OpTooManySubentries OperationResultCode = -4
	OpExceededWorkLimit OperationResultCode = -5
	OpTooManySponsoring OperationResultCode = -6
)

var operationResultCodeNames = map[OperationResultCode]string{
	OpInner:             "op_inner",
	OpBadAuth:           "op_bad_auth",
	OpNoAccount:         "op_no_source_account",
	OpNotSupported:      "op_not_supported",
	OpTooManySubentries: "op_too_many_subentries",
	OpExceededWorkLimit: "op_exceeded_work_limit",
	OpTooManySponsoring: "op_too_many_sponsoring",
}

// Known reports whether c is a code this package recognises.
func (c OperationResultCode) Known() bool {
	_, ok := operationResultCodeNames[c]
	return ok
}

func (c OperationResultCode) String() string {
	if name, ok := operationResultCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("op_code_%d", int32(c))
}

// TransactionResult is the fee charged plus the transaction outcome.
type TransactionResult struct {
	FeeCharged int64
	Result     TransactionResultResult
}

func (r TransactionResult) EncodeTo(e *Encoder) error {
	e.EncodeInt64(r.FeeCharged)
	if err := r.Result.EncodeTo(e); err != nil {
		return field(err, "TransactionResult", "result")
	}
	e.EncodeInt32(0)
	return nil
}

func (r *TransactionResult) DecodeFrom(d *Decoder) (err error) {
	if r.FeeCharged, err = d.DecodeInt64(); err != nil {
		return field(err, "TransactionResult", "feeCharged")
	}
	if err = r.Result.DecodeFrom(d); err != nil {
		return field(err, "TransactionResult", "result")
	}
	return field(decodeEmptyExt(d, "TransactionResult.ext"), "TransactionResult", "ext")
}

// TransactionResultResult is the outcome union.
//
// Results is set for TxSuccess and TxFailed; InnerResultPair for the two
// fee-bump codes. Any discriminant not listed above decodes as TxInternalError
// with RawCode holding the value seen on the wire (see IsFallback).
type TransactionResultResult struct {
	Code            TransactionResultCode
	RawCode         int32
	Results         []OperationResult
	InnerResultPair *InnerTransactionResultPair
}

// IsFallback reports whether the wire discriminant was unrecognised and Code
// was substituted.
func (r TransactionResultResult) IsFallback() bool {
	return r.RawCode != 0 && r.RawCode != int32(r.Code)
}

func (r TransactionResultResult) EncodeTo(e *Encoder) error {
	if r.IsFallback() {
		e.EncodeInt32(r.RawCode)
		return nil
	}
	e.EncodeInt32(int32(r.Code))
	switch r.Code {
	case TxSuccess, TxFailed:
		return EncodeArray(e, r.Results)
	case TxFeeBumpInnerSuccess, TxFeeBumpInnerFailed:
		if r.InnerResultPair == nil {
			return missingPayload("TransactionResultResult", int32(r.Code))
		}
		return r.InnerResultPair.EncodeTo(e)
	}
	return nil
}

func (r *TransactionResultResult) DecodeFrom(d *Decoder) error {
	v, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*r = TransactionResultResult{Code: TransactionResultCode(v), RawCode: v}
	switch r.Code {
	case TxSuccess, TxFailed:
		r.Results, err = DecodeArray[OperationResult](d)
		return err
	case TxFeeBumpInnerSuccess, TxFeeBumpInnerFailed:
		r.InnerResultPair = new(InnerTransactionResultPair)
		return r.InnerResultPair.DecodeFrom(d)
	}
	if !r.Code.Known() {
		r.Code = TxInternalError
	}
	return nil
}

// InnerTransactionResultPair is the hash and result of a fee-bumped inner transaction.
type InnerTransactionResultPair struct {
	TransactionHash Hash
	Result          InnerTransactionResult
}

func (p InnerTransactionResultPair) EncodeTo(e *Encoder) error {
	p.TransactionHash.EncodeTo(e)
	return field(p.Result.EncodeTo(e), "InnerTransactionResultPair", "result")
}

func (p *InnerTransactionResultPair) DecodeFrom(d *Decoder) error {
	if err := p.TransactionHash.DecodeFrom(d); err != nil {
		return field(err, "InnerTransactionResultPair", "transactionHash")
	}
	return field(p.Result.DecodeFrom(d), "InnerTransactionResultPair", "result")
}

// InnerTransactionResult is the result of the inner transaction of a fee bump.
// It cannot itself be a fee bump; those codes are rejected.
type InnerTransactionResult struct {
	FeeCharged int64
	Result     TransactionResultResult
}

func (r InnerTransactionResult) EncodeTo(e *Encoder) error {
	e.EncodeInt64(r.FeeCharged)
	switch r.Result.Code {
	case TxFeeBumpInnerSuccess, TxFeeBumpInnerFailed:
		return unknownVariant("InnerTransactionResult", int32(r.Result.Code))
	}
	if err := r.Result.EncodeTo(e); err != nil {
		return field(err, "InnerTransactionResult", "result")
	}
	e.EncodeInt32(0)
	return nil
}

func (r *InnerTransactionResult) DecodeFrom(d *Decoder) (err error) {
	if r.FeeCharged, err = d.DecodeInt64(); err != nil {
		return field(err, "InnerTransactionResult", "feeCharged")
	}
	if err = r.Result.DecodeFrom(d); err != nil {
		return field(err, "InnerTransactionResult", "result")
	}
	switch r.Result.Code {
	case TxFeeBumpInnerSuccess, TxFeeBumpInnerFailed:
		return unknownVariant("InnerTransactionResult", int32(r.Result.Code))
	}
	return field(decodeEmptyExt(d, "InnerTransactionResult.ext"), "InnerTransactionResult", "ext")
}

// OperationResult is the outer per-operation outcome. Tr is set iff Code is
// OpInner. Unknown outer codes decode as OpNoAccount with RawCode preserved.
type OperationResult struct {
	Code    OperationResultCode
	RawCode int32
	Tr      *OperationResultTr
}

// IsFallback reports whether the wire discriminant was unrecognised.
func (r OperationResult) IsFallback() bool {
	return r.RawCode != 0 && r.RawCode != int32(r.Code)
}

func (r OperationResult) EncodeTo(e *Encoder) error {
	if r.IsFallback() {
		e.EncodeInt32(r.RawCode)
		return nil
	}
	e.EncodeInt32(int32(r.Code))
	if r.Code == OpInner {
		if r.Tr == nil {
			return missingPayload("OperationResult", int32(r.Code))
		}
		return r.Tr.EncodeTo(e)
	}
	return nil
}

func (r *OperationResult) DecodeFrom(d *Decoder) error {
	v, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*r = OperationResult{Code: OperationResultCode(v), RawCode: v}
	if r.Code == OpInner {
		r.Tr = new(OperationResultTr)
		return r.Tr.DecodeFrom(d)
	}
	if !r.Code.Known() {
		r.Code = OpNoAccount
	}
	return nil
}

// OperationResultTr is the kind-specific operation result. Code is the
// kind's own result code; 0 always means success. The payload fields are set
// only for the (Type, Code) pairs that carry one on the wire.
//
// When the operation type is not recognised Unknown is set. Failure codes of
// such a type carry no payload and decode normally with Code preserved; a
// success code cannot be skipped safely and fails with UNKNOWN_VARIANT.
type OperationResultTr struct {
	Type    OperationType
	Code    int32
	Unknown bool

	// PathPaymentStrictReceive and PathPaymentStrictSend, Code 0.
	PathPayment *PathPaymentResultSuccess
	// PathPaymentStrictReceive and PathPaymentStrictSend, Code PathPaymentNoIssuer.
	NoIssuer *Asset
	// ManageSellOffer, CreatePassiveSellOffer and ManageBuyOffer, Code 0.
	ManageOffer *ManageOfferSuccessResult
	// AccountMerge, Code 0.
	SourceAccountBalance int64
	// Inflation, Code 0.
	Payouts []InflationPayout
	// CreateClaimableBalance, Code 0.
	BalanceID *ClaimableBalanceID
	// InvokeHostFunction, Code 0: hash of the invocation's return value and events.
	InvokeHash *Hash
}

// PathPaymentNoIssuer is the path payment result code that carries the
// offending asset.
const PathPaymentNoIssuer int32 = -9

func (r OperationResultTr) EncodeTo(e *Encoder) error {
	if (r.Unknown || !r.Type.Known()) && r.Code == 0 {
		return unknownVariant("OperationResultTr", int32(r.Type))
	}
	e.EncodeInt32(int32(r.Type))
	e.EncodeInt32(r.Code)
	if r.Unknown || !r.Type.Known() {
		return nil
	}
	switch r.Type {
	case OperationTypePathPaymentStrictReceive, OperationTypePathPaymentStrictSend:
		switch r.Code {
		case 0:
			return encodeArm(e, "OperationResultTr", int32(r.Type), r.PathPayment)
		case PathPaymentNoIssuer:
			return encodeArm(e, "OperationResultTr", int32(r.Type), r.NoIssuer)
		}
	case OperationTypeManageSellOffer, OperationTypeCreatePassiveSellOffer, OperationTypeManageBuyOffer:
		if r.Code == 0 {
			return encodeArm(e, "OperationResultTr", int32(r.Type), r.ManageOffer)
		}
	case OperationTypeAccountMerge:
		if r.Code == 0 {
			e.EncodeInt64(r.SourceAccountBalance)
		}
	case OperationTypeInflation:
		if r.Code == 0 {
			return EncodeArray(e, r.Payouts)
		}
	case OperationTypeCreateClaimableBalance:
		if r.Code == 0 {
			return encodeArm(e, "OperationResultTr", int32(r.Type), r.BalanceID)
		}
	case OperationTypeInvokeHostFunction:
		if r.Code == 0 {
			return encodeArm(e, "OperationResultTr", int32(r.Type), r.InvokeHash)
		}
	}
	return nil
}

func (r *OperationResultTr) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*r = OperationResultTr{Type: OperationType(t), Unknown: !OperationType(t).Known()}
	if r.Code, err = d.DecodeInt32(); err != nil {
		return field(err, "OperationResultTr", "code")
	}
	if r.Unknown {
		if r.Code == 0 {
			return unknownVariant("OperationResultTr", t)
		}
		return nil
	}
	switch r.Type {
	case OperationTypePathPaymentStrictReceive, OperationTypePathPaymentStrictSend:
		switch r.Code {
		case 0:
			r.PathPayment = new(PathPaymentResultSuccess)
			return field(r.PathPayment.DecodeFrom(d), "OperationResultTr", "success")
		case PathPaymentNoIssuer:
			r.NoIssuer = new(Asset)
			return field(r.NoIssuer.DecodeFrom(d), "OperationResultTr", "noIssuer")
		}
	case OperationTypeManageSellOffer, OperationTypeCreatePassiveSellOffer, OperationTypeManageBuyOffer:
		if r.Code == 0 {
			r.ManageOffer = new(ManageOfferSuccessResult)
			return field(r.ManageOffer.DecodeFrom(d), "OperationResultTr", "success")
		}
	case OperationTypeAccountMerge:
		if r.Code == 0 {
			r.SourceAccountBalance, err = d.DecodeInt64()
			return field(err, "OperationResultTr", "sourceAccountBalance")
		}
	case OperationTypeInflation:
		if r.Code == 0 {
			r.Payouts, err = DecodeArray[InflationPayout](d)
			return field(err, "OperationResultTr", "payouts")
		}
	case OperationTypeCreateClaimableBalance:
		if r.Code == 0 {
			r.BalanceID = new(ClaimableBalanceID)
			return field(r.BalanceID.DecodeFrom(d), "OperationResultTr", "balanceID")
		}
	case OperationTypeInvokeHostFunction:
		if r.Code == 0 {
			r.InvokeHash = new(Hash)
			return field(r.InvokeHash.DecodeFrom(d), "OperationResultTr", "success")
		}
	}
	return nil
}

// ClaimAtomType discriminates ClaimAtom.
type ClaimAtomType int32

const (
	ClaimAtomTypeV0            ClaimAtomType = 0
	ClaimAtomTypeOrderBook     ClaimAtomType = 1
	ClaimAtomTypeLiquidityPool ClaimAtomType = 2
)

// ClaimAtom describes one offer or pool crossed while executing an operation.
// SellerID and OfferID are set for the V0 and order-book arms;
// LiquidityPoolID for the pool arm.
type ClaimAtom struct {
	Type            ClaimAtomType
	SellerID        AccountID
	OfferID         int64
	LiquidityPoolID Hash
	AssetSold       Asset
	AmountSold      int64
	AssetBought     Asset
	AmountBought    int64
}

func (c ClaimAtom) EncodeTo(e *Encoder) error {
	switch c.Type {
	case ClaimAtomTypeV0:
		e.EncodeInt32(int32(c.Type))
		c.SellerID.Ed25519.EncodeTo(e)
		e.EncodeInt64(c.OfferID)
	case ClaimAtomTypeOrderBook:
		e.EncodeInt32(int32(c.Type))
		c.SellerID.EncodeTo(e)
		e.EncodeInt64(c.OfferID)
	case ClaimAtomTypeLiquidityPool:
		e.EncodeInt32(int32(c.Type))
		c.LiquidityPoolID.EncodeTo(e)
	default:
		return unknownVariant("ClaimAtom", int32(c.Type))
	}
	if err := c.AssetSold.EncodeTo(e); err != nil {
		return field(err, "ClaimAtom", "assetSold")
	}
	e.EncodeInt64(c.AmountSold)
	if err := c.AssetBought.EncodeTo(e); err != nil {
		return field(err, "ClaimAtom", "assetBought")
	}
	e.EncodeInt64(c.AmountBought)
	return nil
}

func (c *ClaimAtom) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*c = ClaimAtom{Type: ClaimAtomType(t)}
	switch c.Type {
	case ClaimAtomTypeV0:
		if err = c.SellerID.Ed25519.DecodeFrom(d); err != nil {
			return field(err, "ClaimAtom", "sellerEd25519")
		}
		if c.OfferID, err = d.DecodeInt64(); err != nil {
			return field(err, "ClaimAtom", "offerID")
		}
	case ClaimAtomTypeOrderBook:
		if err = c.SellerID.DecodeFrom(d); err != nil {
			return field(err, "ClaimAtom", "sellerID")
		}
		if c.OfferID, err = d.DecodeInt64(); err != nil {
			return field(err, "ClaimAtom", "offerID")
		}
	case ClaimAtomTypeLiquidityPool:
		if err = c.LiquidityPoolID.DecodeFrom(d); err != nil {
			return field(err, "ClaimAtom", "liquidityPoolID")
		}
	default:
		return unknownVariant("ClaimAtom", t)
	}
	if err = c.AssetSold.DecodeFrom(d); err != nil {
		return field(err, "ClaimAtom", "assetSold")
	}
	if c.AmountSold, err = d.DecodeInt64(); err != nil {
		return field(err, "ClaimAtom", "amountSold")
	}
	if err = c.AssetBought.DecodeFrom(d); err != nil {
		return field(err, "ClaimAtom", "assetBought")
	}
	c.AmountBought, err = d.DecodeInt64()
	return field(err, "ClaimAtom", "amountBought")
}

// SimplePaymentResult is the final hop of a path payment.
type SimplePaymentResult struct {
	Destination AccountID
	Asset       Asset
	Amount      int64
}

func (r SimplePaymentResult) EncodeTo(e *Encoder) error {
	r.Destination.EncodeTo(e)
	if err := r.Asset.EncodeTo(e); err != nil {
		return field(err, "SimplePaymentResult", "asset")
	}
	e.EncodeInt64(r.Amount)
	return nil
}

func (r *SimplePaymentResult) DecodeFrom(d *Decoder) (err error) {
	if err = r.Destination.DecodeFrom(d); err != nil {
		return field(err, "SimplePaymentResult", "destination")
	}
	if err = r.Asset.DecodeFrom(d); err != nil {
		return field(err, "SimplePaymentResult", "asset")
	}
	r.Amount, err = d.DecodeInt64()
	return field(err, "SimplePaymentResult", "amount")
}

// PathPaymentResultSuccess lists the offers crossed and the final payment.
type PathPaymentResultSuccess struct {
	Offers []ClaimAtom
	Last   SimplePaymentResult
}

func (r PathPaymentResultSuccess) EncodeTo(e *Encoder) error {
	if err := EncodeArray(e, r.Offers); err != nil {
		return field(err, "PathPaymentResultSuccess", "offers")
	}
	return field(r.Last.EncodeTo(e), "PathPaymentResultSuccess", "last")
}

func (r *PathPaymentResultSuccess) DecodeFrom(d *Decoder) (err error) {
	if r.Offers, err = DecodeArray[ClaimAtom](d); err != nil {
		return field(err, "PathPaymentResultSuccess", "offers")
	}
	return field(r.Last.DecodeFrom(d), "PathPaymentResultSuccess", "last")
}

// OfferEntry is an offer resting on the order book.
type OfferEntry struct {
	SellerID AccountID
	OfferID  int64
	Selling  Asset
	Buying   Asset
	Amount   int64
	Price    Price
	Flags    uint32
}

func (o OfferEntry) EncodeTo(e *Encoder) error {
	o.SellerID.EncodeTo(e)
	e.EncodeInt64(o.OfferID)
	if err := o.Selling.EncodeTo(e); err != nil {
		return field(err, "OfferEntry", "selling")
	}
	if err := o.Buying.EncodeTo(e); err != nil {
		return field(err, "OfferEntry", "buying")
	}
	e.EncodeInt64(o.Amount)
	o.Price.EncodeTo(e)
	e.EncodeUint32(o.Flags)
	e.EncodeInt32(0)
	return nil
}

func (o *OfferEntry) DecodeFrom(d *Decoder) (err error) {
	if err = o.SellerID.DecodeFrom(d); err != nil {
		return field(err, "OfferEntry", "sellerID")
	}
	if o.OfferID, err = d.DecodeInt64(); err != nil {
		return field(err, "OfferEntry", "offerID")
	}
	if err = o.Selling.DecodeFrom(d); err != nil {
		return field(err, "OfferEntry", "selling")
	}
	if err = o.Buying.DecodeFrom(d); err != nil {
		return field(err, "OfferEntry", "buying")
	}
	if o.Amount, err = d.DecodeInt64(); err != nil {
		return field(err, "OfferEntry", "amount")
	}
	if err = o.Price.DecodeFrom(d); err != nil {
		return field(err, "OfferEntry", "price")
	}
	if o.Flags, err = d.DecodeUint32(); err != nil {
		return field(err, "OfferEntry", "flags")
	}
	return field(decodeEmptyExt(d, "OfferEntry.ext"), "OfferEntry", "ext")
}

// ManageOfferEffect says what happened to the submitted offer.
type ManageOfferEffect int32

const (
	ManageOfferCreated ManageOfferEffect = 0
	ManageOfferUpdated ManageOfferEffect = 1
	ManageOfferDeleted ManageOfferEffect = 2
)

// ManageOfferSuccessResult lists crossed offers and the resulting offer, if any.
// Offer is set for ManageOfferCreated and ManageOfferUpdated.
type ManageOfferSuccessResult struct {
	OffersClaimed []ClaimAtom
	Effect        ManageOfferEffect
	Offer         *OfferEntry
}

func (r ManageOfferSuccessResult) EncodeTo(e *Encoder) error {
	if err := EncodeArray(e, r.OffersClaimed); err != nil {
		return field(err, "ManageOfferSuccessResult", "offersClaimed")
	}
	switch r.Effect {
	case ManageOfferCreated, ManageOfferUpdated:
		if r.Offer == nil {
			return missingPayload("ManageOfferSuccessResult.offer", int32(r.Effect))
		}
		e.EncodeInt32(int32(r.Effect))
		return r.Offer.EncodeTo(e)
	case ManageOfferDeleted:
		e.EncodeInt32(int32(r.Effect))
		return nil
	}
	return unknownVariant("ManageOfferSuccessResult.offer", int32(r.Effect))
}

func (r *ManageOfferSuccessResult) DecodeFrom(d *Decoder) (err error) {
	if r.OffersClaimed, err = DecodeArray[ClaimAtom](d); err != nil {
		return field(err, "ManageOfferSuccessResult", "offersClaimed")
	}
	v, err := d.DecodeInt32()
	if err != nil {
		return field(err, "ManageOfferSuccessResult", "offer")
	}
	r.Effect = ManageOfferEffect(v)
	switch r.Effect {
	case ManageOfferCreated, ManageOfferUpdated:
		r.Offer = new(OfferEntry)
		return field(r.Offer.DecodeFrom(d), "ManageOfferSuccessResult", "offer")
	case ManageOfferDeleted:
		r.Offer = nil
		return nil
	}
	return unknownVariant("ManageOfferSuccessResult.offer", v)
}

// InflationPayout is one inflation winner.
type InflationPayout struct {
	Destination AccountID
	Amount      int64
}

func (p InflationPayout) EncodeTo(e *Encoder) error {
	p.Destination.EncodeTo(e)
	e.EncodeInt64(p.Amount)
	return nil
}

func (p *InflationPayout) DecodeFrom(d *Decoder) (err error) {
	if err = p.Destination.DecodeFrom(d); err != nil {
		return field(err, "InflationPayout", "destination")
	}
	p.Amount, err = d.DecodeInt64()
	return field(err, "InflationPayout", "amount")
}

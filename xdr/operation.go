package xdr

import (
	"fmt"
)

// OperationType discriminates OperationBody and OperationResultTr.
type OperationType int32

const (
	OperationTypeCreateAccount            OperationType = 0
	OperationTypePayment                  OperationType = 1
	OperationTypePathPaymentStrictReceive OperationType = 2
	OperationTypeManageSellOffer          OperationType = 3
	OperationTypeCreatePassiveSellOffer   OperationType = 4
	OperationTypeSetOptions               OperationType = 5
	OperationTypeChangeTrust              OperationType = 6
	OperationTypeAllowTrust               OperationType = 7
	OperationTypeAccountMerge             OperationType = 8
	OperationTypeInflation                OperationType = 9
	OperationTypeManageData               OperationType = 10
	OperationTypeBumpSequence             OperationType = 11

	OperationTypeManageBuyOffer                OperationType = 12
	OperationTypePathPaymentStrictSend         OperationType = 13
	OperationTypeCreateClaimableBalance        OperationType = 14
	OperationTypeClaimClaimableBalance         OperationType = 15
	OperationTypeBeginSponsoringFutureReserves OperationType = 16
	OperationTypeEndSponsoringFutureReserves   OperationType = 17
	OperationTypeRevokeSponsorship             OperationType = 18
	OperationTypeClawback                      OperationType = 19
	OperationTypeClawbackClaimableBalance      OperationType = 20
	OperationTypeSetTrustLineFlags             OperationType = 21
	OperationTypeLiquidityPoolDeposit          OperationType = 22
	OperationTypeLiquidityPoolWithdraw         OperationType = 23
	OperationTypeInvokeHostFunction            OperationType = 24
	OperationTypeExtendFootprintTTL            OperationType = 25
	OperationTypeRestoreFootprint              OperationType = 26
)

var operationTypeNames = map[OperationType]string{
	OperationTypeCreateAccount:            "create_account",
	OperationTypePayment:                  "payment",
	OperationTypePathPaymentStrictReceive: "path_payment_strict_receive",
	OperationTypeManageSellOffer:          "manage_sell_offer",
	OperationTypeCreatePassiveSellOffer:   "create_passive_sell_offer",
	OperationTypeSetOptions:               "set_options",
	OperationTypeChangeTrust:              "change_trust",
	OperationTypeAllowTrust:               "allow_trust",
	OperationTypeAccountMerge:             "account_merge",
	OperationTypeInflation:                "inflation",
	OperationTypeManageData:               "manage_data",
	OperationTypeBumpSequence:             "bump_sequence",

	OperationTypeManageBuyOffer:                "manage_buy_offer",
	OperationTypePathPaymentStrictSend:         "path_payment_strict_send",
	OperationTypeCreateClaimableBalance:        "create_claimable_balance",
	OperationTypeClaimClaimableBalance:         "claim_claimable_balance",
	OperationTypeBeginSponsoringFutureReserves: "begin_sponsoring_future_reserves",
	OperationTypeEndSponsoringFutureReserves:   "end_sponsoring_future_reserves",
	OperationTypeRevokeSponsorship:             "revoke_sponsorship",
	OperationTypeClawback:                      "clawback",
	OperationTypeClawbackClaimableBalance:      "clawback_claimable_balance",
	OperationTypeSetTrustLineFlags:             "set_trust_line_flags",
	OperationTypeLiquidityPoolDeposit:          "liquidity_pool_deposit",
	OperationTypeLiquidityPoolWithdraw:         "liquidity_pool_withdraw",
	OperationTypeInvokeHostFunction:            "invoke_host_function",
	OperationTypeExtendFootprintTTL:            "extend_footprint_ttl",
	OperationTypeRestoreFootprint:              "restore_footprint",
}

// Known reports whether t is an operation type of the current protocol.
// Bodies of CreateClaimableBalance, RevokeSponsorship and the smart contract
// operations are not modelled; see OperationBody.
func (t OperationType) Known() bool {
	_, ok := operationTypeNames[t]
	return ok
}

func (t OperationType) String() string {
	if name, ok := operationTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("operation_type_%d", int32(t))
}

const (
	maxOperations    = 100
	maxPathLength    = 5
	maxHomeDomain    = 32
	maxDataName      = 64
	maxDataValue     = 64
	maxSignatureSize = 64
	maxSignatures    = 20
)

// Operation is a single ledger-affecting step. SourceAccount overrides the
// transaction source for this operation when set.
type Operation struct {
	SourceAccount *MuxedAccount
	Body          OperationBody
}

func (o Operation) EncodeTo(e *Encoder) error {
	if err := EncodeOptional(e, o.SourceAccount); err != nil {
		return field(err, "Operation", "sourceAccount")
	}
	return field(o.Body.EncodeTo(e), "Operation", "body")
}

func (o *Operation) DecodeFrom(d *Decoder) (err error) {
	if o.SourceAccount, err = DecodeOptional[MuxedAccount](d); err != nil {
		return field(err, "Operation", "sourceAccount")
	}
	return field(o.Body.DecodeFrom(d), "Operation", "body")
}

// OperationBody is the operation union. Exactly one arm matching Type is set;
// Inflation and EndSponsoringFutureReserves have no arm.
//
// CreateClaimableBalance, RevokeSponsorship, InvokeHostFunction,
// ExtendFootprintTTL and RestoreFootprint bodies are not modelled and fail
// with UNKNOWN_VARIANT.
type OperationBody struct {
	Type OperationType

	CreateAccountOp            *CreateAccountOp
	PaymentOp                  *PaymentOp
	PathPaymentStrictReceiveOp *PathPaymentStrictReceiveOp
	ManageSellOfferOp          *ManageSellOfferOp
	CreatePassiveSellOfferOp   *CreatePassiveSellOfferOp
	SetOptionsOp               *SetOptionsOp
	ChangeTrustOp              *ChangeTrustOp
	AllowTrustOp               *AllowTrustOp
	Destination                *MuxedAccount
	ManageDataOp               *ManageDataOp
	BumpSequenceOp             *BumpSequenceOp

	ManageBuyOfferOp                *ManageBuyOfferOp
	PathPaymentStrictSendOp         *PathPaymentStrictSendOp
	ClaimClaimableBalanceOp         *ClaimClaimableBalanceOp
	BeginSponsoringFutureReservesOp *BeginSponsoringFutureReservesOp
	ClawbackOp                      *ClawbackOp
	ClawbackClaimableBalanceOp      *ClawbackClaimableBalanceOp
	SetTrustLineFlagsOp             *SetTrustLineFlagsOp
	LiquidityPoolDepositOp          *LiquidityPoolDepositOp
	LiquidityPoolWithdrawOp         *LiquidityPoolWithdrawOp
}

// encodeArm writes the payload of a union arm, failing when it is unset.
func encodeArm[T Encodable](e *Encoder, union string, discriminant int32, arm *T) error {
	if arm == nil {
		return missingPayload(union, discriminant)
	}
	return (*arm).EncodeTo(e)
}

func (b OperationBody) EncodeTo(e *Encoder) error {
	e.EncodeInt32(int32(b.Type))
	switch b.Type {
	case OperationTypeCreateAccount:
		return encodeArm(e, "OperationBody", int32(b.Type), b.CreateAccountOp)
	case OperationTypePayment:
		return encodeArm(e, "OperationBody", int32(b.Type), b.PaymentOp)
	case OperationTypePathPaymentStrictReceive:
		return encodeArm(e, "OperationBody", int32(b.Type), b.PathPaymentStrictReceiveOp)
	case OperationTypeManageSellOffer:
		return encodeArm(e, "OperationBody", int32(b.Type), b.ManageSellOfferOp)
	case OperationTypeCreatePassiveSellOffer:
		return encodeArm(e, "OperationBody", int32(b.Type), b.CreatePassiveSellOfferOp)
	case OperationTypeSetOptions:
		return encodeArm(e, "OperationBody", int32(b.Type), b.SetOptionsOp)
	case OperationTypeChangeTrust:
		return encodeArm(e, "OperationBody", int32(b.Type), b.ChangeTrustOp)
	case OperationTypeAllowTrust:
		return encodeArm(e, "OperationBody", int32(b.Type), b.AllowTrustOp)
	case OperationTypeAccountMerge:
		return encodeArm(e, "OperationBody", int32(b.Type), b.Destination)
	case OperationTypeInflation:
		return nil
	case OperationTypeManageData:
		return encodeArm(e, "OperationBody", int32(b.Type), b.ManageDataOp)
	case OperationTypeBumpSequence:
		return encodeArm(e, "OperationBody", int32(b.Type), b.BumpSequenceOp)
	case OperationTypeManageBuyOffer:
		return encodeArm(e, "OperationBody", int32(b.Type), b.ManageBuyOfferOp)
	case OperationTypePathPaymentStrictSend:
		return encodeArm(e, "OperationBody", int32(b.Type), b.PathPaymentStrictSendOp)
	case OperationTypeClaimClaimableBalance:
		return encodeArm(e, "OperationBody", int32(b.Type), b.ClaimClaimableBalanceOp)
	case OperationTypeBeginSponsoringFutureReserves:
		return encodeArm(e, "OperationBody", int32(b.Type), b.BeginSponsoringFutureReservesOp)
	case OperationTypeEndSponsoringFutureReserves:
		return nil
	case OperationTypeClawback:
		return encodeArm(e, "OperationBody", int32(b.Type), b.ClawbackOp)
	case OperationTypeClawbackClaimableBalance:
		return encodeArm(e, "OperationBody", int32(b.Type), b.ClawbackClaimableBalanceOp)
	case OperationTypeSetTrustLineFlags:
		return encodeArm(e, "OperationBody", int32(b.Type), b.SetTrustLineFlagsOp)
	case OperationTypeLiquidityPoolDeposit:
		return encodeArm(e, "OperationBody", int32(b.Type), b.LiquidityPoolDepositOp)
	case OperationTypeLiquidityPoolWithdraw:
		return encodeArm(e, "OperationBody", int32(b.Type), b.LiquidityPoolWithdrawOp)
	}
	return unknownVariant("OperationBody", int32(b.Type))
}

func decodeArm[T any, PT decodablePtr[T]](d *Decoder, arm **T) error {
	v := new(T)
	if err := PT(v).DecodeFrom(d); err != nil {
		return err
	}
	*arm = v
	return nil
}

func (b *OperationBody) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*b = OperationBody{Type: OperationType(t)}
	switch b.Type {
	case OperationTypeCreateAccount:
		return decodeArm(d, &b.CreateAccountOp)
	case OperationTypePayment:
		return decodeArm(d, &b.PaymentOp)
	case OperationTypePathPaymentStrictReceive:
		return decodeArm(d, &b.PathPaymentStrictReceiveOp)
	case OperationTypeManageSellOffer:
		return decodeArm(d, &b.ManageSellOfferOp)
	case OperationTypeCreatePassiveSellOffer:
		return decodeArm(d, &b.CreatePassiveSellOfferOp)
	case OperationTypeSetOptions:
		return decodeArm(d, &b.SetOptionsOp)
	case OperationTypeChangeTrust:
		return decodeArm(d, &b.ChangeTrustOp)
	case OperationTypeAllowTrust:
		return decodeArm(d, &b.AllowTrustOp)
	case OperationTypeAccountMerge:
		return decodeArm(d, &b.Destination)
	case OperationTypeInflation:
		return nil
	case OperationTypeManageData:
		return decodeArm(d, &b.ManageDataOp)
	case OperationTypeBumpSequence:
		return decodeArm(d, &b.BumpSequenceOp)
	case OperationTypeManageBuyOffer:
		return decodeArm(d, &b.ManageBuyOfferOp)
	case OperationTypePathPaymentStrictSend:
		return decodeArm(d, &b.PathPaymentStrictSendOp)
	case OperationTypeClaimClaimableBalance:
		return decodeArm(d, &b.ClaimClaimableBalanceOp)
	case OperationTypeBeginSponsoringFutureReserves:
		return decodeArm(d, &b.BeginSponsoringFutureReservesOp)
	case OperationTypeEndSponsoringFutureReserves:
		return nil
	case OperationTypeClawback:
		return decodeArm(d, &b.ClawbackOp)
	case OperationTypeClawbackClaimableBalance:
		return decodeArm(d, &b.ClawbackClaimableBalanceOp)
	case OperationTypeSetTrustLineFlags:
		return decodeArm(d, &b.SetTrustLineFlagsOp)
	case OperationTypeLiquidityPoolDeposit:
		return decodeArm(d, &b.LiquidityPoolDepositOp)
	case OperationTypeLiquidityPoolWithdraw:
		return decodeArm(d, &b.LiquidityPoolWithdrawOp)
	}
	return unknownVariant("OperationBody", t)
}

// CreateAccountOp funds a new account with StartingBalance stroops of the native asset.
type CreateAccountOp struct {
	Destination     AccountID
	StartingBalance int64
}

func (o CreateAccountOp) EncodeTo(e *Encoder) error {
	if err := o.Destination.EncodeTo(e); err != nil {
		return field(err, "CreateAccountOp", "destination")
	}
	e.EncodeInt64(o.StartingBalance)
	return nil
}

func (o *CreateAccountOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Destination.DecodeFrom(d); err != nil {
		return field(err, "CreateAccountOp", "destination")
	}
	o.StartingBalance, err = d.DecodeInt64()
	return field(err, "CreateAccountOp", "startingBalance")
}

// PaymentOp sends Amount stroops of Asset to Destination.
type PaymentOp struct {
	Destination MuxedAccount
	Asset       Asset
	Amount      int64
}

func (o PaymentOp) EncodeTo(e *Encoder) error {
	if err := o.Destination.EncodeTo(e); err != nil {
		return field(err, "PaymentOp", "destination")
	}
	if err := o.Asset.EncodeTo(e); err != nil {
		return field(err, "PaymentOp", "asset")
	}
	e.EncodeInt64(o.Amount)
	return nil
}

func (o *PaymentOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Destination.DecodeFrom(d); err != nil {
		return field(err, "PaymentOp", "destination")
	}
	if err = o.Asset.DecodeFrom(d); err != nil {
		return field(err, "PaymentOp", "asset")
	}
	o.Amount, err = d.DecodeInt64()
	return field(err, "PaymentOp", "amount")
}

// PathPaymentStrictReceiveOp delivers exactly DestAmount of DestAsset, spending
// at most SendMax of SendAsset through the intermediate Path.
type PathPaymentStrictReceiveOp struct {
	SendAsset   Asset
	SendMax     int64
	Destination MuxedAccount
	DestAsset   Asset
	DestAmount  int64
	Path        []Asset
}

func (o PathPaymentStrictReceiveOp) EncodeTo(e *Encoder) error {
	if err := o.SendAsset.EncodeTo(e); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "sendAsset")
	}
	e.EncodeInt64(o.SendMax)
	if err := o.Destination.EncodeTo(e); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "destination")
	}
	if err := o.DestAsset.EncodeTo(e); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "destAsset")
	}
	e.EncodeInt64(o.DestAmount)
	return field(EncodeArrayMax(e, o.Path, maxPathLength), "PathPaymentStrictReceiveOp", "path")
}

func (o *PathPaymentStrictReceiveOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.SendAsset.DecodeFrom(d); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "sendAsset")
	}
	if o.SendMax, err = d.DecodeInt64(); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "sendMax")
	}
	if err = o.Destination.DecodeFrom(d); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "destination")
	}
	if err = o.DestAsset.DecodeFrom(d); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "destAsset")
	}
	if o.DestAmount, err = d.DecodeInt64(); err != nil {
		return field(err, "PathPaymentStrictReceiveOp", "destAmount")
	}
	o.Path, err = DecodeArrayMax[Asset](d, maxPathLength)
	return field(err, "PathPaymentStrictReceiveOp", "path")
}

// ManageSellOfferOp creates, updates or (Amount == 0) deletes an offer.
type ManageSellOfferOp struct {
	Selling Asset
	Buying  Asset
	Amount  int64
	Price   Price
	OfferID int64
}

func (o ManageSellOfferOp) EncodeTo(e *Encoder) error {
	if err := o.Selling.EncodeTo(e); err != nil {
		return field(err, "ManageSellOfferOp", "selling")
	}
	if err := o.Buying.EncodeTo(e); err != nil {
		return field(err, "ManageSellOfferOp", "buying")
	}
	e.EncodeInt64(o.Amount)
	o.Price.EncodeTo(e)
	e.EncodeInt64(o.OfferID)
	return nil
}

func (o *ManageSellOfferOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Selling.DecodeFrom(d); err != nil {
		return field(err, "ManageSellOfferOp", "selling")
	}
	if err = o.Buying.DecodeFrom(d); err != nil {
		return field(err, "ManageSellOfferOp", "buying")
	}
	if o.Amount, err = d.DecodeInt64(); err != nil {
		return field(err, "ManageSellOfferOp", "amount")
	}
	if err = o.Price.DecodeFrom(d); err != nil {
		return field(err, "ManageSellOfferOp", "price")
	}
	o.OfferID, err = d.DecodeInt64()
	return field(err, "ManageSellOfferOp", "offerID")
}

// CreatePassiveSellOfferOp creates an offer that does not cross offers at the same price.
type CreatePassiveSellOfferOp struct {
	Selling Asset
	Buying  Asset
	Amount  int64
	Price   Price
}

func (o CreatePassiveSellOfferOp) EncodeTo(e *Encoder) error {
	if err := o.Selling.EncodeTo(e); err != nil {
		return field(err, "CreatePassiveSellOfferOp", "selling")
	}
	if err := o.Buying.EncodeTo(e); err != nil {
		return field(err, "CreatePassiveSellOfferOp", "buying")
	}
	e.EncodeInt64(o.Amount)
	return o.Price.EncodeTo(e)
}

func (o *CreatePassiveSellOfferOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Selling.DecodeFrom(d); err != nil {
		return field(err, "CreatePassiveSellOfferOp", "selling")
	}
	if err = o.Buying.DecodeFrom(d); err != nil {
		return field(err, "CreatePassiveSellOfferOp", "buying")
	}
	if o.Amount, err = d.DecodeInt64(); err != nil {
		return field(err, "CreatePassiveSellOfferOp", "amount")
	}
	return field(o.Price.DecodeFrom(d), "CreatePassiveSellOfferOp", "price")
}

// SetOptionsOp changes account flags, thresholds, home domain and signers.
// Nil fields are left unchanged.
type SetOptionsOp struct {
	InflationDest *AccountID
	ClearFlags    *Uint32
	SetFlags      *Uint32
	MasterWeight  *Uint32
	LowThreshold  *Uint32
	MedThreshold  *Uint32
	HighThreshold *Uint32
	HomeDomain    *String
	Signer        *Signer
}

func (o SetOptionsOp) EncodeTo(e *Encoder) error {
	if err := EncodeOptional(e, o.InflationDest); err != nil {
		return field(err, "SetOptionsOp", "inflationDest")
	}
	for _, v := range []*Uint32{o.ClearFlags, o.SetFlags, o.MasterWeight, o.LowThreshold, o.MedThreshold, o.HighThreshold} {
		EncodeOptional(e, v)
	}
	if o.HomeDomain != nil && len(*o.HomeDomain) > maxHomeDomain {
		return field(lengthError("string", len(*o.HomeDomain), maxHomeDomain), "SetOptionsOp", "homeDomain")
	}
	if err := EncodeOptional(e, o.HomeDomain); err != nil {
		return field(err, "SetOptionsOp", "homeDomain")
	}
	return field(EncodeOptional(e, o.Signer), "SetOptionsOp", "signer")
}

func (o *SetOptionsOp) DecodeFrom(d *Decoder) (err error) {
	if o.InflationDest, err = DecodeOptional[AccountID](d); err != nil {
		return field(err, "SetOptionsOp", "inflationDest")
	}
	for _, dst := range []**Uint32{&o.ClearFlags, &o.SetFlags, &o.MasterWeight, &o.LowThreshold, &o.MedThreshold, &o.HighThreshold} {
		if *dst, err = DecodeOptional[Uint32](d); err != nil {
			return field(err, "SetOptionsOp", "flagsOrThresholds")
		}
	}
	if o.HomeDomain, err = DecodeOptional[String](d); err != nil {
		return field(err, "SetOptionsOp", "homeDomain")
	}
	if o.HomeDomain != nil && len(*o.HomeDomain) > maxHomeDomain {
		return field(lengthError("string", len(*o.HomeDomain), maxHomeDomain), "SetOptionsOp", "homeDomain")
	}
	o.Signer, err = DecodeOptional[Signer](d)
	return field(err, "SetOptionsOp", "signer")
}

// ChangeTrustOp creates, updates or (Limit == 0) removes a trust line.
type ChangeTrustOp struct {
	Line  Asset
	Limit int64
}

func (o ChangeTrustOp) EncodeTo(e *Encoder) error {
	if err := o.Line.EncodeTo(e); err != nil {
		return field(err, "ChangeTrustOp", "line")
	}
	e.EncodeInt64(o.Limit)
	return nil
}

func (o *ChangeTrustOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Line.DecodeFrom(d); err != nil {
		return field(err, "ChangeTrustOp", "line")
	}
	o.Limit, err = d.DecodeInt64()
	return field(err, "ChangeTrustOp", "limit")
}

// AllowTrustOp lets an issuer authorize or revoke a trustor's trust line.
type AllowTrustOp struct {
	Trustor   AccountID
	Asset     AllowTrustAsset
	Authorize uint32
}

func (o AllowTrustOp) EncodeTo(e *Encoder) error {
	if err := o.Trustor.EncodeTo(e); err != nil {
		return field(err, "AllowTrustOp", "trustor")
	}
	if err := o.Asset.EncodeTo(e); err != nil {
		return field(err, "AllowTrustOp", "asset")
	}
	e.EncodeUint32(o.Authorize)
	return nil
}

func (o *AllowTrustOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Trustor.DecodeFrom(d); err != nil {
		return field(err, "AllowTrustOp", "trustor")
	}
	if err = o.Asset.DecodeFrom(d); err != nil {
		return field(err, "AllowTrustOp", "asset")
	}
	o.Authorize, err = d.DecodeUint32()
	return field(err, "AllowTrustOp", "authorize")
}

// ManageDataOp sets or (DataValue == nil) removes an account data entry.
type ManageDataOp struct {
	DataName  string
	DataValue *Opaque
}

func (o ManageDataOp) EncodeTo(e *Encoder) error {
	if err := e.EncodeStringMax(o.DataName, maxDataName); err != nil {
		return field(err, "ManageDataOp", "dataName")
	}
	if o.DataValue != nil && len(*o.DataValue) > maxDataValue {
		return field(lengthError("opaque", len(*o.DataValue), maxDataValue), "ManageDataOp", "dataValue")
	}
	return field(EncodeOptional(e, o.DataValue), "ManageDataOp", "dataValue")
}

func (o *ManageDataOp) DecodeFrom(d *Decoder) (err error) {
	if o.DataName, err = d.DecodeStringMax(maxDataName); err != nil {
		return field(err, "ManageDataOp", "dataName")
	}
	present, err := d.DecodeBool()
	if err != nil || !present {
		o.DataValue = nil
		return field(err, "ManageDataOp", "dataValue")
	}
	b, err := d.DecodeOpaqueMax(maxDataValue)
	if err != nil {
		return field(err, "ManageDataOp", "dataValue")
	}
	v := Opaque(b)
	o.DataValue = &v
	return nil
}

// BumpSequenceOp raises the source account's sequence number to BumpTo.
type BumpSequenceOp struct {
	BumpTo int64
}

func (o BumpSequenceOp) EncodeTo(e *Encoder) error {
	e.EncodeInt64(o.BumpTo)
	return nil
}

func (o *BumpSequenceOp) DecodeFrom(d *Decoder) (err error) {
	o.BumpTo, err = d.DecodeInt64()
	return field(err, "BumpSequenceOp", "bumpTo")
}

package xdr

// ClaimableBalanceIDType discriminates ClaimableBalanceID.
type ClaimableBalanceIDType int32

const ClaimableBalanceIDTypeV0 ClaimableBalanceIDType = 0

// ClaimableBalanceID names a claimable balance. V0 is the only arm.
type ClaimableBalanceID struct {
	Type ClaimableBalanceIDType
	V0   Hash
}

func (c ClaimableBalanceID) EncodeTo(e *Encoder) error {
	if c.Type != ClaimableBalanceIDTypeV0 {
		return unknownVariant("ClaimableBalanceID", int32(c.Type))
	}
	e.EncodeInt32(int32(c.Type))
	return c.V0.EncodeTo(e)
}

func (c *ClaimableBalanceID) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	c.Type = ClaimableBalanceIDType(t)
	if c.Type != ClaimableBalanceIDTypeV0 {
		return unknownVariant("ClaimableBalanceID", t)
	}
	return field(c.V0.DecodeFrom(d), "ClaimableBalanceID", "v0")
}

// ManageBuyOfferOp creates, updates or (BuyAmount == 0) deletes an offer
// sized by the amount bought.
type ManageBuyOfferOp struct {
	Selling   Asset
	Buying    Asset
	BuyAmount int64
	Price     Price
	OfferID   int64
}

// The wire layout is that of ManageSellOfferOp with the amount read as bought.
func (o ManageBuyOfferOp) EncodeTo(e *Encoder) error {
	v := ManageSellOfferOp{Selling: o.Selling, Buying: o.Buying, Amount: o.BuyAmount, Price: o.Price, OfferID: o.OfferID}
	return field(v.EncodeTo(e), "ManageBuyOfferOp", "offer")
}

func (o *ManageBuyOfferOp) DecodeFrom(d *Decoder) error {
	var v ManageSellOfferOp
	if err := v.DecodeFrom(d); err != nil {
		return field(err, "ManageBuyOfferOp", "offer")
	}
	*o = ManageBuyOfferOp{Selling: v.Selling, Buying: v.Buying, BuyAmount: v.Amount, Price: v.Price, OfferID: v.OfferID}
	return nil
}

// PathPaymentStrictSendOp spends exactly SendAmount of SendAsset and delivers
// at least DestMin of DestAsset.
type PathPaymentStrictSendOp struct {
	SendAsset   Asset
	SendAmount  int64
	Destination MuxedAccount
	DestAsset   Asset
	DestMin     int64
	Path        []Asset
}

func (o PathPaymentStrictSendOp) EncodeTo(e *Encoder) error {
	v := PathPaymentStrictReceiveOp{
		SendAsset:   o.SendAsset,
		SendMax:     o.SendAmount,
		Destination: o.Destination,
		DestAsset:   o.DestAsset,
		DestAmount:  o.DestMin,
		Path:        o.Path,
	}
	return field(v.EncodeTo(e), "PathPaymentStrictSendOp", "payment")
}

func (o *PathPaymentStrictSendOp) DecodeFrom(d *Decoder) error {
	var v PathPaymentStrictReceiveOp
	if err := v.DecodeFrom(d); err != nil {
		return field(err, "PathPaymentStrictSendOp", "payment")
	}
	*o = PathPaymentStrictSendOp{
		SendAsset:   v.SendAsset,
		SendAmount:  v.SendMax,
		Destination: v.Destination,
		DestAsset:   v.DestAsset,
		DestMin:     v.DestAmount,
		Path:        v.Path,
	}
	return nil
}

// ClaimClaimableBalanceOp claims a balance the source is a claimant of.
type ClaimClaimableBalanceOp struct {
	BalanceID ClaimableBalanceID
}

func (o ClaimClaimableBalanceOp) EncodeTo(e *Encoder) error {
	return field(o.BalanceID.EncodeTo(e), "ClaimClaimableBalanceOp", "balanceID")
}

func (o *ClaimClaimableBalanceOp) DecodeFrom(d *Decoder) error {
	return field(o.BalanceID.DecodeFrom(d), "ClaimClaimableBalanceOp", "balanceID")
}

// BeginSponsoringFutureReservesOp makes the source pay the reserves of
// entries SponsoredID creates until the matching end operation.
type BeginSponsoringFutureReservesOp struct {
	SponsoredID AccountID
}

func (o BeginSponsoringFutureReservesOp) EncodeTo(e *Encoder) error {
	return field(o.SponsoredID.EncodeTo(e), "BeginSponsoringFutureReservesOp", "sponsoredID")
}

func (o *BeginSponsoringFutureReservesOp) DecodeFrom(d *Decoder) error {
	return field(o.SponsoredID.DecodeFrom(d), "BeginSponsoringFutureReservesOp", "sponsoredID")
}

// ClawbackOp burns Amount of Asset held by From. Only the issuer may do this.
type ClawbackOp struct {
	Asset  Asset
	From   MuxedAccount
	Amount int64
}

func (o ClawbackOp) EncodeTo(e *Encoder) error {
	if err := o.Asset.EncodeTo(e); err != nil {
		return field(err, "ClawbackOp", "asset")
	}
	if err := o.From.EncodeTo(e); err != nil {
		return field(err, "ClawbackOp", "from")
	}
	e.EncodeInt64(o.Amount)
	return nil
}

func (o *ClawbackOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Asset.DecodeFrom(d); err != nil {
		return field(err, "ClawbackOp", "asset")
	}
	if err = o.From.DecodeFrom(d); err != nil {
		return field(err, "ClawbackOp", "from")
	}
	o.Amount, err = d.DecodeInt64()
	return field(err, "ClawbackOp", "amount")
}

// ClawbackClaimableBalanceOp claws back an unclaimed balance.
type ClawbackClaimableBalanceOp struct {
	BalanceID ClaimableBalanceID
}

func (o ClawbackClaimableBalanceOp) EncodeTo(e *Encoder) error {
	return field(o.BalanceID.EncodeTo(e), "ClawbackClaimableBalanceOp", "balanceID")
}

func (o *ClawbackClaimableBalanceOp) DecodeFrom(d *Decoder) error {
	return field(o.BalanceID.DecodeFrom(d), "ClawbackClaimableBalanceOp", "balanceID")
}

// SetTrustLineFlagsOp lets an issuer clear and set authorization flags on a
// trust line.
type SetTrustLineFlagsOp struct {
	Trustor    AccountID
	Asset      Asset
	ClearFlags uint32
	SetFlags   uint32
}

func (o SetTrustLineFlagsOp) EncodeTo(e *Encoder) error {
	if err := o.Trustor.EncodeTo(e); err != nil {
		return field(err, "SetTrustLineFlagsOp", "trustor")
	}
	if err := o.Asset.EncodeTo(e); err != nil {
		return field(err, "SetTrustLineFlagsOp", "asset")
	}
	e.EncodeUint32(o.ClearFlags)
	e.EncodeUint32(o.SetFlags)
	return nil
}

func (o *SetTrustLineFlagsOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.Trustor.DecodeFrom(d); err != nil {
		return field(err, "SetTrustLineFlagsOp", "trustor")
	}
	if err = o.Asset.DecodeFrom(d); err != nil {
		return field(err, "SetTrustLineFlagsOp", "asset")
	}
	if o.ClearFlags, err = d.DecodeUint32(); err != nil {
		return field(err, "SetTrustLineFlagsOp", "clearFlags")
	}
	o.SetFlags, err = d.DecodeUint32()
	return field(err, "SetTrustLineFlagsOp", "setFlags")
}

// LiquidityPoolDepositOp deposits up to the given amounts of both pool assets.
type LiquidityPoolDepositOp struct {
	LiquidityPoolID Hash
	MaxAmountA      int64
	MaxAmountB      int64
	MinPrice        Price
	MaxPrice        Price
}

func (o LiquidityPoolDepositOp) EncodeTo(e *Encoder) error {
	o.LiquidityPoolID.EncodeTo(e)
	e.EncodeInt64(o.MaxAmountA)
	e.EncodeInt64(o.MaxAmountB)
	o.MinPrice.EncodeTo(e)
	return o.MaxPrice.EncodeTo(e)
}

func (o *LiquidityPoolDepositOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.LiquidityPoolID.DecodeFrom(d); err != nil {
		return field(err, "LiquidityPoolDepositOp", "liquidityPoolID")
	}
	if o.MaxAmountA, err = d.DecodeInt64(); err != nil {
		return field(err, "LiquidityPoolDepositOp", "maxAmountA")
	}
	if o.MaxAmountB, err = d.DecodeInt64(); err != nil {
		return field(err, "LiquidityPoolDepositOp", "maxAmountB")
	}
	if err = o.MinPrice.DecodeFrom(d); err != nil {
		return field(err, "LiquidityPoolDepositOp", "minPrice")
	}
	return field(o.MaxPrice.DecodeFrom(d), "LiquidityPoolDepositOp", "maxPrice")
}

// LiquidityPoolWithdrawOp redeems Amount pool shares for at least the given
// amounts of both assets.
type LiquidityPoolWithdrawOp struct {
	LiquidityPoolID Hash
	Amount          int64
	MinAmountA      int64
	MinAmountB      int64
}

func (o LiquidityPoolWithdrawOp) EncodeTo(e *Encoder) error {
	o.LiquidityPoolID.EncodeTo(e)
	e.EncodeInt64(o.Amount)
	e.EncodeInt64(o.MinAmountA)
	e.EncodeInt64(o.MinAmountB)
	return nil
}

func (o *LiquidityPoolWithdrawOp) DecodeFrom(d *Decoder) (err error) {
	if err = o.LiquidityPoolID.DecodeFrom(d); err != nil {
		return field(err, "LiquidityPoolWithdrawOp", "liquidityPoolID")
	}
	if o.Amount, err = d.DecodeInt64(); err != nil {
		return field(err, "LiquidityPoolWithdrawOp", "amount")
	}
	if o.MinAmountA, err = d.DecodeInt64(); err != nil {
		return field(err, "LiquidityPoolWithdrawOp", "minAmountA")
	}
	o.MinAmountB, err = d.DecodeInt64()
	return field(err, "LiquidityPoolWithdrawOp", "minAmountB")
}

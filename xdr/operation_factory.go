package xdr

// Factory functions return ready-to-add operations. Operations are values and
// are never mutated after construction; WithSource returns a copy.

// WithSource returns a copy of o executed on behalf of source.
func (o Operation) WithSource(source MuxedAccount) Operation {
	o.SourceAccount = &source
	return o
}

// CreateAccount funds destination with startingBalance stroops.
func CreateAccount(destination AccountID, startingBalance int64) Operation {
	return Operation{Body: OperationBody{
		Type:            OperationTypeCreateAccount,
		CreateAccountOp: &CreateAccountOp{Destination: destination, StartingBalance: startingBalance},
	}}
}

// Payment sends amount stroops of asset to destination.
func Payment(destination AccountID, asset Asset, amount int64) Operation {
	return Operation{Body: OperationBody{
		Type:      OperationTypePayment,
		PaymentOp: &PaymentOp{Destination: destination.ToMuxedAccount(), Asset: asset, Amount: amount},
	}}
}

// PathPaymentStrictReceive delivers exactly destAmount of destAsset, spending
// at most sendMax of sendAsset.
func PathPaymentStrictReceive(sendAsset Asset, sendMax int64, destination AccountID, destAsset Asset, destAmount int64, path ...Asset) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypePathPaymentStrictReceive,
		PathPaymentStrictReceiveOp: &PathPaymentStrictReceiveOp{
			SendAsset:   sendAsset,
			SendMax:     sendMax,
			Destination: destination.ToMuxedAccount(),
			DestAsset:   destAsset,
			DestAmount:  destAmount,
			Path:        path,
		},
	}}
}

// ManageSellOffer creates (offerID 0), updates or (amount 0) deletes an offer.
func ManageSellOffer(selling, buying Asset, amount int64, price Price, offerID int64) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypeManageSellOffer,
		ManageSellOfferOp: &ManageSellOfferOp{
			Selling: selling,
			Buying:  buying,
			Amount:  amount,
			Price:   price,
			OfferID: offerID,
		},
	}}
}

// CreatePassiveSellOffer creates a passive offer.
func CreatePassiveSellOffer(selling, buying Asset, amount int64, price Price) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypeCreatePassiveSellOffer,
		CreatePassiveSellOfferOp: &CreatePassiveSellOfferOp{
			Selling: selling,
			Buying:  buying,
			Amount:  amount,
			Price:   price,
		},
	}}
}

// SetOptions applies opts to the source account.
func SetOptions(opts SetOptionsOp) Operation {
	return Operation{Body: OperationBody{Type: OperationTypeSetOptions, SetOptionsOp: &opts}}
}

// ChangeTrust creates or updates a trust line; limit 0 removes it.
func ChangeTrust(asset Asset, limit int64) Operation {
	return Operation{Body: OperationBody{
		Type:          OperationTypeChangeTrust,
		ChangeTrustOp: &ChangeTrustOp{Line: asset, Limit: limit},
	}}
}

// AllowTrust sets the authorization flags of trustor's trust line.
func AllowTrust(trustor AccountID, asset AllowTrustAsset, authorize uint32) Operation {
	return Operation{Body: OperationBody{
		Type:         OperationTypeAllowTrust,
		AllowTrustOp: &AllowTrustOp{Trustor: trustor, Asset: asset, Authorize: authorize},
	}}
}

// AccountMerge moves the source account's native balance to destination and
// removes the source account.
func AccountMerge(destination AccountID) Operation {
	dest := destination.ToMuxedAccount()
	return Operation{Body: OperationBody{Type: OperationTypeAccountMerge, Destination: &dest}}
}

// Inflation runs the inflation process.
func Inflation() Operation {
	return Operation{Body: OperationBody{Type: OperationTypeInflation}}
}

// ManageData sets name to value, or removes the entry when value is nil.
func ManageData(name string, value []byte) Operation {
	op := &ManageDataOp{DataName: name}
	if value != nil {
		v := Opaque(append([]byte(nil), value...))
		op.DataValue = &v
	}
	return Operation{Body: OperationBody{Type: OperationTypeManageData, ManageDataOp: op}}
}

// BumpSequence raises the source account's sequence number to bumpTo.
func BumpSequence(bumpTo int64) Operation {
	return Operation{Body: OperationBody{
		Type:           OperationTypeBumpSequence,
		BumpSequenceOp: &BumpSequenceOp{BumpTo: bumpTo},
	}}
}

// ManageBuyOffer creates (offerID 0), updates or (buyAmount 0) deletes an
// offer sized by the amount of buying received.
func ManageBuyOffer(selling, buying Asset, buyAmount int64, price Price, offerID int64) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypeManageBuyOffer,
		ManageBuyOfferOp: &ManageBuyOfferOp{
			Selling:   selling,
			Buying:    buying,
			BuyAmount: buyAmount,
			Price:     price,
			OfferID:   offerID,
		},
	}}
}

// PathPaymentStrictSend spends exactly sendAmount of sendAsset, delivering at
// least destMin of destAsset.
func PathPaymentStrictSend(sendAsset Asset, sendAmount int64, destination AccountID, destAsset Asset, destMin int64, path ...Asset) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypePathPaymentStrictSend,
		PathPaymentStrictSendOp: &PathPaymentStrictSendOp{
			SendAsset:   sendAsset,
			SendAmount:  sendAmount,
			Destination: destination.ToMuxedAccount(),
			DestAsset:   destAsset,
			DestMin:     destMin,
			Path:        path,
		},
	}}
}

// ClaimClaimableBalance claims the balance identified by id.
func ClaimClaimableBalance(id Hash) Operation {
	return Operation{Body: OperationBody{
		Type:                    OperationTypeClaimClaimableBalance,
		ClaimClaimableBalanceOp: &ClaimClaimableBalanceOp{BalanceID: ClaimableBalanceID{V0: id}},
	}}
}

// BeginSponsoringFutureReserves starts sponsoring reserves for sponsored.
func BeginSponsoringFutureReserves(sponsored AccountID) Operation {
	return Operation{Body: OperationBody{
		Type:                            OperationTypeBeginSponsoringFutureReserves,
		BeginSponsoringFutureReservesOp: &BeginSponsoringFutureReservesOp{SponsoredID: sponsored},
	}}
}

// EndSponsoringFutureReserves closes the sponsorship opened for the source.
func EndSponsoringFutureReserves() Operation {
	return Operation{Body: OperationBody{Type: OperationTypeEndSponsoringFutureReserves}}
}

// Clawback burns amount of asset held by from.
func Clawback(asset Asset, from AccountID, amount int64) Operation {
	return Operation{Body: OperationBody{
		Type:       OperationTypeClawback,
		ClawbackOp: &ClawbackOp{Asset: asset, From: from.ToMuxedAccount(), Amount: amount},
	}}
}

// ClawbackClaimableBalance claws back the unclaimed balance identified by id.
func ClawbackClaimableBalance(id Hash) Operation {
	return Operation{Body: OperationBody{
		Type:                       OperationTypeClawbackClaimableBalance,
		ClawbackClaimableBalanceOp: &ClawbackClaimableBalanceOp{BalanceID: ClaimableBalanceID{V0: id}},
	}}
}

// SetTrustLineFlags clears then sets authorization flags on trustor's line.
func SetTrustLineFlags(trustor AccountID, asset Asset, clearFlags, setFlags uint32) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypeSetTrustLineFlags,
		SetTrustLineFlagsOp: &SetTrustLineFlagsOp{
			Trustor:    trustor,
			Asset:      asset,
			ClearFlags: clearFlags,
			SetFlags:   setFlags,
		},
	}}
}

// LiquidityPoolDeposit deposits into pool within the given price band.
func LiquidityPoolDeposit(pool Hash, maxAmountA, maxAmountB int64, minPrice, maxPrice Price) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypeLiquidityPoolDeposit,
		LiquidityPoolDepositOp: &LiquidityPoolDepositOp{
			LiquidityPoolID: pool,
			MaxAmountA:      maxAmountA,
			MaxAmountB:      maxAmountB,
			MinPrice:        minPrice,
			MaxPrice:        maxPrice,
		},
	}}
}

// LiquidityPoolWithdraw redeems amount pool shares.
func LiquidityPoolWithdraw(pool Hash, amount, minAmountA, minAmountB int64) Operation {
	return Operation{Body: OperationBody{
		Type: OperationTypeLiquidityPoolWithdraw,
		LiquidityPoolWithdrawOp: &LiquidityPoolWithdrawOp{
			LiquidityPoolID: pool,
			Amount:          amount,
			MinAmountA:      minAmountA,
			MinAmountB:      minAmountB,
		},
	}}
}

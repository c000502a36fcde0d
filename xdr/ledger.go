package xdr

const (
	maxUpgrades    = 6
	maxUpgradeSize = 128
	skipListSize   = 4
)

// StellarValueType discriminates the StellarValue extension.
type StellarValueType int32

const (
	StellarValueBasic  StellarValueType = 0
	StellarValueSigned StellarValueType = 1
)

// LedgerCloseValueSignature is the validator signature on a close value.
type LedgerCloseValueSignature struct {
	NodeID    PublicKey
	Signature []byte
}

func (s LedgerCloseValueSignature) EncodeTo(e *Encoder) error {
	s.NodeID.EncodeTo(e)
	return field(e.EncodeOpaqueMax(s.Signature, maxSignatureSize), "LedgerCloseValueSignature", "signature")
}

func (s *LedgerCloseValueSignature) DecodeFrom(d *Decoder) (err error) {
	if err = s.NodeID.DecodeFrom(d); err != nil {
		return field(err, "LedgerCloseValueSignature", "nodeID")
	}
	s.Signature, err = d.DecodeOpaqueMax(maxSignatureSize)
	return field(err, "LedgerCloseValueSignature", "signature")
}

// StellarValue is the value consensus agreed on for a ledger. Upgrades are
// kept as their opaque encodings.
type StellarValue struct {
	TxSetHash Hash
	CloseTime uint64
	Upgrades  [][]byte
	Signature *LedgerCloseValueSignature
}

func (v StellarValue) EncodeTo(e *Encoder) error {
	v.TxSetHash.EncodeTo(e)
	e.EncodeUint64(v.CloseTime)
	if len(v.Upgrades) > maxUpgrades {
		return field(lengthError("array", len(v.Upgrades), maxUpgrades), "StellarValue", "upgrades")
	}
	e.EncodeUint32(uint32(len(v.Upgrades)))
	for _, u := range v.Upgrades {
		if err := e.EncodeOpaqueMax(u, maxUpgradeSize); err != nil {
			return field(err, "StellarValue", "upgrades")
		}
	}
	if v.Signature == nil {
		e.EncodeInt32(int32(StellarValueBasic))
		return nil
	}
	e.EncodeInt32(int32(StellarValueSigned))
	return field(v.Signature.EncodeTo(e), "StellarValue", "ext")
}

func (v *StellarValue) DecodeFrom(d *Decoder) (err error) {
	if err = v.TxSetHash.DecodeFrom(d); err != nil {
		return field(err, "StellarValue", "txSetHash")
	}
	if v.CloseTime, err = d.DecodeUint64(); err != nil {
		return field(err, "StellarValue", "closeTime")
	}
	upgrades, err := DecodeArrayMax[Opaque](d, maxUpgrades)
	if err != nil {
		return field(err, "StellarValue", "upgrades")
	}
	v.Upgrades = make([][]byte, len(upgrades))
	for i, u := range upgrades {
		if len(u) > maxUpgradeSize {
			return field(lengthError("opaque", len(u), maxUpgradeSize), "StellarValue", "upgrades")
		}
		v.Upgrades[i] = u
	}
	ext, err := d.DecodeInt32()
	if err != nil {
		return field(err, "StellarValue", "ext")
	}
	switch StellarValueType(ext) {
	case StellarValueBasic:
		v.Signature = nil
		return nil
	case StellarValueSigned:
		v.Signature = new(LedgerCloseValueSignature)
		return field(v.Signature.DecodeFrom(d), "StellarValue", "ext")
	}
	return unknownVariant("StellarValue.ext", ext)
}

// LedgerHeader is the header of a closed ledger. Flags is carried by the v1
// header extension; HasExtV1 records whether that extension was present.
type LedgerHeader struct {
	LedgerVersion      uint32
	PreviousLedgerHash Hash
	SCPValue           StellarValue
	TxSetResultHash    Hash
	BucketListHash     Hash
	LedgerSeq          uint32
	TotalCoins         int64
	FeePool            int64
	InflationSeq       uint32
	IDPool             uint64
	BaseFee            uint32
	BaseReserve        uint32
	MaxTxSetSize       uint32
	SkipList           [skipListSize]Hash
	HasExtV1           bool
	Flags              uint32
}

func (h LedgerHeader) EncodeTo(e *Encoder) error {
	e.EncodeUint32(h.LedgerVersion)
	h.PreviousLedgerHash.EncodeTo(e)
	if err := h.SCPValue.EncodeTo(e); err != nil {
		return field(err, "LedgerHeader", "scpValue")
	}
	h.TxSetResultHash.EncodeTo(e)
	h.BucketListHash.EncodeTo(e)
	e.EncodeUint32(h.LedgerSeq)
	e.EncodeInt64(h.TotalCoins)
	e.EncodeInt64(h.FeePool)
	e.EncodeUint32(h.InflationSeq)
	e.EncodeUint64(h.IDPool)
	e.EncodeUint32(h.BaseFee)
	e.EncodeUint32(h.BaseReserve)
	e.EncodeUint32(h.MaxTxSetSize)
	for _, s := range h.SkipList {
		s.EncodeTo(e)
	}
	if !h.HasExtV1 {
		e.EncodeInt32(0)
		return nil
	}
	e.EncodeInt32(1)
	e.EncodeUint32(h.Flags)
	e.EncodeInt32(0)
	return nil
}

func (h *LedgerHeader) DecodeFrom(d *Decoder) (err error) {
	if h.LedgerVersion, err = d.DecodeUint32(); err != nil {
		return field(err, "LedgerHeader", "ledgerVersion")
	}
	if err = h.PreviousLedgerHash.DecodeFrom(d); err != nil {
		return field(err, "LedgerHeader", "previousLedgerHash")
	}
	if err = h.SCPValue.DecodeFrom(d); err != nil {
		return field(err, "LedgerHeader", "scpValue")
	}
	if err = h.TxSetResultHash.DecodeFrom(d); err != nil {
		return field(err, "LedgerHeader", "txSetResultHash")
	}
	if err = h.BucketListHash.DecodeFrom(d); err != nil {
		return field(err, "LedgerHeader", "bucketListHash")
	}
	if h.LedgerSeq, err = d.DecodeUint32(); err != nil {
		return field(err, "LedgerHeader", "ledgerSeq")
	}
	if h.TotalCoins, err = d.DecodeInt64(); err != nil {
		return field(err, "LedgerHeader", "totalCoins")
	}
	if h.FeePool, err = d.DecodeInt64(); err != nil {
		return field(err, "LedgerHeader", "feePool")
	}
	if h.InflationSeq, err = d.DecodeUint32(); err != nil {
		return field(err, "LedgerHeader", "inflationSeq")
	}
	if h.IDPool, err = d.DecodeUint64(); err != nil {
		return field(err, "LedgerHeader", "idPool")
	}
	if h.BaseFee, err = d.DecodeUint32(); err != nil {
		return field(err, "LedgerHeader", "baseFee")
	}
	if h.BaseReserve, err = d.DecodeUint32(); err != nil {
		return field(err, "LedgerHeader", "baseReserve")
	}
	if h.MaxTxSetSize, err = d.DecodeUint32(); err != nil {
		return field(err, "LedgerHeader", "maxTxSetSize")
	}
	for i := range h.SkipList {
		if err = h.SkipList[i].DecodeFrom(d); err != nil {
			return field(err, "LedgerHeader", "skipList")
		}
	}
	ext, err := d.DecodeInt32()
	if err != nil {
		return field(err, "LedgerHeader", "ext")
	}
	switch ext {
	case 0:
		h.HasExtV1, h.Flags = false, 0
		return nil
	case 1:
		h.HasExtV1 = true
		if h.Flags, err = d.DecodeUint32(); err != nil {
			return field(err, "LedgerHeader", "ext.flags")
		}
		return field(decodeEmptyExt(d, "LedgerHeaderExtensionV1.ext"), "LedgerHeader", "ext")
	}
	return unknownVariant("LedgerHeader.ext", ext)
}

// LedgerHeaderHistoryEntry pairs a header with its hash.
type LedgerHeaderHistoryEntry struct {
	Hash   Hash
	Header LedgerHeader
}

func (h LedgerHeaderHistoryEntry) EncodeTo(e *Encoder) error {
	h.Hash.EncodeTo(e)
	if err := h.Header.EncodeTo(e); err != nil {
		return field(err, "LedgerHeaderHistoryEntry", "header")
	}
	e.EncodeInt32(0)
	return nil
}

func (h *LedgerHeaderHistoryEntry) DecodeFrom(d *Decoder) error {
	if err := h.Hash.DecodeFrom(d); err != nil {
		return field(err, "LedgerHeaderHistoryEntry", "hash")
	}
	if err := h.Header.DecodeFrom(d); err != nil {
		return field(err, "LedgerHeaderHistoryEntry", "header")
	}
	return field(decodeEmptyExt(d, "LedgerHeaderHistoryEntry.ext"), "LedgerHeaderHistoryEntry", "ext")
}

// TransactionResultPair is a transaction hash and its result.
type TransactionResultPair struct {
	TransactionHash Hash
	Result          TransactionResult
}

func (p TransactionResultPair) EncodeTo(e *Encoder) error {
	p.TransactionHash.EncodeTo(e)
	return field(p.Result.EncodeTo(e), "TransactionResultPair", "result")
}

func (p *TransactionResultPair) DecodeFrom(d *Decoder) error {
	if err := p.TransactionHash.DecodeFrom(d); err != nil {
		return field(err, "TransactionResultPair", "transactionHash")
	}
	return field(p.Result.DecodeFrom(d), "TransactionResultPair", "result")
}

// TransactionResultSet is the ordered results of one ledger.
type TransactionResultSet struct {
	Results []TransactionResultPair
}

func (s TransactionResultSet) EncodeTo(e *Encoder) error {
	return field(EncodeArray(e, s.Results), "TransactionResultSet", "results")
}

func (s *TransactionResultSet) DecodeFrom(d *Decoder) (err error) {
	s.Results, err = DecodeArray[TransactionResultPair](d)
	return field(err, "TransactionResultSet", "results")
}

// TransactionSet is the legacy set of transactions applied in one ledger.
type TransactionSet struct {
	PreviousLedgerHash Hash
	Txs                []TransactionEnvelope
}

func (s TransactionSet) EncodeTo(e *Encoder) error {
	s.PreviousLedgerHash.EncodeTo(e)
	return field(EncodeArray(e, s.Txs), "TransactionSet", "txs")
}

func (s *TransactionSet) DecodeFrom(d *Decoder) (err error) {
	if err = s.PreviousLedgerHash.DecodeFrom(d); err != nil {
		return field(err, "TransactionSet", "previousLedgerHash")
	}
	s.Txs, err = DecodeArray[TransactionEnvelope](d)
	return field(err, "TransactionSet", "txs")
}

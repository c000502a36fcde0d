package xdr

import (
	"bytes"
	"fmt"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
)

// AssetType discriminates the Asset union.
type AssetType int32

const (
	AssetTypeNative           AssetType = 0
	AssetTypeCreditAlphanum4  AssetType = 1
	AssetTypeCreditAlphanum12 AssetType = 2
	AssetTypePoolShare        AssetType = 3
)

// Asset is either the native asset or a (code, issuer) pair. The code length
// picks the wire arm: up to 4 bytes is alphanum4, 5 to 12 is alphanum12.
// Assets compare with ==.
type Asset struct {
	Type   AssetType
	Code4  AssetCode4
	Code12 AssetCode12
	Issuer AccountID
}

// NativeAsset returns the network's native asset.
func NativeAsset() Asset {
	return Asset{Type: AssetTypeNative}
}

// NewAsset builds a credit asset. code must be 1 to 12 ASCII letters or digits.
func NewAsset(code string, issuer AccountID) (Asset, error) {
	if err := validateAssetCode(code); err != nil {
		return Asset{}, err
	}
	if len(code) <= 4 {
		return Asset{Type: AssetTypeCreditAlphanum4, Code4: PadOpaque4([]byte(code)), Issuer: issuer}, nil
	}
	return Asset{Type: AssetTypeCreditAlphanum12, Code12: PadOpaque12([]byte(code)), Issuer: issuer}, nil
}

// ParseAsset builds a credit asset from a code and a G... issuer address.
func ParseAsset(code, issuer string) (Asset, error) {
	id, err := ParseAccountID(issuer)
	if err != nil {
		return Asset{}, err
	}
	return NewAsset(code, id)
}

func validateAssetCode(code string) error {
	if len(code) == 0 || len(code) > 12 {
		return skerrors.NewModelError(skerrors.INVALID_ASSET, fmt.Sprintf("asset code %q must be 1-12 characters", code), nil)
	}
	for _, c := range code {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return skerrors.NewModelError(skerrors.INVALID_ASSET, fmt.Sprintf("asset code %q must be alphanumeric", code), nil)
		}
	}
	return nil
}

// IsNative reports whether a is the native asset.
func (a Asset) IsNative() bool { return a.Type == AssetTypeNative }

// Code returns the asset code with trailing zero padding removed, or "" for native.
func (a Asset) Code() string {
	switch a.Type {
	case AssetTypeCreditAlphanum4:
		return string(bytes.TrimRight(a.Code4[:], "\x00"))
	case AssetTypeCreditAlphanum12:
		return string(bytes.TrimRight(a.Code12[:], "\x00"))
	}
	return ""
}

// String returns "native" or "CODE:ISSUER".
func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return a.Code() + ":" + a.Issuer.Address()
}

func (a Asset) EncodeTo(e *Encoder) error {
	switch a.Type {
	case AssetTypeNative:
		e.EncodeInt32(int32(a.Type))
		return nil
	case AssetTypeCreditAlphanum4:
		e.EncodeInt32(int32(a.Type))
		a.Code4.EncodeTo(e)
		return a.Issuer.EncodeTo(e)
	case AssetTypeCreditAlphanum12:
		e.EncodeInt32(int32(a.Type))
		a.Code12.EncodeTo(e)
		return a.Issuer.EncodeTo(e)
	}
	return unknownVariant("Asset", int32(a.Type))
}

func (a *Asset) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*a = Asset{Type: AssetType(t)}
	switch a.Type {
	case AssetTypeNative:
		return nil
	case AssetTypeCreditAlphanum4:
		if err := a.Code4.DecodeFrom(d); err != nil {
			return field(err, "Asset", "assetCode")
		}
		return field(a.Issuer.DecodeFrom(d), "Asset", "issuer")
	case AssetTypeCreditAlphanum12:
		if err := a.Code12.DecodeFrom(d); err != nil {
			return field(err, "Asset", "assetCode")
		}
		return field(a.Issuer.DecodeFrom(d), "Asset", "issuer")
	}
	return unknownVariant("Asset", t)
}

// AllowTrustAsset is the bare asset code used by AllowTrust (the issuer is
// implied by the operation's source account).
type AllowTrustAsset struct {
	Type   AssetType
	Code4  AssetCode4
	Code12 AssetCode12
}

// NewAllowTrustAsset builds the code union for an AllowTrust operation.
func NewAllowTrustAsset(code string) (AllowTrustAsset, error) {
	if err := validateAssetCode(code); err != nil {
		return AllowTrustAsset{}, err
	}
	if len(code) <= 4 {
		return AllowTrustAsset{Type: AssetTypeCreditAlphanum4, Code4: PadOpaque4([]byte(code))}, nil
	}
	return AllowTrustAsset{Type: AssetTypeCreditAlphanum12, Code12: PadOpaque12([]byte(code))}, nil
}

func (a AllowTrustAsset) EncodeTo(e *Encoder) error {
	switch a.Type {
	case AssetTypeCreditAlphanum4:
		e.EncodeInt32(int32(a.Type))
		return a.Code4.EncodeTo(e)
	case AssetTypeCreditAlphanum12:
		e.EncodeInt32(int32(a.Type))
		return a.Code12.EncodeTo(e)
	}
	return unknownVariant("AssetCode", int32(a.Type))
}

func (a *AllowTrustAsset) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*a = AllowTrustAsset{Type: AssetType(t)}
	switch a.Type {
	case AssetTypeCreditAlphanum4:
		return a.Code4.DecodeFrom(d)
	case AssetTypeCreditAlphanum12:
		return a.Code12.DecodeFrom(d)
	}
	return unknownVariant("AssetCode", t)
}

// Price is a rational number N/D.
type Price struct {
	N int32
	D int32
}

func (p Price) EncodeTo(e *Encoder) error {
	e.EncodeInt32(p.N)
	e.EncodeInt32(p.D)
	return nil
}

func (p *Price) DecodeFrom(d *Decoder) (err error) {
	if p.N, err = d.DecodeInt32(); err != nil {
		return field(err, "Price", "n")
	}
	p.D, err = d.DecodeInt32()
	return field(err, "Price", "d")
}

// Package xdr implements the Stellar XDR wire format and the ledger data model
// that travels over it.
//
// Every wire type implements Encodable (value receiver) and Decodable (pointer
// receiver). Composite types encode their fields as an explicit, ordered list of
// sub-encodes; unions write a 4-byte discriminant followed by the arm payload.
//
// Encoding rules:
//   - integers are big-endian, 4 or 8 bytes; booleans are a 4-byte 0 or 1
//   - variable opaque data and strings carry a 4-byte length prefix and are
//     zero-padded to a multiple of 4 bytes
//   - arrays carry a 4-byte count prefix followed by each element
//   - optionals carry a 4-byte presence flag followed by the value iff present
//   - fixed opaque data (Opaque4, Opaque12, Opaque32) is written raw
//
// Decoding is cursor based over an immutable buffer and never reads out of bounds:
// every short read fails with errors.ErrPrematureEndOfData.
package xdr

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
)

// Encodable is implemented by every type that can be written to the wire.
type Encodable interface {
	EncodeTo(e *Encoder) error
}

// Decodable is implemented by every type that can be read from the wire.
type Decodable interface {
	DecodeFrom(d *Decoder) error
}

// Codable is a type that round-trips through the wire format.
type Codable interface {
	Encodable
	Decodable
}

// decodablePtr constrains PT to be a pointer to T that implements Decodable.
type decodablePtr[T any] interface {
	*T
	Decodable
}

// Encoder accumulates XDR bytes. The zero value is ready to use.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Encode writes v.
func (e *Encoder) Encode(v Encodable) error {
	return v.EncodeTo(e)
}

func (e *Encoder) EncodeInt32(v int32) {
	e.EncodeUint32(uint32(v))
}

func (e *Encoder) EncodeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) EncodeInt64(v int64) {
	e.EncodeUint64(uint64(v))
}

func (e *Encoder) EncodeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.EncodeUint32(1)
		return
	}
	e.EncodeUint32(0)
}

// EncodeFixedOpaque writes b as-is. Callers guarantee len(b) is the declared
// capacity; fixed capacities used on the Stellar wire are multiples of 4, but
// padding is still applied for completeness.
func (e *Encoder) EncodeFixedOpaque(b []byte) {
	e.buf.Write(b)
	e.pad(len(b))
}

// EncodeOpaque writes a length-prefixed, zero-padded byte blob.
func (e *Encoder) EncodeOpaque(b []byte) error {
	if uint64(len(b)) > maxLength {
		return skerrors.NewCodecError(skerrors.INVALID_LENGTH, fmt.Sprintf("opaque length %d exceeds wire limit", len(b)), nil)
	}
	e.EncodeUint32(uint32(len(b)))
	e.buf.Write(b)
	e.pad(len(b))
	return nil
}

// EncodeOpaqueMax is EncodeOpaque with an upper bound taken from the XDR schema.
func (e *Encoder) EncodeOpaqueMax(b []byte, max int) error {
	if len(b) > max {
		return lengthError("opaque", len(b), max)
	}
	return e.EncodeOpaque(b)
}

// EncodeString writes the UTF-8 bytes of s with opaque framing.
func (e *Encoder) EncodeString(s string) error {
	if !utf8.ValidString(s) {
		return errInvalidUTF8()
	}
	return e.EncodeOpaque([]byte(s))
}

// EncodeStringMax is EncodeString bounded by max bytes.
func (e *Encoder) EncodeStringMax(s string, max int) error {
	if !utf8.ValidString(s) {
		return errInvalidUTF8()
	}
	return e.EncodeOpaqueMax([]byte(s), max)
}

func errInvalidUTF8() error {
	return skerrors.NewCodecError(skerrors.INVALID_ENCODING, "string is not valid UTF-8", nil)
}

func (e *Encoder) pad(n int) {
	if p := padLength(n); p > 0 {
		e.buf.Write(make([]byte, p))
	}
}

const maxLength = 1<<32 - 1

func padLength(n int) int {
	return (4 - n%4) % 4
}

// EncodeOptional writes a presence flag followed by *v when v is non-nil.
func EncodeOptional[T Encodable](e *Encoder, v *T) error {
	if v == nil {
		e.EncodeBool(false)
		return nil
	}
	e.EncodeBool(true)
	return (*v).EncodeTo(e)
}

// EncodeArray writes a count prefix followed by each element in order.
func EncodeArray[T Encodable](e *Encoder, items []T) error {
	e.EncodeUint32(uint32(len(items)))
	for i := range items {
		if err := items[i].EncodeTo(e); err != nil {
			return pkgerrors.WithMessagef(err, "element %d", i)
		}
	}
	return nil
}

// EncodeArrayMax is EncodeArray bounded by max elements.
func EncodeArrayMax[T Encodable](e *Encoder, items []T, max int) error {
	if len(items) > max {
		return lengthError("array", len(items), max)
	}
	return EncodeArray(e, items)
}

// Decoder reads XDR values from an immutable byte slice.
type Decoder struct {
	data   []byte
	cursor int
}

// NewDecoder returns a Decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.cursor
}

// Decode reads v.
func (d *Decoder) Decode(v Decodable) error {
	return v.DecodeFrom(d)
}

func (d *Decoder) read(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, skerrors.NewCodecError(
			skerrors.PREMATURE_END_OF_DATA,
			fmt.Sprintf("need %d bytes at offset %d, have %d", n, d.cursor, d.Remaining()),
			nil,
		)
	}
	b := d.data[d.cursor : d.cursor+n]
	d.cursor += n
	return b, nil
}

func (d *Decoder) DecodeUint32() (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) DecodeInt32() (int32, error) {
	v, err := d.DecodeUint32()
	return int32(v), err
}

func (d *Decoder) DecodeUint64() (uint64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) DecodeInt64() (int64, error) {
	v, err := d.DecodeUint64()
	return int64(v), err
}

// DecodeBool reads a 4-byte boolean. Values other than 0 and 1 are rejected.
func (d *Decoder) DecodeBool() (bool, error) {
	v, err := d.DecodeUint32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, skerrors.NewCodecError(skerrors.INVALID_ENCODING, fmt.Sprintf("invalid boolean value %d", v), nil)
}

// DecodeFixedOpaque reads exactly n bytes (plus padding) into a fresh slice.
func (d *Decoder) DecodeFixedOpaque(n int) ([]byte, error) {
	b, err := d.read(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	if err := d.skipPadding(n); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeOpaque reads a length-prefixed, padded byte blob.
func (d *Decoder) DecodeOpaque() ([]byte, error) {
	n, err := d.DecodeUint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(d.Remaining()) {
		return nil, skerrors.NewCodecError(
			skerrors.PREMATURE_END_OF_DATA,
			fmt.Sprintf("opaque length %d exceeds remaining %d bytes", n, d.Remaining()),
			nil,
		)
	}
	return d.DecodeFixedOpaque(int(n))
}

// DecodeOpaqueMax is DecodeOpaque bounded by max bytes.
func (d *Decoder) DecodeOpaqueMax(max int) ([]byte, error) {
	b, err := d.DecodeOpaque()
	if err != nil {
		return nil, err
	}
	if len(b) > max {
		return nil, lengthError("opaque", len(b), max)
	}
	return b, nil
}

// DecodeString reads an opaque blob and requires it to be valid UTF-8.
func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeOpaque()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errInvalidUTF8()
	}
	return string(b), nil
}

// DecodeStringMax is DecodeString bounded by max bytes.
func (d *Decoder) DecodeStringMax(max int) (string, error) {
	s, err := d.DecodeString()
	if err != nil {
		return "", err
	}
	if len(s) > max {
		return "", lengthError("string", len(s), max)
	}
	return s, nil
}

func (d *Decoder) skipPadding(n int) error {
	p := padLength(n)
	if p == 0 {
		return nil
	}
	b, err := d.read(p)
	if err != nil {
		return err
	}
	for _, c := range b {
		if c != 0 {
			return skerrors.NewCodecError(skerrors.INVALID_ENCODING, "non-zero padding", nil)
		}
	}
	return nil
}

// DecodeOptional reads a presence flag and, when set, a value of type T.
func DecodeOptional[T any, PT decodablePtr[T]](d *Decoder) (*T, error) {
	present, err := d.DecodeBool()
	if err != nil || !present {
		return nil, err
	}
	v := new(T)
	if err := PT(v).DecodeFrom(d); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeArray reads a count prefix followed by that many values of type T.
func DecodeArray[T any, PT decodablePtr[T]](d *Decoder) ([]T, error) {
	n, err := d.DecodeUint32()
	if err != nil {
		return nil, err
	}
	// every element occupies at least 4 bytes on the wire
	if uint64(n)*4 > uint64(d.Remaining()) {
		return nil, skerrors.NewCodecError(
			skerrors.PREMATURE_END_OF_DATA,
			fmt.Sprintf("array count %d exceeds remaining %d bytes", n, d.Remaining()),
			nil,
		)
	}
	items := make([]T, n)
	for i := range items {
		if err := PT(&items[i]).DecodeFrom(d); err != nil {
			return nil, pkgerrors.WithMessagef(err, "element %d", i)
		}
	}
	return items, nil
}

// DecodeArrayMax is DecodeArray bounded by max elements.
func DecodeArrayMax[T any, PT decodablePtr[T]](d *Decoder, max int) ([]T, error) {
	items, err := DecodeArray[T, PT](d)
	if err != nil {
		return nil, err
	}
	if len(items) > max {
		return nil, lengthError("array", len(items), max)
	}
	return items, nil
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v Encodable) ([]byte, error) {
	e := NewEncoder()
	if err := v.EncodeTo(e); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// MarshalBase64 encodes v and returns the standard base64 form used by Horizon.
func MarshalBase64(v Encodable) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Unmarshal decodes data into v and requires every byte to be consumed.
func Unmarshal(data []byte, v Decodable) error {
	d := NewDecoder(data)
	if err := v.DecodeFrom(d); err != nil {
		return err
	}
	if d.Remaining() != 0 {
		return skerrors.NewCodecError(skerrors.INVALID_ENCODING, fmt.Sprintf("%d trailing bytes", d.Remaining()), nil)
	}
	return nil
}

// UnmarshalBase64 decodes standard base64 XDR into v.
func UnmarshalBase64(data string, v Decodable) error {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return skerrors.NewCodecError(skerrors.INVALID_ENCODING, "invalid base64", err)
	}
	return Unmarshal(raw, v)
}

// unknownVariant builds the error returned for an unrecognised discriminant.
func unknownVariant(union string, discriminant int32) error {
	return skerrors.NewCodecError(
		skerrors.UNKNOWN_VARIANT,
		fmt.Sprintf("%s: unknown discriminant %d", union, discriminant),
		nil,
	).With("union", union).With("discriminant", discriminant)
}

// missingPayload builds the error returned when a union value has no arm set
// for its discriminant.
func missingPayload(union string, discriminant int32) error {
	return skerrors.NewCodecError(
		skerrors.INVALID_ENCODING,
		fmt.Sprintf("%s: no payload set for discriminant %d", union, discriminant),
		nil,
	).With("union", union).With("discriminant", discriminant)
}

func lengthError(kind string, got, max int) error {
	return skerrors.NewCodecError(skerrors.INVALID_LENGTH, fmt.Sprintf("%s length %d exceeds max %d", kind, got, max), nil)
}

// field annotates a decode/encode failure with the type and field it occurred in.
func field(err error, typ, name string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessagef(err, "%s.%s", typ, name)
}

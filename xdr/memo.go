package xdr

import (
	"fmt"
	"unicode/utf8"

	skerrors "github.com/marwen-abid/stellarkit-go/errors"
)

// MemoType discriminates the Memo union.
type MemoType int32

const (
	MemoTypeNone   MemoType = 0
	MemoTypeText   MemoType = 1
	MemoTypeID     MemoType = 2
	MemoTypeHash   MemoType = 3
	MemoTypeReturn MemoType = 4
)

const (
	// MaxMemoTextLength is the maximum number of bytes in a text memo.
	MaxMemoTextLength = 28
	// MaxMemoHashLength is the size of a hash or return-hash memo.
	MaxMemoHashLength = 32
)

// Memo is attached to a transaction. Only the field matching Type is set.
type Memo struct {
	Type MemoType
	Text string
	ID   uint64
	Hash Hash
}

func memoTooLong(kind string, got, max int) error {
	return skerrors.NewModelError(
		skerrors.MEMO_TOO_LONG,
		fmt.Sprintf("%s memo is %d bytes, max %d", kind, got, max),
		nil,
	).With("length", got)
}

// MemoNone returns the empty memo.
func MemoNone() Memo { return Memo{Type: MemoTypeNone} }

// MemoText returns a text memo. text must be at most 28 bytes of UTF-8.
func MemoText(text string) (Memo, error) {
	if len(text) > MaxMemoTextLength {
		return Memo{}, memoTooLong("text", len(text), MaxMemoTextLength)
	}
	if !utf8.ValidString(text) {
		return Memo{}, errInvalidUTF8()
	}
	return Memo{Type: MemoTypeText, Text: text}, nil
}

// MemoID returns an id memo.
func MemoID(id uint64) Memo { return Memo{Type: MemoTypeID, ID: id} }

// MemoHash returns a hash memo. Inputs shorter than 32 bytes are zero-padded.
func MemoHash(b []byte) (Memo, error) {
	if len(b) > MaxMemoHashLength {
		return Memo{}, memoTooLong("hash", len(b), MaxMemoHashLength)
	}
	return Memo{Type: MemoTypeHash, Hash: PadOpaque32(b)}, nil
}

// MemoReturn returns a return-hash memo. Inputs shorter than 32 bytes are zero-padded.
func MemoReturn(b []byte) (Memo, error) {
	if len(b) > MaxMemoHashLength {
		return Memo{}, memoTooLong("return", len(b), MaxMemoHashLength)
	}
	return Memo{Type: MemoTypeReturn, Hash: PadOpaque32(b)}, nil
}

func (m Memo) EncodeTo(e *Encoder) error {
	switch m.Type {
	case MemoTypeNone:
		e.EncodeInt32(int32(m.Type))
		return nil
	case MemoTypeText:
		e.EncodeInt32(int32(m.Type))
		return e.EncodeStringMax(m.Text, MaxMemoTextLength)
	case MemoTypeID:
		e.EncodeInt32(int32(m.Type))
		e.EncodeUint64(m.ID)
		return nil
	case MemoTypeHash, MemoTypeReturn:
		e.EncodeInt32(int32(m.Type))
		return m.Hash.EncodeTo(e)
	}
	return unknownVariant("Memo", int32(m.Type))
}

func (m *Memo) DecodeFrom(d *Decoder) error {
	t, err := d.DecodeInt32()
	if err != nil {
		return err
	}
	*m = Memo{Type: MemoType(t)}
	switch m.Type {
	case MemoTypeNone:
		return nil
	case MemoTypeText:
		m.Text, err = d.DecodeStringMax(MaxMemoTextLength)
		return field(err, "Memo", "text")
	case MemoTypeID:
		m.ID, err = d.DecodeUint64()
		return field(err, "Memo", "id")
	case MemoTypeHash, MemoTypeReturn:
		return field(m.Hash.DecodeFrom(d), "Memo", "hash")
	}
	return unknownVariant("Memo", t)
}

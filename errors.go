package jamcodec

import (
	"errors"
	"fmt"
)

// Kind classifies codec failures.
type Kind uint8

const (
	KindUnsupportedShape Kind = iota + 1
	KindUnknownTag
	KindUnknownVariant
	KindTruncatedInput
	KindInvalidText
	KindTrailingData
	KindNestingTooDeep
	KindMalformed
)

var (
	ErrUnsupportedShape = errors.New("jamcodec: unsupported shape")
	ErrUnknownTag       = errors.New("jamcodec: unknown tag")
	ErrUnknownVariant   = errors.New("jamcodec: unknown variant index")
	ErrTruncatedInput   = errors.New("jamcodec: truncated input")
	ErrInvalidText      = errors.New("jamcodec: invalid utf-8 text")
	ErrTrailingData     = errors.New("jamcodec: unexpected trailing data")
	ErrNestingTooDeep   = errors.New("jamcodec: nesting too deep")
	// ErrMalformed covers fields no encoder produces: negative lengths
	// and varints wider than 64 bits.
	ErrMalformed = errors.New("jamcodec: malformed input")
)

var kindErrs = [...]error{
	KindUnsupportedShape: ErrUnsupportedShape,
	KindUnknownTag:       ErrUnknownTag,
	KindUnknownVariant:   ErrUnknownVariant,
	KindTruncatedInput:   ErrTruncatedInput,
	KindInvalidText:      ErrInvalidText,
	KindTrailingData:     ErrTrailingData,
	KindNestingTooDeep:   ErrNestingTooDeep,
	KindMalformed:        ErrMalformed,
}

func (k Kind) String() string {
	switch k {
	case KindUnsupportedShape:
		return "unsupported_shape"
	case KindUnknownTag:
		return "unknown_tag"
	case KindUnknownVariant:
		return "unknown_variant"
	case KindTruncatedInput:
		return "truncated_input"
	case KindInvalidText:
		return "invalid_text"
	case KindTrailingData:
		return "trailing_data"
	case KindNestingTooDeep:
		return "nesting_too_deep"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error describes a failed Encode or Decode call. It unwraps to the
// sentinel for its Kind, so errors.Is(err, ErrUnknownTag) works.
type Error struct {
	Op     string // "encode" or "decode"
	Kind   Kind
	Offset int    // decode: input offset where the failure was detected
	Byte   int    // offending tag or variant index; -1 when not applicable
	Type   string // encode: offending runtime type
}

func (e *Error) Error() string {
	base := "jamcodec: " + e.Kind.String()
	if err := e.Unwrap(); err != nil {
		base = err.Error()
	}
	switch {
	case e.Type != "":
		return fmt.Sprintf("%s: %s", base, e.Type)
	case e.Byte >= 0 && e.Op == "decode":
		return fmt.Sprintf("%s: %d (0x%02x) at offset %d", base, e.Byte, e.Byte, e.Offset)
	case e.Op == "decode":
		return fmt.Sprintf("%s at offset %d", base, e.Offset)
	default:
		return base
	}
}

func (e *Error) Unwrap() error {
	if int(e.Kind) < len(kindErrs) {
		return kindErrs[e.Kind]
	}
	return nil
}

func decodeErr(k Kind, off int) *Error {
	return &Error{Op: "decode", Kind: k, Offset: off, Byte: -1}
}

func decodeByteErr(k Kind, off int, b byte) *Error {
	return &Error{Op: "decode", Kind: k, Offset: off, Byte: int(b)}
}

func encodeErr(k Kind, typ string) *Error {
	return &Error{Op: "encode", Kind: k, Offset: -1, Byte: -1, Type: typ}
}

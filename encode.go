package jamcodec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Type tags. Every encoded unit starts with one of these.
const (
	TagNull   byte = 0x00
	TagBool   byte = 0x01
	TagInt    byte = 0x02
	TagFloat  byte = 0x03
	TagString byte = 0x04
	TagBytes  byte = 0x05
	TagArray  byte = 0x06
	TagObject byte = 0x07
	TagEnum   byte = 0x08
)

// Encode returns the encoding of t. A nil t encodes as Null.
func (c *Codec) Encode(t Term) ([]byte, error) {
	b, err := c.Append(make([]byte, 0, c.bufSize), t)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Append appends the encoding of t to dst and returns the extended slice.
// On error dst is returned unchanged.
func (c *Codec) Append(dst []byte, t Term) ([]byte, error) {
	e := encoder{buf: dst, max: c.maxDepth}
	if err := e.term(t); err != nil {
		c.encodeRejected(err)
		return dst, err
	}
	return e.buf, nil
}

func (c *Codec) encodeRejected(err *Error) {
	if err.Kind == KindNestingTooDeep {
		c.hooks.NestingTooDeep("encode", c.maxDepth)
		c.log.Warn("encode nesting too deep", Fields{"max_depth": c.maxDepth})
		return
	}
	c.hooks.EncodeRejected(err.Kind, err.Type)
	c.log.Debug("encode rejected", Fields{"kind": err.Kind.String(), "type": err.Type})
}

// encoder owns its buffer for the duration of one call; append provides
// amortized doubling growth.
type encoder struct {
	buf   []byte
	depth int
	max   int
}

func (e *encoder) term(t Term) *Error {
	switch v := t.(type) {
	case nil:
		e.buf = append(e.buf, TagNull)
		return nil
	case Variant:
		return e.variant(v)
	case Value:
		return e.value(v)
	}
	return encodeErr(KindUnsupportedShape, fmt.Sprintf("%T", t))
}

func (e *encoder) variant(v Variant) *Error {
	idx, ok := variantIndex(v)
	if !ok {
		return encodeErr(KindUnsupportedShape, fmt.Sprintf("%T", v))
	}
	e.buf = append(e.buf, TagEnum, idx)
	switch x := v.(type) {
	case VariantB:
		e.pair(x.First, x.Second)
	case VariantC:
		e.pair(x.A, x.B)
	}
	return nil
}

// pair writes the fixed-width little-endian (u32, u64) variant payload.
func (e *encoder) pair(a uint32, b uint64) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, a)
	e.buf = binary.LittleEndian.AppendUint64(e.buf, b)
}

func (e *encoder) value(v Value) *Error {
	switch x := v.(type) {
	case nil, Null:
		e.buf = append(e.buf, TagNull)
	case Bool:
		e.buf = append(e.buf, TagBool, 0)
		if x {
			e.buf[len(e.buf)-1] = 1
		}
	case Int:
		e.buf = append(e.buf, TagInt)
		e.buf = AppendVarint(e.buf, int64(x))
	case Float:
		if i, ok := wholeNumber(float64(x)); ok {
			e.buf = append(e.buf, TagInt)
			e.buf = AppendVarint(e.buf, i)
			return nil
		}
		e.buf = append(e.buf, TagFloat)
		e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(float64(x)))
	case Text:
		if !utf8.ValidString(string(x)) {
			return encodeErr(KindInvalidText, "jamcodec.Text")
		}
		e.buf = append(e.buf, TagString)
		e.str(string(x))
	case Bytes:
		e.buf = append(e.buf, TagBytes)
		e.buf = AppendVarint(e.buf, int64(len(x)))
		e.buf = append(e.buf, x...)
	case Array:
		if err := e.enter(); err != nil {
			return err
		}
		e.buf = append(e.buf, TagArray)
		e.buf = AppendVarint(e.buf, int64(len(x)))
		for _, el := range x {
			if err := e.value(el); err != nil {
				return err
			}
		}
		e.depth--
	case *Object:
		if err := e.enter(); err != nil {
			return err
		}
		e.buf = append(e.buf, TagObject)
		e.buf = AppendVarint(e.buf, int64(x.Len()))
		for k, el := range x.All() {
			if !utf8.ValidString(k) {
				return encodeErr(KindInvalidText, "object key")
			}
			e.str(k)
			if err := e.value(el); err != nil {
				return err
			}
		}
		e.depth--
	default:
		return encodeErr(KindUnsupportedShape, fmt.Sprintf("%T", v))
	}
	return nil
}

func (e *encoder) str(s string) {
	e.buf = AppendVarint(e.buf, int64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) enter() *Error {
	e.depth++
	if e.depth > e.max {
		return encodeErr(KindNestingTooDeep, "")
	}
	return nil
}

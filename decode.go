package jamcodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Decode decodes exactly one Term from b. Every byte of b must be consumed.
// Decoded Bytes never alias b. A FLOAT payload holding a whole number
// within ±MaxSafeInteger decodes as Int, the same split Encode applies.
//
// Duplicate object keys are accepted: the last value wins and the key keeps
// the position of its first occurrence.
func (c *Codec) Decode(b []byte) (Term, error) {
	r := reader{buf: b, max: c.maxDepth}
	t, err := r.term()
	if err == nil && r.off != len(b) {
		err = decodeErr(KindTrailingData, r.off)
	}
	if err != nil {
		c.decodeRejected(err, len(b))
		return nil, err
	}
	return t, nil
}

// DecodeValue is Decode for inputs that must hold a Value.
func (c *Codec) DecodeValue(b []byte) (Value, error) {
	t, err := c.Decode(b)
	if err != nil {
		return nil, err
	}
	v, ok := t.(Value)
	if !ok {
		return nil, &Error{Op: "decode", Kind: KindUnsupportedShape, Byte: -1, Type: fmt.Sprintf("%T", t)}
	}
	return v, nil
}

// DecodeVariant is Decode for inputs that must hold a Variant.
func (c *Codec) DecodeVariant(b []byte) (Variant, error) {
	t, err := c.Decode(b)
	if err != nil {
		return nil, err
	}
	v, ok := t.(Variant)
	if !ok {
		return nil, &Error{Op: "decode", Kind: KindUnsupportedShape, Byte: -1, Type: fmt.Sprintf("%T", t)}
	}
	return v, nil
}

func (c *Codec) decodeRejected(err error, size int) {
	var e *Error
	if !errors.As(err, &e) {
		c.log.Error("decode failed", Fields{"err": err, "size": size})
		return
	}
	if e.Kind == KindNestingTooDeep {
		c.hooks.NestingTooDeep("decode", c.maxDepth)
		c.log.Warn("decode nesting too deep", Fields{"max_depth": c.maxDepth, "offset": e.Offset, "size": size})
		return
	}
	c.hooks.DecodeRejected(e.Kind, e.Offset, size)
	c.log.Debug("decode rejected", Fields{"kind": e.Kind.String(), "offset": e.Offset, "size": size})
}

// reader is a read cursor over one input, owned by a single Decode call.
type reader struct {
	buf   []byte
	off   int
	depth int
	max   int
}

func (r *reader) term() (Term, error) {
	at := r.off
	tag, err := r.next()
	if err != nil {
		return nil, err
	}
	if tag != TagEnum {
		return r.valueOf(tag, at)
	}
	at = r.off
	idx, err := r.next()
	if err != nil {
		return nil, err
	}
	read, ok := variantReaders[idx]
	if !ok {
		return nil, decodeByteErr(KindUnknownVariant, at, idx)
	}
	return read(r)
}

func (r *reader) value() (Value, error) {
	at := r.off
	tag, err := r.next()
	if err != nil {
		return nil, err
	}
	if tag == TagEnum {
		// variants only appear at the top level; inside a container the
		// ENUM tag is not a value tag
		return nil, decodeByteErr(KindUnknownTag, at, tag)
	}
	return r.valueOf(tag, at)
}

func (r *reader) valueOf(tag byte, at int) (Value, error) {
	switch tag {
	case TagNull:
		return Null{}, nil
	case TagBool:
		b, err := r.next()
		if err != nil {
			return nil, err
		}
		return Bool(b == 1), nil
	case TagInt:
		n, err := r.varint()
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case TagFloat:
		p, err := r.take(8)
		if err != nil {
			return nil, err
		}
		// a whole FLOAT decodes as Int, so decoding is stable under re-encoding
		return Number(math.Float64frombits(binary.LittleEndian.Uint64(p))), nil
	case TagString:
		s, err := r.text()
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	case TagBytes:
		n, err := r.length()
		if err != nil {
			return nil, err
		}
		p, err := r.take(n)
		if err != nil {
			return nil, err
		}
		return Bytes(bytes.Clone(p)), nil
	case TagArray:
		return r.array()
	case TagObject:
		return r.object()
	}
	return nil, decodeByteErr(KindUnknownTag, at, tag)
}

func (r *reader) array() (Value, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	arr := make(Array, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	r.depth--
	return arr, nil
}

func (r *reader) object() (Value, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	obj := &Object{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
	for i := 0; i < n; i++ {
		k, err := r.text()
		if err != nil {
			return nil, err
		}
		v, err := r.value()
		if err != nil {
			return nil, err
		}
		obj.Set(k, v)
	}
	r.depth--
	return obj, nil
}

func (r *reader) enter() error {
	r.depth++
	if r.depth > r.max {
		return decodeErr(KindNestingTooDeep, r.off)
	}
	return nil
}

func (r *reader) next() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, decodeErr(KindTruncatedInput, r.off)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n > len(r.buf)-r.off {
		return nil, decodeErr(KindTruncatedInput, len(r.buf))
	}
	p := r.buf[r.off : r.off+n]
	r.off += n
	return p, nil
}

func (r *reader) varint() (int64, error) {
	n, size, err := ReadVarint(r.buf[r.off:])
	if err != nil {
		if errors.Is(err, ErrTruncatedInput) {
			return 0, decodeErr(KindTruncatedInput, len(r.buf))
		}
		return 0, decodeErr(KindMalformed, r.off)
	}
	r.off += size
	return n, nil
}

// length reads a byte length or element count. Every counted unit takes at
// least one byte, so a count larger than the remaining input is truncated
// input; this also bounds preallocation.
func (r *reader) length() (int, error) {
	at := r.off
	n, err := r.varint()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, decodeErr(KindMalformed, at)
	}
	if n > int64(len(r.buf)-r.off) {
		return 0, decodeErr(KindTruncatedInput, len(r.buf))
	}
	return int(n), nil
}

func (r *reader) text() (string, error) {
	n, err := r.length()
	if err != nil {
		return "", err
	}
	at := r.off
	p, err := r.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", decodeErr(KindInvalidText, at)
	}
	return string(p), nil
}

// pair reads the fixed-width little-endian (u32, u64) variant payload.
func (r *reader) pair() (uint32, uint64, error) {
	p, err := r.take(12)
	if err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint32(p), binary.LittleEndian.Uint64(p[4:]), nil
}

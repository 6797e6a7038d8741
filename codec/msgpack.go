package codec

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/unkn0wn-root/jamcodec"
)

// Msgpack transcodes jamcodec.Value to and from MessagePack using
// vmihailenco/msgpack/v5. Every Value kind maps onto a native msgpack type,
// so the conversion is lossless and keeps object key order.
// The zero value is ready to use.
type Msgpack struct{}

var _ Codec[jamcodec.Value] = Msgpack{}

func (Msgpack) Encode(v jamcodec.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := writeMsgpack(enc, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMsgpack(enc *msgpack.Encoder, v jamcodec.Value, depth int) error {
	switch x := v.(type) {
	case nil, jamcodec.Null:
		return enc.EncodeNil()
	case jamcodec.Bool:
		return enc.EncodeBool(bool(x))
	case jamcodec.Int:
		return enc.EncodeInt(int64(x))
	case jamcodec.Float:
		if n, ok := jamcodec.Number(float64(x)).(jamcodec.Int); ok {
			return enc.EncodeInt(int64(n))
		}
		return enc.EncodeFloat64(float64(x))
	case jamcodec.Text:
		if !utf8.ValidString(string(x)) {
			return fmt.Errorf("codec: msgpack: %w", jamcodec.ErrInvalidText)
		}
		return enc.EncodeString(string(x))
	case jamcodec.Bytes:
		if x == nil {
			x = jamcodec.Bytes{} // EncodeBytes(nil) writes nil
		}
		return enc.EncodeBytes(x)
	case jamcodec.Array:
		if depth >= maxDepth {
			return tooDeep("msgpack")
		}
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for _, el := range x {
			if err := writeMsgpack(enc, el, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *jamcodec.Object:
		if depth >= maxDepth {
			return tooDeep("msgpack")
		}
		if err := enc.EncodeMapLen(x.Len()); err != nil {
			return err
		}
		for k, el := range x.All() {
			if !utf8.ValidString(k) {
				return fmt.Errorf("codec: msgpack: %w: object key", jamcodec.ErrInvalidText)
			}
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := writeMsgpack(enc, el, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return unsupported("msgpack", v)
}

func (Msgpack) Decode(b []byte) (jamcodec.Value, error) {
	r := bytes.NewReader(b)
	dec := msgpack.NewDecoder(r)
	v, err := readMsgpack(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("codec: msgpack: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("codec: msgpack: %w", jamcodec.ErrTrailingData)
	}
	return v, nil
}

func readMsgpack(dec *msgpack.Decoder, depth int) (jamcodec.Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case c == msgpcode.Nil:
		return jamcodec.Null{}, dec.DecodeNil()
	case c == msgpcode.False || c == msgpcode.True:
		b, err := dec.DecodeBool()
		return jamcodec.Bool(b), err
	case c == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return nil, err
		}
		if u > math.MaxInt64 {
			return jamcodec.Float(float64(u)), nil
		}
		return jamcodec.Int(int64(u)), nil
	case msgpcode.IsFixedNum(c),
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32,
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		n, err := dec.DecodeInt64()
		return jamcodec.Int(n), err
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return nil, err
		}
		return jamcodec.Number(f), nil
	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		if !utf8.ValidString(s) {
			return nil, jamcodec.ErrInvalidText
		}
		return jamcodec.Text(s), nil
	case msgpcode.IsBin(c):
		p, err := dec.DecodeBytes()
		return jamcodec.Bytes(p), err
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		if depth >= maxDepth {
			return nil, jamcodec.ErrNestingTooDeep
		}
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		arr := make(jamcodec.Array, 0, min(n, 1024))
		for i := 0; i < n; i++ {
			el, err := readMsgpack(dec, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, el)
		}
		return arr, nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		if depth >= maxDepth {
			return nil, jamcodec.ErrNestingTooDeep
		}
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		obj := &jamcodec.Object{}
		for i := 0; i < n; i++ {
			k, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}
			if !utf8.ValidString(k) {
				return nil, jamcodec.ErrInvalidText
			}
			el, err := readMsgpack(dec, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(k, el)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: msgpack code %#x", jamcodec.ErrUnsupportedShape, c)
}

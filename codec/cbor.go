package codec

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"

	"github.com/unkn0wn-root/jamcodec"
)

// CBOR transcodes jamcodec.Value to and from CBOR using fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// Encoding writes arrays and objects as indefinite-length items so object
// key order is kept on the wire. Decoding goes through Go maps, so decoded
// object keys come back sorted. Tags and non-string map keys are rejected.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[jamcodec.Value] = CBOR{}

// NewCBOR constructs a CBOR codec with preferred (shortest-form) encoding.
func NewCBOR() (CBOR, error) {
	em, err := cbor.PreferredUnsortedEncOptions().EncMode()
	if err != nil {
		return CBOR{}, err
	}
	dm, err := cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: maxDepth,
	}.DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error.
// Handy for package-level variables in tests/examples.
func MustCBOR() CBOR {
	c, err := NewCBOR()
	if err != nil {
		panic(err)
	}
	return c
}

// Encode encodes v as CBOR using the configured EncMode.
func (c CBOR) Encode(v jamcodec.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := c.enc.NewEncoder(&buf)
	if err := writeCBOR(enc, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCBOR(enc *cbor.Encoder, v jamcodec.Value, depth int) error {
	switch x := v.(type) {
	case nil, jamcodec.Null:
		return enc.Encode(nil)
	case jamcodec.Bool:
		return enc.Encode(bool(x))
	case jamcodec.Int:
		return enc.Encode(int64(x))
	case jamcodec.Float:
		// whole numbers go out as integers, as on the jamcodec wire
		if n, ok := jamcodec.Number(float64(x)).(jamcodec.Int); ok {
			return enc.Encode(int64(n))
		}
		return enc.Encode(float64(x))
	case jamcodec.Text:
		if !utf8.ValidString(string(x)) {
			return fmt.Errorf("codec: cbor: %w", jamcodec.ErrInvalidText)
		}
		return enc.Encode(string(x))
	case jamcodec.Bytes:
		if x == nil {
			x = jamcodec.Bytes{}
		}
		return enc.Encode([]byte(x))
	case jamcodec.Array:
		if depth >= maxDepth {
			return tooDeep("cbor")
		}
		if err := enc.StartIndefiniteArray(); err != nil {
			return err
		}
		for _, el := range x {
			if err := writeCBOR(enc, el, depth+1); err != nil {
				return err
			}
		}
		return enc.EndIndefinite()
	case *jamcodec.Object:
		if depth >= maxDepth {
			return tooDeep("cbor")
		}
		if err := enc.StartIndefiniteMap(); err != nil {
			return err
		}
		for k, el := range x.All() {
			if !utf8.ValidString(k) {
				return fmt.Errorf("codec: cbor: %w: object key", jamcodec.ErrInvalidText)
			}
			if err := enc.Encode(k); err != nil {
				return err
			}
			if err := writeCBOR(enc, el, depth+1); err != nil {
				return err
			}
		}
		return enc.EndIndefinite()
	}
	return unsupported("cbor", v)
}

// Decode decodes b using the configured DecMode. Trailing bytes are an error.
func (c CBOR) Decode(b []byte) (jamcodec.Value, error) {
	var raw any
	if err := c.dec.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("codec: cbor: %w", err)
	}
	return fromCBOR(raw, 0)
}

func fromCBOR(raw any, depth int) (jamcodec.Value, error) {
	switch x := raw.(type) {
	case nil:
		return jamcodec.Null{}, nil
	case bool:
		return jamcodec.Bool(x), nil
	case int64:
		return jamcodec.Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return jamcodec.Float(float64(x)), nil
		}
		return jamcodec.Int(int64(x)), nil
	case float64:
		return jamcodec.Number(x), nil
	case string:
		return jamcodec.Text(x), nil
	case []byte:
		return jamcodec.Bytes(x), nil
	case []any:
		if depth >= maxDepth {
			return nil, tooDeep("cbor")
		}
		arr := make(jamcodec.Array, 0, len(x))
		for _, el := range x {
			v, err := fromCBOR(el, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case map[string]any:
		if depth >= maxDepth {
			return nil, tooDeep("cbor")
		}
		return sortedObject(x, fromCBOR, depth+1)
	}
	return nil, unsupported("cbor", raw)
}

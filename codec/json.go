package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/unkn0wn-root/jamcodec"
)

// JSON transcodes jamcodec.Value to and from JSON. Object key order is kept
// in both directions. Bytes become base64 strings (and decode as Text);
// numbers decode through jamcodec.Number unless they are integers that fit
// in int64. Non-finite floats cannot be represented and fail.
// The zero value is ready to use.
type JSON struct{}

var _ Codec[jamcodec.Value] = JSON{}

func (JSON) Encode(v jamcodec.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v jamcodec.Value, depth int) error {
	switch x := v.(type) {
	case nil, jamcodec.Null:
		buf.WriteString("null")
	case jamcodec.Bool:
		buf.WriteString(strconv.FormatBool(bool(x)))
	case jamcodec.Int:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case jamcodec.Float:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("codec: json: %w: non-finite float %v", jamcodec.ErrUnsupportedShape, f)
		}
		b, err := json.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(b)
	case jamcodec.Text:
		if !utf8.ValidString(string(x)) {
			return fmt.Errorf("codec: json: %w", jamcodec.ErrInvalidText)
		}
		writeJSONString(buf, string(x))
	case jamcodec.Bytes:
		writeJSONString(buf, base64.StdEncoding.EncodeToString(x))
	case jamcodec.Array:
		if depth >= maxDepth {
			return tooDeep("json")
		}
		buf.WriteByte('[')
		for i, el := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, el, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *jamcodec.Object:
		if depth >= maxDepth {
			return tooDeep("json")
		}
		buf.WriteByte('{')
		i := 0
		for k, el := range x.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			if !utf8.ValidString(k) {
				return fmt.Errorf("codec: json: %w: object key", jamcodec.ErrInvalidText)
			}
			writeJSONString(buf, k)
			buf.WriteByte(':')
			if err := writeJSON(buf, el, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return unsupported("json", v)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s) // strings always marshal
	buf.Write(b)
}

func (JSON) Decode(b []byte) (jamcodec.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := readJSON(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("codec: json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("codec: json: %w", jamcodec.ErrTrailingData)
	}
	return v, nil
}

func readJSON(dec *json.Decoder, depth int) (jamcodec.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, jamcodec.ErrTruncatedInput
		}
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return jamcodec.Null{}, nil
	case bool:
		return jamcodec.Bool(t), nil
	case string:
		return jamcodec.Text(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return jamcodec.Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return jamcodec.Number(f), nil
	case json.Delim:
		if depth >= maxDepth {
			return nil, jamcodec.ErrNestingTooDeep
		}
		switch t {
		case '[':
			arr := jamcodec.Array{}
			for dec.More() {
				el, err := readJSON(dec, depth+1)
				if err != nil {
					return nil, err
				}
				arr = append(arr, el)
			}
			_, err := dec.Token() // ']'
			return arr, err
		case '{':
			obj := &jamcodec.Object{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				k, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", kt)
				}
				el, err := readJSON(dec, depth+1)
				if err != nil {
					return nil, err
				}
				obj.Set(k, el)
			}
			_, err := dec.Token() // '}'
			return obj, err
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

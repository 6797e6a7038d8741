package codec

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unkn0wn-root/jamcodec"
)

// Proto transcodes jamcodec.Value to and from a serialized
// google.protobuf.Value, for carrying values through protobuf APIs.
//
// The protobuf value model is narrower: numbers are doubles, so Int values
// outside ±MaxSafeInteger are rejected; Bytes become base64 strings; objects
// are Structs whose keys are serialized (and decoded) in sorted order.
// The zero value is ready to use.
type Proto struct{}

var _ Codec[jamcodec.Value] = Proto{}

func (Proto) Encode(v jamcodec.Value) ([]byte, error) {
	pv, err := ToStructpb(v)
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(pv)
}

func (Proto) Decode(b []byte) (jamcodec.Value, error) {
	var pv structpb.Value
	if err := proto.Unmarshal(b, &pv); err != nil {
		return nil, fmt.Errorf("codec: proto: %w", err)
	}
	return FromStructpb(&pv)
}

// ToStructpb converts v to a *structpb.Value.
func ToStructpb(v jamcodec.Value) (*structpb.Value, error) {
	return toStructpb(v, 0)
}

func toStructpb(v jamcodec.Value, depth int) (*structpb.Value, error) {
	switch x := v.(type) {
	case nil, jamcodec.Null:
		return structpb.NewNullValue(), nil
	case jamcodec.Bool:
		return structpb.NewBoolValue(bool(x)), nil
	case jamcodec.Int:
		if x > jamcodec.MaxSafeInteger || x < -jamcodec.MaxSafeInteger {
			return nil, fmt.Errorf("codec: proto: %w: int %d exceeds double precision", jamcodec.ErrUnsupportedShape, int64(x))
		}
		return structpb.NewNumberValue(float64(x)), nil
	case jamcodec.Float:
		return structpb.NewNumberValue(float64(x)), nil
	case jamcodec.Text:
		if !utf8.ValidString(string(x)) {
			return nil, fmt.Errorf("codec: proto: %w", jamcodec.ErrInvalidText)
		}
		return structpb.NewStringValue(string(x)), nil
	case jamcodec.Bytes:
		return structpb.NewStringValue(base64.StdEncoding.EncodeToString(x)), nil
	case jamcodec.Array:
		if depth >= maxDepth {
			return nil, tooDeep("proto")
		}
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(x))}
		for _, el := range x {
			pv, err := toStructpb(el, depth+1)
			if err != nil {
				return nil, err
			}
			list.Values = append(list.Values, pv)
		}
		return structpb.NewListValue(list), nil
	case *jamcodec.Object:
		if depth >= maxDepth {
			return nil, tooDeep("proto")
		}
		st := &structpb.Struct{Fields: make(map[string]*structpb.Value, x.Len())}
		for k, el := range x.All() {
			if !utf8.ValidString(k) {
				return nil, fmt.Errorf("codec: proto: %w", jamcodec.ErrInvalidText)
			}
			pv, err := toStructpb(el, depth+1)
			if err != nil {
				return nil, err
			}
			st.Fields[k] = pv
		}
		return structpb.NewStructValue(st), nil
	}
	return nil, unsupported("proto", v)
}

// FromStructpb converts a *structpb.Value into a jamcodec.Value. Numbers go
// through jamcodec.Number.
func FromStructpb(pv *structpb.Value) (jamcodec.Value, error) {
	return fromStructpb(pv, 0)
}

func fromStructpb(pv *structpb.Value, depth int) (jamcodec.Value, error) {
	switch k := pv.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return jamcodec.Null{}, nil
	case *structpb.Value_BoolValue:
		return jamcodec.Bool(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		return jamcodec.Number(k.NumberValue), nil
	case *structpb.Value_StringValue:
		return jamcodec.Text(k.StringValue), nil
	case *structpb.Value_ListValue:
		if depth >= maxDepth {
			return nil, tooDeep("proto")
		}
		vals := k.ListValue.GetValues()
		arr := make(jamcodec.Array, 0, len(vals))
		for _, el := range vals {
			v, err := fromStructpb(el, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case *structpb.Value_StructValue:
		if depth >= maxDepth {
			return nil, tooDeep("proto")
		}
		return sortedObject(k.StructValue.GetFields(), fromStructpb, depth+1)
	}
	return nil, unsupported("proto", pv.GetKind())
}

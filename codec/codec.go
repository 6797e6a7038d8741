// Package codec adapts jamcodec and a set of other self-describing formats
// to one Codec[V] interface.
//
// Tagged and TaggedValue speak the jamcodec wire format. JSON, CBOR, Msgpack
// and Proto transcode jamcodec.Value trees to and from those formats so the
// same values can cross systems that do not speak jamcodec. Variants have no
// representation outside jamcodec and fail with jamcodec.ErrUnsupportedShape.
package codec

import (
	"fmt"
	"sort"

	"github.com/unkn0wn-root/jamcodec"
)

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// maxDepth bounds container nesting in the transcoders.
const maxDepth = 512

// Transcode decodes b with src and re-encodes the result with dst.
func Transcode[V any](dst, src Codec[V], b []byte) ([]byte, error) {
	v, err := src.Decode(b)
	if err != nil {
		return nil, err
	}
	return dst.Encode(v)
}

func unsupported(format string, v any) error {
	return fmt.Errorf("codec: %s: %w: %T", format, jamcodec.ErrUnsupportedShape, v)
}

func tooDeep(format string) error {
	return fmt.Errorf("codec: %s: %w", format, jamcodec.ErrNestingTooDeep)
}

// sortedObject builds an Object from a Go map. Go maps carry no order, so
// keys are sorted to keep decoding deterministic.
func sortedObject[T any](m map[string]T, conv func(T, int) (jamcodec.Value, error), depth int) (jamcodec.Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj := &jamcodec.Object{}
	for _, k := range keys {
		v, err := conv(m[k], depth)
		if err != nil {
			return nil, err
		}
		obj.Set(k, v)
	}
	return obj, nil
}

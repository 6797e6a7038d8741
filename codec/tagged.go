package codec

import "github.com/unkn0wn-root/jamcodec"

// Tagged is a Codec for any jamcodec.Term. C may be nil, in which case the
// package-level jamcodec functions are used.
type Tagged struct {
	C *jamcodec.Codec
}

var _ Codec[jamcodec.Term] = Tagged{}

func (t Tagged) Encode(v jamcodec.Term) ([]byte, error) {
	if t.C == nil {
		return jamcodec.Encode(v)
	}
	return t.C.Encode(v)
}

func (t Tagged) Decode(b []byte) (jamcodec.Term, error) {
	if t.C == nil {
		return jamcodec.Decode(b)
	}
	return t.C.Decode(b)
}

// TaggedValue is Tagged restricted to jamcodec.Value, so it composes with
// the transcoding codecs.
type TaggedValue struct {
	C *jamcodec.Codec
}

var _ Codec[jamcodec.Value] = TaggedValue{}

func (t TaggedValue) Encode(v jamcodec.Value) ([]byte, error) {
	return Tagged(t).Encode(v)
}

func (t TaggedValue) Decode(b []byte) (jamcodec.Value, error) {
	if t.C == nil {
		return jamcodec.DecodeValue(b)
	}
	return t.C.DecodeValue(b)
}

package jamcodec

// Hooks are lightweight callbacks for rejected calls.
// Implementations MUST be cheap and non-blocking; they run inline with
// Encode and Decode.
type Hooks interface {
	// Encode failed on a value outside the supported shapes.
	// typeName is the offending runtime type.
	EncodeRejected(kind Kind, typeName string)

	// Decode failed. offset is where the failure was detected and size
	// is the length of the whole input.
	DecodeRejected(kind Kind, offset, size int)

	// The depth guard tripped. op is "encode" or "decode".
	NestingTooDeep(op string, depth int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) EncodeRejected(Kind, string)   {}
func (NopHooks) DecodeRejected(Kind, int, int) {}
func (NopHooks) NestingTooDeep(string, int)    {}

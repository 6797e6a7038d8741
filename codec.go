package jamcodec

const (
	defaultMaxDepth   = 512
	defaultBufferSize = 256
)

// Options tune a Codec. The zero value is usable.
type Options struct {
	MaxDepth          int    // containers nested deeper fail with ErrNestingTooDeep; 0 => 512
	InitialBufferSize int    // starting capacity of the encode buffer; 0 => 256
	Logger            Logger // if nil, NopLogger is used
	Hooks             Hooks  // if nil, NopHooks is used
}

// Codec encodes and decodes Terms. It holds configuration only, so one Codec
// may serve any number of concurrent calls.
type Codec struct {
	maxDepth int
	bufSize  int
	log      Logger
	hooks    Hooks
}

// New returns a Codec configured by opts.
func New(opts Options) *Codec {
	return &Codec{
		maxDepth: coalesce(opts.MaxDepth, defaultMaxDepth),
		bufSize:  coalesce(opts.InitialBufferSize, defaultBufferSize),
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
}

var std = New(Options{})

// Encode encodes t with the default Codec.
func Encode(t Term) ([]byte, error) { return std.Encode(t) }

// Append appends the encoding of t to dst with the default Codec.
func Append(dst []byte, t Term) ([]byte, error) { return std.Append(dst, t) }

// Decode decodes b with the default Codec.
func Decode(b []byte) (Term, error) { return std.Decode(b) }

// DecodeValue decodes b with the default Codec and requires a Value.
func DecodeValue(b []byte) (Value, error) { return std.DecodeValue(b) }

// DecodeVariant decodes b with the default Codec and requires a Variant.
func DecodeVariant(b []byte) (Variant, error) { return std.DecodeVariant(b) }

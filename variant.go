package jamcodec

// Variant is one of the externally defined record shapes carried under the
// ENUM tag. Each shape has a fixed variant index that is independent of
// declaration order.
type Variant interface {
	Term
	variant()
}

// Variant indexes on the wire.
const (
	IndexA byte = 15
	IndexB byte = 1
	IndexC byte = 2
)

// VariantA carries no payload.
type VariantA struct{}

// VariantB is a positional (u32, u64) pair.
type VariantB struct {
	First  uint32
	Second uint64
}

// VariantC is a named {a: u32, b: u64} pair.
type VariantC struct {
	A uint32
	B uint64
}

func (VariantA) term() {}
func (VariantB) term() {}
func (VariantC) term() {}

func (VariantA) variant() {}
func (VariantB) variant() {}
func (VariantC) variant() {}

// variantIndex maps a shape to its wire index. ok is false for shapes
// outside the closed set.
func variantIndex(v Variant) (idx byte, ok bool) {
	switch v.(type) {
	case VariantA:
		return IndexA, true
	case VariantB:
		return IndexB, true
	case VariantC:
		return IndexC, true
	}
	return 0, false
}

// variantReaders maps a wire index to the reader of its payload.
var variantReaders = map[byte]func(r *reader) (Variant, error){
	IndexA: func(*reader) (Variant, error) { return VariantA{}, nil },
	IndexB: func(r *reader) (Variant, error) {
		a, b, err := r.pair()
		if err != nil {
			return nil, err
		}
		return VariantB{First: a, Second: b}, nil
	},
	IndexC: func(r *reader) (Variant, error) {
		a, b, err := r.pair()
		if err != nil {
			return nil, err
		}
		return VariantC{A: a, B: b}, nil
	},
}

package jamcodec

import "encoding/binary"

// ZigZagEncode maps signed integers onto unsigned ones so that values of
// small magnitude, negative or not, stay small: 0, -1, 1, -2 -> 0, 1, 2, 3.
func ZigZagEncode(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// AppendVarint appends the zig-zag mapped n as a base-128 varint: seven bits
// per byte, low group first, high bit set on every byte but the last.
func AppendVarint(dst []byte, n int64) []byte {
	return binary.AppendUvarint(dst, ZigZagEncode(n))
}

// VarintLen returns how many bytes AppendVarint writes for n.
func VarintLen(n int64) int {
	u := ZigZagEncode(n)
	size := 1
	for u >= 0x80 {
		u >>= 7
		size++
	}
	return size
}

// ReadVarint reads one varint from the front of b and returns the decoded
// value and the number of bytes consumed. It fails with ErrTruncatedInput
// when b ends before the terminating byte and ErrMalformed when the varint
// does not fit in 64 bits.
func ReadVarint(b []byte) (int64, int, error) {
	u, n := binary.Uvarint(b)
	switch {
	case n == 0:
		return 0, 0, ErrTruncatedInput
	case n < 0:
		return 0, 0, ErrMalformed
	}
	return ZigZagDecode(u), n, nil
}

// Package jamcodec implements a self-describing binary encoding for a closed
// set of value kinds plus a fixed set of tagged variant records.
// Decode(Encode(v)) reproduces v exactly; Decode rejects malformed,
// truncated or over-long input.
//
// Components:
//   - Varint: zig-zag signed mapping plus base-128 continuation encoding.
//   - Value codec: one tag byte per unit, then a fixed-width, varint,
//     length-prefixed or recursive container payload.
//   - Variant codec: ENUM tag, one variant index byte, fixed-width payload.
//
// Wire format (multi-byte fixed fields little-endian):
//
//	0x00 Null    -
//	0x01 Bool    1 byte, 1=true, anything else false
//	0x02 Int     varint(zigzag(n))
//	0x03 Float   8 bytes IEEE-754
//	0x04 String  varint(len) utf-8 bytes
//	0x05 Bytes   varint(len) raw bytes
//	0x06 Array   varint(count) values
//	0x07 Object  varint(count) (varint(keylen) key value)*
//	0x08 Enum    index byte, payload (15: none, 1 and 2: u32 u64)
//
// Numbers are split by value: a whole Float inside ±MaxSafeInteger is
// written with the Int tag.
//
// Codec values carry configuration only. Each call owns its buffer or read
// cursor, so concurrent calls need no coordination.
package jamcodec

package wire

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
)

const (
	version   byte = 1
	kindEntry byte = 1
	kindBatch byte = 2

	entryHeader = 4 + 1 + 1 + 8 + 4
	batchHeader = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt     = errors.New("jamcodec: corrupt entry")
	ErrInvalidKey  = errors.New("jamcodec: invalid key length in batch")
	ErrSumMismatch = errors.New("jamcodec: entry checksum mismatch")
	magic4         = [...]byte{'J', 'A', 'M', 'S'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Sum is the payload checksum stored in frames.
func Sum(payload []byte) uint64 { return xxhash.Sum64(payload) }

// Entry: magic(4) | ver(1) | kind(1=entry) | sum(u64 be) | vlen(u32 be) | payload(vlen)
func EncodeEntry(payload []byte) []byte {
	b := make([]byte, 0, entryHeader+len(payload))
	b = append(b, magic4[:]...)
	b = append(b, version, kindEntry)
	b = binary.BigEndian.AppendUint64(b, Sum(payload))
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

// DecodeEntry returns the payload of an entry frame. The payload aliases b.
// Trailing bytes and checksum mismatches are corruption.
func DecodeEntry(b []byte) ([]byte, error) {
	if len(b) < entryHeader || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return nil, ErrCorrupt
	}
	off := 6

	sum := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off {
		return nil, ErrCorrupt
	}

	payload := b[off:]
	if Sum(payload) != sum {
		return nil, ErrSumMismatch
	}
	return payload, nil
}

// Batch:
//
//	magic(4) | ver(1) | kind(2=batch) | n(u32 be)
//	keyLen(u16 be) | key(keyLen) | sum(u64 be) | vlen(u32 be) | payload(vlen) * n
type BatchItem struct {
	Key     string
	Payload []byte
}

func EncodeBatch(items []BatchItem) ([]byte, error) {
	total := batchHeader
	for _, it := range items {
		if l := len(it.Key); l == 0 || l > 0xFFFF {
			return nil, ErrInvalidKey
		}
		total += 2 + len(it.Key) + 8 + 4 + len(it.Payload)
	}

	b := make([]byte, 0, total)
	b = append(b, magic4[:]...)
	b = append(b, version, kindBatch)
	b = binary.BigEndian.AppendUint32(b, uint32(len(items)))

	for _, it := range items {
		b = binary.BigEndian.AppendUint16(b, uint16(len(it.Key)))
		b = append(b, it.Key...)
		b = binary.BigEndian.AppendUint64(b, Sum(it.Payload))
		b = binary.BigEndian.AppendUint32(b, uint32(len(it.Payload)))
		b = append(b, it.Payload...)
	}
	return b, nil
}

// DecodeBatch parses a batch blob. Payloads alias b. Any structural problem,
// checksum mismatch or leftover bytes fails the whole batch.
func DecodeBatch(b []byte) ([]BatchItem, error) {
	if len(b) < batchHeader || !hasMagic(b) || b[4] != version || b[5] != kindBatch {
		return nil, ErrCorrupt
	}
	off := 6

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// every item needs at least 15 bytes; bound the allocation by what is there
	if n > (len(b)-off)/15 {
		return nil, ErrCorrupt
	}

	items := make([]BatchItem, 0, n)
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return nil, ErrCorrupt
		}
		klen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if klen == 0 || klen > len(b)-off {
			return nil, ErrCorrupt
		}
		key := string(b[off : off+klen])
		off += klen

		if off+12 > len(b) {
			return nil, ErrCorrupt
		}
		sum := binary.BigEndian.Uint64(b[off : off+8])
		off += 8
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen > len(b)-off {
			return nil, ErrCorrupt
		}
		payload := b[off : off+vlen]
		off += vlen
		if Sum(payload) != sum {
			return nil, ErrSumMismatch
		}

		items = append(items, BatchItem{Key: key, Payload: payload})
	}
	if off != len(b) {
		return nil, ErrCorrupt
	}
	return items, nil
}

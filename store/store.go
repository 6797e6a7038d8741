// Package store persists jamcodec-encoded values in a provider.Provider.
//
// Every entry is framed (magic, checksum, length) before it reaches the
// provider, so foreign or damaged bytes are detected on read. Such entries
// are deleted and reported as a miss. Export and Import move a set of
// entries between stores as a single checksummed blob.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/jamcodec"
	c "github.com/unkn0wn-root/jamcodec/codec"
	"github.com/unkn0wn-root/jamcodec/internal/wire"
	pr "github.com/unkn0wn-root/jamcodec/provider"
)

const defaultTTL = 10 * time.Minute

var (
	// ErrEntryTooLarge is returned by Put and Import when an encoded value
	// exceeds Options.MaxEntrySize.
	ErrEntryTooLarge = errors.New("store: entry too large")
	// ErrRejected is returned when the provider refused a write under pressure.
	ErrRejected = errors.New("store: write rejected by provider")
	// ErrBatchMismatch is returned when a provider.BatchGetter breaks the
	// one-result-per-key contract.
	ErrBatchMismatch = errors.New("store: batch result count mismatch")
	// ErrInvalidKey is returned for empty keys and keys longer than 65535 bytes.
	ErrInvalidKey = errors.New("store: invalid key")
)

type SetCostFunc func(key string, frame []byte) int64

// Options configure a Store.
// Namespace, Provider and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // isolates keys. e.g. "docs", "session"
	Provider  pr.Provider
	Codec     c.Codec[V]

	Logger         jamcodec.Logger // if nil, NopLogger is used
	DefaultTTL     time.Duration   // used when Put gets ttl <= 0; 0 => 10m
	MaxEntrySize   int             // max encoded payload; 0 => unlimited
	ComputeSetCost SetCostFunc     // default: frame length
}

type Store[V any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[V]
	log      jamcodec.Logger
	ttl      time.Duration
	maxEntry int
	cost     SetCostFunc
}

func New[V any](opts Options[V]) (*Store[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("store: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("store: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("store: namespace is required")
	}

	s := &Store[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		log:      opts.Logger,
		ttl:      opts.DefaultTTL,
		maxEntry: opts.MaxEntrySize,
		cost:     opts.ComputeSetCost,
	}
	if s.log == nil {
		s.log = jamcodec.NopLogger{}
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.cost == nil {
		s.cost = func(_ string, frame []byte) int64 { return int64(len(frame)) }
	}
	return s, nil
}

func (s *Store[V]) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

// Put encodes v and stores it under key. ttl <= 0 uses DefaultTTL.
func (s *Store[V]) Put(ctx context.Context, key string, v V, ttl time.Duration) error {
	if err := validKey(key); err != nil {
		return err
	}
	payload, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.putPayload(ctx, key, payload, ttl)
}

func (s *Store[V]) putPayload(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if s.maxEntry > 0 && len(payload) > s.maxEntry {
		return fmt.Errorf("%w: %d > %d", ErrEntryTooLarge, len(payload), s.maxEntry)
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	k := s.entryKey(key)
	frame := wire.EncodeEntry(payload)
	ok, err := s.provider.Set(ctx, k, frame, s.cost(k, frame), ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("Put rejected by provider (pressure)", jamcodec.Fields{"ns": s.ns, "key": key, "size": len(frame)})
		return ErrRejected
	}
	return nil
}

// Get returns (v, true, nil) on hit. Corrupt or undecodable entries are
// deleted and reported as a miss.
func (s *Store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	k := s.entryKey(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	return s.decodeEntry(ctx, key, raw)
}

func (s *Store[V]) decodeEntry(ctx context.Context, key string, raw []byte) (V, bool, error) {
	var zero V
	payload, err := wire.DecodeEntry(raw)
	if err != nil {
		s.heal(ctx, key, err)
		return zero, false, nil
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		s.heal(ctx, key, err)
		return zero, false, nil
	}
	return v, true, nil
}

func (s *Store[V]) Delete(ctx context.Context, key string) error {
	return s.provider.Del(ctx, s.entryKey(key))
}

// GetMany looks up keys and returns the hits plus the missing keys in input
// order. Providers implementing provider.BatchGetter are read in one call.
func (s *Store[V]) GetMany(ctx context.Context, keys []string) (map[string]V, []string, error) {
	out := make(map[string]V, len(keys))
	if len(keys) == 0 {
		return out, nil, nil
	}

	var missing []string
	if bg, ok := s.provider.(pr.BatchGetter); ok {
		full := make([]string, len(keys))
		for i, k := range keys {
			full[i] = s.entryKey(k)
		}
		raws, err := bg.GetMany(ctx, full)
		if err != nil {
			return nil, nil, err
		}
		if len(raws) != len(keys) {
			return nil, nil, fmt.Errorf("%w: %d results for %d keys", ErrBatchMismatch, len(raws), len(keys))
		}
		for i, k := range keys {
			if raws[i] != nil {
				if v, ok, _ := s.decodeEntry(ctx, k, raws[i]); ok {
					out[k] = v
					continue
				}
			}
			missing = append(missing, k)
		}
		return out, missing, nil
	}

	for _, k := range keys {
		v, ok, err := s.Get(ctx, k)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			out[k] = v
		} else {
			missing = append(missing, k)
		}
	}
	return out, missing, nil
}

// Export packs the stored payloads for keys into one blob. Missing keys are
// skipped and corrupt ones healed; payloads are copied without re-encoding.
func (s *Store[V]) Export(ctx context.Context, keys []string) ([]byte, error) {
	items := make([]wire.BatchItem, 0, len(keys))
	for _, key := range keys {
		if err := validKey(key); err != nil {
			return nil, err
		}
		raw, ok, err := s.provider.Get(ctx, s.entryKey(key))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		payload, err := wire.DecodeEntry(raw)
		if err != nil {
			s.heal(ctx, key, err)
			continue
		}
		items = append(items, wire.BatchItem{Key: key, Payload: payload})
	}
	return wire.EncodeBatch(items)
}

// Import restores a blob produced by Export and returns how many entries
// were written. Every payload is decoded with the store's codec before
// anything is written, so a bad blob leaves the store untouched.
func (s *Store[V]) Import(ctx context.Context, blob []byte, ttl time.Duration) (int, error) {
	items, err := wire.DecodeBatch(blob)
	if err != nil {
		return 0, fmt.Errorf("store: import: %w", err)
	}
	for _, it := range items {
		if s.maxEntry > 0 && len(it.Payload) > s.maxEntry {
			return 0, fmt.Errorf("store: import %q: %w", it.Key, ErrEntryTooLarge)
		}
		if _, err := s.codec.Decode(it.Payload); err != nil {
			return 0, fmt.Errorf("store: import %q: %w", it.Key, err)
		}
	}
	n := 0
	for _, it := range items {
		if err := s.putPayload(ctx, it.Key, it.Payload, ttl); err != nil {
			return n, fmt.Errorf("store: import %q: %w", it.Key, err)
		}
		n++
	}
	s.log.Info("import finished", jamcodec.Fields{"ns": s.ns, "entries": n})
	return n, nil
}

func (s *Store[V]) heal(ctx context.Context, key string, cause error) {
	if err := s.provider.Del(ctx, s.entryKey(key)); err != nil {
		s.log.Error("self-heal delete failed", jamcodec.Fields{"ns": s.ns, "key": key, "err": err})
		return
	}
	s.log.Warn("dropped corrupt entry", jamcodec.Fields{"ns": s.ns, "key": key, "err": cause})
}

func (s *Store[V]) entryKey(userKey string) string {
	// isolate by namespace
	return "entry:" + s.ns + ":" + userKey
}

func validKey(key string) error {
	if key == "" || len(key) > 0xFFFF {
		return ErrInvalidKey
	}
	return nil
}

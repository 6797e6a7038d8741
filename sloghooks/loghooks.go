// Package sloghooks logs jamcodec.Hooks events to a *slog.Logger.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/jamcodec"
)

type Options struct {
	// Sampling to avoid floods from hostile input; 0/1 = log all.
	DecodeRejectEvery uint64
	EncodeRejectEvery uint64
	NestingEvery      uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	decodeCtr  atomic.Uint64
	encodeCtr  atomic.Uint64
	nestingCtr atomic.Uint64
}

var _ jamcodec.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) EncodeRejected(kind jamcodec.Kind, typeName string) {
	if h.l == nil || !sample(h.opts.EncodeRejectEvery, &h.encodeCtr) {
		return
	}
	h.l.Info("jamcodec.encode_rejected",
		"kind", kind.String(),
		"type", typeName)
}

func (h *Hooks) DecodeRejected(kind jamcodec.Kind, offset, size int) {
	if h.l == nil || !sample(h.opts.DecodeRejectEvery, &h.decodeCtr) {
		return
	}
	h.l.Debug("jamcodec.decode_rejected",
		"kind", kind.String(),
		"offset", offset,
		"size", size)
}

func (h *Hooks) NestingTooDeep(op string, depth int) {
	if h.l == nil || !sample(h.opts.NestingEvery, &h.nestingCtr) {
		return
	}
	h.l.Warn("jamcodec.nesting_too_deep",
		"op", op,
		"max_depth", depth)
}

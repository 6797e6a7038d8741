package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/jamcodec"
)

type countHooks struct {
	mu     sync.Mutex
	n      int
	block  chan struct{}
	kinds  []jamcodec.Kind
	depths []int
}

func (c *countHooks) wait() {
	if c.block != nil {
		<-c.block
	}
}

func (c *countHooks) EncodeRejected(k jamcodec.Kind, _ string) {
	c.wait()
	c.mu.Lock()
	c.n++
	c.kinds = append(c.kinds, k)
	c.mu.Unlock()
}

func (c *countHooks) DecodeRejected(k jamcodec.Kind, _, _ int) {
	c.wait()
	c.mu.Lock()
	c.n++
	c.kinds = append(c.kinds, k)
	c.mu.Unlock()
}

func (c *countHooks) NestingTooDeep(_ string, d int) {
	c.wait()
	c.mu.Lock()
	c.n++
	c.depths = append(c.depths, d)
	c.mu.Unlock()
}

func TestForwardsAndDrains(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)

	h.EncodeRejected(jamcodec.KindInvalidText, "jamcodec.Text")
	h.DecodeRejected(jamcodec.KindTrailingData, 2, 3)
	h.NestingTooDeep("decode", 4)
	h.Close()

	if inner.n != 3 || len(inner.depths) != 1 || inner.depths[0] != 4 {
		t.Fatalf("inner=%+v", inner)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// worker takes at most one event and blocks; the queue holds one more
	for i := 0; i < 10; i++ {
		h.DecodeRejected(jamcodec.KindUnknownTag, 0, 1)
	}
	if h.Dropped() < 8 {
		t.Fatalf("dropped=%d want >= 8", h.Dropped())
	}
	close(inner.block)
	h.Close()
	if got := uint64(inner.n) + h.Dropped(); got != 10 {
		t.Fatalf("delivered+dropped=%d", got)
	}
}

func TestAfterCloseIsDropped(t *testing.T) {
	h := New(&countHooks{}, 1, 4)
	h.Close()
	h.Close()
	h.NestingTooDeep("encode", 1)
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

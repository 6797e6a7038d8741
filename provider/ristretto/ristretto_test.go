package ristretto

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64, Metrics: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error on zero config")
	}
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	val := []byte("frame")
	if ok, err := p.Set(ctx, "k", val, int64(len(val)), time.Minute); err != nil || !ok {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	val[0] = 'X' // caller reuse must not leak into the cache
	p.Wait()

	got, hit, err := p.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get hit=%v err=%v", hit, err)
	}
	if !bytes.Equal(got, []byte("frame")) {
		t.Fatalf("got %q", got)
	}
	if p.Metrics() == nil {
		t.Fatal("metrics requested but nil")
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := p.Get(ctx, "k"); hit {
		t.Fatal("expected miss after Del")
	}
}

func TestMiss(t *testing.T) {
	p := newTestProvider(t)
	got, hit, err := p.Get(context.Background(), "absent")
	if got != nil || hit || err != nil {
		t.Fatalf("got=%v hit=%v err=%v", got, hit, err)
	}
}

package jamcodec

import (
	"sync"
	"testing"
)

type hookEvent struct {
	name   string
	kind   Kind
	detail string
	offset int
	size   int
}

type recHooks struct {
	mu     sync.Mutex
	events []hookEvent
}

func (h *recHooks) add(e hookEvent) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recHooks) EncodeRejected(k Kind, typ string) {
	h.add(hookEvent{name: "encode", kind: k, detail: typ})
}

func (h *recHooks) DecodeRejected(k Kind, off, size int) {
	h.add(hookEvent{name: "decode", kind: k, offset: off, size: size})
}

func (h *recHooks) NestingTooDeep(op string, depth int) {
	h.add(hookEvent{name: "depth", detail: op, size: depth})
}

type logLine struct {
	level string
	msg   string
	f     Fields
}

type recLogger struct{ lines []logLine }

func (l *recLogger) Debug(m string, f Fields) { l.lines = append(l.lines, logLine{"debug", m, f}) }
func (l *recLogger) Info(m string, f Fields)  { l.lines = append(l.lines, logLine{"info", m, f}) }
func (l *recLogger) Warn(m string, f Fields)  { l.lines = append(l.lines, logLine{"warn", m, f}) }
func (l *recLogger) Error(m string, f Fields) { l.lines = append(l.lines, logLine{"error", m, f}) }

func TestHooksAndLoggerOnRejection(t *testing.T) {
	h := &recHooks{}
	l := &recLogger{}
	c := New(Options{Hooks: h, Logger: l, MaxDepth: 2})

	if _, err := c.Decode([]byte{0x09}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := c.Encode(foreignValue{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := c.Encode(nest(3)); err == nil {
		t.Fatal("expected error")
	}

	want := []hookEvent{
		{name: "decode", kind: KindUnknownTag, offset: 0, size: 1},
		{name: "encode", kind: KindUnsupportedShape, detail: "jamcodec.foreignValue"},
		{name: "depth", detail: "encode", size: 2},
	}
	if len(h.events) != len(want) {
		t.Fatalf("events=%+v", h.events)
	}
	for i := range want {
		if h.events[i] != want[i] {
			t.Fatalf("event %d = %+v want %+v", i, h.events[i], want[i])
		}
	}

	if len(l.lines) != 3 {
		t.Fatalf("log lines=%+v", l.lines)
	}
	if l.lines[0].level != "debug" || l.lines[0].f["kind"] != "unknown_tag" {
		t.Fatalf("decode log=%+v", l.lines[0])
	}
	if l.lines[2].level != "warn" || l.lines[2].f["max_depth"] != 2 {
		t.Fatalf("depth log=%+v", l.lines[2])
	}
}

func TestSuccessfulCallsAreSilent(t *testing.T) {
	h := &recHooks{}
	l := &recLogger{}
	c := New(Options{Hooks: h, Logger: l})
	b, err := c.Encode(Array{Int(1), Text("x")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode(b); err != nil {
		t.Fatal(err)
	}
	if len(h.events) != 0 || len(l.lines) != 0 {
		t.Fatalf("unexpected events %+v / %+v", h.events, l.lines)
	}
}

package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/jamcodec"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("d", jamcodec.Fields{"b": 2, "a": 1})
	l.Info("i", nil)
	l.Warn("w", jamcodec.Fields{"err": errors.New("boom")})
	l.Error("e", jamcodec.Fields{"kind": "unknown_tag"})

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("entries=%d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d level=%v want %v", i, e.Level, wantLevels[i])
		}
	}
	if f := entries[0].Context; len(f) != 2 || f[0].Key != "a" || f[1].Key != "b" {
		t.Fatalf("fields not sorted: %+v", f)
	}
	if got := entries[2].ContextMap()["err"]; got != "boom" {
		t.Fatalf("err field=%v", got)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("nil fields produced %+v", entries[1].Context)
	}
}

func TestCodecLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := jamcodec.New(jamcodec.Options{Logger: ZapLogger{L: zap.New(core)}})
	if _, err := c.Decode([]byte{0x02}); err == nil {
		t.Fatal("expected error")
	}
	if logs.Len() != 1 {
		t.Fatalf("entries=%d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["kind"]; got != "truncated_input" {
		t.Fatalf("kind=%v", got)
	}
}

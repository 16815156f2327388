package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	l, err := New("warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) || !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn level not applied")
	}

	l, err = New("nonsense")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("unknown level must fall back to info")
	}
}

func TestNamed_NilBase(t *testing.T) {
	if Named(nil, "x") == nil {
		t.Fatal("Named(nil) must return a usable logger")
	}
}

func TestMust_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Must(nil, errTest{})
}

type errTest struct{}

func (errTest) Error() string { return "boom" }

package monitoring

import (
	"fmt"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	// Save original logger
	original := Logf
	defer func() { Logf = original }()

	// Test setting a custom logger
	called := false
	customLogger := func(format string, v ...interface{}) {
		called = true
	}

	SetLogger(customLogger)
	Logf("test message")

	if !called {
		t.Error("Custom logger was not called")
	}

	// Test setting nil logger (should create no-op)
	SetLogger(nil)
	// This should not panic
	Logf("test message")

	// Now set a real logger again and verify the no-op did not stick
	noOpCalled := false
	SetLogger(func(format string, v ...interface{}) {
		noOpCalled = true
	})
	Logf("test")
	if !noOpCalled {
		t.Error("Test logger should have been called")
	}

	noOpCalled = false
	SetLogger(nil)
	Logf("test")
	if noOpCalled {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}

func TestSetEmitter(t *testing.T) {
	defer SetEmitter(nil)

	var gotLevel Level
	var gotMsg string
	var gotContext map[string]interface{}
	SetEmitter(func(level Level, msg string, context map[string]interface{}) {
		gotLevel = level
		gotMsg = msg
		gotContext = context
	})

	Warn("sample rejected", map[string]interface{}{"hr": 400.0})

	if gotLevel != LevelWarn {
		t.Errorf("level = %s, want %s", gotLevel, LevelWarn)
	}
	if gotMsg != "sample rejected" {
		t.Errorf("msg = %q", gotMsg)
	}
	if gotContext["hr"] != 400.0 {
		t.Errorf("context = %v", gotContext)
	}
}

func TestDefaultEmit_SortedFields(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()
	defer SetEmitter(nil)

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	SetEmitter(nil)

	Info("stats", map[string]interface{}{"b": 2, "a": 1, "c": 3})

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "a=1 b=2 c=3") {
		t.Errorf("fields not sorted: %q", lines[0])
	}
	if !strings.HasPrefix(lines[0], "[info] stats") {
		t.Errorf("unexpected prefix: %q", lines[0])
	}
}

func TestEmitLevels(t *testing.T) {
	defer SetEmitter(nil)

	var levels []Level
	SetEmitter(func(level Level, msg string, context map[string]interface{}) {
		levels = append(levels, level)
	})

	Debug("d", nil)
	Info("i", nil)
	Warn("w", nil)
	Error("e", nil)

	want := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	if len(levels) != len(want) {
		t.Fatalf("got %d levels, want %d", len(levels), len(want))
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("levels[%d] = %s, want %s", i, levels[i], want[i])
		}
	}
}

package logging

import "testing"

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestGetLevelDefaultsToInfo(t *testing.T) {
	// Level is latched once per process; with no env configured in the
	// test run it must be info.
	if lvl := GetLevel(); lvl != LevelInfo {
		t.Skipf("level configured by environment: %s", lvl)
	}
	if IsDebugEnabled() {
		t.Error("debug should not be enabled at info level")
	}
}

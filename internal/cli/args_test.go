package cli

import (
	"testing"

	"github.com/killo431/profilesave/internal/types"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  types.LogLevel
	}{
		{"debug", types.LogLevelDebug},
		{"5", types.LogLevelDebug},
		{"info", types.LogLevelInfo},
		{"4", types.LogLevelInfo},
		{"warning", types.LogLevelWarning},
		{"error", types.LogLevelError},
		{"critical", types.LogLevelCritical},
		{"none", types.LogLevelNone},
		{"0", types.LogLevelNone},
		{"bogus", types.LogLevelInfo},
		{"", types.LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name string
		want zapcore.Level
	}{
		{name: "debug", want: zapcore.DebugLevel},
		{name: "warn", want: zapcore.WarnLevel},
		{name: "ERROR", want: zapcore.ErrorLevel},
		{name: "bogus", want: zapcore.InfoLevel},
	}
	for _, tt := range tests {
		SetLevel(tt.name)
		if Level() != tt.want {
			t.Fatalf("SetLevel(%q) -> %v, want %v", tt.name, Level(), tt.want)
		}
	}
}

package commands

import (
	"log/slog"
	"testing"
)

func TestVerboseRaisesLogLevelWithoutReplacingHandler(t *testing.T) {
	t.Cleanup(func() {
		verbose = false
		logLevel.Set(slog.LevelInfo)
		globalConfig = nil
		configLoadErr = nil
	})

	if logLevel.Level() != slog.LevelInfo {
		t.Fatalf("default level = %v, want info", logLevel.Level())
	}

	prev := slog.Default()
	verbose = true
	initConfig()

	if logLevel.Level() != slog.LevelDebug {
		t.Fatalf("level after --verbose = %v, want debug", logLevel.Level())
	}
	// The handler is installed once in Execute; initConfig only adjusts
	// the shared level, so earlier log lines share the same handler.
	if slog.Default() != prev {
		t.Fatal("initConfig must not replace the default handler")
	}
}

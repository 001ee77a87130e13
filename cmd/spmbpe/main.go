package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lexigo/spmbpe/logutil"
)

func main() {
	slog.SetDefault(logutil.NewLogger(os.Stderr, logLevel()))

	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logLevel reads SPMBPE_DEBUG: unset or "0" logs at Info, "1" logs at
// Debug, "trace" drops to logutil.LevelTrace.
func logLevel() slog.Level {
	switch os.Getenv("SPMBPE_DEBUG") {
	case "trace":
		return logutil.LevelTrace
	case "1":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

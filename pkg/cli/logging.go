package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// newLogger builds the process logger. "json" writes slog JSON records;
// "text" uses charmbracelet/log, styled on a terminal and logfmt otherwise.
func newLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	case "", "text":
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Level:           charmLevel(level),
		})
		if !isTerminal(w) {
			handler.SetFormatter(charmlog.LogfmtFormatter)
		}
		return slog.New(handler), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q: use 'text' or 'json'", format)
	}
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

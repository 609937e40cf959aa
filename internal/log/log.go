package log

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// VerboseEnv enables debug output when set to "1".
const VerboseEnv = "S3HTML_VERBOSE"

var (
	PrintError  = color.New(color.FgRed).PrintlnFunc()
	PrintWarn   = color.New(color.FgYellow).PrintlnFunc()
	PrintInfo   = color.New(color.FgCyan).PrintlnFunc()
	PrintfInfo  = color.New(color.FgCyan).PrintfFunc()
	PrintResult = color.New(color.FgGreen).PrintlnFunc()
)

// Logger returns a logger writing to the current stdout at the level
// selected by VerboseEnv.
func Logger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv(VerboseEnv) == "1" {
		level = slog.LevelDebug
	}
	return slog.New(New(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func Info(msg string, v ...any) {
	Logger().Info(msg, v...)
}

func Debug(msg string, v ...any) {
	Logger().Debug(msg, v...)
}

func Warn(msg string, v ...any) {
	Logger().Warn(msg, v...)
}

func Error(msg string, v ...any) {
	Logger().Error(msg, v...)
}

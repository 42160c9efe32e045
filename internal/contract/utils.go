package contract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	HighColor        = color.New(color.FgGreen, color.Bold) // HighColor marks a well supported prediction.
	MediumColor      = color.New(color.FgYellow)            // MediumColor marks a marginal prediction.
	LowColor         = color.New(color.FgCyan)              // LowColor marks an informational, weakly supported prediction.
	SignificantColor = color.New(color.FgMagenta, color.Bold)
	UnknownColor     = color.New(color.FgRed)
)

// GetPlainLabel returns the plain confidence label used for CSV, JSON, and table printing.
func GetPlainLabel(c schema.Confidence) string {
	switch c {
	case schema.HighConfidence, schema.MediumConfidence:
		return string(c)
	default:
		return string(schema.LowConfidence)
	}
}

// GetColorLabel returns a colored confidence label for console output (table).
func GetColorLabel(c schema.Confidence) string {
	text := GetPlainLabel(c)

	switch schema.Confidence(text) {
	case schema.HighConfidence:
		return HighColor.Sprint(text)
	case schema.MediumConfidence:
		return MediumColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// GetSignificanceLabel returns "*" for significant p-values, colored when requested.
func GetSignificanceLabel(p float64, useColors bool) string {
	marker := schema.SignificanceMarker(p)
	if marker == "" || !useColors {
		return marker
	}
	return SignificantColor.Sprint(marker)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// ParseLogLevel maps a level name onto a slog level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", s)
	}
}

// NewLogger builds the diagnostic logger. Diagnostics go to stderr so that
// stdout stays reserved for command output and the MCP protocol.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// GetDBFilePath returns the path to the SQLite DB file for league and model storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".smartertips.db"
	}
	return filepath.Join(homeDir, ".smartertips.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for retrain run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".smartertips_runs.db"
	}
	return filepath.Join(homeDir, ".smartertips_runs.db")
}

// TruncateName truncates a name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
)

// Format controls the output format ("table" or "json").
var Format = "table"

// Destinations for command output and messages.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// JSON prints data as formatted JSON.
func JSON(data any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Table prints rows in a table format with headers.
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	fmt.Fprintln(w, strings.Repeat("─", len(headers)*16))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// Fields prints label/value pairs as a two column table.
func Fields(rows [][]string) {
	Table([]string{"FIELD", "VALUE"}, rows)
}

// Success prints a success message.
func Success(format string, args ...any) {
	fmt.Fprintf(Stdout, "✓ "+format+"\n", args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	fmt.Fprintf(Stderr, "⚠ "+format+"\n", args...)
}

// Logger returns a logger writing to Stderr at the named level. Log lines
// are JSON when the output format is JSON.
func Logger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if Format == "json" {
		return slog.New(slog.NewJSONHandler(Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(Stderr, opts)), nil
}

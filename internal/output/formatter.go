// Package output provides formatting utilities for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Writer handles formatted output to a destination.
type Writer struct {
	dest io.Writer
}

// NewWriterTo creates a writer on an arbitrary destination.
func NewWriterTo(dest io.Writer) *Writer {
	return &Writer{dest: dest}
}

// WriteJSON encodes a value as pretty-printed JSON.
func (w *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(w.dest)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTable writes tab-aligned columns under an upper-cased header.
func (w *Writer) WriteTable(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w.dest, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

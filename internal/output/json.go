package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/klytics/salesdash/cmd/version"
	"github.com/klytics/salesdash/internal/sales"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success, including the "nothing to do" early exits
	ExitUserError   = 1 // bad flags, bad config, invalid cell values
	ExitSystemError = 2 // unreadable input, IO error, render failure
)

// JSONResult is the standard JSON output envelope for all commands.
type JSONResult struct {
	OK      bool        `json:"ok"`
	Command string      `json:"command"`
	Version string      `json:"version"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    int         `json:"code,omitempty"`
}

// PrintJSON writes a standard success JSON result to w.
func PrintJSON(w io.Writer, cmd string, data interface{}) error {
	return WriteJSONResult(w, JSONResult{
		OK:      true,
		Command: cmd,
		Version: version.Version,
		Data:    data,
	})
}

// PrintJSONError writes a standard error JSON result to w, classified by CodeFor.
func PrintJSONError(w io.Writer, cmd string, err error) error {
	result := JSONResult{
		OK:      false,
		Command: cmd,
		Version: version.Version,
		Error:   err.Error(),
		Code:    CodeFor(err),
	}
	if encErr := WriteJSONResult(w, result); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}

// WriteJSONResult encodes an envelope to w.
func WriteJSONResult(w io.Writer, result JSONResult) error {
	return NewWriterTo(w).WriteJSON(result)
}

// CodeFor classifies err into an exit code.
func CodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, sales.ErrInvalidValue):
		return ExitUserError
	default:
		return ExitSystemError
	}
}

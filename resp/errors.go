package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Error types for RESP operations.
// These errors help clients determine appropriate error handling strategy,
// particularly regarding connection management (close vs. retry).

// ErrIncomplete is returned by Check and Decode when the buffer ends before
// the frame does. It is a transient signal: append more bytes and retry from
// the same position.
var ErrIncomplete = errors.New("resp: incomplete frame")

// ErrFrameTooLarge is wrapped by a ParseError when a reader refuses to buffer
// a frame any further.
var ErrFrameTooLarge = errors.New("resp: frame exceeds maximum size")

// maxQuotedData bounds the offending bytes echoed in a ParseError message.
const maxQuotedData = 64

// ParseError represents a protocol grammar violation or a payload that failed
// conversion (invalid UTF-8, unparsable number).
//
// Common causes:
//   - Unknown type prefix
//   - Non-numeric or negative (other than -1) length
//   - Verbatim string shorter than 4 bytes or missing its ':' separator
//   - Boolean other than t/T/f/F
//   - Bulk string payload not followed by CRLF
//
// Connection handling: Connection should be CLOSED as framing state is lost
type ParseError struct {
	Message string
	Data    []byte // Offending bytes, if any
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	msg := "resp: parse error: " + e.Message
	if e.Data != nil {
		data := e.Data
		if len(data) > maxQuotedData {
			data = data[:maxQuotedData]
		}
		msg += " " + strconv.Quote(string(data))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - parse errors indicate corrupted state
func (e *ParseError) ShouldCloseConnection() bool {
	return true
}

// malformed copies data since it usually points into a reusable read buffer.
func malformed(message string, data []byte) *ParseError {
	return &ParseError{Message: message, Data: bytes.Clone(data)}
}

// ConnectionError wraps underlying I/O errors from connection operations.
// Used to distinguish network/connection issues from protocol errors.
//
// Common causes:
//   - Peer closed the connection in the middle of a frame
//   - Network timeout or context cancellation
//   - Connection reset
//
// Connection handling: Connection is already broken, CLOSE it
type ConnectionError struct {
	Op  string // Operation that failed (read, write)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("resp: connection error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is an interface for errors that indicate
// whether the connection should be closed.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection is a helper function to determine if an error
// requires closing the connection.
//
// Returns true for:
//   - ParseError
//   - ConnectionError
//   - any error of unknown type
//
// Returns false for:
//   - Error (a server error reply leaves the stream in sync)
//   - nil
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var reply Error
	if errors.As(err, &reply) {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close connection
	return true
}

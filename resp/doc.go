// Package resp provides a low-level wire protocol implementation for the
// REdis Serialization Protocol, covering RESP2 and the RESP3 type set.
//
// This package serves as a foundation for Redis clients. It focuses on
// correctness of framing and parsing, without imposing connection
// management on callers.
//
// # Core Types
//
// Value is a closed set of reply variants. Every variant is a plain Go type:
//
//   - Status, Error: single-line text replies
//   - Integer, Double, BigNumber, Bool, Nil: scalar replies
//   - BulkString, VerbatimString: length-prefixed binary payloads
//   - Array, Set, Push, Map: aggregates owning their children
//
// Consumers switch over the concrete types:
//
//	switch v := v.(type) {
//	case resp.Status:
//	case resp.BulkString:
//	case resp.Nil:
//	...
//	}
//
// # Framing and Parsing
//
// Parsing happens in two phases over a byte buffer. Check walks exactly one
// frame without materializing it and reports its length, or ErrIncomplete
// when more bytes are needed. Decode then builds the Value tree from a buffer
// known to hold a complete frame:
//
//	n, err := resp.Check(buf)
//	if errors.Is(err, resp.ErrIncomplete) {
//	    // read more bytes and retry from the same position
//	}
//	v, _, err := resp.Decode(buf[:n])
//
// ErrIncomplete never advances anything, so the same buffer can be checked
// again once more bytes were appended.
//
// # Requests
//
// Requests are always RESP arrays of bulk strings:
//
//	cmd := resp.NewCommand("SET").AddString("key").AddString("value")
//	err := resp.WriteCommand(w, cmd) // *3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n
//
// # Error Handling
//
// The package defines error types that indicate connection state:
//
//   - ParseError: malformed frame or payload, CLOSE connection
//   - ConnectionError: network/I/O error, connection already broken
//
// Use ShouldCloseConnection to determine error handling strategy:
//
//	if err != nil {
//	    if resp.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
//
// There is no maximum frame size at this layer. Connections reading from
// untrusted peers must bound their buffers themselves.
package resp

package resp

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
	"sync"
)

// Buffer pool for building requests
var bufferPool = sync.Pool{
	New: func() any {
		// Typical request is ~100 bytes, allocate 256 bytes
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

// Buffers grown past this size by a large request are not pooled.
const maxPooledBufferSize = 64 * 1024

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}

// AppendCommand appends the wire encoding of cmd to dst and returns the
// extended buffer.
// Format: *<argc>\r\n then $<len>\r\n<bytes>\r\n per element, name first.
func AppendCommand(dst []byte, cmd *Command) []byte {
	dst = appendHeader(dst, KindArray, int64(cmd.Len()))
	dst = appendBulk(dst, []byte(cmd.Name))
	for _, arg := range cmd.Args {
		dst = appendBulk(dst, arg)
	}
	return dst
}

// WriteCommand serializes cmd and writes it to w.
//
// Performance considerations:
//   - Uses bufio.Writer when available for buffered writes, then flushes it
//   - Falls back to pooled buffer for other io.Writer types, in a single Write
func WriteCommand(w io.Writer, cmd *Command) error {
	// Optimize for bufio.Writer (used by Connection)
	if bw, ok := w.(*bufio.Writer); ok {
		return writeCommandBuffered(bw, cmd)
	}

	// Fallback to bytes.Buffer approach for other writers (tests, etc.)
	return writeCommandUnbuffered(w, cmd)
}

// writeCommandBuffered writes using bufio.Writer. Errors are sticky in the
// bufio.Writer and reported by Flush.
func writeCommandBuffered(bw *bufio.Writer, cmd *Command) error {
	bw.Write(appendHeader(bw.AvailableBuffer(), KindArray, int64(cmd.Len())))
	writeBulkBuffered(bw, []byte(cmd.Name))
	for _, arg := range cmd.Args {
		writeBulkBuffered(bw, arg)
	}

	// Flush to ensure all data is written
	return bw.Flush()
}

func writeBulkBuffered(bw *bufio.Writer, arg []byte) {
	bw.Write(appendHeader(bw.AvailableBuffer(), KindBulkString, int64(len(arg))))
	bw.Write(arg)
	bw.WriteString(CRLF)
}

// writeCommandUnbuffered writes using a pooled buffer (for tests and non-buffered writers).
func writeCommandUnbuffered(w io.Writer, cmd *Command) error {
	buf := getBuffer()
	defer putBuffer(buf)

	buf.Write(AppendCommand(buf.AvailableBuffer(), cmd))
	_, err := w.Write(buf.Bytes())
	return err
}

func appendHeader(dst []byte, kind Kind, n int64) []byte {
	dst = append(dst, byte(kind))
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, CRLF...)
}

func appendBulk(dst []byte, b []byte) []byte {
	dst = appendHeader(dst, KindBulkString, int64(len(b)))
	dst = append(dst, b...)
	return append(dst, CRLF...)
}

func appendLine(dst []byte, kind Kind, line string) []byte {
	dst = append(dst, byte(kind))
	dst = append(dst, line...)
	return append(dst, CRLF...)
}

// AppendValue appends the RESP3 wire encoding of v to dst and returns the
// extended buffer. Nil, and a nil interface, are written as "_\r\n".
//
// Decode(AppendValue(nil, v)) yields a value Equal to v, provided text
// values hold no CR or LF and verbatim formats are 3 bytes long.
func AppendValue(dst []byte, v Value) []byte {
	switch v := v.(type) {
	case Error:
		return appendLine(dst, KindError, string(v))
	case Status:
		return appendLine(dst, KindStatus, string(v))
	case Integer:
		return appendHeader(dst, KindInteger, int64(v))
	case Double:
		return appendLine(dst, KindDouble, formatDouble(float64(v)))
	case BigNumber:
		return appendLine(dst, KindBigNumber, v.text())
	case Bool:
		if v {
			return appendLine(dst, KindBool, "t")
		}
		return appendLine(dst, KindBool, "f")
	case BulkString:
		return appendBulk(dst, v)
	case VerbatimString:
		dst = appendHeader(dst, KindVerbatimString, int64(len(v.Format)+1+len(v.Text)))
		dst = append(dst, v.Format...)
		dst = append(dst, ':')
		dst = append(dst, v.Text...)
		return append(dst, CRLF...)
	case Array:
		return appendValues(dst, KindArray, v)
	case Set:
		return appendValues(dst, KindSet, v)
	case Push:
		return appendValues(dst, KindPush, v)
	case Map:
		dst = appendHeader(dst, KindMap, int64(len(v)))
		for _, pair := range v {
			dst = AppendValue(dst, pair.Key)
			dst = AppendValue(dst, pair.Value)
		}
		return dst
	}
	return appendLine(dst, KindNil, "")
}

func appendValues(dst []byte, kind Kind, values []Value) []byte {
	dst = appendHeader(dst, kind, int64(len(values)))
	for _, v := range values {
		dst = AppendValue(dst, v)
	}
	return dst
}

// formatDouble renders a double the way RESP3 servers do: inf, -inf, nan,
// or the shortest representation that parses back to the same value.
func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

package resp

import (
	"bytes"
	"math"
	"math/big"
	"strconv"
	"unicode/utf8"
)

// Smallest encodings of a value and of a map pair ("_\r\n"), used to bound
// preallocation when the declared count is larger than the buffer can hold.
const (
	minValueSize = 3
	minPairSize  = 2 * minValueSize
)

// Check reports whether buf starts with one complete frame and returns the
// length of that frame in bytes.
//
// Check walks the frame once, recursing into aggregates, without
// materializing any value. It returns:
//   - ErrIncomplete if buf ends before the frame does
//   - *ParseError on an unknown type prefix or an invalid length
//
// Check never modifies buf. After ErrIncomplete, the caller appends more
// bytes and calls Check again on the same start position.
func Check(buf []byte) (int, error) {
	c := cursor{buf: buf}
	if err := c.check(); err != nil {
		return 0, err
	}
	return c.pos, nil
}

// Decode decodes the frame at the start of buf and returns it together with
// the number of bytes consumed.
//
// Decode is meant to run on a buffer that Check accepted, and then consumes
// exactly the bytes Check walked. On a truncated buffer it returns
// ErrIncomplete; it never reads past the end of buf.
//
// Payload conversion failures (invalid UTF-8 in status or error text,
// unparsable numbers, malformed verbatim strings or booleans) are returned as
// *ParseError.
func Decode(buf []byte) (Value, int, error) {
	c := cursor{buf: buf}
	v, err := c.decode()
	if err != nil {
		return nil, 0, err
	}
	return v, c.pos, nil
}

// cursor is a read position over a buffer.
type cursor struct {
	buf   []byte
	pos   int
	depth int
}

// descend enters an aggregate. Callers undo it with ascend.
func (c *cursor) descend() error {
	c.depth++
	if c.depth > maxNestingDepth {
		return malformed("nesting too deep", strconv.AppendInt(nil, int64(c.depth), 10))
	}
	return nil
}

func (c *cursor) ascend() {
	c.depth--
}

func (c *cursor) readKind() (Kind, error) {
	if c.pos >= len(c.buf) {
		return 0, ErrIncomplete
	}
	k := Kind(c.buf[c.pos])
	c.pos++
	return k, nil
}

// readLine returns the bytes up to the next CRLF and moves past it.
// The position is left untouched on ErrIncomplete. A LF that is not preceded
// by CR is malformed.
func (c *cursor) readLine() ([]byte, error) {
	rest := c.buf[c.pos:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		return nil, ErrIncomplete
	}
	if i == 0 || rest[i-1] != '\r' {
		return nil, malformed("line terminated by bare LF", rest[:i+1])
	}
	line := rest[:i-1]
	c.pos += i + 1
	return line, nil
}

// readLength reads a length or count line. -1 is returned as is (Nil).
func (c *cursor) readLength() (int64, error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	n, ok := parseInt(line)
	if !ok || n < nilLength {
		return 0, malformed("invalid length", line)
	}
	return n, nil
}

// readBlob returns the next n bytes, which must be followed by CRLF.
func (c *cursor) readBlob(n int64) ([]byte, error) {
	if int64(len(c.buf)-c.pos)-2 < n {
		return nil, ErrIncomplete
	}
	end := c.pos + int(n)
	if c.buf[end] != '\r' || c.buf[end+1] != '\n' {
		return nil, malformed("invalid blob terminator", c.buf[end:end+2])
	}
	blob := c.buf[c.pos:end]
	c.pos = end + 2
	return blob, nil
}

func (c *cursor) check() error {
	kind, err := c.readKind()
	if err != nil {
		return err
	}

	switch kind {
	case KindError, KindStatus, KindInteger, KindDouble, KindBigNumber, KindNil, KindBool:
		_, err := c.readLine()
		return err

	case KindBulkString, KindVerbatimString:
		n, err := c.readLength()
		if err != nil || n == nilLength {
			return err
		}
		_, err = c.readBlob(n)
		return err

	case KindArray, KindSet, KindPush:
		n, err := c.readLength()
		if err != nil || n == nilLength {
			return err
		}
		if err := c.descend(); err != nil {
			return err
		}
		defer c.ascend()
		for i := int64(0); i < n; i++ {
			if err := c.check(); err != nil {
				return err
			}
		}
		return nil

	case KindMap:
		n, err := c.readLength()
		if err != nil || n == nilLength {
			return err
		}
		if err := c.descend(); err != nil {
			return err
		}
		defer c.ascend()
		for i := int64(0); i < n; i++ {
			if err := c.check(); err != nil {
				return err
			}
			if err := c.check(); err != nil {
				return err
			}
		}
		return nil
	}

	return malformed("unknown type", []byte{byte(kind)})
}

func (c *cursor) decode() (Value, error) {
	kind, err := c.readKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindError:
		line, err := c.readText()
		if err != nil {
			return nil, err
		}
		return Error(line), nil

	case KindStatus:
		line, err := c.readText()
		if err != nil {
			return nil, err
		}
		return Status(line), nil

	case KindInteger:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		n, ok := parseInt(line)
		if !ok {
			return nil, malformed("invalid integer", line)
		}
		return Integer(n), nil

	case KindDouble:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if !isDecimalFloat(line) {
			return nil, malformed("invalid double", line)
		}
		f, err := strconv.ParseFloat(string(line), 64)
		if err != nil {
			return nil, &ParseError{Message: "invalid double", Data: bytes.Clone(line), Err: err}
		}
		return Double(f), nil

	case KindBigNumber:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if !isDecimalInteger(line) {
			return nil, malformed("invalid big number", line)
		}
		n, ok := new(big.Int).SetString(string(line), 10)
		if !ok {
			return nil, malformed("invalid big number", line)
		}
		return BigNumber{Int: n}, nil

	case KindNil:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if len(line) != 0 {
			return nil, malformed("invalid nil", line)
		}
		return Nil{}, nil

	case KindBool:
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if len(line) == 1 {
			switch line[0] {
			case 't', 'T':
				return Bool(true), nil
			case 'f', 'F':
				return Bool(false), nil
			}
		}
		return nil, malformed("invalid bool", line)

	case KindBulkString:
		n, err := c.readLength()
		if err != nil {
			return nil, err
		}
		if n == nilLength {
			return Nil{}, nil
		}
		blob, err := c.readBlob(n)
		if err != nil {
			return nil, err
		}
		return BulkString(bytes.Clone(blob)), nil

	case KindVerbatimString:
		n, err := c.readLength()
		if err != nil {
			return nil, err
		}
		if n == nilLength {
			return Nil{}, nil
		}
		if n < VerbatimFormatLength+1 {
			return nil, malformed("invalid verbatim string length", strconv.AppendInt(nil, n, 10))
		}
		blob, err := c.readBlob(n)
		if err != nil {
			return nil, err
		}
		if blob[VerbatimFormatLength] != ':' {
			return nil, malformed("missing verbatim string separator", blob)
		}
		return VerbatimString{
			Format: string(blob[:VerbatimFormatLength]),
			Text:   bytes.Clone(blob[VerbatimFormatLength+1:]),
		}, nil

	case KindArray, KindSet, KindPush:
		values, isNil, err := c.decodeValues()
		if err != nil {
			return nil, err
		}
		if isNil {
			return Nil{}, nil
		}
		switch kind {
		case KindSet:
			return Set(values), nil
		case KindPush:
			return Push(values), nil
		}
		return Array(values), nil

	case KindMap:
		n, err := c.readLength()
		if err != nil {
			return nil, err
		}
		if n == nilLength {
			return Nil{}, nil
		}
		if err := c.descend(); err != nil {
			return nil, err
		}
		defer c.ascend()
		pairs := make(Map, 0, c.capacity(n, minPairSize))
		for i := int64(0); i < n; i++ {
			key, err := c.decode()
			if err != nil {
				return nil, err
			}
			value, err := c.decode()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: key, Value: value})
		}
		return pairs, nil
	}

	return nil, malformed("unknown type", []byte{byte(kind)})
}

func (c *cursor) decodeValues() ([]Value, bool, error) {
	n, err := c.readLength()
	if err != nil {
		return nil, false, err
	}
	if n == nilLength {
		return nil, true, nil
	}
	if err := c.descend(); err != nil {
		return nil, false, err
	}
	defer c.ascend()
	values := make([]Value, 0, c.capacity(n, minValueSize))
	for i := int64(0); i < n; i++ {
		v, err := c.decode()
		if err != nil {
			return nil, false, err
		}
		values = append(values, v)
	}
	return values, false, nil
}

// readText reads a line that must be valid UTF-8.
func (c *cursor) readText() (string, error) {
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(line) {
		return "", malformed("invalid UTF-8 text", line)
	}
	return string(line), nil
}

// capacity bounds a declared element count by what the remaining bytes can hold.
func (c *cursor) capacity(n int64, elemSize int) int {
	limit := int64((len(c.buf) - c.pos) / elemSize)
	return int(min(n, limit))
}

// parseInt parses an optional '-' followed by ASCII digits. Unlike strconv it
// rejects '+', whitespace and '_', and it does not allocate.
func parseInt(b []byte) (int64, bool) {
	digits := b
	neg := len(b) > 0 && b[0] == '-'
	if neg {
		digits = b[1:]
	}
	// 19 digits cannot overflow a uint64
	if len(digits) == 0 || len(digits) > 19 {
		return 0, false
	}

	var n uint64
	for _, d := range digits {
		if d < '0' || d > '9' {
			return 0, false
		}
		n = n*10 + uint64(d-'0')
	}

	if neg {
		if n > math.MaxInt64+1 {
			return 0, false
		}
		return -int64(n), true
	}
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// isDecimalInteger reports whether b is an optional '-' followed by at least
// one ASCII digit, with no length limit.
func isDecimalInteger(b []byte) bool {
	if len(b) > 0 && b[0] == '-' {
		b = b[1:]
	}
	return len(b) > 0 && skipDigits(b) == len(b)
}

// isDecimalFloat accepts inf, -inf and nan, or an optional '-', digits, an
// optional fraction and an optional exponent. A leading '+', hex floats and
// '_' separators are rejected.
func isDecimalFloat(b []byte) bool {
	if bytes.EqualFold(b, []byte("inf")) || bytes.EqualFold(b, []byte("-inf")) || bytes.EqualFold(b, []byte("nan")) {
		return true
	}

	if len(b) > 0 && b[0] == '-' {
		b = b[1:]
	}
	n := skipDigits(b)
	if n == 0 {
		return false
	}
	b = b[n:]

	if len(b) > 0 && b[0] == '.' {
		b = b[1:]
		b = b[skipDigits(b):]
	}

	if len(b) > 0 && (b[0] == 'e' || b[0] == 'E') {
		b = b[1:]
		if len(b) > 0 && (b[0] == '+' || b[0] == '-') {
			b = b[1:]
		}
		n := skipDigits(b)
		if n == 0 {
			return false
		}
		b = b[n:]
	}

	return len(b) == 0
}

// skipDigits returns the length of the leading run of ASCII digits.
func skipDigits(b []byte) int {
	for i, d := range b {
		if d < '0' || d > '9' {
			return i
		}
	}
	return len(b)
}

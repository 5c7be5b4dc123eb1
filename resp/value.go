package resp

import (
	"bytes"
	"math/big"
	"strconv"
	"strings"
)

// Value is a single decoded RESP reply.
//
// The set of implementations is closed: Error, Status, Integer, Double,
// BigNumber, Nil, Bool, BulkString, VerbatimString, Array, Set, Push and Map.
// Aggregates own their children, so a Value is a tree.
type Value interface {
	// Kind returns the wire kind of the value.
	Kind() Kind

	// String returns a debug representation.
	String() string

	sealed()
}

// Error is an error reply (-). It also implements the error interface so
// callers can return it as-is.
type Error string

// Status is a simple string reply (+).
type Status string

// Integer is a signed 64-bit integer reply (:).
type Integer int64

// Double is a floating point reply (,).
type Double float64

// BigNumber is an arbitrary-precision integer reply (().
type BigNumber struct {
	Int *big.Int
}

// Nil is the null reply (_), also produced by length -1 on length-prefixed kinds.
type Nil struct{}

// Bool is a boolean reply (#).
type Bool bool

// BulkString is a binary-safe string reply ($).
type BulkString []byte

// VerbatimString is a string reply carrying a 3-byte format tag (=),
// for example "txt" or "mkd".
type VerbatimString struct {
	Format string
	Text   []byte
}

// Array is an ordered aggregate (*).
type Array []Value

// Set is an unordered aggregate (~). Elements are kept in the order received.
type Set []Value

// Push is an out-of-band aggregate sent by the server (>).
type Push []Value

// Map is an aggregate of key/value pairs (%), in the order received.
type Map []Pair

// Pair is a single Map entry.
type Pair struct {
	Key   Value
	Value Value
}

func (Error) Kind() Kind          { return KindError }
func (Status) Kind() Kind         { return KindStatus }
func (Integer) Kind() Kind        { return KindInteger }
func (Double) Kind() Kind         { return KindDouble }
func (BigNumber) Kind() Kind      { return KindBigNumber }
func (Nil) Kind() Kind            { return KindNil }
func (Bool) Kind() Kind           { return KindBool }
func (BulkString) Kind() Kind     { return KindBulkString }
func (VerbatimString) Kind() Kind { return KindVerbatimString }
func (Array) Kind() Kind          { return KindArray }
func (Set) Kind() Kind            { return KindSet }
func (Push) Kind() Kind           { return KindPush }
func (Map) Kind() Kind            { return KindMap }

func (Error) sealed()          {}
func (Status) sealed()         {}
func (Integer) sealed()        {}
func (Double) sealed()         {}
func (BigNumber) sealed()      {}
func (Nil) sealed()            {}
func (Bool) sealed()           {}
func (BulkString) sealed()     {}
func (VerbatimString) sealed() {}
func (Array) sealed()          {}
func (Set) sealed()            {}
func (Push) sealed()           {}
func (Map) sealed()            {}

func (e Error) Error() string { return string(e) }

// Prefix returns the error code, the first word of the message (e.g. "ERR", "WRONGTYPE").
func (e Error) Prefix() string {
	code, _, _ := strings.Cut(string(e), " ")
	return code
}

func (e Error) String() string          { return "Error(" + strconv.Quote(string(e)) + ")" }
func (s Status) String() string         { return "Status(" + strconv.Quote(string(s)) + ")" }
func (i Integer) String() string        { return "Integer(" + strconv.FormatInt(int64(i), 10) + ")" }
func (d Double) String() string         { return "Double(" + formatDouble(float64(d)) + ")" }
func (n BigNumber) String() string      { return "BigNumber(" + n.text() + ")" }
func (Nil) String() string              { return "Nil" }
func (b Bool) String() string           { return "Bool(" + strconv.FormatBool(bool(b)) + ")" }
func (b BulkString) String() string     { return "BulkString(" + strconv.Quote(string(b)) + ")" }
func (v VerbatimString) String() string { return "VerbatimString(" + v.Format + ", " + strconv.Quote(string(v.Text)) + ")" }
func (a Array) String() string          { return "Array" + formatValues(a) }
func (s Set) String() string            { return "Set" + formatValues(s) }
func (p Push) String() string           { return "Push" + formatValues(p) }

func (m Map) String() string {
	var sb strings.Builder
	sb.WriteString("Map[")
	for i, pair := range m {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pair.Key.String())
		sb.WriteString(": ")
		sb.WriteString(pair.Value.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (n BigNumber) text() string {
	if n.Int == nil {
		return "0"
	}
	return n.Int.String()
}

func formatValues(values []Value) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// IsNil reports whether v is the Nil reply.
func IsNil(v Value) bool {
	_, ok := v.(Nil)
	return ok
}

// Equal reports whether a and b are structurally equal.
// Doubles compare by bit pattern so NaN equals NaN.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch a := a.(type) {
	case Error:
		b, ok := b.(Error)
		return ok && a == b
	case Status:
		b, ok := b.(Status)
		return ok && a == b
	case Integer:
		b, ok := b.(Integer)
		return ok && a == b
	case Double:
		b, ok := b.(Double)
		return ok && formatDouble(float64(a)) == formatDouble(float64(b))
	case BigNumber:
		b, ok := b.(BigNumber)
		return ok && a.text() == b.text()
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case BulkString:
		b, ok := b.(BulkString)
		return ok && bytes.Equal(a, b)
	case VerbatimString:
		b, ok := b.(VerbatimString)
		return ok && a.Format == b.Format && bytes.Equal(a.Text, b.Text)
	case Array:
		b, ok := b.(Array)
		return ok && equalValues(a, b)
	case Set:
		b, ok := b.(Set)
		return ok && equalValues(a, b)
	case Push:
		b, ok := b.(Push)
		return ok && equalValues(a, b)
	case Map:
		b, ok := b.(Map)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i].Key, b[i].Key) || !Equal(a[i].Value, b[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func equalValues(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

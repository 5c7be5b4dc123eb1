package resp

// Kind identifies the variant of a Value. Its value is the wire prefix byte.
type Kind byte

// Protocol delimiters
const (
	// CRLF is the line terminator for every RESP line
	CRLF = "\r\n"
)

// Value kinds, keyed by their wire prefix.
const (
	KindError          Kind = '-' // -<text>\r\n
	KindStatus         Kind = '+' // +<text>\r\n
	KindInteger        Kind = ':' // :<int64>\r\n
	KindDouble         Kind = ',' // ,<float>\r\n
	KindBigNumber      Kind = '(' // (<big integer>\r\n
	KindNil            Kind = '_' // _\r\n
	KindBool           Kind = '#' // #t\r\n or #f\r\n
	KindBulkString     Kind = '$' // $<len>\r\n<bytes>\r\n
	KindVerbatimString Kind = '=' // =<len>\r\n<fmt>:<text>\r\n
	KindArray          Kind = '*' // *<len>\r\n<value>*
	KindSet            Kind = '~' // ~<len>\r\n<value>*
	KindPush           Kind = '>' // ><len>\r\n<value>*
	KindMap            Kind = '%' // %<len>\r\n(<key><value>)*
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindStatus:
		return "status"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindBigNumber:
		return "big number"
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindBulkString:
		return "bulk string"
	case KindVerbatimString:
		return "verbatim string"
	case KindArray:
		return "array"
	case KindSet:
		return "set"
	case KindPush:
		return "push"
	case KindMap:
		return "map"
	}
	return "unknown(" + string(rune(k)) + ")"
}

// Protocol limits
const (
	// VerbatimFormatLength is the size of the format tag of a verbatim string
	VerbatimFormatLength = 3

	// maxNestingDepth bounds how many aggregates a frame may nest
	maxNestingDepth = 512

	// nilLength is the declared length that encodes Nil for length-prefixed types
	nilLength = -1
)

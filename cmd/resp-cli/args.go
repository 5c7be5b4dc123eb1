package main

import (
	"errors"
	"strconv"
	"strings"
)

var errUnbalancedQuotes = errors.New("unbalanced quotes")

// splitArgs splits a line into arguments like redis-cli: words are
// separated by spaces, double quotes support escapes (\n, \xHH, ...) and
// single quotes are literal except for \'.
func splitArgs(line string) ([]string, error) {
	var args []string
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			return args, nil
		}

		var arg strings.Builder
		for i < len(line) && !isSpace(line[i]) {
			switch line[i] {
			case '"':
				end, err := scanDoubleQuoted(line, i, &arg)
				if err != nil {
					return nil, err
				}
				i = end
			case '\'':
				end, err := scanSingleQuoted(line, i, &arg)
				if err != nil {
					return nil, err
				}
				i = end
			default:
				arg.WriteByte(line[i])
				i++
			}
		}
		args = append(args, arg.String())
	}
}

// scanDoubleQuoted reads a double quoted string starting at line[start]
// and returns the index after the closing quote.
func scanDoubleQuoted(line string, start int, arg *strings.Builder) (int, error) {
	i := start + 1
	for i < len(line) {
		c := line[i]
		switch {
		case c == '"':
			return closingQuote(line, i)
		case c == '\\' && i+3 < len(line) && line[i+1] == 'x' && isHex(line[i+2]) && isHex(line[i+3]):
			n, _ := strconv.ParseUint(line[i+2:i+4], 16, 8)
			arg.WriteByte(byte(n))
			i += 4
		case c == '\\' && i+1 < len(line):
			switch e := line[i+1]; e {
			case 'n':
				arg.WriteByte('\n')
			case 'r':
				arg.WriteByte('\r')
			case 't':
				arg.WriteByte('\t')
			case 'b':
				arg.WriteByte('\b')
			case 'a':
				arg.WriteByte('\a')
			default:
				arg.WriteByte(e)
			}
			i += 2
		default:
			arg.WriteByte(c)
			i++
		}
	}
	return 0, errUnbalancedQuotes
}

func scanSingleQuoted(line string, start int, arg *strings.Builder) (int, error) {
	i := start + 1
	for i < len(line) {
		c := line[i]
		switch {
		case c == '\'':
			return closingQuote(line, i)
		case c == '\\' && i+1 < len(line) && line[i+1] == '\'':
			arg.WriteByte('\'')
			i += 2
		default:
			arg.WriteByte(c)
			i++
		}
	}
	return 0, errUnbalancedQuotes
}

// closingQuote requires the quote at line[i] to end the argument.
func closingQuote(line string, i int) (int, error) {
	if i+1 < len(line) && !isSpace(line[i+1]) {
		return 0, errUnbalancedQuotes
	}
	return i + 1, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

package resp

import (
	"strconv"
)

// Command represents a request: a command name and its arguments, sent as
// a RESP array of bulk strings.
// This is a low-level container without serialization logic; see
// AppendCommand and WriteCommand.
type Command struct {
	// Name is the command name, e.g. "GET" or "SET"
	Name string

	// Args are the arguments, opaque bytes sent as bulk strings
	Args [][]byte
}

// NewCommand creates a command with the given arguments.
//
// The Add* methods return the command so arguments can be chained:
//
//	cmd := resp.NewCommand("SET").AddString("key").AddBytes(value).AddString("NX")
func NewCommand(name string, args ...[]byte) *Command {
	return &Command{Name: name, Args: args}
}

func (c *Command) AddBytes(arg []byte) *Command {
	c.Args = append(c.Args, arg)
	return c
}

func (c *Command) AddString(arg string) *Command {
	c.Args = append(c.Args, []byte(arg))
	return c
}

func (c *Command) AddInt(n int64) *Command {
	c.Args = append(c.Args, strconv.AppendInt(nil, n, 10))
	return c
}

func (c *Command) AddUint(n uint64) *Command {
	c.Args = append(c.Args, strconv.AppendUint(nil, n, 10))
	return c
}

// Len returns the number of elements of the request array (name included).
func (c *Command) Len() int {
	return len(c.Args) + 1
}

// String returns the command name and argument count; arguments are not
// included since they may hold user data.
func (c *Command) String() string {
	return c.Name + " (" + strconv.Itoa(len(c.Args)) + " args)"
}

package redis

import (
	"bytes"
	"io"
	"log/slog"
	"math/big"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/redcon"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func bigFromString(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

// createListener starts a raw TCP server, each connection served by handler.
func createListener(t testing.TB, handler func(conn net.Conn)) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "Failed to start test server")

	t.Cleanup(func() {
		listener.Close()
	})

	// Accept connections in background
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

// scriptedResponder answers each request read from the connection with the
// next raw reply, then closes the connection.
func scriptedResponder(replies ...string) func(conn net.Conn) {
	return func(conn net.Conn) {
		rd := redcon.NewReader(conn)
		for _, reply := range replies {
			if _, err := rd.ReadCommand(); err != nil {
				return
			}
			if _, err := conn.Write([]byte(reply)); err != nil {
				return
			}
		}
	}
}

// fakeRedis is an in-memory server implementing the string commands.
type fakeRedis struct {
	mu       sync.Mutex
	data     map[string][]byte
	expires  map[string]string // last expiration option per key
	commands []string
}

func newFakeRedis(t testing.TB) (*fakeRedis, string) {
	f := &fakeRedis{
		data:    map[string][]byte{},
		expires: map[string]string{},
	}

	srv := redcon.NewServer("127.0.0.1:0", f.handle, nil, nil)
	signal := make(chan error, 1)
	go srv.ListenServeAndSignal(signal)
	require.NoError(t, <-signal)

	t.Cleanup(func() {
		srv.Close()
	})

	return f, srv.Addr().String()
}

func (f *fakeRedis) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func (f *fakeRedis) Expire(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expires[key]
}

func (f *fakeRedis) Value(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func protocolOf(conn redcon.Conn) int {
	if proto, ok := conn.Context().(int); ok {
		return proto
	}
	return 2
}

func writeNil(conn redcon.Conn) {
	if protocolOf(conn) == 3 {
		conn.WriteRaw([]byte("_\r\n"))
		return
	}
	conn.WriteNull()
}

func writeValue(conn redcon.Conn, v []byte, ok bool) {
	if !ok {
		writeNil(conn)
		return
	}
	conn.WriteBulk(v)
}

func (f *fakeRedis) handle(conn redcon.Conn, cmd redcon.Command) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := strings.ToUpper(string(cmd.Args[0]))
	args := cmd.Args[1:]
	f.commands = append(f.commands, name)

	wrongArgs := func() {
		conn.WriteError("ERR wrong number of arguments for '" + strings.ToLower(name) + "' command")
	}

	switch name {
	case "PING":
		conn.WriteString("PONG")

	case "HELLO":
		proto := 2
		if len(args) > 0 {
			n, err := strconv.Atoi(string(args[0]))
			if err != nil || (n != 2 && n != 3) {
				conn.WriteError("NOPROTO unsupported protocol version")
				return
			}
			proto = n
		}
		conn.SetContext(proto)
		if proto == 3 {
			conn.WriteRaw([]byte("%2\r\n$6\r\nserver\r\n$5\r\nredis\r\n$5\r\nproto\r\n:3\r\n"))
			return
		}
		conn.WriteArray(4)
		conn.WriteBulkString("server")
		conn.WriteBulkString("redis")
		conn.WriteBulkString("proto")
		conn.WriteInt(2)

	case "GET":
		if len(args) != 1 {
			wrongArgs()
			return
		}
		v, ok := f.data[string(args[0])]
		writeValue(conn, v, ok)

	case "SET":
		f.set(conn, args)

	case "DEL":
		if len(args) == 0 {
			wrongArgs()
			return
		}
		n := 0
		for _, key := range args {
			if _, ok := f.data[string(key)]; ok {
				delete(f.data, string(key))
				n++
			}
		}
		conn.WriteInt(n)

	case "MSET", "MSETNX":
		if len(args) == 0 || len(args)%2 != 0 {
			wrongArgs()
			return
		}
		if name == "MSETNX" {
			for i := 0; i < len(args); i += 2 {
				if _, ok := f.data[string(args[i])]; ok {
					conn.WriteInt(0)
					return
				}
			}
		}
		for i := 0; i < len(args); i += 2 {
			f.data[string(args[i])] = bytes.Clone(args[i+1])
		}
		if name == "MSETNX" {
			conn.WriteInt(1)
			return
		}
		conn.WriteString("OK")

	case "MGET":
		if len(args) == 0 {
			wrongArgs()
			return
		}
		conn.WriteArray(len(args))
		for _, key := range args {
			v, ok := f.data[string(key)]
			writeValue(conn, v, ok)
		}

	case "INCR", "DECR", "INCRBY", "DECRBY":
		delta := int64(1)
		if name == "INCRBY" || name == "DECRBY" {
			if len(args) != 2 {
				wrongArgs()
				return
			}
			n, err := strconv.ParseInt(string(args[1]), 10, 64)
			if err != nil {
				conn.WriteError("ERR value is not an integer or out of range")
				return
			}
			delta = n
		} else if len(args) != 1 {
			wrongArgs()
			return
		}
		if strings.HasPrefix(name, "DECR") {
			delta = -delta
		}

		key := string(args[0])
		current := int64(0)
		if v, ok := f.data[key]; ok {
			n, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				conn.WriteError("ERR value is not an integer or out of range")
				return
			}
			current = n
		}
		current += delta
		f.data[key] = strconv.AppendInt(nil, current, 10)
		conn.WriteInt64(current)

	case "APPEND":
		if len(args) != 2 {
			wrongArgs()
			return
		}
		key := string(args[0])
		f.data[key] = append(f.data[key], args[1]...)
		conn.WriteInt(len(f.data[key]))

	case "STRLEN":
		if len(args) != 1 {
			wrongArgs()
			return
		}
		conn.WriteInt(len(f.data[string(args[0])]))

	case "SETRANGE":
		if len(args) != 3 {
			wrongArgs()
			return
		}
		offset, err := strconv.Atoi(string(args[1]))
		if err != nil || offset < 0 {
			conn.WriteError("ERR offset is out of range")
			return
		}
		key := string(args[0])
		v := f.data[key]
		if end := offset + len(args[2]); end > len(v) {
			v = append(v, make([]byte, end-len(v))...)
		}
		copy(v[offset:], args[2])
		f.data[key] = v
		conn.WriteInt(len(v))

	case "GETRANGE":
		if len(args) != 3 {
			wrongArgs()
			return
		}
		start, err1 := strconv.Atoi(string(args[1]))
		end, err2 := strconv.Atoi(string(args[2]))
		if err1 != nil || err2 != nil {
			conn.WriteError("ERR value is not an integer or out of range")
			return
		}
		conn.WriteBulk(getRange(f.data[string(args[0])], start, end))

	case "FLUSHALL":
		if len(args) > 1 {
			conn.WriteError("ERR syntax error")
			return
		}
		clear(f.data)
		clear(f.expires)
		conn.WriteString("OK")

	default:
		conn.WriteError("ERR unknown command '" + strings.ToLower(name) + "'")
	}
}

// set implements SET key value [EX|PX|EXAT|PXAT n | KEEPTTL] [NX|XX] [GET].
func (f *fakeRedis) set(conn redcon.Conn, args [][]byte) {
	if len(args) < 2 {
		conn.WriteError("ERR wrong number of arguments for 'set' command")
		return
	}
	key, value := string(args[0]), args[1]

	var expire, condition string
	var get bool
	for i := 2; i < len(args); i++ {
		switch opt := strings.ToUpper(string(args[i])); opt {
		case "EX", "PX", "EXAT", "PXAT":
			if expire != "" || i+1 >= len(args) {
				conn.WriteError("ERR syntax error")
				return
			}
			if _, err := strconv.ParseUint(string(args[i+1]), 10, 64); err != nil {
				conn.WriteError("ERR value is not an integer or out of range")
				return
			}
			expire = opt + " " + string(args[i+1])
			i++
		case "KEEPTTL":
			if expire != "" {
				conn.WriteError("ERR syntax error")
				return
			}
			expire = opt
		case "NX", "XX":
			if condition != "" {
				conn.WriteError("ERR syntax error")
				return
			}
			condition = opt
		case "GET":
			get = true
		default:
			conn.WriteError("ERR syntax error")
			return
		}
	}

	old, exists := f.data[key]
	apply := condition == "" || (condition == "NX" && !exists) || (condition == "XX" && exists)
	if apply {
		f.data[key] = bytes.Clone(value)
		if expire != "KEEPTTL" {
			f.expires[key] = expire
		}
	}

	switch {
	case get:
		writeValue(conn, old, exists)
	case apply:
		conn.WriteString("OK")
	default:
		writeNil(conn)
	}
}

func getRange(v []byte, start, end int) []byte {
	n := len(v)
	if start < 0 {
		start = n + start
	}
	if end < 0 {
		end = n + end
	}
	start = max(start, 0)
	end = max(end, 0)
	if end >= n {
		end = n - 1
	}
	if n == 0 || start > end {
		return []byte{}
	}
	return v[start : end+1]
}

// blockingServer accepts connections and never answers.
func blockingServer(t testing.TB) string {
	return createListener(t, func(conn net.Conn) {
		io.Copy(io.Discard, conn)
	})
}

func waitFor(t testing.TB, condition func() bool) {
	t.Helper()
	require.Eventually(t, condition, time.Second, 5*time.Millisecond)
}

package testutils

import (
	"net"
	"time"
)

// RepeatingConn is a net.Conn answering every Read with the same reply,
// from a single goroutine. Writes are discarded. It suits benchmarks where
// each request gets exactly one reply.
type RepeatingConn struct {
	reply   []byte
	pending []byte
	written int
}

func NewRepeatingConn(reply string) *RepeatingConn {
	return &RepeatingConn{reply: []byte(reply)}
}

func (c *RepeatingConn) Read(b []byte) (int, error) {
	if len(c.pending) == 0 {
		c.pending = c.reply
	}
	n := copy(b, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *RepeatingConn) Write(b []byte) (int, error) {
	c.written += len(b)
	return len(b), nil
}

// Written returns the number of bytes written.
func (c *RepeatingConn) Written() int { return c.written }

func (c *RepeatingConn) Close() error                     { return nil }
func (c *RepeatingConn) LocalAddr() net.Addr              { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *RepeatingConn) RemoteAddr() net.Addr             { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6379} }
func (c *RepeatingConn) SetDeadline(time.Time) error      { return nil }
func (c *RepeatingConn) SetReadDeadline(time.Time) error  { return nil }
func (c *RepeatingConn) SetWriteDeadline(time.Time) error { return nil }

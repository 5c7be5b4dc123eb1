// Package testutils provides net.Conn fakes for connection tests.
package testutils

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"
)

// ConnectionMock is a net.Conn that replays a script of reads.
//
// Each chunk of the script is returned by exactly one Read call, so tests
// control how a reply is fragmented on the transport. An empty chunk makes
// Read return (0, nil), signalling that no bytes are available yet. Once the
// script is exhausted Read returns the configured error, io.EOF by default.
type ConnectionMock struct {
	mu       sync.Mutex
	chunks   [][]byte
	readErr  error
	writeErr error
	writeBuf bytes.Buffer
	reads    int
	closed   bool
	deadline time.Time
	onRead   func()
}

// NewConnectionMock creates a mock connection that returns each chunk from
// a separate Read.
func NewConnectionMock(chunks ...string) *ConnectionMock {
	m := &ConnectionMock{readErr: io.EOF}
	for _, chunk := range chunks {
		m.chunks = append(m.chunks, []byte(chunk))
	}
	return m
}

// Fragment splits data into chunks of at most size bytes.
func Fragment(data string, size int) []string {
	var chunks []string
	for len(data) > size {
		chunks = append(chunks, data[:size])
		data = data[size:]
	}
	if len(data) > 0 {
		chunks = append(chunks, data)
	}
	return chunks
}

// Trickle splits data into single bytes, each followed by an empty chunk.
func Trickle(data string) []string {
	chunks := make([]string, 0, 2*len(data))
	for i := range len(data) {
		chunks = append(chunks, data[i:i+1], "")
	}
	return chunks
}

// SetReadError sets the error returned once the script is exhausted.
func (m *ConnectionMock) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetWriteError makes every following Write fail with err.
func (m *ConnectionMock) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// OnRead registers a function called at the start of every Read, before the
// next chunk is returned.
func (m *ConnectionMock) OnRead(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRead = fn
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	m.mu.Lock()
	onRead := m.onRead
	m.mu.Unlock()
	if onRead != nil {
		onRead()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, net.ErrClosed
	}
	m.reads++

	if len(m.chunks) == 0 {
		return 0, m.readErr
	}

	n = copy(b, m.chunks[0])
	m.chunks[0] = m.chunks[0][n:]
	if len(m.chunks[0]) == 0 {
		m.chunks = m.chunks[1:]
	}
	return n, nil
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, net.ErrClosed
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6379}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline = t
	return nil
}

func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return m.SetDeadline(t) }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return m.SetDeadline(t) }

// GetWrittenRequest returns the raw request bytes written to the mock connection
func (m *ConnectionMock) GetWrittenRequest() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeBuf.String()
}

// IsClosed reports whether Close was called.
func (m *ConnectionMock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Reads returns the number of Read calls made while open.
func (m *ConnectionMock) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Deadline returns the last deadline set on the connection.
func (m *ConnectionMock) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline
}

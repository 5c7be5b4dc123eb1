package redis

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pior/redis/internal/coarsetime"
	"github.com/pior/redis/resp"
)

var (
	ErrConnectionClosed = errors.New("redis: connection closed")
)

const (
	// DefaultMaxFrameSize matches the default proto-max-bulk-len of Redis.
	DefaultMaxFrameSize = 512 * 1024 * 1024

	initialBufferSize = 4 * 1024
)

// aLongTimeAgo is a deadline in the past, used to interrupt blocked I/O.
var aLongTimeAgo = time.Unix(1, 0)

// ConnectionConfig holds the configuration of a Connection.
type ConnectionConfig struct {
	// MaxFrameSize bounds the bytes buffered for a single reply that is still
	// incomplete. Zero means DefaultMaxFrameSize, a negative value disables
	// the limit.
	MaxFrameSize int

	// Logger receives fatal connection errors.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Connection drives a single RESP connection: it writes request frames and
// reads exactly one reply per Receive.
//
// A Connection is strictly request-then-response and is not safe for
// concurrent use, except for Close, IsClosed, LastUsed and Stats. Any error
// from Send or Receive, context cancellation included, leaves the connection
// closed: partially read replies cannot be resumed.
type Connection struct {
	conn   net.Conn
	writer *bufio.Writer

	// buf[start:] holds the bytes received but not yet consumed
	buf   []byte
	start int

	maxFrameSize int
	logger       *slog.Logger

	// interrupts tracks the pending cancellation callback of watch
	interrupts sync.WaitGroup

	lastUsed atomic.Int64
	closed   atomic.Bool
	stats    connectionStatsCollector
}

// NewConnection wraps an established transport.
func NewConnection(conn net.Conn, config ConnectionConfig) *Connection {
	maxFrameSize := config.MaxFrameSize
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connection{
		conn:         conn,
		buf:          make([]byte, 0, initialBufferSize),
		maxFrameSize: maxFrameSize,
		logger:       logger,
	}
	c.writer = bufio.NewWriter(statsWriter{c})
	c.lastUsed.Store(coarsetime.UnixNano())
	return c
}

// Send writes one request frame and flushes it to the transport.
//
// If ctx is done before anything is written, Send returns ctx.Err() and the
// connection stays usable.
func (c *Connection) Send(ctx context.Context, cmd *resp.Command) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unwatch := c.watch(ctx)
	defer unwatch()

	if err := resp.WriteCommand(c.writer, cmd); err != nil {
		return c.fail(ctx, &resp.ConnectionError{Op: "write", Err: contextError(ctx, err)})
	}

	c.stats.recordRequest()
	c.lastUsed.Store(coarsetime.UnixNano())
	return nil
}

// Receive returns the next reply.
//
// It returns io.EOF when the peer closed the connection cleanly between
// replies. A close in the middle of a reply is reported as a
// *resp.ConnectionError wrapping io.ErrUnexpectedEOF.
func (c *Connection) Receive(ctx context.Context) (resp.Value, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}

	// A reply may already be buffered; no I/O needed
	v, err := c.next()
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, resp.ErrIncomplete) {
		return nil, c.fail(ctx, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, c.fail(ctx, err)
	}

	unwatch := c.watch(ctx)
	defer unwatch()

	for {
		if err := c.fill(ctx); err != nil {
			return nil, c.fail(ctx, err)
		}

		v, err := c.next()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return nil, c.fail(ctx, err)
		}
	}
}

// Do sends cmd and returns its reply. A clean end of stream is an error here
// since a reply was expected.
func (c *Connection) Do(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	if err := c.Send(ctx, cmd); err != nil {
		return nil, err
	}

	v, err := c.Receive(ctx)
	if errors.Is(err, io.EOF) {
		return nil, &resp.ConnectionError{Op: "read", Err: io.ErrUnexpectedEOF}
	}
	return v, err
}

// next decodes one buffered frame and consumes its bytes.
func (c *Connection) next() (resp.Value, error) {
	pending := c.buf[c.start:]

	n, err := resp.Check(pending)
	if err != nil {
		return nil, err
	}

	v, _, err := resp.Decode(pending[:n])
	if err != nil {
		return nil, err
	}

	c.start += n
	if c.start == len(c.buf) {
		c.buf = c.buf[:0]
		c.start = 0
	}

	c.stats.recordReply()
	c.lastUsed.Store(coarsetime.UnixNano())
	return v, nil
}

// fill performs one read from the transport, appending to the buffer.
func (c *Connection) fill(ctx context.Context) error {
	pending := len(c.buf) - c.start
	if c.maxFrameSize > 0 && pending >= c.maxFrameSize {
		return &resp.ParseError{
			Message: "incomplete reply of " + strconv.Itoa(pending) + " bytes",
			Err:     resp.ErrFrameTooLarge,
		}
	}

	// Move the unconsumed tail to the front before growing
	if c.start > 0 {
		c.buf = c.buf[:copy(c.buf, c.buf[c.start:])]
		c.start = 0
	}
	if len(c.buf) == cap(c.buf) {
		c.buf = slices.Grow(c.buf, cap(c.buf))
	}

	n, err := c.conn.Read(c.buf[len(c.buf):cap(c.buf)])
	c.buf = c.buf[:len(c.buf)+n]
	c.stats.recordRead(n)

	// Bytes returned along with an error are parsed first, the next read
	// reports the error again
	if n > 0 || err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		if len(c.buf) == 0 {
			return io.EOF
		}
		return &resp.ConnectionError{Op: "read", Err: io.ErrUnexpectedEOF}
	}

	return &resp.ConnectionError{Op: "read", Err: contextError(ctx, err)}
}

// watch applies the context deadline to the transport, and interrupts
// blocked I/O when the context is cancelled. The returned unwatch must run
// before the next operation: if the interrupt already fired, it waits for it
// so that the stale deadline cannot hit the next operation.
func (c *Connection) watch(ctx context.Context) (unwatch func()) {
	deadline, _ := ctx.Deadline()
	c.conn.SetDeadline(deadline)

	if ctx.Done() == nil {
		return func() {}
	}

	c.interrupts.Add(1)
	stop := context.AfterFunc(ctx, func() {
		defer c.interrupts.Done()
		c.conn.SetDeadline(aLongTimeAgo)
	})
	return func() {
		if stop() {
			c.interrupts.Done()
			return
		}
		c.interrupts.Wait()
	}
}

// contextError reports the context error when the transport failed because
// the context expired.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
			return context.DeadlineExceeded
		}
	}
	return err
}

// fail closes the connection after a fatal error and returns err.
func (c *Connection) fail(ctx context.Context, err error) error {
	if !c.closed.CompareAndSwap(false, true) {
		return err
	}
	c.conn.Close()

	if errors.Is(err, io.EOF) {
		c.logger.DebugContext(ctx, "redis: connection closed by peer", "addr", c.remoteAddr())
		return err
	}

	c.stats.recordError()

	var perr *resp.ParseError
	if errors.As(err, &perr) {
		c.logger.ErrorContext(ctx, "redis: malformed reply", "addr", c.remoteAddr(), "data", string(perr.Data), "error", err)
	} else {
		c.logger.ErrorContext(ctx, "redis: connection failed", "addr", c.remoteAddr(), "error", err)
	}
	return err
}

func (c *Connection) remoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Buffered returns the number of received bytes not consumed yet.
func (c *Connection) Buffered() int {
	return len(c.buf) - c.start
}

// LastUsed returns when the connection last sent a request or decoded a reply.
// The precision is that of coarsetime.
func (c *Connection) LastUsed() time.Time {
	return time.Unix(0, c.lastUsed.Load())
}

// IsClosed returns whether the connection is closed
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// Stats returns a snapshot of connection statistics.
func (c *Connection) Stats() ConnectionStats {
	return c.stats.snapshot()
}

// Close closes the connection. Closing twice is a no-op.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// statsWriter counts the bytes handed to the transport.
type statsWriter struct {
	c *Connection
}

func (w statsWriter) Write(p []byte) (int, error) {
	n, err := w.c.conn.Write(p)
	w.c.stats.recordWrite(n)
	return n, err
}

package redis

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/pior/redis/resp"
)

// Config holds configuration for the redis client.
type Config struct {
	// Dialer is the net.Dialer used by NewClient.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Protocol is the RESP version negotiated after connecting: 2 or 3.
	// Zero means 2, in which case no handshake is sent. With 3 the client
	// sends HELLO 3 and the server replies with the RESP3 types.
	Protocol int

	// MaxFrameSize bounds the size of a single reply, see ConnectionConfig.
	MaxFrameSize int

	// Logger receives connection errors.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// NewCircuitBreaker creates the circuit breaker guarding the server.
	// Called once with the server address when the client is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) CircuitBreaker
}

// Client is a redis client over a single connection.
//
// Commands are serialized: one request is in flight at a time, and a
// concurrent caller waits for the previous reply. There is no pooling and no
// reconnection. Once the connection fails, or once the context of an
// in-flight command is cancelled, every later call returns
// ErrConnectionClosed and the client must be replaced.
type Client struct {
	addr           string
	mu             sync.Mutex
	conn           *Connection
	circuitBreaker CircuitBreaker // nil if not configured
	stats          *clientStatsCollector
}

var _ Querier = (*Client)(nil)

// NewClient dials addr and returns a client using that connection.
func NewClient(ctx context.Context, addr string, config Config) (*Client, error) {
	dialer := config.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	return newClient(ctx, netConn, addr, config)
}

// NewClientFromConn returns a client using an established transport, for
// example a TLS or unix socket connection.
func NewClientFromConn(ctx context.Context, netConn net.Conn, config Config) (*Client, error) {
	return newClient(ctx, netConn, netConn.RemoteAddr().String(), config)
}

func newClient(ctx context.Context, netConn net.Conn, addr string, config Config) (*Client, error) {
	switch config.Protocol {
	case 0, 2, 3:
	default:
		netConn.Close()
		return nil, fmt.Errorf("redis: unsupported protocol version %d", config.Protocol)
	}

	client := &Client{
		addr: addr,
		conn: NewConnection(netConn, ConnectionConfig{
			MaxFrameSize: config.MaxFrameSize,
			Logger:       config.Logger,
		}),
		stats: newClientStatsCollector(),
	}

	if config.NewCircuitBreaker != nil {
		client.circuitBreaker = config.NewCircuitBreaker(addr)
	}

	if config.Protocol == 3 {
		if _, err := client.Hello(ctx, 3); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis: protocol handshake failed: %w", err)
		}
	}

	return client, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// ConnectionStats returns a snapshot of the connection statistics.
func (c *Client) ConnectionStats() ConnectionStats {
	return c.conn.Stats()
}

// CircuitBreakerState returns the state of the circuit breaker, or the
// closed state when none is configured.
func (c *Client) CircuitBreakerState() CircuitBreakerState {
	if c.circuitBreaker == nil {
		return StateClosed
	}
	return c.circuitBreaker.State()
}

// exec executes a single request-response cycle.
// If a circuit breaker is configured, the request is wrapped with it.
// Error replies are returned as resp.Error.
func (c *Client) exec(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	c.stats.recordCommand()

	var v resp.Value
	var err error
	if c.circuitBreaker != nil {
		v, err = c.circuitBreaker.Execute(func() (resp.Value, error) {
			return c.execDirect(ctx, cmd)
		})
	} else {
		v, err = c.execDirect(ctx, cmd)
	}

	if err != nil {
		c.stats.recordError()
		return nil, err
	}
	return v, nil
}

// execDirect performs the actual request execution without circuit breaker.
func (c *Client) execDirect(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The connection closes itself on fatal errors
	v, err := c.conn.Do(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if reply, ok := v.(resp.Error); ok {
		return nil, reply
	}
	return v, nil
}

// Do executes an arbitrary command and returns its reply.
// An error reply is returned as a resp.Error error.
func (c *Client) Do(ctx context.Context, cmd *resp.Command) (resp.Value, error) {
	return c.exec(ctx, cmd)
}

// Ping checks the server answers PONG.
func (c *Client) Ping(ctx context.Context) error {
	cmd := newPingCommand()
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return err
	}
	if s, ok := v.(resp.Status); ok && strings.EqualFold(string(s), "PONG") {
		return nil
	}
	return c.unexpected(cmd, v)
}

// Get retrieves a single key.
func (c *Client) Get(ctx context.Context, key string) (Item, error) {
	cmd := newGetCommand(key)
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return Item{}, err
	}

	item, ok := toItem(key, v)
	if !ok {
		return Item{}, c.unexpected(cmd, v)
	}
	c.stats.recordGet(item.Found)
	return item, nil
}

// Set stores a key. It returns false when the condition of opts was not met.
func (c *Client) Set(ctx context.Context, key string, value []byte, opts SetOptions) (bool, error) {
	cmd := newSetCommand(key, value, opts, false)
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return false, err
	}

	switch v := v.(type) {
	case resp.Status:
		if isOK(v) {
			c.stats.recordSet()
			return true, nil
		}
	case resp.Nil:
		c.stats.recordSet()
		return false, nil
	}
	return false, c.unexpected(cmd, v)
}

// GetSet stores a key and returns its previous value (SET with GET).
// The returned item is not found when the key did not exist.
func (c *Client) GetSet(ctx context.Context, key string, value []byte, opts SetOptions) (Item, error) {
	cmd := newSetCommand(key, value, opts, true)
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return Item{}, err
	}

	item, ok := toItem(key, v)
	if !ok {
		return Item{}, c.unexpected(cmd, v)
	}
	c.stats.recordSet()
	return item, nil
}

// FlushAll deletes every key of every database, synchronously or not.
func (c *Client) FlushAll(ctx context.Context, sync bool) error {
	cmd := newFlushAllCommand(sync)
	return c.expectOK(ctx, cmd)
}

// Del deletes keys and returns the number of keys that existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.expectInteger(ctx, newDelCommand(keys))
	if err != nil {
		return 0, err
	}
	c.stats.recordDelete()
	return n, nil
}

// MSet stores several keys atomically.
func (c *Client) MSet(ctx context.Context, items ...Item) error {
	if err := c.expectOK(ctx, newMSetCommand("MSET", items)); err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// MSetNX stores several keys only if none of them exists. It returns
// whether the keys were stored.
func (c *Client) MSetNX(ctx context.Context, items ...Item) (bool, error) {
	cmd := newMSetCommand("MSETNX", items)
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return false, err
	}

	// Only 0 and 1 are valid answers
	if n, ok := v.(resp.Integer); ok && (n == 0 || n == 1) {
		c.stats.recordSet()
		return n == 1, nil
	}
	return false, c.unexpected(cmd, v)
}

// MGet retrieves several keys. Items are returned in the order of keys.
func (c *Client) MGet(ctx context.Context, keys ...string) ([]Item, error) {
	cmd := newMGetCommand(keys)
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return nil, err
	}

	values, ok := v.(resp.Array)
	if !ok || len(values) != len(keys) {
		return nil, c.unexpected(cmd, v)
	}

	items := make([]Item, len(keys))
	for i, value := range values {
		item, ok := toItem(keys[i], value)
		if !ok {
			return nil, c.unexpected(cmd, v)
		}
		items[i] = item
	}

	for _, item := range items {
		c.stats.recordGet(item.Found)
	}
	return items, nil
}

// Incr increments a counter by one and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.increment(ctx, newIncrCommand(key))
}

// IncrBy increments a counter by delta and returns the new value.
func (c *Client) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return c.increment(ctx, newIncrByCommand(key, delta))
}

// Decr decrements a counter by one and returns the new value.
func (c *Client) Decr(ctx context.Context, key string) (int64, error) {
	return c.increment(ctx, newDecrCommand(key))
}

// DecrBy decrements a counter by delta and returns the new value.
func (c *Client) DecrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return c.increment(ctx, newDecrByCommand(key, delta))
}

func (c *Client) increment(ctx context.Context, cmd *resp.Command) (int64, error) {
	n, err := c.expectInteger(ctx, cmd)
	if err != nil {
		return 0, err
	}
	c.stats.recordIncrement()
	return n, nil
}

// Append appends value to a key and returns the new length.
func (c *Client) Append(ctx context.Context, key string, value []byte) (int64, error) {
	return c.expectInteger(ctx, newAppendCommand(key, value))
}

// Strlen returns the length of the value of a key, 0 if it does not exist.
func (c *Client) Strlen(ctx context.Context, key string) (int64, error) {
	return c.expectInteger(ctx, newStrlenCommand(key))
}

// SetRange overwrites part of a key starting at offset and returns the new
// length.
func (c *Client) SetRange(ctx context.Context, key string, offset int64, value []byte) (int64, error) {
	return c.expectInteger(ctx, newSetRangeCommand(key, offset, value))
}

// GetRange returns the substring between start and end, both inclusive.
// Negative offsets count from the end.
func (c *Client) GetRange(ctx context.Context, key string, start, end int64) ([]byte, error) {
	cmd := newGetRangeCommand(key, start, end)
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(resp.BulkString); ok {
		return []byte(s), nil
	}
	return nil, c.unexpected(cmd, v)
}

// Hello switches the connection to the given protocol version and returns
// the server properties. A RESP2 server answers with a flat array, which is
// paired into a map.
func (c *Client) Hello(ctx context.Context, protover int) (resp.Map, error) {
	cmd := newHelloCommand(protover)
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case resp.Map:
		return v, nil
	case resp.Array:
		if len(v)%2 == 0 {
			m := make(resp.Map, 0, len(v)/2)
			for i := 0; i < len(v); i += 2 {
				m = append(m, resp.Pair{Key: v[i], Value: v[i+1]})
			}
			return m, nil
		}
	}
	return nil, c.unexpected(cmd, v)
}

func (c *Client) expectOK(ctx context.Context, cmd *resp.Command) error {
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return err
	}
	if s, ok := v.(resp.Status); ok && isOK(s) {
		return nil
	}
	return c.unexpected(cmd, v)
}

func (c *Client) expectInteger(ctx context.Context, cmd *resp.Command) (int64, error) {
	v, err := c.exec(ctx, cmd)
	if err != nil {
		return 0, err
	}
	if n, ok := v.(resp.Integer); ok {
		return int64(n), nil
	}
	return 0, c.unexpected(cmd, v)
}

func (c *Client) unexpected(cmd *resp.Command, v resp.Value) error {
	c.stats.recordError()
	return unexpectedReply(cmd, v)
}

// toItem converts a string reply: a bulk string is found, Nil is not.
func toItem(key string, v resp.Value) (Item, bool) {
	switch v := v.(type) {
	case resp.BulkString:
		return Item{Key: key, Value: []byte(v), Found: true}, true
	case resp.Nil:
		return Item{Key: key}, true
	}
	return Item{}, false
}

func isOK(s resp.Status) bool {
	return strings.EqualFold(string(s), "OK")
}

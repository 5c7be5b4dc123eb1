package redis

import (
	"sync/atomic"
)

// ConnectionStats contains statistics about a single connection.
// All fields are safe for concurrent access.
//
// For Prometheus integration, expose these as counters.
type ConnectionStats struct {
	BytesRead    uint64 // Bytes received from the transport
	BytesWritten uint64 // Bytes handed to the transport
	Requests     uint64 // Request frames sent
	Replies      uint64 // Reply frames decoded
	Errors       uint64 // Fatal errors (transport, malformed frame, cancellation)
}

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
//
// Struct is optimized to fit within a single cache line (64 bytes).
//
// For Prometheus integration, expose these as:
//   - Counters: Commands, Gets, Sets, Deletes, Increments, Errors
//   - Counter: GetHits (derive hit rate as GetHits/Gets)
type ClientStats struct {
	Commands   uint64 // Total commands executed, typed or not
	Gets       uint64 // Total GET and MGET keys read
	GetHits    uint64 // Keys read that were found
	Sets       uint64 // Total SET family operations
	Deletes    uint64 // Total DEL operations
	Increments uint64 // Total INCR/DECR family operations
	Errors     uint64 // Total errors across all operations, error replies included
	_          uint64 // Padding to align to 64 bytes
}

// connectionStatsCollector provides internal methods for updating connection stats.
type connectionStatsCollector struct {
	stats ConnectionStats
}

func (c *connectionStatsCollector) recordRead(n int) {
	atomic.AddUint64(&c.stats.BytesRead, uint64(n))
}

func (c *connectionStatsCollector) recordWrite(n int) {
	atomic.AddUint64(&c.stats.BytesWritten, uint64(n))
}

func (c *connectionStatsCollector) recordRequest() {
	atomic.AddUint64(&c.stats.Requests, 1)
}

func (c *connectionStatsCollector) recordReply() {
	atomic.AddUint64(&c.stats.Replies, 1)
}

func (c *connectionStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *connectionStatsCollector) snapshot() ConnectionStats {
	return ConnectionStats{
		BytesRead:    atomic.LoadUint64(&c.stats.BytesRead),
		BytesWritten: atomic.LoadUint64(&c.stats.BytesWritten),
		Requests:     atomic.LoadUint64(&c.stats.Requests),
		Replies:      atomic.LoadUint64(&c.stats.Replies),
		Errors:       atomic.LoadUint64(&c.stats.Errors),
	}
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - client updates its own stats.
type clientStatsCollector struct {
	stats *ClientStats
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{
		stats: &ClientStats{},
	}
}

func (c *clientStatsCollector) recordCommand() {
	atomic.AddUint64(&c.stats.Commands, 1)
}

func (c *clientStatsCollector) recordGet(found bool) {
	atomic.AddUint64(&c.stats.Gets, 1)
	if found {
		atomic.AddUint64(&c.stats.GetHits, 1)
	}
}

func (c *clientStatsCollector) recordSet() {
	atomic.AddUint64(&c.stats.Sets, 1)
}

func (c *clientStatsCollector) recordDelete() {
	atomic.AddUint64(&c.stats.Deletes, 1)
}

func (c *clientStatsCollector) recordIncrement() {
	atomic.AddUint64(&c.stats.Increments, 1)
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Commands:   atomic.LoadUint64(&c.stats.Commands),
		Gets:       atomic.LoadUint64(&c.stats.Gets),
		GetHits:    atomic.LoadUint64(&c.stats.GetHits),
		Sets:       atomic.LoadUint64(&c.stats.Sets),
		Deletes:    atomic.LoadUint64(&c.stats.Deletes),
		Increments: atomic.LoadUint64(&c.stats.Increments),
		Errors:     atomic.LoadUint64(&c.stats.Errors),
	}
}

// Package coarsetime provides a coarse clock to avoid a time.Now() call on
// every command. The clock is refreshed every 50ms by a background goroutine,
// so readings can lag the wall clock by up to one tick.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const Tick = 50 * time.Millisecond

var now atomic.Int64

func init() {
	now.Store(time.Now().UnixNano())

	ticker := time.NewTicker(Tick)
	go func() {
		for t := range ticker.C {
			now.Store(t.UnixNano())
		}
	}()
}

// UnixNano returns the last refreshed time in nanoseconds, for callers that
// store timestamps in atomics.
func UnixNano() int64 {
	return now.Load()
}

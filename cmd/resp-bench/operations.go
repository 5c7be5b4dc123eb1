package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pior/redis"
)

type OperationType string

const (
	CacheHit     OperationType = "cache-hit"
	DynamicValue OperationType = "dynamic-value"
	CacheMiss    OperationType = "cache-miss"
	Increment    OperationType = "increment"
	Delete       OperationType = "delete"
	All          OperationType = "all"
)

var allOperations = []OperationType{CacheHit, DynamicValue, CacheMiss, Increment, Delete}

func parseOperation(s string) ([]OperationType, error) {
	op := OperationType(s)
	if op == All {
		return allOperations, nil
	}
	for _, known := range allOperations {
		if op == known {
			return []OperationType{op}, nil
		}
	}
	return nil, fmt.Errorf("unknown operation: %s", s)
}

type BenchmarkResult struct {
	Operation    OperationType
	Duration     time.Duration
	TotalOps     int64
	Successes    int64
	Failures     int64
	AvgLatency   time.Duration
	OpsPerSecond float64
	Correctness  bool
	ErrorMessage string
}

// recorder accumulates the outcome of operations across workers.
type recorder struct {
	totalOps, successes, failures, totalLatency atomic.Int64

	mu           sync.Mutex
	correct      bool
	errorMessage string
}

// timed runs fn, accounting one operation and its latency.
func (r *recorder) timed(fn func() error) error {
	start := time.Now()
	err := fn()
	r.totalOps.Add(1)
	r.totalLatency.Add(int64(time.Since(start)))
	if err != nil {
		r.failures.Add(1)
	} else {
		r.successes.Add(1)
	}
	return err
}

func (r *recorder) incorrect(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.correct = false
	r.errorMessage = message
}

// worker performs one round of an operation. It returns an error only when
// the worker cannot continue.
type worker func(ctx context.Context, q redis.Querier, id, round int, r *recorder) error

func runOperation(ctx context.Context, queriers []redis.Querier, op OperationType, duration time.Duration) *BenchmarkResult {
	result := &BenchmarkResult{Operation: op}

	setup, work := operationFuncs(op)
	if setup != nil {
		if err := setup(ctx, queriers[0]); err != nil {
			result.ErrorMessage = fmt.Sprintf("Setup failed: %v", err)
			return result
		}
	}

	r := &recorder{correct: true}

	// Commands are not bound to the duration: a cancelled command closes
	// its connection, and the clients are reused by the next operation
	start := time.Now()
	deadline := start.Add(duration)

	var wg sync.WaitGroup
	for id, q := range queriers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; time.Now().Before(deadline) && ctx.Err() == nil; round++ {
				if err := work(ctx, q, id, round, r); err != nil {
					if ctx.Err() == nil {
						r.incorrect(fmt.Sprintf("Worker %d stopped: %v", id, err))
					}
					return
				}
			}
		}()
	}
	wg.Wait()

	result.Duration = time.Since(start)
	result.TotalOps = r.totalOps.Load()
	result.Successes = r.successes.Load()
	result.Failures = r.failures.Load()
	result.Correctness = r.correct
	result.ErrorMessage = r.errorMessage

	if result.TotalOps > 0 {
		result.AvgLatency = time.Duration(r.totalLatency.Load() / result.TotalOps)
		result.OpsPerSecond = float64(result.TotalOps) / result.Duration.Seconds()
	}
	return result
}

const (
	cacheHitKey   = "bench:cache-hit"
	cacheHitValue = "cache-hit-value"
	counterKey    = "bench:counter"
)

func operationFuncs(op OperationType) (setup func(context.Context, redis.Querier) error, work worker) {
	switch op {
	case CacheHit:
		setup = func(ctx context.Context, q redis.Querier) error {
			_, err := q.Set(ctx, cacheHitKey, []byte(cacheHitValue), redis.SetOptions{Expire: redis.ExpireSeconds(3600)})
			return err
		}
		return setup, cacheHitRound
	case DynamicValue:
		return nil, dynamicValueRound
	case CacheMiss:
		return nil, cacheMissRound
	case Increment:
		setup = func(ctx context.Context, q redis.Querier) error {
			_, err := q.Del(ctx, counterKey)
			return err
		}
		return setup, incrementRound
	case Delete:
		return nil, deleteRound
	}
	return nil, nil
}

// Cache-hit: 100 GET of a key set once
func cacheHitRound(ctx context.Context, q redis.Querier, id, round int, r *recorder) error {
	for range 100 {
		var item redis.Item
		err := r.timed(func() (err error) {
			item, err = q.Get(ctx, cacheHitKey)
			return err
		})
		if err != nil {
			return err
		}
		if string(item.Value) != cacheHitValue {
			r.incorrect("Value mismatch")
		}
	}
	return nil
}

// Dynamic-value: SET then GET of a fresh key
func dynamicValueRound(ctx context.Context, q redis.Querier, id, round int, r *recorder) error {
	key := fmt.Sprintf("bench:dynamic:%d:%d", id, round)
	value := []byte(fmt.Sprintf("dynamic-value-%d-%d", id, round))

	err := r.timed(func() error {
		_, err := q.Set(ctx, key, value, redis.SetOptions{Expire: redis.ExpireSeconds(3600)})
		return err
	})
	if err != nil {
		return err
	}

	var item redis.Item
	err = r.timed(func() (err error) {
		item, err = q.Get(ctx, key)
		return err
	})
	if err != nil {
		return err
	}
	if string(item.Value) != string(value) {
		r.incorrect("Value mismatch")
	}
	return nil
}

// Cache-miss: GET of a key never set
func cacheMissRound(ctx context.Context, q redis.Querier, id, round int, r *recorder) error {
	key := fmt.Sprintf("bench:missing:%d:%d", id, round)

	var item redis.Item
	err := r.timed(func() (err error) {
		item, err = q.Get(ctx, key)
		return err
	})
	if err != nil {
		return err
	}
	if item.Found {
		r.incorrect("Expected cache miss but got value")
	}
	return nil
}

// Increment: 100 INCR then GET of the shared counter
func incrementRound(ctx context.Context, q redis.Querier, id, round int, r *recorder) error {
	var last int64
	for range 100 {
		var n int64
		err := r.timed(func() (err error) {
			n, err = q.Incr(ctx, counterKey)
			return err
		})
		if err != nil {
			return err
		}
		if n <= last {
			r.incorrect("Counter went backwards")
		}
		last = n
	}

	var item redis.Item
	err := r.timed(func() (err error) {
		item, err = q.Get(ctx, counterKey)
		return err
	})
	if err != nil {
		return err
	}
	if n, err := strconv.ParseInt(string(item.Value), 10, 64); err != nil || n < last {
		r.incorrect("Counter value is not a number")
	}
	return nil
}

// Delete: SET then DEL of a fresh key
func deleteRound(ctx context.Context, q redis.Querier, id, round int, r *recorder) error {
	key := fmt.Sprintf("bench:delete:%d:%d", id, round)

	err := r.timed(func() error {
		_, err := q.Set(ctx, key, []byte("value"), redis.SetOptions{})
		return err
	})
	if err != nil {
		return err
	}

	var n int64
	err = r.timed(func() (err error) {
		n, err = q.Del(ctx, key)
		return err
	})
	if err != nil {
		return err
	}
	if n != 1 {
		r.incorrect("Deleted key was not found")
	}
	return nil
}

func printResult(out io.Writer, result *BenchmarkResult) {
	fmt.Fprintf(out, "Operation: %s\n", result.Operation)
	fmt.Fprintf(out, "Duration: %v\n", result.Duration)
	fmt.Fprintf(out, "Total Operations: %d\n", result.TotalOps)
	fmt.Fprintf(out, "Successes: %d\n", result.Successes)
	fmt.Fprintf(out, "Failures: %d\n", result.Failures)
	if result.TotalOps > 0 {
		fmt.Fprintf(out, "Success Rate: %.2f%%\n", float64(result.Successes)/float64(result.TotalOps)*100)
		fmt.Fprintf(out, "Ops/sec: %.2f\n", result.OpsPerSecond)
		fmt.Fprintf(out, "Avg Latency: %v\n", result.AvgLatency)
	}
	fmt.Fprintf(out, "Correctness: %t\n", result.Correctness)
	if result.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", result.ErrorMessage)
	}
	fmt.Fprintln(out)
}

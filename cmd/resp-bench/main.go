package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/pior/redis"
	"github.com/pior/redis/internal/env"
)

type options struct {
	operation   string
	duration    time.Duration
	concurrency int
	addr        string
	resp3       bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "resp-bench",
		Short: "Measure throughput and latency of the string commands",
		Long: `Measure throughput and latency of the string commands

Each worker owns one connection. Operations:
  cache-hit      100 GET of an existing key
  dynamic-value  SET then GET of a fresh key
  cache-miss     GET of a missing key
  increment      100 INCR then GET of a shared counter
  delete         SET then DEL of a fresh key
  all            every operation in sequence
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.operation, "operation", "o", string(All), "Operation to run")
	flags.DurationVarP(&opts.duration, "duration", "d", 5*time.Second, "Duration of each operation")
	flags.IntVarP(&opts.concurrency, "concurrency", "c", 1, "Number of concurrent workers")
	flags.StringVar(&opts.addr, "addr", "", "Server address (default $REDIS_HOST:$REDIS_PORT)")
	flags.BoolVar(&opts.resp3, "resp3", false, "Negotiate RESP3 with HELLO 3")

	return cmd
}

func run(cmd *cobra.Command, opts *options) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	conf, err := env.LoadConfig(ctx)
	if err != nil {
		return err
	}
	addr := conf.Addr()
	if opts.addr != "" {
		addr = opts.addr
	}
	if opts.resp3 {
		conf.Protocol = 3
	}

	operations, err := parseOperation(opts.operation)
	if err != nil {
		return err
	}
	if opts.concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Redis Benchmark Tool\n")
	fmt.Fprintf(out, "====================\n")
	fmt.Fprintf(out, "Operation: %s\n", opts.operation)
	fmt.Fprintf(out, "Duration: %v\n", opts.duration)
	fmt.Fprintf(out, "Concurrency: %d\n", opts.concurrency)
	fmt.Fprintf(out, "Server: %s\n\n", addr)

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	clients := make([]*redis.Client, 0, opts.concurrency)
	defer func() {
		for _, client := range clients {
			err = multierr.Append(err, client.Close())
		}
	}()

	for range opts.concurrency {
		dialCtx, cancel := context.WithTimeout(ctx, conf.Timeout)
		client, err := redis.NewClient(dialCtx, addr, redis.Config{Protocol: conf.Protocol, Logger: logger})
		cancel()
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", addr, err)
		}
		clients = append(clients, client)
	}

	workers := make([]redis.Querier, len(clients))
	for i, client := range clients {
		workers[i] = client
	}

	for _, op := range operations {
		fmt.Fprintf(out, "--- Running %s benchmark ---\n", op)
		result := runOperation(ctx, workers, op, opts.duration)
		printResult(out, result)
	}

	printClientStats(out, clients)
	return nil
}

func printClientStats(out io.Writer, clients []*redis.Client) {
	var total redis.ClientStats
	for _, client := range clients {
		stats := client.Stats()
		total.Commands += stats.Commands
		total.Gets += stats.Gets
		total.GetHits += stats.GetHits
		total.Errors += stats.Errors
	}

	fmt.Fprintf(out, "Client Stats:\n")
	fmt.Fprintf(out, "  Commands: %d\n", total.Commands)
	fmt.Fprintf(out, "  Gets: %d\n", total.Gets)
	if total.Gets > 0 {
		fmt.Fprintf(out, "  Hit Rate: %.2f%%\n", float64(total.GetHits)/float64(total.Gets)*100)
	}
	fmt.Fprintf(out, "  Errors: %d\n", total.Errors)
}

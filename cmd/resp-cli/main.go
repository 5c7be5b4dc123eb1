package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/pior/redis"
	"github.com/pior/redis/internal/env"
	"github.com/pior/redis/resp"
)

// errReplyExit is returned by a one-shot command answered with an error
// reply, which was already printed.
var errReplyExit = errors.New("error reply")

type options struct {
	host    string
	port    int
	resp3   bool
	json    bool
	timeout time.Duration
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		if !errors.Is(err, errReplyExit) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "resp-cli [flags] [COMMAND [ARG...]]",
		Short: "Send commands to a redis server",
		Long: `Send commands to a redis server

With a command, runs it and prints the reply. Without, reads commands from
standard input, one per line.

Defaults are read from .env.local and the environment:
REDIS_HOST, REDIS_PORT, REDIS_PROTOCOL and REDIS_TIMEOUT.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.host, "host", "H", "", "Server hostname (default $REDIS_HOST or localhost)")
	flags.IntVarP(&opts.port, "port", "p", 0, "Server port (default $REDIS_PORT or 6379)")
	flags.BoolVar(&opts.resp3, "resp3", false, "Negotiate RESP3 with HELLO 3")
	flags.BoolVar(&opts.json, "json", false, "Print replies as JSON")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Timeout of each command (default $REDIS_TIMEOUT or 5s)")

	// Stop parsing flags at the command, its arguments may start with a dash
	flags.SetInterspersed(false)

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	conf, err := env.LoadConfig(ctx)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		conf.Host = opts.host
	}
	if flags.Changed("port") {
		conf.Port = opts.port
	}
	if flags.Changed("resp3") {
		conf.Protocol = 2
		if opts.resp3 {
			conf.Protocol = 3
		}
	}
	if flags.Changed("timeout") {
		conf.Timeout = opts.timeout
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	dialCtx, cancel := context.WithTimeout(ctx, conf.Timeout)
	client, err := redis.NewClient(dialCtx, conf.Addr(), redis.Config{
		Protocol: conf.Protocol,
		Logger:   logger,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", conf.Addr(), err)
	}
	defer func() {
		err = multierr.Append(err, client.Close())
	}()

	s := &session{
		client:  client,
		timeout: conf.Timeout,
		out:     cmd.OutOrStdout(),
		json:    opts.json,
	}

	if len(args) > 0 {
		isReply, err := s.execute(ctx, args)
		if err != nil {
			return err
		}
		if isReply {
			return errReplyExit
		}
		return nil
	}

	return s.repl(ctx, cmd.InOrStdin(), conf.Addr()+"> ")
}

type session struct {
	client  *redis.Client
	timeout time.Duration
	out     io.Writer
	json    bool
}

// execute runs one command and prints its reply. It reports whether the
// reply was an error reply; the returned error is a failure to get a reply.
func (s *session) execute(ctx context.Context, args []string) (errorReply bool, err error) {
	cmd := resp.NewCommand(args[0])
	for _, arg := range args[1:] {
		cmd.AddString(arg)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := s.client.Do(ctx, cmd)
	if err != nil {
		var reply resp.Error
		if !errors.As(err, &reply) {
			return false, err
		}
		v, errorReply = reply, true
	}

	return errorReply, s.print(v)
}

func (s *session) print(v resp.Value) error {
	if s.json {
		doc, err := formatJSON(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.out, string(doc))
		return err
	}

	_, err := fmt.Fprintln(s.out, formatText(v))
	return err
}

func (s *session) repl(ctx context.Context, in io.Reader, prompt string) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(s.out, "(error) Invalid argument(s)")
			continue
		}

		switch strings.ToLower(args[0]) {
		case "quit", "exit":
			return nil
		}

		if _, err := s.execute(ctx, args); err != nil {
			// The connection is unusable after any failure
			return err
		}
	}
}

package redis

import (
	"github.com/pior/redis/resp"
)

// Command builders for the typed Client methods. Each returns a fresh
// request; keys are sent as bulk strings like any other argument.

func newPingCommand() *resp.Command {
	return resp.NewCommand("PING")
}

func newGetCommand(key string) *resp.Command {
	return resp.NewCommand("GET").AddString(key)
}

// newSetCommand builds SET key value [expire] [NX|XX] [GET].
func newSetCommand(key string, value []byte, opts SetOptions, get bool) *resp.Command {
	cmd := resp.NewCommand("SET").AddString(key).AddBytes(value)
	opts.Expire.appendTo(cmd)
	if cond := opts.Condition.String(); cond != "" {
		cmd.AddString(cond)
	}
	if get {
		cmd.AddString("GET")
	}
	return cmd
}

func newFlushAllCommand(sync bool) *resp.Command {
	if sync {
		return resp.NewCommand("FLUSHALL").AddString("SYNC")
	}
	return resp.NewCommand("FLUSHALL").AddString("ASYNC")
}

func newKeysCommand(name string, keys []string) *resp.Command {
	cmd := &resp.Command{Name: name, Args: make([][]byte, 0, len(keys))}
	for _, key := range keys {
		cmd.AddString(key)
	}
	return cmd
}

func newDelCommand(keys []string) *resp.Command {
	return newKeysCommand("DEL", keys)
}

func newMGetCommand(keys []string) *resp.Command {
	return newKeysCommand("MGET", keys)
}

// newMSetCommand builds MSET or MSETNX with key value pairs in order.
func newMSetCommand(name string, items []Item) *resp.Command {
	cmd := &resp.Command{Name: name, Args: make([][]byte, 0, 2*len(items))}
	for _, item := range items {
		cmd.AddString(item.Key).AddBytes(item.Value)
	}
	return cmd
}

func newIncrCommand(key string) *resp.Command {
	return resp.NewCommand("INCR").AddString(key)
}

func newIncrByCommand(key string, delta int64) *resp.Command {
	return resp.NewCommand("INCRBY").AddString(key).AddInt(delta)
}

func newDecrCommand(key string) *resp.Command {
	return resp.NewCommand("DECR").AddString(key)
}

func newDecrByCommand(key string, delta int64) *resp.Command {
	return resp.NewCommand("DECRBY").AddString(key).AddInt(delta)
}

func newAppendCommand(key string, value []byte) *resp.Command {
	return resp.NewCommand("APPEND").AddString(key).AddBytes(value)
}

func newStrlenCommand(key string) *resp.Command {
	return resp.NewCommand("STRLEN").AddString(key)
}

func newSetRangeCommand(key string, offset int64, value []byte) *resp.Command {
	return resp.NewCommand("SETRANGE").AddString(key).AddInt(offset).AddBytes(value)
}

func newGetRangeCommand(key string, start, end int64) *resp.Command {
	return resp.NewCommand("GETRANGE").AddString(key).AddInt(start).AddInt(end)
}

func newHelloCommand(protover int) *resp.Command {
	return resp.NewCommand("HELLO").AddInt(int64(protover))
}

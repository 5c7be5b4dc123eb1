package redis

import (
	"testing"

	"github.com/pior/redis/resp"
	"github.com/stretchr/testify/require"
)

func commandArgs(cmd *resp.Command) []string {
	args := []string{cmd.Name}
	for _, arg := range cmd.Args {
		args = append(args, string(arg))
	}
	return args
}

func TestCommandBuilders(t *testing.T) {
	tests := []struct {
		name string
		cmd  *resp.Command
		want []string
	}{
		{"ping", newPingCommand(), []string{"PING"}},
		{"get", newGetCommand("key"), []string{"GET", "key"}},
		{"set", newSetCommand("key", []byte("value"), SetOptions{}, false), []string{"SET", "key", "value"}},
		{"set nx ex", newSetCommand("key", []byte("v"), SetOptions{Expire: ExpireSeconds(10), Condition: SetIfNotExists}, false),
			[]string{"SET", "key", "v", "EX", "10", "NX"}},
		{"set xx px", newSetCommand("key", []byte("v"), SetOptions{Expire: ExpireMillis(1500), Condition: SetIfExists}, false),
			[]string{"SET", "key", "v", "PX", "1500", "XX"}},
		{"set exat", newSetCommand("key", []byte("v"), SetOptions{Expire: ExpireAtSeconds(4102444800)}, false),
			[]string{"SET", "key", "v", "EXAT", "4102444800"}},
		{"set pxat", newSetCommand("key", []byte("v"), SetOptions{Expire: ExpireAtMillis(4102444800000)}, false),
			[]string{"SET", "key", "v", "PXAT", "4102444800000"}},
		{"set keepttl get", newSetCommand("key", []byte("v"), SetOptions{Expire: KeepTTL()}, true),
			[]string{"SET", "key", "v", "KEEPTTL", "GET"}},
		{"set empty value", newSetCommand("key", nil, SetOptions{}, false), []string{"SET", "key", ""}},
		{"flushall sync", newFlushAllCommand(true), []string{"FLUSHALL", "SYNC"}},
		{"flushall async", newFlushAllCommand(false), []string{"FLUSHALL", "ASYNC"}},
		{"del", newDelCommand([]string{"a", "b"}), []string{"DEL", "a", "b"}},
		{"mget", newMGetCommand([]string{"a"}), []string{"MGET", "a"}},
		{"mset", newMSetCommand("MSET", []Item{{Key: "a", Value: []byte("1")}, {Key: "b", Value: []byte("2")}}),
			[]string{"MSET", "a", "1", "b", "2"}},
		{"msetnx", newMSetCommand("MSETNX", []Item{{Key: "a", Value: []byte("1")}}), []string{"MSETNX", "a", "1"}},
		{"incr", newIncrCommand("c"), []string{"INCR", "c"}},
		{"incrby", newIncrByCommand("c", -3), []string{"INCRBY", "c", "-3"}},
		{"decr", newDecrCommand("c"), []string{"DECR", "c"}},
		{"decrby", newDecrByCommand("c", 7), []string{"DECRBY", "c", "7"}},
		{"append", newAppendCommand("k", []byte("tail")), []string{"APPEND", "k", "tail"}},
		{"strlen", newStrlenCommand("k"), []string{"STRLEN", "k"}},
		{"setrange", newSetRangeCommand("k", 6, []byte("x")), []string{"SETRANGE", "k", "6", "x"}},
		{"getrange", newGetRangeCommand("k", 0, -1), []string{"GETRANGE", "k", "0", "-1"}},
		{"hello", newHelloCommand(3), []string{"HELLO", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, commandArgs(tt.cmd))
		})
	}
}

func TestCommandBuilders_Wire(t *testing.T) {
	cmd := newSetCommand("key", []byte("a\r\nb"), SetOptions{Expire: ExpireSeconds(5)}, false)
	require.Equal(t,
		"*5\r\n$3\r\nSET\r\n$3\r\nkey\r\n$4\r\na\r\nb\r\n$2\r\nEX\r\n$1\r\n5\r\n",
		string(resp.AppendCommand(nil, cmd)))
}

package redis

import (
	"testing"

	"github.com/pior/redis/resp"
	"github.com/stretchr/testify/assert"
)

func TestCondition_String(t *testing.T) {
	assert.Equal(t, "", SetAlways.String())
	assert.Equal(t, "NX", SetIfNotExists.String())
	assert.Equal(t, "XX", SetIfExists.String())
	assert.Equal(t, "", Condition(42).String())
}

func TestExpire_AppendTo(t *testing.T) {
	tests := []struct {
		expire Expire
		want   []string
	}{
		{Expire{}, []string{"SET"}},
		{ExpireSeconds(0), []string{"SET", "EX", "0"}},
		{ExpireMillis(250), []string{"SET", "PX", "250"}},
		{ExpireAtSeconds(1), []string{"SET", "EXAT", "1"}},
		{ExpireAtMillis(18446744073709551615), []string{"SET", "PXAT", "18446744073709551615"}},
		{KeepTTL(), []string{"SET", "KEEPTTL"}},
	}

	for _, tt := range tests {
		cmd := resp.NewCommand("SET")
		tt.expire.appendTo(cmd)
		assert.Equal(t, tt.want, commandArgs(cmd))
	}
}

func TestToItem(t *testing.T) {
	item, ok := toItem("k", resp.BulkString("v"))
	assert.True(t, ok)
	assert.Equal(t, Item{Key: "k", Value: []byte("v"), Found: true}, item)

	item, ok = toItem("k", resp.Nil{})
	assert.True(t, ok)
	assert.Equal(t, Item{Key: "k"}, item)

	_, ok = toItem("k", resp.Integer(1))
	assert.False(t, ok)

	_, ok = toItem("k", resp.Status("OK"))
	assert.False(t, ok)
}

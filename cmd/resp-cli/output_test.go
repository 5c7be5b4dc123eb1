package main

import (
	"math"
	"math/big"
	"testing"

	"github.com/pior/redis/resp"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestFormatText(t *testing.T) {
	tests := []struct {
		name  string
		value resp.Value
		want  string
	}{
		{"status", resp.Status("OK"), "OK"},
		{"error", resp.Error("ERR unknown command"), "(error) ERR unknown command"},
		{"integer", resp.Integer(-42), "(integer) -42"},
		{"double", resp.Double(3.25), "(double) 3.25"},
		{"big number", resp.BigNumber{Int: big.NewInt(12345)}, "(big number) 12345"},
		{"nil", resp.Nil{}, "(nil)"},
		{"bool", resp.Bool(true), "(true)"},
		{"bulk string", resp.BulkString("a \"b\"\n"), `"a \"b\"\n"`},
		{"verbatim", resp.VerbatimString{Format: "txt", Text: []byte("hello")}, "hello"},
		{"empty array", resp.Array{}, "(empty array)"},
		{"empty map", resp.Map{}, "(empty hash)"},
		{"array", resp.Array{resp.BulkString("a"), resp.Nil{}, resp.Integer(1)},
			"1) \"a\"\n2) (nil)\n3) (integer) 1"},
		{"nested array", resp.Array{resp.Integer(1), resp.Array{resp.BulkString("x"), resp.BulkString("y")}},
			"1) (integer) 1\n2) 1) \"x\"\n   2) \"y\""},
		{"set", resp.Set{resp.BulkString("m")}, "1~ \"m\""},
		{"push", resp.Push{resp.BulkString("message"), resp.BulkString("ch")}, "1> \"message\"\n2> \"ch\""},
		{"map", resp.Map{
			{Key: resp.BulkString("server"), Value: resp.BulkString("redis")},
			{Key: resp.BulkString("proto"), Value: resp.Integer(3)},
		}, "1# \"server\" => \"redis\"\n2# \"proto\" => (integer) 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatText(tt.value))
		})
	}
}

func TestFormatJSON(t *testing.T) {
	reply := resp.Map{
		{Key: resp.BulkString("server"), Value: resp.BulkString("redis")},
		{Key: resp.BulkString("proto"), Value: resp.Integer(3)},
		{Key: resp.BulkString("a.b"), Value: resp.Bool(true)},
		{Key: resp.BulkString("modules"), Value: resp.Array{}},
		{Key: resp.BulkString("list"), Value: resp.Array{resp.BulkString("x"), resp.Nil{}, resp.Double(1.5)}},
		{Key: resp.BulkString("big"), Value: resp.BigNumber{Int: bigFromString("123456789012345678901234567890")}},
		{Key: resp.BulkString("inf"), Value: resp.Double(math.Inf(1))},
	}

	doc, err := formatJSON(reply)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(doc), string(doc))

	result := gjson.ParseBytes(doc)
	require.Equal(t, "redis", result.Get("reply.server").String())
	require.Equal(t, int64(3), result.Get("reply.proto").Int())
	require.True(t, result.Get(`reply.a\.b`).Bool())
	require.True(t, result.Get("reply.modules").IsArray())
	require.Empty(t, result.Get("reply.modules").Array())
	require.Equal(t, "x", result.Get("reply.list.0").String())
	require.Equal(t, gjson.Null, result.Get("reply.list.1").Type)
	require.Equal(t, 1.5, result.Get("reply.list.2").Float())
	require.Equal(t, "123456789012345678901234567890", result.Get("reply.big").Raw)
	require.Equal(t, "+Inf", result.Get("reply.inf").String())
}

func TestFormatJSON_Scalars(t *testing.T) {
	tests := []struct {
		value resp.Value
		path  string
		raw   string
	}{
		{resp.Status("OK"), "reply", `"OK"`},
		{resp.Integer(7), "reply", `7`},
		{resp.Nil{}, "reply", `null`},
		{resp.Bool(false), "reply", `false`},
		{resp.BulkString("line\n"), "reply", `"line\n"`},
		{resp.Error("ERR nope"), "error", `"ERR nope"`},
		{resp.Set{resp.Integer(1)}, "reply", `[1]`},
	}

	for _, tt := range tests {
		doc, err := formatJSON(tt.value)
		require.NoError(t, err)
		require.Equal(t, tt.raw, gjson.GetBytes(doc, tt.path).Raw, string(doc))
	}
}

func bigFromString(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

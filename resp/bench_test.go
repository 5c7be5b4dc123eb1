package resp

import (
	"bytes"
	"io"
	"strconv"
	"testing"
)

// Benchmark WriteCommand with small get request
func BenchmarkWriteCommand_SmallGet(b *testing.B) {
	cmd := NewCommand("GET").AddString("mykey")
	b.ResetTimer()

	for b.Loop() {
		if err := WriteCommand(io.Discard, cmd); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark WriteCommand with small set (100 bytes)
func BenchmarkWriteCommand_SmallSet(b *testing.B) {
	data := bytes.Repeat([]byte("x"), 100)
	cmd := NewCommand("SET").AddString("mykey").AddBytes(data).AddString("EX").AddInt(3600)
	b.ResetTimer()

	for b.Loop() {
		if err := WriteCommand(io.Discard, cmd); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark WriteCommand with large set (10KB)
func BenchmarkWriteCommand_LargeSet(b *testing.B) {
	data := bytes.Repeat([]byte("x"), 10*1024)
	cmd := NewCommand("SET").AddString("mykey").AddBytes(data)
	b.ResetTimer()

	for b.Loop() {
		if err := WriteCommand(io.Discard, cmd); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark AppendCommand into a reused buffer
func BenchmarkAppendCommand_MSet(b *testing.B) {
	cmd := NewCommand("MSET")
	for i := range 10 {
		cmd.AddString("key" + strconv.Itoa(i)).AddString("value" + strconv.Itoa(i))
	}
	buf := make([]byte, 0, 512)
	b.ResetTimer()

	for b.Loop() {
		buf = AppendCommand(buf[:0], cmd)
	}
}

func benchmarkCheckDecode(b *testing.B, input []byte) {
	b.SetBytes(int64(len(input)))
	b.ResetTimer()

	for b.Loop() {
		n, err := Check(input)
		if err != nil {
			b.Fatal(err)
		}
		if _, _, err := Decode(input[:n]); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark Check+Decode with a status reply
func BenchmarkDecode_Status(b *testing.B) {
	benchmarkCheckDecode(b, []byte("+OK\r\n"))
}

// Benchmark Check+Decode with an integer reply
func BenchmarkDecode_Integer(b *testing.B) {
	benchmarkCheckDecode(b, []byte(":1234567890\r\n"))
}

// Benchmark Check+Decode with small value (100 bytes)
func BenchmarkDecode_SmallBulk(b *testing.B) {
	benchmarkCheckDecode(b, AppendValue(nil, BulkString(bytes.Repeat([]byte("x"), 100))))
}

// Benchmark Check+Decode with large value (1MB)
func BenchmarkDecode_LargeBulk(b *testing.B) {
	benchmarkCheckDecode(b, AppendValue(nil, BulkString(bytes.Repeat([]byte("x"), 1024*1024))))
}

// Benchmark Check+Decode with an MGET-like array of 100 values
func BenchmarkDecode_Array(b *testing.B) {
	values := make(Array, 100)
	for i := range values {
		if i%10 == 0 {
			values[i] = Nil{}
			continue
		}
		values[i] = BulkString("value-" + strconv.Itoa(i))
	}
	benchmarkCheckDecode(b, AppendValue(nil, values))
}

// Benchmark Check+Decode with a HELLO-like map
func BenchmarkDecode_Map(b *testing.B) {
	benchmarkCheckDecode(b, AppendValue(nil, Map{
		{Key: BulkString("server"), Value: BulkString("redis")},
		{Key: BulkString("version"), Value: BulkString("7.2.4")},
		{Key: BulkString("proto"), Value: Integer(3)},
		{Key: BulkString("id"), Value: Integer(5)},
		{Key: BulkString("mode"), Value: BulkString("standalone")},
		{Key: BulkString("role"), Value: BulkString("master")},
		{Key: BulkString("modules"), Value: Array{}},
	}))
}

// Benchmark Check alone on an incomplete large bulk, the cost paid on every
// partial read.
func BenchmarkCheck_Incomplete(b *testing.B) {
	input := AppendValue(nil, BulkString(bytes.Repeat([]byte("x"), 1024*1024)))
	input = input[:len(input)/2]
	b.ResetTimer()

	for b.Loop() {
		if _, err := Check(input); err != ErrIncomplete {
			b.Fatal(err)
		}
	}
}

package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pior/redis/resp"
	"github.com/tidwall/sjson"
)

// formatText renders a reply the way redis-cli does.
func formatText(v resp.Value) string {
	var b strings.Builder
	writeText(&b, v, "")
	return b.String()
}

func writeText(b *strings.Builder, v resp.Value, indent string) {
	switch v := v.(type) {
	case resp.Error:
		b.WriteString("(error) " + string(v))
	case resp.Status:
		b.WriteString(string(v))
	case resp.Integer:
		b.WriteString("(integer) " + strconv.FormatInt(int64(v), 10))
	case resp.Double:
		b.WriteString("(double) " + strconv.FormatFloat(float64(v), 'g', -1, 64))
	case resp.BigNumber:
		b.WriteString("(big number) " + bigText(v))
	case resp.Nil:
		b.WriteString("(nil)")
	case resp.Bool:
		b.WriteString("(" + strconv.FormatBool(bool(v)) + ")")
	case resp.BulkString:
		b.WriteString(strconv.Quote(string(v)))
	case resp.VerbatimString:
		b.WriteString(string(v.Text))
	case resp.Array:
		writeElements(b, v, ")", "(empty array)", indent)
	case resp.Set:
		writeElements(b, v, "~", "(empty set)", indent)
	case resp.Push:
		writeElements(b, v, ">", "(empty push)", indent)
	case resp.Map:
		if len(v) == 0 {
			b.WriteString("(empty hash)")
			return
		}
		for i, pair := range v {
			prefix := strconv.Itoa(i+1) + "# "
			if i > 0 {
				b.WriteString("\n" + indent)
			}
			b.WriteString(prefix)
			writeText(b, pair.Key, indent+strings.Repeat(" ", len(prefix)))
			b.WriteString(" => ")
			writeText(b, pair.Value, indent+strings.Repeat(" ", len(prefix)))
		}
	}
}

func writeElements(b *strings.Builder, values []resp.Value, marker, empty, indent string) {
	if len(values) == 0 {
		b.WriteString(empty)
		return
	}
	for i, elem := range values {
		prefix := strconv.Itoa(i+1) + marker + " "
		if i > 0 {
			b.WriteString("\n" + indent)
		}
		b.WriteString(prefix)
		writeText(b, elem, indent+strings.Repeat(" ", len(prefix)))
	}
}

// formatJSON renders a reply as {"reply": ...}. Error replies become
// {"error": "..."}; maps become objects keyed by the text of their keys.
func formatJSON(v resp.Value) ([]byte, error) {
	if e, ok := v.(resp.Error); ok {
		return sjson.SetBytes([]byte(`{}`), "error", string(e))
	}
	return setJSON([]byte(`{}`), "reply", v)
}

func setJSON(doc []byte, path string, v resp.Value) ([]byte, error) {
	switch v := v.(type) {
	case resp.Error:
		return sjson.SetBytes(doc, path+".error", string(v))
	case resp.Status:
		return sjson.SetBytes(doc, path, string(v))
	case resp.Integer:
		return sjson.SetBytes(doc, path, int64(v))
	case resp.Double:
		f := float64(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			// JSON has no representation for these
			return sjson.SetBytes(doc, path, strconv.FormatFloat(f, 'g', -1, 64))
		}
		return sjson.SetBytes(doc, path, f)
	case resp.BigNumber:
		return sjson.SetRawBytes(doc, path, []byte(bigText(v)))
	case resp.Nil:
		return sjson.SetRawBytes(doc, path, []byte("null"))
	case resp.Bool:
		return sjson.SetBytes(doc, path, bool(v))
	case resp.BulkString:
		return sjson.SetBytes(doc, path, string(v))
	case resp.VerbatimString:
		return sjson.SetBytes(doc, path, string(v.Text))
	case resp.Array:
		return setJSONElements(doc, path, v)
	case resp.Set:
		return setJSONElements(doc, path, v)
	case resp.Push:
		return setJSONElements(doc, path, v)
	case resp.Map:
		doc, err := sjson.SetRawBytes(doc, path, []byte("{}"))
		if err != nil {
			return nil, err
		}
		for _, pair := range v {
			doc, err = setJSON(doc, path+"."+escapePath(keyText(pair.Key)), pair.Value)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil
	}
	return doc, nil
}

func setJSONElements(doc []byte, path string, values []resp.Value) ([]byte, error) {
	doc, err := sjson.SetRawBytes(doc, path, []byte("[]"))
	if err != nil {
		return nil, err
	}
	for i, elem := range values {
		doc, err = setJSON(doc, path+"."+strconv.Itoa(i), elem)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func bigText(n resp.BigNumber) string {
	if n.Int == nil {
		return "0"
	}
	return n.Int.String()
}

// keyText returns the object key used for a map key.
func keyText(v resp.Value) string {
	switch v := v.(type) {
	case resp.BulkString:
		return string(v)
	case resp.Status:
		return string(v)
	case resp.VerbatimString:
		return string(v.Text)
	case resp.Integer:
		return strconv.FormatInt(int64(v), 10)
	}
	return v.String()
}

// escapePath escapes the characters sjson treats as path syntax.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

package redis

import (
	"github.com/pior/redis/resp"
)

// Item is a string key with its value.
type Item struct {
	Key   string
	Value []byte
	Found bool // indicates whether the key exists
}

// Expire is the expiration option of SET.
// The zero value leaves the expiration unset, which clears any existing TTL.
type Expire struct {
	option   string
	value    uint64
	hasValue bool
}

// ExpireSeconds sets a TTL in seconds (EX).
func ExpireSeconds(n uint64) Expire {
	return Expire{option: "EX", value: n, hasValue: true}
}

// ExpireMillis sets a TTL in milliseconds (PX).
func ExpireMillis(n uint64) Expire {
	return Expire{option: "PX", value: n, hasValue: true}
}

// ExpireAtSeconds sets an absolute expiration as a Unix time in seconds (EXAT).
func ExpireAtSeconds(n uint64) Expire {
	return Expire{option: "EXAT", value: n, hasValue: true}
}

// ExpireAtMillis sets an absolute expiration as a Unix time in milliseconds (PXAT).
func ExpireAtMillis(n uint64) Expire {
	return Expire{option: "PXAT", value: n, hasValue: true}
}

// KeepTTL retains the TTL of the existing key (KEEPTTL).
func KeepTTL() Expire {
	return Expire{option: "KEEPTTL"}
}

func (e Expire) appendTo(cmd *resp.Command) {
	if e.option == "" {
		return
	}
	cmd.AddString(e.option)
	if e.hasValue {
		cmd.AddUint(e.value)
	}
}

// Condition restricts when SET writes the key.
type Condition int

const (
	SetAlways      Condition = iota // Write unconditionally
	SetIfNotExists                  // Write only if the key does not exist (NX)
	SetIfExists                     // Write only if the key already exists (XX)
)

func (c Condition) String() string {
	switch c {
	case SetIfNotExists:
		return "NX"
	case SetIfExists:
		return "XX"
	}
	return ""
}

// SetOptions are the options of SET and GetSet.
type SetOptions struct {
	Expire    Expire
	Condition Condition
}

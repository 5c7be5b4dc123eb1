package redis

import (
	"context"

	"github.com/pior/redis/resp"
)

// Querier is the set of string commands of Client, for callers that want
// to substitute a fake in tests.
type Querier interface {
	Do(ctx context.Context, cmd *resp.Command) (resp.Value, error)
	Get(ctx context.Context, key string) (Item, error)
	Set(ctx context.Context, key string, value []byte, opts SetOptions) (bool, error)
	GetSet(ctx context.Context, key string, value []byte, opts SetOptions) (Item, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	MGet(ctx context.Context, keys ...string) ([]Item, error)
	MSet(ctx context.Context, items ...Item) error
	MSetNX(ctx context.Context, items ...Item) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
	DecrBy(ctx context.Context, key string, delta int64) (int64, error)
	Append(ctx context.Context, key string, value []byte) (int64, error)
	Strlen(ctx context.Context, key string) (int64, error)
	SetRange(ctx context.Context, key string, offset int64, value []byte) (int64, error)
	GetRange(ctx context.Context, key string, start, end int64) ([]byte, error)
}

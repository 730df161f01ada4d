package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"counter-service/counter/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore implementa domain.CounterStore sobre um Redis
// compartilhado. Uma chave por país: "<prefix>:<code>".
//
// A enumeração usa SCAN por cursor (nunca KEYS) para não segurar o backend
// em keyspaces grandes, e o clear completo só remove chaves do namespace
// de contadores.
type RedisCounterStore struct {
	rdb       *redis.Client
	prefix    string
	scanCount int64
}

type RedisCounterOption func(*RedisCounterStore)

func WithKeyPrefix(prefix string) RedisCounterOption {
	return func(s *RedisCounterStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

// WithScanCount ajusta o tamanho da página do SCAN/MGET.
func WithScanCount(n int64) RedisCounterOption {
	return func(s *RedisCounterStore) {
		if n > 0 {
			s.scanCount = n
		}
	}
}

func NewRedisCounterStore(rdb *redis.Client, opts ...RedisCounterOption) *RedisCounterStore {
	s := &RedisCounterStore{
		rdb:       rdb,
		prefix:    "visits",
		scanCount: 128,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisCounterStore) key(code string) string { return s.prefix + ":" + code }

func (s *RedisCounterStore) code(key string) string { return strings.TrimPrefix(key, s.prefix+":") }

func (s *RedisCounterStore) Increment(ctx context.Context, code string) (int64, error) {
	n, err := s.rdb.Incr(ctx, s.key(code)).Result()
	if err != nil {
		return 0, storeErr("incr", err)
	}
	return n, nil
}

func (s *RedisCounterStore) ScanAll(ctx context.Context) (domain.Counts, error) {
	out := domain.Counts{}

	var cursor uint64
	match := s.prefix + ":*"
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, s.scanCount).Result()
		if err != nil {
			return nil, storeErr("scan", err)
		}

		if len(keys) > 0 {
			vals, err := s.rdb.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, storeErr("mget", err)
			}
			for i, v := range vals {
				raw, ok := v.(string)
				if !ok {
					// chave removida entre o SCAN e o MGET
					continue
				}
				n, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					continue
				}
				out[s.code(keys[i])] = n
			}
		}

		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}

func (s *RedisCounterStore) ClearAll(ctx context.Context) (int64, error) {
	var removed int64

	var cursor uint64
	match := s.prefix + ":*"
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, s.scanCount).Result()
		if err != nil {
			return removed, storeErr("scan", err)
		}

		if len(keys) > 0 {
			n, err := s.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, storeErr("del", err)
			}
			removed += n
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (s *RedisCounterStore) ClearOne(ctx context.Context, code string) (bool, error) {
	n, err := s.rdb.Del(ctx, s.key(code)).Result()
	if err != nil {
		return false, storeErr("del", err)
	}
	return n > 0, nil
}

func (s *RedisCounterStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

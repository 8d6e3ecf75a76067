package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize    = 20
	defaultRedisMaxRetries  = 3
	defaultRedisDialTimeout = 5 * time.Second

	redisKeyPrefix = "vantage:"
)

var redisSetIfNewerScript = redis.NewScript(`
local key = KEYS[1]
local version = tonumber(ARGV[1])

local cur = redis.call('HGET', key, 'v')
if cur and tonumber(cur) > version then
  return 0
end

redis.call('HSET', key, 'v', ARGV[1], 'd', ARGV[2])
return 1
`)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Host         string        `json:"host" yaml:"host" toml:"host"`
	Port         int           `json:"port" yaml:"port" toml:"port"`
	Password     string        `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	DB           int           `json:"db" yaml:"db" toml:"db"`
	Cluster      bool          `json:"cluster" yaml:"cluster" toml:"cluster"`
	ClusterNodes []string      `json:"cluster_nodes,omitempty" yaml:"cluster_nodes,omitempty" toml:"cluster_nodes,omitempty"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size" toml:"pool_size"`
	MaxRetries   int           `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	DialTimeout  time.Duration `json:"-" yaml:"-" toml:"-"`
}

// RedisStorage is a Redis-backed implementation of Storage.
// Several dashboard processes pointing at the same Redis share load tokens
// and chart bodies.
type RedisStorage struct {
	client redis.UniversalClient
	script *redis.Script

	closeOnce sync.Once
	closeErr  error
}

// NewRedisStorage constructs a Redis backend.
func NewRedisStorage(cfg *RedisConfig) (*RedisStorage, error) {
	conf, err := normalizeRedisConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := newRedisClient(conf)
	s := &RedisStorage{
		client: client,
		script: redisSetIfNewerScript,
	}

	if err := s.pingWithRetry(context.Background(), conf.MaxRetries); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return s, nil
}

func (s *RedisStorage) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	if key == "" {
		return 0, fmt.Errorf("key is required")
	}
	n, err := s.client.IncrBy(ctx, redisKeyPrefix+key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing %q: %w", key, err)
	}
	return n, nil
}

func (s *RedisStorage) SetIfNewer(ctx context.Context, key string, version int64, value []byte) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is required")
	}
	res, err := s.script.Run(ctx, s.client, []string{redisKeyPrefix + key}, version, value).Result()
	if err != nil {
		return false, fmt.Errorf("running redis set-if-newer script: %w", err)
	}
	written, err := asInt64(res)
	if err != nil {
		return false, fmt.Errorf("parsing set-if-newer result: %w", err)
	}
	return written == 1, nil
}

func (s *RedisStorage) GetVersioned(ctx context.Context, key string) ([]byte, int64, error) {
	vals, err := s.client.HMGet(ctx, redisKeyPrefix+key, "v", "d").Result()
	if err != nil {
		return nil, 0, fmt.Errorf("reading %q: %w", key, err)
	}
	if len(vals) != 2 || vals[0] == nil {
		return nil, 0, nil
	}

	version, err := asInt64(vals[0])
	if err != nil {
		return nil, 0, fmt.Errorf("parsing version of %q: %w", key, err)
	}
	data, _ := vals[1].(string)
	return []byte(data), version, nil
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Close releases Redis resources. It is idempotent.
func (s *RedisStorage) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func (s *RedisStorage) pingWithRetry(ctx context.Context, maxRetries int) error {
	attempts := maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	backoff := 100 * time.Millisecond
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := s.client.Ping(ctx).Err()
		if err == nil {
			return nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
	}

	if lastErr == nil {
		lastErr = errors.New("ping failed with unknown error")
	}
	return lastErr
}

func normalizeRedisConfig(cfg *RedisConfig) (*RedisConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	conf := *cfg
	if conf.PoolSize <= 0 {
		conf.PoolSize = defaultRedisPoolSize
	}
	if conf.MaxRetries <= 0 {
		conf.MaxRetries = defaultRedisMaxRetries
	}
	if conf.DialTimeout <= 0 {
		conf.DialTimeout = defaultRedisDialTimeout
	}

	if conf.Cluster {
		if len(conf.ClusterNodes) == 0 {
			return nil, fmt.Errorf("cluster_nodes is required when cluster=true")
		}
	} else {
		if conf.Host == "" {
			return nil, fmt.Errorf("host is required when cluster=false")
		}
		if conf.Port <= 0 {
			return nil, fmt.Errorf("port must be positive when cluster=false, got %d", conf.Port)
		}
	}

	return &conf, nil
}

func newRedisClient(cfg *RedisConfig) redis.UniversalClient {
	if cfg.Cluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       cfg.ClusterNodes,
			Password:    cfg.Password,
			PoolSize:    cfg.PoolSize,
			MaxRetries:  cfg.MaxRetries,
			DialTimeout: cfg.DialTimeout,
		})
	}

	addr := cfg.Host + ":" + strconv.Itoa(cfg.Port)
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
	})
}

func asInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse int64 from %q: %w", x, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

// Open builds the backend named by backend.
func Open(backend string, redisCfg *RedisConfig) (Storage, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStorage(), nil
	case BackendRedis:
		return NewRedisStorage(redisCfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

package statestore

// RedisOption configures the Redis store.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		prefix: "",
	}
}

// WithPrefix sets a key prefix for all store operations.
// Keys are stored as "{prefix}:{key}". The gateway uses distinct prefixes
// for the endpoint-script, hook-script and workspace stores so they can
// share one Redis instance.
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

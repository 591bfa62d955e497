// Package redis wraps [github.com/redis/go-redis/v9] with connection
// verification, startup retry, a health-check closure and a shutdown hook.
//
// The gateway uses it only when a Redis-backed state store is configured
// (see pkg/statestore.Redis): the same client is shared by the
// endpoint-script, hook-script and workspace stores under distinct key
// prefixes.
//
// Both redis:// and rediss:// (TLS) URL schemes are supported. Open pings
// the server before returning and retries with a linear backoff, so a
// gateway starting alongside its Redis container does not flap.
package redis

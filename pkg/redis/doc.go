// Package redis opens go-redis clients from environment configuration.
//
//	var cfg redis.Config // REDIS_URL, REDIS_POOL_SIZE, ...
//	client, err := redis.Open(ctx, cfg)
//	err = app.Run(":8080", anvil.ShutdownHook(redis.Shutdown(client)))
//
// Open retries the initial PING with linear backoff and supports both
// redis:// and rediss:// (TLS) URLs.
package redis

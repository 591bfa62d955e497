package main

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/mkloubert/editgate"
	"github.com/mkloubert/editgate/pkg/config"
	redisconn "github.com/mkloubert/editgate/pkg/redis"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// stateStores bundles the backend-specific store instances. All four
// concerns (endpoint state, workspace state, hook global state, and the
// per-script hook states) share one backend: in-process memory by
// default, Redis when redis_url is configured.
type stateStores struct {
	endpoint  statestore.Store[any]
	workspace statestore.Store[any]
	global    statestore.Store[any]

	client   redis.UniversalClient
	shutdown []func(context.Context) error
}

func newStores(ctx context.Context, cfg *config.Config) (*stateStores, error) {
	if cfg.RedisURL == "" {
		s := &stateStores{
			endpoint:  statestore.NewMemory[any](),
			workspace: statestore.NewMemory[any](),
			global:    statestore.NewMemory[any](),
		}
		s.shutdown = append(s.shutdown, closer(s.endpoint), closer(s.workspace), closer(s.global))
		return s, nil
	}

	client, err := redisconn.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	s := &stateStores{
		endpoint:  statestore.NewRedis[any](client, nil, statestore.WithPrefix("editgate:endpoint")),
		workspace: statestore.NewRedis[any](client, nil, statestore.WithPrefix("editgate:workspace")),
		global:    statestore.NewRedis[any](client, nil, statestore.WithPrefix("editgate:global")),
		client:    client,
	}
	s.shutdown = append(s.shutdown, redisconn.Shutdown(client))
	return s, nil
}

// forScript returns the persistent state store backing a single script.
// Each script gets its own namespace so states never bleed between scripts.
func (s *stateStores) forScript(path string) statestore.Store[any] {
	if s.client != nil {
		return statestore.NewRedis[any](s.client, nil, statestore.WithPrefix("editgate:script:"+path))
	}
	return statestore.NewMemory[any]()
}

func (s *stateStores) healthOptions() []editgate.HealthOption {
	if s.client == nil {
		return nil
	}
	return []editgate.HealthOption{
		editgate.WithReadinessCheck("redis", redisconn.Healthcheck(s.client)),
	}
}

func closer(st statestore.Store[any]) func(context.Context) error {
	return func(context.Context) error { return st.Close() }
}

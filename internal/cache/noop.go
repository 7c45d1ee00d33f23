package cache

import (
	"context"
	"time"
)

// NoopCache never stores anything; every Get is a miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, interface{}) (bool, error)          { return false, nil }
func (NoopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, string) error                          { return nil }
func (NoopCache) Purge(context.Context) (int64, error)                          { return 0, nil }
func (NoopCache) DeleteExpired(context.Context) (int64, error)                  { return 0, nil }

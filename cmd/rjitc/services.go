package main

import (
	"github.com/samber/do"

	"rjit/pkg/codecache"
	"rjit/pkg/config"
	"rjit/pkg/driver"
)

// cacheService owns the code cache for the lifetime of the injector. The
// cache is nil when the configuration leaves cache.path empty.
type cacheService struct {
	cache *codecache.Cache
}

func newCacheService(i *do.Injector) (*cacheService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	path := cfg.CachePath()
	if path == "" {
		return &cacheService{}, nil
	}
	c, err := codecache.Open(path)
	if err != nil {
		return nil, err
	}
	return &cacheService{cache: c}, nil
}

// Shutdown implements do.Shutdownable.
func (s *cacheService) Shutdown() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

func newBuildOptions(i *do.Injector) (driver.Options, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cs, err := do.Invoke[*cacheService](i)
	if err != nil {
		return driver.Options{}, err
	}
	return driver.Options{
		HeapBase:     cfg.HeapBase(),
		FrameReserve: cfg.Frame.Reserve,
		Cache:        cs.cache,
	}, nil
}

// newInjector registers the services a build needs. They are created
// lazily, so a cache is only opened once something compiles.
func newInjector(cfg *config.Config) *do.Injector {
	i := do.New()
	do.ProvideValue(i, cfg)
	do.Provide(i, newCacheService)
	do.Provide(i, newBuildOptions)
	return i
}

package catalog

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	menusKey   = "menus"
	modulesKey = "modules"
)

// CacheMetrics receives hit/miss notifications; *observability.Metrics satisfies it.
type CacheMetrics interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// CachedRepository fronts a catalog repository with an expiring LRU.
// Catalog rows are seed data, so staleness is bounded by the TTL only.
type CachedRepository struct {
	next    RepositoryAPI
	menus   *lru.LRU[string, []Menu]
	modules *lru.LRU[string, []Module]
	metrics CacheMetrics
}

func NewCachedRepository(next RepositoryAPI, size int, ttl time.Duration, metrics CacheMetrics) *CachedRepository {
	if size <= 0 {
		size = 16
	}
	return &CachedRepository{
		next:    next,
		menus:   lru.NewLRU[string, []Menu](size, nil, ttl),
		modules: lru.NewLRU[string, []Module](size, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedRepository) ListMenus(ctx context.Context) ([]Menu, error) {
	if menus, ok := c.menus.Get(menusKey); ok {
		c.hit(menusKey)
		return menus, nil
	}
	c.miss(menusKey)

	menus, err := c.next.ListMenus(ctx)
	if err != nil {
		return nil, err
	}
	c.menus.Add(menusKey, menus)
	return menus, nil
}

func (c *CachedRepository) ListModules(ctx context.Context) ([]Module, error) {
	if modules, ok := c.modules.Get(modulesKey); ok {
		c.hit(modulesKey)
		return modules, nil
	}
	c.miss(modulesKey)

	modules, err := c.next.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	c.modules.Add(modulesKey, modules)
	return modules, nil
}

// Purge drops every cached entry, e.g. after reseeding the catalog.
func (c *CachedRepository) Purge() {
	c.menus.Purge()
	c.modules.Purge()
}

func (c *CachedRepository) hit(name string) {
	if c.metrics != nil {
		c.metrics.CacheHit("catalog_" + name)
	}
}

func (c *CachedRepository) miss(name string) {
	if c.metrics != nil {
		c.metrics.CacheMiss("catalog_" + name)
	}
}

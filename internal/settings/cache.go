// Package settings owns the company-wide configuration fetched from the
// backend: cached in memory for the life of the process, persisted locally as
// an offline-ish fallback, and fetched at most once no matter how many
// consumers ask concurrently.
package settings

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"clt400tt-terminal/internal/colet"
)

// Parametros is the company-wide configuration. AlteraData gates the manual
// timestamp override control on the forms.
type Parametros struct {
	NomeEmpresa string `json:"nome_empresa"`
	AlteraData  bool   `json:"altera_data"`
}

// Cache serves settings with a populate-once lifecycle: memory first, then
// the persistent store, then exactly one backend fetch shared by all
// concurrent callers.
type Cache struct {
	client *colet.Client
	store  Store
	log    zerolog.Logger

	mu      sync.RWMutex
	current *Parametros

	group singleflight.Group
}

// NewCache builds the settings cache. The store may be nil, in which case the
// persistent tier is skipped.
func NewCache(client *colet.Client, store Store, log zerolog.Logger) *Cache {
	return &Cache{
		client: client,
		store:  store,
		log:    log.With().Str("component", "settings").Logger(),
	}
}

// Get returns the cached settings, populating the cache on first use.
// Concurrent first-use callers share a single backend request.
func (c *Cache) Get(ctx context.Context) (*Parametros, error) {
	c.mu.RLock()
	if p := c.current; p != nil {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("parametros", func() (any, error) {
		// A racing caller may have populated the cache already.
		c.mu.RLock()
		p := c.current
		c.mu.RUnlock()
		if p != nil {
			return p, nil
		}

		if c.store != nil {
			cached, err := c.store.Load(ctx)
			if err != nil {
				c.log.Warn().Err(err).Msg("settings cache read failed")
			} else if cached != nil {
				c.set(cached)
				return cached, nil
			}
		}

		fetched, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Parametros), nil
}

// Refresh forces a new backend fetch, bypassing both cache tiers.
func (c *Cache) Refresh(ctx context.Context) (*Parametros, error) {
	return c.fetch(ctx)
}

// Invalidate clears the in-memory value and the persisted copy.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	if c.store != nil {
		return c.store.Clear(ctx)
	}
	return nil
}

// fetch pulls settings from the backend and updates both tiers. On failure it
// falls back to the persisted copy when one exists.
func (c *Cache) fetch(ctx context.Context) (*Parametros, error) {
	var p Parametros
	if err := c.client.Get(ctx, "/parametros", &p); err != nil {
		if c.store != nil {
			if cached, loadErr := c.store.Load(ctx); loadErr == nil && cached != nil {
				c.log.Warn().Err(err).Msg("settings fetch failed, using persisted copy")
				c.set(cached)
				return cached, nil
			}
		}
		return nil, err
	}

	c.set(&p)
	if c.store != nil {
		if err := c.store.Save(ctx, &p); err != nil {
			c.log.Warn().Err(err).Msg("failed to persist settings")
		}
	}
	return &p, nil
}

func (c *Cache) set(p *Parametros) {
	c.mu.Lock()
	c.current = p
	c.mu.Unlock()
}

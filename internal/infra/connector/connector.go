package connector

import (
	"context"
	"sync"
	"time"

	"github.com/bryanwahyu/accessibility-checker/internal/config"
	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
	aiopenai "github.com/bryanwahyu/accessibility-checker/internal/infra/ai/openai"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/cache/memory"
	rediscache "github.com/bryanwahyu/accessibility-checker/internal/infra/cache/redis"
	visionopenai "github.com/bryanwahyu/accessibility-checker/internal/infra/vision/openai"
)

// Connector owns the clients for the external services the pipeline
// talks to. Clients are built lazily on first use and then reused, so
// two callers asking for the same service share one client. There is no
// package-level instance: construct one Connector per process (or per
// test) and inject it.
type Connector struct {
	cfg    *config.Config
	signer visionopenai.URLSigner

	// lifetime ctx, bounds background work like the memory-cache sweeper
	ctx context.Context

	mu          sync.Mutex
	vision      domain.LabelDetector
	recommender assessment.Recommender
	cacheStore  domain.CacheStore
	redisStore  *rediscache.Store
}

func New(ctx context.Context, cfg *config.Config, signer visionopenai.URLSigner) *Connector {
	return &Connector{ctx: ctx, cfg: cfg, signer: signer}
}

// Vision returns the label-detection client
func (c *Connector) Vision() domain.LabelDetector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vision == nil {
		c.vision = visionopenai.NewClient(c.cfg.OpenAI.APIKey, c.cfg.OpenAI.VisionModel, c.signer)
	}
	return c.vision
}

// Recommender returns the text-model client, or nil when no API key is
// configured. A nil recommender makes the pipeline fall back to its
// deterministic recommendations.
func (c *Connector) Recommender() assessment.Recommender {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.OpenAI.APIKey == "" {
		return nil
	}
	if c.recommender == nil {
		c.recommender = aiopenai.NewClient(c.cfg.OpenAI.APIKey, c.cfg.OpenAI.TextModel)
	}
	return c.recommender
}

// CacheStore returns the analysis result cache backend: Redis when
// enabled in config, otherwise an in-process store with a sweeper.
func (c *Connector) CacheStore() domain.CacheStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cacheStore == nil {
		if c.cfg.Redis.Enabled {
			s := rediscache.New(rediscache.Options{
				Address:  c.cfg.Redis.Address,
				Password: c.cfg.Redis.Password,
				DB:       c.cfg.Redis.DB,
			})
			c.redisStore = s
			c.cacheStore = s
		} else {
			s := memory.New()
			s.StartSweeper(c.ctx, time.Hour)
			c.cacheStore = s
		}
	}
	return c.cacheStore
}

// Ping verifies the cache backend is reachable. Memory stores are
// always healthy.
func (c *Connector) Ping(ctx context.Context) error {
	c.mu.Lock()
	s := c.redisStore
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Ping(ctx)
}

// Close releases networked clients
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.redisStore != nil {
		return c.redisStore.Close()
	}
	return nil
}

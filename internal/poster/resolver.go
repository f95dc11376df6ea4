package poster

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"movierec-service/internal/metrics"
	"movierec-service/internal/recommend/model"
)

// DefaultFallbackURL: заглушка, если постер получить не удалось.
const DefaultFallbackURL = "https://via.placeholder.com/150?text=No+Image"

type ResolverConfig struct {
	Fallback    string
	Timeout     time.Duration // на один поиск
	CacheTTL    time.Duration
	MissTTL     time.Duration // сколько помнить «постера нет»
	Concurrency int
}

// Resolver applies the fallback policy on top of a Lookuper: URL never fails.
type Resolver struct {
	lookup Lookuper
	cfg    ResolverConfig
	cache  *gocache.Cache
	group  singleflight.Group
	logger zerolog.Logger
}

func NewResolver(lookup Lookuper, cfg ResolverConfig, logger zerolog.Logger) *Resolver {
	if cfg.Fallback == "" {
		cfg.Fallback = DefaultFallbackURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.MissTTL <= 0 {
		cfg.MissTTL = min(cfg.CacheTTL, 10*time.Minute)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Resolver{
		lookup: lookup,
		cfg:    cfg,
		cache:  gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger: logger.With().Str("component", "poster").Logger(),
	}
}

// URL returns the poster for title, or the fallback on any lookup failure.
func (r *Resolver) URL(ctx context.Context, title string) string {
	if v, ok := r.cache.Get(title); ok {
		metrics.PosterLookups.WithLabelValues("cache").Inc()
		return v.(string)
	}
	if r.lookup == nil {
		return r.cfg.Fallback
	}

	v, err, _ := r.group.Do(title, func() (any, error) {
		lctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
		return r.lookup.Lookup(lctx, title)
	})
	if errors.Is(err, ErrNoPoster) {
		// поставщик ответил, повторять запрос до MissTTL незачем; сбои сети не кэшируем
		r.cache.Set(title, r.cfg.Fallback, r.cfg.MissTTL)
		metrics.PosterLookups.WithLabelValues("miss").Inc()
		return r.cfg.Fallback
	}
	if err != nil {
		metrics.PosterLookups.WithLabelValues("fallback").Inc()
		r.logger.Debug().Err(err).Str("title", title).Msg("poster lookup failed, using fallback")
		return r.cfg.Fallback
	}
	u := v.(string)
	r.cache.SetDefault(title, u)
	metrics.PosterLookups.WithLabelValues("ok").Inc()
	return u
}

// Enrich fills PosterURL for every recommendation in place. It never fails:
// по истечении ctx оставшиеся элементы получают заглушку.
func (r *Resolver) Enrich(ctx context.Context, recs []model.Recommendation) {
	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i := range recs {
		g.Go(func() error {
			if ctx.Err() != nil {
				recs[i].PosterURL = r.cfg.Fallback
				return nil
			}
			recs[i].PosterURL = r.URL(ctx, recs[i].Title)
			return nil
		})
	}
	_ = g.Wait()
}

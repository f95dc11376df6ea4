package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"movierec-service/internal/metrics"
	"movierec-service/internal/recommend/model"
)

// Config: параметры построения и выдачи.
type Config struct {
	GenreSep       string
	MaxRows        int
	MaxFeatures    int
	TitleThreshold int
	TitleLimit     int
	GenreLimit     int
	Workers        int
}

func DefaultConfig() Config {
	return Config{
		GenreSep:       "|",
		MaxRows:        DefaultMaxRows,
		MaxFeatures:    DefaultMaxFeatures,
		TitleThreshold: DefaultTitleThreshold,
		TitleLimit:     9,
		GenreLimit:     15,
	}
}

// snapshot: всё, что строится за один проход; после публикации не меняется.
type snapshot struct {
	catalog  *Catalog
	vocab    *Vocabulary
	matrix   *SimilarityMatrix
	resolver *Resolver
	version  uint64
	builtAt  time.Time
}

// Status describes the service state for health checks.
type Status struct {
	Ready      bool      `json:"ready"`
	Building   bool      `json:"building"`
	Version    uint64    `json:"version"`
	Entries    int       `json:"entries"`
	Vocabulary int       `json:"vocabulary"`
	Genres     int       `json:"genres"`
	BuiltAt    time.Time `json:"builtAt,omitempty"`
	LastError  string    `json:"lastError,omitempty"`
}

// Service owns the catalog, vocabulary and matrix and answers read-only queries.
// Readers never lock; Build swaps a complete snapshot in atomically.
type Service struct {
	cfg    Config
	logger zerolog.Logger

	snap     atomic.Pointer[snapshot]
	buildMu  sync.Mutex
	building atomic.Bool
	version  atomic.Uint64
	lastErr  atomic.Value // string
}

func New(cfg Config, logger zerolog.Logger) *Service {
	d := DefaultConfig()
	if cfg.GenreSep == "" {
		cfg.GenreSep = d.GenreSep
	}
	if cfg.TitleThreshold <= 0 {
		cfg.TitleThreshold = d.TitleThreshold
	}
	if cfg.TitleLimit <= 0 {
		cfg.TitleLimit = d.TitleLimit
	}
	if cfg.GenreLimit <= 0 {
		cfg.GenreLimit = d.GenreLimit
	}
	return &Service{cfg: cfg, logger: logger.With().Str("component", "recommend").Logger()}
}

// Build loads records and rebuilds features and matrix, then publishes the result.
// Сборки сериализуются; при ошибке остаётся предыдущий снимок (если был).
func (s *Service) Build(ctx context.Context, records []model.RawRecord) (LoadReport, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	s.building.Store(true)
	defer s.building.Store(false)

	start := time.Now()
	snap, rep, err := s.build(ctx, records)
	if err != nil {
		metrics.BuildFailures.Inc()
		s.lastErr.Store(err.Error())
		s.logger.Error().Err(err).Int("input", rep.Input).Msg("catalog build failed")
		return rep, err
	}
	s.snap.Store(snap)
	s.lastErr.Store("")

	dur := time.Since(start)
	metrics.BuildDuration.Observe(dur.Seconds())
	metrics.CatalogEntries.Set(float64(snap.catalog.Len()))
	metrics.VocabularySize.Set(float64(snap.vocab.Len()))
	s.logger.Info().
		Uint64("version", snap.version).
		Int("input", rep.Input).
		Int("truncated", rep.Truncated).
		Int("duplicates", rep.Duplicates).
		Int("dropped", len(rep.Dropped)).
		Int("entries", snap.catalog.Len()).
		Int("vocabulary", snap.vocab.Len()).
		Dur("elapsed", dur).
		Msg("catalog built")
	return rep, nil
}

func (s *Service) build(ctx context.Context, records []model.RawRecord) (*snapshot, LoadReport, error) {
	cat, rep, err := LoadCatalog(records, model.LoadOptions{GenreSep: s.cfg.GenreSep, MaxRows: s.cfg.MaxRows})
	for _, de := range rep.Dropped {
		metrics.DroppedRecords.WithLabelValues(de.Reason).Inc()
		s.logger.Debug().Int("row", de.Row).Str("reason", de.Reason).Msg("record dropped")
	}
	if err != nil {
		return nil, rep, err
	}
	vocab, vectors := BuildFeatures(cat, s.cfg.MaxFeatures)
	matrix, err := BuildMatrix(ctx, vectors, s.cfg.Workers)
	if err != nil {
		return nil, rep, fmt.Errorf("similarity matrix: %w", err)
	}
	return &snapshot{
		catalog:  cat,
		vocab:    vocab,
		matrix:   matrix,
		resolver: NewResolver(cat, s.cfg.TitleThreshold),
		version:  s.version.Add(1),
		builtAt:  time.Now(),
	}, rep, nil
}

// Ready reports whether a snapshot is published.
func (s *Service) Ready() bool { return s.snap.Load() != nil }

func (s *Service) Status() Status {
	st := Status{Building: s.building.Load()}
	if v, ok := s.lastErr.Load().(string); ok {
		st.LastError = v
	}
	if snap := s.snap.Load(); snap != nil {
		st.Ready = true
		st.Version = snap.version
		st.Entries = snap.catalog.Len()
		st.Vocabulary = snap.vocab.Len()
		st.Genres = len(snap.catalog.genres)
		st.BuiltAt = snap.builtAt
	}
	return st
}

// RecommendByTitle resolves query and returns the most similar other titles.
func (s *Service) RecommendByTitle(query string) (res model.TitleResult, err error) {
	defer func() { metrics.Queries.WithLabelValues("title", outcome(err)).Inc() }()

	if strings.TrimSpace(query) == "" {
		return res, ErrInvalidQuery
	}
	snap := s.snap.Load()
	if snap == nil {
		return res, ErrNotReady
	}
	match, err := snap.resolver.ResolveTitle(query)
	if err != nil {
		return res, err
	}
	if snap.vocab.Len() == 0 {
		return res, fmt.Errorf("%w: catalog has no textual features", ErrNotFound)
	}

	self := match.Entry.ID
	row := snap.matrix.Row(self)
	ids := make([]int, 0, len(row)-1)
	for j := range row {
		if j != self {
			ids = append(ids, j)
		}
	}
	// по убыванию близости, при равенстве, по индексу каталога
	sort.SliceStable(ids, func(a, b int) bool { return row[ids[a]] > row[ids[b]] })
	if len(ids) > s.cfg.TitleLimit {
		ids = ids[:s.cfg.TitleLimit]
	}

	res = model.TitleResult{
		Query:         query,
		ResolvedTitle: match.Entry.Title,
		MatchScore:    match.Score,
		Results:       make([]model.Recommendation, len(ids)),
	}
	for k, j := range ids {
		score := row[j]
		res.Results[k] = model.Recommendation{Title: snap.catalog.Entry(j).Title, Score: &score}
	}
	return res, nil
}

// RecommendByGenre lists up to GenreLimit titles whose genres contain query, in catalog order.
func (s *Service) RecommendByGenre(query string) (model.GenreResult, error) {
	return s.byGenre("genre", query, func(r *Resolver, q string) ([]int, error) { return r.ResolveGenre(q) })
}

// RecommendByGenreExact is the dropdown variant: query must be one of ListGenres.
func (s *Service) RecommendByGenreExact(genre string) (model.GenreResult, error) {
	return s.byGenre("genre_exact", genre, func(r *Resolver, q string) ([]int, error) { return r.ResolveGenreExact(q) })
}

func (s *Service) byGenre(kind, query string, resolve func(*Resolver, string) ([]int, error)) (res model.GenreResult, err error) {
	defer func() { metrics.Queries.WithLabelValues(kind, outcome(err)).Inc() }()

	if strings.TrimSpace(query) == "" {
		return res, ErrInvalidQuery
	}
	snap := s.snap.Load()
	if snap == nil {
		return res, ErrNotReady
	}
	ids, err := resolve(snap.resolver, query)
	if err != nil {
		return res, err
	}
	if len(ids) > s.cfg.GenreLimit {
		ids = ids[:s.cfg.GenreLimit]
	}
	res = model.GenreResult{
		Query:      query,
		GenreLabel: genreLabel(query),
		Results:    make([]model.Recommendation, len(ids)),
	}
	for k, id := range ids {
		res.Results[k] = model.Recommendation{Title: snap.catalog.Entry(id).Title}
	}
	return res, nil
}

// ListGenres returns the exact genre tokens of the active catalog.
func (s *Service) ListGenres() ([]string, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.resolver.Genres(), nil
}

// "sci-fi" → "Sci-Fi"
func genreLabel(q string) string {
	return cases.Title(language.English).String(normalizeTitle(q))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	default:
		return "error"
	}
}

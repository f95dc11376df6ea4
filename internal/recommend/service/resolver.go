package service

import (
	"sort"
	"strings"

	"movierec-service/internal/recommend/model"
)

// suggestLimit: сколько вариантов «возможно, вы имели в виду» отдаём при ErrNotFound.
const suggestLimit = 3

// Resolver maps free-text user input onto catalog entries.
type Resolver struct {
	cat       *Catalog
	idx       *titleIndex
	threshold int
}

// NewResolver builds the title index over cat. threshold <= 0 selects DefaultTitleThreshold.
func NewResolver(cat *Catalog, threshold int) *Resolver {
	if threshold <= 0 {
		threshold = DefaultTitleThreshold
	}
	return &Resolver{cat: cat, idx: buildTitleIndex(cat), threshold: threshold}
}

// ResolveTitle finds the best fuzzy match for query among all catalog titles.
// При равенстве очков побеждает более ранняя запись каталога.
func (r *Resolver) ResolveTitle(query string) (model.QueryMatch, error) {
	q := normalizeTitle(query)
	if q == "" {
		return model.QueryMatch{}, ErrInvalidQuery
	}

	// (1) точное совпадение нормализованного названия
	if id, ok := r.idx.byTitle[q]; ok {
		return model.QueryMatch{Entry: r.cat.Entry(id), Score: 100}, nil
	}

	// (2) fuzzy по всему каталогу
	key := matchKey(q)
	bestID, best := -1, -1
	for id, cand := range r.idx.keys {
		if s := fuzzyScore(key, cand); s > best {
			best, bestID = s, id
		}
	}
	if bestID < 0 || best < r.threshold {
		return model.QueryMatch{Score: max(best, 0)}, &NotFoundError{
			Query:       query,
			BestScore:   max(best, 0),
			Suggestions: r.Suggest(q, suggestLimit),
		}
	}
	return model.QueryMatch{Entry: r.cat.Entry(bestID), Score: best}, nil
}

// Suggest returns up to limit titles sharing trigrams with query, best first.
func (r *Resolver) Suggest(query string, limit int) []string {
	key := matchKey(normalizeTitle(query))
	cands := r.idx.candidates(key)
	if len(cands) == 0 || limit <= 0 {
		return nil
	}
	type scored struct {
		id, score int
	}
	list := make([]scored, 0, len(cands))
	for _, id := range cands {
		list = append(list, scored{id: id, score: fuzzyScore(key, r.idx.keys[id])})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = r.cat.Entry(s.id).Title
	}
	return out
}

// ResolveGenre selects every entry whose lowercase genre string contains query,
// in catalog order.
func (r *Resolver) ResolveGenre(query string) ([]int, error) {
	q := normalizeTitle(query)
	if q == "" {
		return nil, ErrInvalidQuery
	}
	var ids []int
	for i, e := range r.cat.Entries() {
		if strings.Contains(e.Genres, q) {
			ids = append(ids, i)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return ids, nil
}

// ResolveGenreExact is the dropdown path: genre must be one of Genres().
func (r *Resolver) ResolveGenreExact(genre string) ([]int, error) {
	g := normalizeTitle(genre)
	if g == "" {
		return nil, ErrInvalidQuery
	}
	var ids []int
	for i, e := range r.cat.Entries() {
		for _, tag := range e.GenreTags {
			if tag == g {
				ids = append(ids, i)
				break
			}
		}
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return ids, nil
}

// Genres lists the exact genre tokens present in the catalog, sorted.
func (r *Resolver) Genres() []string { return r.cat.Genres() }

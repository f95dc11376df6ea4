package service

import (
	"sort"
	"strings"

	"movierec-service/internal/recommend/model"
	"movierec-service/internal/utils"
)

// DefaultMaxRows: исходная обрезка каталога; матрица n×n, поэтому n ограничено.
const DefaultMaxRows = 10000

// Catalog is the immutable, deduplicated movie list. Entry IDs are positions in it.
type Catalog struct {
	entries []model.CatalogEntry
	genres  []string // уникальные жанровые токены, по алфавиту
}

// LoadReport summarizes what LoadCatalog did with its input.
type LoadReport struct {
	Input      int         `json:"input"`
	Truncated  int         `json:"truncated"`
	Duplicates int         `json:"duplicates"`
	Dropped    []DataError `json:"-"`
	Kept       int         `json:"kept"`
}

// LoadCatalog normalizes raw records into a catalog:
// обрезка до MaxRows → удаление точных дублей → удаление строк без названия/жанров →
// нормализация → плотная переиндексация с 0.
func LoadCatalog(records []model.RawRecord, opt model.LoadOptions) (*Catalog, LoadReport, error) {
	rep := LoadReport{Input: len(records)}

	// 1) head(N) выполняется до очистки
	if opt.MaxRows > 0 && len(records) > opt.MaxRows {
		rep.Truncated = len(records) - opt.MaxRows
		records = records[:opt.MaxRows]
	}

	seen := make(map[string]struct{}, len(records))
	entries := make([]model.CatalogEntry, 0, len(records))
	genreSet := make(map[string]struct{})

	for i, rec := range records {
		// 2) точные дубли по исходным значениям
		key := rec.ID + "\x00" + rec.Title + "\x00" + rec.Genres
		if _, ok := seen[key]; ok {
			rep.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		// 3) обязательные поля
		title := strings.TrimSpace(rec.Title)
		if title == "" {
			rep.Dropped = append(rep.Dropped, DataError{Row: i, Reason: "missing title"})
			continue
		}
		tags := splitGenres(rec.Genres, opt.GenreSep)
		if len(tags) == 0 {
			rep.Dropped = append(rep.Dropped, DataError{Row: i, Reason: "missing genres"})
			continue
		}

		// 4) производные поля считаются один раз
		genres := strings.Join(tags, " ")
		nt := normalizeTitle(title)
		entries = append(entries, model.CatalogEntry{
			ID:              len(entries),
			SourceID:        utils.NormalizeID(rec.ID),
			Title:           title,
			NormalizedTitle: nt,
			GenreTags:       tags,
			Genres:          genres,
			CombinedText:    nt + " " + genres,
		})
		for _, g := range tags {
			genreSet[g] = struct{}{}
		}
	}

	rep.Kept = len(entries)
	if len(entries) == 0 {
		return nil, rep, ErrEmptyCatalog
	}

	genres := make([]string, 0, len(genreSet))
	for g := range genreSet {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	return &Catalog{entries: entries, genres: genres}, rep, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entry returns the entry with the given dense id.
func (c *Catalog) Entry(id int) *model.CatalogEntry { return &c.entries[id] }

// Entries exposes the backing slice; callers must not modify it.
func (c *Catalog) Entries() []model.CatalogEntry { return c.entries }

// Genres returns the sorted distinct genre tokens.
func (c *Catalog) Genres() []string {
	out := make([]string, len(c.genres))
	copy(out, c.genres)
	return out
}

// CombinedTexts returns the feature-extraction unit of every entry, index-aligned.
func (c *Catalog) CombinedTexts() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	for i := range c.entries {
		out[i] = c.entries[i].CombinedText
	}
	return out
}

package model

// Mapping describes which source columns feed a catalog record.
type Mapping struct {
	TitleKey  string // колонка с названием (обязательная)
	GenresKey string // колонка с жанрами, разделёнными GenreSep
	IDKey     string // колонка с внешним id (опционально)
	HeaderRow int    // строка заголовков (1-based)
}

// DefaultMapping matches the MovieLens movies.csv layout.
func DefaultMapping() Mapping {
	return Mapping{TitleKey: "title", GenresKey: "genres", IDKey: "movieId", HeaderRow: 1}
}

type LoadOptions struct {
	GenreSep string // разделитель жанров в исходных данных, по умолчанию "|"
	MaxRows  int    // обрезка каталога до первых N строк (0 = без ограничения)
}

// RawRecord is a source row before normalization.
type RawRecord struct {
	ID     string
	Title  string
	Genres string
}

// CatalogEntry is one canonical movie. ID is the dense position in the catalog.
type CatalogEntry struct {
	ID              int      `json:"id"`
	SourceID        string   `json:"sourceId,omitempty"`
	Title           string   `json:"title"`
	NormalizedTitle string   `json:"-"`
	GenreTags       []string `json:"genres"`
	Genres          string   `json:"-"` // GenreTags через пробел, нижний регистр
	CombinedText    string   `json:"-"`
}

// QueryMatch is the outcome of fuzzy title resolution.
type QueryMatch struct {
	Entry *CatalogEntry
	Score int // 0..100
}

type Recommendation struct {
	Title     string   `json:"title"`
	Score     *float64 `json:"score,omitempty"` // косинусная близость, только для поиска по названию
	PosterURL string   `json:"posterUrl,omitempty"`
}

type TitleResult struct {
	Query         string           `json:"query"`
	ResolvedTitle string           `json:"resolvedTitle"`
	MatchScore    int              `json:"matchScore"`
	Results       []Recommendation `json:"results"`
}

type GenreResult struct {
	Query      string           `json:"query"`
	GenreLabel string           `json:"genreLabel"`
	Results    []Recommendation `json:"results"`
}

// Titles returns the result titles in order.
func (r TitleResult) Titles() []string { return titles(r.Results) }

// Titles returns the result titles in order.
func (r GenreResult) Titles() []string { return titles(r.Results) }

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Title
	}
	return out
}

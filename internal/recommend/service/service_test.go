package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierec-service/internal/recommend/model"
)

func toyRecords() []model.RawRecord {
	return []model.RawRecord{
		{ID: "1", Title: "Toy Story", Genres: "Animation|Comedy"},
		{ID: "2", Title: "Heat", Genres: "Action|Crime"},
		{ID: "3", Title: "Toy Story 2", Genres: "Animation|Comedy"},
	}
}

func newReady(t *testing.T, recs []model.RawRecord) *Service {
	t.Helper()
	s := New(DefaultConfig(), zerolog.Nop())
	_, err := s.Build(context.Background(), recs)
	require.NoError(t, err)
	return s
}

func TestRecommendByTitle_ToyStory(t *testing.T) {
	s := newReady(t, toyRecords())

	res, err := s.RecommendByTitle("toy story")
	require.NoError(t, err)
	assert.Equal(t, "Toy Story", res.ResolvedTitle)
	assert.Equal(t, 100, res.MatchScore)
	assert.Equal(t, []string{"Toy Story 2", "Heat"}, res.Titles())
}

func TestRecommendByTitle_Properties(t *testing.T) {
	recs := append(toyRecords(),
		model.RawRecord{Title: "Inception", Genres: "Action|Sci-Fi|Thriller"},
		model.RawRecord{Title: "The Matrix", Genres: "Action|Sci-Fi"},
		model.RawRecord{Title: "Toy Soldiers", Genres: "Action|Drama"},
		model.RawRecord{Title: "Heat Wave", Genres: "Comedy"},
	)
	s := newReady(t, recs)

	first, err := s.RecommendByTitle("Inception")
	require.NoError(t, err)
	for i, r := range first.Results {
		assert.NotEqual(t, "Inception", r.Title)
		if i > 0 {
			assert.LessOrEqual(t, *r.Score, *first.Results[i-1].Score)
		}
	}

	second, err := s.RecommendByTitle("Inception")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecommendByTitle_Errors(t *testing.T) {
	s := newReady(t, toyRecords())

	_, err := s.RecommendByTitle("")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = s.RecommendByTitle("   ")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = s.RecommendByTitle("xyzzy-nonexistent-movie")
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Less(t, nf.BestScore, DefaultTitleThreshold)
}

func TestRecommendByTitle_LimitNine(t *testing.T) {
	var recs []model.RawRecord
	for _, title := range []string{"a1", "b2", "c3", "d4", "e5", "f6", "g7", "h8", "i9", "j10", "k11", "l12"} {
		recs = append(recs, model.RawRecord{Title: "Movie " + title, Genres: "Drama"})
	}
	s := newReady(t, recs)
	res, err := s.RecommendByTitle("movie a1")
	require.NoError(t, err)
	assert.Len(t, res.Results, 9)
	// одинаковая близость, порядок каталога
	assert.Equal(t, "Movie b2", res.Results[0].Title)
}

func TestRecommendByGenre(t *testing.T) {
	s := newReady(t, toyRecords())

	res, err := s.RecommendByGenre("comedy")
	require.NoError(t, err)
	assert.Equal(t, "Comedy", res.GenreLabel)
	assert.Equal(t, []string{"Toy Story", "Toy Story 2"}, res.Titles())

	res, err = s.RecommendByGenre("  CRIM ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, res.Titles())

	_, err = s.RecommendByGenre("western")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.RecommendByGenre("")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestRecommendByGenre_Limit(t *testing.T) {
	var recs []model.RawRecord
	for i := 0; i < 20; i++ {
		recs = append(recs, model.RawRecord{Title: string(rune('A'+i)) + " film", Genres: "Drama"})
	}
	s := newReady(t, recs)
	res, err := s.RecommendByGenre("drama")
	require.NoError(t, err)
	require.Len(t, res.Results, 15)
	assert.Equal(t, "A film", res.Results[0].Title)
	assert.Equal(t, "O film", res.Results[14].Title)
}

func TestRecommendByGenreExact(t *testing.T) {
	s := newReady(t, toyRecords())

	res, err := s.RecommendByGenreExact("Action")
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, res.Titles())

	_, err = s.RecommendByGenreExact("act")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListGenres(t *testing.T) {
	s := newReady(t, toyRecords())
	g, err := s.ListGenres()
	require.NoError(t, err)
	assert.Equal(t, []string{"action", "animation", "comedy", "crime"}, g)
}

func TestNotReady(t *testing.T) {
	s := New(DefaultConfig(), zerolog.Nop())
	assert.False(t, s.Ready())

	_, err := s.RecommendByTitle("heat")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = s.RecommendByGenre("crime")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = s.ListGenres()
	assert.ErrorIs(t, err, ErrNotReady)

	// пустой запрос отклоняется раньше проверки готовности
	_, err = s.RecommendByTitle("")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestBuild_FailureKeepsPreviousSnapshot(t *testing.T) {
	s := newReady(t, toyRecords())
	v := s.Status().Version

	_, err := s.Build(context.Background(), []model.RawRecord{{Title: "", Genres: "Drama"}})
	require.ErrorIs(t, err, ErrEmptyCatalog)

	st := s.Status()
	assert.True(t, st.Ready)
	assert.Equal(t, v, st.Version)
	assert.NotEmpty(t, st.LastError)

	res, err := s.RecommendByTitle("heat")
	require.NoError(t, err)
	assert.Equal(t, "Heat", res.ResolvedTitle)
}

func TestBuild_Swap(t *testing.T) {
	s := newReady(t, toyRecords())
	_, err := s.Build(context.Background(), []model.RawRecord{{Title: "Alien", Genres: "Horror|Sci-Fi"}, {Title: "Aliens", Genres: "Action|Sci-Fi"}})
	require.NoError(t, err)

	st := s.Status()
	assert.Equal(t, uint64(2), st.Version)
	assert.Equal(t, 2, st.Entries)

	_, err = s.RecommendByGenre("comedy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuild_Cancelled(t *testing.T) {
	s := New(DefaultConfig(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Build(ctx, toyRecords())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Ready())
}

func TestEmptyVocabularyShortCircuits(t *testing.T) {
	// только стоп-слова и односимвольные токены
	s := newReady(t, []model.RawRecord{{Title: "It", Genres: "a"}, {Title: "The", Genres: "b"}})
	_, err := s.RecommendByTitle("it")
	assert.ErrorIs(t, err, ErrNotFound)
}

package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierec-service/internal/recommend/model"
	recSvc "movierec-service/internal/recommend/service"
)

type stubPosters struct{ calls int }

func (s *stubPosters) Enrich(_ context.Context, recs []model.Recommendation) {
	s.calls++
	for i := range recs {
		recs[i].PosterURL = "https://img.example/" + recs[i].Title
	}
}

func newService(t *testing.T) *recSvc.Service {
	t.Helper()
	svc := recSvc.New(recSvc.DefaultConfig(), zerolog.Nop())
	_, err := svc.Build(context.Background(), []model.RawRecord{
		{ID: "1", Title: "Toy Story", Genres: "Animation|Comedy"},
		{ID: "2", Title: "Heat", Genres: "Action|Crime"},
		{ID: "3", Title: "Toy Story 2", Genres: "Animation|Comedy"},
	})
	require.NoError(t, err)
	return svc
}

func do(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRecommendTitle(t *testing.T) {
	posters := &stubPosters{}
	h := New(newService(t), posters, Options{}, zerolog.Nop())

	rec := do(h.RecommendTitle, http.MethodGet, "/recommend/title?q=toy+story")
	require.Equal(t, http.StatusOK, rec.Code)
	var res model.TitleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Toy Story", res.ResolvedTitle)
	assert.Equal(t, []string{"Toy Story 2", "Heat"}, res.Titles())
	assert.Empty(t, res.Results[0].PosterURL)
	assert.Zero(t, posters.calls)

	rec = do(h.RecommendTitle, http.MethodGet, "/recommend/title?q=toy+story&posters=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "https://img.example/Toy Story 2", res.Results[0].PosterURL)
	assert.Equal(t, 1, posters.calls)
}

func TestRecommendTitle_Errors(t *testing.T) {
	h := New(newService(t), nil, Options{}, zerolog.Nop())

	rec := do(h.RecommendTitle, http.MethodGet, "/recommend/title?q=+++")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.RecommendTitle, http.MethodGet, "/recommend/title?q=nonexistent+movie+xyz")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)

	notReady := New(recSvc.New(recSvc.DefaultConfig(), zerolog.Nop()), nil, Options{}, zerolog.Nop())
	rec = do(notReady.RecommendTitle, http.MethodGet, "/recommend/title?q=heat")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
}

func TestRecommendGenre(t *testing.T) {
	h := New(newService(t), nil, Options{}, zerolog.Nop())

	rec := do(h.RecommendGenre, http.MethodGet, "/recommend/genre?q=comedy")
	require.Equal(t, http.StatusOK, rec.Code)
	var res model.GenreResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Comedy", res.GenreLabel)
	assert.Equal(t, []string{"Toy Story", "Toy Story 2"}, res.Titles())

	// подстрока работает только в обычном режиме
	rec = do(h.RecommendGenre, http.MethodGet, "/recommend/genre?q=crim")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(h.RecommendGenre, http.MethodGet, "/recommend/genre?q=crim&exact=true")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(h.RecommendGenre, http.MethodGet, "/recommend/genre?q=crime&exact=1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h.RecommendGenre, http.MethodGet, "/recommend/genre?q=western")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenres(t *testing.T) {
	h := New(newService(t), nil, Options{}, zerolog.Nop())
	rec := do(h.Genres, http.MethodGet, "/genres")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genres":["action","animation","comedy","crime"]}`, rec.Body.String())
}

func multipartCSV(t *testing.T, fields map[string]string, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "movies.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadCatalog(t *testing.T) {
	svc := recSvc.New(recSvc.DefaultConfig(), zerolog.Nop())
	h := New(svc, nil, Options{}, zerolog.Nop())

	body, ct := multipartCSV(t, nil, "movieId,title,genres\n"+
		"1,Toy Story,Animation|Comedy\n"+
		"2,Heat,Action|Crime\n"+
		"2,Heat,Action|Crime\n"+
		"3,,Drama\n")
	req := httptest.NewRequest(http.MethodPost, "/catalog", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadCatalog(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var up uploadBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))
	assert.Equal(t, 2, up.Report.Kept)
	assert.Equal(t, 1, up.Report.Duplicates)
	assert.Equal(t, 1, up.Report.Dropped)
	assert.True(t, svc.Ready())

	res, err := svc.RecommendByTitle("heat")
	require.NoError(t, err)
	assert.Equal(t, []string{"Toy Story"}, res.Titles())
}

func TestUploadCatalog_CustomColumnsAndEmpty(t *testing.T) {
	svc := recSvc.New(recSvc.DefaultConfig(), zerolog.Nop())
	h := New(svc, nil, Options{}, zerolog.Nop())

	body, ct := multipartCSV(t, map[string]string{"title_col": "Name", "genres_col": "Tags"},
		"Name,Tags\nAlien,Horror|Sci-Fi\nAliens,Action|Sci-Fi\n")
	req := httptest.NewRequest(http.MethodPost, "/catalog", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadCatalog(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body, ct = multipartCSV(t, nil, "title,genres\nNo Genres,\n")
	req = httptest.NewRequest(http.MethodPost, "/catalog", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	h.UploadCatalog(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// прежний каталог остаётся в работе
	genres, err := svc.ListGenres()
	require.NoError(t, err)
	assert.Contains(t, genres, "horror")
}

func TestUploadCatalog_MissingFile(t *testing.T) {
	h := New(newService(t), nil, Options{}, zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/catalog", nil)
	rec := httptest.NewRecorder()
	h.UploadCatalog(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"movierec-service/internal/fileio"
	"movierec-service/internal/middleware"
	"movierec-service/internal/recommend/model"
	recSvc "movierec-service/internal/recommend/service"
)

// Recommender: то, что нужно хендлерам от сервиса рекомендаций.
type Recommender interface {
	Build(ctx context.Context, records []model.RawRecord) (recSvc.LoadReport, error)
	RecommendByTitle(query string) (model.TitleResult, error)
	RecommendByGenre(query string) (model.GenreResult, error)
	RecommendByGenreExact(genre string) (model.GenreResult, error)
	ListGenres() ([]string, error)
}

// PosterEnricher fills PosterURL in place and never fails.
type PosterEnricher interface {
	Enrich(ctx context.Context, recs []model.Recommendation)
}

type Options struct {
	Mapping      model.Mapping // колонки по умолчанию для загрузки каталога
	MaxUploadMB  int
	PosterBudget time.Duration // на обогащение одного ответа
}

type Handler struct {
	svc     Recommender
	posters PosterEnricher // nil: постеры выключены
	opt     Options
	logger  zerolog.Logger
}

func New(svc Recommender, posters PosterEnricher, opt Options, logger zerolog.Logger) *Handler {
	if opt.MaxUploadMB <= 0 {
		opt.MaxUploadMB = 64
	}
	if opt.PosterBudget <= 0 {
		opt.PosterBudget = 5 * time.Second
	}
	if opt.Mapping.TitleKey == "" {
		opt.Mapping = model.DefaultMapping()
	}
	return &Handler{svc: svc, posters: posters, opt: opt, logger: logger.With().Str("component", "http").Logger()}
}

// RecommendTitle: GET /recommend/title?q=...&posters=true
func (h *Handler) RecommendTitle(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RecommendByTitle(r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.enrich(r, res.Results)
	writeJSON(w, http.StatusOK, res)
}

// RecommendGenre: GET /recommend/genre?q=...&exact=true&posters=true
// exact=true: режим выпадающего списка, q должен совпасть с жанром из /genres.
func (h *Handler) RecommendGenre(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		res model.GenreResult
		err error
	)
	if toBool(q.Get("exact"), false) {
		res, err = h.svc.RecommendByGenreExact(q.Get("q"))
	} else {
		res, err = h.svc.RecommendByGenre(q.Get("q"))
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.enrich(r, res.Results)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.ListGenres()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
}

// UploadCatalog: POST /catalog, multipart с полем "file" (csv/xls/xlsx).
// Необязательные поля: title_col, genres_col, id_col, header_row.
func (h *Handler) UploadCatalog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := h.logger.With().Str("rid", middleware.GetRequestID(r)).Logger()

	if err := r.ParseMultipartForm(int64(h.opt.MaxUploadMB) << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad multipart form: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing file: " + err.Error()})
		return
	}
	defer file.Close()

	m := h.opt.Mapping
	m.HeaderRow = atoi(r.FormValue("header_row"), m.HeaderRow)
	if v := r.FormValue("title_col"); v != "" {
		m.TitleKey = v
	}
	if v := r.FormValue("genres_col"); v != "" {
		m.GenresKey = v
	}
	if v := r.FormValue("id_col"); v != "" {
		m.IDKey = v
	}

	rows, err := fileio.ReadAnyMaps(file, header.Filename, m.HeaderRow)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "failed to read catalog: " + err.Error()})
		return
	}
	records := fileio.ToRecords(rows, m)

	rep, err := h.svc.Build(r.Context(), records)
	if err != nil {
		if errors.Is(err, recSvc.ErrEmptyCatalog) {
			writeJSON(w, http.StatusUnprocessableEntity, uploadBody{Error: err.Error(), Report: newReportBody(rep)})
			return
		}
		log.Error().Err(err).Str("file", header.Filename).Msg("catalog rebuild failed")
		writeJSON(w, http.StatusInternalServerError, uploadBody{Error: err.Error(), Report: newReportBody(rep)})
		return
	}

	log.Info().
		Str("file", header.Filename).
		Int("rows", len(rows)).
		Int("kept", rep.Kept).
		Dur("elapsed", time.Since(start)).
		Msg("catalog uploaded")
	writeJSON(w, http.StatusOK, uploadBody{Report: newReportBody(rep)})
}

// enrich: по запросу posters=true; текстовый результат отдаётся даже если бюджет исчерпан.
func (h *Handler) enrich(r *http.Request, recs []model.Recommendation) {
	if h.posters == nil || len(recs) == 0 || !toBool(r.URL.Query().Get("posters"), false) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opt.PosterBudget)
	defer cancel()
	h.posters.Enrich(ctx, recs)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *recSvc.NotFoundError
	switch {
	case errors.Is(err, recSvc.ErrInvalidQuery):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "query must not be empty"})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Suggestions: nf.Suggestions})
	case errors.Is(err, recSvc.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, recSvc.ErrNotReady):
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "recommendation data is not loaded yet"})
	default:
		h.logger.Error().Err(err).Str("rid", middleware.GetRequestID(r)).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}

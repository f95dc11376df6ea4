package handlers

import (
	"net/http"

	"github.com/goccy/go-json"

	recSvc "movierec-service/internal/recommend/service"
)

type StatusFunc func() recSvc.Status

type healthBody struct {
	State string `json:"status"`
	recSvc.Status
}

// Health отвечает 200, когда каталог загружен, и 503, пока он строится или сборка упала.
func Health(status StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := status()
		code := http.StatusOK
		state := "ok"
		if !st.Ready {
			code = http.StatusServiceUnavailable
			state = "loading"
			if !st.Building && st.LastError != "" {
				state = "failed"
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(healthBody{State: state, Status: st})
	}
}

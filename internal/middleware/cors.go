package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

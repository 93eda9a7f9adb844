// Package middleware holds the HTTP middleware shared by all routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS admits the allow-listed origins. A "*" entry opens the API to every
// origin and turns credentials off.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	wildcard := false
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
			continue
		case "*":
			wildcard = true
		}
		origins = append(origins, o)
	}
	if wildcard {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials:     !wildcard,
		MaxAge:               300,
		OptionsSuccessStatus: http.StatusNoContent,
	})
}

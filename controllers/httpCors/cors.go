package httpCors

import (
	"github.com/rs/cors"
	"net/http"
)

// CorsSettings allows the given origins. Credentials are only allowed for an
// explicit origin list, never together with "*".
func CorsSettings(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}

	c := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedOrigins:   origins,
		AllowCredentials: !wildcard,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Authorization"},
		MaxAge:           300,
	})
	return c
}

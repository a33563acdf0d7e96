package security

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig describes the cross-origin policy of the API.
type CORSConfig struct {
	// AllowedOrigin is "*" or a single origin such as https://app.example.
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAgeSeconds  int
}

// DefaultCORSConfig allows any origin to call the API.
func DefaultCORSConfig(origin string) CORSConfig {
	if strings.TrimSpace(origin) == "" {
		origin = "*"
	}
	return CORSConfig{
		AllowedOrigin:  origin,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAgeSeconds:  600,
	}
}

// CORS answers preflight requests with 204 and tags every response with the
// configured allowed origin.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAgeSeconds)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case config.AllowedOrigin == "*":
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && strings.EqualFold(origin, config.AllowedOrigin):
				h.Set("Access-Control-Allow-Origin", config.AllowedOrigin)
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// DefaultCORS allows the public site and, for a local site, the usual dev
// server ports. Webhook callers are server-to-server and never send
// preflights.
func DefaultCORS(domainURL string) func(http.Handler) http.Handler {
	allowedOrigins := []string{strings.TrimRight(domainURL, "/")}

	if strings.Contains(domainURL, "localhost") || strings.Contains(domainURL, "127.0.0.1") {
		allowedOrigins = append(allowedOrigins,
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
		)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Expo dev servers plus the hosted storefront shell.
var defaultCORSOrigins = []string{
	"http://localhost:8081",
	"http://localhost:19006",
	"https://app.designdrip.studio",
}

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

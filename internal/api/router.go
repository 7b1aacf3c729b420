// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/larder-app/larder/internal/auth"
	"github.com/larder-app/larder/internal/middleware"
)

// Router assembles the middleware stack and route groups.
type Router struct {
	handler       *Handler
	authHandlers  *auth.Handlers
	jwt           *auth.JWTManager
	chiMiddleware *ChiMiddleware
}

// NewRouter creates the route assembler. mw may be nil for the secure
// defaults.
func NewRouter(h *Handler, authHandlers *auth.Handlers, jwt *auth.JWTManager, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       h,
		authHandlers:  authHandlers,
		jwt:           jwt,
		chiMiddleware: mw,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.HealthCheck)
		r.Get("/ready", router.handler.ReadyCheck)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Credential endpoints get the stricter limiter against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitLogin())
		r.Post("/register", router.authHandlers.Register)
		r.Post("/login", router.authHandlers.Login)
	})

	// All data endpoints require a bearer token.
	r.Route("/api/v1/foods", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)
		r.Use(auth.RequireAuth(router.jwt))

		r.Get("/options", router.handler.Options)
		r.Get("/", router.handler.ListFoods)
		r.Post("/", router.handler.CreateFood)
		r.Post("/predict", router.handler.PredictFood)
		r.Post("/feedback", router.handler.SubmitFeedback)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", router.handler.GetFood)
			r.Put("/", router.handler.UpdateFood)
			r.Delete("/", router.handler.DeleteFood)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "VALIDATION_ERROR", "Method not allowed", nil)
	})

	return r
}

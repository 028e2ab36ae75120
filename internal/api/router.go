// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookbrain/bookbrain/internal/config"
)

// Router builds the HTTP handler tree.
type Router struct {
	handler *Handler
	chiMW   *ChiMiddleware
}

// NewRouter creates a router around the handler set.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled

	return &Router{
		handler: handler,
		chiMW:   NewChiMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS())

	// Health endpoints: permissive rate limit for monitoring probes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitCustom(RateLimitHealth))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Authentication endpoints: strict limits against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitCustom(RateLimitAuth))
		r.Use(PrometheusMetrics)

		r.With(router.chiMW.RateLimitCustom(RateLimitLogin)).Post("/register", router.handler.Register)
		r.With(router.chiMW.RateLimitCustom(RateLimitLogin)).Post("/login", router.handler.Login)
		r.Post("/logout", router.handler.Logout)
		r.With(router.handler.authMW.Authenticate).Get("/me", router.handler.Me)
	})

	// Library endpoints: authenticated, default rate limit.
	r.Route("/api/v1/library", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(PrometheusMetrics)
		r.Use(router.handler.authMW.Authenticate)

		r.Get("/", router.handler.ListBooks)
		r.Post("/", router.handler.AddBook)
		r.Get("/stats", router.handler.LibraryStatsHandler)
		r.Get("/{id}", router.handler.GetBook)
		r.Patch("/{id}", router.handler.UpdateBook)
		r.Delete("/{id}", router.handler.DeleteBook)
	})

	// Catalog search: authenticated, moderate limit since each request
	// fans out to external services.
	r.Route("/api/v1/search", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitCustom(RateLimitSearch))
		r.Use(PrometheusMetrics)
		r.Use(router.handler.authMW.Authenticate)

		r.Get("/", router.handler.Search)
	})

	// Recommendations: authenticated, tight limit since each run issues
	// several catalog queries and refits the scoring model.
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitCustom(RateLimitRecommend))
		r.Use(PrometheusMetrics)
		r.Use(router.handler.authMW.Authenticate)

		r.Get("/", router.handler.Recommendations)
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

/*-------------------------------------------------------------------------
 *
 * router.go
 *    HTTP route wiring for the AccessAgent API
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/api/router.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"github.com/gorilla/mux"

	"github.com/accessdesk/AccessAgent/internal/metrics"
)

/* NewRouter builds the full route table with the standard middleware
 * chain applied */
func NewRouter(handlers *Handlers, apiKey string) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(SecurityHeadersMiddleware)
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(AuthMiddleware(apiKey))

	/* Agent API */
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/agent", handlers.Chat).Methods("POST")
	apiRouter.HandleFunc("/elevations", handlers.SubmitElevation).Methods("POST")

	/* Approval channels carry their own credentials */
	router.HandleFunc("/approvals/elevation", handlers.ResolveWebhook).Methods("POST")
	router.HandleFunc("/approvals/elevation/click", handlers.ResolveClick).Methods("GET")

	/* Health check */
	router.HandleFunc("/health", handlers.Health).Methods("GET")

	/* Metrics endpoint (no auth required) */
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	return router
}

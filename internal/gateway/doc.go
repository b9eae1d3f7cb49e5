// Package gateway orchestrates the quill server components.
//
// # Overview
//
// The Gateway owns the HTTP server, the store, and the account and journal
// services built on top of it. New opens the SQLite store and wires the
// Gemini client; Run serves until its context is canceled and then shuts
// down gracefully.
//
// # Routes
//
//	GET  /health          liveness
//	GET  /ready           database reachability
//	POST /auth/register   create an account, returns a token
//	POST /auth/login      authenticate, returns a token
//	POST /entries         create a journal entry (bearer token)
//	GET  /entries         list own entries, newest first (bearer token)
//	GET  /metrics         Prometheus metrics (when enabled)
//
// /journal is an alias for /entries. Unknown routes get a JSON 404.
//
// # Middleware
//
// Requests pass through request logging (with X-Request-ID), CORS, and
// Prometheus instrumentation before reaching the mux.
//
// # Listeners
//
// With tailscale.enabled the server listens on a tsnet node instead of
// server.http_addr, over plain HTTP, tailnet HTTPS or public Funnel.
package gateway

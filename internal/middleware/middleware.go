// Package middleware stores the HTTP middleware used by cmd/api.
//
// These intercept requests to handle cross-cutting concerns
// such as request ids, request logging, CORS, rate limiting,
// tracing and panic recovery.
package middleware

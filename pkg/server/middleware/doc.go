// Package middleware provides the HTTP middleware chain for the
// estimator's server: panic recovery, request logging, request ID
// correlation, and CORS. Middleware is applied outermost-first in
// exactly that order.
package middleware

// Package middleware stores global middleware.
//
// These intercept requests to handle cross-cutting concerns such as
// request IDs, request logging, CORS, body limits and panic recovery, and
// turn every returned error into the response the client sees.
package middleware

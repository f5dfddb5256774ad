// Package errs defines the error types returned to API clients.
//
// Two tiers exist:
//   - client errors (HTTPError with a 4xx status), rendered as
//     { "errors": [ FieldError, ... ] }
//   - everything else, rendered as an opaque plain-text 500 "Server error"
package errs

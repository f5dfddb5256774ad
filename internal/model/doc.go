// Package model defines the request and response payloads of the query API
// together with their validation rules and defaults.
package model

// Package common contains shared constants, helpers and the soft-failure
// result used across the mediashare client layers.
package common

const (
	// AuthorizationHeader carries the bearer token on authenticated requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix is prepended to the token in AuthorizationHeader.
	BearerPrefix = "Bearer "

	// RequestIDHeader tags every outbound request for log correlation.
	RequestIDHeader = "X-Request-ID"
)

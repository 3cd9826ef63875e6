// Package common contains constants and small helpers shared by the
// toilettracker client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer token on API requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName correlates a client request with server logs.
	RequestIDHeaderName = "X-Request-ID"

	// TokenMetadataKey is the local store key holding the session token.
	TokenMetadataKey = "token"
)

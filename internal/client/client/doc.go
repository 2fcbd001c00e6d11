// Package client is the HTTP resource client for the media-sharing backend.
//
// # Overview
//
// The package provides:
//  1. Narrow, transport-agnostic API contracts (AuthAPI, UserLookup, MediaAPI,
//     LikesAPI, CommentsAPI) and their union, Client.
//  2. HTTPClient, a JSON-over-HTTP implementation that attaches the bearer
//     token and a request ID, paces requests with a token bucket, and
//     normalizes every non-2xx response into *APIError.
//  3. TokenExpired, a local check of a JWT bearer token's exp claim.
//
// # Error Handling
//
// Every non-2xx response becomes *APIError. Its message is the server's
// "message" field or "Error <status>"; it unwraps to a category sentinel so
// callers can match with errors.Is: ErrUnauthorized, ErrNotFound,
// ErrValidation, ErrServer. Transport failures wrap ErrUnavailable.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client

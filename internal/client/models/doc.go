// Package models defines the wire and display types of the media-sharing
// client: backend resources (users, media, comments, likes) and the
// denormalized composites built from them.
package models

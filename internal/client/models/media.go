package models

import (
	"io"
	"time"
)

type MediaItem struct {
	MediaID      int64     `json:"media_id"`
	UserID       int64     `json:"user_id"`
	Filename     string    `json:"filename"`
	Filesize     int64     `json:"filesize"`
	MediaType    string    `json:"media_type"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail"`
	CreatedAt    time.Time `json:"created_at"`
}

// MediaItemWithOwner is a MediaItem joined with its owner's username.
// Username is derived at fetch time and never sent back to the server.
type MediaItemWithOwner struct {
	MediaItem
	Username string `json:"username"`
}

// MediaInput holds the user-editable fields of a media item.
type MediaInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewMedia is the create-media body sent after the file itself was uploaded.
type NewMedia struct {
	Filename    string  `json:"filename"`
	Filesize    int64   `json:"filesize"`
	MediaType   string  `json:"media_type"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UploadFile is a file to send to the upload endpoint. Size may be zero when
// unknown.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadedFile describes a stored file as reported by the upload backend.
type UploadedFile struct {
	Filename  string `json:"filename"`
	Filesize  int64  `json:"filesize"`
	MediaType string `json:"media_type"`
}

// Package upload sends media files to storage before the media record is
// created. Two backends exist: the REST upload service and an S3-compatible
// object store.
package upload

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
)

const defaultContentType = "application/octet-stream"

var ErrEmptyFile = errors.New("upload: empty file name")

// Uploader stores a file and reports where and how it was stored.
type Uploader interface {
	Upload(ctx context.Context, token string, file models.UploadFile) (*models.UploadedFile, error)
}

func contentType(file models.UploadFile) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	return defaultContentType
}

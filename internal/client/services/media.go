package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/invalidation"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/client/upload"
	"github.com/dmitrijs2005/mediashare/internal/logging"
)

// TokenSource yields the stored bearer token, or common.ErrNotLoggedIn.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// MediaService performs the media mutations. Each one that reaches the
// server triggers the invalidation bus exactly once afterwards, whether it
// succeeded or not. A file the uploader rejects locally never reaches it.
type MediaService struct {
	api      client.MediaAPI
	uploader upload.Uploader
	tokens   TokenSource
	bus      *invalidation.Bus
	logger   logging.Logger
}

func NewMediaService(api client.MediaAPI, uploader upload.Uploader, tokens TokenSource, bus *invalidation.Bus, logger logging.Logger) *MediaService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &MediaService{
		api:      api,
		uploader: uploader,
		tokens:   tokens,
		bus:      bus,
		logger:   logger.With("component", "media"),
	}
}

// Upload stores the file and then creates its media record.
func (m *MediaService) Upload(ctx context.Context, file models.UploadFile, in models.MediaInput) (*models.MediaItem, error) {
	if err := ValidateMediaInput(in); err != nil {
		return nil, err
	}
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := m.uploader.Upload(ctx, token, file)
	if errors.Is(err, upload.ErrEmptyFile) {
		return nil, err
	}
	defer m.bus.Trigger()
	if err != nil {
		m.logger.Warn(ctx, "file upload failed", "file", file.Name, "error", err)
		return nil, err
	}

	var desc *string
	if in.Description != "" {
		desc = &in.Description
	}

	resp, err := m.api.CreateMedia(ctx, token, models.NewMedia{
		Filename:    stored.Filename,
		Filesize:    stored.Filesize,
		MediaType:   stored.MediaType,
		Title:       in.Title,
		Description: desc,
	})
	if err != nil {
		m.logger.Warn(ctx, "create media failed", "filename", stored.Filename, "error", err)
		return nil, err
	}

	m.logger.Info(ctx, "media uploaded", "media_id", resp.Media.MediaID)
	return &resp.Media, nil
}

func (m *MediaService) Update(ctx context.Context, mediaID int64, in models.MediaInput) error {
	if err := ValidateMediaInput(in); err != nil {
		return err
	}
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}
	defer m.bus.Trigger()

	return m.api.UpdateMedia(ctx, token, mediaID, in)
}

func (m *MediaService) Delete(ctx context.Context, mediaID int64) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}
	defer m.bus.Trigger()

	return m.api.DeleteMedia(ctx, token, mediaID)
}

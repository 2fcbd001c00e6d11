package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/invalidation"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/common"
)

type CommentService struct {
	api    client.CommentsAPI
	agg    *Aggregator
	tokens TokenSource
	bus    *invalidation.Bus
}

func NewCommentService(api client.CommentsAPI, agg *Aggregator, tokens TokenSource, bus *invalidation.Bus) *CommentService {
	return &CommentService{api: api, agg: agg, tokens: tokens, bus: bus}
}

// Post adds a comment as the current user and triggers the bus once.
func (c *CommentService) Post(ctx context.Context, mediaID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalid("comment", "is required")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	defer c.bus.Trigger()

	return c.api.PostComment(ctx, token, mediaID, text)
}

func (c *CommentService) List(ctx context.Context, mediaID int64) ([]models.CommentWithUsername, error) {
	return c.agg.ListCommentsWithUsernames(ctx, mediaID)
}

// ListOrEmpty degrades to an empty list; comments are non-critical.
func (c *CommentService) ListOrEmpty(ctx context.Context, mediaID int64) ([]models.CommentWithUsername, common.SoftFailure) {
	list, err := c.List(ctx, mediaID)
	if err != nil {
		return []models.CommentWithUsername{}, common.Soft("comments.list", err)
	}
	return list, common.Soft("comments.list", nil)
}

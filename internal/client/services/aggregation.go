package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/logging"
)

// Aggregator joins primary collections with per-item user lookups. Joins
// are all-or-nothing: one failed lookup fails the whole batch, so a result
// never carries a missing or made-up username.
type Aggregator struct {
	media    client.MediaAPI
	comments client.CommentsAPI
	users    client.UserLookup
	logger   logging.Logger

	dedupe bool
}

type AggregatorOption func(*Aggregator)

// WithOwnerDedupe collapses lookups of the same user id within one batch
// into a single request. Results are not kept between batches.
func WithOwnerDedupe(enabled bool) AggregatorOption {
	return func(a *Aggregator) { a.dedupe = enabled }
}

func WithAggregatorLogger(l logging.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

func NewAggregator(media client.MediaAPI, comments client.CommentsAPI, users client.UserLookup, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		media:    media,
		comments: comments,
		users:    users,
		logger:   logging.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ListMediaWithOwners fetches the feed and attaches each owner's username.
// Owner lookups run in parallel.
func (a *Aggregator) ListMediaWithOwners(ctx context.Context) ([]models.MediaItemWithOwner, error) {
	items, err := a.media.ListMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	out, err := join(ctx, items, a.lookup(),
		func(m models.MediaItem) int64 { return m.UserID },
		func(m models.MediaItem, username string) models.MediaItemWithOwner {
			return models.MediaItemWithOwner{MediaItem: m, Username: username}
		},
	)
	if err != nil {
		a.logger.Warn(ctx, "feed join failed", "items", len(items), "error", err)
		return nil, err
	}
	return out, nil
}

// ListCommentsWithUsernames is the same join for the comments of one item.
func (a *Aggregator) ListCommentsWithUsernames(ctx context.Context, mediaID int64) ([]models.CommentWithUsername, error) {
	comments, err := a.comments.ListComments(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return join(ctx, comments, a.lookup(),
		func(c models.Comment) int64 { return c.UserID },
		func(c models.Comment, username string) models.CommentWithUsername {
			return models.CommentWithUsername{Comment: c, Username: username}
		},
	)
}

type usernameLookup func(ctx context.Context, userID int64) (string, error)

// lookup returns the lookup for one batch.
func (a *Aggregator) lookup() usernameLookup {
	if !a.dedupe {
		return a.fetchUsername
	}

	var (
		group singleflight.Group
		mu    sync.Mutex
		seen  = map[int64]string{}
	)
	return func(ctx context.Context, userID int64) (string, error) {
		mu.Lock()
		name, ok := seen[userID]
		mu.Unlock()
		if ok {
			return name, nil
		}

		v, err, _ := group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
			name, err := a.fetchUsername(ctx, userID)
			if err != nil {
				return "", err
			}
			mu.Lock()
			seen[userID] = name
			mu.Unlock()
			return name, nil
		})
		if err != nil {
			return "", err
		}
		return v.(string), nil
	}
}

func (a *Aggregator) fetchUsername(ctx context.Context, userID int64) (string, error) {
	u, err := a.users.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup user %d: %w", userID, err)
	}
	if u.UserID != userID {
		return "", fmt.Errorf("lookup user %d: server returned user %d", userID, u.UserID)
	}
	return u.Username, nil
}

// join runs lookup for every item in parallel and merges the results in the
// original order. It returns only after every lookup has finished; the first
// failure cancels the rest and fails the batch. An empty input yields an
// empty, non-nil slice.
func join[T, R any](
	ctx context.Context,
	items []T,
	lookup usernameLookup,
	ownerOf func(T) int64,
	merge func(T, string) R,
) ([]R, error) {
	out := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			name, err := lookup(gctx, ownerOf(item))
			if err != nil {
				return err
			}
			out[i] = merge(item, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterOwned returns the items owned by userID, keeping order.
func FilterOwned(items []models.MediaItemWithOwner, userID int64) []models.MediaItemWithOwner {
	out := make([]models.MediaItemWithOwner, 0, len(items))
	for _, it := range items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out
}

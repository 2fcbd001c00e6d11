package likes

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/logging"
)

// TokenSource yields the bearer token on demand. The session manager
// implements it; an anonymous viewer yields common.ErrNotLoggedIn.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Controller owns the State of one media item.
type Controller struct {
	mediaID    int64
	api        client.LikesAPI
	tokens     TokenSource
	logger     logging.Logger
	optimistic bool

	mu        sync.Mutex
	state     State
	countGen  uint64
	viewerGen uint64

	busy atomic.Bool
}

type Option func(*Controller)

// WithOptimistic applies a local +1/-1 before the server round-trip. The
// result is still reconciled by re-fetching.
func WithOptimistic(enabled bool) Option {
	return func(c *Controller) { c.optimistic = enabled }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func NewController(mediaID int64, api client.LikesAPI, tokens TokenSource, opts ...Option) *Controller {
	c := &Controller{
		mediaID: mediaID,
		api:     api,
		tokens:  tokens,
		logger:  logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("media_id", mediaID)
	return c
}

func (c *Controller) MediaID() int64 { return c.mediaID }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) dispatch(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
}

// dispatchIf applies a only if *gen still equals want, so that an older
// fetch cannot overwrite a newer one on the same axis.
func (c *Controller) dispatchIf(gen *uint64, want uint64, a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if *gen == want {
		c.state = Reduce(c.state, a)
	}
}

// Load fetches the count and the viewer's like concurrently. A failure on
// one axis resets only that axis to its zero value.
func (c *Controller) Load(ctx context.Context) common.SoftFailure {
	c.mu.Lock()
	c.countGen++
	c.viewerGen++
	countGen, viewerGen := c.countGen, c.viewerGen
	c.mu.Unlock()

	var wg sync.WaitGroup
	var countErr, viewErr error
	wg.Add(2)

	go func() {
		defer wg.Done()
		n, err := c.api.LikeCount(ctx, c.mediaID)
		if err != nil {
			countErr = err
			n = 0
		}
		c.dispatchIf(&c.countGen, countGen, SetLikeCount{Count: n})
	}()

	go func() {
		defer wg.Done()
		like, err := c.fetchViewerLike(ctx)
		if err != nil {
			viewErr = err
			like = nil
		}
		c.dispatchIf(&c.viewerGen, viewerGen, SetViewerLike{Like: like})
	}()

	wg.Wait()
	return common.Soft("likes.load", errors.Join(countErr, viewErr))
}

func (c *Controller) fetchViewerLike(ctx context.Context) (*models.LikeRecord, error) {
	token, err := c.tokens.Token(ctx)
	if errors.Is(err, common.ErrNotLoggedIn) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.api.ViewerLike(ctx, token, c.mediaID)
}

// Toggle removes the viewer's like if one is held, otherwise adds one, then
// re-fetches both axes. Errors never escape: they are returned as a soft
// failure. A Toggle issued while another is running is dropped with
// common.ErrBusy.
func (c *Controller) Toggle(ctx context.Context) common.SoftFailure {
	const op = "likes.toggle"

	if !c.busy.CompareAndSwap(false, true) {
		return common.Soft(op, common.ErrBusy)
	}
	defer c.busy.Store(false)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return common.Soft(op, err)
	}

	current := c.State()

	var mutErr error
	if current.ViewerLike != nil {
		if c.optimistic {
			c.dispatch(AdjustCount{Delta: -1})
			c.dispatch(SetViewerLike{Like: nil})
		}
		mutErr = c.api.DeleteLike(ctx, token, current.ViewerLike.LikeID)
	} else {
		if c.optimistic {
			c.dispatch(AdjustCount{Delta: 1})
			c.dispatch(SetViewerLike{Like: &models.LikeRecord{MediaID: c.mediaID}})
		}
		mutErr = c.api.PostLike(ctx, token, c.mediaID)
	}
	if mutErr != nil {
		c.logger.Warn(ctx, "like mutation failed", "error", mutErr)
	}

	reconcile := c.Load(ctx)
	return common.Soft(op, errors.Join(mutErr, reconcile.Cause()))
}

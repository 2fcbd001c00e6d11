package likes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token(context.Context) (string, error) { return s.token, s.err }

type fixture struct {
	backend *testutil.FakeBackend
	api     *client.HTTPClient
	viewer  models.UserProfile
	token   string
	media   models.MediaItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewFakeBackend(t)
	viewer := b.AddUser("ann", "ann@example.com", "secret")
	c, err := client.New(client.Config{AuthAPI: b.URL(), MediaAPI: b.URL()})
	require.NoError(t, err)
	return &fixture{
		backend: b,
		api:     c,
		viewer:  viewer,
		token:   b.IssueToken(viewer.UserID, time.Now().Add(time.Hour)),
		media:   b.AddMedia(models.MediaItem{UserID: viewer.UserID, Title: "pic"}),
	}
}

func TestLoad_CountAndViewerLike(t *testing.T) {
	f := newFixture(t)
	other := f.backend.AddUser("bob", "bob@example.com", "pw")
	f.backend.AddLike(f.media.MediaID, other.UserID)
	mine := f.backend.AddLike(f.media.MediaID, f.viewer.UserID)

	c := NewController(f.media.MediaID, f.api, staticToken{token: f.token})
	res := c.Load(context.Background())

	assert.True(t, res.OK())
	s := c.State()
	assert.Equal(t, 2, s.Count)
	require.NotNil(t, s.ViewerLike)
	assert.Equal(t, mine.LikeID, s.ViewerLike.LikeID)
}

func TestLoad_AnonymousViewer(t *testing.T) {
	f := newFixture(t)
	f.backend.AddLike(f.media.MediaID, f.viewer.UserID)

	c := NewController(f.media.MediaID, f.api, staticToken{err: common.ErrNotLoggedIn})
	res := c.Load(context.Background())

	assert.True(t, res.OK())
	assert.Equal(t, State{Count: 1}, c.State())
}

func TestLoad_FailuresResetOnlyTheirAxis(t *testing.T) {
	f := newFixture(t)
	f.backend.AddLike(f.media.MediaID, f.viewer.UserID)
	c := NewController(f.media.MediaID, f.api, staticToken{token: f.token})
	require.True(t, c.Load(context.Background()).OK())

	f.backend.Fail(testutil.RouteLikeCount, 500, "db down")
	res := c.Load(context.Background())

	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Cause(), client.ErrServer)
	s := c.State()
	assert.Zero(t, s.Count)
	assert.NotNil(t, s.ViewerLike)

	f.backend.ClearFailure(testutil.RouteLikeCount)
	f.backend.Fail(testutil.RouteViewerLike, 500, "db down")
	res = c.Load(context.Background())

	assert.False(t, res.OK())
	s = c.State()
	assert.Equal(t, 1, s.Count)
	assert.Nil(t, s.ViewerLike)
}

func TestToggle_LikeThenUnlike(t *testing.T) {
	for _, optimistic := range []bool{false, true} {
		t.Run(map[bool]string{false: "reconcile", true: "optimistic"}[optimistic], func(t *testing.T) {
			f := newFixture(t)
			other := f.backend.AddUser("bob", "bob@example.com", "pw")
			f.backend.AddLike(f.media.MediaID, other.UserID)

			c := NewController(f.media.MediaID, f.api, staticToken{token: f.token}, WithOptimistic(optimistic))
			ctx := context.Background()
			require.True(t, c.Load(ctx).OK())
			before := c.State()
			require.Nil(t, before.ViewerLike)

			res := c.Toggle(ctx)
			require.True(t, res.OK(), res.String())
			after := c.State()
			require.NotNil(t, after.ViewerLike)
			assert.NotZero(t, after.ViewerLike.LikeID)
			assert.Equal(t, before.Count+1, after.Count)

			res = c.Toggle(ctx)
			require.True(t, res.OK(), res.String())
			assert.Equal(t, before, c.State())
		})
	}
}

func TestToggle_RequiresToken(t *testing.T) {
	f := newFixture(t)
	c := NewController(f.media.MediaID, f.api, staticToken{err: common.ErrNotLoggedIn})

	res := c.Toggle(context.Background())
	assert.ErrorIs(t, res.Cause(), common.ErrNotLoggedIn)
	assert.Zero(t, f.backend.Hits(testutil.RoutePostLike))
}

func TestToggle_ConcurrentCallIsDropped(t *testing.T) {
	f := newFixture(t)
	c := NewController(f.media.MediaID, f.api, staticToken{token: f.token})
	ctx := context.Background()
	require.True(t, c.Load(ctx).OK())

	release := f.backend.Gate(testutil.RoutePostLike)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	causes := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		r := c.Toggle(ctx)
		results[0], causes[0] = r.OK(), r.Cause()
	}()
	require.Eventually(t, func() bool { return f.backend.Hits(testutil.RoutePostLike) == 1 }, time.Second, time.Millisecond)

	r := c.Toggle(ctx)
	results[1], causes[1] = r.OK(), r.Cause()
	release()
	wg.Wait()

	assert.True(t, results[0])
	assert.ErrorIs(t, causes[1], common.ErrBusy)
	assert.Equal(t, 1, f.backend.Hits(testutil.RoutePostLike))
	assert.Equal(t, 1, c.State().Count)
}

func TestToggle_MutationFailureStillReconciles(t *testing.T) {
	f := newFixture(t)
	c := NewController(f.media.MediaID, f.api, staticToken{token: f.token}, WithOptimistic(true))
	ctx := context.Background()
	require.True(t, c.Load(ctx).OK())

	f.backend.Fail(testutil.RoutePostLike, 500, "nope")
	res := c.Toggle(ctx)

	assert.False(t, res.OK())
	var apiErr *client.APIError
	assert.True(t, errors.As(res.Cause(), &apiErr))
	assert.Equal(t, State{}, c.State())
}

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/config"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/client/securestore"
	"github.com/dmitrijs2005/mediashare/internal/client/upload"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/logging"
	"github.com/dmitrijs2005/mediashare/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*App
	backend *testutil.FakeBackend
	store   *securestore.MemoryStore
	buf     *bytes.Buffer
}

// newTestApp builds an App against a fake backend. input feeds the prompts
// in order.
func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()
	b := testutil.NewFakeBackend(t)

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.AuthAPI, cfg.MediaAPI, cfg.UploadAPI = b.URL(), b.URL(), b.URL()

	api, err := client.New(client.Config{AuthAPI: b.URL(), MediaAPI: b.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)

	store := securestore.NewMemoryStore()
	out := &bytes.Buffer{}
	in := strings.Join(input, "\n")
	if len(input) > 0 {
		in += "\n"
	}

	a := newApp(&cfg, deps{api: api, store: store, uploader: upload.NewHTTPUploader(api, b.URL())},
		logging.Nop(), strings.NewReader(in), out)
	t.Cleanup(a.Close)

	return &testApp{App: a, backend: b, store: store, buf: out}
}

// stubSecrets makes the hidden prompts answer with secrets in order.
func stubSecrets(t *testing.T, secrets ...string) {
	t.Helper()
	next := func() ([]byte, error) {
		if len(secrets) == 0 {
			return nil, io.EOF
		}
		s := secrets[0]
		secrets = secrets[1:]
		return []byte(s), nil
	}

	origPW, origSecret := getPassword, getSecret
	getPassword = func(io.Writer) ([]byte, error) { return next() }
	getSecret = func(io.Writer, string) ([]byte, error) { return next() }
	t.Cleanup(func() {
		getPassword = origPW
		getSecret = origSecret
	})
}

func (ta *testApp) login(t *testing.T, username, password string) {
	t.Helper()
	token := ta.backend.IssueToken(ta.backend.AddUser(username, username+"@example.com", password).UserID, time.Now().Add(time.Hour))
	require.NoError(t, ta.store.Set(t.Context(), securestore.TokenKey, token))
	require.True(t, ta.session.AutoLogin(t.Context()).OK())
	require.True(t, ta.isLoggedIn())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ta := newTestApp(t, "ann")
	stubSecrets(t, "wrong")

	err := ta.Login(t.Context())
	require.Error(t, err)
	require.Contains(t, ta.buf.String(), "Error: Invalid credentials")
	require.False(t, ta.isLoggedIn())
	require.Equal(t, "", ta.getStatus())
}

func TestLogin_ThenWhoAmIAndLogout(t *testing.T) {
	ta := newTestApp(t, "ann")
	ta.backend.AddUser("ann", "ann@example.com", "secret")
	stubSecrets(t, "secret")

	require.NoError(t, ta.Login(t.Context()))
	require.Contains(t, ta.buf.String(), "Logged in as ann")
	require.Equal(t, "(ann)", ta.getStatus())

	require.NoError(t, ta.WhoAmI(t.Context()))
	require.Contains(t, ta.buf.String(), "ann <ann@example.com>")

	require.NoError(t, ta.Logout(t.Context()))
	require.False(t, ta.isLoggedIn())
	_, found, err := ta.store.Get(t.Context(), securestore.TokenKey)
	require.NoError(t, err)
	require.False(t, found)

	require.ErrorIs(t, ta.WhoAmI(t.Context()), common.ErrNotLoggedIn)
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ta := newTestApp(t, "bob", "bob@example.com", "bob")
		stubSecrets(t, "secret", "secret", "secret")

		require.NoError(t, ta.Register(t.Context()))
		require.NoError(t, ta.Login(t.Context()))
		require.Equal(t, "bob", ta.session.CurrentUser().Username)
	})

	t.Run("password mismatch", func(t *testing.T) {
		ta := newTestApp(t, "bob", "bob@example.com")
		stubSecrets(t, "secret", "secreT")

		require.ErrorIs(t, ta.Register(t.Context()), errPasswordMismatch)
		require.Zero(t, ta.backend.Hits(testutil.RouteRegister))
	})

	t.Run("username taken", func(t *testing.T) {
		ta := newTestApp(t, "ann")
		ta.backend.AddUser("ann", "ann@example.com", "secret")

		err := ta.Register(t.Context())
		require.EqualError(t, err, "Username taken")
		require.Zero(t, ta.backend.Hits(testutil.RouteRegister))
	})

	t.Run("invalid email", func(t *testing.T) {
		ta := newTestApp(t, "bob", "not-an-email")

		require.EqualError(t, ta.Register(t.Context()), "not a valid email")
		require.Zero(t, ta.backend.Hits(testutil.RouteEmail))
	})
}

func TestProfile(t *testing.T) {
	ta := newTestApp(t, "ann2", "")
	ta.login(t, "ann", "secret")
	stubSecrets(t, "")

	require.NoError(t, ta.Profile(t.Context()))
	require.Contains(t, ta.buf.String(), "Profile updated")
	require.Equal(t, "ann2", ta.session.CurrentUser().Username)
	require.Equal(t, "ann@example.com", ta.session.CurrentUser().Email)
}

func TestProfile_NothingToUpdate(t *testing.T) {
	ta := newTestApp(t, "", "")
	ta.login(t, "ann", "secret")
	stubSecrets(t, "")

	require.NoError(t, ta.Profile(t.Context()))
	require.Contains(t, ta.buf.String(), "Nothing to update")
	require.Zero(t, ta.backend.Hits(testutil.RouteUpdateUser))
}

func seedFeed(ta *testApp) (models.UserProfile, models.MediaItem) {
	ann := ta.backend.AddUser("ann", "ann@example.com", "secret")
	desc := "golden hour"
	item := ta.backend.AddMedia(models.MediaItem{
		UserID:      ann.UserID,
		Filename:    "1-sunset.jpg",
		Filesize:    2048,
		MediaType:   "image/jpeg",
		Title:       "Sunset",
		Description: &desc,
		CreatedAt:   time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC),
	})
	ta.backend.AddLike(item.MediaID, ann.UserID)
	ta.backend.AddComment(item.MediaID, ann.UserID, "nice light")
	return ann, item
}

func TestFeedAndShow(t *testing.T) {
	ta := newTestApp(t)
	_, item := seedFeed(ta)

	require.NoError(t, ta.Feed(t.Context()))
	require.Contains(t, ta.buf.String(), "Sunset by ann (image/jpeg, 2024-05-01)")

	listed := ta.backend.Hits(testutil.RouteListMedia)
	require.NoError(t, ta.Show(t.Context(), []string{itoa(item.MediaID)}))
	require.Equal(t, listed, ta.backend.Hits(testutil.RouteListMedia), "show reuses the current feed")

	out := ta.buf.String()
	require.Contains(t, out, "golden hour")
	require.Contains(t, out, ta.backend.URL()+"/uploads/1-sunset.jpg")
	require.Contains(t, out, "likes: 1\n")
	require.Contains(t, out, "ann: nice light")
}

func TestShow_CommentsFailureShowsEmpty(t *testing.T) {
	ta := newTestApp(t)
	_, item := seedFeed(ta)
	ta.backend.Fail(testutil.RouteListComments, 500, "boom")

	require.NoError(t, ta.Show(t.Context(), []string{itoa(item.MediaID)}))
	require.Contains(t, ta.buf.String(), "comments: 0")
}

func TestShow_Errors(t *testing.T) {
	ta := newTestApp(t)
	seedFeed(ta)

	require.Error(t, ta.Show(t.Context(), []string{"abc"}))
	require.ErrorIs(t, ta.Show(t.Context(), []string{"9999"}), errUnknownMedia)
}

func TestMine(t *testing.T) {
	ta := newTestApp(t)
	ann, _ := seedFeed(ta)
	bob := ta.backend.AddUser("bob", "bob@example.com", "secret")
	ta.backend.AddMedia(models.MediaItem{UserID: bob.UserID, Title: "Other", Filename: "x.png"})

	require.ErrorIs(t, ta.Mine(t.Context()), common.ErrNotLoggedIn)

	token := ta.backend.IssueToken(ann.UserID, time.Now().Add(time.Hour))
	require.NoError(t, ta.store.Set(t.Context(), securestore.TokenKey, token))
	require.True(t, ta.session.AutoLogin(t.Context()).OK())

	ta.buf.Reset()
	require.NoError(t, ta.Mine(t.Context()))
	require.Contains(t, ta.buf.String(), "Sunset")
	require.NotContains(t, ta.buf.String(), "Other")
}

func TestLikeToggle(t *testing.T) {
	ta := newTestApp(t)
	item := ta.backend.AddMedia(models.MediaItem{UserID: 1, Title: "Sunset", Filename: "s.jpg"})
	ta.login(t, "bob", "secret")

	require.NoError(t, ta.Like(t.Context(), []string{itoa(item.MediaID)}))
	require.Contains(t, ta.buf.String(), "Liked, 1 like(s)")

	require.NoError(t, ta.Like(t.Context(), []string{itoa(item.MediaID)}))
	require.Contains(t, ta.buf.String(), "Unliked, 0 like(s)")
}

func TestLike_NotLoggedIn(t *testing.T) {
	ta := newTestApp(t)
	item := ta.backend.AddMedia(models.MediaItem{UserID: 1, Title: "Sunset", Filename: "s.jpg"})

	require.ErrorIs(t, ta.Like(t.Context(), []string{itoa(item.MediaID)}), common.ErrNotLoggedIn)
	require.Zero(t, ta.backend.Hits(testutil.RoutePostLike))
}

func TestComment(t *testing.T) {
	ta := newTestApp(t, "from prompt")
	_, item := seedFeed(ta)
	ta.login(t, "bob", "secret")
	id := itoa(item.MediaID)

	require.NoError(t, ta.Comment(t.Context(), []string{id, "great", "shot"}))
	require.NoError(t, ta.Comment(t.Context(), []string{id}))
	before := ta.bus.Version()
	require.Error(t, ta.Comment(t.Context(), []string{id, "   "}))
	require.Equal(t, before, ta.bus.Version())

	ta.buf.Reset()
	require.NoError(t, ta.Show(t.Context(), []string{id}))
	out := ta.buf.String()
	require.Contains(t, out, "bob: great shot")
	require.Contains(t, out, "bob: from prompt")
}

func TestUploadEditDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.png")
	content := []byte("\x89PNG\r\n\x1a\nnot really a png")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	ta := newTestApp(t,
		// upload: title, description, end of description
		"My cat", "A fluffy cat", "",
		// edit: title, empty description keeps the old one
		"Better cat", "",
		// delete confirmation
		"y",
	)
	ta.login(t, "ann", "secret")

	require.NoError(t, ta.Upload(t.Context(), []string{path}))
	media := ta.backend.Media()
	require.Len(t, media, 1)
	got := media[0]
	require.Equal(t, "My cat", got.Title)
	require.Equal(t, "image/png", got.MediaType)
	require.Equal(t, int64(len(content)), got.Filesize)
	stored, ok := ta.backend.Uploaded(got.Filename)
	require.True(t, ok)
	require.Equal(t, content, stored)

	id := itoa(got.MediaID)
	require.NoError(t, ta.Edit(t.Context(), []string{id}))
	media = ta.backend.Media()
	require.Equal(t, "Better cat", media[0].Title)
	require.NotNil(t, media[0].Description)
	require.Equal(t, "A fluffy cat", *media[0].Description)

	require.NoError(t, ta.Delete(t.Context(), []string{id}))
	require.Empty(t, ta.backend.Media())
}

func TestUpload_InvalidInputSkipsNetwork(t *testing.T) {
	ta := newTestApp(t, "ab", "")
	ta.login(t, "ann", "secret")

	require.Error(t, ta.Upload(t.Context(), []string{"/does/not/matter"}))
	require.Zero(t, ta.backend.Hits(testutil.RouteUpload))
}

func TestDelete_Declined(t *testing.T) {
	ta := newTestApp(t, "n")
	ann, item := seedFeed(ta)
	token := ta.backend.IssueToken(ann.UserID, time.Now().Add(time.Hour))
	require.NoError(t, ta.store.Set(t.Context(), securestore.TokenKey, token))

	require.NoError(t, ta.Delete(t.Context(), []string{itoa(item.MediaID)}))
	require.Len(t, ta.backend.Media(), 1)
	require.Zero(t, ta.backend.Hits(testutil.RouteDeleteMedia))
}

func TestFeed_RefetchesAfterMutation(t *testing.T) {
	ta := newTestApp(t, "y")
	ann, item := seedFeed(ta)
	token := ta.backend.IssueToken(ann.UserID, time.Now().Add(time.Hour))
	require.NoError(t, ta.store.Set(t.Context(), securestore.TokenKey, token))

	require.NoError(t, ta.Feed(t.Context()))
	require.NoError(t, ta.Feed(t.Context()))
	require.Equal(t, 1, ta.backend.Hits(testutil.RouteListMedia))

	require.NoError(t, ta.Delete(t.Context(), []string{itoa(item.MediaID)}))

	ta.buf.Reset()
	require.NoError(t, ta.Feed(t.Context()))
	require.Equal(t, 2, ta.backend.Hits(testutil.RouteListMedia))
	require.Contains(t, ta.buf.String(), "No media")
}

func TestRun_AutoLoginAndExit(t *testing.T) {
	ta := newTestApp(t, "whoami", "feed", "exit")
	silencePrintln(t)
	ann, _ := seedFeed(ta)
	token := ta.backend.IssueToken(ann.UserID, time.Now().Add(time.Hour))
	require.NoError(t, ta.store.Set(t.Context(), securestore.TokenKey, token))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	ta.Run(ctx)

	out := ta.buf.String()
	require.Contains(t, out, "Welcome back, ann")
	require.Contains(t, out, "ann <ann@example.com>")
	require.Contains(t, out, "Sunset by ann")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

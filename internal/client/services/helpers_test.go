package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/invalidation"
	"github.com/dmitrijs2005/mediashare/internal/client/securestore"
	"github.com/dmitrijs2005/mediashare/internal/client/upload"
	"github.com/dmitrijs2005/mediashare/internal/testutil"
	"github.com/stretchr/testify/require"
)

type env struct {
	backend *testutil.FakeBackend
	api     *client.HTTPClient
	store   *securestore.MemoryStore
	session *SessionManager
	bus     *invalidation.Bus
}

func newEnv(t *testing.T) *env {
	t.Helper()
	b := testutil.NewFakeBackend(t)
	api, err := client.New(client.Config{AuthAPI: b.URL(), MediaAPI: b.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	store := securestore.NewMemoryStore()
	return &env{
		backend: b,
		api:     api,
		store:   store,
		session: NewSessionManager(api, store, nil),
		bus:     invalidation.New(),
	}
}

func (e *env) mediaService() *MediaService {
	return NewMediaService(e.api, upload.NewHTTPUploader(e.api, e.backend.URL()), e.session, e.bus, nil)
}

func (e *env) storedToken(t *testing.T) (string, bool) {
	t.Helper()
	tok, found, err := e.store.Get(t.Context(), securestore.TokenKey)
	require.NoError(t, err)
	return tok, found
}

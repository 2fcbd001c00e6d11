package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/client/upload"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedIn(t *testing.T, e *env) models.UserProfile {
	t.Helper()
	u := e.backend.AddUser("ann", "ann@example.com", "secret")
	require.NoError(t, e.session.Login(context.Background(), models.Credentials{Username: "ann", Password: "secret"}))
	return u
}

func TestUpload_CreatesMediaAndTriggersOnce(t *testing.T) {
	e := newEnv(t)
	ann := loggedIn(t, e)
	w := e.bus.Watch()
	defer w.Close()

	item, err := e.mediaService().Upload(context.Background(),
		models.UploadFile{Name: "cat.jpg", ContentType: "image/jpeg", Body: strings.NewReader("JPEG")},
		models.MediaInput{Title: "Cat", Description: ""},
	)

	require.NoError(t, err)
	assert.Equal(t, ann.UserID, item.UserID)
	assert.Equal(t, "Cat", item.Title)
	assert.Nil(t, item.Description)
	assert.Equal(t, int64(4), item.Filesize)
	assert.Equal(t, "image/jpeg", item.MediaType)
	assert.Equal(t, uint64(1), e.bus.Version())
	assert.True(t, w.Changed())
}

func TestUpload_ValidationAndAuthDoNotTrigger(t *testing.T) {
	e := newEnv(t)
	svc := e.mediaService()
	ctx := context.Background()
	file := models.UploadFile{Name: "a.png", Body: strings.NewReader("x")}

	_, err := svc.Upload(ctx, file, models.MediaInput{Title: "ok title"})
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)

	loggedIn(t, e)
	_, err = svc.Upload(ctx, file, models.MediaInput{Title: "ab"})
	assert.ErrorIs(t, err, client.ErrValidation)

	assert.Zero(t, e.bus.Version())
	assert.Zero(t, e.backend.Hits(testutil.RouteUpload))
}

func TestUpload_UnnamedFileDoesNotTrigger(t *testing.T) {
	e := newEnv(t)
	loggedIn(t, e)

	_, err := e.mediaService().Upload(context.Background(),
		models.UploadFile{Body: strings.NewReader("x")},
		models.MediaInput{Title: "Nameless"},
	)

	assert.ErrorIs(t, err, upload.ErrEmptyFile)
	assert.Zero(t, e.bus.Version())
	assert.Zero(t, e.backend.Hits(testutil.RouteUpload))
}

func TestUpload_CreateFailureStillTriggers(t *testing.T) {
	e := newEnv(t)
	loggedIn(t, e)
	e.backend.Fail(testutil.RouteCreateMedia, 400, "Invalid media type")

	_, err := e.mediaService().Upload(context.Background(),
		models.UploadFile{Name: "a.bin", Body: strings.NewReader("x")},
		models.MediaInput{Title: "Binary"},
	)

	require.Error(t, err)
	assert.Equal(t, "Invalid media type", err.Error())
	assert.Equal(t, uint64(1), e.bus.Version())
}

func TestUpdateAndDelete(t *testing.T) {
	e := newEnv(t)
	ann := loggedIn(t, e)
	item := e.backend.AddMedia(models.MediaItem{UserID: ann.UserID, Title: "old"})
	svc := e.mediaService()
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, item.MediaID, models.MediaInput{Title: "new title", Description: "described"}))
	assert.Equal(t, uint64(1), e.bus.Version())
	assert.Equal(t, "new title", e.backend.Media()[0].Title)

	require.NoError(t, svc.Delete(ctx, item.MediaID))
	assert.Equal(t, uint64(2), e.bus.Version())
	assert.Empty(t, e.backend.Media())

	err := svc.Delete(ctx, item.MediaID)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, uint64(3), e.bus.Version())
}

func TestUpdate_ForeignMediaIsRejected(t *testing.T) {
	e := newEnv(t)
	loggedIn(t, e)
	item := e.backend.AddMedia(models.MediaItem{UserID: 999, Title: "theirs"})

	err := e.mediaService().Update(context.Background(), item.MediaID, models.MediaInput{Title: "mine now"})
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestDelete_NotLoggedIn(t *testing.T) {
	e := newEnv(t)

	err := e.mediaService().Delete(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
	assert.Zero(t, e.bus.Version())
}

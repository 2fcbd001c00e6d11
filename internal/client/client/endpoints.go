package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
)

func (c *HTTPClient) auth(path string) string  { return c.authURL + path }
func (c *HTTPClient) media(path string) string { return c.mediaURL + path }

func id(v int64) string { return strconv.FormatInt(v, 10) }

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, c.auth("/auth/login"), "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, creds models.RegisterCredentials) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, c.auth("/users"), "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) WhoAmI(ctx context.Context, token string) (*models.UserResponse, error) {
	var out models.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, c.auth("/users/token"), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, token string, update models.ProfileUpdate) (*models.UserResponse, error) {
	var out models.UserResponse
	if err := c.doJSON(ctx, http.MethodPut, c.auth("/users"), token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	var out models.AvailableResponse
	err := c.doJSON(ctx, http.MethodGet, c.auth("/users/username/"+url.PathEscape(username)), "", nil, &out)
	return out.Available, err
}

func (c *HTTPClient) EmailAvailable(ctx context.Context, email string) (bool, error) {
	var out models.AvailableResponse
	err := c.doJSON(ctx, http.MethodGet, c.auth("/users/email/"+url.PathEscape(email)), "", nil, &out)
	return out.Available, err
}

func (c *HTTPClient) GetUser(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, c.auth("/users/"+id(userID)), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListMedia(ctx context.Context) ([]models.MediaItem, error) {
	var out []models.MediaItem
	if err := c.doJSON(ctx, http.MethodGet, c.media("/media"), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateMedia(ctx context.Context, token string, media models.NewMedia) (*models.MediaResponse, error) {
	var out models.MediaResponse
	if err := c.doJSON(ctx, http.MethodPost, c.media("/media"), token, media, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateMedia(ctx context.Context, token string, mediaID int64, input models.MediaInput) error {
	return c.doJSON(ctx, http.MethodPut, c.media("/media/"+id(mediaID)), token, input, nil)
}

func (c *HTTPClient) DeleteMedia(ctx context.Context, token string, mediaID int64) error {
	return c.doJSON(ctx, http.MethodDelete, c.media("/media/"+id(mediaID)), token, nil, nil)
}

func (c *HTTPClient) PostLike(ctx context.Context, token string, mediaID int64) error {
	body := struct {
		MediaID int64 `json:"media_id"`
	}{mediaID}
	return c.doJSON(ctx, http.MethodPost, c.media("/likes"), token, body, nil)
}

func (c *HTTPClient) DeleteLike(ctx context.Context, token string, likeID int64) error {
	return c.doJSON(ctx, http.MethodDelete, c.media("/likes/"+id(likeID)), token, nil, nil)
}

func (c *HTTPClient) LikeCount(ctx context.Context, mediaID int64) (int, error) {
	var out models.CountResponse
	if err := c.doJSON(ctx, http.MethodGet, c.media("/likes/count/"+id(mediaID)), "", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *HTTPClient) ViewerLike(ctx context.Context, token string, mediaID int64) (*models.LikeRecord, error) {
	var out models.LikeRecord
	err := c.doJSON(ctx, http.MethodGet, c.media("/likes/bymedia/user/"+id(mediaID)), token, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PostComment(ctx context.Context, token string, mediaID int64, text string) error {
	body := struct {
		CommentText string `json:"comment_text"`
		MediaID     int64  `json:"media_id"`
	}{text, mediaID}
	return c.doJSON(ctx, http.MethodPost, c.media("/comments"), token, body, nil)
}

func (c *HTTPClient) ListComments(ctx context.Context, mediaID int64) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.doJSON(ctx, http.MethodGet, c.media("/comments/bymedia/"+id(mediaID)), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package client

import (
	"context"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
)

// AuthAPI covers login, registration and the current user's profile.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Register(ctx context.Context, creds models.RegisterCredentials) (*models.MessageResponse, error)
	WhoAmI(ctx context.Context, token string) (*models.UserResponse, error)
	UpdateUser(ctx context.Context, token string, update models.ProfileUpdate) (*models.UserResponse, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
}

// UserLookup resolves a user by id; used by the owner/author joins.
type UserLookup interface {
	GetUser(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type MediaAPI interface {
	ListMedia(ctx context.Context) ([]models.MediaItem, error)
	CreateMedia(ctx context.Context, token string, media models.NewMedia) (*models.MediaResponse, error)
	UpdateMedia(ctx context.Context, token string, mediaID int64, input models.MediaInput) error
	DeleteMedia(ctx context.Context, token string, mediaID int64) error
}

type LikesAPI interface {
	PostLike(ctx context.Context, token string, mediaID int64) error
	DeleteLike(ctx context.Context, token string, likeID int64) error
	LikeCount(ctx context.Context, mediaID int64) (int, error)
	// ViewerLike returns the token owner's like on mediaID, or nil if none.
	ViewerLike(ctx context.Context, token string, mediaID int64) (*models.LikeRecord, error)
}

type CommentsAPI interface {
	PostComment(ctx context.Context, token string, mediaID int64, text string) error
	ListComments(ctx context.Context, mediaID int64) ([]models.Comment, error)
}

// Client is the full backend surface.
type Client interface {
	AuthAPI
	UserLookup
	MediaAPI
	LikesAPI
	CommentsAPI
}

var _ Client = (*HTTPClient)(nil)

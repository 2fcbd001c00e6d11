package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/client/securestore"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/logging"
)

// SessionManager is the single owner of the current user. The bearer token
// lives only in the TokenStore and is read on demand.
//
// Phases: Anonymous -> (Login | AutoLogin) -> Authenticated -> (Logout |
// failed AutoLogin) -> Anonymous. UpdateProfile replaces the profile without
// changing phase.
type SessionManager struct {
	api    client.AuthAPI
	store  securestore.TokenStore
	logger logging.Logger
	now    func() time.Time

	// opMu serializes token writes so a slow AutoLogin cannot delete a token
	// stored by a Login that finished in the meantime.
	opMu sync.Mutex

	mu    sync.RWMutex
	user  *models.UserProfile
	epoch uint64
}

func NewSessionManager(api client.AuthAPI, store securestore.TokenStore, logger logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionManager{
		api:    api,
		store:  store,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

// CurrentUser returns a copy of the current profile, or nil when anonymous.
func (s *SessionManager) CurrentUser() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionManager) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Token reads the stored bearer token. It returns common.ErrNotLoggedIn
// when none is stored.
func (s *SessionManager) Token(ctx context.Context) (string, error) {
	token, found, err := s.store.Get(ctx, securestore.TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !found || token == "" {
		return "", common.ErrNotLoggedIn
	}
	return token, nil
}

func (s *SessionManager) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// AutoLogin restores the session from a stored token. With no token it does
// nothing. An expired or rejected token is deleted and the session stays
// anonymous. Nothing is returned as an error.
func (s *SessionManager) AutoLogin(ctx context.Context) common.SoftFailure {
	const op = "session.autologin"
	epoch := s.currentEpoch()

	token, found, err := s.store.Get(ctx, securestore.TokenKey)
	if err != nil {
		return s.abandon(ctx, op, epoch, fmt.Errorf("read token: %w", err))
	}
	if !found || token == "" {
		return common.Soft(op, nil)
	}

	if expired, err := client.TokenExpired(token, s.now()); err == nil && expired {
		return s.abandon(ctx, op, epoch, common.ErrTokenExpired)
	}

	resp, err := s.api.WhoAmI(ctx, token)
	if err != nil {
		return s.abandon(ctx, op, epoch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return common.Soft(op, nil)
	}
	user := resp.User
	s.user = &user
	s.epoch++
	s.logger.Info(ctx, "session restored", "user_id", user.UserID)
	return common.Soft(op, nil)
}

// abandon deletes the stored token and clears the session, unless a Login or
// Logout ran since epoch was taken.
func (s *SessionManager) abandon(ctx context.Context, op string, epoch uint64, cause error) common.SoftFailure {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.currentEpoch() != epoch {
		return common.Soft(op, cause)
	}

	if err := s.store.Delete(ctx, securestore.TokenKey); err != nil {
		cause = errors.Join(cause, fmt.Errorf("delete token: %w", err))
	}

	s.mu.Lock()
	s.user = nil
	s.epoch++
	s.mu.Unlock()

	return common.Soft(op, cause)
}

// Login authenticates, stores the token and sets the current user. On any
// failure the session is left as it was and the error is returned; for a
// rejected login its message is the server's.
func (s *SessionManager) Login(ctx context.Context, creds models.Credentials) error {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.store.Set(ctx, securestore.TokenKey, resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	s.epoch++
	s.mu.Unlock()

	s.logger.Info(ctx, "logged in", "user_id", user.UserID)
	return nil
}

// Logout deletes the stored token, then clears the session. The session is
// cleared even if the delete fails; that failure is reported softly.
func (s *SessionManager) Logout(ctx context.Context) common.SoftFailure {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.store.Delete(ctx, securestore.TokenKey)

	s.mu.Lock()
	s.user = nil
	s.epoch++
	s.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("delete token: %w", err)
	}
	return common.Soft("session.logout", err)
}

// UpdateProfile sends a partial profile change and adopts the server's
// canonical profile, which also populates a session that was not restored
// yet. Without a stored token it returns nil and does nothing.
func (s *SessionManager) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	token, err := s.Token(ctx)
	if errors.Is(err, common.ErrNotLoggedIn) {
		s.logger.Debug(ctx, "profile update skipped: not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	if err := validateProfileUpdate(update); err != nil {
		return err
	}

	epoch := s.currentEpoch()
	resp, err := s.api.UpdateUser(ctx, token, update)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		user := resp.User
		s.user = &user
	}
	return nil
}

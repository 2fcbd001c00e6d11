package services

import (
	"context"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/logging"
)

// AccountService covers sign-up and the availability probes used while the
// user fills in the sign-up or profile form.
type AccountService struct {
	api    client.AuthAPI
	logger logging.Logger
}

func NewAccountService(api client.AuthAPI, logger logging.Logger) *AccountService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AccountService{api: api, logger: logger.With("component", "accounts")}
}

// Register validates creds and creates the account. It returns the
// server's confirmation message.
func (a *AccountService) Register(ctx context.Context, creds models.RegisterCredentials) (string, error) {
	if err := validateRegistration(creds); err != nil {
		return "", err
	}
	resp, err := a.api.Register(ctx, creds)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UsernameAvailable never fails: a probe error is reported as "not
// available" with an explanatory message.
func (a *AccountService) UsernameAvailable(ctx context.Context, username string) models.Availability {
	ok, err := a.api.UsernameAvailable(ctx, username)
	return a.availability(ctx, "username", ok, err, "Username taken", "Username check failed")
}

func (a *AccountService) EmailAvailable(ctx context.Context, email string) models.Availability {
	if !ValidEmail(email) {
		return models.Availability{Message: "not a valid email"}
	}
	ok, err := a.api.EmailAvailable(ctx, email)
	return a.availability(ctx, "email", ok, err, "Email already in use", "Email check failed")
}

func (a *AccountService) availability(ctx context.Context, field string, ok bool, err error, takenMsg, failedMsg string) models.Availability {
	if err != nil {
		a.logger.Warn(ctx, "availability check failed", "field", field, "error", err)
		return models.Availability{Message: failedMsg}
	}
	if !ok {
		return models.Availability{Message: takenMsg}
	}
	return models.Availability{Available: true}
}

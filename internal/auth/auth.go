// Package auth implements the login/register flow that establishes a session.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/budgie/internal/log"
	"github.com/theirongolddev/budgie/internal/model"
)

// FailureNotice is the generic message shown for any failed submit.
const FailureNotice = "An error occurred during authentication."

var (
	// ErrFailed wraps every transport or server failure of a submit.
	ErrFailed = errors.New("authentication failed")
	// ErrNoUserID means the service answered 2xx without issuing an identifier.
	ErrNoUserID = errors.New("authentication response carried no user id")
)

// Service is the remote half of authentication.
type Service interface {
	Authenticate(ctx context.Context, mode model.Mode, creds model.Credentials) (model.AuthResult, error)
}

// Publisher receives the identifier of a successful login.
type Publisher interface {
	Set(id model.UserID) error
}

// Authenticator holds the form state and submits it.
type Authenticator struct {
	Username string
	Password string
	Mode     model.Mode

	svc Service
	pub Publisher
	log *log.Logger
}

// New creates an authenticator in login mode.
func New(svc Service, pub Publisher, logger *log.Logger) *Authenticator {
	return &Authenticator{
		Mode: model.ModeLogin,
		svc:  svc,
		pub:  pub,
		log:  logger.WithComponent(log.ComponentAuth),
	}
}

// Toggle switches between login and register. Fields are kept.
func (a *Authenticator) Toggle() {
	a.Mode = a.Mode.Toggle()
}

// Result describes a successful submit.
type Result struct {
	Message string
	UserID  model.UserID
}

// Submit sends the credentials to the endpoint selected by Mode. On success
// the identifier is published. On failure the form state is left unchanged and
// the error wraps ErrFailed. Validation is delegated to the service.
func (a *Authenticator) Submit(ctx context.Context) (Result, error) {
	op := log.OpLogin
	if a.Mode == model.ModeRegister {
		op = log.OpRegister
	}

	res, err := a.svc.Authenticate(ctx, a.Mode, model.Credentials{
		Username: a.Username,
		Password: a.Password,
	})
	if err != nil {
		a.log.Err(ctx, op, err)
		return Result{}, fmt.Errorf("%w: %w", ErrFailed, err)
	}
	if res.UserID == "" {
		a.log.WarnContext(ctx, "no user id in response", log.FieldOperation, op)
		return Result{Message: res.Message}, fmt.Errorf("%w: %w", ErrFailed, ErrNoUserID)
	}

	if err := a.pub.Set(res.UserID); err != nil {
		a.log.Err(ctx, op, err)
		return Result{}, fmt.Errorf("%w: %w", ErrFailed, err)
	}

	a.log.InfoContext(ctx, "authenticated", log.FieldOperation, op, log.FieldUserID, res.UserID.String())
	return Result{Message: res.Message, UserID: res.UserID}, nil
}

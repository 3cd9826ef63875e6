package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/common"
	"github.com/dmitrijs2005/toilettracker/internal/logging"
)

var (
	ErrEmptyCredentials = errors.New("email and password are required")
	ErrLoginFailed      = errors.New("login failed")
	ErrSignupFailed     = errors.New("signup failed")
)

// Refresher reloads the view state from the server.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AuthService defines the session operations of the CLI.
//
//   - Login authenticates, creating the account when the server rejects the
//     credentials as invalid, then refreshes the data once.
//   - Logout drops the session locally; it never fails half way for the user.
//   - Restore reuses a token stored by an earlier run.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (bool, error)
	LoggedIn() bool
	WhoAmI() (TokenInfo, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client    client.Client
	session   *Session
	refresher Refresher
	log       logging.Logger
}

func NewAuthService(c client.Client, session *Session, refresher Refresher, log logging.Logger) AuthService {
	return &authService{client: c, session: session, refresher: refresher, log: log}
}

// Login wipes password before returning. Failures wrap ErrLoginFailed or
// ErrSignupFailed together with the transport error, so the server message
// stays reachable through client.MessageOf.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return ErrEmptyCredentials
	}
	creds := models.Credentials{Email: email, Password: string(password)}

	token, err := a.client.Login(ctx, creds)
	if err != nil {
		if !errors.Is(err, client.ErrInvalidCredentials) {
			return fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}
		a.log.Info(ctx, "login rejected, signing up", "email", email)
		if token, err = a.client.Signup(ctx, creds); err != nil {
			return fmt.Errorf("%w: %w", ErrSignupFailed, err)
		}
	}

	if err := a.session.Start(ctx, token); err != nil {
		return err
	}

	if err := a.refresher.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "refresh after login failed", "error", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.session.End(ctx); err != nil {
		return fmt.Errorf("clear local session: %w", err)
	}
	return nil
}

func (a *authService) Restore(ctx context.Context) (bool, error) {
	return a.session.Restore(ctx)
}

func (a *authService) LoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *authService) WhoAmI() (TokenInfo, error) {
	return a.session.Info()
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

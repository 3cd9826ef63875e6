package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/services"
	"github.com/dmitrijs2005/toilettracker/internal/client/views"
	"github.com/dmitrijs2005/toilettracker/internal/common"
)

// Login prompts for credentials and authenticates. Unknown accounts are
// created on the fly by the AuthService. On success the progress view is
// printed; the password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already logged in. Type 'logout' to switch accounts.")
		return nil
	}

	_ = views.RenderLogin(a.out)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCredentials):
			fmt.Fprintln(a.out, "Please enter email and password")
		case errors.Is(err, services.ErrSignupFailed):
			fmt.Fprintln(a.out, "Signup failed: "+client.MessageOf(err, "Error"))
		case errors.Is(err, client.ErrUnavailable):
			a.setMode(ModeOffline)
			fmt.Fprintln(a.out, "Login failed: server unavailable")
		default:
			fmt.Fprintln(a.out, "Login failed: "+client.MessageOf(err, "Error"))
		}
		return err
	}

	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Logged in as", email)
	return a.Progress(ctx)
}

// Logout drops the session, the stored token and the cached snapshot.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout", "error", err)
		fmt.Fprintln(a.out, "Logged out, but local data could not be cleared:", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints what the session token tells about the user.
func (a *App) WhoAmI(ctx context.Context) error {
	info, err := a.authService.WhoAmI()
	if err != nil {
		if errors.Is(err, services.ErrNotJWT) {
			fmt.Fprintln(a.out, "Logged in (token details unavailable)")
			return nil
		}
		fmt.Fprintln(a.out, err)
		return err
	}

	if info.Email != "" {
		fmt.Fprintln(a.out, "Email:  ", info.Email)
	}
	if info.Subject != "" {
		fmt.Fprintln(a.out, "User ID:", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		fmt.Fprintln(a.out, "Expires:", info.ExpiresAt.In(a.loc).Format(timeLayout))
	}
	fmt.Fprintln(a.out, "Mode:   ", a.Mode())
	return nil
}

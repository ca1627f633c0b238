package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email, a password and the profile fields and
// creates the account. The new user is signed in right away.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var profile rpc.Profile
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"First name (optional)", &profile.FirstName},
		{"Last name (optional)", &profile.LastName},
		{"Phone (optional)", &profile.Phone},
	} {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.authService.Register(cctx, email, password, profile); err != nil {
		return a.authFailed(err)
	}

	a.println("Success!")
	a.signedIn(ctx, email)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.authService.Login(cctx, email, password); err != nil {
		return a.authFailed(err)
	}

	a.println("Login successful")
	a.signedIn(ctx, email)
	return nil
}

func (a *App) authFailed(err error) error {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		a.println("Invalid email or password")
	case errors.Is(err, client.ErrAlreadyExists):
		a.println("An account with this email already exists")
	case errors.Is(err, client.ErrUnavailable):
		a.println("Server unavailable, try again later")
	default:
		a.println("Error:", err)
	}
	return err
}

// Logout revokes the session on the server and forgets it locally. The local
// session is dropped even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	err := a.authService.Logout(cctx)
	a.signedOut(ctx)
	if err != nil {
		a.logger.Warn(ctx, "logout incomplete", "error", err)
		a.println("Signed out locally; the server could not be notified")
		return err
	}
	a.println("Signed out")
	return nil
}

// WhoAmI prints the signed-in account.
func (a *App) WhoAmI(ctx context.Context) error {
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	p, err := a.authService.Profile(cctx)
	if err != nil {
		return a.authFailed(err)
	}

	a.printf("%s", p.Email)
	if name := joinNonEmpty(" ", p.FirstName, p.LastName); name != "" {
		a.printf(" (%s)", name)
	}
	if p.IsSuperAdmin {
		a.printf(" [super admin]")
	} else if p.IsAdmin {
		a.printf(" [admin]")
	}
	a.println()
	if p.Phone != "" {
		a.println("Phone:", p.Phone)
	}
	return nil
}

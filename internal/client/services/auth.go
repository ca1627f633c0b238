// Package services contains application services for the GophJournal client.
// This file defines the session service: sign-up, sign-in, sign-out, restoring
// the previous session from the local database and reporting the current actor.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/journal"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines the session operations used by the CLI. It is also the
// journal.ActorSource: the actor is read from the current access token.
type AuthService interface {
	journal.ActorSource

	Register(ctx context.Context, email string, password []byte, profile rpc.Profile) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	// Restore loads tokens saved by an earlier run and reports whether a
	// session was found.
	Restore(ctx context.Context) (bool, error)
	Profile(ctx context.Context) (*rpc.Profile, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ErrNoSession is returned by calls that need a signed-in user.
var ErrNoSession = errors.New("not signed in")

// accessClaims mirrors the claims the server puts into access tokens.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
}

type authService struct {
	client   client.Client
	metadata metadata.Repository
	logger   logging.Logger
}

// NewAuthService binds the API client to the local metadata store. Every
// token change the client reports, including silent refreshes, is persisted.
func NewAuthService(c client.Client, md metadata.Repository, l logging.Logger) AuthService {
	a := &authService{client: c, metadata: md, logger: l.With("module", "auth")}
	c.OnTokens(a.persistTokens)
	return a
}

func (a *authService) persistTokens(access, refresh string) {
	ctx := context.Background()

	var err error
	if access == "" && refresh == "" {
		err = a.metadata.Delete(ctx, metadata.KeyAccessToken, metadata.KeyRefreshToken)
	} else {
		err = a.metadata.SetMany(ctx, map[string]string{
			metadata.KeyAccessToken:  access,
			metadata.KeyRefreshToken: refresh,
		})
	}
	if err != nil {
		a.logger.Warn(ctx, "saving tokens failed", "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account; the server signs the new user in.
func (a *authService) Register(ctx context.Context, email string, password []byte, profile rpc.Profile) error {
	email = normalizeEmail(email)
	if len(password) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", client.ErrInvalidArgument, common.MinPasswordLength)
	}

	if err := a.client.SignUp(ctx, email, string(password), profile); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return a.metadata.Set(ctx, metadata.KeyEmail, email)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	email = normalizeEmail(email)
	if err := a.client.SignIn(ctx, email, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return a.metadata.Set(ctx, metadata.KeyEmail, email)
}

// Logout revokes the refresh token and wipes local session data. Local data
// is cleared even when the server call fails.
func (a *authService) Logout(ctx context.Context) error {
	err := a.client.SignOut(ctx)
	if cerr := a.metadata.Clear(ctx); cerr != nil {
		return errors.Join(err, cerr)
	}
	if err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

func (a *authService) Restore(ctx context.Context) (bool, error) {
	refresh, err := a.metadata.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return false, err
	}
	if refresh == "" {
		return false, nil
	}
	access, err := a.metadata.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}

	a.client.SetTokens(access, refresh)
	return true, nil
}

// CurrentActor decodes the access token without verifying it; the server
// verifies on every call. An expired token still identifies the actor since
// the client refreshes it on use.
func (a *authService) CurrentActor(ctx context.Context) (*journal.Actor, error) {
	access, refresh := a.client.Tokens()
	if access == "" || refresh == "" {
		return nil, nil
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("parse access token: %w", common.ErrInvalidToken)
	}
	return &journal.Actor{ID: claims.UserID, Email: claims.Email}, nil
}

func (a *authService) Profile(ctx context.Context) (*rpc.Profile, error) {
	if access, _ := a.client.Tokens(); access == "" {
		return nil, ErrNoSession
	}
	return a.client.Profile(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

package client

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
)

// Client is the backend as the CLI services see it: the row store plus
// account and attachment calls.
type Client interface {
	rowstore.Store

	Ping(ctx context.Context) error
	SignUp(ctx context.Context, email, password string, profile rpc.Profile) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) (*rpc.Profile, error)
	PresignUpload(ctx context.Context, fileName, contentType string) (*rpc.PresignUploadResponse, error)

	Tokens() (access, refresh string)
	SetTokens(access, refresh string)
	// OnTokens registers fn to be called whenever the token pair changes,
	// including transparent refreshes.
	OnTokens(fn func(access, refresh string))
	Close() error
}

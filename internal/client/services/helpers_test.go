package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeClient keeps tokens like GRPCClient does and records calls.
type fakeClient struct {
	client.Client

	access, refresh string
	onTokens        func(string, string)

	signInErr  error
	signUpErr  error
	signOutErr error
	pair       rpc.TokenPair

	lastEmail, lastPassword string
	lastProfile             rpc.Profile
	signOuts                int

	presignResp *rpc.PresignUploadResponse
	presignErr  error
	lastPresign [2]string
	closed      bool
}

func (f *fakeClient) Tokens() (string, string) { return f.access, f.refresh }

func (f *fakeClient) SetTokens(a, r string) {
	f.access, f.refresh = a, r
	if f.onTokens != nil {
		f.onTokens(a, r)
	}
}

func (f *fakeClient) OnTokens(fn func(string, string)) { f.onTokens = fn }

func (f *fakeClient) SignIn(_ context.Context, email, password string) error {
	f.lastEmail, f.lastPassword = email, password
	if f.signInErr != nil {
		return f.signInErr
	}
	f.SetTokens(f.pair.AccessToken, f.pair.RefreshToken)
	return nil
}

func (f *fakeClient) SignUp(_ context.Context, email, password string, p rpc.Profile) error {
	f.lastEmail, f.lastPassword, f.lastProfile = email, password, p
	if f.signUpErr != nil {
		return f.signUpErr
	}
	f.SetTokens(f.pair.AccessToken, f.pair.RefreshToken)
	return nil
}

func (f *fakeClient) SignOut(context.Context) error {
	f.signOuts++
	f.SetTokens("", "")
	return f.signOutErr
}

func (f *fakeClient) Profile(context.Context) (*rpc.Profile, error) {
	return &rpc.Profile{Email: "ann@example.com"}, nil
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) PresignUpload(_ context.Context, name, contentType string) (*rpc.PresignUploadResponse, error) {
	f.lastPresign = [2]string{name, contentType}
	return f.presignResp, f.presignErr
}

func newMetadata(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return client.NewRepositories(db).Metadata
}

// accessToken builds a token shaped like the server's, signed with a key the
// client never checks.
func accessToken(t *testing.T, uid, email string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uid, ExpiresAt: jwt.NewNumericDate(exp)},
		UserID:           uid,
		Email:            email,
	})
	s, err := tok.SignedString([]byte("server-only"))
	require.NoError(t, err)
	return s
}

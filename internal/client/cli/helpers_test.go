package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/client/journal"
	"github.com/dmitrijs2005/gophjournal/internal/client/services"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore/rowstoretest"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/microcosm-cc/bluemonday"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeAuth struct {
	services.AuthService

	actor *journal.Actor

	lastEmail    string
	lastPassword string
	lastProfile  rpc.Profile
	loginErr     error
	registerErr  error
	logoutErr    error
	logouts      int
	restore      bool
	profile      *rpc.Profile
	closed       bool
}

func (f *fakeAuth) CurrentActor(context.Context) (*journal.Actor, error) { return f.actor, nil }

func (f *fakeAuth) Login(_ context.Context, email string, password []byte) error {
	f.lastEmail, f.lastPassword = email, string(password)
	if f.loginErr != nil {
		return f.loginErr
	}
	f.actor = &journal.Actor{ID: "u1", Email: email}
	return nil
}

func (f *fakeAuth) Register(_ context.Context, email string, password []byte, p rpc.Profile) error {
	f.lastEmail, f.lastPassword, f.lastProfile = email, string(password), p
	if f.registerErr != nil {
		return f.registerErr
	}
	f.actor = &journal.Actor{ID: "u1", Email: email}
	return nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logouts++
	f.actor = nil
	return f.logoutErr
}

func (f *fakeAuth) Restore(context.Context) (bool, error) {
	if f.restore {
		f.actor = &journal.Actor{ID: "u1", Email: "restored@example.com"}
	}
	return f.restore, nil
}

func (f *fakeAuth) Profile(context.Context) (*rpc.Profile, error) { return f.profile, nil }

func (f *fakeAuth) Close(context.Context) error { f.closed = true; return nil }

type fakeUploads struct {
	paths []string
	err   error
}

func (f *fakeUploads) Upload(_ context.Context, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, path)
	return "https://cdn.example/" + path, nil
}

type testApp struct {
	*App
	store   *rowstoretest.Memory
	auth    *fakeAuth
	uploads *fakeUploads
	out     *bytes.Buffer
}

// newTestApp builds an App over an in-memory store. input feeds every
// prompt, one answer per line.
func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()

	store := rowstoretest.NewMemory()
	auth := &fakeAuth{}
	uploads := &fakeUploads{}
	out := &bytes.Buffer{}

	app := &App{
		config:      &config.Config{RequestTimeout: time.Second},
		logger:      nopLogger{},
		authService: auth,
		attachments: uploads,
		journal:     journal.NewCoordinator(journal.NewRepository(store, auth), nopLogger{}),
		loc:         time.UTC,
		plain:       bluemonday.StrictPolicy(),
		reader:      rdr(strings.Join(input, "\n") + "\n"),
		out:         out,
	}
	return &testApp{App: app, store: store, auth: auth, uploads: uploads, out: out}
}

// signIn marks the app signed in and loads the seeded rows.
func (ta *testApp) signIn(t *testing.T) {
	t.Helper()
	ta.auth.actor = &journal.Actor{ID: "u1", Email: "ann@example.com"}
	ta.signedIn(context.Background(), "ann@example.com")
	ta.out.Reset()
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entryRow(id, title, content, section string, at time.Time, tags ...string) rowstore.Row {
	var sec any
	if section != "" {
		sec = section
	}
	return rowstore.Row{
		"id":          id,
		"title":       title,
		"content":     content,
		"section_id":  sec,
		"tags":        append([]string{}, tags...),
		"attachments": []string{},
		"private":     false,
		"created_at":  at,
	}
}

func sectionRow(id, name string) rowstore.Row {
	return rowstore.Row{
		"id":          id,
		"name":        name,
		"description": nil,
		"color":       "#fff",
		"created_at":  day(2024, 1, 1),
	}
}

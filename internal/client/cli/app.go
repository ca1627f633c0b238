package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/client/journal"
	"github.com/dmitrijs2005/gophjournal/internal/client/services"
	"github.com/dmitrijs2005/gophjournal/internal/filex"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/microcosm-cc/bluemonday"
)

type App struct {
	config      *config.Config
	db          *sql.DB
	logger      logging.Logger
	authService services.AuthService
	attachments services.AttachmentService
	journal     *journal.Coordinator
	loc         *time.Location
	plain       *bluemonday.Policy

	reader   *bufio.Reader
	out      io.Writer
	loggedIn bool
	email    string
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	dbFile, err := filex.ResolveDataFile(config.DataDir, c.DatabaseFile)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, dbFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := client.NewRepositories(db)

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)
	as := services.NewAuthService(apiClient, repos.Metadata, logger)
	coordinator := journal.NewCoordinator(journal.NewRepository(apiClient, as), logger)

	return &App{
		config:      c,
		db:          db,
		logger:      logger,
		authService: as,
		attachments: services.NewAttachmentService(apiClient),
		journal:     coordinator,
		loc:         loc,
		plain:       bluemonday.StrictPolicy(),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run restores the previous session if there is one and serves the REPL
// until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	a.println("Welcome to GophJournal CLI (type 'help' for commands)")

	if ok, err := a.authService.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "restoring session failed", "error", err)
	} else if ok {
		a.signedIn(ctx, "")
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "closing client failed", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

// signedIn marks the session active and loads the journal. email may be
// empty, in which case it is read from the access token.
func (a *App) signedIn(ctx context.Context, email string) {
	if email == "" {
		if actor, err := a.authService.CurrentActor(ctx); err == nil && actor != nil {
			email = actor.Email
		}
	}
	a.loggedIn = true
	a.email = email

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.SetAuthenticated(cctx, true); err != nil {
		a.report(err)
	}
}

func (a *App) signedOut(ctx context.Context) {
	a.loggedIn = false
	a.email = ""
	_ = a.journal.SetAuthenticated(ctx, false)
}

// cancelEdit leaves the current create or edit mode, reporting a failed
// entries resync.
func (a *App) cancelEdit(ctx context.Context) {
	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.journal.Cancel(cctx); err != nil {
		a.report(err)
	}
}

// callCtx bounds one remote operation by the configured request timeout.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints the coordinator's stored message for err, or a message
// derived from err itself, and returns err.
func (a *App) report(err error) error {
	if err == nil {
		return nil
	}
	msg := a.journal.Snapshot().Message
	a.journal.DismissMessage()
	if msg == "" {
		msg = journal.UserMessage(err)
	}
	a.println("Error:", msg)
	return err
}

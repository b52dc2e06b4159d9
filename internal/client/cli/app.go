package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/syllabify/internal/client/api"
	"github.com/dmitrijs2005/syllabify/internal/client/config"
	"github.com/dmitrijs2005/syllabify/internal/client/models"
	"github.com/dmitrijs2005/syllabify/internal/client/services"
	"github.com/dmitrijs2005/syllabify/internal/client/session"
	"github.com/dmitrijs2005/syllabify/internal/client/storage"
	"github.com/dmitrijs2005/syllabify/internal/logging"
)

// authService is the part of services.AuthService the shell drives.
type authService interface {
	State() services.State
	Ready() <-chan struct{}
	Restore(ctx context.Context) services.State
	Subscribe(fn func(services.State)) func()
	Login(ctx context.Context, username, password string) (bool, error)
	Logout(ctx context.Context) error
	CompleteSecuritySetup(ctx context.Context, questions []models.SecurityQuestion) (bool, error)
}

// sessionInfo exposes persisted session details for whoami.
type sessionInfo interface {
	SavedAt(ctx context.Context) (time.Time, bool, error)
}

type App struct {
	config  *config.Config
	auth    authService
	session sessionInfo
	log     logging.Logger
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer

	path    string
	courses []models.Course
}

// NewApp opens the session database and builds the services behind the
// shell.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, c.Verbose)

	db, err := storage.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := session.NewStore(db)
	client := api.NewHTTPClient(c.APIURL, c.RequestTimeout, log)
	auth := services.NewAuthService(client, store, log)

	log.Debug(ctx, "client configured", "api_url", client.BaseURL(), "db_path", c.DBPath, "timeout", c.RequestTimeout)

	return &App{
		config:  c,
		auth:    auth,
		session: store,
		log:     log,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores the persisted session, then serves the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	unsubscribe := a.auth.Subscribe(func(st services.State) {
		a.log.Debug(ctx, "session state changed", "phase", st.Phase, "security_setup_done", st.SecuritySetupDone)
	})
	defer unsubscribe()

	if err := a.waitReady(ctx); err != nil {
		return err
	}

	a.navigate(ctx, a.startPath())
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// waitReady starts the session restore and shows the loading screen until
// it has finished.
func (a *App) waitReady(ctx context.Context) error {
	if st := a.auth.State(); st.IsLoading {
		a.render(ctx, a.resolve("/"))
	}

	go a.auth.Restore(ctx)

	select {
	case <-a.auth.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) startPath() string {
	st := a.auth.State()
	switch {
	case st.User == nil:
		return "/login"
	case !st.SecuritySetupDone:
		return "/security-setup"
	default:
		return "/"
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().User != nil
}

// getStatus is shown in the prompt: the signed-in user and current path.
func (a *App) getStatus() string {
	st := a.auth.State()
	if st.User == nil {
		return a.path
	}
	return fmt.Sprintf("%s %s", st.User.Username, a.path)
}

func (a *App) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "closing database failed", "error", err)
	}
}

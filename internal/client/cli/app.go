package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/deliveryio/internal/client/api"
	"github.com/dmitrijs2005/deliveryio/internal/client/config"
	"github.com/dmitrijs2005/deliveryio/internal/client/router"
	"github.com/dmitrijs2005/deliveryio/internal/client/services"
	"github.com/dmitrijs2005/deliveryio/internal/client/session"
	"github.com/dmitrijs2005/deliveryio/internal/client/storage"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
)

type App struct {
	config         *config.Config
	log            logging.Logger
	db             *sql.DB
	store          *session.Store
	authService    services.AuthService
	packageService services.PackageService
	router         *router.Router
	guard          *router.Guard
	reader         *bufio.Reader
	out            io.Writer
}

// NewApp opens the session database and wires the client together.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogFormat, c.LogLevel)

	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	httpClient := &http.Client{Timeout: c.RequestTimeout}
	return newApp(c, log, db, httpClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, db *sql.DB, httpClient *http.Client, in io.Reader, out io.Writer) *App {
	store := session.NewStore(storage.NewSessionRepository(db), log)
	apiClient := api.New(c.ServerBaseURL, httpClient, store.Token, log)
	auth := services.NewAuthService(apiClient, store, log)
	r := router.New(router.LocationHome)

	return &App{
		config:         c,
		log:            log,
		db:             db,
		store:          store,
		authService:    auth,
		packageService: services.NewPackageService(apiClient, store, log),
		router:         r,
		guard:          router.NewGuard(store, auth, r, log),
		reader:         bufio.NewReader(in),
		out:            out,
	}
}

// Run restores the session, starts the guard and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.start(ctx)
	a.println("Welcome to deliveryio (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) start(ctx context.Context) {
	a.guard.Start()
	a.store.Restore(ctx)
}

func (a *App) Close() {
	a.guard.Stop()
	if err := a.db.Close(); err != nil {
		a.log.Error(context.Background(), "failed to close database", "error", err)
	}
}

func (a *App) location() router.Location {
	return a.router.Location()
}

func (a *App) getStatus() string {
	user := "-"
	if st := a.store.Snapshot(); st.Session.Authenticated() {
		user = st.Session.User.Username
	}
	return fmt.Sprintf("%s %s", user, a.router.Location())
}

// requestContext bounds a single backend call by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := a.config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

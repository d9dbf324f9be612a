package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/eventbooking/internal/client/client"
	"github.com/dmitrijs2005/eventbooking/internal/client/config"
	"github.com/dmitrijs2005/eventbooking/internal/client/services"
	"github.com/dmitrijs2005/eventbooking/internal/client/session"
	"github.com/dmitrijs2005/eventbooking/internal/logging"
)

type App struct {
	config   *config.Config
	auth     services.AuthService
	events   services.EventService
	bookings services.BookingService
	reader   *bufio.Reader
	out      io.Writer
	log      logging.Logger
	db       *sql.DB

	mu           sync.Mutex
	location     string
	loginPending atomic.Bool
}

// NewApp opens the session store named by c.DatabasePath (in memory when
// empty), restores persisted cookies and builds the API services on top of
// one shared HTTPClient.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	a := &App{
		config:   c,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		log:      log.With("module", "cli"),
		location: client.LocationHome,
	}

	var store *session.Store
	if c.DatabasePath == "" {
		store = session.NewMemoryStore()
	} else {
		db, err := client.InitDatabase(ctx, c.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		a.db = db
		store = session.NewSQLiteStore(db)
	}

	jar, err := client.NewPersistentJar(ctx, store, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	api := client.NewHTTPClient(c.BaseURL, store,
		client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		client.WithCookieJar(jar),
		client.WithNavigator(a),
		client.WithLogger(log),
	)

	a.auth = services.NewAuthService(api, store)
	a.events = services.NewEventService(api)
	a.bookings = services.NewBookingService(api)
	return a, nil
}

// Close releases the session database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run starts the REPL and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintf(a.out, "Welcome to the event booking CLI, API at %s (type 'help' for commands)\n", a.config.BaseURL)
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}

func (a *App) getStatus(ctx context.Context) string {
	u, err := a.auth.CurrentUser(ctx)
	if err != nil || u == nil {
		return "(guest)"
	}
	if u.IsAdmin() {
		return fmt.Sprintf("(%s admin)", u.Username)
	}
	return fmt.Sprintf("(%s)", u.Username)
}

// CurrentLocation reports the location of the command being run.
func (a *App) CurrentLocation() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// RedirectToLogin marks the session as ended. The REPL asks for credentials
// before reading the next command.
func (a *App) RedirectToLogin(ctx context.Context) {
	a.loginPending.Store(true)
	a.log.Info(ctx, "login required", "location", a.CurrentLocation())
}

func (a *App) setLocation(loc string) {
	a.mu.Lock()
	a.location = loc
	a.mu.Unlock()
}

func (a *App) loginRequested() bool {
	return a.loginPending.Swap(false)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	u, err := a.auth.CurrentUser(ctx)
	return err == nil && u != nil
}

func (a *App) isAdmin(ctx context.Context) bool {
	ok, err := a.auth.IsAdmin(ctx)
	return err == nil && ok
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

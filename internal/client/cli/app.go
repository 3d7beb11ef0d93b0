package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/config"
	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/client/repositories/storage"
	"github.com/dmitrijs2005/favisend/internal/client/services"
	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/dmitrijs2005/favisend/internal/logging"
)

// App is the interactive favisend client: local storage, the API adapter
// and the services the REPL commands drive.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	store  storage.Store

	session    *services.SessionStore
	guest      *services.GuestVerification
	verifier   *services.PaymentVerifier
	downloader *services.Downloader
	purchases  *services.PurchaseService
	checkout   *services.CheckoutService

	reader *bufio.Reader
	out    io.Writer

	mu          sync.Mutex
	lastPayment services.PaymentAttempt
	listed      []models.Purchase
	unsubscribe func()
}

var _ execIface = (*App)(nil)

// NewApp opens the local database and wires the services against the API
// at c.BaseURL.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	db, err := client.InitDatabase(ctx, c.StorageDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "dsn", c.StorageDSN, "error", err)
		return nil, err
	}
	store := storage.NewSQLiteStore(db)

	api, err := client.NewHTTPClient(c.BaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithTokenSource(client.StoredToken(store)),
		client.WithLogger(log),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := newApp(c, log, api, store)
	a.db = db
	return a, nil
}

// newApp wires services around an existing API client and store.
func newApp(c *config.Config, log logging.Logger, api client.Client, store storage.Store) *App {
	session := services.NewSessionStore(api, store, log)
	a := &App{
		config:     c,
		log:        log,
		store:      store,
		session:    session,
		guest:      services.NewGuestVerification(api, store, log),
		verifier:   services.NewPaymentVerifier(api, c.PollAttempts, c.PollInterval, log),
		downloader: services.NewDownloader(&http.Client{}, c.DownloadDir, log),
		purchases:  services.NewPurchaseService(api, store, session, log),
		checkout:   services.NewCheckoutService(api, session, log),
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}

	// The cached purchase list belongs to whoever was logged in.
	a.unsubscribe = session.Subscribe(func(*models.User) {
		a.mu.Lock()
		a.listed = nil
		a.mu.Unlock()
	})
	return a
}

// Run restores the stored session and runs the REPL until the user exits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to favisend (type 'help' for commands)")

	a.session.CheckSession(ctx)
	if snap := a.session.Snapshot(); snap.Err != nil && errors.Is(snap.Err, common.ErrTokenExpired) {
		fmt.Fprintln(a.out, "Your session has expired, please log in again.")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the database. It is safe to call more than once.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

// guestEmail returns the email of a persisted guest verification, if any.
func (a *App) guestEmail(ctx context.Context) string {
	token, err := a.store.Get(ctx, common.StorageKeyAccessToken)
	if err != nil || token == "" {
		return ""
	}
	email, err := a.store.Get(ctx, common.StorageKeyUserEmail)
	if err != nil {
		return ""
	}
	return email
}

func (a *App) getStatus() string {
	if u := a.session.Snapshot().User; u != nil {
		return u.Name()
	}
	if email := a.guestEmail(context.Background()); email != "" {
		return "guest " + email
	}
	return "anonymous"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

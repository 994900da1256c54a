package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/amaumene/repertoire/internal/locale"
	"github.com/amaumene/repertoire/internal/metrics"
	"github.com/amaumene/repertoire/internal/models"
	"github.com/amaumene/repertoire/internal/services/repertoire"
	"github.com/amaumene/repertoire/internal/ui"
	"github.com/amaumene/repertoire/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Loading indicator safety timeouts
const (
	searchTimeout = 60 * time.Second
	deleteTimeout = 30 * time.Second
	saveTimeout   = 30 * time.Second
	loginTimeout  = 30 * time.Second
)

// ErrNotAuthenticated is returned when no session is stored
var ErrNotAuthenticated = errors.New("not authenticated")

// Repertoire is the remote API the controller drives
type Repertoire interface {
	Login(ctx context.Context, username, password string) (*models.Session, error)
	List(ctx context.Context, query string) ([]models.Entry, error)
	Create(ctx context.Context, form *models.EntryForm) (*models.Entry, error)
	Update(ctx context.Context, id int, form *models.EntryForm) (*models.Entry, error)
	Delete(ctx context.Context, id int) error
}

// failure messages with and without an HTTP status
type failure struct {
	withCode  string
	withError string
}

var (
	queryFailure  = failure{"Failed to query repertoire: code %d", "Failed to query repertoire: %v"}
	deleteFailure = failure{"Failed to delete entry: code %d", "Failed to delete entry: %v"}
	saveFailure   = failure{"Failed to save entry: code %d", "Failed to save entry: %v"}
	loginFailure  = failure{"Failed to sign in: code %d", "Failed to sign in: %v"}
)

// RepertoireController drives the repertoire screen: it loads the entry
// list and turns user actions into API calls, keeping the UI informed.
type RepertoireController struct {
	api      Repertoire
	sessions models.SessionStore
	view     ui.UI
	printer  *message.Printer
	metrics  *metrics.Collector
	logger   *logrus.Logger

	mu      sync.Mutex
	entries []models.Entry
	query   string
	// latest search token; responses for older tokens are dropped
	searchSeq uint64
}

// NewRepertoireController creates a new repertoire controller
func NewRepertoireController(api Repertoire, sessions models.SessionStore, view ui.UI, lang language.Tag, collector *metrics.Collector, logger *logrus.Logger) *RepertoireController {
	return &RepertoireController{
		api:      api,
		sessions: sessions,
		view:     view,
		printer:  locale.Printer(lang),
		metrics:  collector,
		logger:   logger,
	}
}

// Init loads the list for the signed-in user, or sends the user to the
// login route when no session is stored.
func (c *RepertoireController) Init(ctx context.Context) error {
	if _, err := c.RequireSession(); err != nil {
		return err
	}
	return c.Search(ctx, "")
}

// RequireSession returns the stored session, or sends the user to the login
// route and returns ErrNotAuthenticated.
func (c *RepertoireController) RequireSession() (*models.Session, error) {
	session, err := c.sessions.Get()
	if errors.Is(err, models.ErrNoSession) {
		c.logger.Info("No stored session, authentication required")
		c.view.NavigateRoot(ui.RouteLogin)
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	c.logger.WithField("username", session.Username).Debug("Session found")
	return session, nil
}

// Login signs in and moves to the repertoire route
func (c *RepertoireController) Login(ctx context.Context, username, password string) error {
	loading := c.view.ShowLoading(c.printer.Sprintf("Signing in..."), loginTimeout)
	_, err := c.api.Login(ctx, username, password)
	loading.Dismiss()

	if err != nil {
		c.logger.WithError(err).Error("Failed to sign in")
		c.view.Toast(c.failureMessage(loginFailure, err))
		return err
	}

	c.view.NavigateRoot(ui.RouteRepertoire)
	return nil
}

// Logout forgets the session and returns to the login route
func (c *RepertoireController) Logout() error {
	if err := c.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	c.mu.Lock()
	c.entries = nil
	c.query = ""
	c.searchSeq++
	c.mu.Unlock()

	c.view.NavigateRoot(ui.RouteLogin)
	return nil
}

// Search fetches the entries matching query and replaces the current list.
// If another search starts before this one answers, this answer is dropped.
func (c *RepertoireController) Search(ctx context.Context, query string) error {
	token := c.beginSearch(query)

	loading := c.view.ShowLoading(c.printer.Sprintf("Searching..."), searchTimeout)
	entries, err := c.api.List(ctx, query)
	loading.Dismiss()

	if err != nil {
		if !c.isLatest(token) {
			c.logger.WithError(err).Debug("Ignoring failure of a superseded search")
			return nil
		}
		c.logger.WithError(err).WithField("query", query).Error("Failed to query repertoire")
		c.view.Toast(c.failureMessage(queryFailure, err))
		c.redirectIfUnauthorized(err)
		return err
	}

	ranked := utils.RankByName(entries, query)
	if !c.applySearch(token, ranked) {
		c.logger.WithField("query", query).Debug("Discarding stale search response")
		return nil
	}

	c.logger.WithFields(logrus.Fields{
		"query": query,
		"count": len(ranked),
	}).Info("Repertoire loaded")
	return nil
}

// Refresh repeats the last search
func (c *RepertoireController) Refresh(ctx context.Context) error {
	return c.Search(ctx, c.Query())
}

// Delete removes an entry. The list is cleared and fetched again whatever
// the outcome.
func (c *RepertoireController) Delete(ctx context.Context, id int) error {
	loading := c.view.ShowLoading(c.printer.Sprintf("Deleting..."), deleteTimeout)
	err := c.api.Delete(ctx, id)
	loading.Dismiss()

	if err != nil {
		c.logger.WithError(err).WithField("id", id).Error("Failed to delete entry")
		c.view.Toast(c.failureMessage(deleteFailure, err))
		c.redirectIfUnauthorized(err)
	}

	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()

	if searchErr := c.Refresh(ctx); searchErr != nil && err == nil {
		return searchErr
	}
	return err
}

// Create validates and submits a new entry, then fetches the list again
func (c *RepertoireController) Create(ctx context.Context, form *models.EntryForm) (*models.Entry, error) {
	if err := form.ValidateCreate(); err != nil {
		c.view.Toast(c.printer.Sprintf("Invalid entry: %v", err))
		return nil, err
	}
	return c.save(ctx, func() (*models.Entry, error) {
		return c.api.Create(ctx, form)
	})
}

// Edit validates and submits the set fields of form for entry id, then
// fetches the list again
func (c *RepertoireController) Edit(ctx context.Context, id int, form *models.EntryForm) (*models.Entry, error) {
	if err := form.Validate(); err != nil {
		c.view.Toast(c.printer.Sprintf("Invalid entry: %v", err))
		return nil, err
	}
	return c.save(ctx, func() (*models.Entry, error) {
		return c.api.Update(ctx, id, form)
	})
}

func (c *RepertoireController) save(ctx context.Context, submit func() (*models.Entry, error)) (*models.Entry, error) {
	loading := c.view.ShowLoading(c.printer.Sprintf("Saving..."), saveTimeout)
	entry, err := submit()
	loading.Dismiss()

	if err != nil {
		c.logger.WithError(err).Error("Failed to save entry")
		c.view.Toast(c.failureMessage(saveFailure, err))
		c.redirectIfUnauthorized(err)
		return nil, err
	}

	if err := c.Refresh(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}

// Entries returns a copy of the current list
func (c *RepertoireController) Entries() []models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Query returns the query of the latest search
func (c *RepertoireController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *RepertoireController) beginSearch(query string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchSeq++
	c.query = query
	return c.searchSeq
}

func (c *RepertoireController) isLatest(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return token == c.searchSeq
}

func (c *RepertoireController) applySearch(token uint64, entries []models.Entry) bool {
	c.mu.Lock()
	if token != c.searchSeq {
		c.mu.Unlock()
		return false
	}
	c.entries = entries
	c.mu.Unlock()

	byKind := make(map[string]int)
	for _, e := range entries {
		byKind[string(e.Kind)]++
	}
	c.metrics.SetEntries(byKind)
	return true
}

func (c *RepertoireController) failureMessage(f failure, err error) string {
	if code, ok := repertoire.StatusCode(err); ok {
		return c.printer.Sprintf(f.withCode, code)
	}
	return c.printer.Sprintf(f.withError, err)
}

// redirectIfUnauthorized sends the user to the login route when the token
// is missing or rejected.
func (c *RepertoireController) redirectIfUnauthorized(err error) {
	code, _ := repertoire.StatusCode(err)
	if errors.Is(err, repertoire.ErrNotAuthenticated) || code == http.StatusUnauthorized {
		c.view.NavigateRoot(ui.RouteLogin)
	}
}

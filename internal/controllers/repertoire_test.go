package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/amaumene/repertoire/internal/metrics"
	"github.com/amaumene/repertoire/internal/models"
	"github.com/amaumene/repertoire/internal/services/repertoire"
	"github.com/amaumene/repertoire/internal/ui"
)

// fakeUI records every UI call
type fakeUI struct {
	mu       sync.Mutex
	loadings []string
	open     int
	toasts   []string
	routes   []string
}

type fakeLoading struct {
	ui   *fakeUI
	once sync.Once
}

func (l *fakeLoading) Dismiss() {
	l.once.Do(func() {
		l.ui.mu.Lock()
		l.ui.open--
		l.ui.mu.Unlock()
	})
}

func (f *fakeUI) ShowLoading(message string, timeout time.Duration) ui.Loading {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadings = append(f.loadings, message)
	f.open++
	return &fakeLoading{ui: f}
}

func (f *fakeUI) Toast(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, message)
}

func (f *fakeUI) NavigateRoot(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route)
}

func (f *fakeUI) openLoadings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// fakeAPI answers from in-memory data
type fakeAPI struct {
	mu        sync.Mutex
	entries   []models.Entry
	listErr   error
	deleteErr error
	saveErr   error
	listCalls []string
	deleted   []int
	updated   map[int]*models.EntryForm
	created   []*models.EntryForm

	// block, when set for a query, holds List until it is closed
	block map[string]chan struct{}
}

func (a *fakeAPI) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if password != "secret" {
		return nil, &repertoire.StatusError{Op: "login", StatusCode: http.StatusBadRequest}
	}
	return &models.Session{Username: username, Token: "tok"}, nil
}

func (a *fakeAPI) List(ctx context.Context, query string) ([]models.Entry, error) {
	a.mu.Lock()
	a.listCalls = append(a.listCalls, query)
	wait := a.block[query]
	err := a.listErr
	out := make([]models.Entry, len(a.entries))
	copy(out, a.entries)
	a.mu.Unlock()

	if wait != nil {
		<-wait
	}
	if err != nil {
		return nil, err
	}
	if query != "" {
		filtered := out[:0]
		for _, e := range out {
			if e.Name == query || e.Review == query {
				filtered = append(filtered, e)
			}
		}
		out = filtered
	}
	return out, nil
}

func (a *fakeAPI) Create(ctx context.Context, form *models.EntryForm) (*models.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveErr != nil {
		return nil, a.saveErr
	}
	a.created = append(a.created, form)
	e := models.Entry{ID: len(a.entries) + 100, Name: *form.Name}
	a.entries = append(a.entries, e)
	return &e, nil
}

func (a *fakeAPI) Update(ctx context.Context, id int, form *models.EntryForm) (*models.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveErr != nil {
		return nil, a.saveErr
	}
	if a.updated == nil {
		a.updated = make(map[int]*models.EntryForm)
	}
	a.updated[id] = form
	for i := range a.entries {
		if a.entries[i].ID == id && form.Name != nil {
			a.entries[i].Name = *form.Name
			return &a.entries[i], nil
		}
	}
	return &models.Entry{ID: id}, nil
}

func (a *fakeAPI) Delete(ctx context.Context, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deleted = append(a.deleted, id)
	kept := a.entries[:0]
	for _, e := range a.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	a.entries = kept
	return nil
}

func newTestController(t *testing.T, api *fakeAPI, signedIn bool) (*RepertoireController, *fakeUI, models.SessionStore) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sessions := models.NewMemorySessionStore()
	if signedIn {
		require.NoError(t, sessions.Set(&models.Session{Username: "ana", Token: "tok"}))
	}

	view := &fakeUI{}
	ctrl := NewRepertoireController(api, sessions, view, language.English, metrics.NewCollector(), logger)
	return ctrl, view, sessions
}

func sampleEntries() []models.Entry {
	season := 3
	return []models.Entry{
		{ID: 1, Name: "Interstellar", Kind: models.KindMovie},
		{ID: 2, Name: "Dark", Kind: models.KindSeries, Season: &season},
		{ID: 3, Name: "Heat", Kind: models.KindMovie},
	}
}

func TestInitWithoutSessionNavigatesToLogin(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries()}
	ctrl, view, _ := newTestController(t, api, false)

	err := ctrl.Init(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, []string{ui.RouteLogin}, view.routes)
	assert.Empty(t, api.listCalls)
	assert.Empty(t, view.loadings)
}

func TestInitLoadsEntries(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries()}
	ctrl, view, _ := newTestController(t, api, true)

	require.NoError(t, ctrl.Init(context.Background()))
	assert.Len(t, ctrl.Entries(), 3)
	assert.Equal(t, []string{"Searching..."}, view.loadings)
	assert.Equal(t, 0, view.openLoadings())
	assert.Empty(t, view.toasts)
}

func TestSearchFailureShowsStatusCode(t *testing.T) {
	api := &fakeAPI{listErr: &repertoire.StatusError{Op: "list", StatusCode: http.StatusInternalServerError}}
	ctrl, view, _ := newTestController(t, api, true)

	err := ctrl.Search(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to query repertoire: code 500"}, view.toasts)
	assert.Equal(t, 0, view.openLoadings())
	assert.Empty(t, view.routes)
}

func TestSearchTransportErrorShowsMessage(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("connection refused")}
	ctrl, view, _ := newTestController(t, api, true)

	require.Error(t, ctrl.Search(context.Background(), ""))
	require.Len(t, view.toasts, 1)
	assert.Equal(t, "Failed to query repertoire: connection refused", view.toasts[0])
	assert.Equal(t, 0, view.openLoadings())
}

func TestSearchUnauthorizedNavigatesToLogin(t *testing.T) {
	api := &fakeAPI{listErr: &repertoire.StatusError{Op: "list", StatusCode: http.StatusUnauthorized}}
	ctrl, view, _ := newTestController(t, api, true)

	require.Error(t, ctrl.Search(context.Background(), ""))
	assert.Equal(t, []string{ui.RouteLogin}, view.routes)
}

func TestSearchFailureKeepsPreviousList(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries()}
	ctrl, _, _ := newTestController(t, api, true)
	require.NoError(t, ctrl.Search(context.Background(), ""))

	api.mu.Lock()
	api.listErr = errors.New("timeout")
	api.mu.Unlock()

	require.Error(t, ctrl.Search(context.Background(), "Dark"))
	assert.Len(t, ctrl.Entries(), 3)
}

func TestStaleSearchResponseIsDropped(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		entries: sampleEntries(),
		block:   map[string]chan struct{}{"Heat": release},
	}
	ctrl, view, _ := newTestController(t, api, true)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Search(context.Background(), "Heat")
	}()

	// wait for the slow search to be in flight
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.listCalls) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, ctrl.Search(context.Background(), "Dark"))
	close(release)
	require.NoError(t, <-done)

	entries := ctrl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Dark", entries[0].Name)
	assert.Equal(t, "Dark", ctrl.Query())
	assert.Equal(t, 0, view.openLoadings())
}

func TestDeleteRefetches(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries()}
	ctrl, view, _ := newTestController(t, api, true)
	require.NoError(t, ctrl.Init(context.Background()))

	require.NoError(t, ctrl.Delete(context.Background(), 2))
	assert.Equal(t, []int{2}, api.deleted)
	assert.Len(t, ctrl.Entries(), 2)
	assert.Equal(t, []string{"Searching...", "Deleting...", "Searching..."}, view.loadings)
	assert.Equal(t, 0, view.openLoadings())
}

func TestDeleteFailureStillRefetches(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries(), deleteErr: &repertoire.StatusError{Op: "delete", StatusCode: http.StatusNotFound}}
	ctrl, view, _ := newTestController(t, api, true)

	err := ctrl.Delete(context.Background(), 42)
	code, ok := repertoire.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)

	assert.Equal(t, []string{"Failed to delete entry: code 404"}, view.toasts)
	assert.Equal(t, []string{""}, api.listCalls)
	assert.Len(t, ctrl.Entries(), 3)
	assert.Equal(t, 0, view.openLoadings())
}

func TestEditValidatesBeforeSubmitting(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries()}
	ctrl, view, _ := newTestController(t, api, true)

	rating := 11
	_, err := ctrl.Edit(context.Background(), 1, &models.EntryForm{Rating: &rating})
	require.Error(t, err)

	var fe *models.FormError
	require.True(t, errors.As(err, &fe))
	assert.Nil(t, api.updated)
	require.Len(t, view.toasts, 1)
	assert.Contains(t, view.toasts[0], "Invalid entry")
	assert.Empty(t, view.loadings)
}

func TestEditSubmitsAndRefetches(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries()}
	ctrl, view, _ := newTestController(t, api, true)

	name := "Heat (1995)"
	entry, err := ctrl.Edit(context.Background(), 3, &models.EntryForm{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Heat (1995)", entry.Name)
	assert.Contains(t, api.updated, 3)
	assert.Equal(t, []string{"Saving...", "Searching..."}, view.loadings)

	var names []string
	for _, e := range ctrl.Entries() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "Heat (1995)")
}

func TestCreateFailureShowsToast(t *testing.T) {
	api := &fakeAPI{saveErr: &repertoire.StatusError{Op: "create", StatusCode: http.StatusBadRequest}}
	ctrl, view, _ := newTestController(t, api, true)

	name, date, review, rating := "Dune", "2025-01-01", "", 4
	_, err := ctrl.Create(context.Background(), &models.EntryForm{Name: &name, Date: &date, Review: &review, Rating: &rating})
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to save entry: code 400"}, view.toasts)
	assert.Empty(t, api.listCalls)
	assert.Equal(t, 0, view.openLoadings())
}

func TestLoginAndLogout(t *testing.T) {
	api := &fakeAPI{entries: sampleEntries()}
	ctrl, view, sessions := newTestController(t, api, false)

	err := ctrl.Login(context.Background(), "ana", "wrong")
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to sign in: code 400"}, view.toasts)

	require.NoError(t, ctrl.Login(context.Background(), "ana", "secret"))
	assert.Equal(t, []string{ui.RouteRepertoire}, view.routes)

	require.NoError(t, sessions.Set(&models.Session{Token: "tok"}))
	require.NoError(t, ctrl.Search(context.Background(), ""))
	require.NotEmpty(t, ctrl.Entries())

	require.NoError(t, ctrl.Logout())
	assert.Empty(t, ctrl.Entries())
	assert.Equal(t, ui.RouteLogin, view.routes[len(view.routes)-1])
	_, err = sessions.Get()
	assert.ErrorIs(t, err, models.ErrNoSession)
}

func TestToastsAreLocalised(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sessions := models.NewMemorySessionStore()
	require.NoError(t, sessions.Set(&models.Session{Token: "tok"}))

	api := &fakeAPI{listErr: &repertoire.StatusError{Op: "list", StatusCode: http.StatusBadGateway}}
	view := &fakeUI{}
	ctrl := NewRepertoireController(api, sessions, view, language.BrazilianPortuguese, nil, logger)

	require.Error(t, ctrl.Search(context.Background(), ""))
	assert.Equal(t, []string{"Pesquisando..."}, view.loadings)
	assert.Equal(t, []string{"Falha ao consultar repertórios: código 502"}, view.toasts)
}

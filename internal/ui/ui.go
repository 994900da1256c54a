// Package ui defines the presentation capabilities the controllers rely on
// and a terminal implementation of them.
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Routes used with NavigateRoot
const (
	RouteLogin      = "/login"
	RouteRepertoire = "/repertoire"
)

// Loading is a presented loading indicator
type Loading interface {
	Dismiss()
}

// UI is the narrow presentation surface: a blocking loading indicator, a
// short-lived toast and root navigation that replaces history.
type UI interface {
	ShowLoading(message string, timeout time.Duration) Loading
	Toast(message string)
	NavigateRoot(route string)
}

// Terminal renders UI calls as lines on a writer
type Terminal struct {
	out    io.Writer
	logger *logrus.Logger

	mu    sync.Mutex
	route string
}

// NewTerminal creates a terminal UI writing to out
func NewTerminal(out io.Writer, logger *logrus.Logger) *Terminal {
	return &Terminal{out: out, logger: logger}
}

// ShowLoading prints the message and returns an indicator that dismisses
// itself after timeout.
func (t *Terminal) ShowLoading(message string, timeout time.Duration) Loading {
	t.println(message)
	l := &terminalLoading{message: message, logger: t.logger}
	if timeout > 0 {
		l.mu.Lock()
		l.timer = time.AfterFunc(timeout, func() {
			t.logger.WithField("message", message).Warn("Loading indicator timed out")
			l.Dismiss()
		})
		l.mu.Unlock()
	}
	return l
}

// Toast prints a message
func (t *Terminal) Toast(message string) {
	t.println(message)
}

// NavigateRoot records the current route
func (t *Terminal) NavigateRoot(route string) {
	t.mu.Lock()
	t.route = route
	t.mu.Unlock()

	t.logger.WithField("route", route).Debug("Navigated")
	if route == RouteLogin {
		t.println("Not signed in. Run `repertoire login` first.")
	}
}

// Route returns the last route navigated to
func (t *Terminal) Route() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route
}

func (t *Terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

type terminalLoading struct {
	message string
	logger  *logrus.Logger
	once    sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

func (l *terminalLoading) Dismiss() {
	l.once.Do(func() {
		l.mu.Lock()
		if l.timer != nil {
			l.timer.Stop()
		}
		l.mu.Unlock()
		l.logger.WithField("message", l.message).Debug("Loading dismissed")
	})
}

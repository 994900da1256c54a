package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/amaumene/repertoire/internal/api"
	"github.com/amaumene/repertoire/internal/duration"
	"github.com/amaumene/repertoire/internal/models"
	"github.com/amaumene/repertoire/internal/scheduler"
	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if password == "" {
				p, err := readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			if err := a.ctrl.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.ctrl.Logout()
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List entries, optionally filtered by a search query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			if _, err := a.ctrl.RequireSession(); err != nil {
				return err
			}
			if err := a.ctrl.Search(cmd.Context(), query); err != nil {
				return err
			}
			return writeEntries(a.out, a.ctrl.Entries(), a.lang, a.output)
		},
	}
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.setup(); err != nil {
				return err
			}
			if _, err := a.ctrl.RequireSession(); err != nil {
				return err
			}
			entry, err := a.client.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeEntry(a.out, entry, a.lang, a.output)
		},
	}
}

// formFlags binds the entry form to command flags
type formFlags struct {
	name, date, review, kind, duration string
	rating, season                     int
	clearDuration, clearSeason         bool
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "title")
	cmd.Flags().StringVar(&f.date, "date", "", "date watched (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.rating, "rating", 0, "stars, 0 to 5")
	cmd.Flags().StringVar(&f.review, "review", "", "short review")
	cmd.Flags().StringVar(&f.kind, "kind", "", "movie, series or other")
	cmd.Flags().StringVar(&f.duration, "duration", "", "runtime as HH:MM")
	cmd.Flags().IntVar(&f.season, "season", 0, "season number (series)")
	cmd.Flags().BoolVar(&f.clearDuration, "clear-duration", false, "remove the duration")
	cmd.Flags().BoolVar(&f.clearSeason, "clear-season", false, "remove the season")
}

// form builds an EntryForm holding only the flags given on the command line
func (f *formFlags) form(cmd *cobra.Command) (*models.EntryForm, error) {
	return f.apply(cmd, &models.EntryForm{})
}

// apply overwrites the fields of base that were given on the command line
func (f *formFlags) apply(cmd *cobra.Command, base *models.EntryForm) (*models.EntryForm, error) {
	changed := cmd.Flags().Changed
	form := *base
	form.ClearDuration = f.clearDuration
	form.ClearSeason = f.clearSeason

	if changed("name") {
		form.Name = &f.name
	}
	if changed("date") {
		form.Date = &f.date
	}
	if changed("rating") {
		form.Rating = &f.rating
	}
	if changed("review") {
		form.Review = &f.review
	}
	if changed("kind") {
		kind, ok := models.ParseKind(f.kind)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q, use movie, series or other", f.kind)
		}
		form.Kind = &kind
	}
	if changed("duration") {
		form.Duration = &f.duration
	}
	if changed("season") {
		form.Season = &f.season
	}
	if form.ClearDuration {
		form.Duration = nil
	}
	if form.ClearSeason {
		form.Season = nil
	}
	return &form, nil
}

func newCreateCommand(a *app) *cobra.Command {
	var (
		flags formFlags
		from  int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an entry",
		Long: `Add an entry. With --from, the fields of an existing entry are copied
first and the other flags override them, e.g. to log the next season.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if _, err := a.ctrl.RequireSession(); err != nil {
				return err
			}

			base := &models.EntryForm{}
			if cmd.Flags().Changed("from") {
				source, err := a.client.Get(cmd.Context(), from)
				if err != nil {
					return err
				}
				base = models.FormFromEntry(source)
			}

			form, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			// same defaults as a new entry: today, movie
			defaults := models.NewEntry(models.Entry{})
			if form.Date == nil {
				form.Date = &defaults.Date
			}
			if form.Kind == nil {
				form.Kind = &defaults.Kind
			}

			entry, err := a.ctrl.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			return writeEntry(a.out, entry, a.lang, a.output)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&from, "from", 0, "copy the fields of an existing entry")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var flags formFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			form, err := flags.form(cmd)
			if err != nil {
				return err
			}

			if err := a.setup(); err != nil {
				return err
			}
			if _, err := a.ctrl.RequireSession(); err != nil {
				return err
			}
			entry, err := a.ctrl.Edit(cmd.Context(), id, form)
			if err != nil {
				return err
			}
			return writeEntry(a.out, entry, a.lang, a.output)
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.setup(); err != nil {
				return err
			}
			if _, err := a.ctrl.RequireSession(); err != nil {
				return err
			}
			if err := a.ctrl.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return writeEntries(a.out, a.ctrl.Entries(), a.lang, a.output)
		},
	}
}

func newWatchCommand(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the list fresh and serve health, status and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.watch(cmd.Context(), query)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "search query to keep refreshing")
	return cmd
}

func (a *app) watch(ctx context.Context, query string) error {
	a.logger.Info("Starting repertoire watch")

	if _, err := a.ctrl.RequireSession(); err != nil {
		return err
	}
	if err := a.ctrl.Search(ctx, query); err != nil {
		a.logger.WithError(err).Warn("Initial search failed, will retry on schedule")
	}

	// 1. Scheduler
	sched := scheduler.NewScheduler(a.cfg.RefreshSchedule, a.ctrl, a.cfg.HTTPTimeout, a.metrics, a.logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 2. HTTP server
	server := api.NewServer(a.cfg, a.ctrl, a.sessions, a.metrics, a.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start shuts the server down itself once ctx is done
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	// 3. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	a.logger.WithField("next_refresh", sched.Next().Format(time.RFC3339)).Info("Repertoire watch is running")

	select {
	case err := <-serverDone:
		if err != nil {
			return err
		}
	case sig := <-sigChan:
		a.logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		a.waitServer(serverDone)
	case <-ctx.Done():
		a.logger.Info("Context cancelled")
		a.waitServer(serverDone)
	}

	a.logger.Info("Repertoire watch stopped")
	return nil
}

func (a *app) waitServer(done <-chan error) {
	if err := <-done; err != nil {
		a.logger.WithError(err).Error("Error during server shutdown")
	}
}

func newFormatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "format <value>...",
		Short: "Render durations the way the list shows them",
		Example: `  repertoire format PT1H30M 5400 01:30:00 45:00
  1:30
  1:30
  1:30
  45:00`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				fmt.Fprintln(a.out, duration.Format(arg))
			}
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/amaumene/repertoire/internal/config"
	"github.com/amaumene/repertoire/internal/controllers"
	"github.com/amaumene/repertoire/internal/locale"
	"github.com/amaumene/repertoire/internal/metrics"
	"github.com/amaumene/repertoire/internal/models"
	"github.com/amaumene/repertoire/internal/services/repertoire"
	"github.com/amaumene/repertoire/internal/ui"
	"github.com/amaumene/repertoire/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out, status io.Writer) error {
	a := &app{out: out, status: status}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(out)
	defer a.close()
	return root.ExecuteContext(context.Background())
}

// app holds the wired dependencies shared by all commands
type app struct {
	out       io.Writer // command output
	status    io.Writer // loading indicators and toasts
	ephemeral bool
	output    string

	cfg      *config.Config
	logger   *logrus.Logger
	db       *models.Database
	sessions models.SessionStore
	metrics  *metrics.Collector
	client   *repertoire.Client
	view     *ui.Terminal
	ctrl     *controllers.RepertoireController
	lang     language.Tag
}

// setup loads the configuration and wires the dependencies
func (a *app) setup() error {
	if a.ctrl != nil {
		return nil
	}

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	// 2. Setup logger
	a.logger = utils.NewLogger(cfg.LogLevel)
	a.logger.WithField("config_dir", cfg.ConfigDir).Debug("Configuration loaded")

	// 3. Open the session store
	if a.ephemeral {
		a.sessions = models.NewMemorySessionStore()
		a.logger.Debug("Using in-memory session store")
	} else {
		db, err := models.NewDatabase(cfg.DatabaseFile)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = db
		a.sessions = db
		a.logger.Debug("Database initialized")
	}

	// 4. Initialize services
	a.metrics = metrics.NewCollector()
	client, err := repertoire.NewClient(cfg, a.sessions, a.metrics, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize repertoire client: %w", err)
	}
	a.client = client
	a.logger.WithField("url", client.BaseURL()).Debug("Repertoire client initialized")

	// 5. Initialize controller
	a.lang = locale.Parse(cfg.Language)
	a.view = ui.NewTerminal(a.status, a.logger)
	a.ctrl = controllers.NewRepertoireController(client, a.sessions, a.view, a.lang, a.metrics, a.logger)

	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil && a.logger != nil {
		a.logger.WithError(err).Warn("Failed to close database")
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "repertoire",
		Short:         "Keep track of the movies and series you watched",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep the session in memory only")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "output format: table, json or yaml")

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newCreateCommand(a),
		newEditCommand(a),
		newDeleteCommand(a),
		newWatchCommand(a),
		newFormatCommand(a),
	)
	return root
}

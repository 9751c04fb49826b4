// Package commands builds the wayfarer command tree. Each command drives
// the same session, fetch and view layers an interactive screen would.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/config"
	"github.com/hongminglow/wayfarer/internal/localstore"
	"github.com/hongminglow/wayfarer/internal/session"
	"github.com/hongminglow/wayfarer/internal/view"
)

// App carries the long-lived state shared by every command.
type App struct {
	Ctx      context.Context
	Config   config.Client
	Logger   *slog.Logger
	Local    localstore.Store
	Sessions *session.Context
	Client   *api.Client
	Prompter *cli.Prompter
	In       io.Reader
	Out      io.Writer
}

// Options configures NewApp.
type Options struct {
	Config config.Client
	Logger *slog.Logger
	// Local overrides the on-disk store under Config.Home.
	Local localstore.Store
	In    io.Reader
	Out   io.Writer
	// Prompts receives prompts; defaults to Out.
	Prompts io.Writer
}

// NewApp restores the persisted session and builds the API client.
func NewApp(ctx context.Context, options Options) (*App, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	local := options.Local
	if local == nil {
		local = localstore.NewDirStore(options.Config.Home)
	}
	prompts := options.Prompts
	if prompts == nil {
		prompts = options.Out
	}

	sessions := session.NewContext(session.NewStore(local, logger))
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: options.Config.APIURL,
		Tokens:  sessions,
		Timeout: options.Config.HTTPTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Ctx:      ctx,
		Config:   options.Config,
		Logger:   logger,
		Local:    local,
		Sessions: sessions,
		Client:   client,
		Prompter: cli.NewPrompter(options.In, prompts),
		In:       options.In,
		Out:      options.Out,
	}, nil
}

func (a *App) printer() cli.Printer {
	return cli.Printer{W: a.Out, Styles: cli.NewStyles(session.LoadTheme(a.Local))}
}

// fail prints err inline. The returned ExitError keeps main from printing
// it a second time. A declined confirmation is not a failure.
func (a *App) fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, view.ErrCancelled) {
		a.printer().Muted("%s", view.Describe(err, fallback))
		return nil
	}
	a.Logger.Debug("command failed", "error", err)
	a.printer().Error(view.Describe(err, fallback))
	return &cli.ExitError{Code: 1}
}

// report prints a message from a controller snapshot and fails the command.
func (a *App) report(message string) error {
	a.printer().Error(message)
	return &cli.ExitError{Code: 1}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return errors.New("usage: " + usage)
	}
	return nil
}

// confirm asks on the prompter unless yes was given.
func (a *App) confirm(yes bool) view.Confirm {
	return func(prompt string) bool {
		if yes {
			return true
		}
		return a.Prompter.Confirm(prompt)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/commands"
	"github.com/hongminglow/wayfarer/internal/config"
)

func main() {
	if err := run(); err != nil {
		if code, ok := exitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env may set the log level; report the load once the logger exists.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cli.NewLogger(cfg.LogLevel)
	reportLocalEnv(logger, envErr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := commands.NewApp(ctx, commands.Options{
		Config:  cfg,
		Logger:  logger,
		In:      os.Stdin,
		Out:     os.Stdout,
		Prompts: os.Stderr,
	})
	if err != nil {
		return err
	}
	return commands.Root(app).Execute(os.Args[1:])
}

func reportLocalEnv(logger *slog.Logger, err error) {
	switch {
	case err == nil:
		logger.Debug("loaded .env")
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("no .env file found; relying on existing environment")
	default:
		logger.Warn("could not read .env", "error", err)
	}
}

// exitCode reports the status a command asked to exit with, if any.
func exitCode(err error) (int, bool) {
	var exit *cli.ExitError
	if errors.As(err, &exit) {
		return exit.Code, true
	}
	return 0, false
}

// Command sweetshop is the interactive terminal client for the sweet shop
// inventory backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/sweetshop/internal/application/session"
	"github.com/jhoicas/sweetshop/internal/application/view"
	"github.com/jhoicas/sweetshop/internal/infrastructure/rest"
	"github.com/jhoicas/sweetshop/internal/infrastructure/sqlite"
	"github.com/jhoicas/sweetshop/internal/interfaces/cli"
	"github.com/jhoicas/sweetshop/pkg/config"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sweetshop:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Logs go to stderr so they never interleave with the shell output.
	log := logger.NewWriter(os.Stderr, cfg.App.LogLevel)

	storage, err := sqlite.Open(cfg.Client.SessionDBPath)
	if err != nil {
		return fmt.Errorf("opening session storage: %w", err)
	}
	defer storage.Close()

	// The client reads the token through the session store, never from
	// storage directly; the closure breaks the construction cycle between
	// the two.
	var sess *session.Store
	client := rest.NewClient(cfg.Client.BaseURL, rest.TokenSourceFunc(func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	}), log)
	sess = session.New(client, storage, log)
	ctrl := view.New(sess, client, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess.Restore(ctx)

	return cli.New(sess, ctrl, os.Stdin, os.Stdout).Run(ctx)
}

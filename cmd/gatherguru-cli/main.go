// Command gatherguru-cli is a terminal client for the GatherGuru API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"gatherguru/internal/logger"
	"gatherguru/pkg/authstate"
	"gatherguru/pkg/client"
	"gatherguru/pkg/preferences"
	"gatherguru/pkg/storage"
)

const defaultAPIURL = "http://localhost:8082"

// app is the state every command works on, loaded once before the command runs.
type app struct {
	out    io.Writer
	store  *authstate.Store
	prefs  *preferences.Preferences
	client *client.Client
	nav    *terminalNav
}

// terminalNav has no pages to move between; a forced logout is reported to the user instead.
type terminalNav struct {
	out io.Writer
}

func (terminalNav) Path() string { return "" }

func (n terminalNav) Navigate(path string) {
	fmt.Fprintf(n.out, "session ended, sign in again (%s)\n", path)
}

func homeDir() (string, error) {
	if dir := os.Getenv("GATHERGURU_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gatherguru"), nil
}

func load(out io.Writer, log *slog.Logger) (*app, error) {
	dir, err := homeDir()
	if err != nil {
		return nil, fmt.Errorf("locate home: %w", err)
	}
	local, err := storage.NewLocalStore(filepath.Join(dir, "local.json"))
	if err != nil {
		return nil, err
	}
	cookies, err := storage.NewCookieStore(filepath.Join(dir, "cookies.json"))
	if err != nil {
		return nil, err
	}

	apiURL := os.Getenv("GATHERGURU_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	a := &app{
		out:   out,
		store: authstate.New(storage.NewTokenStore(local, cookies), authstate.WithLogger(log)),
		prefs: preferences.New(local),
		nav:   &terminalNav{out: out},
	}
	a.client = client.New(apiURL, a.store,
		client.WithNavigator(a.nav),
		client.WithPreferences(a.prefs),
		client.WithLogger(log),
	)
	return a, nil
}

func newRootCmd() *cobra.Command {
	var (
		a        *app
		logLevel string
	)
	root := &cobra.Command{
		Use:           "gatherguru-cli",
		Short:         "Browse events, book tickets and pay from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := load(cmd.OutOrStdout(), logger.New(cmd.ErrOrStderr(), logLevel))
			if err != nil {
				return err
			}
			a = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	get := func() *app { return a }
	root.AddCommand(
		loginCmd(get),
		logoutCmd(get),
		whoamiCmd(get),
		dashboardCmd(get),
		eventsCmd(get),
		bookCmd(get),
		bookingsCmd(get),
		cancelCmd(get),
		payCmd(get),
		textSizeCmd(get),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var status *client.AccountStatusError
		if errors.As(err, &status) {
			fmt.Fprintf(os.Stderr, "account %s: %s\n", status.Status, status.Message)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// Package main provides the backoffice command-line client: it signs in
// against the back-office API, keeps the session fresh and follows the
// notification stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "backoffice"
)

// exitCode ends the process with a status after the command already
// reported the outcome to the user.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()

	var code exitCode
	switch {
	case err == nil:
	case errors.As(err, &code):
		os.Exit(int(code))
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Back-office session client",
		Long: `backoffice signs in to the back-office API and keeps the session
alive between invocations. Tokens are kept in the configured session
store (file, sqlite, redis or memory).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.apiURL, "api-url", "", "API base URL (overrides BACKOFFICE_API_URL)")
	pf.StringVar(&f.store, "store", "", "Session store: file, sqlite, redis, memory")
	pf.StringVar(&f.storePath, "store-path", "", "Session file or database path")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		loginCmd(&f),
		logoutCmd(&f),
		whoamiCmd(&f),
		canCmd(&f),
		refreshCmd(&f),
		watchCmd(&f),
		langCmd(&f),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// withApp wires the client for a command and releases it afterwards.
func withApp(f *flags, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(*f)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

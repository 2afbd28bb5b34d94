package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/backoffice/core/guard"
	"github.com/dmitrymomot/backoffice/core/i18n"
	"github.com/dmitrymomot/backoffice/core/logger"
	"github.com/dmitrymomot/backoffice/core/notify"
	"github.com/dmitrymomot/backoffice/core/session"
)

func loginCmd(f *flags) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			tr := a.translator(ctx)

			if reason, ok := a.session.ConsumeLogoutMessage(); ok {
				fmt.Fprintln(a.stderr, tr.LogoutMessage(reason))
			}

			if password == "" {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = p
			}

			err := a.session.LoginWithCredentials(ctx, username, password)
			switch {
			case err == nil:
				fmt.Fprintln(a.stdout, tr.T("auth.login.success", i18n.M{"name": a.session.DisplayName()}))
				return nil
			case errors.Is(err, session.ErrInvalidCredentials):
				fmt.Fprintln(a.stderr, tr.T(i18n.KeyInvalidCredentials))
				return exitCode(1)
			case errors.Is(err, session.ErrTransportUnreachable):
				fmt.Fprintln(a.stderr, tr.T(i18n.KeyUnreachable))
				return exitCode(1)
			default:
				return err
			}
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

func logoutCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			a.session.Logout(ctx, "")
			fmt.Fprintln(a.stdout, a.translator(ctx).T("auth.logged_out"))
			return nil
		}),
	}
}

func whoamiCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			if a.guard.Check(ctx) == guard.DecisionLogin {
				fmt.Fprintln(a.stderr, a.translator(ctx).T("auth.not_authenticated"))
				return exitCode(1)
			}

			st := a.session.State()
			fmt.Fprintf(a.stdout, "subject:      %s\n", st.Subject)
			fmt.Fprintf(a.stdout, "name:         %s\n", st.DisplayName)
			fmt.Fprintf(a.stdout, "roles:        %s\n", strings.Join(st.Roles, ", "))
			fmt.Fprintf(a.stdout, "permissions:  %s\n", strings.Join(st.Permissions, ", "))

			refreshed := "never"
			if !st.LastRefresh.IsZero() {
				refreshed = st.LastRefresh.Format(time.RFC3339)
			}
			if a.session.IsRefreshStale() {
				refreshed += " (stale)"
			}
			fmt.Fprintf(a.stdout, "last refresh: %s\n", refreshed)
			return nil
		}),
	}
}

func canCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "can PERMISSION...",
		Short: "Exit 0 when the session holds any of the permissions",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			tr := a.translator(ctx)

			switch a.guard.Check(ctx, args...) {
			case guard.DecisionAllow:
				fmt.Fprintln(a.stdout, tr.T("guard.allowed"))
				return nil
			case guard.DecisionDeny:
				fmt.Fprintln(a.stderr, tr.T("guard.denied"))
			default:
				fmt.Fprintln(a.stderr, tr.T("auth.not_authenticated"))
			}
			return exitCode(1)
		}),
	}
}

func refreshCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the access token now",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			tr := a.translator(ctx)

			if a.session.TryRefreshWithTimeout(ctx, a.cfg.RefreshTimeout) {
				fmt.Fprintln(a.stdout, tr.T("auth.refresh.ok"))
				return nil
			}
			a.session.ForceLogoutToLogin(ctx, session.ReasonReconnect)
			fmt.Fprintln(a.stderr, tr.T("auth.refresh.failed"))
			return exitCode(1)
		}),
	}
}

func watchCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow notification badges until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, _ []string) error {
			err := a.watch(cmd.Context())
			if errors.Is(err, notify.ErrNotAuthenticated) {
				fmt.Fprintln(a.stderr, a.translator(context.WithoutCancel(cmd.Context())).T("auth.not_authenticated"))
				return exitCode(1)
			}
			return err
		}),
	}
}

func (a *app) watch(parent context.Context) error {
	if a.guard.Check(parent) == guard.DecisionLogin {
		return notify.ErrNotAuthenticated
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	stream := notify.New(a.cfg.APIURL, a.http, a.session, notify.WithLogger(a.log))
	sub := stream.Subscribe(ctx)
	tr := a.translator(ctx)

	g.Go(func() error {
		defer cancel()
		err := stream.Run(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, notify.ErrClosedByServer) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		for msg := range sub.Receive(ctx) {
			fmt.Fprintln(a.stdout, badgeText(tr, msg.Data))
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-a.loginRequired:
			return notify.ErrNotAuthenticated
		case <-ctx.Done():
			return nil
		}
	})

	if a.file != nil {
		g.Go(func() error {
			return a.file.Watch(ctx, a.session.Reload)
		})
	}

	if a.cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              a.cfg.MetricsAddr,
			Handler:           a.metricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.log.InfoContext(ctx, "metrics listening", logger.Key("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// badgeText renders a badge with the type's plural messages, falling back to
// the generic notify.badge.default messages for unknown types.
func badgeText(tr *i18n.Translator, b notify.Badge) string {
	key := "notify.badge." + b.Type
	if msg := tr.Tn(key, b.Count); msg != key {
		return msg
	}
	return tr.Tn("notify.badge.default", b.Count, i18n.M{"type": b.Type})
}

func langCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [CODE]",
		Short: "Show or set the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				fmt.Fprintln(a.stdout, a.translator(ctx).T("lang.current", i18n.M{"lang": a.pref.Get(ctx)}))
				return nil
			}

			lang, err := a.pref.Set(ctx, args[0])
			if errors.Is(err, i18n.ErrUnsupportedLanguage) {
				fmt.Fprintln(a.stderr, a.translator(ctx).T("lang.unsupported", i18n.M{
					"lang":      args[0],
					"available": strings.Join(a.i18n.Languages(), ", "),
				}))
				return exitCode(1)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, a.translator(ctx).T("lang.changed", i18n.M{"lang": lang}))
			return nil
		}),
	}
}

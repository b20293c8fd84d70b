package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/careslot/internal/infrastructure/gcal"
)

func NewCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Calendar account management",
	}
	cmd.AddCommand(newCalendarLoginCmd())
	return cmd
}

// The login flow is the installed-app loopback flow: a one-shot local
// listener receives the authorization code.
func newCalendarLoginCmd() *cobra.Command {
	var listen string
	var timeout time.Duration
	c := &cobra.Command{
		Use:   "login",
		Short: "Authorize access to the Google Calendar account and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			store, err := a.tokenStore()
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			redirect := fmt.Sprintf("http://%s/callback", ln.Addr().String())
			oauth, err := gcal.LoadOAuthConfig(cfg.GoogleCredentialsFile, redirect)
			if err != nil {
				_ = ln.Close()
				return err
			}

			state := uuid.NewString()
			codes := make(chan string, 1)
			errc := make(chan error, 1)
			srv := &http.Server{ReadHeaderTimeout: 5 * time.Second, Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/callback" {
					http.NotFound(w, r)
					return
				}
				q := r.URL.Query()
				if q.Get("state") != state {
					http.Error(w, "state mismatch", http.StatusBadRequest)
					return
				}
				if msg := q.Get("error"); msg != "" {
					select {
					case errc <- fmt.Errorf("authorization denied: %s", msg):
					default:
					}
					http.Error(w, "authorization denied", http.StatusForbidden)
					return
				}
				_, _ = fmt.Fprintln(w, "careslot is authorized. You can close this window.")
				select {
				case codes <- q.Get("code"):
				default:
				}
			})}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
			}()
			defer func() { _ = srv.Close() }()

			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in a browser to authorize careslot:\n\n%s\n\n", gcal.AuthURL(oauth, state))

			var code string
			select {
			case code = <-codes:
			case err := <-errc:
				return err
			case <-ctx.Done():
				return fmt.Errorf("waiting for authorization: %w", ctx.Err())
			}
			if _, err := gcal.Exchange(ctx, oauth, code, store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "calendar token stored")
			return nil
		},
	}
	c.Flags().StringVar(&listen, "listen", "127.0.0.1:0", "loopback address for the OAuth redirect")
	c.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for authorization")
	return c
}

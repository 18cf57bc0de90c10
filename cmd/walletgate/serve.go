package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"walletgate/internal/platform/httpserver"
	httptransport "walletgate/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the OAuth2 callback server",
	Long:  `Starts the HTTP server that handles the authorization redirect, session endpoints, and the native bridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := buildApp(ctx, buildOptions{metrics: true, asyncAudit: true})
		if err != nil {
			return err
		}
		defer app.Close()

		postLogin, _ := cmd.Flags().GetString("post-login-path")
		router := httptransport.NewRouter(httptransport.RouterDeps{
			Session:       app.svc,
			Injector:      app.injector,
			Logger:        app.logger,
			PostLoginPath: postLogin,
		})
		srv := httpserver.New(app.cfg.Addr, router)

		app.logger.Info("starting walletgate",
			"addr", app.cfg.Addr,
			"authority", app.cfg.OAuth.AuthorityURL,
			"redirect_uri", app.cfg.OAuth.RedirectURI,
		)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("post-login-path", "/", "Where the browser lands after the callback completes")
}

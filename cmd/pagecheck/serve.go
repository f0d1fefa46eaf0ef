package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local build of the application under test",
		Long: `Serve a local build of the application under test.

Hosts a static build directory over HTTP so a verification run can target
it without a separate web server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			r := chi.NewRouter()
			r.Use(middleware.RealIP)
			r.Use(middleware.Recoverer)
			r.Handle("/*", http.FileServer(http.Dir(dir)))

			srv := &http.Server{
				Addr:    addr,
				Handler: r,
			}

			errc := make(chan error, 1)
			go func() {
				slog.Info("serving static build", "addr", addr, "dir", dir)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:4321", "listen address")
	cmd.Flags().StringVarP(&dir, "dir", "d", "dist", "static build directory to serve")

	return cmd
}

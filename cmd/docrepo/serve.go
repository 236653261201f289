package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/your-org/docrepo/internal/ingestion"
)

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve storage events over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *envFile)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			handler := ingestion.NewHTTPHandler(a.service, a.logger, a.cfg.HTTP.MaxEventSize, a.cfg.HTTP.WriteTimeout)
			server := &http.Server{
				Addr:         a.cfg.HTTP.Addr,
				Handler:      handler.Router(),
				ReadTimeout:  a.cfg.HTTP.ReadTimeout,
				WriteTimeout: a.cfg.HTTP.WriteTimeout,
				IdleTimeout:  a.cfg.HTTP.IdleTimeout,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("http server shutdown failed", zap.Error(err))
				}
			}()

			a.logger.Info("docrepo function starting",
				zap.String("addr", a.cfg.HTTP.Addr),
				zap.String("output_bucket", a.cfg.Output.Bucket),
				zap.String("stream", a.cfg.Stream.Name),
			)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

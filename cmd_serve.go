package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/handlers"
	"github.com/dense-analysis/pie/pkg/middleware"
	"github.com/dense-analysis/pie/pkg/repositories"
	"github.com/dense-analysis/pie/pkg/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the similarity matcher over HTTP",
	Long: `Start an HTTP server exposing /health, /ping,
GET /api/similar-issues?max_title_distance=&max_description_distance=&unique=,
GET /api/projects/{source}/{owner}/{name}/issues/{id} and
GET /api/projects/{source}/{owner}/{name}/issues/{id}/comments/{comment_id}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		repos := repositories.NewPostgresRepositories(db)
		similarityService := services.NewSimilarityService(repos.Similarity, logger)
		issueService := services.NewIssueService(repos, logger)

		mux := http.NewServeMux()
		handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
		handlers.NewSimilarityHandler(similarityService, cfg.Similarity.Thresholds(), logger).RegisterRoutes(mux)
		handlers.NewIssueHandler(issueService, logger).RegisterRoutes(mux)

		addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
		server := &http.Server{
			Addr:              addr,
			Handler:           middleware.RequestLogger(logger)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting pie",
				zap.String("addr", addr),
				zap.String("version", cfg.Version))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

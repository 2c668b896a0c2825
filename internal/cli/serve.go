package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/engage/internal/catalog"
	"github.com/openshelf/engage/internal/history"
	"github.com/openshelf/engage/internal/httpapi"
)

// NewServeCmd creates the 'serve' command for running the engagement facade.
//
// The facade is what the storefront's client-rendered UI talks to:
// view tracking, the recently-viewed list, trending terms, and best-effort
// product suggestions proxied from the backend search endpoint.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engagement HTTP facade",
		Long: `Start the HTTP facade the storefront UI calls.

Endpoints:
  POST   /api/engagement/view      record a product-view event
  GET    /api/engagement/recent    recently-viewed list (most recent first)
  DELETE /api/engagement/recent    clear the recently-viewed list
  GET    /api/engagement/trending  top trending search terms
  GET    /api/engagement/suggest   product suggestions or trending fallback
  POST   /api/engagement/accept    record an accepted search term`,
		Example: `  engage serve
  ENGAGE_LISTEN_ADDR=:9090 engage serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	return cmd
}

// runServe starts the facade with graceful shutdown on SIGINT/SIGTERM.
func runServe() error {
	svc, err := openServices()
	if err != nil {
		return fmt.Errorf("failed to open engagement services: %w", err)
	}
	defer svc.Close()

	limiter := history.NewViewLimiter(time.Duration(svc.cfg.History.ViewCooldownSeconds) * time.Second)
	searcher := catalog.NewClient(svc.cfg.SearchBaseURL)

	handlers := httpapi.NewEngagementHandlers(svc.cache, limiter, svc.trends, searcher)
	handlers.MinQueryLength = svc.cfg.Suggest.MinQueryLength
	handlers.PageSize = svc.cfg.Suggest.PageSize
	handlers.TrendingSize = svc.cfg.Suggest.TrendingSize

	router := httpapi.NewRouter(handlers, svc.cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:    svc.cfg.ListenAddr,
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Engagement facade listening on %s", svc.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Run serves HTTP, runs the Watermill router and the modules until ctx is
// cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Provider.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go a.HandicapModule.Run(ctx, &wg)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.Router.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("watermill router: %w", err)
		}
	}()

	a.httpServer = &http.Server{
		Addr:              a.Config.HTTP.Address,
		Handler:           a.HTTPRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if addr := a.Config.Observability.MetricsAddress; addr != "" {
		a.metricsServer = &http.Server{
			Addr:              addr,
			Handler:           metricsHandler(a.Observability),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("Starting metrics server", "address", addr)
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		logger.Error("Component failed, shutting down", "error", runErr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	closeErr := a.Close(shutdownCtx)
	wg.Wait()

	return errors.Join(runErr, closeErr)
}

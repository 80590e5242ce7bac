package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/antigravlabs/stashd/internal/credentials"
	"github.com/antigravlabs/stashd/internal/ratelimit"
	"github.com/antigravlabs/stashd/internal/server"
	"github.com/antigravlabs/stashd/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP recognition service until the process is stopped.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: spotify and shazam credentials are required to serve", shared.ErrServiceUnavailable)
	}

	host := r.config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.Int("port") != 0 {
		port = int(cmd.Int("port"))
	}

	limiter := ratelimit.New(r.config.RateLimit.DailyLimit)
	api := server.NewAPI(limiter, r.engine, r.newLibrarian, r.gemini, r.logger)

	router := server.NewBasicRouter()
	router.Use(
		server.RequestLogger(r.logger),
		server.CORS(r.config.Server.AllowedOrigins),
	)
	router.Handler(api)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	cookieSets := r.pool.Size(credentials.PlatformInstagram) + r.pool.Size(credentials.PlatformYouTube)
	r.logger.Info("listening", "addr", addr, "daily_limit", limiter.Limit(), "cookie_sets", cookieSets)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

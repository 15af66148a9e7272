package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atelierhome/storefront/internal/domain/order"
	"github.com/atelierhome/storefront/internal/handler"
	"github.com/atelierhome/storefront/internal/storage/catalogfile"
	"github.com/atelierhome/storefront/internal/storage/imagestore"
	"github.com/atelierhome/storefront/internal/telegram"
	"github.com/atelierhome/storefront/pkg/health"
	"github.com/atelierhome/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("data_dir", cfg.DataDir),
	)
	if cfg.AdminPass == "" {
		lg.Warn("Admin secret is not set; admin endpoints will refuse all requests")
	}

	// Catalog document store (seeds an empty catalog on first boot).
	store, err := catalogfile.New(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "open catalog store")
	}

	images, err := imagestore.New(cfg.UploadDir, "/uploads")
	if err != nil {
		return errors.Wrap(err, "open image store")
	}

	sink := telegram.New(telegram.Config{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
	})
	if !sink.Configured() {
		lg.Warn("Telegram credentials are not set; order submission will fail")
	}

	orders := order.NewService(sink)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("catalog", 5*time.Second, store.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)
	defer healthSvc.Stop()

	h := handler.New(handler.Config{
		AdminPass:    cfg.AdminPass,
		MaxBodyBytes: cfg.MaxBodyBytes,
		UploadDir:    cfg.UploadDir,
		ClientDist:   cfg.ClientDist,
	}, store, images, orders, sink)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-Admin-Pass"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront", m),
			httpmiddleware.LogRequests(),
		),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()

		// Drain: flip readiness first so load balancers stop routing here.
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !isContextCanceled(err) {
		return err
	}
	return nil
}

func isContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) ||
		strings.Contains(err.Error(), context.Canceled.Error())
}

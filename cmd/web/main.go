package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "slow_travel/internal/adapters/http_server"
	"slow_travel/internal/adapters/observability"
	"slow_travel/internal/adapters/paypal"
	redisad "slow_travel/internal/adapters/redis"
	sheetsad "slow_travel/internal/adapters/sheets"
	"slow_travel/internal/app"
	"slow_travel/internal/domain"
	"slow_travel/internal/presentation"
	"slow_travel/internal/shared"
	mysqlrepo "slow_travel/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise) before anything logs
	log.Logger = observability.NewSiteLogger(cfg.AppEnv, cfg.SiteID)
	cfg.LogWarnings()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// content + nexus stores
	content, nexus, closeStores := openStores(ctx, cfg)
	defer closeStores()

	sessions := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer sessions.Close()
	if err := sessions.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; booking sessions unavailable")
	}

	var payments domain.PaymentProvider = paypal.Disabled{}
	clientID := ""
	if pp, err := paypal.New(cfg.PayPalBase, cfg.PayPalClientID, cfg.PayPalSecret, 5); err != nil {
		log.Warn().Err(err).Msg("paypal disabled")
	} else {
		payments, clientID = pp, pp.ClientID()
	}

	// deps
	contentSvc := app.NewContentService(content)
	bookings := app.NewBookingService(contentSvc)
	flow := app.NewBookingFlow(contentSvc, sessions, payments, bookings, cfg.SessionTTL)

	views, err := presentation.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("parse templates failed")
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	observability.Serve(cfg.MetricsAddr, reg)
	srv.MountStatic(presentation.Static())
	srv.MountHandlers(&server.Handlers{
		Content:    contentSvc,
		Flow:       flow,
		Bookings:   bookings,
		Newsletter: app.NewNewsletterService(app.NewContentService(nexus), cfg.SiteID),
		Sitemap:    app.NewSitemapService(contentSvc, cfg.SiteURL),
		Views:      views,
		Site: presentation.Site{
			Name:           app.BrandName(cfg.SiteID),
			URL:            cfg.SiteURL,
			Email:          "hello@" + hostOf(cfg.SiteURL),
			Locality:       "Marrakech",
			Country:        "MA",
			CountryName:    "Morocco",
			PayPalClientID: clientID,
		},
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.StoreBackend).Msg("web listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStores picks the content backend. The MySQL mirror also stands in for the
// nexus sheet so local development needs no Google credentials at all.
func openStores(ctx context.Context, cfg shared.Config) (content, nexus domain.TabStore, closeFn func()) {
	switch cfg.StoreBackend {
	case shared.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		repo := mysqlrepo.New(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure schema failed")
		}
		log.Info().Msg("database connection ok")
		return repo, repo, func() { _ = db.Close() }
	case shared.BackendSheets:
		content = sheetsad.New(cfg.SheetID, cfg.ServiceAccount, cfg.SheetsRPS)
		nexus = sheetsad.New(cfg.NexusSheetID, cfg.ServiceAccount, cfg.SheetsRPS)
		return content, nexus, func() {}
	default:
		log.Fatal().Str("backend", cfg.StoreBackend).Msg("unknown STORE_BACKEND")
		return nil, nil, nil
	}
}

func hostOf(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return siteURL
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

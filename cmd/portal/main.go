package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"financehub/portal/internal/anexos"
	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
	"financehub/portal/internal/config"
	"financehub/portal/internal/handlers"
	"financehub/portal/internal/identity"
	"financehub/portal/internal/jobs"
	"financehub/portal/internal/log"
	"financehub/portal/internal/notify"
	"financehub/portal/internal/server"
	"financehub/portal/internal/session"
	"financehub/portal/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	var kv cache.Store
	var redisStore *cache.Redis
	if cfg.Redis.Addr != "" {
		redisStore, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		kv = redisStore
	} else {
		logger.Warn().Msg("no redis configured, mirror cache will not survive restarts")
		kv = cache.NewMemory()
	}
	mirror := cache.NewMirror(kv)

	backend := api.NewClient(cfg.Backend, logger)
	provider := identity.NewClient(cfg.Identity, logger)

	sessao := session.NewStore(backend, provider, mirror, logger)
	dashboard := store.NewDashboard(backend, mirror, logger)
	configuracoes := store.NewConfiguracoes(backend, mirror, logger)
	historico := store.NewHistorico(backend, mirror, logger)
	suporte := store.NewSuporte(backend, mirror, logger)

	// Domain stores clear and refetch on every session transition; wiring
	// happens before Load so the startup transition reaches them too.
	sessao.OnChange(dashboard.HandleSessionChange)
	sessao.OnChange(configuracoes.HandleSessionChange)
	sessao.OnChange(historico.HandleSessionChange)
	sessao.OnChange(suporte.HandleSessionChange)

	notificacoes := notify.NewStore()

	var anexosSvc *anexos.Service
	if cfg.Storage.Endpoint != "" {
		anexosSvc, err = anexos.NewService(cfg.Storage, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("anexos storage unavailable")
			anexosSvc = nil
		} else if err := anexosSvc.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
	}

	handlerSet := handlers.NewHandlerSet(
		logger, cfg, sessao, dashboard, configuracoes, historico, suporte, notificacoes, anexosSvc,
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	reconciler := jobs.NewReconciler(suporte, cfg.Reconciler.CronSpec, logger)
	if err := reconciler.Start(); err != nil {
		logger.Error().Err(err).Msg("reconciler start failed")
	}

	// Session restore races the server deliberately: the portal answers
	// while validation is still in flight, reporting loading until it ends.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Session.ValidateTimeout)
		defer cancel()
		sessao.Load(loadCtx)
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, reconciler, notificacoes, redisStore)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	reconciler *jobs.Reconciler,
	notificacoes *notify.Store,
	redisStore *cache.Redis,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if reconciler != nil {
		cancel := reconciler.Stop()
		cancel()
	}

	notificacoes.Fechar()

	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("portal exited cleanly")
}

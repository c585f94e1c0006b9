package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/activity"
	"github.com/xela07ax/dashboard-daddy/internal/connectors"
	"github.com/xela07ax/dashboard-daddy/internal/console/handler"
	"github.com/xela07ax/dashboard-daddy/internal/console/server"
	"github.com/xela07ax/dashboard-daddy/internal/console/service"
	"github.com/xela07ax/dashboard-daddy/internal/infra"
	"github.com/xela07ax/dashboard-daddy/internal/infra/auth"
	"github.com/xela07ax/dashboard-daddy/internal/registry"
	"github.com/xela07ax/dashboard-daddy/internal/repository/postgres"
	"github.com/xela07ax/dashboard-daddy/internal/status"
	"github.com/xela07ax/dashboard-daddy/internal/stream"
)

func main() {
	// .env удобен локально; в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 1. Инфраструктура и ресурсы
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	repo, err := postgres.NewRepo(pingCtx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to init postgres pool: %v", err)
	}
	if err := repo.Ping(pingCtx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	pingCancel()
	defer repo.Close()

	// Контекст для управления жизненным циклом фоновых горутин
	// При завершении main() или срабатывании SIGTERM, cancel() остановит слушателей
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Реестр агентов и рантайм-статус
	loader := registry.NewLoader(cfg.Registry.Paths, cfg.Registry.CacheTTL, logger)
	go registry.ListenInvalidation(appCtx, rdb, loader, logger)

	store := status.NewStore()
	go status.ListenSignals(appCtx, rdb, store, logger)

	// 3. Журнал активности: батчинговая запись в Postgres
	recorder := activity.NewRecorder(repo, cfg.Stream.RecordBuffer, cfg.Stream.FlushInterval, logger)
	recorder.Start()

	// 4. История звонков: реальный API или детерминированная заглушка
	var callProvider connectors.CallHistoryProvider
	if cfg.Caller.BaseURL != "" {
		callProvider = connectors.NewHTTPCallConnector(cfg.Caller.BaseURL, cfg.Caller.APIKey, cfg.Caller.Timeout)
	} else {
		logger.Warn("caller API not configured, using mock call history")
		callProvider = &connectors.MockCallConnector{}
	}
	safeCalls := connectors.NewReliableCallProvider(callProvider)

	// 5. Сервисный слой
	agentService := service.NewAgentService(loader, store, status.NewRedisPublisher(rdb), recorder, logger)
	taskService := service.NewTaskService(repo, recorder, logger)
	composer := service.NewActivityComposer(logger,
		service.ActivitySource{Name: "tasks", Fetch: repo.RecentTaskEntries},
		service.ActivitySource{Name: "contacts", Fetch: repo.RecentContactEntries},
		service.ActivitySource{Name: "system", Fetch: repo.RecentSystemEntries},
		service.NewCallSource(safeCalls),
	)

	// 6. Периметр: RS256, если ключи сконфигурированы
	var validator auth.TokenValidator
	var authHandler *handler.AuthHandler
	if len(cfg.Auth.PublicKey) > 0 && len(cfg.Auth.PrivateKey) > 0 {
		pubKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
		if err != nil {
			log.Fatalf("Failed to parse public key: %v", err)
		}
		privKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
		if err != nil {
			log.Fatalf("Failed to parse private key: %v", err)
		}
		validator = auth.NewBaseValidator(pubKey)
		authHandler = handler.NewAuthHandler(service.NewAuthService(repo, privKey, cfg.Auth.TokenTTL))
	} else {
		logger.Warn("auth keys not configured, API is unprotected")
	}

	// 7. HTTP-слой
	metrics := server.NewMetrics(prometheus.DefaultRegisterer)
	srvHandler := server.NewConsoleServer(
		cfg,
		logger,
		metrics,
		validator,
		authHandler,
		handler.NewAgentHandler(agentService),
		handler.NewTaskHandler(taskService),
		handler.NewActivityHandler(composer),
		handler.NewStreamHandler(agentService, stream.NewScriptSource(), cfg.Stream.Interval, cfg.Stream.PingInterval, logger),
		handler.NewDashboardHandler(taskService, agentService),
		handler.NewRegistryHandler(agentService, registry.NewRedisBroadcaster(rdb), logger),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srvHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout, // 0: SSE-потоки живут без дедлайна
		// Контексты запросов наследуют appCtx: cancel() закрывает SSE-потоки,
		// иначе Shutdown ждал бы их до таймаута
		BaseContext: func(net.Listener) context.Context { return appCtx },
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Console API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-stop
	logger.Info("Console API stopping...")

	// Останавливаем слушателей и SSE-потоки, даем время активным запросам
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	// Рекордер сливается последним: события от завершающихся запросов
	// должны успеть в базу
	recorder.Stop()
	logger.Info("Console API exited properly")
}

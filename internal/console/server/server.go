package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/console/handler"
	"github.com/xela07ax/dashboard-daddy/internal/infra"
	"github.com/xela07ax/dashboard-daddy/internal/infra/auth"
)

type ConsoleServer struct {
	router  *chi.Mux
	logger  *zap.Logger
	cfg     *infra.Config
	metrics *Metrics

	// Проверка токенов (RS256). nil — периметр открыт (dev-режим без ключей).
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	authHandler     *handler.AuthHandler     // /auth/token
	agentHandler    *handler.AgentHandler    // /v1/agents
	taskHandler     *handler.TaskHandler     // /v1/tasks
	activityHandler *handler.ActivityHandler // /v1/activity
	streamHandler   *handler.StreamHandler   // /v1/agents/{id}/stream
	dashHandler     *handler.DashboardHandler
	registryHandler *handler.RegistryHandler
}

// NewConsoleServer инициализирует HTTP-слой консоли со всеми зависимостями
func NewConsoleServer(
	cfg *infra.Config,
	logger *zap.Logger,
	metrics *Metrics,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	agentH *handler.AgentHandler,
	taskH *handler.TaskHandler,
	activityH *handler.ActivityHandler,
	streamH *handler.StreamHandler,
	dashH *handler.DashboardHandler,
	registryH *handler.RegistryHandler,
) *ConsoleServer {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	s := &ConsoleServer{
		router:          chi.NewRouter(),
		logger:          logger.Named("console-api"),
		cfg:             cfg,
		metrics:         metrics,
		authValidator:   validator,
		authHandler:     authH,
		agentHandler:    agentH,
		taskHandler:     taskH,
		activityHandler: activityH,
		streamHandler:   streamH,
		dashHandler:     dashH,
		registryHandler: registryH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(instrument(s.metrics))
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Логин должен быть доступен без токена
		if s.authHandler != nil {
			r.Post("/auth/token", s.authHandler.Login)
		}

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		r.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (RS256 токен, если ключи сконфигурированы) ---
	r.Group(func(r chi.Router) {
		if s.authValidator != nil {
			r.Use(auth.NewMiddleware(s.authValidator, s.logger))
		}

		// Dashboard & Stats
		r.Get("/v1/dashboard/summary", s.dashHandler.Summary)

		// Управление агентами: листинг, статус, старт/стоп, живой вывод
		r.Route("/v1/agents", func(r chi.Router) {
			r.Get("/", s.agentHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.agentHandler.Get)
				r.Patch("/", s.agentHandler.Update)
				r.Get("/stream", s.countStream(s.streamHandler.Output))
				r.Post("/stream", s.streamHandler.Command)
			})
		})

		// Жизненный цикл задач
		r.Route("/v1/tasks", func(r chi.Router) {
			r.Get("/", s.taskHandler.List)
			r.Post("/", s.taskHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.taskHandler.Get)
				r.Post("/transition", s.taskHandler.Transition)
			})
		})

		// Сводная лента активности
		r.Get("/v1/activity", s.activityHandler.Feed)

		// Сброс кэша реестра после внешней правки agents.json
		r.Post("/v1/registry/invalidate", s.registryHandler.Invalidate)
	})
}

// countStream учитывает открытые SSE-соединения в метрике насыщения.
func (s *ConsoleServer) countStream(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.ActiveStreams.Inc()
		defer s.metrics.ActiveStreams.Dec()
		next(w, r)
	}
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

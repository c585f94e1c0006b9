package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/activity"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
	"github.com/xela07ax/dashboard-daddy/internal/registry"
	"github.com/xela07ax/dashboard-daddy/internal/status"
)

// RegistryProvider описывает требования сервиса к загрузчику реестра.
type RegistryProvider interface {
	Load() (*registry.Registry, error)
	Invalidate()
}

type AgentService struct {
	reg      RegistryProvider
	store    *status.Store
	signals  status.SignalPublisher // nil — сигналы отключены (single-node)
	recorder activity.Sink
	logger   *zap.Logger
}

func NewAgentService(reg RegistryProvider, store *status.Store, signals status.SignalPublisher, recorder activity.Sink, logger *zap.Logger) *AgentService {
	return &AgentService{
		reg:      reg,
		store:    store,
		signals:  signals,
		recorder: recorder,
		logger:   logger.Named("agent-service"),
	}
}

// List собирает внешний список агентов: определения из реестра + рантайм-снимок.
// Порядок — порядок реестра. Побочный эффект: лениво инициализирует отсутствующие
// записи статуса; для уже известных агентов листинг ничего не меняет.
func (s *AgentService) List(ctx context.Context) ([]domain.AgentWithStatus, domain.RegistryDefaults, error) {
	reg, err := s.reg.Load()
	if err != nil {
		s.logger.Error("failed to load registry", zap.Error(err))
		return nil, domain.RegistryDefaults{}, err
	}

	agents := make([]domain.AgentWithStatus, 0, len(reg.Order))
	for _, id := range reg.Order {
		def := reg.Agents[id]
		s.store.Init(id)
		agents = append(agents, mergeAgent(id, def, s.store.Get(id)))
	}

	s.logger.Debug("agents listed", zap.Int("count", len(agents)))
	return agents, reg.Defaults, nil
}

// Get возвращает одного агента; domain.ErrNotFound, если его нет в реестре.
func (s *AgentService) Get(ctx context.Context, agentID string) (domain.AgentWithStatus, error) {
	reg, err := s.reg.Load()
	if err != nil {
		return domain.AgentWithStatus{}, err
	}
	def, ok := reg.Definition(agentID)
	if !ok {
		return domain.AgentWithStatus{}, fmt.Errorf("agent %s: %w", agentID, domain.ErrNotFound)
	}
	return mergeAgent(agentID, def, s.store.Get(agentID)), nil
}

// Exists проверяет присутствие агента в реестре без сборки снимка.
func (s *AgentService) Exists(agentID string) (bool, error) {
	reg, err := s.reg.Load()
	if err != nil {
		return false, err
	}
	_, ok := reg.Definition(agentID)
	return ok, nil
}

// Start инициирует запуск: starting с новым job id, затем running.
// Консоль агентов не спаунит — command/args для нее непрозрачны,
// переход в running фиксирует только факт запуска.
func (s *AgentService) Start(ctx context.Context, agentID string) (domain.AgentWithStatus, error) {
	reg, err := s.reg.Load()
	if err != nil {
		return domain.AgentWithStatus{}, err
	}
	def, ok := reg.Definition(agentID)
	if !ok {
		return domain.AgentWithStatus{}, fmt.Errorf("agent %s: %w", agentID, domain.ErrNotFound)
	}
	if !def.Enabled {
		return domain.AgentWithStatus{}, fmt.Errorf("agent %s: %w", agentID, domain.ErrAgentDisabled)
	}

	cur := s.store.Get(agentID)
	if cur.Status == domain.StatusRunning || cur.Status == domain.StatusStarting {
		return domain.AgentWithStatus{}, fmt.Errorf("agent %s: %w", agentID, domain.ErrAgentBusy)
	}

	jobID := uuid.New().String()
	s.store.Set(agentID, domain.StatusStarting, &jobID, nil)
	s.publish(ctx, agentID, domain.StatusStarting)

	// Реального супервизора процессов нет: запуск подтверждается немедленно
	st := s.store.Set(agentID, domain.StatusRunning, nil, nil)
	s.publish(ctx, agentID, domain.StatusRunning)

	s.recorder.Record(activity.Event{
		ID:      uuid.New().String(),
		Kind:    activity.KindAgentStarted,
		AgentID: agentID,
		Details: fmt.Sprintf("job %s", jobID),
	})
	s.logger.Info("agent started",
		zap.String("agent_id", agentID),
		zap.String("job_id", jobID))

	return mergeAgent(agentID, def, st), nil
}

// Stop переводит агента stopping -> stopped. Привязка к job снимается стором,
// последний StartedAt сохраняется для отображения.
func (s *AgentService) Stop(ctx context.Context, agentID string) (domain.AgentWithStatus, error) {
	reg, err := s.reg.Load()
	if err != nil {
		return domain.AgentWithStatus{}, err
	}
	def, ok := reg.Definition(agentID)
	if !ok {
		return domain.AgentWithStatus{}, fmt.Errorf("agent %s: %w", agentID, domain.ErrNotFound)
	}

	cur := s.store.Get(agentID)
	if cur.Status == domain.StatusStopped || cur.Status == domain.StatusStopping {
		return domain.AgentWithStatus{}, fmt.Errorf("agent %s: %w", agentID, domain.ErrAgentNotRunning)
	}

	s.store.Set(agentID, domain.StatusStopping, nil, nil)
	s.publish(ctx, agentID, domain.StatusStopping)

	st := s.store.Set(agentID, domain.StatusStopped, nil, nil)
	s.publish(ctx, agentID, domain.StatusStopped)

	s.recorder.Record(activity.Event{
		ID:      uuid.New().String(),
		Kind:    activity.KindAgentStopped,
		AgentID: agentID,
	})
	s.logger.Info("agent stopped", zap.String("agent_id", agentID))

	return mergeAgent(agentID, def, st), nil
}

// InvalidateRegistry сбрасывает локальный кэш реестра (после правки agents.json).
func (s *AgentService) InvalidateRegistry() {
	s.reg.Invalidate()
	s.recorder.Record(activity.Event{
		ID:   uuid.New().String(),
		Kind: activity.KindRegistryReload,
	})
	s.logger.Info("registry cache invalidated")
}

// FleetStats — сводка по парку агентов для дашборда.
func (s *AgentService) FleetStats(ctx context.Context) (domain.FleetStats, error) {
	reg, err := s.reg.Load()
	if err != nil {
		return domain.FleetStats{}, err
	}

	stats := domain.FleetStats{
		Known:   len(reg.Order),
		Running: s.store.RunningCount(),
	}
	for _, def := range reg.Agents {
		if def.Enabled {
			stats.Enabled++
		}
	}
	return stats, nil
}

// publish шлет сигнал другим репликам; провал доставки — warn, не ошибка:
// локальный стор уже обновлен, durability сигналов не обещается.
func (s *AgentService) publish(ctx context.Context, agentID string, st domain.AgentStatus) {
	if s.signals == nil {
		return
	}
	if err := s.signals.PublishStatus(ctx, agentID, st); err != nil {
		s.logger.Warn("status signal delivery failed",
			zap.String("agent_id", agentID),
			zap.String("status", string(st)),
			zap.Error(err))
	}
}

func mergeAgent(id string, def domain.AgentDefinition, st domain.RuntimeStatus) domain.AgentWithStatus {
	return domain.AgentWithStatus{
		ID:           id,
		Name:         def.Name,
		Description:  def.Description,
		Enabled:      def.Enabled,
		Status:       st.Status,
		Command:      def.Command,
		Args:         def.Args,
		EnvRequired:  def.EnvRequired,
		Features:     def.Features,
		CurrentJobID: st.CurrentJobID,
		StartedAt:    st.StartedAt,
		LastError:    st.LastError,
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/activity"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// TaskRepository описывает требования к хранилищу задач.
type TaskRepository interface {
	CreateTask(ctx context.Context, t *domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
	TransitionTask(ctx context.Context, id string, next domain.TaskStatus, taskErr string, now time.Time) (*domain.Task, error)
	TaskCounts(ctx context.Context) (domain.TaskCounts, error)
}

type TaskService struct {
	repo     TaskRepository
	recorder activity.Sink
	logger   *zap.Logger
	now      func() time.Time
}

func NewTaskService(repo TaskRepository, recorder activity.Sink, logger *zap.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		recorder: recorder,
		logger:   logger.Named("task-service"),
		now:      time.Now,
	}
}

// CreateInput — частичная задача из тела запроса.
type CreateInput struct {
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        domain.TaskStatus   `json:"status"`
	Priority      domain.TaskPriority `json:"priority"`
	AssignedAgent string              `json:"assignedAgent"`
	ScheduledFor  *time.Time          `json:"scheduledFor"`
}

// Create назначает id и createdAt, по умолчанию pending/medium.
// Явно заданный нетерминальный статус допускается; таймстемпы штампуются
// по инвариантам жизненного цикла.
func (s *TaskService) Create(ctx context.Context, in CreateInput) (*domain.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if in.Status == "" {
		in.Status = domain.TaskPending
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("unknown task status %q", in.Status)
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}

	now := s.now()
	t := &domain.Task{
		ID:            uuid.New().String(),
		Title:         in.Title,
		Description:   in.Description,
		Status:        in.Status,
		Priority:      in.Priority,
		AssignedAgent: in.AssignedAgent,
		ScheduledFor:  in.ScheduledFor,
		CreatedAt:     now,
	}
	// Инварианты: StartedAt <=> не pending, CompletedAt <=> терминальный
	if t.Status != domain.TaskPending {
		ts := now
		t.StartedAt = &ts
	}
	if t.Status.Terminal() {
		ts := now
		t.CompletedAt = &ts
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		// Создание задачи без fallback: ошибка уходит наружу
		return nil, &domain.UpstreamError{Source: "tasks", Cause: err}
	}

	s.recorder.Record(activity.Event{
		ID:      uuid.New().String(),
		Kind:    activity.KindTaskCreated,
		TaskID:  t.ID,
		AgentID: t.AssignedAgent,
		Details: t.Title,
	})
	s.logger.Info("task created",
		zap.String("task_id", t.ID),
		zap.String("priority", string(t.Priority)))
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// List — фильтрация по статусу (включая словарь доски: backlog/review/done
// сводятся к каноническому статусу до запроса).
func (s *TaskService) List(ctx context.Context, rawStatus string) ([]*domain.Task, error) {
	var st domain.TaskStatus
	if rawStatus != "" {
		st = domain.TaskStatus(rawStatus)
		if !st.Valid() {
			board := domain.BoardStatus(rawStatus)
			switch board {
			case domain.BoardBacklog, domain.BoardReview, domain.BoardDone:
				st = board.Canonical()
			default:
				return nil, fmt.Errorf("unknown task status %q", rawStatus)
			}
		}
	}

	tasks, err := s.repo.ListTasks(ctx, st)
	if err != nil {
		return nil, &domain.UpstreamError{Source: "tasks", Cause: err}
	}
	return tasks, nil
}

// Transition переводит задачу в новый статус с проверкой конечного автомата.
func (s *TaskService) Transition(ctx context.Context, id string, next domain.TaskStatus, taskErr string) (*domain.Task, error) {
	t, err := s.repo.TransitionTask(ctx, id, next, taskErr, s.now())
	if err != nil {
		return nil, err
	}

	s.recorder.Record(activity.Event{
		ID:      uuid.New().String(),
		Kind:    activity.KindTaskTransition,
		TaskID:  t.ID,
		AgentID: t.AssignedAgent,
		Details: string(next),
	})
	s.logger.Info("task transitioned",
		zap.String("task_id", t.ID),
		zap.String("status", string(next)))
	return t, nil
}

// Counts — агрегаты для сводки. При сбое БД деградируем в нули:
// дашборд ценнее с приблизительной сводкой, чем с 500-кой.
func (s *TaskService) Counts(ctx context.Context) domain.TaskCounts {
	c, err := s.repo.TaskCounts(ctx)
	if err != nil {
		s.logger.Warn("task counts unavailable, falling back to zeros", zap.Error(err))
		return domain.TaskCounts{}
	}
	return c
}

package domain

import (
	"errors"
	"time"
)

// Статусы State Machine задач. Канонический словарь — расширенный жизненный цикл;
// словарь kanban-доски (backlog/review/done) маппится на него, см. BoardStatus.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

var (
	ErrInvalidTransition = errors.New("invalid task status transition")
	ErrTaskFinished      = errors.New("task already in terminal status")
)

// Terminal — из этих статусов перехода нет, CompletedAt обязан быть проставлен.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`

	// Ссылка на агента по id из реестра; может быть пустой.
	AssignedAgent string `json:"assignedAgent,omitempty"`

	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`

	// Заполняется только при переходе в failed.
	Error string `json:"error,omitempty"`
}

// CanTransitionTo проверяет правила конечного автомата.
// pending -> in_progress | cancelled
// in_progress -> completed | failed | cancelled
// терминальные статусы финальны.
func (t *Task) CanTransitionTo(next TaskStatus) error {
	if !next.Valid() {
		return ErrInvalidTransition
	}
	if t.Status.Terminal() {
		return ErrTaskFinished
	}
	switch t.Status {
	case TaskPending:
		if next == TaskInProgress || next == TaskCancelled {
			return nil
		}
	case TaskInProgress:
		if next.Terminal() {
			return nil
		}
	}
	return ErrInvalidTransition
}

// ApplyTransition переводит задачу в next и штампует таймстемпы по инвариантам:
// StartedAt проставлен тогда и только тогда, когда status != pending;
// CompletedAt — тогда и только тогда, когда статус терминальный.
// Каждый таймстемп выставляется один раз и назад не откатывается.
func (t *Task) ApplyTransition(next TaskStatus, now time.Time) error {
	if err := t.CanTransitionTo(next); err != nil {
		return err
	}
	t.Status = next
	if next != TaskPending && t.StartedAt == nil {
		ts := now
		t.StartedAt = &ts
	}
	if next.Terminal() && t.CompletedAt == nil {
		ts := now
		t.CompletedAt = &ts
	}
	if next != TaskFailed {
		t.Error = ""
	}
	return nil
}

// BoardStatus — словарь kanban-доски, который исходные UI-поверхности не сводили
// с каноническим. Таблица соответствия выбрана в пользу расширенного словаря.
type BoardStatus string

const (
	BoardBacklog    BoardStatus = "backlog"
	BoardInProgress BoardStatus = "in_progress"
	BoardReview     BoardStatus = "review"
	BoardDone       BoardStatus = "done"
)

// Canonical переводит статус доски в канонический.
// review считается in_progress: работа не завершена, исполнитель еще привязан.
func (b BoardStatus) Canonical() TaskStatus {
	switch b {
	case BoardBacklog:
		return TaskPending
	case BoardInProgress, BoardReview:
		return TaskInProgress
	case BoardDone:
		return TaskCompleted
	}
	return TaskPending
}

// Board — обратный маппинг для поверхностей, которым нужен словарь доски.
// failed и cancelled на доске не различаются и оба сворачиваются в done.
func (s TaskStatus) Board() BoardStatus {
	switch s {
	case TaskPending:
		return BoardBacklog
	case TaskInProgress:
		return BoardInProgress
	case TaskCompleted, TaskFailed, TaskCancelled:
		return BoardDone
	}
	return BoardBacklog
}

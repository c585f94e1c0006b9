package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

const taskColumns = `id, title, description, status, priority, assigned_agent,
	scheduled_for, created_at, started_at, completed_at, error`

// CreateTask вставляет новую задачу. Идентификатор и таймстемпы к этому моменту
// уже проставлены сервисом.
func (r *Repo) CreateTask(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (id, title, description, status, priority, assigned_agent,
	                             scheduled_for, created_at, started_at, completed_at, error)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, nullStr(t.AssignedAgent),
		t.ScheduledFor, t.CreatedAt, t.StartedAt, t.CompletedAt, nullStr(t.Error),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create task: %w", err)
	}
	return nil
}

// GetTask возвращает задачу по id; domain.ErrNotFound если строки нет.
func (r *Repo) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("postgres: failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks — выборка с опциональным фильтром по статусу,
// сортировка по scheduled_for по возрастанию (NULL в конец).
func (r *Repo) ListTasks(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`

	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY scheduled_for ASC NULLS LAST, created_at ASC LIMIT 500`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query tasks: %w", err)
	}
	defer rows.Close()

	// Пустой слайс, а не nil: фронт получает [], не null
	results := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan task: %w", err)
		}
		results = append(results, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// TransitionTask атомарно переводит задачу в next под блокировкой строки.
// Легальность перехода и штамповка таймстемпов — в domain.Task.
func (r *Repo) TransitionTask(ctx context.Context, id string, next domain.TaskStatus, taskErr string, now time.Time) (*domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	t, err := scanTask(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("postgres: failed to lock task: %w", err)
	}

	if err := t.ApplyTransition(next, now); err != nil {
		return nil, err
	}
	if next == domain.TaskFailed {
		t.Error = taskErr
	}

	update := `UPDATE tasks SET status = $1, started_at = $2, completed_at = $3, error = $4
	           WHERE id = $5`
	if _, err := tx.Exec(ctx, update, t.Status, t.StartedAt, t.CompletedAt, nullStr(t.Error), t.ID); err != nil {
		return nil, fmt.Errorf("postgres: failed to update task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("postgres: failed to commit transition: %w", err)
	}
	return t, nil
}

// TaskCounts — агрегаты по статусам одним проходом (для сводки дашборда).
func (r *Repo) TaskCounts(ctx context.Context) (domain.TaskCounts, error) {
	var c domain.TaskCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*)
		FROM tasks`).Scan(
		&c.Pending, &c.InProgress, &c.Completed, &c.Failed, &c.Cancelled, &c.Total,
	)
	if err != nil {
		return domain.TaskCounts{}, fmt.Errorf("postgres: failed to count tasks: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var assigned, taskErr *string

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &assigned,
		&t.ScheduledFor, &t.CreatedAt, &t.StartedAt, &t.CompletedAt, &taskErr,
	)
	if err != nil {
		return nil, err
	}
	if assigned != nil {
		t.AssignedAgent = *assigned
	}
	if taskErr != nil {
		t.Error = *taskErr
	}
	return &t, nil
}

// nullStr маппит пустую строку в NULL.
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/dashboard-daddy/internal/activity"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// WriteBatch сохраняет пачку системных событий одним INSERT.
// Реализует activity.StorageInterface для батчингового рекордера.
func (r *Repo) WriteBatch(ctx context.Context, events []activity.Event) error {
	if len(events) == 0 {
		return nil
	}

	const numFields = 6
	var sb strings.Builder
	vals := make([]interface{}, 0, len(events)*numFields)

	for i, e := range events {
		p := i * numFields
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6)
		vals = append(vals,
			e.ID, e.Kind, nullStr(e.AgentID), nullStr(e.TaskID), nullStr(e.Details), e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO activity_log (id, kind, agent_id, task_id, details, timestamp) VALUES %s",
		strings.TrimSuffix(sb.String(), ","),
	)

	if _, err := r.pool.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: failed to write activity batch: %w", err)
	}
	return nil
}

// RecentTaskEntries — источник ленты: последние изменения задач.
func (r *Repo) RecentTaskEntries(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	query := `SELECT id, title, status, COALESCE(completed_at, COALESCE(started_at, created_at))
	          FROM tasks
	          ORDER BY COALESCE(completed_at, COALESCE(started_at, created_at)) DESC
	          LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query task activity: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var e domain.ActivityEntry
		var id, title string
		var st domain.TaskStatus
		if err := rows.Scan(&id, &title, &st, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan task activity: %w", err)
		}
		e.ID = "task-" + id
		e.Type = "task"
		e.Action = taskAction(st)
		e.Details = title
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return entries, nil
}

func taskAction(st domain.TaskStatus) string {
	switch st {
	case domain.TaskCompleted:
		return "Task completed"
	case domain.TaskFailed:
		return "Task failed"
	case domain.TaskCancelled:
		return "Task cancelled"
	case domain.TaskInProgress:
		return "Task started"
	}
	return "Task created"
}

// RecentContactEntries — источник ленты: недавно тронутые контакты.
func (r *Repo) RecentContactEntries(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	query := `SELECT id, name, COALESCE(company, ''), updated_at
	          FROM contacts ORDER BY updated_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query contact activity: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var e domain.ActivityEntry
		var id, name, company string
		if err := rows.Scan(&id, &name, &company, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan contact activity: %w", err)
		}
		e.ID = "contact-" + id
		e.Type = "contact"
		e.Action = "Contact updated"
		e.Details = name
		if company != "" {
			e.Details = name + " (" + company + ")"
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return entries, nil
}

// RecentSystemEntries — источник ленты: системные события из рекордера.
func (r *Repo) RecentSystemEntries(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	query := `SELECT id, kind, COALESCE(agent_id, ''), COALESCE(details, ''), timestamp
	          FROM activity_log ORDER BY timestamp DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query system activity: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var e domain.ActivityEntry
		var id, kind, agentID, details string
		if err := rows.Scan(&id, &kind, &agentID, &details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan system activity: %w", err)
		}
		e.ID = "sys-" + id
		e.Type = "system"
		e.Action = kind
		e.Details = details
		if agentID != "" && details == "" {
			e.Details = agentID
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return entries, nil
}

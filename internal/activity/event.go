package activity

import "time"

// Виды системных событий, попадающих в activity_log.
const (
	KindAgentStarted   = "agent_started"
	KindAgentStopped   = "agent_stopped"
	KindAgentError     = "agent_error"
	KindTaskCreated    = "task_created"
	KindTaskTransition = "task_transition"
	KindRegistryReload = "registry_reload"
)

// Event — системное событие консоли. В отличие от ActivityEntry это
// персистентная запись: источник "system" для ленты активности.
type Event struct {
	ID        string    `json:"id"` // UUID события
	Kind      string    `json:"kind"`
	AgentID   string    `json:"agent_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

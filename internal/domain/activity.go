package domain

import "time"

// ActivityEntry — производная проекция без собственной персистентной идентичности.
// Синтезируется на каждый запрос слиянием разнородных источников.
type ActivityEntry struct {
	ID        string    `json:"id"` // Префиксован источником: task-, contact-, call-, sys-
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"` // task | contact | call | system
}

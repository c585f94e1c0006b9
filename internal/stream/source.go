package stream

import "time"

// Message — одно событие в потоке вывода агента, формат SSE-пейлоада.
type Message struct {
	Type      string    `json:"type"` // stdout | stderr | system | error
	AgentID   string    `json:"agentId"`
	Data      string    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level,omitempty"` // info | warn | error | debug
}

// OutputSource — подключаемый источник вывода агента. Реальный пайп
// stdout/stderr процесса реализует тот же контракт; здесь поставляется
// детерминированный сценарный источник.
type OutputSource interface {
	// Next возвращает событие номер seq для агента. Чистая функция от (agentID, seq).
	Next(agentID string, seq int) Message
}

type scriptLine struct {
	typ   string
	data  string
	level string
}

// ScriptSource крутит фиксированный сценарий строк по кругу.
// Плейсхолдер вместо реального вывода процесса: данные стабильны и тестируемы.
type ScriptSource struct {
	lines []scriptLine
	now   func() time.Time
}

func NewScriptSource() *ScriptSource {
	return &ScriptSource{
		lines: []scriptLine{
			{"stdout", "\x1b[32m[Agent]\x1b[0m Initializing...", "info"},
			{"stdout", "\x1b[34m[Info]\x1b[0m Loading configuration", "info"},
			{"stdout", "\x1b[33m[Warn]\x1b[0m Cache miss, rebuilding index", "warn"},
			{"stderr", "\x1b[31m[Error]\x1b[0m Connection timeout (retrying...)", "error"},
			{"stdout", "\x1b[32m[Success]\x1b[0m Connected to backend", "info"},
			{"stdout", "Processing task queue...", "info"},
			{"stdout", "\x1b[36m[Debug]\x1b[0m Memory usage: 128MB", "debug"},
		},
		now: time.Now,
	}
}

func (s *ScriptSource) Next(agentID string, seq int) Message {
	line := s.lines[seq%len(s.lines)]
	return Message{
		Type:      line.typ,
		AgentID:   agentID,
		Data:      line.data,
		Timestamp: s.now(),
		Level:     line.level,
	}
}

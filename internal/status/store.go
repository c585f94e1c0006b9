package status

import (
	"sync"
	"time"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// Store — мутабельное рантайм-состояние агентов. Живет только в памяти процесса:
// рестарт молча сбрасывает всех в stopped, durability тут не обещается.
// Инстанс инжектится в сервисы, чтобы тесты поднимали изолированные сторы.
type Store struct {
	mu     sync.RWMutex
	agents map[string]domain.RuntimeStatus
	now    func() time.Time // Подменяется в тестах
}

func NewStore() *Store {
	return &Store{
		agents: make(map[string]domain.RuntimeStatus),
		now:    time.Now,
	}
}

// Get возвращает снимок состояния. Для ненаблюдавшегося агента — {status: stopped},
// не ошибка и не nil.
func (s *Store) Get(agentID string) domain.RuntimeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.agents[agentID]; ok {
		return st
	}
	return domain.RuntimeStatus{Status: domain.StatusStopped}
}

// Init лениво инициализирует запись в stopped, не трогая уже существующую.
// Побочный эффект листинга; идемпотентен.
func (s *Store) Init(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[agentID]; !ok {
		s.agents[agentID] = domain.RuntimeStatus{Status: domain.StatusStopped}
	}
}

// Set мержит обновление в существующее состояние. nil для jobID/lastErr означает
// «оставить как было» — merge-семантика, не перезапись. Переход в running штампует
// StartedAt (только вперед, откатов нет); переход в stopped снимает привязку к job
// (инвариант: CurrentJobID не бывает при stopped). LastError липкий до перезаписи.
func (s *Store) Set(agentID string, st domain.AgentStatus, jobID, lastErr *string) domain.RuntimeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.agents[agentID]
	if !ok {
		cur = domain.RuntimeStatus{Status: domain.StatusStopped}
	}

	cur.Status = st
	if jobID != nil {
		cur.CurrentJobID = *jobID
	}
	if lastErr != nil {
		cur.LastError = *lastErr
	}
	if st == domain.StatusRunning {
		ts := s.now()
		cur.StartedAt = &ts
	}
	if st == domain.StatusStopped {
		cur.CurrentJobID = ""
	}

	s.agents[agentID] = cur
	return cur
}

// RunningCount — сколько агентов сейчас в running (для сводки дашборда).
func (s *Store) RunningCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, st := range s.agents {
		if st.Status == domain.StatusRunning {
			n++
		}
	}
	return n
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound — запрошенный agent/task/record не существует (404).
	ErrNotFound = errors.New("not found")

	// ErrAgentDisabled — агент выключен в реестре и не может покинуть stopped.
	ErrAgentDisabled = errors.New("agent is disabled")

	// ErrAgentBusy — старт при уже идущем запуске/работе (409).
	ErrAgentBusy = errors.New("agent is already running")

	// ErrAgentNotRunning — стоп для агента, который и так остановлен.
	ErrAgentNotRunning = errors.New("agent is not running")
)

// ConfigLoadError — ни один кандидатный путь реестра не дал валидного конфига.
// Фатальна для всего, что зависит от реестра: наружу только 5xx, никаких
// частичных успехов.
type ConfigLoadError struct {
	Paths []string
	Cause error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("failed to load agents config from any known path: [%s]",
		strings.Join(e.Paths, ", "))
}

func (e *ConfigLoadError) Unwrap() error { return e.Cause }

// UpstreamError — отказ делегированного хранилища или стороннего API.
// Там, где есть осмысленный fallback (лента активности, сводка), деградируем
// мягко; где нет (создание задачи) — отдаем наружу как 502.
type UpstreamError struct {
	Source string
	Cause  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Source, e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

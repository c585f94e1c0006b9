package domain

import "time"

type AgentStatus string

const (
	StatusStopped  AgentStatus = "stopped"  // Дефолт: агент не наблюдался или остановлен
	StatusStarting AgentStatus = "starting" // Запуск инициирован, job уже привязан
	StatusRunning  AgentStatus = "running"  // Работает, StartedAt проставлен
	StatusStopping AgentStatus = "stopping" // Остановка инициирована
	StatusError    AgentStatus = "error"    // Последняя операция завершилась ошибкой
)

// Valid сообщает, входит ли значение в известный набор статусов.
func (s AgentStatus) Valid() bool {
	switch s {
	case StatusStopped, StatusStarting, StatusRunning, StatusStopping, StatusError:
		return true
	}
	return false
}

// Busy — агент сейчас привязан к задаче (job).
// Инвариант: CurrentJobID допустим только в этих статусах.
func (s AgentStatus) Busy() bool {
	return s == StatusStarting || s == StatusRunning || s == StatusStopping
}

// AgentFeatures — информационные флаги возможностей из реестра. Ядром не проверяются.
type AgentFeatures struct {
	ParallelExecution bool `json:"parallelExecution"`
	AutonomousMode    bool `json:"autonomousMode"`
	GitIntegration    bool `json:"gitIntegration"`
	MCPSupport        bool `json:"mcpSupport,omitempty"`
}

// AgentDefinition — статическое определение агента из реестра (agents.json).
// Неизменяемо после загрузки; command/args для ядра — непрозрачные строки.
type AgentDefinition struct {
	Name        string        `json:"name"`
	Enabled     bool          `json:"enabled"`
	Command     string        `json:"command"`
	Args        []string      `json:"args"`
	Description string        `json:"description"`
	EnvRequired []string      `json:"envRequired"`
	Features    AgentFeatures `json:"features"`
}

// RuntimeStatus — мутабельное рантайм-состояние агента, живет только в памяти процесса.
type RuntimeStatus struct {
	Status       AgentStatus `json:"status"`
	CurrentJobID string      `json:"currentJobId,omitempty"`
	StartedAt    *time.Time  `json:"startedAt,omitempty"`
	LastError    string      `json:"lastError,omitempty"`
}

// AgentWithStatus — внешнее представление: определение из реестра + рантайм-снимок.
type AgentWithStatus struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Enabled     bool          `json:"enabled"`
	Status      AgentStatus   `json:"status"`
	Command     string        `json:"command"`
	Args        []string      `json:"args"`
	EnvRequired []string      `json:"envRequired"`
	Features    AgentFeatures `json:"features"`

	CurrentJobID string     `json:"currentJobId,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
}

// RegistryDefaults — глобальные настройки из реестра.
type RegistryDefaults struct {
	PreferredAgent       string `json:"preferredAgent"`
	ParallelLimit        int    `json:"parallelLimit"`
	AutoCreatePR         bool   `json:"autoCreatePR"`
	WorktreeEnabled      bool   `json:"worktreeEnabled"`
	WorktreeCleanupHours int    `json:"worktreeCleanupHours"`
}

// RemoteSettings — параметры удаленного доступа (только транслируются наружу).
type RemoteSettings struct {
	SSHEnabled      bool   `json:"sshEnabled"`
	SSHHost         string `json:"sshHost"`
	SSHUser         string `json:"sshUser"`
	EditorURLScheme string `json:"editorUrlScheme"`
}

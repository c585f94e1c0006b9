package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// Registry — авторитетный набор известных агентов и глобальные дефолты.
// Порядок агентов — порядок ключей в agents.json (Go-мапа его не хранит,
// поэтому ведем отдельный срез).
type Registry struct {
	Agents   map[string]domain.AgentDefinition
	Order    []string
	Defaults domain.RegistryDefaults
	Remote   domain.RemoteSettings
}

// Definition возвращает определение агента по id.
func (r *Registry) Definition(id string) (domain.AgentDefinition, bool) {
	def, ok := r.Agents[id]
	return def, ok
}

// Loader читает agents.json по списку кандидатных путей и кэширует результат
// с ограниченным TTL. Инстанс инжектится в сервисы — никаких пакетных синглтонов.
type Loader struct {
	paths []string
	ttl   time.Duration

	mu       sync.Mutex
	cached   *Registry
	loadedAt time.Time

	logger *zap.Logger
	now    func() time.Time // Подменяется в тестах
}

func NewLoader(paths []string, ttl time.Duration, logger *zap.Logger) *Loader {
	return &Loader{
		paths:  paths,
		ttl:    ttl,
		logger: logger.Named("registry"),
		now:    time.Now,
	}
}

// Load возвращает реестр: из кэша, пока TTL не истек, иначе перечитывает файл.
// Если ни один путь не дал валидного конфига — *domain.ConfigLoadError,
// частичный или пустой успех не допускается.
func (l *Loader) Load() (*Registry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil && l.now().Sub(l.loadedAt) < l.ttl {
		return l.cached, nil
	}

	var lastErr error
	for _, path := range l.paths {
		content, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		reg, err := parseRegistry(content)
		if err != nil {
			l.logger.Warn("invalid registry file, trying next candidate",
				zap.String("path", path), zap.Error(err))
			lastErr = err
			continue
		}
		l.cached = reg
		l.loadedAt = l.now()
		l.logger.Debug("registry loaded",
			zap.String("path", path), zap.Int("agents", len(reg.Order)))
		return reg, nil
	}

	return nil, &domain.ConfigLoadError{Paths: l.paths, Cause: lastErr}
}

// Invalidate сбрасывает кэш: следующий Load перечитает файл.
// Вызывается после внешней правки agents.json.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.loadedAt = time.Time{}
	l.mu.Unlock()
}

// configFile — сырой формат agents.json.
type configFile struct {
	Agents   json.RawMessage         `json:"agents"`
	Defaults domain.RegistryDefaults `json:"defaults"`
	Remote   domain.RemoteSettings   `json:"remote"`
}

func parseRegistry(content []byte) (*Registry, error) {
	var file configFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("registry: malformed json: %w", err)
	}
	if len(file.Agents) == 0 {
		return nil, fmt.Errorf("registry: missing agents section")
	}

	agents := make(map[string]domain.AgentDefinition)
	if err := json.Unmarshal(file.Agents, &agents); err != nil {
		return nil, fmt.Errorf("registry: malformed agents section: %w", err)
	}

	order, err := objectKeyOrder(file.Agents)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	return &Registry{
		Agents:   agents,
		Order:    order,
		Defaults: file.Defaults,
		Remote:   file.Remote,
	}, nil
}

// objectKeyOrder вычитывает ключи верхнего уровня JSON-объекта в порядке записи.
func objectKeyOrder(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("agents section is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token in agents section")
		}
		keys = append(keys, key)

		// Пропускаем значение целиком
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

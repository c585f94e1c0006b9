package infra

// RedisNamespace — базовый префикс для изоляции данных проекта в Redis.
const RedisNamespace = "dashdaddy"

// Каналы Pub/Sub (события между репликами консоли).
const (
	// RedisChanAgentStatus — трансляция переходов статуса, формат "agent_id:status".
	RedisChanAgentStatus = RedisNamespace + ":agents:status-signal"

	// RedisChanRegistryInvalidate — сигнал сброса кэша реестра после правки agents.json.
	RedisChanRegistryInvalidate = RedisNamespace + ":registry:invalidate"
)

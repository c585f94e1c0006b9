package domain

// DashboardSummary — агрегированная сводка для главного экрана.
// Деградация при сбое БД: нули, а не ошибка.
type DashboardSummary struct {
	Tasks  TaskCounts `json:"tasks"`
	Agents FleetStats `json:"agents"`
}

type TaskCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
	Total      int64 `json:"total"`
}

type FleetStats struct {
	Known   int `json:"known"`   // Всего агентов в реестре
	Enabled int `json:"enabled"` // Включены в реестре
	Running int `json:"running"` // status == running по статус-стору
}

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: длительность обработки HTTP-запроса
	RequestDuration *prometheus.HistogramVec

	// Traffic: общее кол-во запросов по роутам
	TotalRequests *prometheus.CounterVec

	// Errors: ответы 4xx/5xx по коду
	ErrorTotal *prometheus.CounterVec

	// Saturation: открытые SSE-потоки
	ActiveStreams prometheus.Gauge

	// Backpressure: заполненность буфера журнала активности
	ActivityBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - без регистратора метрики живут в изолированном реестре
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashdaddy_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashdaddy_requests_total",
			Help: "Total number of processed HTTP requests.",
		}, []string{"route", "method"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashdaddy_errors_total",
			Help: "Total number of error responses by status code.",
		}, []string{"status"}),

		ActiveStreams: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dashdaddy_active_output_streams",
			Help: "Number of currently attached SSE output streams.",
		}),

		ActivityBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dashdaddy_activity_buffer_utilization",
			Help: "Current number of events in the activity recorder buffer.",
		}),
	}
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	registry    *prometheus.Registry
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec

	BookingAttemptsTotal   *prometheus.CounterVec
	ArbitrationWaitSeconds *prometheus.HistogramVec
	StatusTransitionsTotal *prometheus.CounterVec
}

// New создает и регистрирует метрики в собственном реестре
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry:    prometheus.NewRegistry(),
		serviceName: serviceName,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),

		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),

		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		BookingAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_attempts_total",
			Help: "Booking attempts by outcome",
		}, []string{"service", "outcome"}),

		ArbitrationWaitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_arbitration_wait_seconds",
			Help:    "Time spent waiting for the per-barber arbitration lock",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5},
		}, []string{"service"}),

		StatusTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_status_transitions_total",
			Help: "Appointment status transitions by target status and result",
		}, []string{"service", "status", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.BookingAttemptsTotal,
		m.ArbitrationWaitSeconds,
		m.StatusTransitionsTotal,
	)

	return m
}

// Handler отдает метрики в формате prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest учитывает обработанный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(d.Seconds())
}

// ObserveBooking учитывает исход попытки бронирования
// Методы Observe* допускают nil-получатель, метрики тогда не пишутся
func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.BookingAttemptsTotal.WithLabelValues(m.serviceName, outcome).Inc()
}

// ObserveArbitrationWait учитывает время ожидания блокировки мастера
func (m *Metrics) ObserveArbitrationWait(d time.Duration) {
	if m == nil {
		return
	}
	m.ArbitrationWaitSeconds.WithLabelValues(m.serviceName).Observe(d.Seconds())
}

// ObserveTransition учитывает попытку смены статуса записи
func (m *Metrics) ObserveTransition(status, result string) {
	if m == nil {
		return
	}
	m.StatusTransitionsTotal.WithLabelValues(m.serviceName, status, result).Inc()
}

package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the collectors the API
// updates.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	attendanceMarks *prometheus.CounterVec
	reportJobs      *prometheus.CounterVec
	localMode       prometheus.Gauge
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	attendanceMarks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_marks_total",
		Help: "Ledger mutations by kind (check_in, check_out, absent)",
	}, []string{"kind"})

	reportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_jobs_total",
		Help: "Report jobs by terminal status",
	}, []string{"status"})

	localMode := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "local_mode",
		Help: "1 when serving from the in-memory fallback store",
	})

	registry.MustRegister(requestDuration, requestTotal, attendanceMarks, reportJobs, localMode)
	registry.MustRegister(collectors.NewGoCollector())

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		attendanceMarks: attendanceMarks,
		reportJobs:      reportJobs,
		localMode:       localMode,
	}
}

// Handler serves the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveRequest records one HTTP request.
func (s *MetricsService) ObserveRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// CountAttendanceMark records a ledger mutation.
func (s *MetricsService) CountAttendanceMark(kind string) {
	s.attendanceMarks.WithLabelValues(kind).Inc()
}

// CountReportJob records a report job reaching a terminal status.
func (s *MetricsService) CountReportJob(status string) {
	s.reportJobs.WithLabelValues(status).Inc()
}

// SetLocalMode flags whether the service runs on the in-memory store.
func (s *MetricsService) SetLocalMode(local bool) {
	if local {
		s.localMode.Set(1)
		return
	}
	s.localMode.Set(0)
}

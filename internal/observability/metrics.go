package observability

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	runs            *CounterVec
	runDuration     *HistogramVec
	stageDuration   *HistogramVec
	externalBatches *CounterVec
	rowsGenerated   *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init installs the process-wide collector when enabled. Later calls return
// the first instance.
func Init(enabled bool) *Metrics {
	if !enabled {
		return instance
	}
	initOnce.Do(func() {
		instance = NewMetrics()
	})
	return instance
}

// Current is nil until Init ran with metrics enabled; every method on a nil
// *Metrics is a no-op.
func Current() *Metrics {
	return instance
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("ds_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"ds_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("ds_api_inflight_requests", "In-flight API requests."),
		runs:        NewCounterVec("ds_generation_runs_total", "Generation runs by final status.", []string{"status"}),
		runDuration: NewHistogramVec(
			"ds_generation_run_duration_seconds",
			"Wall time of a generation run.",
			[]string{"status"},
			[]float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		),
		stageDuration: NewHistogramVec(
			"ds_generation_stage_duration_seconds",
			"Duration of each generation stage.",
			[]string{"stage", "status"},
			[]float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		),
		externalBatches: NewCounterVec("ds_external_batches_total", "External generation calls by operation/outcome.", []string{"op", "outcome"}),
		rowsGenerated:   NewCounterVec("ds_rows_generated_total", "Rows produced per table.", []string{"table"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.runs,
		m.runDuration,
		m.stageDuration,
		m.externalBatches,
		m.rowsGenerated,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveRun records a finished generation run. status is "succeeded",
// "failed" or "canceled".
func (m *Metrics) ObserveRun(status string, dur time.Duration) {
	if m == nil {
		return
	}
	status = strings.TrimSpace(status)
	m.runs.Inc(status)
	m.runDuration.Observe(dur.Seconds(), status)
}

func (m *Metrics) ObserveStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Observe(dur.Seconds(), stage, status)
}

// ObserveExternalBatch counts one call to the text service after retries.
// outcome is "ok" or "failed".
func (m *Metrics) ObserveExternalBatch(op, outcome string) {
	if m == nil {
		return
	}
	m.externalBatches.Inc(op, outcome)
}

func (m *Metrics) AddRows(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsGenerated.Add(float64(n), table)
}

// Package metrics counts API traffic of the client in a private Prometheus
// registry. The counts back the "stats" command.
package metrics

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	defaultNamespace = "toilettracker"
	defaultSubsystem = "client"

	// statusError labels requests that got no response.
	statusError = "error"
)

type Option func(*Manager)

func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry registers the metrics on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager implements client.Observer.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: defaultSubsystem,
		Name:      "api_requests_total",
		Help:      "API requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status"})

	m.latency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: defaultSubsystem,
		Name:      "api_request_duration_seconds",
		Help:      "API request latency in seconds",
		Buckets:   m.buckets,
	}, []string{"endpoint"})

	m.refreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: defaultSubsystem,
		Name:      "refreshes_total",
		Help:      "Data refreshes by result",
	}, []string{"result"})

	return m
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) ObserveRequest(endpoint, method string, status int, elapsed time.Duration) {
	code := statusError
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(endpoint, method, code).Inc()
	m.latency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveRefresh counts one refresh. An empty result is recorded as "ok".
func (m *Manager) ObserveRefresh(result string) {
	if result == "" {
		result = "ok"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// EndpointStats aggregates the request counter for one endpoint. Errors are
// requests with no response or a status of 400 and above.
type EndpointStats struct {
	Endpoint   string
	Requests   int
	Errors     int
	AvgLatency time.Duration
}

type Summary struct {
	Endpoints []EndpointStats
	Refreshes map[string]int
}

// Summary gathers the registry and returns per-endpoint totals sorted by
// endpoint name.
func (m *Manager) Summary() (Summary, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Summary{}, fmt.Errorf("gather metrics: %w", err)
	}

	byEndpoint := make(map[string]*EndpointStats)
	latencySum := make(map[string]float64)
	sum := Summary{Refreshes: make(map[string]int)}

	for _, mf := range families {
		switch mf.GetName() {
		case prometheus.BuildFQName(m.namespace, defaultSubsystem, "api_requests_total"):
			for _, metric := range mf.GetMetric() {
				labels := labelMap(metric)
				st := stats(byEndpoint, labels["endpoint"])
				n := int(metric.GetCounter().GetValue())
				st.Requests += n
				if isErrorStatus(labels["status"]) {
					st.Errors += n
				}
			}
		case prometheus.BuildFQName(m.namespace, defaultSubsystem, "api_request_duration_seconds"):
			for _, metric := range mf.GetMetric() {
				latencySum[labelMap(metric)["endpoint"]] += metric.GetHistogram().GetSampleSum()
			}
		case prometheus.BuildFQName(m.namespace, defaultSubsystem, "refreshes_total"):
			for _, metric := range mf.GetMetric() {
				sum.Refreshes[labelMap(metric)["result"]] += int(metric.GetCounter().GetValue())
			}
		}
	}

	for name, st := range byEndpoint {
		if st.Requests > 0 {
			st.AvgLatency = time.Duration(latencySum[name] / float64(st.Requests) * float64(time.Second))
		}
		sum.Endpoints = append(sum.Endpoints, *st)
	}
	slices.SortFunc(sum.Endpoints, func(a, b EndpointStats) int {
		if a.Endpoint < b.Endpoint {
			return -1
		}
		if a.Endpoint > b.Endpoint {
			return 1
		}
		return 0
	})
	return sum, nil
}

func stats(m map[string]*EndpointStats, endpoint string) *EndpointStats {
	st, ok := m[endpoint]
	if !ok {
		st = &EndpointStats{Endpoint: endpoint}
		m[endpoint] = st
	}
	return st
}

func labelMap(metric *dto.Metric) map[string]string {
	out := make(map[string]string, len(metric.GetLabel()))
	for _, lp := range metric.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func isErrorStatus(status string) bool {
	if status == statusError {
		return true
	}
	code, err := strconv.Atoi(status)
	return err != nil || code >= 400
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"strconv"
	"time"
)

const namespace = "portfolio"

// 通知结果
const (
	NotifyEnqueued      = "enqueued"
	NotifyEnqueueFailed = "enqueue_failed"
	NotifySent          = "sent"
	NotifySendFailed    = "send_failed"
	NotifySkipped       = "skipped"
)

type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	Notifications       *prometheus.CounterVec
	ProjectViews        prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Contact notifications by result.",
		}, []string{"result"}),
		ProjectViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "project_views_total",
			Help:      "Project detail views served.",
		}),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPRequestDuration, m.Notifications, m.ProjectViews)

	return m
}

// 以下方法允许 m 为 nil，方便在测试中省略指标

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveProjectView() {
	if m == nil {
		return
	}
	m.ProjectViews.Inc()
}

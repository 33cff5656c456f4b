package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
	"github.com/wolfman30/mindfulu-platform/internal/chat"
)

const namespace = "mindfulu"

// BookingMetrics counts wizard transitions. It implements booking.TransitionObserver.
type BookingMetrics struct {
	transitions   *prometheus.CounterVec
	confirmations prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking wizard operations by outcome",
		}, []string{"op", "result"}),
		confirmations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "confirmations_total",
			Help:      "Bookings that reached the confirmed step",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.confirmations)
	return m
}

// ObserveTransition records one wizard operation. Rejections are expected
// user mistakes and are labelled apart from collaborator failures.
func (m *BookingMetrics) ObserveTransition(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case booking.IsRejection(err):
		result = "rejected"
	default:
		result = "error"
	}
	m.transitions.WithLabelValues(op, result).Inc()
	if op == "submit_contact" && err == nil {
		m.confirmations.Inc()
	}
}

// ChatMetrics tracks support chat traffic. It implements chat.Observer and
// chat.SessionGauge, so a manager keeps the live session gauge current.
type ChatMetrics struct {
	messages       *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	replyLatency   prometheus.Histogram
	replyFailures  prometheus.Counter
	activeSessions prometheus.Gauge
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Transcript messages appended, by author",
		}, []string{"author"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "rejected_sends_total",
			Help:      "Sends refused before touching the transcript",
		}, []string{"reason"}),
		replyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "reply_latency_seconds",
			Help:      "Time from send to assistant reply",
			Buckets:   []float64{0.5, 1, 1.5, 2, 2.5, 3, 5, 10, 30},
		}),
		replyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "reply_failures_total",
			Help:      "Replies that could not be generated",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "active_sessions",
			Help:      "Live chat sessions",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messages, m.rejected, m.replyLatency, m.replyFailures, m.activeSessions)
	return m
}

func (m *ChatMetrics) ObserveMessage(author chat.Author) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(string(author)).Inc()
}

func (m *ChatMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *ChatMetrics) ObserveReply(latency time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.replyFailures.Inc()
		return
	}
	m.replyLatency.Observe(latency.Seconds())
}

func (m *ChatMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// HTTPMetrics measures API requests by route pattern.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var (
	_ chat.Observer     = (*ChatMetrics)(nil)
	_ chat.SessionGauge = (*ChatMetrics)(nil)
)

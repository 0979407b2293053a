package observability

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the lifecycle of a service operation.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// ChallengeMetrics adds the game-specific counters to OperationMetrics.
type ChallengeMetrics interface {
	OperationMetrics
	RecordVotesCast(ctx context.Context, challengeID string, count int)
	RecordStateTransition(ctx context.Context, from, to string)
	RecordEventHandled(ctx context.Context, topic string)
}

type prometheusMetrics struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	votes       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	events      *prometheus.CounterVec
}

// NewPrometheusMetrics registers the challenge metrics on reg. Collectors that
// are already registered are reused, so building the metrics twice against
// the same registry is safe.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) ChallengeMetrics {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Service operations that completed without an infrastructure error.",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an infrastructure error or panicked.",
		}, []string{"service", "operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Votes accepted per challenge.",
		}, []string{"challenge_id"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Challenge state transitions.",
		}, []string{"from", "to"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_handled_total",
			Help:      "Challenge events consumed by in-process subscribers.",
		}, []string{"topic"}),
	}

	m.attempts = register(reg, m.attempts)
	m.successes = register(reg, m.successes)
	m.failures = register(reg, m.failures)
	m.durations = register(reg, m.durations)
	m.votes = register(reg, m.votes)
	m.transitions = register(reg, m.transitions)
	m.events = register(reg, m.events)

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordVotesCast(_ context.Context, challengeID string, count int) {
	m.votes.WithLabelValues(challengeID).Add(float64(count))
}

func (m *prometheusMetrics) RecordStateTransition(_ context.Context, from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *prometheusMetrics) RecordEventHandled(_ context.Context, topic string) {
	m.events.WithLabelValues(topic).Inc()
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() ChallengeMetrics { return &NoOpMetrics{} }

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordVotesCast(context.Context, string, int)                           {}
func (*NoOpMetrics) RecordStateTransition(context.Context, string, string)                  {}
func (*NoOpMetrics) RecordEventHandled(context.Context, string)                             {}

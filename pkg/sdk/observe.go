package survivor

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// sdkMetrics are the client-side collectors. Labels: operation is the
// entity name ("adventurers", ...) or "ping"; status is "ok" or "error".
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	records    *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survivor",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total client operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "survivor",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		records: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "survivor",
			Subsystem: "sdk",
			Name:      "records_returned",
			Help:      "Entities returned per successful query.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.records); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers *c, or points *c at an identical collector that
// is already registered (two clients sharing one registry).
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("survivor: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("survivor: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records client operations. A nil observer, or one without a
// logger or registry, is a no-op for that half.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one operation. records is the number of entities
// returned, or -1 for operations that return none.
func (o *observer) observe(op string, start time.Time, records int, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if m := o.metrics; m != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.operations.WithLabelValues(op, status).Inc()
		m.duration.WithLabelValues(op).Observe(dur.Seconds())
		if err == nil && records >= 0 {
			m.records.WithLabelValues(op).Observe(float64(records))
		}
	}

	if o.logger == nil {
		return
	}
	fields := []zap.Field{zap.String("op", op), zap.Duration("duration", dur)}
	if err != nil {
		o.logger.Warn("survivor operation failed", append(fields, zap.Error(err))...)
		return
	}
	if records >= 0 {
		fields = append(fields, zap.Int("records", records))
	}
	o.logger.Debug("survivor operation completed", fields...)
}

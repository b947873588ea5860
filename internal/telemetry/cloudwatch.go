// Package telemetry publishes service metrics to AWS CloudWatch.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"raincheck/internal/types"
)

// maxDatumsPerCall is the PutMetricData limit on datums per request.
const maxDatumsPerCall = 1000

// defaultBatchSize keeps each request well under the payload size limit.
const defaultBatchSize = 500

// CloudWatchClient is the subset of the CloudWatch SDK used here.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers datums in memory and sends them in batches.
// Recording never blocks on the network; Flush or Run does the sending.
//
// Metrics emitted:
//   - APIRequestCount, APILatency: Dims {Method, Endpoint, Status}
//   - ForecastLookup: Dims {Result} (hit, miss, failure)
//   - RoutesAnalyzed: no dims
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
	clock     types.Clock
	batchSize int

	mu      sync.Mutex
	pending []cwtypes.MetricDatum
}

// Option configures a CloudWatchMetrics.
type Option func(*CloudWatchMetrics)

// WithNamespace overrides types.MetricNamespace.
func WithNamespace(ns string) Option {
	return func(m *CloudWatchMetrics) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithBatchSize sets how many datums go into one PutMetricData call.
func WithBatchSize(n int) Option {
	return func(m *CloudWatchMetrics) {
		if n > 0 && n <= maxDatumsPerCall {
			m.batchSize = n
		}
	}
}

// NewCloudWatchMetrics creates a buffered recorder.
func NewCloudWatchMetrics(client CloudWatchClient, logger *slog.Logger, clock types.Clock, opts ...Option) *CloudWatchMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	m := &CloudWatchMetrics{
		client:    client,
		namespace: types.MetricNamespace,
		logger:    logger,
		clock:     clock,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordRequest implements core.MetricsCollector.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		dim(types.DimMethod, method),
		dim(types.DimEndpoint, endpoint),
		dim(types.DimStatus, status),
	}
	m.add(
		m.datum(types.MetricAPIRequestCount, 1, cwtypes.StandardUnitCount, dims),
		m.datum(types.MetricAPILatency, float64(duration.Milliseconds()), cwtypes.StandardUnitMilliseconds, dims),
	)
}

// RecordForecastLookup implements forecasts.LookupRecorder.
func (m *CloudWatchMetrics) RecordForecastLookup(_ context.Context, result string) {
	m.add(m.datum(types.MetricForecastLookup, 1, cwtypes.StandardUnitCount,
		[]cwtypes.Dimension{dim(types.DimResult, result)}))
}

// RecordRoutesAnalyzed counts routes scored by one plan request.
func (m *CloudWatchMetrics) RecordRoutesAnalyzed(_ context.Context, n int) {
	m.add(m.datum(types.MetricRoutesAnalyzed, float64(n), cwtypes.StandardUnitCount, nil))
}

// Pending returns the number of buffered datums.
func (m *CloudWatchMetrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush sends all buffered datums. Batches that fail are dropped after
// logging; the first error is returned.
func (m *CloudWatchMetrics) Flush(ctx context.Context) error {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	var firstErr error
	for start := 0; start < len(batch); start += m.batchSize {
		end := min(start+m.batchSize, len(batch))
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			m.logger.Error("failed to publish metrics",
				"error", err.Error(),
				"datums", end-start,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Run flushes every interval until ctx is cancelled, then flushes once more
// with a detached context.
func (m *CloudWatchMetrics) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = m.Flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			_ = m.Flush(ctx)
		}
	}
}

func (m *CloudWatchMetrics) add(datums ...cwtypes.MetricDatum) {
	m.mu.Lock()
	m.pending = append(m.pending, datums...)
	m.mu.Unlock()
}

func (m *CloudWatchMetrics) datum(name string, value float64, unit cwtypes.StandardUnit, dims []cwtypes.Dimension) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.clock.Now()),
		Dimensions: dims,
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

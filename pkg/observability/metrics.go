package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes application metrics to CloudWatch. Emission is best
// effort: a metrics outage must never fail a request, so errors are
// logged and swallowed.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a metrics publisher under the given namespace
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordMatchingRun emits the standard datapoints for one engine run
func (m *Metrics) RecordMatchingRun(ctx context.Context, poolSize, squadCount int, duration time.Duration) {
	m.put(ctx,
		datum("MatchingRuns", 1, types.StandardUnitCount),
		datum("MatchingPoolSize", float64(poolSize), types.StandardUnitCount),
		datum("MatchingSquadsProposed", float64(squadCount), types.StandardUnitCount),
		datum("MatchingDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds),
	)
}

// Increment emits a count-of-one datapoint
func (m *Metrics) Increment(ctx context.Context, name string) {
	m.put(ctx, datum(name, 1, types.StandardUnitCount))
}

// RecordDuration emits a millisecond timing datapoint
func (m *Metrics) RecordDuration(ctx context.Context, name string, duration time.Duration) {
	m.put(ctx, datum(name, float64(duration.Milliseconds()), types.StandardUnitMilliseconds))
}

func (m *Metrics) put(ctx context.Context, data ...types.MetricDatum) {
	if m == nil || m.client == nil {
		return
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil && m.logger != nil {
		m.logger.Warn("Failed to publish metrics", zap.Error(err))
	}
}

func datum(name string, value float64, unit types.StandardUnit) types.MetricDatum {
	now := time.Now()
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  &now,
	}
}

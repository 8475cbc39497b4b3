package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	submissionsReceived  metric.Int64Counter
	submissionsRejected  metric.Int64Counter
	submissionsRateLimit metric.Int64Counter
	emailsSent           metric.Int64Counter
	emailRetries         metric.Int64Counter
	emailFailures        metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.submissionsReceived, err = meter.Int64Counter(
		"application_service.submissions.received",
		metric.WithDescription("Total number of submissions that passed validation"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.submissionsRejected, err = meter.Int64Counter(
		"application_service.submissions.rejected",
		metric.WithDescription("Total number of submissions rejected by validation"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.submissionsRateLimit, err = meter.Int64Counter(
		"application_service.submissions.rate_limited",
		metric.WithDescription("Total number of submissions rejected by the rate limiter"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.emailsSent, err = meter.Int64Counter(
		"application_service.emails.sent",
		metric.WithDescription("Total number of application emails delivered"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, err
	}

	m.emailRetries, err = meter.Int64Counter(
		"application_service.emails.retried",
		metric.WithDescription("Total number of delivery retries after a DNS failure"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	m.emailFailures, err = meter.Int64Counter(
		"application_service.emails.failed",
		metric.WithDescription("Total number of submissions whose notification email failed"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordSubmissionReceived(ctx context.Context) {
	if m != nil && m.submissionsReceived != nil {
		m.submissionsReceived.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSubmissionRejected(ctx context.Context) {
	if m != nil && m.submissionsRejected != nil {
		m.submissionsRejected.Add(ctx, 1)
	}
}

func (m *Metrics) RecordRateLimited(ctx context.Context) {
	if m != nil && m.submissionsRateLimit != nil {
		m.submissionsRateLimit.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEmailSent(ctx context.Context) {
	if m != nil && m.emailsSent != nil {
		m.emailsSent.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEmailRetry(ctx context.Context) {
	if m != nil && m.emailRetries != nil {
		m.emailRetries.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEmailFailure(ctx context.Context) {
	if m != nil && m.emailFailures != nil {
		m.emailFailures.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}

package server

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the server's instruments. A nil *Metrics records
// nothing, so wiring it is optional in tests.
type Metrics struct {
	loginAttempts metric.Int64Counter
	mfaAttempts   metric.Int64Counter
}

// NewMetrics registers the server instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	login, err := meter.Int64Counter("authplane.login.attempts",
		metric.WithDescription("Login attempts by result"))
	if err != nil {
		return nil, err
	}
	mfa, err := meter.Int64Counter("authplane.mfa.attempts",
		metric.WithDescription("Second-factor verification attempts by result"))
	if err != nil {
		return nil, err
	}
	return &Metrics{loginAttempts: login, mfaAttempts: mfa}, nil
}

func (m *Metrics) RecordLogin(ctx context.Context, result string) {
	if m == nil || m.loginAttempts == nil {
		return
	}
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordMfa(ctx context.Context, result string) {
	if m == nil || m.mfaAttempts == nil {
		return
	}
	m.mfaAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// FILE: internal/service/audit_service.go
package service

import (
	"context"

	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/pkg/events"
	pktNats "culqi-payments-be/pkg/nats"
)

// AuditTrail consumes the durable PAYMENTS stream and writes every domain
// event into the structured log. External consumers get the same stream;
// this one exists so operators can trace money movements without access to
// the broker.
type AuditTrail struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditTrail(sub *pktNats.Subscriber, log logger.ILogger) *AuditTrail {
	return &AuditTrail{
		subscriber: sub,
		logger:     log,
	}
}

// Start registers the durable consumer. Safe to call with no broker
// configured; the audit trail is then simply off.
func (a *AuditTrail) Start() error {
	if a.subscriber == nil {
		return nil
	}
	return a.subscriber.Subscribe("payments.>", "payments-audit", a.record)
}

func (a *AuditTrail) record(_ context.Context, event events.Event) error {
	details := map[string]interface{}{"subject": event.EventType()}
	for k, v := range event.Payload() {
		details[k] = v
	}
	a.logger.Info("AuditTrail", "Domain event", details)
	return nil
}

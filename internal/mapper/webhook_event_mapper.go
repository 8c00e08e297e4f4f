// FILE: internal/mapper/webhook_event_mapper.go
package mapper

import (
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/model"
)

type WebhookEventMapper struct{}

func NewWebhookEventMapper() *WebhookEventMapper {
	return &WebhookEventMapper{}
}

func (m *WebhookEventMapper) ToEntity(e *model.WebhookEvent) *entity.WebhookEvent {
	if e == nil {
		return nil
	}
	return &entity.WebhookEvent{
		Id:             e.Id,
		ProviderCode:   e.ProviderCode,
		EventId:        e.EventId,
		EventType:      e.EventType,
		TransactionId:  e.TransactionId,
		Status:         entity.WebhookEventStatus(e.Status),
		FailureMessage: e.FailureMessage,
		Payload:        e.Payload,
		ReceivedAt:     e.ReceivedAt,
	}
}

func (m *WebhookEventMapper) ToModel(e *entity.WebhookEvent) *model.WebhookEvent {
	if e == nil {
		return nil
	}
	return &model.WebhookEvent{
		Id:             e.Id,
		ProviderCode:   e.ProviderCode,
		EventId:        e.EventId,
		EventType:      e.EventType,
		TransactionId:  e.TransactionId,
		Status:         string(e.Status),
		FailureMessage: e.FailureMessage,
		Payload:        e.Payload,
	}
}

// FILE: internal/mapper/refund_mapper.go
package mapper

import (
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/model"
)

type RefundMapper struct{}

func NewRefundMapper() *RefundMapper {
	return &RefundMapper{}
}

func (m *RefundMapper) ToEntity(r *model.Refund) *entity.Refund {
	if r == nil {
		return nil
	}
	return &entity.Refund{
		Id:              r.Id,
		TransactionId:   r.TransactionId,
		GatewayRefundId: r.GatewayRefundId,
		AmountCents:     r.AmountCents,
		Currency:        r.Currency,
		Reason:          entity.RefundReason(r.Reason),
		Kind:            entity.RefundKind(r.Kind),
		State:           entity.RefundState(r.State),
		FailureMessage:  r.FailureMessage,
		CreditNoteId:    r.CreditNoteId,
		RequestedBy:     r.RequestedBy,
		ProcessedAt:     r.ProcessedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (m *RefundMapper) ToModel(r *entity.Refund) *model.Refund {
	if r == nil {
		return nil
	}
	return &model.Refund{
		Id:              r.Id,
		TransactionId:   r.TransactionId,
		GatewayRefundId: r.GatewayRefundId,
		AmountCents:     r.AmountCents,
		Currency:        r.Currency,
		Reason:          string(r.Reason),
		Kind:            string(r.Kind),
		State:           string(r.State),
		FailureMessage:  r.FailureMessage,
		CreditNoteId:    r.CreditNoteId,
		RequestedBy:     r.RequestedBy,
		ProcessedAt:     r.ProcessedAt,
	}
}

func (m *RefundMapper) ToEntities(models []*model.Refund) []*entity.Refund {
	entities := make([]*entity.Refund, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

// FILE: internal/mapper/transaction_mapper.go
package mapper

import (
	"encoding/json"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/model"

	"gorm.io/datatypes"
)

type TransactionMapper struct{}

func NewTransactionMapper() *TransactionMapper {
	return &TransactionMapper{}
}

func (m *TransactionMapper) ToEntity(t *model.Transaction) *entity.Transaction {
	if t == nil {
		return nil
	}
	return &entity.Transaction{
		Id:              t.Id,
		Reference:       t.Reference,
		ProviderCode:    t.ProviderCode,
		GatewayChargeId: t.GatewayChargeId,
		CustomerId:      t.CustomerId,
		CardId:          t.CardId,
		SubscriptionId:  t.SubscriptionId,
		InvoiceId:       t.InvoiceId,
		AmountCents:     t.AmountCents,
		Currency:        t.Currency,
		FeeCents:        t.FeeCents,
		NetCents:        t.NetCents,
		RefundedCents:   t.RefundedCents,
		Installments:    t.Installments,
		PaymentMethod:   entity.PaymentMethod(t.PaymentMethod),
		State:           entity.TransactionState(t.State),
		StateMessage:    t.StateMessage,
		CheckoutURL:     t.CheckoutURL,
		Email:           t.Email,
		Metadata:        decodeMetadata(t.Metadata),
		LastStateChange: t.LastStateChange,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (m *TransactionMapper) ToModel(t *entity.Transaction) *model.Transaction {
	if t == nil {
		return nil
	}
	return &model.Transaction{
		Id:              t.Id,
		Reference:       t.Reference,
		ProviderCode:    t.ProviderCode,
		GatewayChargeId: t.GatewayChargeId,
		CustomerId:      t.CustomerId,
		CardId:          t.CardId,
		SubscriptionId:  t.SubscriptionId,
		InvoiceId:       t.InvoiceId,
		AmountCents:     t.AmountCents,
		Currency:        t.Currency,
		FeeCents:        t.FeeCents,
		NetCents:        t.NetCents,
		RefundedCents:   t.RefundedCents,
		Installments:    t.Installments,
		PaymentMethod:   string(t.PaymentMethod),
		State:           string(t.State),
		StateMessage:    t.StateMessage,
		CheckoutURL:     t.CheckoutURL,
		Email:           t.Email,
		Metadata:        encodeMetadata(t.Metadata),
		LastStateChange: t.LastStateChange,
	}
}

func (m *TransactionMapper) ToEntities(models []*model.Transaction) []*entity.Transaction {
	entities := make([]*entity.Transaction, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

func decodeMetadata(raw datatypes.JSON) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func encodeMetadata(meta map[string]string) datatypes.JSON {
	if len(meta) == 0 {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return raw
}

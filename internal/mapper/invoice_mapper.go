// FILE: internal/mapper/invoice_mapper.go
package mapper

import (
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/model"
)

type InvoiceMapper struct{}

func NewInvoiceMapper() *InvoiceMapper {
	return &InvoiceMapper{}
}

func (m *InvoiceMapper) ToEntity(i *model.Invoice) *entity.Invoice {
	if i == nil {
		return nil
	}
	lines := make([]entity.InvoiceLine, 0, len(i.Lines))
	for _, l := range i.Lines {
		lines = append(lines, entity.InvoiceLine{
			Id:             l.Id,
			InvoiceId:      l.InvoiceId,
			ProductId:      l.ProductId,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			CreatedAt:      l.CreatedAt,
		})
	}
	return &entity.Invoice{
		Id:             i.Id,
		Number:         i.Number,
		Kind:           entity.InvoiceKind(i.Kind),
		State:          entity.InvoiceState(i.State),
		CustomerId:     i.CustomerId,
		SubscriptionId: i.SubscriptionId,
		ReversedId:     i.ReversedId,
		Currency:       i.Currency,
		TotalCents:     i.TotalCents,
		IssuedAt:       i.IssuedAt,
		PeriodStart:    i.PeriodStart,
		PeriodEnd:      i.PeriodEnd,
		Lines:          lines,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func (m *InvoiceMapper) ToModel(i *entity.Invoice) *model.Invoice {
	if i == nil {
		return nil
	}
	lines := make([]model.InvoiceLine, 0, len(i.Lines))
	for _, l := range i.Lines {
		lines = append(lines, model.InvoiceLine{
			Id:             l.Id,
			InvoiceId:      l.InvoiceId,
			ProductId:      l.ProductId,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return &model.Invoice{
		Id:             i.Id,
		Number:         i.Number,
		Kind:           string(i.Kind),
		State:          string(i.State),
		CustomerId:     i.CustomerId,
		SubscriptionId: i.SubscriptionId,
		ReversedId:     i.ReversedId,
		Currency:       i.Currency,
		TotalCents:     i.TotalCents,
		IssuedAt:       i.IssuedAt,
		PeriodStart:    i.PeriodStart,
		PeriodEnd:      i.PeriodEnd,
		Lines:          lines,
	}
}

package memory

import (
	"context"
	"fmt"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type invoiceRepo struct {
	store *Store
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if invoice.Id == uuid.Nil {
		invoice.Id = uuid.New()
	}
	for i := range invoice.Lines {
		if invoice.Lines[i].Id == uuid.Nil {
			invoice.Lines[i].Id = uuid.New()
		}
		invoice.Lines[i].InvoiceId = invoice.Id
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	cp := *invoice
	r.store.invoices[invoice.Id] = &cp
	return nil
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	invoice.UpdatedAt = time.Now().UTC()
	cp := *invoice
	r.store.invoices[invoice.Id] = &cp
	return nil
}

func (r *invoiceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *invoiceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Invoice
	for _, inv := range r.store.invoices {
		if matchInvoice(inv, specs) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sortByCreatedAt(out, func(i *entity.Invoice) time.Time { return i.CreatedAt }, specs)
	return paginate(out, specs), nil
}

func (r *invoiceRepo) NextNumber(ctx context.Context, kind entity.InvoiceKind) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prefix := "INV"
	if kind == entity.InvoiceKindCreditNote {
		prefix = "CN"
	}
	r.store.invoiceSeq[kind]++
	return fmt.Sprintf("%s/%d/%05d", prefix, time.Now().UTC().Year(), r.store.invoiceSeq[kind]), nil
}

func matchInvoice(inv *entity.Invoice, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if inv.Id != s.ID {
				return false
			}
		case specification.ByCustomer:
			if inv.CustomerId != s.CustomerId {
				return false
			}
		case specification.FilterBy:
			if s.Field == "kind" {
				if kind, ok := s.Value.(string); !ok || string(inv.Kind) != kind {
					return false
				}
			}
		}
	}
	return true
}

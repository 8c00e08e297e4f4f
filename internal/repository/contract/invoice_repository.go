package contract

import (
	"context"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	Update(ctx context.Context, invoice *entity.Invoice) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error)
	// NextNumber hands out the next sequential document number for the kind.
	NextNumber(ctx context.Context, kind entity.InvoiceKind) (string, error)
}

package contract

import (
	"context"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	Update(ctx context.Context, refund *entity.Refund) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Refund, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Refund, error)
	// SumSucceededByTransaction totals refunded cents for one transaction.
	SumSucceededByTransaction(ctx context.Context, txId uuid.UUID) (int64, error)
}

package contract

import (
	"context"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	Update(ctx context.Context, customer *entity.Customer) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Customer, error)

	// Cards
	CreateCard(ctx context.Context, card *entity.Card) error
	UpdateCard(ctx context.Context, card *entity.Card) error
	DeleteCard(ctx context.Context, id uuid.UUID) error
	FindOneCard(ctx context.Context, specs ...specification.Specification) (*entity.Card, error)
	FindAllCards(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error)
}

// FILE: internal/service/customer_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/pkg/gateway"

	"github.com/google/uuid"
)

type ICustomerService interface {
	CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)

	// Card vault
	AddCard(ctx context.Context, req *dto.CreateCardRequest) (*dto.CardResponse, error)
	ListCards(ctx context.Context, customerId uuid.UUID) ([]*dto.CardResponse, error)
	RemoveCard(ctx context.Context, customerId, cardId uuid.UUID) error
}

type customerService struct {
	uowFactory unitofwork.RepositoryFactory
	gateways   map[string]gateway.PaymentGateway
	provider   string
	logger     logger.ILogger
}

func NewCustomerService(
	uowFactory unitofwork.RepositoryFactory,
	gateways map[string]gateway.PaymentGateway,
	provider string,
	log logger.ILogger,
) ICustomerService {
	return &customerService{
		uowFactory: uowFactory,
		gateways:   gateways,
		provider:   provider,
		logger:     log,
	}
}

func (s *customerService) gateway() (gateway.PaymentGateway, error) {
	gw, ok := s.gateways[s.provider]
	if !ok {
		return nil, apperrors.NewValidation("provider", fmt.Sprintf("unknown payment provider %q", s.provider))
	}
	return gw, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.CustomerRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidation("email", fmt.Sprintf("customer with email %q already exists", email))
	}

	customer := &entity.Customer{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       email,
		Phone:       req.Phone,
		AddressLine: req.AddressLine,
		City:        req.City,
		CountryCode: strings.ToUpper(req.CountryCode),
	}
	if err := uow.CustomerRepository().Create(ctx, customer); err != nil {
		return nil, err
	}
	return mapCustomerResponse(customer), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	customer, err := uow.CustomerRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.NewNotFound("customer", id.String())
	}
	return mapCustomerResponse(customer), nil
}

// AddCard vaults a one-time token as a reusable card. The gateway customer
// is created lazily on the first card.
func (s *customerService) AddCard(ctx context.Context, req *dto.CreateCardRequest) (*dto.CardResponse, error) {
	gw, err := s.gateway()
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	customer, err := uow.CustomerRepository().FindOne(ctx, specification.ByID{ID: req.CustomerId})
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.NewNotFound("customer", req.CustomerId.String())
	}

	if customer.GatewayCustomerId == nil {
		gwCustomer, gerr := gw.CreateCustomer(ctx, &gateway.CustomerRequest{
			Email:     customer.Email,
			FirstName: customer.FirstName,
			LastName:  customer.LastName,
			Phone:     customer.Phone,
			Address:   customer.AddressLine,
			City:      customer.City,
			Country:   customer.CountryCode,
		})
		if gerr != nil {
			return nil, gerr
		}
		customer.GatewayCustomerId = &gwCustomer.ID
		if err := uow.CustomerRepository().Update(ctx, customer); err != nil {
			return nil, err
		}
	}

	gwCard, err := gw.CreateCard(ctx, &gateway.CardRequest{
		CustomerID: *customer.GatewayCustomerId,
		TokenID:    req.TokenId,
	})
	if err != nil {
		return nil, err
	}

	if req.SetDefault {
		if err := s.clearDefaultCard(ctx, uow, customer.Id); err != nil {
			return nil, err
		}
	}

	card := &entity.Card{
		CustomerId:    customer.Id,
		GatewayCardId: &gwCard.ID,
		Brand:         gwCard.Brand,
		LastFour:      gwCard.LastFour,
		ExpMonth:      gwCard.ExpMonth,
		ExpYear:       gwCard.ExpYear,
		IsDefault:     req.SetDefault,
		Active:        true,
	}
	if err := uow.CustomerRepository().CreateCard(ctx, card); err != nil {
		return nil, err
	}
	return mapCardResponse(card), nil
}

func (s *customerService) clearDefaultCard(ctx context.Context, uow unitofwork.UnitOfWork, customerId uuid.UUID) error {
	cards, err := uow.CustomerRepository().FindAllCards(ctx, specification.ByCustomer{CustomerId: customerId})
	if err != nil {
		return err
	}
	for _, c := range cards {
		if !c.IsDefault {
			continue
		}
		c.IsDefault = false
		if err := uow.CustomerRepository().UpdateCard(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *customerService) ListCards(ctx context.Context, customerId uuid.UUID) ([]*dto.CardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cards, err := uow.CustomerRepository().FindAllCards(ctx,
		specification.ByCustomer{CustomerId: customerId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.CardResponse, 0, len(cards))
	for _, c := range cards {
		if !c.Active {
			continue
		}
		res = append(res, mapCardResponse(c))
	}
	return res, nil
}

// RemoveCard deactivates the stored card and drops it from the gateway
// vault. The row stays behind for transaction history.
func (s *customerService) RemoveCard(ctx context.Context, customerId, cardId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	card, err := uow.CustomerRepository().FindOneCard(ctx, specification.ByID{ID: cardId})
	if err != nil {
		return err
	}
	if card == nil || card.CustomerId != customerId {
		return apperrors.NewNotFound("card", cardId.String())
	}

	subs, err := uow.SubscriptionRepository().FindAll(ctx, specification.ByCustomer{CustomerId: customerId})
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if sub.CardId != nil && *sub.CardId == cardId && sub.Billable() {
			return apperrors.NewValidation("card_id", "card is in use by an active subscription")
		}
	}

	if card.GatewayCardId != nil {
		gw, gwErr := s.gateway()
		if gwErr == nil {
			if err := gw.DeleteCard(ctx, *card.GatewayCardId); err != nil {
				s.logger.Warn("CustomerService", "Gateway card deletion failed", map[string]interface{}{
					"card_id": cardId.String(),
					"error":   err.Error(),
				})
			}
		}
	}

	card.Active = false
	card.IsDefault = false
	return uow.CustomerRepository().UpdateCard(ctx, card)
}

func mapCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		Id:          c.Id,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		AddressLine: c.AddressLine,
		City:        c.City,
		CountryCode: c.CountryCode,
		CreatedAt:   c.CreatedAt,
	}
}

func mapCardResponse(c *entity.Card) *dto.CardResponse {
	return &dto.CardResponse{
		Id:        c.Id,
		Brand:     c.Brand,
		LastFour:  c.LastFour,
		ExpMonth:  c.ExpMonth,
		ExpYear:   c.ExpYear,
		IsDefault: c.IsDefault,
		CreatedAt: c.CreatedAt,
	}
}

// FILE: internal/mapper/customer_mapper.go
package mapper

import (
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/model"
)

type CustomerMapper struct{}

func NewCustomerMapper() *CustomerMapper {
	return &CustomerMapper{}
}

func (m *CustomerMapper) ToEntity(c *model.Customer) *entity.Customer {
	if c == nil {
		return nil
	}
	return &entity.Customer{
		Id:                c.Id,
		GatewayCustomerId: c.GatewayCustomerId,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		Phone:             c.Phone,
		AddressLine:       c.AddressLine,
		City:              c.City,
		CountryCode:       c.CountryCode,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (m *CustomerMapper) ToModel(c *entity.Customer) *model.Customer {
	if c == nil {
		return nil
	}
	return &model.Customer{
		Id:                c.Id,
		GatewayCustomerId: c.GatewayCustomerId,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		Phone:             c.Phone,
		AddressLine:       c.AddressLine,
		City:              c.City,
		CountryCode:       c.CountryCode,
	}
}

func (m *CustomerMapper) CardToEntity(c *model.Card) *entity.Card {
	if c == nil {
		return nil
	}
	return &entity.Card{
		Id:            c.Id,
		CustomerId:    c.CustomerId,
		GatewayCardId: c.GatewayCardId,
		Brand:         c.Brand,
		LastFour:      c.LastFour,
		ExpMonth:      c.ExpMonth,
		ExpYear:       c.ExpYear,
		IsDefault:     c.IsDefault,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *CustomerMapper) CardToModel(c *entity.Card) *model.Card {
	if c == nil {
		return nil
	}
	return &model.Card{
		Id:            c.Id,
		CustomerId:    c.CustomerId,
		GatewayCardId: c.GatewayCardId,
		Brand:         c.Brand,
		LastFour:      c.LastFour,
		ExpMonth:      c.ExpMonth,
		ExpYear:       c.ExpYear,
		IsDefault:     c.IsDefault,
		Active:        c.Active,
	}
}

func (m *CustomerMapper) CardsToEntities(models []*model.Card) []*entity.Card {
	entities := make([]*entity.Card, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.CardToEntity(mdl))
	}
	return entities
}

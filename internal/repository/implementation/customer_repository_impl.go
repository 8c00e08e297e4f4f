package implementation

import (
	"context"
	"errors"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/mapper"
	"culqi-payments-be/internal/model"
	"culqi-payments-be/internal/repository/contract"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CustomerMapper
}

func NewCustomerRepository(db *gorm.DB) contract.CustomerRepository {
	return &CustomerRepositoryImpl{
		db:     db,
		mapper: mapper.NewCustomerMapper(),
	}
}

func (r *CustomerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CustomerRepositoryImpl) Create(ctx context.Context, customer *entity.Customer) error {
	m := r.mapper.ToModel(customer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*customer = *r.mapper.ToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) Update(ctx context.Context, customer *entity.Customer) error {
	m := r.mapper.ToModel(customer)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*customer = *r.mapper.ToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error) {
	var m model.Customer
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Customer{}), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CustomerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Customer, error) {
	var models []*model.Customer
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Customer{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Customer, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, r.mapper.ToEntity(mdl))
	}
	return entities, nil
}

// Cards

func (r *CustomerRepositoryImpl) CreateCard(ctx context.Context, card *entity.Card) error {
	m := r.mapper.CardToModel(card)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.CardToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) UpdateCard(ctx context.Context, card *entity.Card) error {
	m := r.mapper.CardToModel(card)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.CardToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Card{}, id).Error
}

func (r *CustomerRepositoryImpl) FindOneCard(ctx context.Context, specs ...specification.Specification) (*entity.Card, error) {
	var m model.Card
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Card{}), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CardToEntity(&m), nil
}

func (r *CustomerRepositoryImpl) FindAllCards(ctx context.Context, specs ...specification.Specification) ([]*entity.Card, error) {
	var models []*model.Card
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Card{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.CardsToEntities(models), nil
}

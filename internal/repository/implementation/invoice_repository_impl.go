package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/mapper"
	"culqi-payments-be/internal/model"
	"culqi-payments-be/internal/repository/contract"
	"culqi-payments-be/internal/repository/specification"

	"gorm.io/gorm"
)

type InvoiceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InvoiceMapper
}

func NewInvoiceRepository(db *gorm.DB) contract.InvoiceRepository {
	return &InvoiceRepositoryImpl{
		db:     db,
		mapper: mapper.NewInvoiceMapper(),
	}
}

func (r *InvoiceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, invoice *entity.Invoice) error {
	m := r.mapper.ToModel(invoice)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*invoice = *r.mapper.ToEntity(m)
	return nil
}

func (r *InvoiceRepositoryImpl) Update(ctx context.Context, invoice *entity.Invoice) error {
	m := r.mapper.ToModel(invoice)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*invoice = *r.mapper.ToEntity(m)
	return nil
}

func (r *InvoiceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	var m model.Invoice
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Invoice{}), specs...)
	query = query.Preload("Lines")
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InvoiceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	var models []*model.Invoice
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Invoice{}), specs...)
	query = query.Preload("Lines")
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Invoice, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, r.mapper.ToEntity(mdl))
	}
	return entities, nil
}

func (r *InvoiceRepositoryImpl) NextNumber(ctx context.Context, kind entity.InvoiceKind) (string, error) {
	prefix := "INV"
	if kind == entity.InvoiceKindCreditNote {
		prefix = "CN"
	}
	year := time.Now().UTC().Year()

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("kind = ? AND number LIKE ?", string(kind), fmt.Sprintf("%s/%d/%%", prefix, year)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d/%05d", prefix, year, count+1), nil
}

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

type RefundRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RefundMapper
}

func NewRefundRepository(db *gorm.DB) contract.RefundRepository {
	return &RefundRepositoryImpl{
		db:     db,
		mapper: mapper.NewRefundMapper(),
	}
}

func (r *RefundRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RefundRepositoryImpl) Create(ctx context.Context, refund *entity.Refund) error {
	m := r.mapper.ToModel(refund)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*refund = *r.mapper.ToEntity(m)
	return nil
}

func (r *RefundRepositoryImpl) Update(ctx context.Context, refund *entity.Refund) error {
	m := r.mapper.ToModel(refund)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*refund = *r.mapper.ToEntity(m)
	return nil
}

func (r *RefundRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Refund, error) {
	var m model.Refund
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Refund{}), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RefundRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Refund, error) {
	var models []*model.Refund
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Refund{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *RefundRepositoryImpl) SumSucceededByTransaction(ctx context.Context, txId uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Refund{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("transaction_id = ? AND state = ?", txId, string(entity.RefundStateSucceeded)).
		Scan(&total).Error
	return total, err
}

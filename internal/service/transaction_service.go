// FILE: internal/service/transaction_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"culqi-payments-be/internal/config"
	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/pkg/gateway"

	"github.com/google/uuid"
)

type ITransactionService interface {
	CreateCharge(ctx context.Context, req *dto.CreateChargeRequest) (*dto.TransactionResponse, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error)
	GetByReference(ctx context.Context, reference string) (*dto.TransactionResponse, error)
	List(ctx context.Context, q *dto.TransactionListQuery) ([]*dto.TransactionResponse, error)
	// ReconcilePending re-reads charges stuck in a non-final state straight
	// from the gateway. Used by the scheduler and as the fallback for
	// unsigned webhook events.
	ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error)
}

type transactionService struct {
	uowFactory unitofwork.RepositoryFactory
	gateways   map[string]gateway.PaymentGateway
	culqiCfg   config.CulqiConfig
	provider   string
	emitter    *EventEmitter
	logger     logger.ILogger
}

func NewTransactionService(
	uowFactory unitofwork.RepositoryFactory,
	gateways map[string]gateway.PaymentGateway,
	cfg *config.Config,
	emitter *EventEmitter,
	log logger.ILogger,
) ITransactionService {
	return &transactionService{
		uowFactory: uowFactory,
		gateways:   gateways,
		culqiCfg:   cfg.Culqi,
		provider:   cfg.Billing.Provider,
		emitter:    emitter,
		logger:     log,
	}
}

func (s *transactionService) gatewayFor(providerCode string) (gateway.PaymentGateway, error) {
	gw, ok := s.gateways[providerCode]
	if !ok {
		return nil, apperrors.NewValidation("provider", fmt.Sprintf("unknown payment provider %q", providerCode))
	}
	return gw, nil
}

func (s *transactionService) methodEnabled(method string) bool {
	if method == "" {
		return true
	}
	for _, m := range s.culqiCfg.EnabledMethods {
		if m == method {
			return true
		}
	}
	return false
}

func (s *transactionService) CreateCharge(ctx context.Context, req *dto.CreateChargeRequest) (*dto.TransactionResponse, error) {
	if req.AmountCents <= 0 {
		return nil, apperrors.NewValidation("amount_cents", "amount must be a positive number of cents")
	}
	if req.Currency != "PEN" && req.Currency != "USD" {
		return nil, apperrors.NewValidation("currency", fmt.Sprintf("currency %q is not supported", req.Currency))
	}
	if !s.methodEnabled(req.Method) {
		return nil, apperrors.NewValidation("method", fmt.Sprintf("payment method %q is disabled", req.Method))
	}
	if req.Installments > 0 {
		if req.Method != "" && req.Method != string(entity.PaymentMethodCard) {
			return nil, apperrors.NewValidation("installments", "installments are only available for card payments")
		}
		if req.Installments > s.culqiCfg.MaxInstallments {
			return nil, apperrors.NewValidation("installments",
				fmt.Sprintf("at most %d installments are allowed", s.culqiCfg.MaxInstallments))
		}
	}
	if req.TokenId == "" && req.CardId == nil {
		return nil, apperrors.NewValidation("token_id", "either token_id or card_id is required")
	}

	gw, err := s.gatewayFor(s.provider)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	txRepo := uow.TransactionRepository()

	existing, err := txRepo.FindOne(ctx, specification.ByReference{Reference: req.Reference})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidation("reference", fmt.Sprintf("reference %q already used", req.Reference))
	}

	sourceID := ""
	var cardId *uuid.UUID
	if req.CardId != nil {
		card, cerr := uow.CustomerRepository().FindOneCard(ctx, specification.ByID{ID: *req.CardId})
		if cerr != nil {
			return nil, cerr
		}
		if card == nil || card.GatewayCardId == nil {
			return nil, apperrors.NewNotFound("card", req.CardId.String())
		}
		if !card.Active {
			return nil, apperrors.NewValidation("card_id", "card is no longer active")
		}
		sourceID = *card.GatewayCardId
		cardId = req.CardId
	}

	method := entity.PaymentMethod(req.Method)
	if method == "" {
		method = entity.PaymentMethodCard
	}

	metadata := map[string]string{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	// The gateway echoes metadata back in notifications; the reference is
	// the deterministic lookup key when the charge id is not known yet.
	metadata["reference"] = req.Reference

	now := time.Now().UTC()
	tx := &entity.Transaction{
		Reference:       req.Reference,
		ProviderCode:    gw.ProviderCode(),
		CardId:          cardId,
		AmountCents:     req.AmountCents,
		Currency:        req.Currency,
		Installments:    req.Installments,
		PaymentMethod:   method,
		State:           entity.TransactionStateDraft,
		Email:           req.Email,
		Metadata:        metadata,
		LastStateChange: now,
	}
	if err := txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	charge, chErr := gw.CreateCharge(ctx, &gateway.ChargeRequest{
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		Email:        req.Email,
		Description:  req.Description,
		TokenID:      req.TokenId,
		SourceID:     sourceID,
		Installments: req.Installments,
		Capture:      true,
		Metadata:     metadata,
	})
	if chErr != nil {
		return s.settleChargeFailure(ctx, uow, tx, chErr)
	}

	updated, result, applyErr := ApplyChargeOutcome(*tx, charge, time.Now().UTC())
	if applyErr != nil {
		return nil, applyErr
	}
	if result == ApplyUpdated {
		if err := txRepo.Update(ctx, &updated); err != nil {
			return nil, err
		}
		s.emitChargeEvent(ctx, &updated)
	}

	res := mapTransactionResponse(&updated)
	return res, nil
}

// settleChargeFailure records what the failed gateway call means for the
// transaction. A rejection is a final error state; an outage leaves the
// transaction pending for reconciliation.
func (s *transactionService) settleChargeFailure(ctx context.Context, uow unitofwork.UnitOfWork, tx *entity.Transaction, chErr error) (*dto.TransactionResponse, error) {
	now := time.Now().UTC()

	switch {
	case apperrors.IsGatewayError(chErr):
		tx.State = entity.TransactionStateError
		tx.StateMessage = chErr.Error()
		tx.LastStateChange = now
	case apperrors.IsUnavailable(chErr):
		tx.State = entity.TransactionStatePending
		tx.StateMessage = "gateway unreachable, awaiting confirmation"
		tx.LastStateChange = now
	default:
		return nil, chErr
	}

	if err := uow.TransactionRepository().Update(ctx, tx); err != nil {
		return nil, err
	}

	if tx.State == entity.TransactionStateError {
		s.emitChargeEvent(ctx, tx)
	}

	s.logger.Warn("TransactionService", "Charge attempt did not complete", map[string]interface{}{
		"reference": tx.Reference,
		"state":     tx.State,
		"error":     chErr.Error(),
	})

	return mapTransactionResponse(tx), chErr
}

func (s *transactionService) emitChargeEvent(ctx context.Context, tx *entity.Transaction) {
	emitTransactionStateEvent(ctx, s.emitter, tx)
}

func (s *transactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tx, err := uow.TransactionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperrors.NewNotFound("transaction", id.String())
	}
	return mapTransactionResponse(tx), nil
}

func (s *transactionService) GetByReference(ctx context.Context, reference string) (*dto.TransactionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tx, err := uow.TransactionRepository().FindOne(ctx, specification.ByReference{Reference: reference})
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperrors.NewNotFound("transaction", reference)
	}
	return mapTransactionResponse(tx), nil
}

func (s *transactionService) List(ctx context.Context, q *dto.TransactionListQuery) ([]*dto.TransactionResponse, error) {
	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if q.State != "" {
		specs = append(specs, specification.ByState{State: q.State})
	}
	if q.Email != "" {
		specs = append(specs, specification.ByEmail{Email: q.Email})
	}
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	specs = append(specs, specification.Pagination{Limit: limit, Offset: q.Offset})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.TransactionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		res = append(res, mapTransactionResponse(tx))
	}
	return res, nil
}

func (s *transactionService) ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	txRepo := uow.TransactionRepository()

	cutoff := time.Now().UTC().Add(-olderThan)
	stale, err := txRepo.FindAll(ctx, specification.StalePending{OlderThan: cutoff})
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for _, tx := range stale {
		if tx.GatewayChargeId == nil {
			continue
		}
		gw, gerr := s.gatewayFor(tx.ProviderCode)
		if gerr != nil {
			continue
		}

		charge, cerr := gw.GetCharge(ctx, *tx.GatewayChargeId)
		if cerr != nil {
			s.logger.Warn("TransactionService", "Reconciliation read failed", map[string]interface{}{
				"reference": tx.Reference,
				"error":     cerr.Error(),
			})
			continue
		}

		updated, result, aerr := ApplyChargeOutcome(*tx, charge, time.Now().UTC())
		if aerr != nil || result != ApplyUpdated {
			continue
		}
		if err := txRepo.Update(ctx, &updated); err != nil {
			return reconciled, err
		}
		s.emitChargeEvent(ctx, &updated)
		reconciled++
	}

	return reconciled, nil
}

func mapTransactionResponse(tx *entity.Transaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		Id:            tx.Id,
		Reference:     tx.Reference,
		Provider:      tx.ProviderCode,
		ChargeId:      tx.GatewayChargeId,
		AmountCents:   tx.AmountCents,
		Currency:      tx.Currency,
		FeeCents:      tx.FeeCents,
		NetCents:      tx.NetCents,
		RefundedCents: tx.RefundedCents,
		RefundStatus:  string(tx.RefundProgressState()),
		Installments:  tx.Installments,
		Method:        string(tx.PaymentMethod),
		State:         string(tx.State),
		StateMessage:  tx.StateMessage,
		CheckoutURL:   tx.CheckoutURL,
		Metadata:      tx.Metadata,
		CreatedAt:     tx.CreatedAt,
	}
}

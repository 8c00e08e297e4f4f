// FILE: internal/service/refund_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/pkg/events"
	"culqi-payments-be/pkg/gateway"

	"github.com/google/uuid"
)

type IRefundService interface {
	CreateRefund(ctx context.Context, req *dto.CreateRefundRequest) (*dto.RefundResponse, error)
	CancelRefund(ctx context.Context, id uuid.UUID) (*dto.RefundResponse, error)
	GetRefund(ctx context.Context, id uuid.UUID) (*dto.RefundResponse, error)
	ListByTransaction(ctx context.Context, txId uuid.UUID) ([]*dto.RefundResponse, error)

	// IngestGatewayRefund records a refund the gateway reported on its own,
	// keyed on the gateway refund id so replayed events change nothing.
	IngestGatewayRefund(ctx context.Context, result *gateway.RefundResult) (string, error)
}

type refundService struct {
	uowFactory unitofwork.RepositoryFactory
	gateways   map[string]gateway.PaymentGateway
	emitter    *EventEmitter
	logger     logger.ILogger
}

func NewRefundService(
	uowFactory unitofwork.RepositoryFactory,
	gateways map[string]gateway.PaymentGateway,
	emitter *EventEmitter,
	log logger.ILogger,
) IRefundService {
	return &refundService{
		uowFactory: uowFactory,
		gateways:   gateways,
		emitter:    emitter,
		logger:     log,
	}
}

func (s *refundService) CreateRefund(ctx context.Context, req *dto.CreateRefundRequest) (*dto.RefundResponse, error) {
	reason := entity.RefundReason(req.Reason)
	if !entity.ValidRefundReason(reason) {
		return nil, apperrors.NewValidation("reason", "unknown refund reason")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	tx, err := uow.TransactionRepository().FindOne(ctx, specification.ByID{ID: req.TransactionId})
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperrors.NewNotFound("transaction", req.TransactionId.String())
	}

	if tx.GatewayChargeId == nil {
		return nil, apperrors.NewValidation("transaction_id", "transaction has no gateway charge to refund")
	}
	if !tx.CanRefund() {
		return nil, &apperrors.StateConflict{
			Resource: "transaction",
			From:     string(tx.State),
			To:       "refunded",
		}
	}

	// Refund bounds check against the durable ledger, not just the cached
	// counter on the transaction row.
	refunded, err := uow.RefundRepository().SumSucceededByTransaction(ctx, tx.Id)
	if err != nil {
		return nil, err
	}
	remaining := tx.AmountCents - refunded
	if remaining <= 0 {
		return nil, apperrors.NewValidation("amount_cents", "transaction is already fully refunded")
	}

	amount := req.AmountCents
	if amount == 0 {
		amount = remaining
	}
	if amount < 0 || amount > remaining {
		return nil, apperrors.NewValidation("amount_cents",
			fmt.Sprintf("refund of %d exceeds the %d cents still refundable", amount, remaining))
	}

	refund := &entity.Refund{
		TransactionId: tx.Id,
		AmountCents:   amount,
		Currency:      tx.Currency,
		Reason:        reason,
		Kind:          entity.RefundKindManual,
		State:         entity.RefundStateDraft,
		RequestedBy:   req.RequestedBy,
	}
	if err := uow.RefundRepository().Create(ctx, refund); err != nil {
		return nil, err
	}

	if err := s.submitRefund(ctx, uow, refund, tx); err != nil {
		return nil, err
	}
	return mapRefundResponse(refund), nil
}

// submitRefund pushes a draft or pending refund through the gateway and
// settles the outcome. A gateway outage parks the refund in pending so a
// later retry can pick it up.
func (s *refundService) submitRefund(ctx context.Context, uow unitofwork.UnitOfWork, refund *entity.Refund, tx *entity.Transaction) error {
	gw, ok := s.gateways[tx.ProviderCode]
	if !ok {
		return apperrors.NewValidation("provider", fmt.Sprintf("unknown payment provider %q", tx.ProviderCode))
	}

	refund.State = entity.RefundStateProcessing
	if err := uow.RefundRepository().Update(ctx, refund); err != nil {
		return err
	}

	result, gerr := gw.CreateRefund(ctx, &gateway.RefundRequest{
		ChargeID:    *tx.GatewayChargeId,
		AmountCents: refund.AmountCents,
		Reason:      string(refund.Reason),
		Metadata:    map[string]string{"reference": tx.Reference},
	})
	if gerr != nil {
		if apperrors.IsUnavailable(gerr) {
			refund.State = entity.RefundStatePending
			refund.FailureMessage = ""
			if err := uow.RefundRepository().Update(ctx, refund); err != nil {
				return err
			}
			return gerr
		}
		refund.State = entity.RefundStateFailed
		refund.FailureMessage = gerr.Error()
		if err := uow.RefundRepository().Update(ctx, refund); err != nil {
			return err
		}
		s.emitRefundEvent(ctx, events.TypeRefundFailed, refund, tx)
		return nil
	}

	now := time.Now().UTC()
	refund.GatewayRefundId = &result.ID
	refund.State = entity.RefundStateSucceeded
	refund.ProcessedAt = &now

	// The refunded counter, the credit note and the refund row land together
	// or not at all.
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	tx.RefundedCents += refund.AmountCents
	if err := uow.TransactionRepository().Update(ctx, tx); err != nil {
		return err
	}

	if tx.InvoiceId != nil {
		note, nerr := s.issueCreditNote(ctx, uow, refund, tx)
		if nerr != nil {
			return nerr
		}
		refund.CreditNoteId = &note.Id
	}

	if err := uow.RefundRepository().Update(ctx, refund); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.emitRefundEvent(ctx, events.TypeRefundSucceeded, refund, tx)
	return nil
}

// issueCreditNote reverses the refunded share of the original invoice. Line
// quantities are scaled by the refund ratio so a half refund produces a
// credit note with half-quantity lines at the original unit prices.
func (s *refundService) issueCreditNote(ctx context.Context, uow unitofwork.UnitOfWork, refund *entity.Refund, tx *entity.Transaction) (*entity.Invoice, error) {
	original, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: *tx.InvoiceId})
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, apperrors.NewNotFound("invoice", tx.InvoiceId.String())
	}

	number, err := uow.InvoiceRepository().NextNumber(ctx, entity.InvoiceKindCreditNote)
	if err != nil {
		return nil, err
	}

	ratio := 1.0
	if original.TotalCents > 0 {
		ratio = float64(refund.AmountCents) / float64(original.TotalCents)
	}

	lines := make([]entity.InvoiceLine, 0, len(original.Lines))
	for _, l := range original.Lines {
		lines = append(lines, entity.InvoiceLine{
			ProductId:      l.ProductId,
			Description:    l.Description,
			Quantity:       l.Quantity * ratio,
			UnitPriceCents: l.UnitPriceCents,
		})
	}

	note := &entity.Invoice{
		Number:         number,
		Kind:           entity.InvoiceKindCreditNote,
		State:          entity.InvoiceStatePosted,
		CustomerId:     original.CustomerId,
		SubscriptionId: original.SubscriptionId,
		ReversedId:     &original.Id,
		Currency:       original.Currency,
		TotalCents:     refund.AmountCents,
		IssuedAt:       time.Now().UTC(),
		PeriodStart:    original.PeriodStart,
		PeriodEnd:      original.PeriodEnd,
		Lines:          lines,
	}
	if err := uow.InvoiceRepository().Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *refundService) emitRefundEvent(ctx context.Context, eventType string, refund *entity.Refund, tx *entity.Transaction) {
	s.emitter.Emit(ctx, events.New(eventType, map[string]interface{}{
		"refund_id":      refund.Id.String(),
		"transaction_id": tx.Id.String(),
		"reference":      tx.Reference,
		"amount_cents":   refund.AmountCents,
		"currency":       refund.Currency,
		"reason":         string(refund.Reason),
		"email":          tx.Email,
		"failure":        refund.FailureMessage,
	}))
}

// IngestGatewayRefund settles a refund the gateway created on its side, for
// example through the merchant dashboard. Refunds submitted locally come back
// through here too when their webhook fires; they match on the gateway refund
// id and are left untouched.
func (s *refundService) IngestGatewayRefund(ctx context.Context, result *gateway.RefundResult) (string, error) {
	if result == nil || result.ID == "" {
		return "", apperrors.NewValidation("refund", "gateway refund payload is missing an id")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.RefundRepository().FindOne(ctx, specification.ByGatewayRefundId{RefundId: result.ID})
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "unchanged", nil
	}

	tx, err := uow.TransactionRepository().FindOne(ctx, specification.ByGatewayChargeId{ChargeId: result.ChargeID})
	if err != nil {
		return "", err
	}
	if tx == nil {
		return "", apperrors.NewNotFound("transaction", result.ChargeID)
	}

	now := time.Now().UTC()
	refundId := result.ID
	refund := &entity.Refund{
		TransactionId:   tx.Id,
		GatewayRefundId: &refundId,
		AmountCents:     result.AmountCents,
		Currency:        tx.Currency,
		Reason:          entity.RefundReasonBuyerRequest,
		Kind:            entity.RefundKindWebhook,
		State:           entity.RefundStateSucceeded,
		ProcessedAt:     &now,
	}

	if err := uow.Begin(ctx); err != nil {
		return "", err
	}
	defer uow.Rollback()

	if err := uow.RefundRepository().Create(ctx, refund); err != nil {
		return "", err
	}

	tx.RefundedCents += refund.AmountCents
	if err := uow.TransactionRepository().Update(ctx, tx); err != nil {
		return "", err
	}

	if tx.InvoiceId != nil {
		note, nerr := s.issueCreditNote(ctx, uow, refund, tx)
		if nerr != nil {
			return "", nerr
		}
		refund.CreditNoteId = &note.Id
		if err := uow.RefundRepository().Update(ctx, refund); err != nil {
			return "", err
		}
	}

	if err := uow.Commit(); err != nil {
		return "", err
	}

	s.emitRefundEvent(ctx, events.TypeRefundSucceeded, refund, tx)
	return "applied", nil
}

func (s *refundService) CancelRefund(ctx context.Context, id uuid.UUID) (*dto.RefundResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	refund, err := uow.RefundRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperrors.NewNotFound("refund", id.String())
	}
	if !refund.Actionable() {
		return nil, &apperrors.StateConflict{
			Resource: "refund",
			From:     string(refund.State),
			To:       string(entity.RefundStateCanceled),
		}
	}

	refund.State = entity.RefundStateCanceled
	if err := uow.RefundRepository().Update(ctx, refund); err != nil {
		return nil, err
	}
	return mapRefundResponse(refund), nil
}

func (s *refundService) GetRefund(ctx context.Context, id uuid.UUID) (*dto.RefundResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	refund, err := uow.RefundRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperrors.NewNotFound("refund", id.String())
	}
	return mapRefundResponse(refund), nil
}

func (s *refundService) ListByTransaction(ctx context.Context, txId uuid.UUID) ([]*dto.RefundResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	refunds, err := uow.RefundRepository().FindAll(ctx,
		specification.ByTransaction{TransactionId: txId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		res = append(res, mapRefundResponse(r))
	}
	return res, nil
}

func mapRefundResponse(r *entity.Refund) *dto.RefundResponse {
	return &dto.RefundResponse{
		Id:             r.Id,
		TransactionId:  r.TransactionId,
		RefundId:       r.GatewayRefundId,
		AmountCents:    r.AmountCents,
		Currency:       r.Currency,
		Reason:         string(r.Reason),
		Kind:           string(r.Kind),
		State:          string(r.State),
		FailureMessage: r.FailureMessage,
		CreditNoteId:   r.CreditNoteId,
		ProcessedAt:    r.ProcessedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// FILE: internal/service/webhook_service.go
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"culqi-payments-be/internal/dto"
	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/pkg/apperrors"
	"culqi-payments-be/internal/pkg/logger"
	"culqi-payments-be/internal/repository/specification"
	"culqi-payments-be/internal/repository/unitofwork"
	"culqi-payments-be/pkg/culqi"
	"culqi-payments-be/pkg/gateway"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type IWebhookService interface {
	// HandleCulqiWebhook verifies, deduplicates and applies one gateway
	// notification. The raw body and the X-Culqi-Signature header come
	// straight from the HTTP layer.
	HandleCulqiWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAck, error)
}

type webhookService struct {
	uowFactory    unitofwork.RepositoryFactory
	gateways      map[string]gateway.PaymentGateway
	webhookSecret string
	redis         *redis.Client
	refunds       IRefundService
	emitter       *EventEmitter
	logger        logger.ILogger
}

func NewWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	gateways map[string]gateway.PaymentGateway,
	webhookSecret string,
	redisClient *redis.Client,
	refunds IRefundService,
	emitter *EventEmitter,
	log logger.ILogger,
) IWebhookService {
	return &webhookService{
		uowFactory:    uowFactory,
		gateways:      gateways,
		webhookSecret: webhookSecret,
		redis:         redisClient,
		refunds:       refunds,
		emitter:       emitter,
		logger:        log,
	}
}

// chargePayload is the slice of the charge object the webhook flow needs.
type chargePayload struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// refundPayload is its counterpart for refund.* event types.
type refundPayload struct {
	ID       string `json:"id"`
	ChargeID string `json:"charge_id"`
}

func (s *webhookService) HandleCulqiWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAck, error) {
	verified := true
	if err := culqi.VerifyWebhookSignature(payload, signature, s.webhookSecret); err != nil {
		if !errors.Is(err, apperrors.ErrUnsignedEvent) {
			return nil, err
		}
		// Unsigned legacy event: accept it, but only trust what we read
		// back from the gateway ourselves.
		verified = false
	}

	event, err := culqi.ParseWebhookEvent(payload)
	if err != nil {
		return nil, err
	}

	isRefund := strings.HasPrefix(event.Type, "refund.")

	var chPayload chargePayload
	var rfPayload refundPayload
	var objectId string
	if isRefund {
		if err := json.Unmarshal(event.Data, &rfPayload); err != nil || rfPayload.ID == "" {
			return nil, apperrors.NewValidation("data", "webhook data carries no refund id")
		}
		objectId = rfPayload.ID
	} else {
		if err := json.Unmarshal(event.Data, &chPayload); err != nil || chPayload.ID == "" {
			return nil, apperrors.NewValidation("data", "webhook data carries no charge id")
		}
		objectId = chPayload.ID
	}

	// The key carries a payload digest so an exact retry deduplicates while a
	// later notification of the same type for the same object, for example a
	// pending charge that settles, still gets applied.
	digest := sha256.Sum256(payload)
	eventKey := fmt.Sprintf("%s:%s:%s", event.Type, objectId, hex.EncodeToString(digest[:8]))

	// First barrier: cheap replay check shared across instances.
	if s.alreadyProcessed(ctx, eventKey) {
		return &dto.WebhookAck{Received: true, Result: "duplicate"}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Second barrier: the durable ledger survives Redis restarts.
	prior, err := uow.WebhookEventRepository().FindOne(ctx,
		specification.ByProviderEvent{ProviderCode: "culqi", EventId: eventKey})
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return &dto.WebhookAck{Received: true, Result: "duplicate"}, nil
	}

	var result string
	var txId *uuid.UUID
	var applyErr error
	if isRefund {
		result, applyErr = s.applyRefundEvent(ctx, &rfPayload, verified)
	} else {
		result, txId, applyErr = s.applyEvent(ctx, uow, &chPayload, verified)
	}

	ledger := &entity.WebhookEvent{
		ProviderCode:  "culqi",
		EventId:       eventKey,
		EventType:     event.Type,
		TransactionId: txId,
		Status:        entity.WebhookEventStatusProcessed,
		Payload:       payload,
	}
	if applyErr != nil {
		if apperrors.IsStateConflict(applyErr) || apperrors.IsNotFound(applyErr) {
			// Benign: the gateway retried something we cannot or need not
			// apply. Record and acknowledge so it stops retrying.
			ledger.Status = entity.WebhookEventStatusSkipped
			ledger.FailureMessage = applyErr.Error()
			result = "skipped"
		} else {
			ledger.Status = entity.WebhookEventStatusFailed
			ledger.FailureMessage = applyErr.Error()
			if err := uow.WebhookEventRepository().Create(ctx, ledger); err != nil {
				s.logger.Error("WebhookService", "Failed to record webhook event", map[string]interface{}{
					"event": eventKey, "error": err.Error(),
				})
			}
			return nil, applyErr
		}
	}

	if err := uow.WebhookEventRepository().Create(ctx, ledger); err != nil {
		return nil, err
	}
	s.markProcessed(ctx, eventKey)

	return &dto.WebhookAck{Received: true, Result: result}, nil
}

// applyRefundEvent confirms the refund against the gateway and hands it to
// the refund service. The payload is never trusted for amounts; the read-back
// is the source of truth for signed and unsigned events alike.
func (s *webhookService) applyRefundEvent(ctx context.Context, rfPayload *refundPayload, verified bool) (string, error) {
	gw, ok := s.gateways["culqi"]
	if !ok {
		return "", apperrors.NewValidation("provider", `no gateway for provider "culqi"`)
	}

	result, err := gw.GetRefund(ctx, rfPayload.ID)
	if err != nil {
		if !verified {
			return "", apperrors.ErrVerificationFailed
		}
		return "", err
	}
	if result.ChargeID == "" {
		result.ChargeID = rfPayload.ChargeID
	}
	return s.refunds.IngestGatewayRefund(ctx, result)
}

func (s *webhookService) applyEvent(ctx context.Context, uow unitofwork.UnitOfWork, chPayload *chargePayload, verified bool) (string, *uuid.UUID, error) {
	txRepo := uow.TransactionRepository()

	// Resolve the local transaction: the charge id once known, otherwise
	// the reference echoed back in metadata. Both are unique keys.
	tx, err := txRepo.FindOne(ctx, specification.ByGatewayChargeId{ChargeId: chPayload.ID})
	if err != nil {
		return "", nil, err
	}
	if tx == nil {
		ref := chPayload.Metadata["reference"]
		if ref == "" {
			return "", nil, apperrors.NewNotFound("transaction", chPayload.ID)
		}
		tx, err = txRepo.FindOne(ctx, specification.ByMetadataReference{Reference: ref})
		if err != nil {
			return "", nil, err
		}
		if tx == nil {
			return "", nil, apperrors.NewNotFound("transaction", ref)
		}
	}

	gw, ok := s.gateways[tx.ProviderCode]
	if !ok {
		return "", &tx.Id, apperrors.NewValidation("provider", fmt.Sprintf("no gateway for provider %q", tx.ProviderCode))
	}

	// Whether the event was signed or not, the applied state comes from an
	// authenticated read for unsigned events; signed ones may still carry a
	// partial object, so the read also normalizes the payload.
	charge, err := gw.GetCharge(ctx, chPayload.ID)
	if err != nil {
		if !verified {
			// Unsigned and unconfirmable: refuse to apply.
			return "", &tx.Id, apperrors.ErrVerificationFailed
		}
		return "", &tx.Id, err
	}

	updated, result, applyErr := ApplyChargeOutcome(*tx, charge, time.Now().UTC())
	if applyErr != nil {
		return "", &tx.Id, applyErr
	}
	if result == ApplySkipped {
		return "unchanged", &tx.Id, nil
	}

	if err := txRepo.Update(ctx, &updated); err != nil {
		return "", &tx.Id, err
	}

	emitTransactionStateEvent(ctx, s.emitter, &updated)
	return "applied", &updated.Id, nil
}

func (s *webhookService) alreadyProcessed(ctx context.Context, eventKey string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, "webhook:culqi:"+eventKey).Result()
	if err != nil {
		// Redis down: fall through to the durable ledger.
		return false
	}
	return n > 0
}

func (s *webhookService) markProcessed(ctx context.Context, eventKey string) {
	if s.redis == nil {
		return
	}
	s.redis.Set(ctx, "webhook:culqi:"+eventKey, "1", 48*time.Hour)
}

package memory

import (
	"context"
	"time"

	"culqi-payments-be/internal/entity"
	"culqi-payments-be/internal/repository/specification"

	"github.com/google/uuid"
)

type webhookEventRepo struct {
	store *Store
}

func (r *webhookEventRepo) Create(ctx context.Context, event *entity.WebhookEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}
	cp := *event
	r.store.webhookEvents[event.Id] = &cp
	return nil
}

func (r *webhookEventRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WebhookEvent, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *webhookEventRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WebhookEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.WebhookEvent
	for _, e := range r.store.webhookEvents {
		if matchWebhookEvent(e, specs) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return paginate(out, specs), nil
}

func matchWebhookEvent(e *entity.WebhookEvent, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if e.Id != s.ID {
				return false
			}
		case specification.ByProviderEvent:
			if e.ProviderCode != s.ProviderCode || e.EventId != s.EventId {
				return false
			}
		}
	}
	return true
}

package contract

import (
	"context"

	"sales-assistant-be/internal/entity"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindAll(ctx context.Context) ([]*entity.Lead, error)
}

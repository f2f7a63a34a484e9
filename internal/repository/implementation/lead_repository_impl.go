package implementation

import (
	"context"

	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/mapper"
	"sales-assistant-be/internal/model"
	"sales-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
)

type LeadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LeadMapper
}

func NewLeadRepository(db *gorm.DB) contract.LeadRepository {
	return &LeadRepositoryImpl{
		db:     db,
		mapper: mapper.NewLeadMapper(),
	}
}

func (r *LeadRepositoryImpl) Create(ctx context.Context, lead *entity.Lead) error {
	m := r.mapper.ToModel(lead)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*lead = *r.mapper.ToEntity(m)
	return nil
}

func (r *LeadRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Lead, error) {
	var models []*model.Lead
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	leads := make([]*entity.Lead, len(models))
	for i, m := range models {
		leads[i] = r.mapper.ToEntity(m)
	}
	return leads, nil
}

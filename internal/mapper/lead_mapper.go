package mapper

import (
	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/model"
)

type LeadMapper struct{}

func NewLeadMapper() *LeadMapper {
	return &LeadMapper{}
}

func (m *LeadMapper) ToEntity(l *model.Lead) *entity.Lead {
	if l == nil {
		return nil
	}
	return &entity.Lead{
		Id:          l.Id,
		SessionId:   l.SessionId,
		Name:        l.Name,
		Email:       l.Email,
		Company:     l.Company,
		ProjectIdea: l.ProjectIdea,
		CreatedAt:   l.CreatedAt,
	}
}

func (m *LeadMapper) ToModel(e *entity.Lead) *model.Lead {
	if e == nil {
		return nil
	}
	return &model.Lead{
		Id:          e.Id,
		SessionId:   e.SessionId,
		Name:        e.Name,
		Email:       e.Email,
		Company:     e.Company,
		ProjectIdea: e.ProjectIdea,
		CreatedAt:   e.CreatedAt,
	}
}

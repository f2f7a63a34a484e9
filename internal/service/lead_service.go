package service

import (
	"context"
	"time"

	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/pkg/mailer"
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/pkg/events"
	pktNats "sales-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

type ILeadService interface {
	CaptureFromConversation(ctx context.Context, sessionID string, req dto.CaptureLeadRequest) error
	List(ctx context.Context) ([]*dto.LeadResponse, error)
}

type leadService struct {
	leads          contract.LeadRepository
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	salesInbox     string
	log            logger.ILogger
}

func NewLeadService(
	leads contract.LeadRepository,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	salesInbox string,
	log logger.ILogger,
) ILeadService {
	return &leadService{
		leads:          leads,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		salesInbox:     salesInbox,
		log:            log,
	}
}

func (s *leadService) CaptureFromConversation(ctx context.Context, sessionID string, req dto.CaptureLeadRequest) error {
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	lead := &entity.Lead{
		Id:          uuid.New(),
		SessionId:   sessionID,
		Name:        req.Name,
		Email:       req.Email,
		Company:     req.Company,
		ProjectIdea: req.ProjectIdea,
		CreatedAt:   time.Now(),
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return err
	}

	// Notifications are auxiliary: log failures but keep the lead.
	if s.eventPublisher != nil {
		evt := events.NewLeadCaptured(lead.Id.String(), sessionID, lead.Email)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("lead", "failed to publish lead event", map[string]interface{}{
				"lead_id": lead.Id.String(),
				"error":   err.Error(),
			})
		}
	}

	if s.emailService != nil && s.salesInbox != "" {
		if err := s.emailService.SendLeadNotification(s.salesInbox, lead.Name, lead.Email, lead.Company, lead.ProjectIdea); err != nil {
			s.log.Warn("lead", "failed to send lead email", map[string]interface{}{
				"lead_id": lead.Id.String(),
				"error":   err.Error(),
			})
		}
	}

	s.log.Info("lead", "lead captured", map[string]interface{}{
		"lead_id":    lead.Id.String(),
		"session_id": sessionID,
	})
	return nil
}

func (s *leadService) List(ctx context.Context) ([]*dto.LeadResponse, error) {
	leads, err := s.leads.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.LeadResponse, len(leads))
	for i, lead := range leads {
		out[i] = &dto.LeadResponse{
			Id:          lead.Id.String(),
			SessionId:   lead.SessionId,
			Name:        lead.Name,
			Email:       lead.Email,
			Company:     lead.Company,
			ProjectIdea: lead.ProjectIdea,
			CreatedAt:   lead.CreatedAt,
		}
	}
	return out, nil
}

package service

import (
	"context"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/events"
	pktNats "sales-assistant-be/pkg/nats"
)

// IActivityService tails the event bus and writes an audit trail of session
// and lead activity.
type IActivityService interface {
	Start() error
}

type activityService struct {
	subscriber *pktNats.Subscriber
	log        logger.ILogger
}

func NewActivityService(subscriber *pktNats.Subscriber, log logger.ILogger) IActivityService {
	return &activityService{
		subscriber: subscriber,
		log:        log,
	}
}

func (s *activityService) Start() error {
	if s.subscriber == nil {
		s.log.Warn("activity", "no NATS subscriber, activity trail disabled", nil)
		return nil
	}
	return s.subscriber.Subscribe(pktNats.SubjectAll, "activity-logger", s.handle)
}

func (s *activityService) handle(ctx context.Context, event events.Event) error {
	s.log.Info("activity", event.EventType(), event.Payload())
	return nil
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/logger"
	"referralhub/pkg/websocket"
)

// Visit describes the HTTP request that followed a referral link.
type Visit struct {
	IPAddress string
	UserAgent string
	Referrer  string
	UTM       map[string]string
}

type ClickService interface {
	// RecordClick appends one click event and increments the link's click
	// counter. A failed increment does not remove the event.
	RecordClick(ctx context.Context, resolved *models.ResolvedLink, visit *Visit) (*models.Event, error)
	// RecordClickAsync records the click in the background. Errors are logged
	// with the request id carried by ctx.
	RecordClickAsync(ctx context.Context, resolved *models.ResolvedLink, visit *Visit)
	// Wait blocks until in-flight background recordings finish.
	Wait()
}

type clickService struct {
	eventRepo interfaces.EventRepository
	linkRepo  interfaces.ReferralLinkRepository
	publisher websocket.Publisher
	timeout   time.Duration
	logger    *logger.Logger
	inflight  sync.WaitGroup
}

func NewClickService(
	config *config.Config,
	eventRepo interfaces.EventRepository,
	linkRepo interfaces.ReferralLinkRepository,
	publisher websocket.Publisher,
	log *logger.Logger,
) ClickService {
	return &clickService{
		eventRepo: eventRepo,
		linkRepo:  linkRepo,
		publisher: publisher,
		timeout:   config.Attribution.ClickTimeout,
		logger:    log.WithField("service", "click"),
	}
}

func (s *clickService) RecordClick(ctx context.Context, resolved *models.ResolvedLink, visit *Visit) (*models.Event, error) {
	link := resolved.Link
	if visit == nil {
		visit = &Visit{}
	}

	linkID := link.ID
	event := &models.Event{
		OrgID:          link.OrgID,
		CampaignID:     link.CampaignID,
		ParticipantID:  link.ParticipantID,
		ReferralLinkID: &linkID,
		EventType:      models.EventTypeClick,
		IPAddress:      visit.IPAddress,
		UserAgent:      visit.UserAgent,
		Referrer:       visit.Referrer,
		UTMParams:      utils.MergeUTM(link.UTM, visit.UTM),
		Metadata:       map[string]interface{}{"code": link.Code},
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record click event: %w", err)
	}

	if err := s.linkRepo.IncrementClicks(ctx, link.ID); err != nil {
		return event, fmt.Errorf("failed to increment click count: %w", err)
	}

	s.logger.LogClickEvent(link.ID, link.Code, visit.IPAddress, map[string]interface{}{
		"event_id":    event.ID.Hex(),
		"campaign_id": link.CampaignID.Hex(),
	})

	s.publisher.Publish(ctx, link.OrgID, utils.FeedClickRecorded, map[string]interface{}{
		"event_id":         event.ID.Hex(),
		"referral_link_id": link.ID.Hex(),
		"campaign_id":      link.CampaignID.Hex(),
		"code":             link.Code,
	})

	return event, nil
}

func (s *clickService) RecordClickAsync(ctx context.Context, resolved *models.ResolvedLink, visit *Visit) {
	log := s.logger
	requestID := logger.RequestIDFromContext(ctx)
	if requestID != "" {
		log = log.WithRequestID(requestID)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("code", resolved.Link.Code).Errorf("Click recording panicked: %v", r)
			}
		}()

		// The request context ends with the redirect, so recording runs on
		// its own deadline.
		ctx, cancel := context.WithTimeout(logger.ContextWithRequestID(context.Background(), requestID), s.timeout)
		defer cancel()

		if _, err := s.RecordClick(ctx, resolved, visit); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"code":             resolved.Link.Code,
				"referral_link_id": resolved.Link.ID.Hex(),
			}).Warn("Failed to record referral click")
		}
	}()
}

func (s *clickService) Wait() {
	s.inflight.Wait()
}

package services

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService interface {
	CreateEvent(ctx context.Context, orgID primitive.ObjectID, request *validators.CreateEventRequest) (*models.Event, error)
	ListEvents(ctx context.Context, filter interfaces.EventFilter, params *utils.PaginationParams) ([]*models.Event, int64, error)
}

type eventService struct {
	attribution *attributionResolver
	eventRepo   interfaces.EventRepository
	logger      *logger.Logger
}

func NewEventService(
	eventRepo interfaces.EventRepository,
	campaignRepo interfaces.CampaignRepository,
	linkRepo interfaces.ReferralLinkRepository,
	participantRepo interfaces.ParticipantRepository,
	log *logger.Logger,
) EventService {
	return &eventService{
		attribution: &attributionResolver{
			campaignRepo:    campaignRepo,
			linkRepo:        linkRepo,
			participantRepo: participantRepo,
		},
		eventRepo: eventRepo,
		logger:    log.WithField("service", "event"),
	}
}

func (s *eventService) CreateEvent(ctx context.Context, orgID primitive.ObjectID, request *validators.CreateEventRequest) (*models.Event, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	linkID, _ := validators.ParseObjectID(request.ReferralLinkID)
	participantID, _ := validators.ParseObjectID(request.ParticipantID)

	attr, err := s.attribution.resolve(ctx, orgID, validators.MustObjectID(request.CampaignID), linkID, participantID)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		OrgID:          orgID,
		CampaignID:     attr.campaign.ID,
		ParticipantID:  attr.participantID,
		ReferralLinkID: attr.linkID,
		EventType:      models.EventType(request.EventType),
		IPAddress:      request.IPAddress,
		UserAgent:      request.UserAgent,
		Metadata:       request.Metadata,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.WithError(err).WithOrgID(orgID).Error("Failed to create event")
		return nil, utils.NewInternalError(err)
	}

	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter interfaces.EventFilter, params *utils.PaginationParams) ([]*models.Event, int64, error) {
	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, utils.NewInternalError(err)
	}
	return events, total, nil
}

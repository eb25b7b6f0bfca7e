package services

import (
	"context"
	"errors"
	"strings"

	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"
	"referralhub/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversionService interface {
	CreateConversion(ctx context.Context, orgID primitive.ObjectID, request *validators.CreateConversionRequest) (*models.Conversion, error)
	GetConversion(ctx context.Context, orgID, conversionID primitive.ObjectID) (*models.Conversion, error)
	ListConversions(ctx context.Context, filter interfaces.ConversionFilter, params *utils.PaginationParams) ([]*models.Conversion, int64, error)
	UpdateConversionStatus(ctx context.Context, orgID, conversionID, changedBy primitive.ObjectID, request *validators.UpdateConversionStatusRequest) (*models.Conversion, error)
}

type conversionService struct {
	attribution     *attributionResolver
	conversionRepo  interfaces.ConversionRepository
	linkRepo        interfaces.ReferralLinkRepository
	eventRepo       interfaces.EventRepository
	publisher       websocket.Publisher
	defaultCurrency string
	logger          *logger.Logger
	audit           *logger.AuditLogger
}

func NewConversionService(
	config *config.Config,
	conversionRepo interfaces.ConversionRepository,
	campaignRepo interfaces.CampaignRepository,
	linkRepo interfaces.ReferralLinkRepository,
	participantRepo interfaces.ParticipantRepository,
	eventRepo interfaces.EventRepository,
	publisher websocket.Publisher,
	log *logger.Logger,
) ConversionService {
	currency := strings.ToUpper(config.App.Currency)
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	return &conversionService{
		attribution: &attributionResolver{
			campaignRepo:    campaignRepo,
			linkRepo:        linkRepo,
			participantRepo: participantRepo,
		},
		conversionRepo:  conversionRepo,
		linkRepo:        linkRepo,
		eventRepo:       eventRepo,
		publisher:       publisher,
		defaultCurrency: currency,
		logger:          log.WithField("service", "conversion"),
		audit:           logger.NewAuditLoggerFrom(log),
	}
}

func (s *conversionService) CreateConversion(ctx context.Context, orgID primitive.ObjectID, request *validators.CreateConversionRequest) (*models.Conversion, error) {
	// Rejects unknown conversion types before any storage access.
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	campaignID := validators.MustObjectID(request.CampaignID)
	linkID, _ := validators.ParseObjectID(request.ReferralLinkID)
	participantID, _ := validators.ParseObjectID(request.ParticipantID)

	if linkID == nil && request.RefCode != "" {
		var err error
		linkID, err = s.attribution.linkForCode(ctx, orgID, campaignID, request.RefCode)
		if err != nil {
			return nil, err
		}
	}

	attr, err := s.attribution.resolve(ctx, orgID, campaignID, linkID, participantID)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(request.ConversionCurrency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	conversion := &models.Conversion{
		OrgID:          orgID,
		CampaignID:     attr.campaign.ID,
		ParticipantID:  attr.participantID,
		ReferralLinkID: attr.linkID,
		ConversionType: models.ConversionType(request.ConversionType),
		Value:          request.ConversionValue,
		Currency:       currency,
		CustomerEmail:  utils.NormalizeEmail(request.CustomerEmail),
		CustomerName:   strings.TrimSpace(request.CustomerName),
		OrderID:        request.OrderID,
		Metadata:       request.Metadata,
		Status:         models.ConversionStatusPending,
	}

	// The unique index on (campaign_id, customer_email, conversion_type) is
	// the only duplicate check.
	if err := s.conversionRepo.Create(ctx, conversion); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, utils.NewConflictError(utils.ErrConversionDuplicate, err)
		}
		s.logger.WithError(err).WithOrgID(orgID).Error("Failed to create conversion")
		return nil, utils.NewInternalError(err)
	}

	s.recordSideEffects(ctx, conversion)

	s.logger.LogConversionEvent(conversion.ID, "created", map[string]interface{}{
		"campaign_id":     conversion.CampaignID.Hex(),
		"conversion_type": conversion.ConversionType,
		"attributed":      conversion.ReferralLinkID != nil,
		"customer":        utils.MaskEmail(conversion.CustomerEmail),
	})

	s.publisher.Publish(ctx, orgID, utils.FeedConversionCreated, conversion)

	return conversion, nil
}

// recordSideEffects bumps the link counter and appends the conversion event.
// Both are best-effort once the conversion itself is stored.
func (s *conversionService) recordSideEffects(ctx context.Context, conversion *models.Conversion) {
	if conversion.ReferralLinkID != nil {
		if err := s.linkRepo.IncrementConversions(ctx, *conversion.ReferralLinkID); err != nil {
			s.logger.WithError(err).WithField("conversion_id", conversion.ID.Hex()).
				Warn("Failed to increment link conversion count")
		}
	}

	event := &models.Event{
		OrgID:          conversion.OrgID,
		CampaignID:     conversion.CampaignID,
		ParticipantID:  conversion.ParticipantID,
		ReferralLinkID: conversion.ReferralLinkID,
		EventType:      models.EventTypeConversion,
		Metadata: map[string]interface{}{
			"conversion_id":   conversion.ID.Hex(),
			"conversion_type": string(conversion.ConversionType),
		},
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.WithError(err).WithField("conversion_id", conversion.ID.Hex()).
			Warn("Failed to append conversion event")
	}
}

func (s *conversionService) GetConversion(ctx context.Context, orgID, conversionID primitive.ObjectID) (*models.Conversion, error) {
	conversion, err := s.conversionRepo.GetForOrg(ctx, orgID, conversionID)
	if err != nil {
		return nil, repoError(err, utils.ErrConversionNotFound)
	}
	return conversion, nil
}

func (s *conversionService) ListConversions(ctx context.Context, filter interfaces.ConversionFilter, params *utils.PaginationParams) ([]*models.Conversion, int64, error) {
	conversions, total, err := s.conversionRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, utils.NewInternalError(err)
	}
	return conversions, total, nil
}

func (s *conversionService) UpdateConversionStatus(ctx context.Context, orgID, conversionID, changedBy primitive.ObjectID, request *validators.UpdateConversionStatusRequest) (*models.Conversion, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	conversion, err := s.conversionRepo.GetForOrg(ctx, orgID, conversionID)
	if err != nil {
		return nil, repoError(err, utils.ErrConversionNotFound)
	}

	to := models.ConversionStatus(request.Status)
	if !models.CanTransitionConversion(conversion.Status, to) {
		return nil, utils.NewInvalidStateError(utils.ErrInvalidTransition)
	}

	if err := s.conversionRepo.UpdateStatus(ctx, orgID, conversionID, conversion.Status, to); err != nil {
		return nil, statusUpdateError(err, utils.ErrConversionNotFound)
	}

	s.audit.LogStatusChange("conversion", conversionID, string(conversion.Status), string(to), changedBy.Hex())

	conversion.Status = to
	conversion.UpdatedAt = utils.Now()
	s.publisher.Publish(ctx, orgID, utils.FeedConversionUpdated, conversion)

	return conversion, nil
}

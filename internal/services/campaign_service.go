package services

import (
	"context"
	"strings"

	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CampaignService interface {
	CreateCampaign(ctx context.Context, orgID, createdBy primitive.ObjectID, request *validators.CreateCampaignRequest) (*models.Campaign, error)
	GetCampaign(ctx context.Context, orgID, campaignID primitive.ObjectID) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, orgID primitive.ObjectID, status models.CampaignStatus, params *utils.PaginationParams) ([]*models.Campaign, int64, error)
	UpdateCampaignStatus(ctx context.Context, orgID, campaignID, changedBy primitive.ObjectID, request *validators.UpdateCampaignStatusRequest) (*models.Campaign, error)
	// UpdateCampaign edits details of a campaign that has not ended.
	UpdateCampaign(ctx context.Context, orgID, campaignID, changedBy primitive.ObjectID, request *validators.UpdateCampaignRequest) (*models.Campaign, error)
	// DeleteCampaign removes the campaign. Its links stop resolving.
	DeleteCampaign(ctx context.Context, orgID, campaignID, deletedBy primitive.ObjectID) error
}

type campaignService struct {
	campaignRepo    interfaces.CampaignRepository
	linkService     LinkService
	defaultCurrency string
	logger          *logger.Logger
	audit           *logger.AuditLogger
}

func NewCampaignService(
	config *config.Config,
	campaignRepo interfaces.CampaignRepository,
	linkService LinkService,
	log *logger.Logger,
) CampaignService {
	currency := strings.ToUpper(config.App.Currency)
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	return &campaignService{
		campaignRepo:    campaignRepo,
		linkService:     linkService,
		defaultCurrency: currency,
		logger:          log.WithField("service", "campaign"),
		audit:           logger.NewAuditLoggerFrom(log),
	}
}

func (s *campaignService) CreateCampaign(ctx context.Context, orgID, createdBy primitive.ObjectID, request *validators.CreateCampaignRequest) (*models.Campaign, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}
	if request.StartAt != nil && request.EndAt != nil && !request.EndAt.After(*request.StartAt) {
		return nil, utils.NewInvalidInputError("end_at must be after start_at")
	}

	status := models.CampaignStatus(request.Status)
	if status == "" {
		status = models.CampaignStatusActive
	}

	currency := strings.ToUpper(request.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	campaign := &models.Campaign{
		OrgID:       orgID,
		Name:        strings.TrimSpace(request.Name),
		Description: request.Description,
		Status:      status,
		LandingURL:  request.LandingURL,
		RewardPolicy: models.RewardPolicy{
			Type:     models.RewardType(request.RewardType),
			Value:    *request.RewardValue,
			Currency: currency,
		},
		StartAt: request.StartAt,
		EndAt:   request.EndAt,
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		s.logger.WithError(err).WithOrgID(orgID).Error("Failed to create campaign")
		return nil, utils.NewInternalError(err)
	}

	s.audit.LogAction("create", "campaign", createdBy.Hex(), map[string]interface{}{
		"campaign_id": campaign.ID.Hex(),
		"org_id":      orgID.Hex(),
	})

	return campaign, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, orgID, campaignID primitive.ObjectID) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetForOrg(ctx, orgID, campaignID)
	if err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}
	return campaign, nil
}

func (s *campaignService) ListCampaigns(ctx context.Context, orgID primitive.ObjectID, status models.CampaignStatus, params *utils.PaginationParams) ([]*models.Campaign, int64, error) {
	if status != "" && !models.IsValidCampaignStatus(status) {
		return nil, 0, utils.NewInvalidInputError("Invalid campaign status")
	}

	campaigns, total, err := s.campaignRepo.List(ctx, orgID, status, params)
	if err != nil {
		return nil, 0, utils.NewInternalError(err)
	}
	return campaigns, total, nil
}

func (s *campaignService) UpdateCampaignStatus(ctx context.Context, orgID, campaignID, changedBy primitive.ObjectID, request *validators.UpdateCampaignStatusRequest) (*models.Campaign, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetForOrg(ctx, orgID, campaignID)
	if err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}

	to := models.CampaignStatus(request.Status)
	if !models.CanTransitionCampaign(campaign.Status, to) {
		return nil, utils.NewInvalidStateError(utils.ErrInvalidTransition)
	}

	if err := s.campaignRepo.UpdateStatus(ctx, orgID, campaignID, to); err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}

	// Cached resolutions carry the old status.
	if err := s.linkService.InvalidateCampaign(ctx, campaignID); err != nil {
		s.logger.WithError(err).WithCampaignID(campaignID).Warn("Failed to invalidate link cache")
	}

	s.audit.LogStatusChange("campaign", campaignID, string(campaign.Status), string(to), changedBy.Hex())

	campaign.Status = to
	campaign.UpdatedAt = utils.Now()
	return campaign, nil
}

func (s *campaignService) UpdateCampaign(ctx context.Context, orgID, campaignID, changedBy primitive.ObjectID, request *validators.UpdateCampaignRequest) (*models.Campaign, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetForOrg(ctx, orgID, campaignID)
	if err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}
	if campaign.Status == models.CampaignStatusEnded {
		return nil, utils.NewInvalidStateError(utils.ErrCampaignEnded)
	}

	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		if name == "" {
			return nil, utils.NewValidationError(map[string]string{"name": "name is required"})
		}
		campaign.Name = name
	}
	if request.Description != nil {
		campaign.Description = *request.Description
	}
	if request.LandingURL != nil {
		if strings.TrimSpace(*request.LandingURL) == "" {
			return nil, utils.NewValidationError(map[string]string{"landing_url": "landing_url is required"})
		}
		campaign.LandingURL = *request.LandingURL
	}
	if request.RewardType != nil {
		campaign.RewardPolicy.Type = models.RewardType(*request.RewardType)
	}
	if request.RewardValue != nil {
		campaign.RewardPolicy.Value = *request.RewardValue
	}
	if request.Currency != nil && *request.Currency != "" {
		campaign.RewardPolicy.Currency = strings.ToUpper(*request.Currency)
	}
	if request.StartAt != nil {
		campaign.StartAt = request.StartAt
	}
	if request.EndAt != nil {
		campaign.EndAt = request.EndAt
	}
	if campaign.StartAt != nil && campaign.EndAt != nil && !campaign.EndAt.After(*campaign.StartAt) {
		return nil, utils.NewInvalidInputError("end_at must be after start_at")
	}

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}

	// Cached resolutions carry the old landing page.
	if err := s.linkService.InvalidateCampaign(ctx, campaignID); err != nil {
		s.logger.WithError(err).WithCampaignID(campaignID).Warn("Failed to invalidate link cache")
	}

	s.audit.LogAction("update", "campaign", changedBy.Hex(), map[string]interface{}{
		"campaign_id": campaignID.Hex(),
		"org_id":      orgID.Hex(),
	})

	return campaign, nil
}

func (s *campaignService) DeleteCampaign(ctx context.Context, orgID, campaignID, deletedBy primitive.ObjectID) error {
	if err := s.campaignRepo.Delete(ctx, orgID, campaignID); err != nil {
		return repoError(err, utils.ErrCampaignNotFound)
	}

	if err := s.linkService.InvalidateCampaign(ctx, campaignID); err != nil {
		s.logger.WithError(err).WithCampaignID(campaignID).Warn("Failed to invalidate link cache")
	}

	s.audit.LogAction("delete", "campaign", deletedBy.Hex(), map[string]interface{}{
		"campaign_id": campaignID.Hex(),
		"org_id":      orgID.Hex(),
	})

	return nil
}

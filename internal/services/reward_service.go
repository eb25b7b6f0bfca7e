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

type RewardService interface {
	// CreateReward issues a pending reward for a confirmed conversion. Each
	// conversion can be rewarded at most once.
	CreateReward(ctx context.Context, orgID, createdBy primitive.ObjectID, request *validators.CreateRewardRequest) (*models.Reward, error)
	GetReward(ctx context.Context, orgID, rewardID primitive.ObjectID) (*models.Reward, error)
	ListRewards(ctx context.Context, filter interfaces.RewardFilter, params *utils.PaginationParams) ([]*models.Reward, int64, error)
	UpdateRewardStatus(ctx context.Context, orgID, rewardID, changedBy primitive.ObjectID, request *validators.UpdateRewardStatusRequest) (*models.Reward, error)
}

type rewardService struct {
	rewardRepo      interfaces.RewardRepository
	conversionRepo  interfaces.ConversionRepository
	campaignRepo    interfaces.CampaignRepository
	publisher       websocket.Publisher
	defaultCurrency string
	logger          *logger.Logger
	audit           *logger.AuditLogger
}

func NewRewardService(
	config *config.Config,
	rewardRepo interfaces.RewardRepository,
	conversionRepo interfaces.ConversionRepository,
	campaignRepo interfaces.CampaignRepository,
	publisher websocket.Publisher,
	log *logger.Logger,
) RewardService {
	currency := strings.ToUpper(config.App.Currency)
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	return &rewardService{
		rewardRepo:      rewardRepo,
		conversionRepo:  conversionRepo,
		campaignRepo:    campaignRepo,
		publisher:       publisher,
		defaultCurrency: currency,
		logger:          log.WithField("service", "reward"),
		audit:           logger.NewAuditLoggerFrom(log),
	}
}

func (s *rewardService) CreateReward(ctx context.Context, orgID, createdBy primitive.ObjectID, request *validators.CreateRewardRequest) (*models.Reward, error) {
	if request.Amount <= 0 {
		return nil, utils.NewInvalidInputError(utils.ErrAmountNotPositive)
	}
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	conversion, err := s.conversionRepo.GetForOrg(ctx, orgID, validators.MustObjectID(request.ConversionID))
	if err != nil {
		return nil, repoError(err, utils.ErrConversionNotFound)
	}
	if conversion.Status != models.ConversionStatusConfirmed {
		return nil, utils.NewInvalidStateError(utils.ErrConversionNotReady)
	}

	campaign, err := s.campaignRepo.GetForOrg(ctx, orgID, conversion.CampaignID)
	if err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}

	reward := &models.Reward{
		OrgID:         orgID,
		CampaignID:    conversion.CampaignID,
		ParticipantID: conversion.ParticipantID,
		ConversionID:  conversion.ID,
		RewardType:    s.rewardType(request, campaign),
		Amount:        request.Amount,
		Currency:      s.currency(request, campaign),
		PayoutMethod:  models.PayoutMethod(request.PayoutMethod),
		Notes:         request.Notes,
		Status:        models.RewardStatusPending,
	}
	if reward.PayoutMethod == "" {
		reward.PayoutMethod = models.PayoutMethodManual
	}

	// rewards.conversion_id is unique; a concurrent second request loses here.
	if err := s.rewardRepo.Create(ctx, reward); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, utils.NewConflictError(utils.ErrRewardDuplicate, err)
		}
		s.logger.WithError(err).WithOrgID(orgID).Error("Failed to create reward")
		return nil, utils.NewInternalError(err)
	}

	s.logger.LogRewardEvent(reward.ID, "created", reward.Amount, reward.Currency)
	s.audit.LogRewardAudit(reward.ID, reward.Amount, reward.Currency, string(reward.PayoutMethod), string(reward.Status))
	s.audit.LogAction("create", "reward", createdBy.Hex(), map[string]interface{}{
		"reward_id":     reward.ID.Hex(),
		"conversion_id": conversion.ID.Hex(),
	})

	s.publisher.Publish(ctx, orgID, utils.FeedRewardCreated, reward)

	return reward, nil
}

func (s *rewardService) rewardType(request *validators.CreateRewardRequest, campaign *models.Campaign) models.RewardType {
	if request.RewardType != "" {
		return models.RewardType(request.RewardType)
	}
	if campaign.RewardPolicy.Type != "" {
		return campaign.RewardPolicy.Type
	}
	return models.RewardTypeCash
}

func (s *rewardService) currency(request *validators.CreateRewardRequest, campaign *models.Campaign) string {
	if request.Currency != "" {
		return strings.ToUpper(request.Currency)
	}
	if campaign.RewardPolicy.Currency != "" {
		return campaign.RewardPolicy.Currency
	}
	return s.defaultCurrency
}

func (s *rewardService) GetReward(ctx context.Context, orgID, rewardID primitive.ObjectID) (*models.Reward, error) {
	reward, err := s.rewardRepo.GetForOrg(ctx, orgID, rewardID)
	if err != nil {
		return nil, repoError(err, utils.ErrRewardNotFound)
	}
	return reward, nil
}

func (s *rewardService) ListRewards(ctx context.Context, filter interfaces.RewardFilter, params *utils.PaginationParams) ([]*models.Reward, int64, error) {
	rewards, total, err := s.rewardRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, utils.NewInternalError(err)
	}
	return rewards, total, nil
}

func (s *rewardService) UpdateRewardStatus(ctx context.Context, orgID, rewardID, changedBy primitive.ObjectID, request *validators.UpdateRewardStatusRequest) (*models.Reward, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	reward, err := s.rewardRepo.GetForOrg(ctx, orgID, rewardID)
	if err != nil {
		return nil, repoError(err, utils.ErrRewardNotFound)
	}

	to := models.RewardStatus(request.Status)
	if !models.CanTransitionReward(reward.Status, to) {
		return nil, utils.NewInvalidStateError(utils.ErrInvalidTransition)
	}

	if err := s.rewardRepo.UpdateStatus(ctx, orgID, rewardID, reward.Status, to); err != nil {
		return nil, statusUpdateError(err, utils.ErrRewardNotFound)
	}

	s.audit.LogStatusChange("reward", rewardID, string(reward.Status), string(to), changedBy.Hex())
	s.logger.LogRewardEvent(reward.ID, string(to), reward.Amount, reward.Currency)

	reward.Status = to
	reward.UpdatedAt = utils.Now()
	return reward, nil
}

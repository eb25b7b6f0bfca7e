package handlers

import (
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/services"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	rewardService services.RewardService
	logger        *logger.Logger
}

func NewRewardHandler(rewardService services.RewardService, log *logger.Logger) *RewardHandler {
	return &RewardHandler{rewardService: rewardService, logger: log}
}

func (h *RewardHandler) CreateReward(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}

	var request validators.CreateRewardRequest
	if !bindJSON(c, &request) {
		return
	}

	reward, err := h.rewardService.CreateReward(c.Request.Context(), orgID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Reward created successfully", reward)
}

func (h *RewardHandler) GetReward(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}
	rewardID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	reward, err := h.rewardService.GetReward(c.Request.Context(), orgID, rewardID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Reward retrieved successfully", reward)
}

func (h *RewardHandler) ListRewards(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	filter := interfaces.RewardFilter{OrgID: orgID, Status: models.RewardStatus(c.Query("status"))}
	if filter.CampaignID, ok = queryObjectID(c, "campaign_id"); !ok {
		return
	}
	if filter.ParticipantID, ok = queryObjectID(c, "participant_id"); !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	rewards, total, err := h.rewardService.ListRewards(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rewards retrieved successfully", rewards, listMeta(params, total, len(rewards)))
}

func (h *RewardHandler) UpdateRewardStatus(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}
	rewardID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request validators.UpdateRewardStatusRequest
	if !bindJSON(c, &request) {
		return
	}

	reward, err := h.rewardService.UpdateRewardStatus(c.Request.Context(), orgID, rewardID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Reward status updated successfully", reward)
}

package handlers

import (
	"referralhub/internal/models"
	"referralhub/internal/services"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignService services.CampaignService
	logger          *logger.Logger
}

func NewCampaignHandler(campaignService services.CampaignService, log *logger.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, logger: log}
}

func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}

	var request validators.CreateCampaignRequest
	if !bindJSON(c, &request) {
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), orgID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Campaign created successfully", campaign)
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}
	campaignID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), orgID, campaignID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Campaign retrieved successfully", campaign)
}

func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	campaigns, total, err := h.campaignService.ListCampaigns(c.Request.Context(), orgID, models.CampaignStatus(c.Query("status")), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Campaigns retrieved successfully", campaigns, listMeta(params, total, len(campaigns)))
}

func (h *CampaignHandler) UpdateCampaignStatus(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}
	campaignID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request validators.UpdateCampaignStatusRequest
	if !bindJSON(c, &request) {
		return
	}

	campaign, err := h.campaignService.UpdateCampaignStatus(c.Request.Context(), orgID, campaignID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Campaign status updated successfully", campaign)
}

func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}
	campaignID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request validators.UpdateCampaignRequest
	if !bindJSON(c, &request) {
		return
	}

	campaign, err := h.campaignService.UpdateCampaign(c.Request.Context(), orgID, campaignID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Campaign updated successfully", campaign)
}

func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}
	campaignID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.campaignService.DeleteCampaign(c.Request.Context(), orgID, campaignID, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Campaign deleted successfully", nil)
}

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

type ConversionHandler struct {
	conversionService services.ConversionService
	cookieName        string
	logger            *logger.Logger
}

func NewConversionHandler(conversionService services.ConversionService, cookieName string, log *logger.Logger) *ConversionHandler {
	return &ConversionHandler{
		conversionService: conversionService,
		cookieName:        cookieName,
		logger:            log,
	}
}

// CreateConversion records a conversion. Without an explicit link the
// attribution cookie set by the redirect is used.
func (h *ConversionHandler) CreateConversion(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	var request validators.CreateConversionRequest
	if !bindJSON(c, &request) {
		return
	}
	if request.ReferralLinkID == "" && request.RefCode == "" {
		if code, err := c.Cookie(h.cookieName); err == nil {
			request.RefCode = code
		}
	}

	conversion, err := h.conversionService.CreateConversion(c.Request.Context(), orgID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Conversion created successfully", conversion)
}

func (h *ConversionHandler) GetConversion(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}
	conversionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	conversion, err := h.conversionService.GetConversion(c.Request.Context(), orgID, conversionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Conversion retrieved successfully", conversion)
}

func (h *ConversionHandler) ListConversions(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	filter := interfaces.ConversionFilter{OrgID: orgID, Status: models.ConversionStatus(c.Query("status"))}
	if filter.CampaignID, ok = queryObjectID(c, "campaign_id"); !ok {
		return
	}
	if filter.ParticipantID, ok = queryObjectID(c, "participant_id"); !ok {
		return
	}
	if filter.StartDate, ok = queryTime(c, "start_date"); !ok {
		return
	}
	if filter.EndDate, ok = queryTime(c, "end_date"); !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	conversions, total, err := h.conversionService.ListConversions(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Conversions retrieved successfully", conversions, listMeta(params, total, len(conversions)))
}

func (h *ConversionHandler) UpdateConversionStatus(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}
	conversionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request validators.UpdateConversionStatusRequest
	if !bindJSON(c, &request) {
		return
	}

	conversion, err := h.conversionService.UpdateConversionStatus(c.Request.Context(), orgID, conversionID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Conversion status updated successfully", conversion)
}

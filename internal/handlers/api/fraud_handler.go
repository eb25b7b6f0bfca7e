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

type FraudHandler struct {
	fraudService services.FraudService
	logger       *logger.Logger
}

func NewFraudHandler(fraudService services.FraudService, log *logger.Logger) *FraudHandler {
	return &FraudHandler{fraudService: fraudService, logger: log}
}

// ScanLink runs the heuristics over the link's recent clicks and returns the
// signals it opened. Signals are advisory; nothing is blocked.
func (h *FraudHandler) ScanLink(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}
	linkID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	signals, err := h.fraudService.ScanLink(c.Request.Context(), orgID, linkID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Link scanned successfully", signals)
}

func (h *FraudHandler) ListSignals(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	filter := interfaces.FraudSignalFilter{OrgID: orgID, Status: models.FraudSignalStatus(c.Query("status"))}
	if filter.ReferralLinkID, ok = queryObjectID(c, "referral_link_id"); !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	signals, total, err := h.fraudService.ListSignals(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Fraud signals retrieved successfully", signals, listMeta(params, total, len(signals)))
}

func (h *FraudHandler) UpdateSignalStatus(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}
	signalID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request validators.UpdateFraudSignalStatusRequest
	if !bindJSON(c, &request) {
		return
	}

	signal, err := h.fraudService.UpdateSignalStatus(c.Request.Context(), orgID, signalID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Fraud signal updated successfully", signal)
}

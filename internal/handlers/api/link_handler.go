package handlers

import (
	"referralhub/internal/services"
	"referralhub/internal/utils"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type LinkHandler struct {
	linkService services.LinkService
	logger      *logger.Logger
}

func NewLinkHandler(linkService services.LinkService, log *logger.Logger) *LinkHandler {
	return &LinkHandler{linkService: linkService, logger: log}
}

func (h *LinkHandler) GetLinkStats(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	stats, err := h.linkService.GetLinkStats(c.Request.Context(), orgID, c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Link stats retrieved successfully", stats)
}

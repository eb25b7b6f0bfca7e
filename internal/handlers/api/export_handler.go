package handlers

import (
	"referralhub/internal/services"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService services.ExportService
	logger        *logger.Logger
}

func NewExportHandler(exportService services.ExportService, log *logger.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: log}
}

func (h *ExportHandler) ExportConversions(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		return
	}

	var request validators.ExportConversionsRequest
	if !bindJSON(c, &request) {
		return
	}

	export, err := h.exportService.ExportConversions(c.Request.Context(), orgID, userID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Export created successfully", export)
}

package handlers

import (
	"referralhub/internal/services"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
	logger             *logger.Logger
}

func NewParticipantHandler(participantService services.ParticipantService, log *logger.Logger) *ParticipantHandler {
	return &ParticipantHandler{participantService: participantService, logger: log}
}

// InviteParticipant enrolls a participant, issues their link and sends the
// invite SMS when a phone number was given.
func (h *ParticipantHandler) InviteParticipant(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	var request validators.CreateParticipantRequest
	if !bindJSON(c, &request) {
		return
	}

	invite, err := h.participantService.InviteParticipant(c.Request.Context(), orgID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Participant created successfully", invite)
}

func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	campaignID, ok := queryObjectID(c, "campaign_id")
	if !ok {
		return
	}
	if campaignID == nil {
		utils.BadRequestResponse(c, "campaign_id is required")
		return
	}

	params := utils.GetPaginationParams(c)
	participants, total, err := h.participantService.ListParticipants(c.Request.Context(), orgID, *campaignID, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Participants retrieved successfully", participants, listMeta(params, total, len(participants)))
}

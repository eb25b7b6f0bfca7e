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

type EventHandler struct {
	eventService services.EventService
	logger       *logger.Logger
}

func NewEventHandler(eventService services.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, logger: log}
}

// CreateEvent records a tracked event for an active campaign.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	var request validators.CreateEventRequest
	if !bindJSON(c, &request) {
		return
	}
	request.IPAddress = c.ClientIP()
	request.UserAgent = c.Request.UserAgent()

	event, err := h.eventService.CreateEvent(c.Request.Context(), orgID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Event created successfully", event)
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		return
	}

	filter := interfaces.EventFilter{OrgID: orgID, EventType: models.EventType(c.Query("event_type"))}
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
	events, total, err := h.eventService.ListEvents(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Events retrieved successfully", events, listMeta(params, total, len(events)))
}

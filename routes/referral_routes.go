package routes

import (
	handlers "referralhub/internal/handlers/api"
	"referralhub/internal/middleware"
	"referralhub/internal/utils"
	"referralhub/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Redirect    *handlers.RedirectHandler
	Event       *handlers.EventHandler
	Conversion  *handlers.ConversionHandler
	Reward      *handlers.RewardHandler
	Campaign    *handlers.CampaignHandler
	Participant *handlers.ParticipantHandler
	Link        *handlers.LinkHandler
	Fraud       *handlers.FraudHandler
	Export      *handlers.ExportHandler
	Health      *handlers.HealthHandler
	Live        *websocket.Handler
}

type AuthConfig struct {
	Secret string
	Issuer string
}

// SetupPublicRoutes registers the unauthenticated redirect and health routes.
func SetupPublicRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/health", h.Health.Health)
	r.GET("/r/:code", h.Redirect.Redirect)
}

// SetupReferralRoutes registers the org-scoped API under r.
func SetupReferralRoutes(r *gin.RouterGroup, h *Handlers, auth AuthConfig) {
	authRequired := middleware.AuthRequired(auth.Secret, auth.Issuer)
	managers := middleware.RoleRequired(utils.RoleOwner, utils.RoleAdmin)

	api := r.Group("")
	api.Use(authRequired)
	{
		events := api.Group("/events")
		{
			events.POST("", h.Event.CreateEvent)
			events.GET("", h.Event.ListEvents)
		}

		conversions := api.Group("/conversions")
		{
			conversions.POST("", h.Conversion.CreateConversion)
			conversions.GET("", h.Conversion.ListConversions)
			conversions.GET("/:id", h.Conversion.GetConversion)
			conversions.PATCH("/:id/status", h.Conversion.UpdateConversionStatus)
		}

		rewards := api.Group("/rewards")
		{
			rewards.GET("", h.Reward.ListRewards)
			rewards.GET("/:id", h.Reward.GetReward)
			rewards.POST("", managers, h.Reward.CreateReward)
			rewards.PATCH("/:id/status", managers, h.Reward.UpdateRewardStatus)
		}

		campaigns := api.Group("/campaigns")
		{
			campaigns.GET("", h.Campaign.ListCampaigns)
			campaigns.GET("/:id", h.Campaign.GetCampaign)
			campaigns.POST("", managers, h.Campaign.CreateCampaign)
			campaigns.PUT("/:id", managers, h.Campaign.UpdateCampaign)
			campaigns.DELETE("/:id", managers, h.Campaign.DeleteCampaign)
			campaigns.PATCH("/:id/status", managers, h.Campaign.UpdateCampaignStatus)
		}

		participants := api.Group("/participants")
		{
			participants.POST("", h.Participant.InviteParticipant)
			participants.GET("", h.Participant.ListParticipants)
		}

		api.GET("/links/:code/stats", h.Link.GetLinkStats)

		fraud := api.Group("/fraud")
		{
			fraud.POST("/links/:id/scan", h.Fraud.ScanLink)
			fraud.GET("/signals", h.Fraud.ListSignals)
			fraud.PATCH("/signals/:id/status", managers, h.Fraud.UpdateSignalStatus)
		}

		api.POST("/exports/conversions", managers, h.Export.ExportConversions)
	}

	if h.Live != nil {
		r.GET("/live", middleware.TokenFromQuery(), authRequired, h.Live.HandleWebSocket)
	}
}

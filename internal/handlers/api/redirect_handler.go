package handlers

import (
	"net/http"
	"time"

	"referralhub/internal/config"
	"referralhub/internal/services"
	"referralhub/internal/utils"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RedirectHandler serves the public /r/:code entry point.
type RedirectHandler struct {
	linkService  services.LinkService
	clickService services.ClickService
	cookieName   string
	cookieTTL    time.Duration
	cookieDomain string
	cookieSecure bool
	logger       *logger.Logger
}

func NewRedirectHandler(cfg *config.AttributionConfig, linkService services.LinkService, clickService services.ClickService, log *logger.Logger) *RedirectHandler {
	return &RedirectHandler{
		linkService:  linkService,
		clickService: clickService,
		cookieName:   cfg.CookieName,
		cookieTTL:    cfg.CookieTTL,
		cookieDomain: cfg.CookieDomain,
		cookieSecure: cfg.CookieSecure,
		logger:       log,
	}
}

// Redirect resolves the code, schedules click recording and sends the visitor
// to the landing page. Recording never delays or blocks the redirect.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	resolved, err := h.linkService.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.clickService.RecordClickAsync(c.Request.Context(), resolved, &services.Visit{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		UTM:       utils.ExtractUTM(c.Request.URL.Query()),
	})

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, resolved.Link.Code, int(h.cookieTTL.Seconds()), "/", h.cookieDomain, h.cookieSecure, true)
	c.Redirect(http.StatusFound, resolved.Campaign.LandingURL)
}

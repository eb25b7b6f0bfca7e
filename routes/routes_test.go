package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	handlers "referralhub/internal/handlers/api"
	"referralhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "routes-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handlers{
		Redirect:    &handlers.RedirectHandler{},
		Event:       &handlers.EventHandler{},
		Conversion:  &handlers.ConversionHandler{},
		Reward:      &handlers.RewardHandler{},
		Campaign:    &handlers.CampaignHandler{},
		Participant: &handlers.ParticipantHandler{},
		Link:        &handlers.LinkHandler{},
		Fraud:       &handlers.FraudHandler{},
		Export:      &handlers.ExportHandler{},
		Health:      &handlers.HealthHandler{},
	}

	router := gin.New()
	SetupPublicRoutes(router, h)
	SetupReferralRoutes(router.Group("/api"), h, AuthConfig{Secret: testSecret, Issuer: "referralhub"})
	return router
}

func TestAPIRequiresToken(t *testing.T) {
	router := newRouter()

	for _, path := range []string{"/api/conversions", "/api/rewards", "/api/campaigns", "/api/fraud/signals"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, w.Code)
		}
	}
}

func TestManagerRoutesRejectMembers(t *testing.T) {
	router := newRouter()
	token, err := utils.GenerateToken(primitive.NewObjectID(), primitive.NewObjectID(), utils.RoleMember, testSecret, "referralhub", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/campaigns"},
		{http.MethodPut, "/api/campaigns/" + primitive.NewObjectID().Hex()},
		{http.MethodDelete, "/api/campaigns/" + primitive.NewObjectID().Hex()},
		{http.MethodPost, "/api/rewards"},
		{http.MethodPatch, "/api/fraud/signals/" + primitive.NewObjectID().Hex() + "/status"},
		{http.MethodPost, "/api/exports/conversions"},
	}
	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s = %d, want 403", route.method, route.path, w.Code)
		}
	}
}

func TestLiveRouteOmittedWhenDisabled(t *testing.T) {
	router := newRouter()
	for _, route := range router.Routes() {
		if route.Path == "/api/live" {
			t.Fatal("live route registered without a handler")
		}
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"referralhub/internal/config"
	"referralhub/internal/middleware"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/services"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"
	"referralhub/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	testOrgID  = primitive.NewObjectID()
	testUserID = primitive.NewObjectID()
)

func authenticated(router *gin.Engine) *gin.RouterGroup {
	return router.Group("/api", func(c *gin.Context) {
		c.Set(middleware.ContextOrgID, testOrgID)
		c.Set(middleware.ContextUserID, testUserID)
		c.Next()
	})
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

type stubLinkService struct {
	services.LinkService
	resolved *models.ResolvedLink
	err      error
}

func (s *stubLinkService) Resolve(context.Context, string) (*models.ResolvedLink, error) {
	return s.resolved, s.err
}

type failingEventRepo struct {
	interfaces.EventRepository
	mu    sync.Mutex
	calls int
}

func (r *failingEventRepo) Create(context.Context, *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return errors.New("event store unavailable")
}

type countingLinkRepo struct {
	interfaces.ReferralLinkRepository
}

func (countingLinkRepo) IncrementClicks(context.Context, primitive.ObjectID) error {
	return nil
}

func testAttribution() *config.AttributionConfig {
	return &config.AttributionConfig{
		CookieName:   "ref_code",
		CookieTTL:    30 * 24 * time.Hour,
		ClickTimeout: time.Second,
	}
}

func resolvedLink() *models.ResolvedLink {
	campaignID := primitive.NewObjectID()
	return &models.ResolvedLink{
		Link: models.ReferralLink{
			ID:         primitive.NewObjectID(),
			OrgID:      testOrgID,
			CampaignID: campaignID,
			Code:       "ABCD12",
		},
		Campaign: models.Campaign{
			ID:         campaignID,
			OrgID:      testOrgID,
			Status:     models.CampaignStatusActive,
			LandingURL: "https://shop.example/summer",
		},
	}
}

func TestRedirectSurvivesClickFailure(t *testing.T) {
	eventRepo := &failingEventRepo{}
	cfg := &config.Config{Attribution: testAttribution()}
	clicks := services.NewClickService(cfg, eventRepo, countingLinkRepo{}, websocket.NopPublisher{}, logger.NewNop())

	handler := NewRedirectHandler(cfg.Attribution, &stubLinkService{resolved: resolvedLink()}, clicks, logger.NewNop())
	router := gin.New()
	router.GET("/r/:code", handler.Redirect)

	w := perform(router, http.MethodGet, "/r/ABCD12?utm_source=mail", "")
	clicks.Wait()

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://shop.example/summer" {
		t.Errorf("Location = %q", loc)
	}
	cookie := w.Header().Get("Set-Cookie")
	if !strings.HasPrefix(cookie, "ref_code=ABCD12") {
		t.Errorf("Set-Cookie = %q", cookie)
	}
	for _, attr := range []string{"Max-Age=2592000", "Path=/", "HttpOnly", "SameSite=Lax"} {
		if !strings.Contains(cookie, attr) {
			t.Errorf("Set-Cookie %q missing %s", cookie, attr)
		}
	}
	if eventRepo.calls != 1 {
		t.Errorf("event inserts attempted = %d, want 1", eventRepo.calls)
	}
}

func TestRedirectErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unknown code", utils.NewNotFoundError(utils.ErrLinkNotFound), http.StatusNotFound, utils.ErrLinkNotFound},
		{"inactive campaign", utils.NewInvalidStateError(utils.ErrCampaignInactive), http.StatusBadRequest, utils.ErrCampaignInactive},
		{"store failure", errors.New("mongo timeout"), http.StatusInternalServerError, utils.ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Attribution: testAttribution()}
			clicks := services.NewClickService(cfg, &failingEventRepo{}, countingLinkRepo{}, websocket.NopPublisher{}, logger.NewNop())
			handler := NewRedirectHandler(cfg.Attribution, &stubLinkService{err: tt.err}, clicks, logger.NewNop())
			router := gin.New()
			router.GET("/r/:code", handler.Redirect)

			w := perform(router, http.MethodGet, "/r/NOPE99", "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if w.Header().Get("Set-Cookie") != "" {
				t.Error("cookie set on failed redirect")
			}
			resp := decode(t, w)
			if resp.Error == nil || resp.Error.Message != tt.message {
				t.Errorf("error = %+v, want message %q", resp.Error, tt.message)
			}
		})
	}
}

type stubEventService struct {
	services.EventService
	request *validators.CreateEventRequest
	err     error
}

func (s *stubEventService) CreateEvent(_ context.Context, orgID primitive.ObjectID, request *validators.CreateEventRequest) (*models.Event, error) {
	s.request = request
	if s.err != nil {
		return nil, s.err
	}
	return &models.Event{ID: primitive.NewObjectID(), OrgID: orgID, EventType: models.EventType(request.EventType)}, nil
}

func TestCreateEvent(t *testing.T) {
	t.Run("paused campaign", func(t *testing.T) {
		stub := &stubEventService{err: utils.NewInvalidStateError(utils.ErrCampaignInactive)}
		router := gin.New()
		authenticated(router).POST("/events", NewEventHandler(stub, logger.NewNop()).CreateEvent)

		w := perform(router, http.MethodPost, "/api/events", `{"campaign_id":"`+primitive.NewObjectID().Hex()+`","event_type":"signup"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if resp := decode(t, w); resp.Error.Message != "Campaign is not active" {
			t.Errorf("message = %q", resp.Error.Message)
		}
	})

	t.Run("captures client details", func(t *testing.T) {
		stub := &stubEventService{}
		router := gin.New()
		authenticated(router).POST("/events", NewEventHandler(stub, logger.NewNop()).CreateEvent)

		w := perform(router, http.MethodPost, "/api/events", `{"campaign_id":"`+primitive.NewObjectID().Hex()+`","event_type":"signup"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
		if stub.request.IPAddress == "" {
			t.Error("client IP not captured")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := gin.New()
		authenticated(router).POST("/events", NewEventHandler(&stubEventService{}, logger.NewNop()).CreateEvent)

		w := perform(router, http.MethodPost, "/api/events", `{"campaign_id":`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

type stubConversionService struct {
	services.ConversionService
	request *validators.CreateConversionRequest
	err     error
}

func (s *stubConversionService) CreateConversion(_ context.Context, orgID primitive.ObjectID, request *validators.CreateConversionRequest) (*models.Conversion, error) {
	s.request = request
	if s.err != nil {
		return nil, s.err
	}
	return &models.Conversion{ID: primitive.NewObjectID(), OrgID: orgID}, nil
}

func TestCreateConversion(t *testing.T) {
	body := `{"campaign_id":"` + primitive.NewObjectID().Hex() + `","conversion_type":"purchase","customer_email":"a@x.com"}`

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"duplicate", utils.NewConflictError(utils.ErrConversionDuplicate, interfaces.ErrDuplicate), http.StatusConflict},
		{"validation", utils.NewValidationError(map[string]string{"conversion_type": "conversion_type must be one of"}), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			authenticated(router).POST("/conversions", NewConversionHandler(&stubConversionService{err: tt.err}, "ref_code", logger.NewNop()).CreateConversion)

			w := perform(router, http.MethodPost, "/api/conversions", body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}

	t.Run("validation details are returned", func(t *testing.T) {
		router := gin.New()
		err := utils.NewValidationError(map[string]string{"conversion_type": "bad"})
		authenticated(router).POST("/conversions", NewConversionHandler(&stubConversionService{err: err}, "ref_code", logger.NewNop()).CreateConversion)

		resp := decode(t, perform(router, http.MethodPost, "/api/conversions", body))
		if resp.Error == nil || resp.Error.Details["conversion_type"] != "bad" {
			t.Errorf("error = %+v", resp.Error)
		}
	})

	t.Run("cookie supplies ref code", func(t *testing.T) {
		stub := &stubConversionService{}
		router := gin.New()
		authenticated(router).POST("/conversions", NewConversionHandler(stub, "ref_code", logger.NewNop()).CreateConversion)

		req := httptest.NewRequest(http.MethodPost, "/api/conversions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "ref_code", Value: "ABCD12"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d", w.Code)
		}
		if stub.request.RefCode != "ABCD12" {
			t.Errorf("RefCode = %q, want ABCD12", stub.request.RefCode)
		}
	})
}

type stubRewardService struct {
	services.RewardService
	err error
}

func (s *stubRewardService) CreateReward(_ context.Context, orgID, _ primitive.ObjectID, request *validators.CreateRewardRequest) (*models.Reward, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Reward{ID: primitive.NewObjectID(), OrgID: orgID, Amount: request.Amount}, nil
}

func TestCreateReward(t *testing.T) {
	body := `{"conversion_id":"` + primitive.NewObjectID().Hex() + `","amount":25}`

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"unconfirmed conversion", utils.NewInvalidStateError(utils.ErrConversionNotReady), http.StatusBadRequest},
		{"second reward", utils.NewConflictError(utils.ErrRewardDuplicate, interfaces.ErrDuplicate), http.StatusConflict},
		{"unknown conversion", utils.NewNotFoundError(utils.ErrConversionNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			authenticated(router).POST("/rewards", NewRewardHandler(&stubRewardService{err: tt.err}, logger.NewNop()).CreateReward)

			w := perform(router, http.MethodPost, "/api/rewards", body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

type stubFraudService struct {
	services.FraudService
	filter interfaces.FraudSignalFilter
}

func (s *stubFraudService) ListSignals(_ context.Context, filter interfaces.FraudSignalFilter, _ *utils.PaginationParams) ([]*models.FraudSignal, int64, error) {
	s.filter = filter
	return []*models.FraudSignal{}, 0, nil
}

func TestListSignalsFilters(t *testing.T) {
	stub := &stubFraudService{}
	router := gin.New()
	authenticated(router).GET("/fraud/signals", NewFraudHandler(stub, logger.NewNop()).ListSignals)

	linkID := primitive.NewObjectID()
	w := perform(router, http.MethodGet, "/api/fraud/signals?status=open&referral_link_id="+linkID.Hex(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if stub.filter.OrgID != testOrgID {
		t.Error("org scope not applied")
	}
	if stub.filter.ReferralLinkID == nil || *stub.filter.ReferralLinkID != linkID {
		t.Errorf("ReferralLinkID = %v", stub.filter.ReferralLinkID)
	}
	if stub.filter.Status != models.FraudSignalStatus("open") {
		t.Errorf("Status = %q", stub.filter.Status)
	}

	w = perform(router, http.MethodGet, "/api/fraud/signals?referral_link_id=nope", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", w.Code)
	}
}

func TestMissingIdentity(t *testing.T) {
	router := gin.New()
	router.POST("/rewards", NewRewardHandler(&stubRewardService{}, logger.NewNop()).CreateReward)

	w := perform(router, http.MethodPost, "/rewards", `{}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if resp := decode(t, w); resp.Error == nil || resp.Error.Code != string(utils.KindUnauthorized) {
		t.Errorf("error = %+v", resp.Error)
	}
}

type fakeClientCounter int

func (n fakeClientCounter) ClientCount() int { return int(n) }

func TestHealthReportsLiveClients(t *testing.T) {
	router := gin.New()
	health := NewHealthHandler("1.0.0", map[string]Pinger{}, logger.NewNop()).WithLiveFeed(fakeClientCounter(3))
	router.GET("/health", health.Health)

	w := perform(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data, ok := decode(t, w).Data.(map[string]interface{})
	if !ok || data["live_clients"] != float64(3) {
		t.Errorf("data = %v", decode(t, w).Data)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	router := gin.New()
	router.GET("/health", NewHealthHandler("1.0.0", map[string]Pinger{"mongodb": fakePinger{}}, logger.NewNop()).Health)
	w := perform(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}
	if data, _ := decode(t, w).Data.(map[string]interface{}); data == nil || data["live_clients"] != nil {
		t.Errorf("live_clients must be omitted without a live feed: %v", data)
	}

	router = gin.New()
	router.GET("/health", NewHealthHandler("1.0.0", map[string]Pinger{"redis": fakePinger{err: errors.New("down")}}, logger.NewNop()).Health)
	if w := perform(router, http.MethodGet, "/health", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d", w.Code)
	}
}

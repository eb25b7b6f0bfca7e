package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/cache"
	"referralhub/pkg/sms"
	"referralhub/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testConfig() *config.Config {
	return &config.Config{
		App: &config.AppConfig{Currency: "USD", BaseURL: "https://ref.example/"},
		Attribution: &config.AttributionConfig{
			CookieName:     "ref_code",
			CookieTTL:      utils.AttributionCookieMaxAge,
			ClickTimeout:   time.Second,
			LinkCacheTTL:   time.Minute,
			CodeLength:     6,
			CodeMaxRetries: 3,
		},
		SMS: &config.SMSConfig{
			Provider:       "none",
			InviteTemplate: "Hi %s, share your link and earn rewards: %s",
		},
		Storage: &config.StorageConfig{Provider: "local", URLExpiry: 60},
		Fraud: &config.FraudConfig{
			MaxClicksPerHour: 50,
			MaxClicksPerIP:   10,
			Window:           time.Hour,
			ReviewThreshold:  0.5,
		},
	}
}

func paginate[T any](items []*T, params *utils.PaginationParams) []*T {
	start := params.GetSkip()
	if start > len(items) {
		return []*T{}
	}
	end := start + params.GetLimit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Campaigns

type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[primitive.ObjectID]models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[primitive.ObjectID]models.Campaign)}
}

func (r *fakeCampaignRepo) Create(_ context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	campaign.ID = primitive.NewObjectID()
	campaign.CreatedAt = utils.Now()
	campaign.UpdatedAt = campaign.CreatedAt
	r.campaigns[campaign.ID] = *campaign
	return nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCampaignRepo) GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Campaign, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil || c.OrgID != orgID {
		return nil, interfaces.ErrNotFound
	}
	return c, nil
}

func (r *fakeCampaignRepo) List(_ context.Context, orgID primitive.ObjectID, status models.CampaignStatus, params *utils.PaginationParams) ([]*models.Campaign, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Campaign
	for _, c := range r.campaigns {
		c := c
		if c.OrgID == orgID && (status == "" || c.Status == status) {
			out = append(out, &c)
		}
	}
	return paginate(out, params), int64(len(out)), nil
}

func (r *fakeCampaignRepo) UpdateStatus(_ context.Context, orgID, id primitive.ObjectID, status models.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.OrgID != orgID {
		return interfaces.ErrNotFound
	}
	c.Status = status
	r.campaigns[id] = c
	return nil
}

func (r *fakeCampaignRepo) Update(_ context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaign.ID]
	if !ok || c.OrgID != campaign.OrgID {
		return interfaces.ErrNotFound
	}
	campaign.Status = c.Status
	campaign.UpdatedAt = utils.Now()
	r.campaigns[campaign.ID] = *campaign
	return nil
}

func (r *fakeCampaignRepo) Delete(_ context.Context, orgID, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.OrgID != orgID {
		return interfaces.ErrNotFound
	}
	delete(r.campaigns, id)
	return nil
}

func (r *fakeCampaignRepo) add(orgID primitive.ObjectID, status models.CampaignStatus, landingURL string) *models.Campaign {
	c := &models.Campaign{
		OrgID:        orgID,
		Name:         "Summer",
		Status:       status,
		LandingURL:   landingURL,
		RewardPolicy: models.RewardPolicy{Type: models.RewardTypeCredit, Value: 10, Currency: "EUR"},
	}
	_ = r.Create(context.Background(), c)
	return c
}

// Participants

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[primitive.ObjectID]models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[primitive.ObjectID]models.Participant)}
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = utils.Now()
	p.UpdatedAt = p.CreatedAt
	r.participants[p.ID] = *p
	return nil
}

func (r *fakeParticipantRepo) GetForOrg(_ context.Context, orgID, id primitive.ObjectID) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok || p.OrgID != orgID {
		return nil, interfaces.ErrNotFound
	}
	return &p, nil
}

func (r *fakeParticipantRepo) ListByCampaign(_ context.Context, orgID, campaignID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Participant, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Participant
	for _, p := range r.participants {
		p := p
		if p.OrgID == orgID && p.CampaignID == campaignID {
			out = append(out, &p)
		}
	}
	return paginate(out, params), int64(len(out)), nil
}

func (r *fakeParticipantRepo) add(campaign *models.Campaign) *models.Participant {
	p := &models.Participant{OrgID: campaign.OrgID, CampaignID: campaign.ID, Name: "Ada", Status: models.ParticipantStatusActive}
	_ = r.Create(context.Background(), p)
	return p
}

// Referral links

type fakeLinkRepo struct {
	mu         sync.Mutex
	links      map[primitive.ObjectID]models.ReferralLink
	createErrs []error
	incErr     error
	getByCode  int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[primitive.ObjectID]models.ReferralLink)}
}

func (r *fakeLinkRepo) Create(_ context.Context, link *models.ReferralLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return err
	}
	link.Code = strings.ToUpper(link.Code)
	for _, existing := range r.links {
		if existing.Code == link.Code {
			return fmt.Errorf("failed to create referral link: %w", interfaces.ErrDuplicate)
		}
	}
	link.ID = primitive.NewObjectID()
	link.CreatedAt = utils.Now()
	link.UpdatedAt = link.CreatedAt
	r.links[link.ID] = *link
	return nil
}

func (r *fakeLinkRepo) GetByCode(_ context.Context, code string) (*models.ReferralLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByCode++
	for _, l := range r.links {
		if l.Code == strings.ToUpper(code) {
			return &l, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeLinkRepo) GetForOrg(_ context.Context, orgID, id primitive.ObjectID) (*models.ReferralLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.OrgID != orgID {
		return nil, interfaces.ErrNotFound
	}
	return &l, nil
}

func (r *fakeLinkRepo) ListCodesByCampaign(_ context.Context, campaignID primitive.ObjectID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var codes []string
	for _, l := range r.links {
		if l.CampaignID == campaignID {
			codes = append(codes, l.Code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *fakeLinkRepo) IncrementClicks(_ context.Context, id primitive.ObjectID) error {
	return r.increment(id, func(l *models.ReferralLink) { l.ClicksCount++ })
}

func (r *fakeLinkRepo) IncrementConversions(_ context.Context, id primitive.ObjectID) error {
	return r.increment(id, func(l *models.ReferralLink) { l.ConversionsCount++ })
}

func (r *fakeLinkRepo) increment(id primitive.ObjectID, apply func(*models.ReferralLink)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return r.incErr
	}
	l, ok := r.links[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	apply(&l)
	r.links[id] = l
	return nil
}

func (r *fakeLinkRepo) get(id primitive.ObjectID) models.ReferralLink {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[id]
}

func (r *fakeLinkRepo) add(campaign *models.Campaign, participant *models.Participant, code string) *models.ReferralLink {
	link := &models.ReferralLink{
		OrgID:      campaign.OrgID,
		CampaignID: campaign.ID,
		Code:       code,
		UTM:        map[string]string{"utm_source": "partner"},
	}
	if participant != nil {
		id := participant.ID
		link.ParticipantID = &id
	}
	_ = r.Create(context.Background(), link)
	return link
}

// Events

type fakeEventRepo struct {
	mu        sync.Mutex
	events    []models.Event
	createErr error
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	event.ID = primitive.NewObjectID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = utils.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) List(_ context.Context, filter interfaces.EventFilter, params *utils.PaginationParams) ([]*models.Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Event
	for _, e := range r.events {
		e := e
		if e.OrgID == filter.OrgID && (filter.EventType == "" || e.EventType == filter.EventType) {
			out = append(out, &e)
		}
	}
	return paginate(out, params), int64(len(out)), nil
}

func (r *fakeEventRepo) ListClicksSince(_ context.Context, linkID primitive.ObjectID, since time.Time, limit int) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Event
	for _, e := range r.events {
		e := e
		if e.EventType == models.EventTypeClick && e.ReferralLinkID != nil && *e.ReferralLinkID == linkID && e.CreatedAt.After(since) {
			out = append(out, &e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEventRepo) count(eventType models.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

// Conversions enforce the (campaign_id, customer_email, conversion_type)
// unique index the way the partial Mongo index does.

type fakeConversionRepo struct {
	mu          sync.Mutex
	conversions map[primitive.ObjectID]models.Conversion
	calls       int
}

func newFakeConversionRepo() *fakeConversionRepo {
	return &fakeConversionRepo{conversions: make(map[primitive.ObjectID]models.Conversion)}
}

func (r *fakeConversionRepo) Create(_ context.Context, c *models.Conversion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if c.CustomerEmail != "" {
		for _, existing := range r.conversions {
			if existing.CampaignID == c.CampaignID && existing.CustomerEmail == c.CustomerEmail && existing.ConversionType == c.ConversionType {
				return fmt.Errorf("failed to create conversion: %w", interfaces.ErrDuplicate)
			}
		}
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = utils.Now()
	c.UpdatedAt = c.CreatedAt
	r.conversions[c.ID] = *c
	return nil
}

func (r *fakeConversionRepo) GetForOrg(_ context.Context, orgID, id primitive.ObjectID) (*models.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversions[id]
	if !ok || c.OrgID != orgID {
		return nil, interfaces.ErrNotFound
	}
	return &c, nil
}

func (r *fakeConversionRepo) List(ctx context.Context, filter interfaces.ConversionFilter, params *utils.PaginationParams) ([]*models.Conversion, int64, error) {
	out, _ := r.ListForExport(ctx, filter, 1<<30)
	return paginate(out, params), int64(len(out)), nil
}

func (r *fakeConversionRepo) ListForExport(_ context.Context, filter interfaces.ConversionFilter, limit int) ([]*models.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversion
	for _, c := range r.conversions {
		c := c
		if c.OrgID != filter.OrgID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.CampaignID != nil && c.CampaignID != *filter.CampaignID {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConversionRepo) UpdateStatus(_ context.Context, orgID, id primitive.ObjectID, from, to models.ConversionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversions[id]
	if !ok || c.OrgID != orgID {
		return interfaces.ErrNotFound
	}
	if c.Status != from {
		return interfaces.ErrStatusChanged
	}
	c.Status = to
	r.conversions[id] = c
	return nil
}

func (r *fakeConversionRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conversions)
}

func (r *fakeConversionRepo) add(campaign *models.Campaign, status models.ConversionStatus) *models.Conversion {
	c := &models.Conversion{
		OrgID:          campaign.OrgID,
		CampaignID:     campaign.ID,
		ConversionType: models.ConversionTypePurchase,
		Status:         status,
	}
	_ = r.Create(context.Background(), c)
	return c
}

// Rewards are unique per conversion.

type fakeRewardRepo struct {
	mu      sync.Mutex
	rewards map[primitive.ObjectID]models.Reward
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{rewards: make(map[primitive.ObjectID]models.Reward)}
}

func (r *fakeRewardRepo) Create(_ context.Context, reward *models.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rewards {
		if existing.ConversionID == reward.ConversionID {
			return fmt.Errorf("failed to create reward: %w", interfaces.ErrDuplicate)
		}
	}
	reward.ID = primitive.NewObjectID()
	reward.CreatedAt = utils.Now()
	reward.UpdatedAt = reward.CreatedAt
	r.rewards[reward.ID] = *reward
	return nil
}

func (r *fakeRewardRepo) GetForOrg(_ context.Context, orgID, id primitive.ObjectID) (*models.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rw, ok := r.rewards[id]
	if !ok || rw.OrgID != orgID {
		return nil, interfaces.ErrNotFound
	}
	return &rw, nil
}

func (r *fakeRewardRepo) List(_ context.Context, filter interfaces.RewardFilter, params *utils.PaginationParams) ([]*models.Reward, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Reward
	for _, rw := range r.rewards {
		rw := rw
		if rw.OrgID == filter.OrgID && (filter.Status == "" || rw.Status == filter.Status) {
			out = append(out, &rw)
		}
	}
	return paginate(out, params), int64(len(out)), nil
}

func (r *fakeRewardRepo) UpdateStatus(_ context.Context, orgID, id primitive.ObjectID, from, to models.RewardStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rw, ok := r.rewards[id]
	if !ok || rw.OrgID != orgID {
		return interfaces.ErrNotFound
	}
	if rw.Status != from {
		return interfaces.ErrStatusChanged
	}
	rw.Status = to
	r.rewards[id] = rw
	return nil
}

func (r *fakeRewardRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rewards)
}

// Fraud signals

type fakeSignalRepo struct {
	mu      sync.Mutex
	signals map[primitive.ObjectID]models.FraudSignal
}

func newFakeSignalRepo() *fakeSignalRepo {
	return &fakeSignalRepo{signals: make(map[primitive.ObjectID]models.FraudSignal)}
}

func (r *fakeSignalRepo) CreateMany(_ context.Context, signals []*models.FraudSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range signals {
		s.ID = primitive.NewObjectID()
		s.CreatedAt = utils.Now()
		s.UpdatedAt = s.CreatedAt
		r.signals[s.ID] = *s
	}
	return nil
}

func (r *fakeSignalRepo) GetForOrg(_ context.Context, orgID, id primitive.ObjectID) (*models.FraudSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.signals[id]
	if !ok || s.OrgID != orgID {
		return nil, interfaces.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSignalRepo) List(_ context.Context, filter interfaces.FraudSignalFilter, params *utils.PaginationParams) ([]*models.FraudSignal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.FraudSignal
	for _, s := range r.signals {
		s := s
		if s.OrgID == filter.OrgID && (filter.Status == "" || s.Status == filter.Status) {
			out = append(out, &s)
		}
	}
	return paginate(out, params), int64(len(out)), nil
}

func (r *fakeSignalRepo) UpdateStatus(_ context.Context, orgID, id primitive.ObjectID, status models.FraudSignalStatus, reviewedBy primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.signals[id]
	if !ok || s.OrgID != orgID {
		return interfaces.ErrNotFound
	}
	s.Status = status
	s.ReviewedBy = &reviewedBy
	r.signals[id] = s
	return nil
}

func (r *fakeSignalRepo) CountOpenByLink(_ context.Context, linkID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.signals {
		if s.ReferralLinkID == linkID && s.Status == models.FraudSignalStatusOpen {
			n++
		}
	}
	return n, nil
}

// Exports

type fakeExportRepo struct {
	exports []models.Export
}

func (r *fakeExportRepo) Create(_ context.Context, export *models.Export) error {
	export.ID = primitive.NewObjectID()
	export.CreatedAt = utils.Now()
	r.exports = append(r.exports, *export)
	return nil
}

// Cache stores JSON like the Redis implementation does.

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *fakeCache) raw(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key]
}

func (c *fakeCache) put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
}

// Live feed

type publishedMessage struct {
	orgID   primitive.ObjectID
	msgType string
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *recordingPublisher) Publish(_ context.Context, orgID primitive.ObjectID, msgType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{orgID: orgID, msgType: msgType})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.msgType
	}
	return out
}

// SMS

type fakeSMS struct {
	requests []*sms.SMSRequest
	err      error
}

func (f *fakeSMS) SendSMS(_ context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return &sms.SMSResponse{MessageID: "SM123", Status: "queued"}, nil
}

// Storage

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	data, err := io.ReadAll(request.Reader)
	if err != nil {
		return nil, err
	}
	s.objects[request.Key] = data
	return &storage.UploadResponse{Key: request.Key, Size: int64(len(data))}, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	if _, ok := s.objects[key]; !ok {
		return errors.New("not found")
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) GetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.example/" + key, nil
}

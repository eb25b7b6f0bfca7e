package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/cache"
	"referralhub/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LinkService interface {
	// Resolve maps a short code to its link and campaign. It fails with
	// NotFound for unknown codes and InvalidState when the campaign is not
	// active.
	Resolve(ctx context.Context, code string) (*models.ResolvedLink, error)
	GetLinkStats(ctx context.Context, orgID primitive.ObjectID, code string) (*models.LinkStats, error)
	InvalidateCampaign(ctx context.Context, campaignID primitive.ObjectID) error
}

// cachedResolution is only trusted while Generation matches the campaign's
// current generation, so an entry written by a lookup that raced an
// invalidation is discarded on its next read.
type cachedResolution struct {
	Resolved   models.ResolvedLink `json:"resolved"`
	Generation string              `json:"generation"`
}

type linkService struct {
	cache        cache.Cache
	cacheTTL     time.Duration
	linkRepo     interfaces.ReferralLinkRepository
	campaignRepo interfaces.CampaignRepository
	signalRepo   interfaces.FraudSignalRepository
	logger       *logger.Logger
}

func NewLinkService(
	config *config.Config,
	cache cache.Cache,
	linkRepo interfaces.ReferralLinkRepository,
	campaignRepo interfaces.CampaignRepository,
	signalRepo interfaces.FraudSignalRepository,
	log *logger.Logger,
) LinkService {
	return &linkService{
		cache:        cache,
		cacheTTL:     config.Attribution.LinkCacheTTL,
		linkRepo:     linkRepo,
		campaignRepo: campaignRepo,
		signalRepo:   signalRepo,
		logger:       log.WithField("service", "link"),
	}
}

func (s *linkService) Resolve(ctx context.Context, code string) (*models.ResolvedLink, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, utils.NewNotFoundError(utils.ErrLinkNotFound)
	}

	resolved, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	if !resolved.Campaign.IsActive() {
		return nil, utils.NewInvalidStateError(utils.ErrCampaignInactive)
	}

	return resolved, nil
}

// lookup reads through the cache. Cache failures fall back to the database.
func (s *linkService) lookup(ctx context.Context, code string) (*models.ResolvedLink, error) {
	key := utils.CacheLinkCodePrefix + code

	var cached cachedResolution
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		current, genErr := s.generation(ctx, cached.Resolved.Campaign.ID)
		if genErr == nil && current == cached.Generation && !cached.Resolved.Link.ID.IsZero() {
			return &cached.Resolved, nil
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.WithError(err).WithField("code", code).Warn("Link cache read failed")
	}

	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, repoError(err, utils.ErrLinkNotFound)
	}

	// The generation is read before the campaign so a concurrent
	// invalidation always leaves this entry behind the current generation.
	generation, genErr := s.generation(ctx, link.CampaignID)

	campaign, err := s.campaignRepo.GetByID(ctx, link.CampaignID)
	if err != nil {
		return nil, repoError(err, utils.ErrLinkNotFound)
	}

	resolved := &models.ResolvedLink{Link: *link, Campaign: *campaign}
	if genErr != nil {
		return resolved, nil
	}
	entry := cachedResolution{Resolved: *resolved, Generation: generation}
	if err := s.cache.Set(ctx, key, entry, s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("code", code).Warn("Link cache write failed")
	}

	return resolved, nil
}

// generation returns the campaign's cache generation, empty until the
// campaign is first invalidated.
func (s *linkService) generation(ctx context.Context, campaignID primitive.ObjectID) (string, error) {
	var generation string
	err := s.cache.Get(ctx, utils.CacheCampaignGenerationPrefix+campaignID.Hex(), &generation)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", nil
	}
	return generation, err
}

func (s *linkService) GetLinkStats(ctx context.Context, orgID primitive.ObjectID, code string) (*models.LinkStats, error) {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, repoError(err, utils.ErrLinkNotFound)
	}
	if link.OrgID != orgID {
		return nil, utils.NewNotFoundError(utils.ErrLinkNotFound)
	}

	openSignals, err := s.signalRepo.CountOpenByLink(ctx, link.ID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	stats := &models.LinkStats{
		Code:             link.Code,
		CampaignID:       link.CampaignID.Hex(),
		ClicksCount:      link.ClicksCount,
		ConversionsCount: link.ConversionsCount,
		OpenFraudSignals: openSignals,
	}
	if link.ClicksCount > 0 {
		rate := float64(link.ConversionsCount) / float64(link.ClicksCount)
		stats.ConversionRate = math.Round(rate*10000) / 10000
	}

	return stats, nil
}

// InvalidateCampaign bumps the campaign generation and drops the cached
// resolutions of its links. The generation outlives any entry written
// before the bump.
func (s *linkService) InvalidateCampaign(ctx context.Context, campaignID primitive.ObjectID) error {
	genKey := utils.CacheCampaignGenerationPrefix + campaignID.Hex()
	if err := s.cache.Set(ctx, genKey, uuid.NewString(), 2*s.cacheTTL); err != nil {
		return err
	}

	codes, err := s.linkRepo.ListCodesByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = utils.CacheLinkCodePrefix + code
	}
	return s.cache.Delete(ctx, keys...)
}

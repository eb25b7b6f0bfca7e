package services

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/fraud"
	"referralhub/pkg/logger"
	"referralhub/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxScanClicks bounds the number of click events loaded per scan.
const maxScanClicks = 10000

// FraudService flags suspicious click patterns for human review. Signals are
// advisory and never block clicks, conversions or redirects.
type FraudService interface {
	ScanLink(ctx context.Context, orgID, linkID primitive.ObjectID) ([]*models.FraudSignal, error)
	ListSignals(ctx context.Context, filter interfaces.FraudSignalFilter, params *utils.PaginationParams) ([]*models.FraudSignal, int64, error)
	UpdateSignalStatus(ctx context.Context, orgID, signalID, reviewedBy primitive.ObjectID, request *validators.UpdateFraudSignalStatusRequest) (*models.FraudSignal, error)
}

type fraudService struct {
	detector   *fraud.Detector
	linkRepo   interfaces.ReferralLinkRepository
	eventRepo  interfaces.EventRepository
	signalRepo interfaces.FraudSignalRepository
	publisher  websocket.Publisher
	logger     *logger.Logger
	audit      *logger.AuditLogger
}

func NewFraudService(
	detector *fraud.Detector,
	linkRepo interfaces.ReferralLinkRepository,
	eventRepo interfaces.EventRepository,
	signalRepo interfaces.FraudSignalRepository,
	publisher websocket.Publisher,
	log *logger.Logger,
) FraudService {
	return &fraudService{
		detector:   detector,
		linkRepo:   linkRepo,
		eventRepo:  eventRepo,
		signalRepo: signalRepo,
		publisher:  publisher,
		logger:     log.WithField("service", "fraud"),
		audit:      logger.NewAuditLoggerFrom(log),
	}
}

func (s *fraudService) ScanLink(ctx context.Context, orgID, linkID primitive.ObjectID) ([]*models.FraudSignal, error) {
	link, err := s.linkRepo.GetForOrg(ctx, orgID, linkID)
	if err != nil {
		return nil, repoError(err, utils.ErrLinkNotFound)
	}

	events, err := s.eventRepo.ListClicksSince(ctx, link.ID, s.detector.Since(utils.Now()), maxScanClicks)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	batch := make([]fraud.Click, len(events))
	for i, event := range events {
		batch[i] = fraud.Click{
			EventID:    event.ID.Hex(),
			IPAddress:  event.IPAddress,
			OccurredAt: event.CreatedAt,
		}
	}

	findings := s.detector.Evaluate(batch)
	signals := make([]*models.FraudSignal, 0, len(findings))
	for _, finding := range findings {
		signals = append(signals, signalFromFinding(link, finding))
	}

	if len(signals) == 0 {
		return signals, nil
	}

	if err := s.signalRepo.CreateMany(ctx, signals); err != nil {
		s.logger.WithError(err).WithField("referral_link_id", link.ID.Hex()).Error("Failed to store fraud signals")
		return nil, utils.NewInternalError(err)
	}

	for _, signal := range signals {
		s.logger.LogSecurityEvent("fraud_signal", signal.RiskLevel, map[string]interface{}{
			"signal_id":        signal.ID.Hex(),
			"rule":             signal.Rule,
			"score":            signal.Score,
			"referral_link_id": link.ID.Hex(),
			"ip_address":       signal.IPAddress,
		})
		s.publisher.Publish(ctx, orgID, utils.FeedFraudSignalOpened, signal)
	}

	return signals, nil
}

func signalFromFinding(link *models.ReferralLink, finding fraud.Finding) *models.FraudSignal {
	signal := &models.FraudSignal{
		OrgID:          link.OrgID,
		CampaignID:     link.CampaignID,
		ReferralLinkID: link.ID,
		Rule:           finding.Rule,
		Score:          finding.Score,
		RiskLevel:      finding.RiskLevel,
		Reasons:        finding.Reasons,
		IPAddress:      finding.IPAddress,
		Status:         models.FraudSignalStatusOpen,
	}
	if eventID, err := primitive.ObjectIDFromHex(finding.LatestEventID); err == nil {
		signal.EventID = &eventID
	}
	return signal
}

func (s *fraudService) ListSignals(ctx context.Context, filter interfaces.FraudSignalFilter, params *utils.PaginationParams) ([]*models.FraudSignal, int64, error) {
	signals, total, err := s.signalRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, utils.NewInternalError(err)
	}
	return signals, total, nil
}

func (s *fraudService) UpdateSignalStatus(ctx context.Context, orgID, signalID, reviewedBy primitive.ObjectID, request *validators.UpdateFraudSignalStatusRequest) (*models.FraudSignal, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	signal, err := s.signalRepo.GetForOrg(ctx, orgID, signalID)
	if err != nil {
		return nil, repoError(err, utils.ErrSignalNotFound)
	}

	status := models.FraudSignalStatus(request.Status)
	if err := s.signalRepo.UpdateStatus(ctx, orgID, signalID, status, reviewedBy); err != nil {
		return nil, repoError(err, utils.ErrSignalNotFound)
	}

	s.audit.LogStatusChange("fraud_signal", signalID, string(signal.Status), string(status), reviewedBy.Hex())

	signal.Status = status
	signal.ReviewedBy = &reviewedBy
	signal.UpdatedAt = utils.Now()
	return signal, nil
}

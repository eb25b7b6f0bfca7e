package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"
	"referralhub/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	InviteStatusSent    = "sent"
	InviteStatusFailed  = "failed"
	InviteStatusSkipped = "skipped"
)

type ParticipantService interface {
	// InviteParticipant adds a participant to an active campaign and issues
	// their referral link. An SMS invite is sent when a phone is given.
	InviteParticipant(ctx context.Context, orgID primitive.ObjectID, request *validators.CreateParticipantRequest) (*models.ParticipantInvite, error)
	ListParticipants(ctx context.Context, orgID, campaignID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Participant, int64, error)
}

type participantService struct {
	participantRepo interfaces.ParticipantRepository
	campaignRepo    interfaces.CampaignRepository
	linkRepo        interfaces.ReferralLinkRepository
	smsProvider     sms.SMSProvider
	config          *config.Config
	logger          *logger.Logger
}

func NewParticipantService(
	config *config.Config,
	participantRepo interfaces.ParticipantRepository,
	campaignRepo interfaces.CampaignRepository,
	linkRepo interfaces.ReferralLinkRepository,
	smsProvider sms.SMSProvider,
	log *logger.Logger,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		campaignRepo:    campaignRepo,
		linkRepo:        linkRepo,
		smsProvider:     smsProvider,
		config:          config,
		logger:          log.WithField("service", "participant"),
	}
}

func (s *participantService) InviteParticipant(ctx context.Context, orgID primitive.ObjectID, request *validators.CreateParticipantRequest) (*models.ParticipantInvite, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetForOrg(ctx, orgID, validators.MustObjectID(request.CampaignID))
	if err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}
	if !campaign.IsActive() {
		return nil, utils.NewInvalidStateError(utils.ErrCampaignInactive)
	}

	participant := &models.Participant{
		OrgID:      orgID,
		CampaignID: campaign.ID,
		Name:       strings.TrimSpace(request.Name),
		Email:      utils.NormalizeEmail(request.Email),
		Phone:      request.Phone,
		Status:     models.ParticipantStatusActive,
		Metadata:   request.Metadata,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		s.logger.WithError(err).WithOrgID(orgID).Error("Failed to create participant")
		return nil, utils.NewInternalError(err)
	}

	// UTM tags on the landing URL are the link's defaults.
	utm := utils.MergeUTM(utils.ParseUTMParams(campaign.LandingURL), request.UTM)
	link, err := s.createLink(ctx, campaign, participant, utm)
	if err != nil {
		s.logger.WithError(err).WithField("participant_id", participant.ID.Hex()).Error("Failed to create referral link")
		return nil, utils.NewInternalError(err)
	}

	invite := &models.ParticipantInvite{
		Participant:  participant,
		ReferralLink: link,
		ReferralURL:  s.referralURL(link.Code),
		InviteStatus: InviteStatusSkipped,
	}

	if participant.Phone != "" && (request.SendInvite == nil || *request.SendInvite) {
		invite.InviteStatus = s.sendInvite(ctx, participant, invite.ReferralURL)
	}

	return invite, nil
}

// createLink retries on code collisions; the unique index on code decides.
func (s *participantService) createLink(ctx context.Context, campaign *models.Campaign, participant *models.Participant, utm map[string]string) (*models.ReferralLink, error) {
	attempts := s.config.Attribution.CodeMaxRetries
	if attempts < 1 {
		attempts = 1
	}

	participantID := participant.ID
	for i := 0; i < attempts; i++ {
		link := &models.ReferralLink{
			OrgID:         campaign.OrgID,
			CampaignID:    campaign.ID,
			ParticipantID: &participantID,
			Code:          utils.GenerateReferralCode(s.config.Attribution.CodeLength),
			UTM:           utm,
		}

		err := s.linkRepo.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, interfaces.ErrDuplicate) {
			return nil, err
		}
		s.logger.WithField("attempt", i+1).Debug("Referral code collision, retrying")
	}

	return nil, fmt.Errorf("no unique referral code after %d attempts", attempts)
}

func (s *participantService) referralURL(code string) string {
	return strings.TrimRight(s.config.App.BaseURL, "/") + "/r/" + code
}

func (s *participantService) sendInvite(ctx context.Context, participant *models.Participant, url string) string {
	response, err := s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
		To:      participant.Phone,
		From:    s.config.SMS.DefaultFrom,
		Message: fmt.Sprintf(s.config.SMS.InviteTemplate, participant.Name, url),
		Type:    sms.TypeTransactional,
	})
	if err != nil {
		s.logger.WithError(err).WithField("participant_id", participant.ID.Hex()).Warn("Failed to send invite SMS")
		return InviteStatusFailed
	}
	if response != nil && response.Status == InviteStatusSkipped {
		return InviteStatusSkipped
	}
	return InviteStatusSent
}

func (s *participantService) ListParticipants(ctx context.Context, orgID, campaignID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Participant, int64, error) {
	participants, total, err := s.participantRepo.ListByCampaign(ctx, orgID, campaignID, params)
	if err != nil {
		return nil, 0, utils.NewInternalError(err)
	}
	return participants, total, nil
}

package services

import (
	"context"
	"errors"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// attribution is the verified campaign, link and participant for an event or
// conversion.
type attribution struct {
	campaign      *models.Campaign
	linkID        *primitive.ObjectID
	participantID *primitive.ObjectID
}

type attributionResolver struct {
	campaignRepo    interfaces.CampaignRepository
	linkRepo        interfaces.ReferralLinkRepository
	participantRepo interfaces.ParticipantRepository
}

// resolve checks that the campaign is active and that the optional link and
// participant belong to it. A participant missing from the request is
// backfilled from the link.
func (r *attributionResolver) resolve(ctx context.Context, orgID, campaignID primitive.ObjectID, linkID, participantID *primitive.ObjectID) (*attribution, error) {
	campaign, err := r.campaignRepo.GetForOrg(ctx, orgID, campaignID)
	if err != nil {
		return nil, repoError(err, utils.ErrCampaignNotFound)
	}
	if !campaign.IsActive() {
		return nil, utils.NewInvalidStateError(utils.ErrCampaignInactive)
	}

	result := &attribution{campaign: campaign, linkID: linkID, participantID: participantID}

	if linkID != nil {
		link, err := r.linkRepo.GetForOrg(ctx, orgID, *linkID)
		if err != nil {
			return nil, repoError(err, utils.ErrLinkNotInCampaign)
		}
		if link.CampaignID != campaign.ID {
			return nil, utils.NewNotFoundError(utils.ErrLinkNotInCampaign)
		}
		if participantID == nil {
			result.participantID = link.ParticipantID
		}
	}

	if participantID != nil {
		participant, err := r.participantRepo.GetForOrg(ctx, orgID, *participantID)
		if err != nil {
			return nil, repoError(err, utils.ErrParticipantMismatch)
		}
		if participant.CampaignID != campaign.ID {
			return nil, utils.NewNotFoundError(utils.ErrParticipantMismatch)
		}
	}

	return result, nil
}

// linkForCode looks up the link behind an attribution cookie. Unknown codes
// and codes of other campaigns yield nil: the cookie is a hint, not input the
// caller is accountable for.
func (r *attributionResolver) linkForCode(ctx context.Context, orgID, campaignID primitive.ObjectID, code string) (*primitive.ObjectID, error) {
	link, err := r.linkRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, utils.NewInternalError(err)
	}
	if link.OrgID != orgID || link.CampaignID != campaignID {
		return nil, nil
	}
	return &link.ID, nil
}

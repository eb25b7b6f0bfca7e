package interfaces

import (
	"context"

	"referralhub/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReferralLinkRepository interface {
	// Create returns ErrDuplicate when the code is already taken.
	Create(ctx context.Context, link *models.ReferralLink) error
	// GetByCode is unscoped: codes are globally unique and resolved publicly.
	GetByCode(ctx context.Context, code string) (*models.ReferralLink, error)
	GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.ReferralLink, error)
	ListCodesByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]string, error)

	IncrementClicks(ctx context.Context, id primitive.ObjectID) error
	IncrementConversions(ctx context.Context, id primitive.ObjectID) error
}

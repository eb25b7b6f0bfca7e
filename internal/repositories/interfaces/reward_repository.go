package interfaces

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RewardFilter struct {
	OrgID         primitive.ObjectID
	CampaignID    *primitive.ObjectID
	ParticipantID *primitive.ObjectID
	Status        models.RewardStatus
}

type RewardRepository interface {
	// Create returns ErrDuplicate when the conversion already has a reward.
	Create(ctx context.Context, reward *models.Reward) error
	GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Reward, error)
	List(ctx context.Context, filter RewardFilter, params *utils.PaginationParams) ([]*models.Reward, int64, error)
	UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, from, to models.RewardStatus) error
}

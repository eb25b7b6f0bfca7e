package interfaces

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FraudSignalFilter struct {
	OrgID          primitive.ObjectID
	ReferralLinkID *primitive.ObjectID
	Status         models.FraudSignalStatus
}

type FraudSignalRepository interface {
	CreateMany(ctx context.Context, signals []*models.FraudSignal) error
	GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.FraudSignal, error)
	List(ctx context.Context, filter FraudSignalFilter, params *utils.PaginationParams) ([]*models.FraudSignal, int64, error)
	UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, status models.FraudSignalStatus, reviewedBy primitive.ObjectID) error
	CountOpenByLink(ctx context.Context, linkID primitive.ObjectID) (int64, error)
}

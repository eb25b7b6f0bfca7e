package interfaces

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	// GetByID is unscoped and only used on the public redirect path.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Campaign, error)
	List(ctx context.Context, orgID primitive.ObjectID, status models.CampaignStatus, params *utils.PaginationParams) ([]*models.Campaign, int64, error)
	UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, status models.CampaignStatus) error
	// Update writes the editable fields of campaign. Status is left alone.
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, orgID, id primitive.ObjectID) error
}

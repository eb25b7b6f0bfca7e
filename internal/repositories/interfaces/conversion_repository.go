package interfaces

import (
	"context"
	"time"

	"referralhub/internal/models"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversionFilter struct {
	OrgID         primitive.ObjectID
	CampaignID    *primitive.ObjectID
	ParticipantID *primitive.ObjectID
	Status        models.ConversionStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

type ConversionRepository interface {
	// Create returns ErrDuplicate when (campaign_id, customer_email,
	// conversion_type) already exists.
	Create(ctx context.Context, conversion *models.Conversion) error
	GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Conversion, error)
	List(ctx context.Context, filter ConversionFilter, params *utils.PaginationParams) ([]*models.Conversion, int64, error)
	ListForExport(ctx context.Context, filter ConversionFilter, limit int) ([]*models.Conversion, error)
	// UpdateStatus only applies when the stored status is still from.
	UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, from, to models.ConversionStatus) error
}

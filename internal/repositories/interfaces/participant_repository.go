package interfaces

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Participant, error)
	ListByCampaign(ctx context.Context, orgID, campaignID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Participant, int64, error)
}

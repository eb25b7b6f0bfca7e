package mongodb

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type participantRepository struct {
	collection *mongo.Collection
}

func NewParticipantRepository(db *mongo.Database) interfaces.ParticipantRepository {
	return &participantRepository{
		collection: db.Collection(database.CollectionParticipants),
	}
}

func (r *participantRepository) Create(ctx context.Context, participant *models.Participant) error {
	now := utils.Now()
	participant.ID = primitive.NewObjectID()
	participant.CreatedAt = now
	participant.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, participant)
	return translateWriteError(err, "failed to create participant")
}

func (r *participantRepository) GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Participant, error) {
	return findOne[models.Participant](ctx, r.collection, bson.M{"_id": id, "org_id": orgID}, "failed to get participant")
}

func (r *participantRepository) ListByCampaign(ctx context.Context, orgID, campaignID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Participant, int64, error) {
	filter := bson.M{"org_id": orgID, "campaign_id": campaignID}
	return findWithFilter[models.Participant](ctx, r.collection, filter, params, "participants")
}

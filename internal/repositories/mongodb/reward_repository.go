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

type rewardRepository struct {
	collection *mongo.Collection
}

func NewRewardRepository(db *mongo.Database) interfaces.RewardRepository {
	return &rewardRepository{
		collection: db.Collection(database.CollectionRewards),
	}
}

// Create relies on the conversion_unique index: one reward per conversion.
func (r *rewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	now := utils.Now()
	reward.ID = primitive.NewObjectID()
	reward.CreatedAt = now
	reward.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, reward)
	return translateWriteError(err, "failed to create reward")
}

func (r *rewardRepository) GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Reward, error) {
	filter := bson.M{"_id": id, "org_id": orgID}
	return findOne[models.Reward](ctx, r.collection, filter, "failed to get reward")
}

func (r *rewardRepository) List(ctx context.Context, filter interfaces.RewardFilter, params *utils.PaginationParams) ([]*models.Reward, int64, error) {
	query := bson.M{"org_id": filter.OrgID}
	if filter.CampaignID != nil {
		query["campaign_id"] = *filter.CampaignID
	}
	if filter.ParticipantID != nil {
		query["participant_id"] = *filter.ParticipantID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return findWithFilter[models.Reward](ctx, r.collection, query, params, "rewards")
}

func (r *rewardRepository) UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, from, to models.RewardStatus) error {
	filter := bson.M{"_id": id, "org_id": orgID}
	return conditionalStatusUpdate(ctx, r.collection, filter, from, to, nil, "failed to update reward status")
}

package mongodb

import (
	"context"
	"fmt"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type campaignRepository struct {
	collection *mongo.Collection
}

func NewCampaignRepository(db *mongo.Database) interfaces.CampaignRepository {
	return &campaignRepository{
		collection: db.Collection(database.CollectionCampaigns),
	}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	now := utils.Now()
	campaign.ID = primitive.NewObjectID()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, campaign)
	return translateWriteError(err, "failed to create campaign")
}

func (r *campaignRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	return findOne[models.Campaign](ctx, r.collection, bson.M{"_id": id}, "failed to get campaign")
}

func (r *campaignRepository) GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Campaign, error) {
	return findOne[models.Campaign](ctx, r.collection, bson.M{"_id": id, "org_id": orgID}, "failed to get campaign")
}

func (r *campaignRepository) List(ctx context.Context, orgID primitive.ObjectID, status models.CampaignStatus, params *utils.PaginationParams) ([]*models.Campaign, int64, error) {
	filter := bson.M{"org_id": orgID}
	if status != "" {
		filter["status"] = status
	}
	return findWithFilter[models.Campaign](ctx, r.collection, filter, params, "campaigns")
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, status models.CampaignStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "org_id": orgID},
		bson.M{"$set": bson.M{"status": status, "updated_at": utils.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *campaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = utils.Now()

	set := bson.M{
		"name":          campaign.Name,
		"description":   campaign.Description,
		"landing_url":   campaign.LandingURL,
		"reward_policy": campaign.RewardPolicy,
		"updated_at":    campaign.UpdatedAt,
	}
	unset := bson.M{}
	if campaign.StartAt != nil {
		set["start_at"] = campaign.StartAt
	} else {
		unset["start_at"] = ""
	}
	if campaign.EndAt != nil {
		set["end_at"] = campaign.EndAt
	} else {
		unset["end_at"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": campaign.ID, "org_id": campaign.OrgID}, update)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *campaignRepository) Delete(ctx context.Context, orgID, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "org_id": orgID})
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

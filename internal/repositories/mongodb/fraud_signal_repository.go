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

type fraudSignalRepository struct {
	collection *mongo.Collection
}

func NewFraudSignalRepository(db *mongo.Database) interfaces.FraudSignalRepository {
	return &fraudSignalRepository{
		collection: db.Collection(database.CollectionFraudSignals),
	}
}

func (r *fraudSignalRepository) CreateMany(ctx context.Context, signals []*models.FraudSignal) error {
	if len(signals) == 0 {
		return nil
	}

	now := utils.Now()
	docs := make([]interface{}, len(signals))
	for i, signal := range signals {
		signal.ID = primitive.NewObjectID()
		signal.CreatedAt = now
		signal.UpdatedAt = now
		docs[i] = signal
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return translateWriteError(err, "failed to create fraud signals")
}

func (r *fraudSignalRepository) GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.FraudSignal, error) {
	filter := bson.M{"_id": id, "org_id": orgID}
	return findOne[models.FraudSignal](ctx, r.collection, filter, "failed to get fraud signal")
}

func (r *fraudSignalRepository) List(ctx context.Context, filter interfaces.FraudSignalFilter, params *utils.PaginationParams) ([]*models.FraudSignal, int64, error) {
	query := bson.M{"org_id": filter.OrgID}
	if filter.ReferralLinkID != nil {
		query["referral_link_id"] = *filter.ReferralLinkID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return findWithFilter[models.FraudSignal](ctx, r.collection, query, params, "fraud signals")
}

func (r *fraudSignalRepository) UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, status models.FraudSignalStatus, reviewedBy primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "org_id": orgID},
		bson.M{"$set": bson.M{
			"status":      status,
			"reviewed_by": reviewedBy,
			"updated_at":  utils.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update fraud signal: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *fraudSignalRepository) CountOpenByLink(ctx context.Context, linkID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"referral_link_id": linkID,
		"status":           models.FraudSignalStatusOpen,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count fraud signals: %w", err)
	}
	return count, nil
}

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type conversionRepository struct {
	collection *mongo.Collection
}

func NewConversionRepository(db *mongo.Database) interfaces.ConversionRepository {
	return &conversionRepository{
		collection: db.Collection(database.CollectionConversions),
	}
}

// Create relies on the customer_conversion_unique index for deduplication.
func (r *conversionRepository) Create(ctx context.Context, conversion *models.Conversion) error {
	now := utils.Now()
	conversion.ID = primitive.NewObjectID()
	conversion.CreatedAt = now
	conversion.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, conversion)
	return translateWriteError(err, "failed to create conversion")
}

func (r *conversionRepository) GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.Conversion, error) {
	filter := bson.M{"_id": id, "org_id": orgID}
	return findOne[models.Conversion](ctx, r.collection, filter, "failed to get conversion")
}

func (r *conversionRepository) List(ctx context.Context, filter interfaces.ConversionFilter, params *utils.PaginationParams) ([]*models.Conversion, int64, error) {
	return findWithFilter[models.Conversion](ctx, r.collection, conversionQuery(filter), params, "conversions")
}

func (r *conversionRepository) ListForExport(ctx context.Context, filter interfaces.ConversionFilter, limit int) ([]*models.Conversion, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, conversionQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions for export: %w", err)
	}
	defer cursor.Close(ctx)

	var conversions []*models.Conversion
	if err := cursor.All(ctx, &conversions); err != nil {
		return nil, fmt.Errorf("failed to decode conversions: %w", err)
	}
	return conversions, nil
}

func (r *conversionRepository) UpdateStatus(ctx context.Context, orgID, id primitive.ObjectID, from, to models.ConversionStatus) error {
	filter := bson.M{"_id": id, "org_id": orgID}
	return conditionalStatusUpdate(ctx, r.collection, filter, from, to, nil, "failed to update conversion status")
}

func conversionQuery(f interfaces.ConversionFilter) bson.M {
	query := bson.M{"org_id": f.OrgID}
	if f.CampaignID != nil {
		query["campaign_id"] = *f.CampaignID
	}
	if f.ParticipantID != nil {
		query["participant_id"] = *f.ParticipantID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.StartDate != nil || f.EndDate != nil {
		created := bson.M{}
		if f.StartDate != nil {
			created["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			created["$lte"] = *f.EndDate
		}
		query["created_at"] = created
	}
	return query
}

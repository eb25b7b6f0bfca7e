package mongodb

import (
	"context"
	"fmt"
	"strings"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type referralLinkRepository struct {
	collection *mongo.Collection
}

func NewReferralLinkRepository(db *mongo.Database) interfaces.ReferralLinkRepository {
	return &referralLinkRepository{
		collection: db.Collection(database.CollectionReferralLinks),
	}
}

func (r *referralLinkRepository) Create(ctx context.Context, link *models.ReferralLink) error {
	now := utils.Now()
	link.ID = primitive.NewObjectID()
	link.Code = strings.ToUpper(link.Code)
	link.CreatedAt = now
	link.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, link)
	return translateWriteError(err, "failed to create referral link")
}

func (r *referralLinkRepository) GetByCode(ctx context.Context, code string) (*models.ReferralLink, error) {
	filter := bson.M{"code": strings.ToUpper(code)}
	return findOne[models.ReferralLink](ctx, r.collection, filter, "failed to get referral link by code")
}

func (r *referralLinkRepository) GetForOrg(ctx context.Context, orgID, id primitive.ObjectID) (*models.ReferralLink, error) {
	filter := bson.M{"_id": id, "org_id": orgID}
	return findOne[models.ReferralLink](ctx, r.collection, filter, "failed to get referral link")
}

func (r *referralLinkRepository) ListCodesByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"code": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"campaign_id": campaignID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list link codes: %w", err)
	}
	defer cursor.Close(ctx)

	var codes []string
	for cursor.Next(ctx) {
		var doc struct {
			Code string `bson:"code"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode link code: %w", err)
		}
		codes = append(codes, doc.Code)
	}

	return codes, cursor.Err()
}

func (r *referralLinkRepository) IncrementClicks(ctx context.Context, id primitive.ObjectID) error {
	return r.increment(ctx, id, "clicks_count")
}

func (r *referralLinkRepository) IncrementConversions(ctx context.Context, id primitive.ObjectID) error {
	return r.increment(ctx, id, "conversions_count")
}

func (r *referralLinkRepository) increment(ctx context.Context, id primitive.ObjectID, field string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{field: 1},
			"$set": bson.M{"updated_at": utils.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

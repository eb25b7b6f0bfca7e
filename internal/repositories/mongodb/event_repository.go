package mongodb

import (
	"context"
	"fmt"
	"time"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type eventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) interfaces.EventRepository {
	return &eventRepository{
		collection: db.Collection(database.CollectionEvents),
	}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	event.ID = primitive.NewObjectID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = utils.Now()
	}

	_, err := r.collection.InsertOne(ctx, event)
	return translateWriteError(err, "failed to create event")
}

func (r *eventRepository) List(ctx context.Context, filter interfaces.EventFilter, params *utils.PaginationParams) ([]*models.Event, int64, error) {
	return findWithFilter[models.Event](ctx, r.collection, eventQuery(filter), params, "events")
}

func eventQuery(filter interfaces.EventFilter) bson.M {
	query := bson.M{"org_id": filter.OrgID}
	if filter.CampaignID != nil {
		query["campaign_id"] = *filter.CampaignID
	}
	if filter.ParticipantID != nil {
		query["participant_id"] = *filter.ParticipantID
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}

	createdAt := bson.M{}
	if filter.StartDate != nil {
		createdAt["$gte"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		createdAt["$lte"] = *filter.EndDate
	}
	if len(createdAt) > 0 {
		query["created_at"] = createdAt
	}

	return query
}

func (r *eventRepository) ListClicksSince(ctx context.Context, linkID primitive.ObjectID, since time.Time, limit int) ([]*models.Event, error) {
	filter := bson.M{
		"referral_link_id": linkID,
		"event_type":       models.EventTypeClick,
		"created_at":       bson.M{"$gt": since},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list click events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode click events: %w", err)
	}

	return events, nil
}

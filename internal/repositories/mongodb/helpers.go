package mongodb

import (
	"context"
	"errors"
	"fmt"

	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// translateWriteError maps unique index violations to interfaces.ErrDuplicate.
func translateWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, interfaces.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func findOne[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, op string) (*T, error) {
	var doc T
	if err := collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

func findWithFilter[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, params *utils.PaginationParams, op string) ([]*T, int64, error) {
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", op, err)
	}

	cursor, err := collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find %s: %w", op, err)
	}
	defer cursor.Close(ctx)

	docs := make([]*T, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode %s: %w", op, err)
		}
		docs = append(docs, &doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate %s: %w", op, err)
	}

	return docs, total, nil
}

// conditionalStatusUpdate sets status to "to" only while the document is still
// in status "from". A miss is reported as ErrNotFound when the document does
// not exist in the org and ErrStatusChanged otherwise.
func conditionalStatusUpdate(ctx context.Context, collection *mongo.Collection, filter bson.M, from, to interface{}, extra bson.M, op string) error {
	filter["status"] = from
	set := bson.M{"status": to, "updated_at": utils.Now()}
	for k, v := range extra {
		set[k] = v
	}

	result, err := collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	delete(filter, "status")
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return interfaces.ErrNotFound
	}
	return interfaces.ErrStatusChanged
}

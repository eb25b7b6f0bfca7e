package mongodb

import (
	"context"

	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/pkg/database"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type exportRepository struct {
	collection *mongo.Collection
}

func NewExportRepository(db *mongo.Database) interfaces.ExportRepository {
	return &exportRepository{
		collection: db.Collection(database.CollectionExports),
	}
}

func (r *exportRepository) Create(ctx context.Context, export *models.Export) error {
	export.ID = primitive.NewObjectID()
	export.CreatedAt = utils.Now()

	_, err := r.collection.InsertOne(ctx, export)
	return translateWriteError(err, "failed to record export")
}

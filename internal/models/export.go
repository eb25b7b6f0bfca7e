package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Export struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrgID       primitive.ObjectID `json:"org_id" bson:"org_id"`
	RequestedBy primitive.ObjectID `json:"requested_by" bson:"requested_by"`
	Kind        string             `json:"kind" bson:"kind"`
	StorageKey  string             `json:"storage_key" bson:"storage_key"`
	URL         string             `json:"url" bson:"url"`
	Rows        int                `json:"rows" bson:"rows"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

package interfaces

import (
	"context"
	"time"

	"referralhub/internal/models"
	"referralhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventFilter struct {
	OrgID         primitive.ObjectID
	CampaignID    *primitive.ObjectID
	ParticipantID *primitive.ObjectID
	EventType     models.EventType
	StartDate     *time.Time
	EndDate       *time.Time
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	List(ctx context.Context, filter EventFilter, params *utils.PaginationParams) ([]*models.Event, int64, error)
	// ListClicksSince returns click events for a link, oldest first, capped at limit.
	ListClicksSince(ctx context.Context, linkID primitive.ObjectID, since time.Time, limit int) ([]*models.Event, error)
}

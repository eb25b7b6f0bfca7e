package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventTypeClick      EventType = "click"
	EventTypeConversion EventType = "conversion"
	EventTypeSignup     EventType = "signup"
	EventTypePurchase   EventType = "purchase"
	EventTypeDownload   EventType = "download"
)

// Event is append-only.
type Event struct {
	ID             primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	OrgID          primitive.ObjectID     `json:"org_id" bson:"org_id"`
	CampaignID     primitive.ObjectID     `json:"campaign_id" bson:"campaign_id"`
	ParticipantID  *primitive.ObjectID    `json:"participant_id,omitempty" bson:"participant_id,omitempty"`
	ReferralLinkID *primitive.ObjectID    `json:"referral_link_id,omitempty" bson:"referral_link_id,omitempty"`
	EventType      EventType              `json:"event_type" bson:"event_type"`
	IPAddress      string                 `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	UserAgent      string                 `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Referrer       string                 `json:"referrer,omitempty" bson:"referrer,omitempty"`
	UTMParams      map[string]string      `json:"utm_params,omitempty" bson:"utm_params,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at" bson:"created_at"`
}

func IsValidEventType(t EventType) bool {
	switch t {
	case EventTypeClick, EventTypeConversion, EventTypeSignup, EventTypePurchase, EventTypeDownload:
		return true
	}
	return false
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferralLink routes a visitor to its campaign's landing page and attributes
// the visit to a participant. Code is unique across all organizations.
type ReferralLink struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrgID            primitive.ObjectID  `json:"org_id" bson:"org_id"`
	CampaignID       primitive.ObjectID  `json:"campaign_id" bson:"campaign_id"`
	ParticipantID    *primitive.ObjectID `json:"participant_id,omitempty" bson:"participant_id,omitempty"`
	Code             string              `json:"code" bson:"code"`
	UTM              map[string]string   `json:"utm,omitempty" bson:"utm,omitempty"`
	ClicksCount      int64               `json:"clicks_count" bson:"clicks_count"`
	ConversionsCount int64               `json:"conversions_count" bson:"conversions_count"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// ResolvedLink is a link joined with its campaign, as cached for redirects.
type ResolvedLink struct {
	Link     ReferralLink `json:"link"`
	Campaign Campaign     `json:"campaign"`
}

type LinkStats struct {
	Code             string  `json:"code"`
	CampaignID       string  `json:"campaign_id"`
	ClicksCount      int64   `json:"clicks_count"`
	ConversionsCount int64   `json:"conversions_count"`
	ConversionRate   float64 `json:"conversion_rate"`
	OpenFraudSignals int64   `json:"open_fraud_signals"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FraudSignalStatus string

const (
	FraudSignalStatusOpen     FraudSignalStatus = "open"
	FraudSignalStatusIgnored  FraudSignalStatus = "ignored"
	FraudSignalStatusBlocked  FraudSignalStatus = "blocked"
	FraudSignalStatusResolved FraudSignalStatus = "resolved"
)

// FraudSignal is a review flag on a click event. It never blocks traffic.
type FraudSignal struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrgID          primitive.ObjectID  `json:"org_id" bson:"org_id"`
	CampaignID     primitive.ObjectID  `json:"campaign_id" bson:"campaign_id"`
	ReferralLinkID primitive.ObjectID  `json:"referral_link_id" bson:"referral_link_id"`
	EventID        *primitive.ObjectID `json:"event_id,omitempty" bson:"event_id,omitempty"`
	Rule           string              `json:"rule" bson:"rule"`
	Score          float64             `json:"score" bson:"score"`
	RiskLevel      string              `json:"risk_level" bson:"risk_level"`
	Reasons        []string            `json:"reasons" bson:"reasons"`
	IPAddress      string              `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	Status         FraudSignalStatus   `json:"status" bson:"status"`
	ReviewedBy     *primitive.ObjectID `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

func IsValidFraudSignalStatus(status FraudSignalStatus) bool {
	switch status {
	case FraudSignalStatusOpen, FraudSignalStatusIgnored, FraudSignalStatusBlocked, FraudSignalStatusResolved:
		return true
	}
	return false
}

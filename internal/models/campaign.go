package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CampaignStatus string
type RewardType string

const (
	CampaignStatusDraft  CampaignStatus = "draft"
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusPaused CampaignStatus = "paused"
	CampaignStatusEnded  CampaignStatus = "ended"

	RewardTypeCash     RewardType = "cash"
	RewardTypeCredit   RewardType = "credit"
	RewardTypeGift     RewardType = "gift"
	RewardTypeDiscount RewardType = "discount"
)

type RewardPolicy struct {
	Type     RewardType `json:"type" bson:"type"`
	Value    float64    `json:"value" bson:"value"`
	Currency string     `json:"currency" bson:"currency"`
}

type Campaign struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrgID        primitive.ObjectID `json:"org_id" bson:"org_id"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description" bson:"description"`
	Status       CampaignStatus     `json:"status" bson:"status"`
	LandingURL   string             `json:"landing_url" bson:"landing_url"`
	RewardPolicy RewardPolicy       `json:"reward_policy" bson:"reward_policy"`
	StartAt      *time.Time         `json:"start_at,omitempty" bson:"start_at,omitempty"`
	EndAt        *time.Time         `json:"end_at,omitempty" bson:"end_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsActive reports whether the campaign accepts clicks, events and conversions.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

func IsValidCampaignStatus(status CampaignStatus) bool {
	switch status {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusEnded:
		return true
	}
	return false
}

// CanTransitionCampaign: ended is terminal, everything else may move freely.
func CanTransitionCampaign(from, to CampaignStatus) bool {
	if !IsValidCampaignStatus(to) || from == to {
		return false
	}
	return from != CampaignStatusEnded
}

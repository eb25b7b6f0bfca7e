package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ParticipantStatus string

const (
	ParticipantStatusInvited  ParticipantStatus = "invited"
	ParticipantStatusActive   ParticipantStatus = "active"
	ParticipantStatusDisabled ParticipantStatus = "disabled"
)

type Participant struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	OrgID      primitive.ObjectID     `json:"org_id" bson:"org_id"`
	CampaignID primitive.ObjectID     `json:"campaign_id" bson:"campaign_id"`
	Name       string                 `json:"name" bson:"name"`
	Email      string                 `json:"email,omitempty" bson:"email,omitempty"`
	Phone      string                 `json:"phone,omitempty" bson:"phone,omitempty"`
	Status     ParticipantStatus      `json:"status" bson:"status"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" bson:"updated_at"`
}

// ParticipantInvite is returned when a participant joins a campaign.
type ParticipantInvite struct {
	Participant  *Participant  `json:"participant"`
	ReferralLink *ReferralLink `json:"referral_link"`
	ReferralURL  string        `json:"referral_url"`
	InviteStatus string        `json:"invite_status,omitempty"`
}

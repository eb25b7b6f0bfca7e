package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversionType string
type ConversionStatus string

const (
	ConversionTypeSignup       ConversionType = "signup"
	ConversionTypePurchase     ConversionType = "purchase"
	ConversionTypeDownload     ConversionType = "download"
	ConversionTypeTrial        ConversionType = "trial"
	ConversionTypeSubscription ConversionType = "subscription"

	ConversionStatusPending   ConversionStatus = "pending"
	ConversionStatusConfirmed ConversionStatus = "confirmed"
	ConversionStatusRejected  ConversionStatus = "rejected"
)

// Conversion is unique per (campaign_id, customer_email, conversion_type)
// whenever customer_email is set.
type Conversion struct {
	ID             primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	OrgID          primitive.ObjectID     `json:"org_id" bson:"org_id"`
	CampaignID     primitive.ObjectID     `json:"campaign_id" bson:"campaign_id"`
	ParticipantID  *primitive.ObjectID    `json:"participant_id,omitempty" bson:"participant_id,omitempty"`
	ReferralLinkID *primitive.ObjectID    `json:"referral_link_id,omitempty" bson:"referral_link_id,omitempty"`
	ConversionType ConversionType         `json:"conversion_type" bson:"conversion_type"`
	Value          float64                `json:"conversion_value" bson:"conversion_value"`
	Currency       string                 `json:"conversion_currency" bson:"conversion_currency"`
	CustomerEmail  string                 `json:"customer_email,omitempty" bson:"customer_email,omitempty"`
	CustomerName   string                 `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	OrderID        string                 `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Status         ConversionStatus       `json:"status" bson:"status"`
	CreatedAt      time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" bson:"updated_at"`
}

func IsValidConversionType(t ConversionType) bool {
	switch t {
	case ConversionTypeSignup, ConversionTypePurchase, ConversionTypeDownload,
		ConversionTypeTrial, ConversionTypeSubscription:
		return true
	}
	return false
}

// CanTransitionConversion: only pending conversions may be confirmed or rejected.
func CanTransitionConversion(from, to ConversionStatus) bool {
	return from == ConversionStatusPending &&
		(to == ConversionStatusConfirmed || to == ConversionStatusRejected)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RewardStatus string
type PayoutMethod string

const (
	RewardStatusPending  RewardStatus = "pending"
	RewardStatusApproved RewardStatus = "approved"
	RewardStatusPaid     RewardStatus = "paid"
	RewardStatusVoid     RewardStatus = "void"

	PayoutMethodManual       PayoutMethod = "manual"
	PayoutMethodBankTransfer PayoutMethod = "bank_transfer"
	PayoutMethodPaypal       PayoutMethod = "paypal"
	PayoutMethodStoreCredit  PayoutMethod = "store_credit"
)

// Reward is unique per conversion.
type Reward struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrgID         primitive.ObjectID  `json:"org_id" bson:"org_id"`
	CampaignID    primitive.ObjectID  `json:"campaign_id" bson:"campaign_id"`
	ParticipantID *primitive.ObjectID `json:"participant_id,omitempty" bson:"participant_id,omitempty"`
	ConversionID  primitive.ObjectID  `json:"conversion_id" bson:"conversion_id"`
	RewardType    RewardType          `json:"reward_type" bson:"reward_type"`
	Amount        float64             `json:"amount" bson:"amount"`
	Currency      string              `json:"currency" bson:"currency"`
	PayoutMethod  PayoutMethod        `json:"payout_method" bson:"payout_method"`
	Notes         string              `json:"notes,omitempty" bson:"notes,omitempty"`
	Status        RewardStatus        `json:"status" bson:"status"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

var rewardTransitions = map[RewardStatus][]RewardStatus{
	RewardStatusPending:  {RewardStatusApproved, RewardStatusVoid},
	RewardStatusApproved: {RewardStatusPaid, RewardStatusVoid},
}

func CanTransitionReward(from, to RewardStatus) bool {
	for _, next := range rewardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

package validators

import "time"

type CreateEventRequest struct {
	CampaignID     string                 `json:"campaign_id" validate:"required,object_id"`
	EventType      string                 `json:"event_type" validate:"required,oneof=click conversion signup purchase download"`
	ParticipantID  string                 `json:"participant_id" validate:"omitempty,object_id"`
	ReferralLinkID string                 `json:"referral_link_id" validate:"omitempty,object_id"`
	Metadata       map[string]interface{} `json:"metadata"`
	IPAddress      string                 `json:"-"`
	UserAgent      string                 `json:"-"`
}

type CreateConversionRequest struct {
	CampaignID         string                 `json:"campaign_id" validate:"required,object_id"`
	ConversionType     string                 `json:"conversion_type" validate:"required,oneof=signup purchase download trial subscription"`
	ParticipantID      string                 `json:"participant_id" validate:"omitempty,object_id"`
	ReferralLinkID     string                 `json:"referral_link_id" validate:"omitempty,object_id"`
	RefCode            string                 `json:"ref_code" validate:"omitempty,referral_code"`
	CustomerEmail      string                 `json:"customer_email" validate:"omitempty,email,max=254"`
	CustomerName       string                 `json:"customer_name" validate:"omitempty,max=200"`
	OrderID            string                 `json:"order_id" validate:"omitempty,max=100"`
	ConversionValue    float64                `json:"conversion_value" validate:"gte=0"`
	ConversionCurrency string                 `json:"conversion_currency" validate:"omitempty,currency_code"`
	Metadata           map[string]interface{} `json:"metadata"`
}

type UpdateConversionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected"`
}

type CreateRewardRequest struct {
	ConversionID string  `json:"conversion_id" validate:"required,object_id"`
	Amount       float64 `json:"amount"`
	RewardType   string  `json:"reward_type" validate:"omitempty,oneof=cash credit gift discount"`
	Currency     string  `json:"currency" validate:"omitempty,currency_code"`
	PayoutMethod string  `json:"payout_method" validate:"omitempty,oneof=manual bank_transfer paypal store_credit"`
	Notes        string  `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateRewardStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved paid void"`
}

type CreateCampaignRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	LandingURL  string     `json:"landing_url" validate:"required,landing_url"`
	RewardType  string     `json:"reward_type" validate:"required,oneof=cash credit gift discount"`
	RewardValue *float64   `json:"reward_value" validate:"required,gte=0"`
	Currency    string     `json:"currency" validate:"omitempty,currency_code"`
	Status      string     `json:"status" validate:"omitempty,oneof=draft active"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

// UpdateCampaignRequest edits campaign details. Nil fields are left
// unchanged; status moves through UpdateCampaignStatusRequest.
type UpdateCampaignRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	LandingURL  *string    `json:"landing_url" validate:"omitempty,landing_url"`
	RewardType  *string    `json:"reward_type" validate:"omitempty,oneof=cash credit gift discount"`
	RewardValue *float64   `json:"reward_value" validate:"omitempty,gte=0"`
	Currency    *string    `json:"currency" validate:"omitempty,currency_code"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

type UpdateCampaignStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft active paused ended"`
}

type CreateParticipantRequest struct {
	CampaignID string                 `json:"campaign_id" validate:"required,object_id"`
	Name       string                 `json:"name" validate:"required,min=1,max=200"`
	Email      string                 `json:"email" validate:"omitempty,email,max=254"`
	Phone      string                 `json:"phone" validate:"omitempty,phone_number"`
	UTM        map[string]string      `json:"utm" validate:"omitempty,dive,keys,oneof=utm_source utm_medium utm_campaign utm_term utm_content,endkeys,max=200"`
	Metadata   map[string]interface{} `json:"metadata"`
	SendInvite *bool                  `json:"send_invite"`
}

type UpdateFraudSignalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open ignored blocked resolved"`
}

type ExportConversionsRequest struct {
	CampaignID string `json:"campaign_id" validate:"omitempty,object_id"`
	Status     string `json:"status" validate:"omitempty,oneof=pending confirmed rejected"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

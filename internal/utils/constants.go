package utils

import "time"

// Application Constants
const (
	AppName = "ReferralHub"

	// Default values
	DefaultCurrency = "USD"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour

	// Referral
	ReferralCodeLength      = 6
	ReferralCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	AttributionCookieMaxAge = 30 * 24 * time.Hour

	// Exports
	MaxExportRows = 50000
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken        = "invalid token"
	ErrInvalidInput        = "invalid input"
	ErrInternalServer      = "Internal server error"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrValidationFailed    = "validation failed"
	ErrCampaignNotFound    = "Campaign not found"
	ErrCampaignInactive    = "Campaign is not active"
	ErrCampaignEnded       = "Ended campaigns cannot be modified"
	ErrLinkNotFound        = "Referral link not found"
	ErrLinkNotInCampaign   = "Referral link not found or not associated with campaign"
	ErrParticipantMismatch = "Participant not found or not associated with campaign"
	ErrConversionNotFound  = "Conversion not found"
	ErrConversionDuplicate = "Conversion already exists for this customer and type"
	ErrConversionNotReady  = "Conversion must be confirmed before creating reward"
	ErrRewardNotFound      = "Reward not found"
	ErrRewardDuplicate     = "Reward already exists for this conversion"
	ErrAmountNotPositive   = "Amount must be greater than 0"
	ErrSignalNotFound      = "Fraud signal not found"
	ErrInvalidTransition   = "Status transition not allowed"
)

// Cache Keys
const (
	CacheLinkCodePrefix           = "referral_link_code_"
	CacheCampaignGenerationPrefix = "referral_campaign_gen_"
)

// Live feed message types
const (
	FeedClickRecorded     = "click_recorded"
	FeedConversionCreated = "conversion_created"
	FeedConversionUpdated = "conversion_updated"
	FeedRewardCreated     = "reward_created"
	FeedFraudSignalOpened = "fraud_signal_opened"
)

// Roles carried in identity provider tokens
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// UTM parameter names captured from referral visits.
var UTMParamNames = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

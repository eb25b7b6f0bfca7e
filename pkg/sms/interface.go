package sms

import (
	"context"
	"fmt"
	"strings"
)

const (
	TypeTransactional = "transactional"
	TypePromotional   = "promotional"
)

// SMSProvider sends participant invitations.
type SMSProvider interface {
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
}

type SMSRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // transactional, promotional
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type ProviderConfig struct {
	Provider         string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	AWSRegion        string
}

// NewProvider builds the configured provider. "none" or an empty name
// returns a provider that accepts and drops every message.
func NewProvider(ctx context.Context, cfg ProviderConfig) (SMSProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "twilio":
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
			return nil, fmt.Errorf("twilio credentials are required")
		}
		return NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber), nil
	case "sns", "aws":
		return NewAWSSNSProvider(ctx, cfg.AWSRegion)
	case "", "none":
		return NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported sms provider %q", cfg.Provider)
	}
}

type NoopProvider struct{}

func (NoopProvider) SendSMS(context.Context, *SMSRequest) (*SMSResponse, error) {
	return &SMSResponse{Status: "skipped"}, nil
}

package validators

import (
	"testing"

	"referralhub/internal/utils"
)

const validHexID = "64b7f0c2a1b2c3d4e5f60718"

func TestCreateEventRequestRejectsUnknownType(t *testing.T) {
	req := CreateEventRequest{CampaignID: validHexID, EventType: "view"}

	errs := ValidateStruct(req)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Field != "event_type" || errs[0].Tag != "oneof" {
		t.Errorf("unexpected error: %+v", errs[0])
	}
}

func TestCreateEventRequestValid(t *testing.T) {
	req := CreateEventRequest{CampaignID: validHexID, EventType: "click", ReferralLinkID: validHexID}
	if errs := ValidateStruct(req); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestObjectIDValidation(t *testing.T) {
	req := CreateEventRequest{CampaignID: "not-an-id", EventType: "signup"}

	errs := ValidateStruct(req)
	if len(errs) != 1 || errs[0].Message != "Invalid ID format" {
		t.Fatalf("expected invalid id error, got %v", errs)
	}
}

func TestCreateConversionRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateConversionRequest
		wantErr string
	}{
		{
			name: "valid purchase",
			req: CreateConversionRequest{
				CampaignID:         validHexID,
				ConversionType:     "purchase",
				RefCode:            "ABCD12",
				CustomerEmail:      "a@x.com",
				ConversionValue:    49.99,
				ConversionCurrency: "usd",
			},
		},
		{
			name:    "unknown type",
			req:     CreateConversionRequest{CampaignID: validHexID, ConversionType: "refund"},
			wantErr: "conversion_type",
		},
		{
			name:    "bad email",
			req:     CreateConversionRequest{CampaignID: validHexID, ConversionType: "signup", CustomerEmail: "nope"},
			wantErr: "customer_email",
		},
		{
			name:    "negative value",
			req:     CreateConversionRequest{CampaignID: validHexID, ConversionType: "signup", ConversionValue: -1},
			wantErr: "conversion_value",
		},
		{
			name:    "bad ref code",
			req:     CreateConversionRequest{CampaignID: validHexID, ConversionType: "signup", RefCode: "AB-12"},
			wantErr: "ref_code",
		},
		{
			name:    "unknown currency",
			req:     CreateConversionRequest{CampaignID: validHexID, ConversionType: "signup", ConversionCurrency: "XYZ"},
			wantErr: "conversion_currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				if errs != nil {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			if _, ok := errs.Details()[tt.wantErr]; !ok {
				t.Fatalf("expected error on %s, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestCreateCampaignRequest(t *testing.T) {
	value := 10.0
	req := CreateCampaignRequest{
		Name:        "Summer",
		LandingURL:  "https://shop.example/summer",
		RewardType:  "cash",
		RewardValue: &value,
	}
	if errs := ValidateStruct(req); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}

	req.LandingURL = "ftp://shop.example"
	req.RewardValue = nil
	details := ValidateStruct(req).Details()
	if _, ok := details["landing_url"]; !ok {
		t.Errorf("expected landing_url error, got %v", details)
	}
	if details["reward_value"] != "reward_value is required" {
		t.Errorf("unexpected reward_value message: %q", details["reward_value"])
	}
}

func TestCreateParticipantRequestUTMKeys(t *testing.T) {
	req := CreateParticipantRequest{
		CampaignID: validHexID,
		Name:       "Ada",
		Phone:      "+14155550100",
		UTM:        map[string]string{"utm_source": "newsletter"},
	}
	if errs := ValidateStruct(req); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}

	req.UTM = map[string]string{"source": "newsletter"}
	if errs := ValidateStruct(req); errs == nil {
		t.Fatal("expected error for non-utm key")
	}

	req.UTM = nil
	req.Phone = "555-0100"
	if errs := ValidateStruct(req); errs == nil || errs[0].Message != "Invalid phone number format" {
		t.Fatalf("expected phone error, got %v", errs)
	}
}

func TestStatusRequests(t *testing.T) {
	if errs := ValidateStruct(UpdateConversionStatusRequest{Status: "pending"}); errs == nil {
		t.Error("pending is not a reachable conversion status")
	}
	if errs := ValidateStruct(UpdateRewardStatusRequest{Status: "paid"}); errs != nil {
		t.Errorf("paid should be accepted: %v", errs)
	}
	if errs := ValidateStruct(UpdateFraudSignalStatusRequest{Status: "escalated"}); errs == nil {
		t.Error("escalated is not a signal status")
	}
}

func TestValidateReturnsAppError(t *testing.T) {
	err := Validate(CreateRewardRequest{ConversionID: "bad"})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := utils.AsAppError(err)
	if appErr.Kind != utils.KindInvalidInput {
		t.Errorf("expected invalid input, got %s", appErr.Kind)
	}
	if appErr.Details["conversion_id"] == "" {
		t.Errorf("expected conversion_id detail, got %v", appErr.Details)
	}
	if Validate(CreateRewardRequest{ConversionID: validHexID, Amount: 5}) != nil {
		t.Error("expected valid reward request")
	}
}

func TestParseObjectID(t *testing.T) {
	id, err := ParseObjectID("")
	if err != nil || id != nil {
		t.Fatalf("expected nil id for empty input, got %v %v", id, err)
	}
	if _, err := ParseObjectID("zzz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
	id, err = ParseObjectID(validHexID)
	if err != nil || id.Hex() != validHexID {
		t.Fatalf("unexpected parse result %v %v", id, err)
	}
}

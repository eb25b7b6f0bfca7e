package config

type SMSConfig struct {
	Provider       string        `yaml:"provider"` // twilio, sns, none
	Twilio         *TwilioConfig `yaml:"twilio"`
	AWS            *AWSSNSConfig `yaml:"aws"`
	DefaultFrom    string        `yaml:"default_from"` // sender id override; empty uses the provider number
	InviteTemplate string        `yaml:"invite_template"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type AWSSNSConfig struct {
	Region string `yaml:"region"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider: getEnv("SMS_PROVIDER", "none"),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		AWS: &AWSSNSConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		DefaultFrom:    getEnv("SMS_DEFAULT_FROM", ""),
		InviteTemplate: getEnv("SMS_INVITE_TEMPLATE", "Hi %s, share your link and earn rewards: %s"),
	}
}

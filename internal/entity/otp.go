package entity

import "time"

// OTPRecord is one pending verification code, keyed in the store by the
// concatenation of country-code digits and local-number digits.
type OTPRecord struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// OTPResult is the structured outcome of a send/verify/resend operation.
// Business-rule failures (wrong code, expired, exhausted attempts) come back
// here with Success=false rather than as errors.
type OTPResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AttemptsLeft int    `json:"attempts_left,omitempty"`

	// DemoCode is populated only when the demo fallback is active: the SMS
	// transport failed, no credential is configured and demo mode is enabled.
	DemoCode string `json:"demo_code,omitempty"`
}

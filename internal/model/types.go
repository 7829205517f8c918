package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the base error for every field-validation failure. Callers
// match it with errors.Is; the wrapped message names the offending field.
var ErrInvalidInput = errors.New("invalid input")

// User is an account record keyed by phone number.
type User struct {
	Phone          string   `json:"phone"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	HashedPassword string   `json:"hashedPassword,omitempty"`
	TOSAgreement   bool     `json:"tosAgreement"`
	Checks         []string `json:"checks,omitempty"`
}

// Token is a bearer credential bound to one user.
type Token struct {
	ID      string `json:"id"`
	Phone   string `json:"phone"`
	Expires int64  `json:"expires"` // unix millis
}

// Check states.
const (
	StateUp   = "up"
	StateDown = "down"
)

// Check is a monitored endpoint definition plus its latest observed state.
// State and LastChecked are absent until the first sweep observes the check;
// an unobserved check is considered down.
type Check struct {
	ID             string `json:"id"`
	UserPhone      string `json:"userPhone"`
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	State          string `json:"state,omitempty"`
	LastChecked    int64  `json:"lastChecked,omitempty"` // unix millis, 0 = never
}

// Observed reports whether the check has been probed at least once.
func (c *Check) Observed() bool {
	return c.LastChecked > 0
}

// EffectiveState normalizes the persisted state, defaulting to down for a
// record that has never been observed or carries a malformed value.
func (c *Check) EffectiveState() string {
	if c.State == StateUp {
		return StateUp
	}
	return StateDown
}

// ValidPhone reports whether phone is a canonical owner id: exactly ten
// decimal digits.
func ValidPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func ValidProtocol(p string) bool {
	return p == "http" || p == "https"
}

func ValidMethod(m string) bool {
	switch m {
	case "get", "post", "put", "delete":
		return true
	}
	return false
}

func ValidSuccessCodes(codes []int) bool {
	return len(codes) > 0
}

func ValidTimeoutSeconds(t int) bool {
	return t >= 1 && t <= 5
}

// ValidateDefinition checks the user-settable fields of a check definition.
func (c *Check) ValidateDefinition() error {
	if !ValidProtocol(c.Protocol) {
		return fmt.Errorf("%w: protocol must be http or https", ErrInvalidInput)
	}
	if c.URL == "" {
		return fmt.Errorf("%w: url must not be empty", ErrInvalidInput)
	}
	if !ValidMethod(c.Method) {
		return fmt.Errorf("%w: method must be one of get, post, put, delete", ErrInvalidInput)
	}
	if !ValidSuccessCodes(c.SuccessCodes) {
		return fmt.Errorf("%w: successCodes must not be empty", ErrInvalidInput)
	}
	if !ValidTimeoutSeconds(c.TimeoutSeconds) {
		return fmt.Errorf("%w: timeoutSeconds must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}

// Validate checks a full persisted check record, identity fields included.
// The sweep runs this defensively before probing; a record that fails here is
// skipped, never probed.
func (c *Check) Validate() error {
	if len(c.ID) != 20 {
		return fmt.Errorf("%w: id must be 20 characters", ErrInvalidInput)
	}
	if !ValidPhone(c.UserPhone) {
		return fmt.Errorf("%w: userPhone must be 10 digits", ErrInvalidInput)
	}
	return c.ValidateDefinition()
}

// SuccessCode reports whether code is one of the check's success codes.
func (c *Check) SuccessCode(code int) bool {
	for _, s := range c.SuccessCodes {
		if s == code {
			return true
		}
	}
	return false
}

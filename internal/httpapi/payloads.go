package httpapi

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/MrEthical07/authservice/secret"
)

// Request fields are pointers so that absence can be told apart from an
// empty value. Absence is a malformed request; emptiness is left to the
// engine.

type signupPayload struct {
	Email       *string        `json:"email"`
	Password    *secret.String `json:"password"`
	Requires2FA *bool          `json:"requires2FA"`
}

func (p signupPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.NotNil),
		validation.Field(&p.Password, validation.NotNil),
		validation.Field(&p.Requires2FA, validation.NotNil),
	)
}

type loginPayload struct {
	Email    *string        `json:"email"`
	Password *secret.String `json:"password"`
}

func (p loginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.NotNil),
		validation.Field(&p.Password, validation.NotNil),
	)
}

type verify2FAPayload struct {
	Email          *string `json:"email"`
	LoginAttemptID *string `json:"loginAttemptId"`
	Code           *string `json:"2FACode"`
	AltCode        *string `json:"twoFACode"`
}

func (p verify2FAPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.NotNil),
		validation.Field(&p.LoginAttemptID, validation.NotNil),
		validation.Field(&p.Code, validation.By(func(interface{}) error {
			if p.Code == nil && p.AltCode == nil {
				return errors.New("is required")
			}
			return nil
		})),
	)
}

func (p verify2FAPayload) code() string {
	if p.Code != nil {
		return *p.Code
	}
	return *p.AltCode
}

type verifyTokenPayload struct {
	Token *string `json:"token"`
}

func (p verifyTokenPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.NotNil),
	)
}

type messageResponse struct {
	Message string `json:"message"`
}

type twoFactorResponse struct {
	Message        string `json:"message"`
	LoginAttemptID string `json:"loginAttemptId"`
}

type sessionResponse struct {
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

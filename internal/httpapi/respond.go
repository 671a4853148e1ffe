package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/MrEthical07/authservice"
)

const maxBodyBytes = 1 << 20

// Client-visible reasons.
const (
	msgMalformed          = "Malformed Request"
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidEmail       = "Invalid email"
	msgUserExists         = "User already exists"
	msgWrongCredentials   = "Incorrect credentials"
	msgMissingToken       = "Missing JWT Token"
	msgInvalidToken       = "Invalid JWT Token"
	msgUnexpected         = "Unexpected error"
)

var errMalformed = errors.New("malformed request")

// decode reads a JSON body into dst and checks that required fields are
// present. Every failure is errMalformed.
func decode(r *http.Request, dst validation.Validatable) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.Join(errMalformed, err)
	}
	if err := dst.Validate(); err != nil {
		return errors.Join(errMalformed, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// credentialError maps an engine error from signup, login or verify-2fa.
func credentialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrValidation) && errors.Is(err, authservice.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, msgInvalidEmail)
	case errors.Is(err, authservice.ErrValidation):
		writeError(w, http.StatusBadRequest, msgInvalidCredentials)
	case errors.Is(err, authservice.ErrConflict):
		writeError(w, http.StatusConflict, msgUserExists)
	case errors.Is(err, authservice.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgWrongCredentials)
	default:
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
}

// tokenError maps an engine error from logout or verify-token. An empty
// token is reported like any other invalid one.
func tokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrUnauthorized), errors.Is(err, authservice.ErrValidation):
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
	default:
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

// Sentinel errors returned by the transport
var (
	// ErrSessionExpired is returned after the server rejected the bearer
	// token. The session has already been cleared when it is returned.
	ErrSessionExpired    = errors.New("session expired, please log in again")
	ErrMalformedEnvelope = errors.New("malformed response envelope")
)

// CodePaymentRequired is the error code the server uses when publishing a
// job needs payment.
const CodePaymentRequired = "PAYMENT_REQUIRED"

// APIError is a non-success response from the server
type APIError struct {
	Status  int
	Code    string
	Message string
	// Data is the raw payload that accompanied the error, passed through
	// unmodified.
	Data json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// PaymentRequired decodes the payment details of a 402 response
func (e *APIError) PaymentRequired() (*models.PaymentRequired, bool) {
	if e.Status != http.StatusPaymentRequired && e.Code != CodePaymentRequired {
		return nil, false
	}
	pr := &models.PaymentRequired{}
	if len(e.Data) > 0 {
		// an undecodable payload still means payment is required
		_ = json.Unmarshal(e.Data, pr)
	}
	return pr, true
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

func newAPIError(status int, env *Envelope) *APIError {
	apiErr := &APIError{Status: status}
	if env != nil {
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = env.Message
		}
		switch {
		case len(env.Data) > 0 && string(env.Data) != "null":
			apiErr.Data = env.Data
		case env.Error != nil && len(env.Error.Details) > 0:
			apiErr.Data = env.Error.Details
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", status)
	}
	return apiErr
}

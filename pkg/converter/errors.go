package converter

import (
	"fmt"
	"github.com/pkg/errors"
	"net/http"
)

var (
	ErrEmptyAPIKey = errors.New("converter: empty api key")
	ErrNilGateway  = errors.New("converter: nil gateway")
)

// Category groups non-OK provider answers.
type Category int

const (
	CategoryOther Category = iota
	CategoryUnauthorized
	CategoryNotFound
)

func (c Category) String() string {
	switch c {
	case CategoryUnauthorized:
		return "unauthorized"
	case CategoryNotFound:
		return "not-found"
	default:
		return "other"
	}
}

func categoryFromStatus(code int) Category {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CategoryUnauthorized
	case http.StatusNotFound:
		return CategoryNotFound
	default:
		return CategoryOther
	}
}

// categoryFromErrorType maps the "error-type" field of a "result":"error" payload.
func categoryFromErrorType(errorType string) Category {
	switch errorType {
	case "invalid-key", "inactive-account":
		return CategoryUnauthorized
	case "unsupported-code", "malformed-request":
		return CategoryNotFound
	default:
		return CategoryOther
	}
}

// FetchError is a provider answer other than a usable 200: either a non-OK
// status, or a 200 whose payload reports "result":"error" (Reason then holds
// the provider's error-type).
type FetchError struct {
	Base       string
	StatusCode int
	Category   Category
	Reason     string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch rates for %s: status %d (%s)", e.Base, e.StatusCode, e.Category)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

// MalformedResponseError is a body that is not JSON or has no usable
// "conversion_rates" object.
type MalformedResponseError struct {
	Base string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed rates response for %s: %v", e.Base, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

type InvalidAmountError struct {
	Amount float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %v: must be a finite non-negative number", e.Amount)
}

type InvalidCurrencyError struct {
	Code string
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency code %q", e.Code)
}

// MissingRateError means the quote passed validation but the table fetched for
// the base has no rate for it.
type MissingRateError struct {
	Base  string
	Quote string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no %s rate in table for base %s", e.Quote, e.Base)
}

package service

import (
	"github.com/langowen/converter/pkg/converter"
	"github.com/langowen/converter/pkg/gateway"
	"github.com/pkg/errors"
)

// ErrorKind names the failure class of a converter error for metric labels.
func ErrorKind(err error) string {
	var (
		amountErr    *converter.InvalidAmountError
		currencyErr  *converter.InvalidCurrencyError
		missingErr   *converter.MissingRateError
		fetchErr     *converter.FetchError
		malformedErr *converter.MalformedResponseError
		urlErr       *gateway.URLError
		netErr       *gateway.NetworkError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &amountErr):
		return "invalid_amount"
	case errors.As(err, &currencyErr):
		return "invalid_currency"
	case errors.As(err, &missingErr):
		return "missing_rate"
	case errors.As(err, &fetchErr):
		return "fetch_" + fetchErr.Category.String()
	case errors.As(err, &malformedErr):
		return "malformed_response"
	case errors.As(err, &urlErr):
		return "invalid_url"
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network"
	default:
		return "internal"
	}
}

// Package converter converts amounts between currencies using live rates from
// exchangerate-api.com (v6 API).
//
// Every operation performs fresh round trips through the Gateway; nothing is
// cached between calls. Failures are returned as typed errors (*FetchError,
// *MalformedResponseError, *InvalidAmountError, *InvalidCurrencyError,
// *MissingRateError, and the gateway's *URLError / *NetworkError), reachable
// with errors.As through any wrapping.
package converter

import (
	"context"
	"github.com/langowen/converter/pkg/gateway"
	"github.com/pkg/errors"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://v6.exchangerate-api.com/v6"

	// ReferenceCurrency is the base used to enumerate supported codes.
	ReferenceCurrency = "AED"
)

// Gateway is the connection layer the converter drives. *gateway.Gateway
// satisfies it.
type Gateway interface {
	BuildRequestURL(baseEndpoint, accessKey, pathSuffix string) (*url.URL, error)
	Open(ctx context.Context, u *url.URL, method string) (*gateway.Handle, error)
	ReadBody(h *gateway.Handle) (string, error)
	Release(h *gateway.Handle)
}

type Converter struct {
	gateway Gateway
	apiKey  string
	baseURL string
}

type Option func(c *Converter)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Converter) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func New(gw Gateway, apiKey string, opts ...Option) (*Converter, error) {
	if gw == nil {
		return nil, ErrNilGateway
	}

	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &Converter{
		gateway: gw,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Result describes one completed conversion.
type Result struct {
	Base           string
	Quote          string
	Amount         float64
	Rate           float64
	Value          float64
	RatesUpdatedAt time.Time
}

// SupportedCurrencyCodes lists the codes the provider quotes against the
// reference currency, in the provider's order.
func (c *Converter) SupportedCurrencyCodes(ctx context.Context) ([]string, error) {
	const op = "converter.SupportedCurrencyCodes"

	table, err := c.fetchRates(ctx, ReferenceCurrency)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return table.Codes(), nil
}

// IsCurrencyValid reports whether code is one of SupportedCurrencyCodes. The
// match is exact and case-sensitive.
func (c *Converter) IsCurrencyValid(ctx context.Context, code string) (bool, error) {
	const op = "converter.IsCurrencyValid"

	codes, err := c.SupportedCurrencyCodes(ctx)
	if err != nil {
		return false, errors.Wrap(err, op)
	}

	for _, supported := range codes {
		if supported == code {
			return true, nil
		}
	}

	return false, nil
}

// Convert returns amount expressed in quote, using the rate from a table
// fetched with base as the query currency.
func (c *Converter) Convert(ctx context.Context, base, quote string, amount float64) (float64, error) {
	res, err := c.Exchange(ctx, base, quote, amount)
	if err != nil {
		return 0, err
	}

	return res.Value, nil
}

// Exchange is Convert returning the rate and provider timestamp as well.
//
// Two round trips happen: one validates both codes against the reference
// table, the second fetches the table for base.
func (c *Converter) Exchange(ctx context.Context, base, quote string, amount float64) (*Result, error) {
	const op = "converter.Exchange"

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, &InvalidAmountError{Amount: amount}
	}

	supported, err := c.fetchRates(ctx, ReferenceCurrency)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	for _, code := range []string{base, quote} {
		if !supported.Contains(code) {
			return nil, &InvalidCurrencyError{Code: code}
		}
	}

	table, err := c.fetchRates(ctx, base)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	rate, ok := table.Rate(quote)
	if !ok {
		return nil, &MissingRateError{Base: base, Quote: quote}
	}

	return &Result{
		Base:           base,
		Quote:          quote,
		Amount:         amount,
		Rate:           rate,
		Value:          rate * amount,
		RatesUpdatedAt: table.UpdatedAt(),
	}, nil
}

// Rates fetches the full table for base.
func (c *Converter) Rates(ctx context.Context, base string) (*RateTable, error) {
	const op = "converter.Rates"

	table, err := c.fetchRates(ctx, base)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return table, nil
}

func (c *Converter) fetchRates(ctx context.Context, base string) (*RateTable, error) {
	const op = "converter.fetchRates"

	u, err := c.gateway.BuildRequestURL(c.baseURL, c.apiKey, "latest/"+url.PathEscape(base))
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	h, err := c.gateway.Open(ctx, u, http.MethodGet)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer c.gateway.Release(h)

	if code := h.StatusCode(); code != http.StatusOK {
		return nil, &FetchError{
			Base:       base,
			StatusCode: code,
			Category:   categoryFromStatus(code),
		}
	}

	body, err := c.gateway.ReadBody(h)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return parseRateTable(base, body)
}

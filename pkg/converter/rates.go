package converter

import (
	"bytes"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"time"
)

var (
	errMissingRates = errors.New(`missing "conversion_rates" object`)
	errNullRate     = errors.New("rate is null")
)

// RateTable maps currency codes to the price of one unit of Base in that
// currency. Codes keep the order in which the provider listed them. A table is
// read-only once built.
type RateTable struct {
	base      string
	codes     []string
	rates     map[string]float64
	updatedAt time.Time
}

func (t *RateTable) Base() string {
	return t.base
}

// Codes returns a copy of the codes in provider order.
func (t *RateTable) Codes() []string {
	codes := make([]string, len(t.codes))
	copy(codes, t.codes)

	return codes
}

func (t *RateTable) Rate(code string) (float64, bool) {
	rate, ok := t.rates[code]
	return rate, ok
}

func (t *RateTable) Contains(code string) bool {
	_, ok := t.rates[code]
	return ok
}

func (t *RateTable) Len() int {
	return len(t.codes)
}

// UpdatedAt is the provider's last update time, zero when not reported.
func (t *RateTable) UpdatedAt() time.Time {
	return t.updatedAt
}

type ratesResponse struct {
	Result             string          `json:"result"`
	ErrorType          string          `json:"error-type"`
	BaseCode           string          `json:"base_code"`
	TimeLastUpdateUnix int64           `json:"time_last_update_unix"`
	ConversionRates    json.RawMessage `json:"conversion_rates"`
}

func parseRateTable(base, body string) (*RateTable, error) {
	var resp ratesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, &MalformedResponseError{Base: base, Err: err}
	}

	if resp.Result == "error" {
		return nil, &FetchError{
			Base:       base,
			StatusCode: 200,
			Category:   categoryFromErrorType(resp.ErrorType),
			Reason:     resp.ErrorType,
		}
	}

	raw := bytes.TrimSpace(resp.ConversionRates)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &MalformedResponseError{Base: base, Err: errMissingRates}
	}

	codes, rates, err := decodeOrderedRates(raw)
	if err != nil {
		return nil, &MalformedResponseError{Base: base, Err: err}
	}

	table := &RateTable{
		base:  base,
		codes: codes,
		rates: rates,
	}
	if resp.TimeLastUpdateUnix > 0 {
		table.updatedAt = time.Unix(resp.TimeLastUpdateUnix, 0).UTC()
	}

	return table, nil
}

// decodeOrderedRates walks the object token by token so the key order of the
// payload survives. A repeated key keeps its first position and its last value.
func decodeOrderedRates(raw []byte) ([]string, map[string]float64, error) {
	const op = "converter.decodeOrderedRates"

	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.Wrap(errMissingRates, op)
	}

	var codes []string
	rates := make(map[string]float64)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, errors.Wrap(err, op)
		}

		code, ok := tok.(string)
		if !ok {
			return nil, nil, errors.Errorf("%s: unexpected token %v", op, tok)
		}

		var rate *float64
		if err := dec.Decode(&rate); err != nil {
			return nil, nil, errors.Wrapf(err, "%s: rate for %s", op, code)
		}
		if rate == nil {
			return nil, nil, errors.Wrapf(errNullRate, "%s: %s", op, code)
		}

		if _, seen := rates[code]; !seen {
			codes = append(codes, code)
		}
		rates[code] = *rate
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	return codes, rates, nil
}

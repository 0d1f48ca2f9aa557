package entities

import (
	"github.com/google/uuid"
	"time"
)

type Conversion struct {
	ID             uuid.UUID `json:"id"`
	Base           string    `json:"base"`
	Quote          string    `json:"quote"`
	Amount         float64   `json:"amount"`
	Rate           float64   `json:"rate"`
	Result         float64   `json:"result"`
	RatesUpdatedAt time.Time `json:"rates_updated_at,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewConversion(base, quote string, amount, rate, result float64, ratesUpdatedAt time.Time) *Conversion {
	return &Conversion{
		ID:             uuid.New(),
		Base:           base,
		Quote:          quote,
		Amount:         amount,
		Rate:           rate,
		Result:         result,
		RatesUpdatedAt: ratesUpdatedAt,
		CreatedAt:      time.Now().UTC(),
	}
}

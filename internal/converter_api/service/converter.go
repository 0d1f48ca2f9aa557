package service

import (
	"context"
	"github.com/langowen/converter/pkg/converter"
)

// Converter is the part of *converter.Converter the service uses.
type Converter interface {
	SupportedCurrencyCodes(ctx context.Context) ([]string, error)
	IsCurrencyValid(ctx context.Context, code string) (bool, error)
	Exchange(ctx context.Context, base, quote string, amount float64) (*converter.Result, error)
}

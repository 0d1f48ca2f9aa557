package public

import (
	"context"
	"github.com/langowen/converter/internal/entities"
)

type Service interface {
	Currencies(ctx context.Context) (codes []string, err error)
	IsValid(ctx context.Context, code string) (valid bool, err error)
	Convert(ctx context.Context, base, quote string, amount float64) (conversion *entities.Conversion, err error)
	History(ctx context.Context, limit int) (conversions []entities.Conversion, err error)
}

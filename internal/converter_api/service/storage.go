package service

import (
	"context"
	"github.com/langowen/converter/internal/entities"
)

type Storage interface {
	SaveConversion(ctx context.Context, conversion *entities.Conversion) error
	ListConversions(ctx context.Context, limit int) ([]entities.Conversion, error)
}

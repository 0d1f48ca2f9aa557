package service

import (
	"context"
	"github.com/langowen/converter/internal/entities"
)

type RedisStorage interface {
	PublishConversion(ctx context.Context, conversion *entities.Conversion) error
}

package entities

import "errors"

var (
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
	ErrRedisTimeout  = errors.New("timeout waiting for Redis message")
	ErrRedisCanceled = errors.New("redis subscription canceled")
)

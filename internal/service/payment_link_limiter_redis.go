package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// PaymentLinkLimiter acota cuantos links de pago puede pedir un usuario en
// una ventana. Distinto del limitador de fotos: este es compartible entre
// replicas via redis y falla abierto si redis no responde.
type PaymentLinkLimiter interface {
	Allow(key string) bool
}

const redisPayAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisPaymentLinkLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisPaymentLinkLimiter(client *redis.Client, window time.Duration, max int) PaymentLinkLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisPaymentLinkLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "pay:rl:",
	}
}

func (l *redisPaymentLinkLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalizedKey
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisPayAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

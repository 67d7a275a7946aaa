package middleware

import (
	"fmt"
	"math"
	"time"

	"recording_backend/internal/logger"
	"recording_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// Лимитер клиента живёт, пока клиент присылает запросы
const limiterTTL = time.Minute

// RateLimiter хранит token bucket на каждый IP клиента.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *ttlcache.Cache[string, *rate.Limiter]
}

// NewRateLimiter создаёт лимитер на limit запросов в секунду с burst.
// Кэш нужно запустить через Start и остановить через Stop.
func NewRateLimiter(limit float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit: rate.Limit(limit),
		burst: burst,
		limiters: ttlcache.New[string, *rate.Limiter](
			ttlcache.WithTTL[string, *rate.Limiter](limiterTTL),
		),
	}
}

// Start запускает очистку просроченных лимитеров. Блокирует до Stop.
func (rl *RateLimiter) Start() {
	rl.limiters.Start()
}

// Stop останавливает очистку
func (rl *RateLimiter) Stop() {
	rl.limiters.Stop()
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	item, _ := rl.limiters.GetOrSet(ip, rate.NewLimiter(rl.limit, rl.burst))
	return item.Value()
}

// Middleware отвечает 429, если у клиента кончились токены.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.limiterFor(c.ClientIP())
		res := limiter.Reserve()
		if delay := res.Delay(); delay > 0 {
			// Запрос не выполняем, токен возвращаем
			res.Cancel()
			logger.CtxWarn(c.Request.Context(), "Rate limit exceeded", "path", c.Request.URL.Path)

			c.Header("Retry-After", fmt.Sprintf("%.0f", math.Ceil(delay.Seconds())))
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%v", limiter.Limit()))
			c.Header("X-RateLimit-Burst", fmt.Sprintf("%d", limiter.Burst()))
			apperrors.HandleError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

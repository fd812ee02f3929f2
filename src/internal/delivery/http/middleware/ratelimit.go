package middleware

import (
	"fmt"
	"time"

	httpError "member-service/src/pkg/http-error"
	"member-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// RegistrationRateLimit caps registration attempts per client IP inside a
// fixed window. Counting is INCR + EXPIRE; when redis is unavailable the
// request passes through rather than blocking signups.
func RegistrationRateLimit(cfg *viper.Viper, redisClient redis.UniversalClient) fiber.Handler {
	limit := cfg.GetInt("ratelimit.registration_attempts")
	if limit <= 0 {
		limit = 5
	}
	window := time.Duration(cfg.GetInt("ratelimit.registration_window_minutes")) * time.Minute
	if window <= 0 {
		window = time.Minute
	}

	return func(ctx *fiber.Ctx) error {
		if redisClient == nil {
			return ctx.Next()
		}

		key := fmt.Sprintf("RATELIMIT:REGISTER:%s", ctx.IP())
		count, err := redisClient.Incr(ctx.Context(), key).Result()
		if err != nil {
			return ctx.Next()
		}
		if count == 1 {
			redisClient.Expire(ctx.Context(), key, window)
		}
		if count > int64(limit) {
			errObj := httpError.NewTooManyRequests()
			errObj.Message = "Too many registration attempts. Please try again later."
			return utils.ResponseError(errObj, ctx)
		}
		return ctx.Next()
	}
}

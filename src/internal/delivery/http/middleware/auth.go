package middleware

import (
	"strconv"
	"strings"

	httpError "member-service/src/pkg/http-error"
	"member-service/src/pkg/token"
	"member-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const memberLocalsKey = "member"

// VerifyBearer validates the bearer token and rejects tokens issued before
// the member's last revocation mark.
func VerifyBearer(cfg *viper.Viper, redisClient redis.UniversalClient) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			errObj := httpError.NewUnauthorized()
			errObj.Message = "missing bearer token"
			return utils.ResponseError(errObj, ctx)
		}

		claim, err := token.Verify(cfg, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			errObj := httpError.NewUnauthorized()
			errObj.Message = "unauthenticated"
			return utils.ResponseError(errObj, ctx)
		}

		if redisClient != nil && claim.IssuedAt != nil {
			val, err := redisClient.Get(ctx.Context(), token.RevokedKey(claim.Metadata.MemberID)).Result()
			if err == nil {
				revokedAt, _ := strconv.ParseInt(val, 10, 64)
				if claim.IssuedAt.Unix() <= revokedAt {
					errObj := httpError.NewUnauthorized()
					errObj.Message = "token has been revoked"
					return utils.ResponseError(errObj, ctx)
				}
			}
		}

		ctx.Locals(memberLocalsKey, claim)
		return ctx.Next()
	}
}

// GetMember returns the claim stashed by VerifyBearer; nil on routes that
// skipped it.
func GetMember(ctx *fiber.Ctx) *token.Claim {
	claim, _ := ctx.Locals(memberLocalsKey).(*token.Claim)
	return claim
}

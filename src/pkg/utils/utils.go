package utils

import (
	"encoding/json"
	"strconv"

	httpError "member-service/src/pkg/http-error"

	"github.com/gofiber/fiber/v2"
)

// Result is the envelope every usecase method returns. Error is either a
// *httpError.CommonError or a plain error.
type Result struct {
	Data  interface{}
	Error interface{}
}

func Response(data interface{}, message string, code int, ctx *fiber.Ctx) error {
	return ctx.Status(code).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func ResponseError(err interface{}, ctx *fiber.Ctx) error {
	switch e := err.(type) {
	case *httpError.CommonError:
		return ctx.Status(e.Code).JSON(fiber.Map{
			"status":  "error",
			"message": e.Message,
		})
	case error:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": e.Error(),
		})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "internal server error",
		})
	}
}

func ConvertString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func ConvertInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		n, _ := strconv.Atoi(val)
		return n
	default:
		return 0
	}
}

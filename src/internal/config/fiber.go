package config

import (
	"member-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

func NewFiber(config *viper.Viper) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      config.GetString("app.name"),
		Prefork:      config.GetBool("web.prefork"),
		ErrorHandler: NewErrorHandler(),
	})
	return app
}

func NewErrorHandler() fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		return utils.ResponseError(err, ctx)
	}
}

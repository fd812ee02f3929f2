package http

import (
	"member-service/src/internal/delivery/http/middleware"
	"member-service/src/internal/model"
	"member-service/src/internal/usecase"
	"member-service/src/pkg/log"
	"member-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Log     log.Log
	UseCase *usecase.AuthUseCase
}

func NewAuthController(useCase *usecase.AuthUseCase, logger log.Log) *AuthController {
	return &AuthController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *AuthController) CheckPhone(ctx *fiber.Ctx) error {
	request := new(model.CheckPhoneRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("AuthController.CheckPhone", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	result := c.UseCase.CheckPhone(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Check Phone", fiber.StatusOK, ctx)
}

func (c *AuthController) VerifySponsor(ctx *fiber.Ctx) error {
	request := new(model.VerifySponsorRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("AuthController.VerifySponsor", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	result := c.UseCase.VerifySponsor(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Verify Sponsor", fiber.StatusOK, ctx)
}

func (c *AuthController) Register(ctx *fiber.Ctx) error {
	request := new(model.RegisterMemberRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("AuthController.Register", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	result := c.UseCase.Register(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Registration successful", fiber.StatusCreated, ctx)
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	request := new(model.LoginRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("AuthController.Login", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	result := c.UseCase.Login(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Login successful", fiber.StatusOK, ctx)
}

func (c *AuthController) Refresh(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.Refresh(ctx.Context(), auth)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Token refreshed", fiber.StatusOK, ctx)
}

func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.Logout(ctx.Context(), auth.Metadata.MemberID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Logout", fiber.StatusOK, ctx)
}

func (c *AuthController) CloseAccount(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.CloseAccount(ctx.Context(), auth.Metadata.MemberID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Account closed", fiber.StatusOK, ctx)
}

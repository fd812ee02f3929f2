package http

import (
	"member-service/src/internal/delivery/http/middleware"
	"member-service/src/internal/model"
	"member-service/src/internal/usecase"
	"member-service/src/pkg/log"
	"member-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type TeamController struct {
	Log     log.Log
	UseCase *usecase.TeamUseCase
}

func NewTeamController(useCase *usecase.TeamUseCase, logger log.Log) *TeamController {
	return &TeamController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *TeamController) GetMembers(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.Members(ctx.Context(), auth.Metadata.SellerID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Team Members", fiber.StatusOK, ctx)
}

func (c *TeamController) GetUpliner(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.Upliner(ctx.Context(), auth.Metadata.SellerID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Upliner", fiber.StatusOK, ctx)
}

func (c *TeamController) GetPerformance(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.Performance(ctx.Context(), auth.Metadata.SellerID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Team Performance", fiber.StatusOK, ctx)
}

func (c *TeamController) GetMemberPerformance(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.MemberPerformance(ctx.Context(), auth.Metadata.SellerID, ctx.Params("memberId"))
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Member Performance", fiber.StatusOK, ctx)
}

func (c *TeamController) PostSearch(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	request := new(model.SearchTeamRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("TeamController.PostSearch", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	result := c.UseCase.Search(ctx.Context(), auth.Metadata.SellerID, request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Team Search", fiber.StatusOK, ctx)
}

func (c *TeamController) PostDownliner(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	request := new(model.AddDownlinerRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("TeamController.PostDownliner", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	result := c.UseCase.AddDownliner(ctx.Context(), auth.Metadata.SellerID, request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Downliner added", fiber.StatusCreated, ctx)
}

func (c *TeamController) GetReferralCode(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.ReferralCode(ctx.Context(), auth.Metadata.SellerID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Referral Code", fiber.StatusOK, ctx)
}

func (c *TeamController) GetHierarchy(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.Hierarchy(ctx.Context(), auth.Metadata.SellerID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Team Hierarchy", fiber.StatusOK, ctx)
}

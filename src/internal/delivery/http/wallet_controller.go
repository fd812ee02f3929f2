package http

import (
	"member-service/src/internal/delivery/http/middleware"
	"member-service/src/internal/model"
	"member-service/src/internal/usecase"
	"member-service/src/pkg/log"
	"member-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletController struct {
	Log     log.Log
	UseCase *usecase.WalletUseCase
}

func NewWalletController(useCase *usecase.WalletUseCase, logger log.Log) *WalletController {
	return &WalletController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *WalletController) GetBalance(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	result := c.UseCase.Balance(ctx.Context(), auth.Metadata.MemberID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Wallet Balance", fiber.StatusOK, ctx)
}

func (c *WalletController) PostPay(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	request := new(model.PayRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.PostPay", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.MemberID = auth.Metadata.MemberID
	result := c.UseCase.Pay(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Payment successful", fiber.StatusOK, ctx)
}

func (c *WalletController) PostAddFunds(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	request := new(model.AddFundsRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.PostAddFunds", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.MemberID = auth.Metadata.MemberID
	result := c.UseCase.AddFunds(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Funds added", fiber.StatusOK, ctx)
}

func (c *WalletController) PostTransfer(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	request := new(model.TransferRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.PostTransfer", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.MemberID = auth.Metadata.MemberID
	result := c.UseCase.Transfer(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Transfer successful", fiber.StatusOK, ctx)
}

func (c *WalletController) PostWithdraw(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	request := new(model.WithdrawRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.PostWithdraw", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.MemberID = auth.Metadata.MemberID
	result := c.UseCase.Withdraw(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Withdrawal requested", fiber.StatusAccepted, ctx)
}

func (c *WalletController) GetTransactions(ctx *fiber.Ctx) error {
	auth := middleware.GetMember(ctx)

	limit := ctx.QueryInt("limit", 50)
	result := c.UseCase.Transactions(ctx.Context(), auth.Metadata.MemberID, limit)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Transactions", fiber.StatusOK, ctx)
}

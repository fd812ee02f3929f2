package route

import (
	"member-service/src/internal/delivery/http"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App              *fiber.App
	AuthController   *http.AuthController
	WalletController *http.WalletController
	TeamController   *http.TeamController
	AuthMiddleware   fiber.Handler
	RateLimiter      fiber.Handler
}

func (c *RouteConfig) Setup() {
	c.App.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	c.SetupPublicRoute()
	c.SetupAuthRoute()
}

func (c *RouteConfig) SetupPublicRoute() {
	auth := c.App.Group("/auth/v1")
	auth.Post("/check-phone", c.AuthController.CheckPhone)
	auth.Post("/verify-sponsor", c.AuthController.VerifySponsor)
	auth.Post("/register", c.RateLimiter, c.AuthController.Register)
	auth.Post("/login", c.AuthController.Login)
}

func (c *RouteConfig) SetupAuthRoute() {
	c.App.Use(c.AuthMiddleware)

	c.App.Post("/auth/v1/refresh", c.AuthController.Refresh)
	c.App.Post("/auth/v1/logout", c.AuthController.Logout)
	c.App.Delete("/members/v1/profile", c.AuthController.CloseAccount)

	wallet := c.App.Group("/wallet/v1")
	wallet.Get("/balance", c.WalletController.GetBalance)
	wallet.Post("/pay", c.WalletController.PostPay)
	wallet.Post("/add-funds", c.WalletController.PostAddFunds)
	wallet.Post("/transfer", c.WalletController.PostTransfer)
	wallet.Post("/withdraw", c.WalletController.PostWithdraw)
	wallet.Get("/transactions", c.WalletController.GetTransactions)

	team := c.App.Group("/team/v1")
	team.Get("/members", c.TeamController.GetMembers)
	team.Get("/upliner", c.TeamController.GetUpliner)
	team.Get("/performance", c.TeamController.GetPerformance)
	team.Get("/member/:memberId/performance", c.TeamController.GetMemberPerformance)
	team.Post("/search", c.TeamController.PostSearch)
	team.Post("/downliner", c.TeamController.PostDownliner)
	team.Get("/referral-code", c.TeamController.GetReferralCode)
	team.Get("/hierarchy", c.TeamController.GetHierarchy)
}

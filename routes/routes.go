package routes

import (
	"github.com/anjiri1684/fitness_marketplace/handlers"
	"github.com/anjiri1684/fitness_marketplace/middleware"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	protected := middleware.Protected(h.JWTSecret)

	orders := api.Group("/orders", protected)
	orders.Post("", middleware.RoleRequired(models.RoleCustomer), h.CreateOrder)
	orders.Get("/:orderId", h.GetOrder)

	api.Post("/reports", protected, middleware.RoleRequired(models.RoleCustomer), h.FileReport)

	merchant := api.Group("/merchant", protected, middleware.MerchantRequired())
	merchant.Get("/wallet", h.GetWallet)
	merchant.Get("/wallet/transactions", h.ListWalletTransactions)
	merchant.Post("/withdrawals", h.RequestWithdrawal)
	merchant.Post("/purchases/:purchaseId/complete-session", h.CompleteSession)
	merchant.Get("/order-items/:orderItemId/profit", h.GetOrderItemProfit)

	AdminRoutes(api, h, protected)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}

func AdminRoutes(api fiber.Router, h *handlers.Handler, protected fiber.Handler) {
	admin := api.Group("/admin", protected, middleware.AdminRequired())

	admin.Post("/orders/:orderId/confirm-payment", h.ConfirmPayment)
	admin.Post("/orders/:orderId/cancel", h.CancelOrder)
	admin.Post("/order-items/:orderItemId/distribute", h.DistributeOrderItem)
	admin.Post("/purchases/:purchaseId/distribute", h.DistributePurchase)
	admin.Get("/order-items/:orderItemId/profit", h.GetOrderItemProfit)

	reports := admin.Group("/reports")
	reports.Get("/transactions", h.GenerateTransactionReport)
	reports.Get("", h.ListReports)
	reports.Post("/:reportId/confirm", h.ConfirmReport)
	reports.Post("/:reportId/reject", h.RejectReport)

	admin.Post("/withdrawals/:transactionId/process", h.ProcessWithdrawal)

	configs := admin.Group("/system-configurations")
	configs.Get("/:key", h.GetSystemConfiguration)
	configs.Put("/:key", h.UpdateSystemConfiguration)
}

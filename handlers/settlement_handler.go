package handlers

import (
	"github.com/anjiri1684/fitness_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CompleteSession(c *fiber.Ctx) error {
	purchaseID, err := uuidParam(c, "purchaseId")
	if err != nil {
		return err
	}
	purchase, err := h.Settlement.CompleteSession(c.UserContext(), middleware.Actor(c), purchaseID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, purchase)
}

func (h *Handler) GetOrderItemProfit(c *fiber.Ctx) error {
	itemID, err := uuidParam(c, "orderItemId")
	if err != nil {
		return err
	}
	profit, err := h.Settlement.GetOrderItemProfit(c.UserContext(), middleware.Actor(c), itemID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, profit)
}

func (h *Handler) DistributeOrderItem(c *fiber.Ctx) error {
	itemID, err := uuidParam(c, "orderItemId")
	if err != nil {
		return err
	}
	distributed, err := h.Settlement.DistributeProfit(c.UserContext(), itemID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"order_item_id": itemID, "distributed": distributed})
}

func (h *Handler) DistributePurchase(c *fiber.Ctx) error {
	purchaseID, err := uuidParam(c, "purchaseId")
	if err != nil {
		return err
	}
	distributed, err := h.Settlement.DistributePendingProfit(c.UserContext(), purchaseID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"purchase_id": purchaseID, "distributed": distributed})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ConfirmPayment is called once the payment provider has settled the order.
func (h *Handler) ConfirmPayment(c *fiber.Ctx) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	order, err := h.Settlement.ConfirmOrderPayment(c.UserContext(), orderID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, order)
}

func (h *Handler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	distributed, err := h.Settlement.CancelOrderWithoutRefund(c.UserContext(), orderID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"order_id": orderID, "distributed_items": distributed})
}

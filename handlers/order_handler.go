package handlers

import (
	"github.com/anjiri1684/fitness_marketplace/middleware"
	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/anjiri1684/fitness_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderLineRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=gym_course freelance_pt_package product"`
	RefID    string `json:"ref_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items      []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode string             `json:"coupon_code" validate:"omitempty,max=64"`
}

func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, services.OrderLine{
			Kind:     models.ItemKind(it.Kind),
			RefID:    uuid.MustParse(it.RefID),
			Quantity: it.Quantity,
		})
	}

	order, err := h.Orders.CreateOrder(c.UserContext(), middleware.Actor(c), lines, req.CouponCode)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, order)
}

func (h *Handler) GetOrder(c *fiber.Ctx) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	order, err := h.Orders.GetOrder(c.UserContext(), middleware.Actor(c), orderID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, order)
}

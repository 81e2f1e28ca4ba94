package handlers

import (
	"fmt"
	"log"

	"github.com/anjiri1684/fitness_marketplace/apperrors"
	"github.com/anjiri1684/fitness_marketplace/services"
	"github.com/anjiri1684/fitness_marketplace/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

type Handler struct {
	Orders     *services.OrderService
	Settlement *services.SettlementService
	Disputes   *services.DisputeService
	Wallets    *services.WalletService
	Configs    *services.SystemConfigService
	Hub        *websocket.Hub
	JWTSecret  string
}

// ErrorHandler renders every error returned by a handler with the same
// envelope. Service errors carry their own status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := apperrors.HTTPStatus(err)
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	message := err.Error()
	if code == fiber.StatusInternalServerError {
		log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
		message = "Internal server error"
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"code":    code,
		"message": message,
	})
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "data": data})
}

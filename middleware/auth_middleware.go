package middleware

import (
	"errors"
	"fmt"

	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const actorKey = "actor"

// Protected verifies the bearer token and stores the caller as an
// ActorContext in the request locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		ErrorHandler:   jwtError,
		SuccessHandler: storeActor,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func storeActor(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, errors.New("invalid token"))
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, errors.New("invalid claims"))
	}
	actor, err := ActorFromClaims(claims)
	if err != nil {
		return jwtError(c, err)
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

func ActorFromClaims(claims jwt.MapClaims) (models.ActorContext, error) {
	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return models.ActorContext{}, fmt.Errorf("invalid user_id claim: %w", err)
	}
	role, _ := claims["role"].(string)
	switch models.Role(role) {
	case models.RoleCustomer, models.RoleGymOwner, models.RoleFreelancePT, models.RoleAdmin:
	default:
		return models.ActorContext{}, fmt.Errorf("unknown role %q", role)
	}
	return models.ActorContext{UserID: userID, Role: models.Role(role)}, nil
}

// Actor returns the caller stored by Protected.
func Actor(c *fiber.Ctx) models.ActorContext {
	actor, _ := c.Locals(actorKey).(models.ActorContext)
	return actor
}

// ParseToken verifies a raw HS256 token, for transports that cannot send an
// Authorization header.
func ParseToken(secret, tokenString string) (models.ActorContext, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.ActorContext{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.ActorContext{}, errors.New("invalid token")
	}
	return ActorFromClaims(claims)
}

func RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"code":    fiber.StatusForbidden,
			"message": "Forbidden: insufficient role",
		})
	}
}

func AdminRequired() fiber.Handler {
	return RoleRequired(models.RoleAdmin)
}

func MerchantRequired() fiber.Handler {
	return RoleRequired(models.RoleGymOwner, models.RoleFreelancePT)
}

package handler

import (
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/issue-coupon-service/internal/model"
)

// Identity headers set by the upstream gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// Authenticate reads the caller identity from the gateway headers into fiber locals.
// A request without a valid user id is treated as a guest regardless of its role header.
func Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := model.ParseUserRole(c.Get(HeaderUserRole))

		userID, err := strconv.ParseInt(c.Get(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			userID, role = 0, model.RoleGuest
		}

		c.Locals(localUserID, userID)
		c.Locals(localUserRole, role)
		return c.Next()
	}
}

// RequireRole rejects guests with 401 and callers outside roles with 403.
func RequireRole(roles ...model.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := userRole(c)
		if role == model.RoleGuest {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		if !slices.Contains(roles, role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
		}
		return c.Next()
	}
}

func userID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localUserID).(int64)
	return id
}

func userRole(c *fiber.Ctx) model.UserRole {
	role, ok := c.Locals(localUserRole).(model.UserRole)
	if !ok {
		return model.RoleGuest
	}
	return role
}

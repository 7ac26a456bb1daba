package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fluxboard/internal/api/dto"
)

// UsersHandler lists the users a flux can be assigned to.
type UsersHandler struct {
	dashboard Dashboard
}

// NewUsersHandler constructs handler.
func NewUsersHandler(dashboard Dashboard) *UsersHandler {
	return &UsersHandler{dashboard: dashboard}
}

// Assignable GET /users/assignable.
func (h *UsersHandler) Assignable(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	users, err := h.dashboard.Assignable(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserSummaries(users)})
}

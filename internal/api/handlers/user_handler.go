package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/linkpost/internal/service"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{s: service}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userInfo, err := h.s.GetUserInfo(c.Context(), GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(userInfo)
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.s.RemoveUser(c.Context(), GetUserID(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete user",
		})
	}
	return c.SendStatus(fiber.StatusOK)
}

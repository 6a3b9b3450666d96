package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/linkpost/internal/service"
	"github.com/maheshrc27/linkpost/internal/transfer"
)

type GenerateHandler struct {
	s service.GeneratorService
}

func NewGenerateHandler(service service.GeneratorService) *GenerateHandler {
	return &GenerateHandler{s: service}
}

func (h *GenerateHandler) GeneratePost(c *fiber.Ctx) error {
	var pg transfer.PostGeneration
	if err := c.BodyParser(&pg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	post, err := h.s.GeneratePost(c.Context(), GetUserID(c), &pg)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/linkpost/internal/jobs"
	"github.com/maheshrc27/linkpost/internal/queue"
	"github.com/maheshrc27/linkpost/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	raw, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(raw, 10, 64)
	return userID
}

// errorStatus maps service errors to the status returned to the client.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrKeyNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrPostPublished),
		errors.Is(err, service.ErrNotRetryable),
		errors.Is(err, queue.ErrAlreadyQueued),
		errors.Is(err, jobs.ErrSweepInProgress):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

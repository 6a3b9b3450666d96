package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/linkpost/internal/jobs"
	"github.com/maheshrc27/linkpost/internal/transfer"
)

type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (jobs.SweepResult, error)
}

type CronHandler struct {
	sweeper Sweeper
	now     func() time.Time
}

func NewCronHandler(sweeper Sweeper) *CronHandler {
	return &CronHandler{sweeper: sweeper, now: time.Now}
}

// ScheduledPosts runs one sweep and reports its counts. Posts that failed are
// part of a successful response.
func (h *CronHandler) ScheduledPosts(c *fiber.Ctx) error {
	res, err := h.sweeper.Sweep(c.UserContext(), h.now())
	if errors.Is(err, jobs.ErrSweepInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "A sweep is already running",
		})
	}
	if err != nil {
		slog.Error("scheduled post sweep failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(transfer.SweepSummary{
		Processed: res.Processed,
		Failed:    res.Failed,
		Total:     res.Total,
	})
}

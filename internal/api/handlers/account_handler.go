package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/linkpost/configs"
	"github.com/maheshrc27/linkpost/internal/service"
)

type AccountHandler struct {
	s   service.AccountService
	cfg *config.Config
}

func NewAccountHandler(cfg *config.Config, service service.AccountService) *AccountHandler {
	return &AccountHandler{s: service, cfg: cfg}
}

func (h *AccountHandler) ConnectAccount(c *fiber.Ctx) error {
	authURL, err := h.s.GetAuthURL(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start LinkedIn authorization",
		})
	}
	return c.Redirect(authURL)
}

func (h *AccountHandler) CallbackHandler(c *fiber.Ctx) error {
	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)

	if errCode := c.Query("error"); errCode != "" {
		slog.Info("linkedin authorization declined", "error", errCode, "description", c.Query("error_description"))
		return c.Redirect(redirectURL+"?error="+errCode, fiber.StatusTemporaryRedirect)
	}

	if _, err := h.s.Callback(c.Context(), c.Query("code"), c.Query("state")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect LinkedIn account",
		})
	}

	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	accounts, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	err := h.s.Delete(c.Context(), GetUserID(c), int64(c.QueryInt("id", 0)))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

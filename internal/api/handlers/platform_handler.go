package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

type PlatformHandler struct {
	s   service.PlatformService
	cfg config.Config
}

func NewPlatformHandler(s service.PlatformService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{s: s, cfg: cfg}
}

// AddSocialAccount starts the Instagram connect flow. The signed session
// token rides along as OAuth state so the callback can recover the user.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	tokenString := c.Cookies(h.cfg.CookieName)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not logged in",
		})
	}

	return c.Redirect(h.s.GetAuthURL(tokenString))
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		slog.Info("callback state validation failed", "error", err.Error())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid state",
		})
	}

	userID := parseUserID(claims.UserID)
	if err := h.s.HandleCallback(c.Context(), code, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Redirect(h.cfg.FrontendURL + "/accounts")
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	if err := h.s.Delete(c.Context(), userID, int64(accountID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

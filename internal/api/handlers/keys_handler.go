package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
)

type ApiKeyHandler struct {
	s service.ApiKeyService
}

func NewApiKeyHandler(s service.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{s: s}
}

func (h *ApiKeyHandler) CreateApiKey(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.s.Create(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ApiKeyHandler) ListKeys(c *fiber.Ctx) error {
	userID := GetUserID(c)

	keys, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list api keys",
		})
	}

	return c.Status(fiber.StatusOK).JSON(keys)
}

func (h *ApiKeyHandler) RemoveAPIKey(c *fiber.Ctx) error {
	userID := GetUserID(c)
	keyID := c.QueryInt("id", 0)

	if err := h.s.RemoveAPIKey(c.Context(), userID, int64(keyID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove api key",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

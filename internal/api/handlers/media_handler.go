package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(s service.MediaService) *MediaHandler {
	return &MediaHandler{s: s}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID := GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no file provided",
		})
	}

	asset, err := h.s.Upload(c.Context(), userID, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(asset)
}

func (h *MediaHandler) ListAssets(c *fiber.Ctx) error {
	userID := GetUserID(c)

	assets, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list media assets",
		})
	}

	return c.Status(fiber.StatusOK).JSON(assets)
}

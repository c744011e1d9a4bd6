package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/repository"
)

type HistoryHandler struct {
	ph repository.PostingHistoryRepository
}

func NewHistoryHandler(ph repository.PostingHistoryRepository) *HistoryHandler {
	return &HistoryHandler{ph: ph}
}

// ListHistory returns publish-attempt audit rows for operator review,
// newest first. Optional post id filter.
func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("post_id", 0)

	if postID != 0 {
		entries, err := h.ph.GetByPostID(c.Context(), int64(postID))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unable to list posting history",
			})
		}
		return c.Status(fiber.StatusOK).JSON(entries)
	}

	entries, err := h.ph.GetByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list posting history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}

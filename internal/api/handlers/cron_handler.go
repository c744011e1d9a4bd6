package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postpilot/configs"
	job "github.com/maheshrc27/postpilot/internal/jobs"
)

// CronHandler exposes the sweep for deployments where an external cron
// service pings the app instead of the in-process scheduler firing.
type CronHandler struct {
	cfg config.Config
	pub *job.PublishJob
}

func NewCronHandler(cfg config.Config, pub *job.PublishJob) *CronHandler {
	return &CronHandler{cfg: cfg, pub: pub}
}

func (h *CronHandler) Tick(c *fiber.Ctx) error {
	secret := c.Get("X-Cron-Secret")
	if h.cfg.CronSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.CronSecret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid cron secret",
		})
	}

	if err := h.pub.Sweep(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "sweep complete",
	})
}

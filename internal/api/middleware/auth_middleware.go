package middleware

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

type AuthMiddleware struct {
	s   service.ApiKeyService
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config, s service.ApiKeyService) *AuthMiddleware {
	return &AuthMiddleware{s: s, cfg: cfg}
}

// AuthMiddleware accepts either a session cookie (browser callers) or an
// api_key query parameter (machine callers like external cron services).
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		apiKey := c.Query("api_key")

		if tokenString == "" && apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing api key or session cookie",
			})
		}

		if apiKey != "" {
			userID, err := m.s.GetUserID(c.Context(), apiKey)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			c.Locals("user_id", fmt.Sprintf("%d", userID))
		} else {
			claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
			if err != nil {
				c.Cookie(&fiber.Cookie{
					Name:   m.cfg.CookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})

				slog.Info("token validation failed", "error", err.Error())
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid or expired token",
				})
			}

			c.Locals("user_id", claims.UserID)
		}
		return c.Next()
	}
}

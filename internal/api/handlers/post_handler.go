package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	posting     service.PostingService
	AsynqClient *asynq.Client
}

func NewPostHandler(s service.PostService, posting service.PostingService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: s, posting: posting, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
	}

	postID, delay, err := h.s.CreatePost(c.Context(), userID, &pc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := queue.EnqueuePost(h.AsynqClient, queue.SchedulePostPayload{PostID: postID}, delay); err != nil {
		slog.Error("failed to enqueue publish task", "post_id", postID, "error", err.Error())
		// The sweep job still picks the post up once it is due.
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "post scheduled successfully",
		"post_id": postID,
	})
}

// PostNow publishes operator-supplied content immediately, skipping the
// schedule entirely. The structured result goes straight back to the
// caller; nothing is persisted beyond the publish itself.
func (h *PostHandler) PostNow(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PostNowRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
	}

	result := h.posting.PostImage(c.Context(), userID, req.MediaURL, req.Caption)
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusBadGateway
		if result.RateLimited {
			status = fiber.StatusTooManyRequests
		}
	}
	return c.Status(status).JSON(result)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unable to get post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

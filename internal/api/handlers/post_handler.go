package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/maheshrc27/postflow/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{s: s}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	form, err := c.MultipartForm()
	if err != nil {
		slog.Info(err.Error())
		return badRequest(c, "Unable to parse form")
	}

	pc := &transfer.PostCreation{
		Content:      c.FormValue("content"),
		Platforms:    c.FormValue("platforms"),
		ScheduledFor: c.FormValue("scheduled_for"),
		PostReminder: c.FormValue("post_reminder") == "true",
	}

	created, err := h.s.CreatePost(c.Context(), userID, pc, form.File["images"])
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, pagination, err := h.s.List(c.Context(), GetUserID(c),
		c.Query("status"),
		int64(c.QueryInt("page", 1)),
		int64(c.QueryInt("limit", 10)),
	)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts":      posts,
		"pagination": pagination,
	})
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid post id")
	}

	post, err := h.s.PostInfo(c.Context(), GetUserID(c), postID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	postID, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid post id")
	}

	var pu transfer.PostUpdate
	if err := c.BodyParser(&pu); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.s.Update(c.Context(), GetUserID(c), postID, &pu)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	postID, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid post id")
	}

	published, err := h.s.PublishNow(c.Context(), GetUserID(c), postID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(published)
}

func (h *PostHandler) PostHistory(c *fiber.Ctx) error {
	postID, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid post id")
	}

	history, err := h.s.History(c.Context(), GetUserID(c), postID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(history)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid post id")
	}

	if err := h.s.Remove(c.Context(), GetUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

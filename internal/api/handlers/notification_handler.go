package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/maheshrc27/postflow/internal/transfer"
)

type NotificationHandler struct {
	ns service.NotificationService
}

func NewNotificationHandler(ns service.NotificationService) *NotificationHandler {
	return &NotificationHandler{ns: ns}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)
	list, pagination, err := h.ns.List(c.Context(), userID,
		c.QueryBool("unread", false),
		int64(c.QueryInt("page", 1)),
		int64(c.QueryInt("limit", 20)),
	)
	if err != nil {
		return fail(c, err)
	}

	unread, err := h.ns.UnreadCount(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"notifications": list,
		"pagination":    pagination,
		"unreadCount":   unread,
	})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	unread, err := h.ns.UnreadCount(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": unread})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid notification id")
	}

	n, err := h.ns.MarkRead(c.Context(), GetUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(n)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.ns.MarkAllRead(c.Context(), GetUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "All notifications marked as read",
	})
}

func (h *NotificationHandler) Remove(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid notification id")
	}

	if err := h.ns.Remove(c.Context(), GetUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Notification deleted",
	})
}

func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var nc transfer.NotificationCreation
	if err := c.BodyParser(&nc); err != nil {
		return badRequest(c, "Invalid request body")
	}

	n, err := h.ns.Create(c.Context(), GetUserID(c), &nc)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow/internal/api/middleware"
	"github.com/maheshrc27/postflow/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func GetUserID(c *fiber.Ctx) primitive.ObjectID {
	userID, _ := c.Locals(middleware.UserIDKey).(primitive.ObjectID)
	return userID
}

func paramID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	return id, err == nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// fail writes err with the status mapped in service.ErrorMap. Unmapped
// errors are logged and hidden from the client.
func fail(c *fiber.Ctx, err error) error {
	code := service.StatusCode(err)
	if code == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "err", err)
		return c.Status(code).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railtimetable/pkg/repository"
)

// GeneratedDateSource is where the version route reads the date the loaded
// timetable was extracted on. Nil leaves it out.
var GeneratedDateSource repository.GeneratedDateReader

func APIVersion(c *fiber.Ctx) error {
	response := fiber.Map{
		"version": "v1.0",
	}

	if GeneratedDateSource != nil {
		generated, err := GeneratedDateSource.GeneratedDate(c.UserContext())
		if err == nil && !generated.IsZero() {
			response["timetable_generated"] = generated
		}
	}

	return c.JSON(response)
}

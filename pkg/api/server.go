package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railtimetable/pkg/api/routes"
)

func NewApp() *fiber.App {
	webApp := fiber.New(fiber.Config{
		AppName:               "railtimetable",
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.BoardsRouter(group.Group("/boards"))
	routes.ServicesRouter(group.Group("/services"))

	return webApp
}

func SetupServer(listen string) error {
	return NewApp().Listen(listen)
}

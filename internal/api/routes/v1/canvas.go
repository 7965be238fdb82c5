package v1

import (
	"drawing-prompter/internal/api"
	"drawing-prompter/internal/handlers"
	"drawing-prompter/internal/libraries"
	"drawing-prompter/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// registerCanvas serves one drawing session per websocket connection.
func registerCanvas(r fiber.Router, svc *api.Services) {
	canvasHandler := handlers.NewCanvasHandler(svc.Themes, svc.Gallery, svc.Config.Canvas.MaxHistory, logging.Component("canvas"))

	r.Get("/ws", libraries.UpgradeRequired, libraries.WebSocketHandler(svc.Hub, canvasHandler))
}

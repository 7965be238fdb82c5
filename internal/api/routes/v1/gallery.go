package v1

import (
	"drawing-prompter/internal/api"
	"drawing-prompter/internal/handlers"
	"drawing-prompter/internal/logging"

	"github.com/gofiber/fiber/v2"
)

func registerGallery(r fiber.Router, svc *api.Services) {
	galleryHandler := handlers.NewGalleryHandler(svc.Gallery, svc.Hub, logging.Component("gallery"))

	r.Get("/gallery", galleryHandler.GetAllDrawings)
	r.Post("/gallery", galleryHandler.SaveDrawing)
	r.Get("/gallery/:drawingId/image", galleryHandler.GetDrawingImage)
	r.Delete("/gallery/:drawingId", galleryHandler.DeleteDrawing)
}

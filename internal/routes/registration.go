package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/firstcare-health/member-registry/internal/registration"
)

// RegisterRegistrationRoutes wires the member registration endpoints.
// limit guards the registration endpoint only.
func RegisterRegistrationRoutes(r fiber.Router, h *registration.Handler, limit fiber.Handler) {
	r.Post("/register", limit, h.Register)
	r.Post("/upload-photo/:registration_id", h.UploadPhoto)
	r.Get("/user/:registration_id", h.Get)
	r.Post("/payment", h.UpdatePayment)
	r.Get("/generate-card/:registration_id", h.GenerateCard)
	r.Get("/qr-data/:registration_id", h.QRData)
	r.Get("/users", h.List)
	r.Get("/payments/:registration_id", h.Payments)
}

package directory

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
	guard   fiber.Handler
}

// NewFeature creates the directory feature. guard protects every route.
func NewFeature(service *Service, guard fiber.Handler) *Feature {
	return &Feature{handler: NewHandler(service), guard: guard}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "directory"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, f.guard)
	return nil
}

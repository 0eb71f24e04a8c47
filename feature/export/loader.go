package export

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
	guard   fiber.Handler
	enabled bool
}

// NewFeature creates the export feature. It is disabled without a storage client.
func NewFeature(service *Service, guard fiber.Handler) *Feature {
	return &Feature{
		handler: NewHandler(service),
		guard:   guard,
		enabled: service != nil && service.client != nil,
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "export"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app, f.guard)
	return nil
}

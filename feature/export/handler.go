package export

import (
	"profile-directory/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for directory snapshots.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes behind guard.
func (h *Handler) RegisterRoutes(app fiber.Router, guard fiber.Handler) {
	group := app.Group("/export", guard)
	group.Post("/", h.HandleExport)
	group.Get("/", h.HandleList)
	group.Get("/:name", h.HandleGet)
}

// HandleExport stores a snapshot of the public directory.
// @Summary Export directory
// @Description Write the current public profiles as a gzip compressed JSON snapshot.
// @Tags export
// @Produce json
// @Success 201 {object} Info "Stored snapshot"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	info, err := h.service.Export(c.Context())
	if err != nil {
		l.Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(info)
}

// HandleList lists stored snapshots.
// @Summary List snapshots
// @Tags export
// @Produce json
// @Success 200 {array} Info "Snapshots, newest first"
// @Router /export [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	infos, err := h.service.List(c.Context())
	if err != nil {
		l.Error("Snapshot listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(infos)
}

// HandleGet returns the content of one snapshot.
// @Summary Get snapshot
// @Tags export
// @Produce json
// @Param name path string true "Snapshot name (e.g. 'public-profiles-1700000000.json.gz')"
// @Success 200 {object} Snapshot "Snapshot"
// @Failure 404 {object} map[string]string "Snapshot not readable"
// @Router /export/{name} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	snapshot, err := h.service.Load(c.Context(), c.Params("name"))
	if err != nil {
		l.Warn("Snapshot load failed", zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snapshot)
}

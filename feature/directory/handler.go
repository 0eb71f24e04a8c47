package directory

import (
	"errors"

	"profile-directory/core/logger"
	"profile-directory/core/reconcile"
	"profile-directory/feature/profile/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ListResponse is the body of the profile listing.
type ListResponse struct {
	Query    string           `json:"query"`
	Total    int              `json:"total"`
	Profiles []models.Profile `json:"profiles"`
}

// Handler handles HTTP requests for the public directory.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the directory routes behind guard.
func (h *Handler) RegisterRoutes(app fiber.Router, guard fiber.Handler) {
	group := app.Group("/profiles", guard)
	group.Get("/", h.HandleList)
	group.Get("/status", h.HandleStatus)
	group.Post("/refresh", h.HandleRefresh)
	group.Post("/restart", h.HandleRestart)
}

// HandleList returns the public profiles.
// @Summary List public profiles
// @Description Public profiles in store order, filtered by a case-insensitive match on name or city.
// @Tags directory
// @Produce json
// @Param q query string false "Search by name or city"
// @Success 200 {object} ListResponse "Public profiles"
// @Router /profiles [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	query := c.Query("q")
	profiles := h.service.List(query)
	return c.JSON(ListResponse{Query: query, Total: len(profiles), Profiles: profiles})
}

// HandleRefresh re-fetches the public profiles.
// @Summary Refresh public profiles
// @Description Re-run the bulk fetch. On failure the current list is kept.
// @Tags directory
// @Produce json
// @Success 200 {object} ListResponse "Refreshed profiles"
// @Failure 502 {object} map[string]string "Failed to fetch public profiles"
// @Router /profiles/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	profiles, err := h.service.Refresh(c.Context())
	if err != nil {
		l.Warn("Directory refresh failed", zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": "Failed to fetch public profiles."})
	}
	return c.JSON(ListResponse{Total: len(profiles), Profiles: profiles})
}

// HandleRestart re-subscribes and re-fetches, e.g. after the subscription was lost.
// @Summary Restart the directory
// @Tags directory
// @Produce json
// @Success 200 {object} reconcile.Status "Reconciler status"
// @Failure 502 {object} map[string]string "Restart failed"
// @Router /profiles/restart [post]
func (h *Handler) HandleRestart(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.Start(c.Context()); err != nil {
		l.Warn("Directory restart failed", zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(h.service.Status())
}

// HandleStatus reports the reconciler state.
// @Summary Directory status
// @Tags directory
// @Produce json
// @Success 200 {object} reconcile.Status "Reconciler status"
// @Router /profiles/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

func statusOf(err error) int {
	if errors.Is(err, reconcile.ErrNotStarted) || errors.Is(err, reconcile.ErrStopped) {
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusBadGateway
}

package profile

import (
	"errors"

	"profile-directory/core/backend"
	"profile-directory/core/logger"
	"profile-directory/core/session"
	"profile-directory/feature/profile/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the user's own profile.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the profile routes behind guard.
func (h *Handler) RegisterRoutes(app fiber.Router, guard fiber.Handler) {
	group := app.Group("/me", guard)
	group.Get("/profile", h.HandleGetProfile)
	group.Put("/profile", h.HandleUpdateProfile)
	group.Post("/recovery", h.HandleRecovery)
}

// HandleGetProfile returns the user's profile, creating it on first access.
// @Summary Get own profile
// @Description Fetch the profile document keyed by the user's email or create a public one.
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile "Profile"
// @Failure 401 {object} map[string]string "Not logged in"
// @Failure 500 {object} map[string]string "Failed to fetch or create profile data"
// @Router /me/profile [get]
func (h *Handler) HandleGetProfile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	profile, err := h.service.GetOrCreate(c.Context())
	if err != nil {
		l.Error("Profile fetch failed", zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{
			"error": "Failed to fetch or create profile data.",
		})
	}
	return c.JSON(profile)
}

// HandleUpdateProfile writes the submitted profile form.
// @Summary Update own profile
// @Description Update the profile document; age is stored as an integer defaulting to 0.
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body models.Form true "Profile form"
// @Success 200 {object} models.Profile "Updated profile"
// @Failure 400 {object} map[string]string "Invalid body"
// @Failure 404 {object} map[string]string "Profile document missing"
// @Router /me/profile [put]
func (h *Handler) HandleUpdateProfile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var form models.Form
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	profile, err := h.service.Update(c.Context(), form)
	if errors.Is(err, ErrMissingDocument) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile document ID missing."})
	}
	if err != nil {
		l.Error("Profile update failed", zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": message(err, "Unknown error")})
	}
	return c.JSON(profile)
}

// HandleRecovery sends a password recovery email.
// @Summary Reset password
// @Description Send a password recovery link to the given email or the user's email.
// @Tags profile
// @Accept json
// @Produce json
// @Param recovery body models.Recovery false "Recovery target"
// @Success 202 {object} map[string]string "Recovery email sent"
// @Router /me/recovery [post]
func (h *Handler) HandleRecovery(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req models.Recovery
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	if err := h.service.ResetPassword(c.Context(), req.Email); err != nil {
		l.Warn("Password recovery failed", zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{
			"error": message(err, "Could not send password reset email."),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Check your email for password reset link.",
	})
}

func statusOf(err error) int {
	if errors.Is(err, session.ErrNoSession) {
		return fiber.StatusUnauthorized
	}
	var backendErr *backend.Error
	if errors.As(err, &backendErr) && backendErr.Code >= 400 && backendErr.Code < 500 {
		return backendErr.Code
	}
	return fiber.StatusInternalServerError
}

// message returns the backend's message, or fallback for other errors.
func message(err error, fallback string) string {
	var backendErr *backend.Error
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	return fallback
}

package auth

import (
	"errors"
	"net/http"
	"strings"

	"profile-directory/core/backend"
	"profile-directory/core/logger"
	"profile-directory/core/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Credentials is the body of sign-up and sign-in requests.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Me describes the session state.
type Me struct {
	User    *backend.User `json:"user"`
	Loading bool          `json:"loading"`
}

// Handler handles HTTP requests for authentication.
type Handler struct {
	session *session.Context
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(sess *session.Context, logger *zap.Logger) *Handler {
	return &Handler{session: sess, logger: logger}
}

// RegisterRoutes registers the auth routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/auth")
	group.Post("/signup", h.HandleSignUp)
	group.Post("/signin", h.HandleSignIn)
	group.Post("/logout", h.HandleLogout)
	group.Get("/me", h.HandleMe)
}

// HandleSignUp creates an account and signs into it.
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body Credentials true "Name, email and password"
// @Success 201 {object} backend.User "Account created successfully"
// @Failure 409 {object} map[string]string "A user with this email already exists"
// @Router /auth/signup [post]
func (h *Handler) HandleSignUp(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	creds, err := parseCredentials(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.session.SignUp(c.Context(), creds.Email, creds.Password, creds.Name)
	if err != nil {
		l.Warn("Sign up failed", zap.Error(err))
		status, msg := describeError(err, http.StatusConflict, "A user with this email already exists.")
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully!",
		"user":    user,
	})
}

// HandleSignIn signs in with email and password.
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body Credentials true "Email and password"
// @Success 200 {object} backend.User "Signed in user"
// @Failure 401 {object} map[string]string "Invalid email or password"
// @Router /auth/signin [post]
func (h *Handler) HandleSignIn(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	creds, err := parseCredentials(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.session.SignIn(c.Context(), creds.Email, creds.Password)
	if err != nil {
		l.Warn("Sign in failed", zap.Error(err))
		status, msg := describeError(err, http.StatusUnauthorized, "Invalid email or password.")
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(user)
}

// HandleLogout deletes the current session.
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 204 "Logged out"
// @Failure 500 {object} map[string]string "Failed to logout"
// @Router /auth/logout [post]
func (h *Handler) HandleLogout(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if err := h.session.Logout(c.Context()); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not logged in"})
		}
		l.Error("Logout failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to logout. Please try again.",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMe returns the logged-in user.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} Me "Session state"
// @Router /auth/me [get]
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(Me{User: h.session.User(), Loading: h.session.IsLoading()})
}

func parseCredentials(c *fiber.Ctx) (Credentials, error) {
	var creds Credentials
	if err := c.BodyParser(&creds); err != nil {
		return creds, errors.New("invalid request body")
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return creds, errors.New("email and password are required")
	}
	return creds, nil
}

// describeError maps a failed auth call to a status and the message shown to
// the user. A backend error carrying code is shown as known, other backend
// errors keep their own message.
func describeError(err error, code int, known string) (int, string) {
	var backendErr *backend.Error
	if !errors.As(err, &backendErr) {
		return fiber.StatusInternalServerError, "An unknown error occurred"
	}
	status := backendErr.Code
	if status < 400 || status > 599 {
		status = fiber.StatusBadGateway
	}
	if backendErr.Code == code {
		return status, known
	}
	return status, backendErr.Message
}

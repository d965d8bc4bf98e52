package session

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const defaultAvatar = "https://picsum.photos/800"

type Handler struct {
	service *Service
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/sign-in", h.signIn)
	app.Post("/api/v1/sign-up", h.signUp)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/profile", h.getProfile)
	// PUT and PATCH both accept partial payloads
	app.Put("/api/v1/profile", h.updateProfile)
	app.Patch("/api/v1/profile", h.updateProfile)
	app.Post("/api/v1/sign-out", h.signOut)
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email and password are required"})
	}

	res, err := h.service.SignIn(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Login successful", "user": res.Profile, "token": res.Token})
}

func (h *Handler) signUp(c *fiber.Ctx) error {
	payload := new(signUpRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.isMissingRequiredFields() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	}
	if payload.Avatar == "" {
		payload.Avatar = defaultAvatar
	}

	res, err := h.service.SignUp(c.UserContext(), payload.Name, payload.Email, payload.Password, payload.Avatar)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": res.Profile, "token": res.Token})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	p, err := h.service.Profile(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(ProfileUpdate)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := h.service.UpdateProfile(c.UserContext(), userID, *payload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) signOut(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.SignOut(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (r signUpRequest) isMissingRequiredFields() bool {
	return strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == ""
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	case errors.Is(err, ErrNotSignedIn):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "session expired, please sign in again"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
}

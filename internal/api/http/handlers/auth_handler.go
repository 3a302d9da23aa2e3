package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/session"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// AuthHandler exposes the signup, signin, signout and password reset endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	cookieName   string
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cookieName: cfg.CookieName, cookieSecure: cfg.CookieSecure}
}

func (h *AuthHandler) cookies(c *fiber.Ctx) session.Transport {
	return session.NewFiberCookies(c, h.cookieName, h.cookieSecure)
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Signup(c.UserContext(), h.cookies(c), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Signin handles POST /auth/signin.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Signin(c.UserContext(), h.cookies(c), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Signout handles POST /auth/signout.
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	msg := h.auth.Signout(h.cookies(c))
	return c.JSON(dto.MessageResponse{Message: msg})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	msg, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetConfirmRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	user, err := h.auth.ConfirmPasswordReset(c.UserContext(), h.cookies(c), req.ResetToken, req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("You must be logged in to do that!")
	}
	user, err := h.auth.CurrentUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

func parse(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// AuthHandler manages registration, login and password endpoints for all
// three subject kinds.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// RegisterUser POST /auth/users/register.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.RegisterUser(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// LoginUser POST /auth/users/login.
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, result, err := h.service.LoginUser(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user":  userResponse(user),
		"token": dto.LoginResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	}})
}

// LoginTechnician POST /auth/technicians/login. Logging in marks the
// technician active for assignment.
func (h *AuthHandler) LoginTechnician(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tech, result, err := h.service.LoginTechnician(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"technician": technicianResponse(tech),
		"token":      dto.LoginResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	}})
}

// LogoutTechnician POST /auth/technicians/logout. Marks the caller off-duty.
func (h *AuthHandler) LogoutTechnician(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Technician == nil {
		return apperrors.NewUnauthorized("technician required")
	}
	if err := h.service.LogoutTechnician(c.Context(), principal.Technician.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"active": false}})
}

// LoginTeamAdmin POST /auth/admins/login.
func (h *AuthHandler) LoginTeamAdmin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	admin, result, err := h.service.LoginTeamAdmin(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"team_admin": teamAdminResponse(admin),
		"token":      dto.LoginResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	}})
}

// RequestPasswordReset POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, err := h.service.RequestPasswordReset(c.Context(), domain.SubjectType(req.Subject), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset_token": token}})
}

// ConfirmPasswordReset POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	subjectID, subject := principalSubject(principal)
	if subjectID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.ChangePassword(c.Context(), subject, subjectID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

func principalSubject(principal *auth.Principal) (string, domain.SubjectType) {
	switch {
	case principal.User != nil:
		return principal.User.ID, domain.SubjectTypeUser
	case principal.Technician != nil:
		return principal.Technician.ID, domain.SubjectTypeTechnician
	case principal.TeamAdmin != nil:
		return principal.TeamAdmin.ID, domain.SubjectTypeTeamAdmin
	default:
		return "", ""
	}
}

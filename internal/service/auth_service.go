package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// AuthService handles registration, login and password flows for the three
// subject kinds. Technician login doubles as the on-duty switch: logging in
// marks the technician active for assignment, logging out removes them from
// rotation.
type AuthService struct {
	users       repository.UserRepository
	technicians repository.TechnicianRepository
	admins      repository.TeamAdminRepository
	resets      repository.PasswordResetRepository
	tokens      *auth.TokenManager
	bcryptCost  int
	resetTTL    time.Duration
	logger      *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	TechnicianRepo repository.TechnicianRepository
	TeamAdminRepo  repository.TeamAdminRepository
	ResetRepo      repository.PasswordResetRepository
	Tokens         *auth.TokenManager
	BcryptCost     int
	ResetTTL       time.Duration
	Logger         *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resetTTL := deps.ResetTTL
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	return &AuthService{
		users:       deps.UserRepo,
		technicians: deps.TechnicianRepo,
		admins:      deps.TeamAdminRepo,
		resets:      deps.ResetRepo,
		tokens:      deps.Tokens,
		bcryptCost:  deps.BcryptCost,
		resetTTL:    resetTTL,
		logger:      logger,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult carries an issued token and its expiry.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// RegisterUser creates an informant account.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// LoginUser authenticates an informant and issues a token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, *LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, invalidCredentials(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil, apperrors.NewForbidden("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	result, err := s.issue(user.ID, domain.SubjectTypeUser)
	if err != nil {
		return nil, nil, err
	}
	return user, result, nil
}

// LoginTechnician authenticates a technician, issues a token, and flips the
// active flag on so the rotation starts considering them.
func (s *AuthService) LoginTechnician(ctx context.Context, email, password string) (*domain.Technician, *LoginResult, error) {
	tech, err := s.technicians.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, invalidCredentials(err)
	}
	if err := auth.ComparePassword(tech.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := s.technicians.SetActive(ctx, tech.ID, true); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	tech.Active = true
	result, err := s.issue(tech.ID, domain.SubjectTypeTechnician)
	if err != nil {
		return nil, nil, err
	}
	return tech, result, nil
}

// LogoutTechnician marks the technician off-duty. Open assignments stay with
// them; only new routing skips inactive technicians.
func (s *AuthService) LogoutTechnician(ctx context.Context, technicianID string) error {
	if err := s.technicians.SetActive(ctx, technicianID, false); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// LoginTeamAdmin authenticates a team admin and issues a token.
func (s *AuthService) LoginTeamAdmin(ctx context.Context, email, password string) (*domain.TeamAdmin, *LoginResult, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, invalidCredentials(err)
	}
	if !admin.Active {
		return nil, nil, apperrors.NewForbidden("account inactive")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	result, err := s.issue(admin.ID, domain.SubjectTypeTeamAdmin)
	if err != nil {
		return nil, nil, err
	}
	return admin, result, nil
}

// RequestPasswordReset issues a one-time reset token for the subject matching
// the email. The token is returned for delivery by the notification layer.
func (s *AuthService) RequestPasswordReset(ctx context.Context, subject domain.SubjectType, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	subjectID, err := s.subjectIDByEmail(ctx, subject, email)
	if err != nil {
		return "", err
	}
	token := &repository.PasswordResetToken{
		SubjectType: string(subject),
		SubjectID:   subjectID,
		Token:       uuid.NewString(),
		ExpiresAt:   time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", apperrors.MapError(err)
	}
	return token.Token, nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("invalid reset token", nil)
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil {
		return apperrors.NewValidationError("reset token already used", nil)
	}
	if time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("reset token expired", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.storePasswordHash(ctx, domain.SubjectType(token.SubjectType), token.SubjectID, hash); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ChangePassword verifies the current password and stores a new one.
func (s *AuthService) ChangePassword(ctx context.Context, subject domain.SubjectType, subjectID, current, next string) error {
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	currentHash, err := s.passwordHash(ctx, subject, subjectID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(currentHash, current); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return s.storePasswordHash(ctx, subject, subjectID, hash)
}

func (s *AuthService) issue(subjectID string, subject domain.SubjectType) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(subjectID, subject)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) subjectIDByEmail(ctx context.Context, subject domain.SubjectType, email string) (string, error) {
	switch subject {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return "", accountNotFound(err)
		}
		return user.ID, nil
	case domain.SubjectTypeTechnician:
		tech, err := s.technicians.GetByEmail(ctx, email)
		if err != nil {
			return "", accountNotFound(err)
		}
		return tech.ID, nil
	case domain.SubjectTypeTeamAdmin:
		admin, err := s.admins.GetByEmail(ctx, email)
		if err != nil {
			return "", accountNotFound(err)
		}
		return admin.ID, nil
	default:
		return "", apperrors.NewValidationError("unknown subject type", map[string]any{"subject": subject})
	}
}

func (s *AuthService) passwordHash(ctx context.Context, subject domain.SubjectType, subjectID string) (string, error) {
	switch subject {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByID(ctx, subjectID)
		if err != nil {
			return "", accountNotFound(err)
		}
		return user.PasswordHash, nil
	case domain.SubjectTypeTechnician:
		tech, err := s.technicians.GetByID(ctx, subjectID)
		if err != nil {
			return "", accountNotFound(err)
		}
		return tech.PasswordHash, nil
	case domain.SubjectTypeTeamAdmin:
		admin, err := s.admins.GetByID(ctx, subjectID)
		if err != nil {
			return "", accountNotFound(err)
		}
		return admin.PasswordHash, nil
	default:
		return "", apperrors.NewValidationError("unknown subject type", map[string]any{"subject": subject})
	}
}

func (s *AuthService) storePasswordHash(ctx context.Context, subject domain.SubjectType, subjectID, hash string) error {
	switch subject {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByID(ctx, subjectID)
		if err != nil {
			return accountNotFound(err)
		}
		user.PasswordHash = hash
		return apperrors.MapError(s.users.Update(ctx, user))
	case domain.SubjectTypeTechnician:
		tech, err := s.technicians.GetByID(ctx, subjectID)
		if err != nil {
			return accountNotFound(err)
		}
		tech.PasswordHash = hash
		return apperrors.MapError(s.technicians.Update(ctx, tech))
	case domain.SubjectTypeTeamAdmin:
		admin, err := s.admins.GetByID(ctx, subjectID)
		if err != nil {
			return accountNotFound(err)
		}
		admin.PasswordHash = hash
		return apperrors.MapError(s.admins.Update(ctx, admin))
	default:
		return apperrors.NewValidationError("unknown subject type", map[string]any{"subject": subject})
	}
}

func invalidCredentials(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return apperrors.MapError(err)
}

func accountNotFound(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound("account", nil)
	}
	return apperrors.MapError(err)
}

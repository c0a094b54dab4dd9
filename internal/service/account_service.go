package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/authz"
	"github.com/echosuccess/participium-sub000/internal/config"
	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/mail"
	"github.com/echosuccess/participium-sub000/internal/repository"
	"github.com/echosuccess/participium-sub000/internal/storage"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// AccountService coordinates registration, verification, credentials, profile
// management, and administrator-driven municipality accounts.
type AccountService struct {
	users           repository.UserRepository
	profilePhotos   repository.CitizenPhotoRepository
	policy          *authz.Policy
	mailer          mail.Sender
	store           storage.ObjectStore
	tokens          *auth.TokenManager
	sessions        *auth.SessionStore
	logger          *zap.Logger
	bcryptCost      int
	verificationTTL time.Duration
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	UserRepo  repository.UserRepository
	PhotoRepo repository.CitizenPhotoRepository
	Policy    *authz.Policy
	Mailer    mail.Sender
	Store     storage.ObjectStore
	Tokens    *auth.TokenManager
	Sessions  *auth.SessionStore
	Logger    *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies) *AccountService {
	return &AccountService{
		users:           deps.UserRepo,
		profilePhotos:   deps.PhotoRepo,
		policy:          deps.Policy,
		mailer:          deps.Mailer,
		store:           deps.Store,
		tokens:          deps.Tokens,
		sessions:        deps.Sessions,
		logger:          deps.Logger,
		bcryptCost:      cfg.BcryptCost,
		verificationTTL: cfg.VerificationTTL(),
	}
}

// SignupCitizen creates a citizen account with a fresh verification code. A
// failed verification email is logged and swallowed: the account still exists
// with a pending code and the citizen can request a resend.
func (s *AccountService) SignupCitizen(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewBadRequest("name, email and password are required")
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	code := generateVerificationCode()
	expiry := time.Now().Add(s.verificationTTL)

	user := &domain.User{
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		Role:             domain.RoleCitizen,
		VerificationCode: &code,
		CodeExpiresAt:    &expiry,
		NotificationPref: domain.NotifyByEmail,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.sendVerificationMail(user, code)
	return user, nil
}

// VerifyEmail consumes a verification code. Verifying an already-verified
// account is idempotent and succeeds.
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.IsVerified {
		return "account already verified", nil
	}
	if user.VerificationCode == nil || user.CodeExpiresAt == nil {
		return "", apperrors.NewBadRequest("no pending verification code; request a new one")
	}
	if time.Now().After(*user.CodeExpiresAt) {
		return "", apperrors.NewBadRequest("verification code expired; request a new one")
	}
	if *user.VerificationCode != strings.TrimSpace(code) {
		return "", apperrors.NewBadRequest("Invalid verification code")
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.CodeExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return "", apperrors.MapError(err)
	}
	return "account verified", nil
}

// ResendVerification issues a new code, invalidating the previous one.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.NewBadRequest("account already verified")
	}

	code := generateVerificationCode()
	expiry := time.Now().Add(s.verificationTTL)
	user.VerificationCode = &code
	user.CodeExpiresAt = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.sendVerificationMail(user, code)
	return nil
}

// Login authenticates credentials and issues a session token. Unverified
// citizen accounts may not open a session.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, string, *auth.Claims, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Role == domain.RoleCitizen && !user.IsVerified {
		return nil, "", nil, apperrors.NewUnauthorized("account not verified")
	}

	token, claims, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", nil, apperrors.NewInternal(err)
	}
	return user, token, claims, nil
}

// Logout revokes the session server-side for the remainder of its lifetime.
func (s *AccountService) Logout(ctx context.Context, principal *auth.Principal) error {
	ttl := time.Until(principal.Exp)
	return s.sessions.Revoke(ctx, principal.JTI, ttl)
}

// ProfileUpdateInput carries the optional profile fields; nil means unchanged.
type ProfileUpdateInput struct {
	Name             *string
	Email            *string
	Password         *string
	TelegramHandle   *string
	TelegramChatID   *int64
	NotificationPref *domain.NotificationPreference
}

func (in ProfileUpdateInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil &&
		in.TelegramHandle == nil && in.TelegramChatID == nil && in.NotificationPref == nil
}

// UpdateProfile applies a partial update to the caller's own account.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, input ProfileUpdateInput) (*domain.User, error) {
	if input.empty() {
		return nil, apperrors.NewBadRequest("at least one field must be provided")
	}
	user, err := s.getByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewBadRequest("name cannot be blank")
		}
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, apperrors.NewBadRequest("email cannot be blank")
		}
		if !strings.EqualFold(email, user.Email) {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperrors.NewBadRequest("password cannot be blank")
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}
		user.PasswordHash = hash
	}
	if input.TelegramHandle != nil {
		handle := strings.TrimPrefix(strings.TrimSpace(*input.TelegramHandle), "@")
		if handle == "" {
			user.TelegramHandle = nil
		} else {
			user.TelegramHandle = &handle
		}
	}
	if input.TelegramChatID != nil {
		user.TelegramChatID = input.TelegramChatID
	}
	if input.NotificationPref != nil {
		if !input.NotificationPref.IsValid() {
			return nil, apperrors.NewBadRequest("unknown notification preference")
		}
		user.NotificationPref = *input.NotificationPref
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetProfilePhoto stores the uploaded photo and replaces any prior one, both
// the row and the stored object.
func (s *AccountService) SetProfilePhoto(ctx context.Context, userID int64, filename string, content io.Reader) (*domain.CitizenPhoto, error) {
	prior, err := s.profilePhotos.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	key := "profiles/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	obj, err := s.store.Save(ctx, key, content)
	if err != nil {
		return nil, apperrors.NewInternal(fmt.Errorf("store profile photo: %w", err))
	}

	photo := &domain.CitizenPhoto{UserID: userID, URL: obj.URL, Filename: filename}
	if err := s.profilePhotos.Upsert(ctx, photo); err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			s.logger.Warn("failed to remove stored profile photo", zap.String("key", obj.Key), zap.Error(delErr))
		}
		return nil, apperrors.MapError(err)
	}

	if prior != nil {
		s.removeStoredObject(ctx, prior.URL)
	}
	return photo, nil
}

// DeleteProfilePhoto removes the caller's profile photo row and object.
func (s *AccountService) DeleteProfilePhoto(ctx context.Context, userID int64) error {
	prior, err := s.profilePhotos.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("profile photo")
		}
		return apperrors.MapError(err)
	}
	if err := s.profilePhotos.DeleteByUser(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	s.removeStoredObject(ctx, prior.URL)
	return nil
}

// GetProfilePhoto returns the caller's profile photo, if any.
func (s *AccountService) GetProfilePhoto(ctx context.Context, userID int64) (*domain.CitizenPhoto, error) {
	photo, err := s.profilePhotos.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return photo, nil
}

// MunicipalityUserInput describes administrator-created staff accounts.
type MunicipalityUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department *domain.Department
}

// CreateMunicipalityUser creates a staff account. The role allow-list excludes
// CITIZEN; staff accounts are created verified.
func (s *AccountService) CreateMunicipalityUser(ctx context.Context, input MunicipalityUserInput) (*domain.User, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, apperrors.NewBadRequest("name, email and password are required")
	}
	if !s.municipalityRoleAllowed(input.Role) {
		return nil, apperrors.NewBadRequest("role not allowed for municipality accounts")
	}
	if input.Role.IsExternal() && input.Department == nil {
		return nil, apperrors.NewBadRequest("external accounts require a department")
	}
	if err := s.ensureEmailFree(ctx, input.Email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	user := &domain.User{
		Name:             strings.TrimSpace(input.Name),
		Email:            strings.TrimSpace(input.Email),
		PasswordHash:     hash,
		Role:             input.Role,
		IsVerified:       true,
		NotificationPref: domain.NotifyByEmail,
		Department:       input.Department,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListMunicipalityUsers returns all non-citizen accounts.
func (s *AccountService) ListMunicipalityUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListMunicipality(ctx)
	return users, apperrors.MapError(err)
}

// GetMunicipalityUser fetches one staff account.
func (s *AccountService) GetMunicipalityUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleCitizen {
		return nil, apperrors.NewNotFound("municipality user")
	}
	return user, nil
}

// MunicipalityUserUpdate carries optional staff account fields.
type MunicipalityUserUpdate struct {
	Name       *string
	Email      *string
	Password   *string
	Role       *domain.Role
	Department *domain.Department
}

// UpdateMunicipalityUser applies a partial update to a staff account. Demoting
// the last administrator is rejected the same way deletion is.
func (s *AccountService) UpdateMunicipalityUser(ctx context.Context, id int64, input MunicipalityUserUpdate) (*domain.User, error) {
	user, err := s.GetMunicipalityUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name == nil && input.Email == nil && input.Password == nil && input.Role == nil && input.Department == nil {
		return nil, apperrors.NewBadRequest("at least one field must be provided")
	}

	if input.Role != nil && *input.Role != user.Role {
		if !s.municipalityRoleAllowed(*input.Role) {
			return nil, apperrors.NewBadRequest("role not allowed for municipality accounts")
		}
		if user.Role == domain.RoleAdministrator {
			if err := s.ensureNotLastAdministrator(ctx); err != nil {
				return nil, err
			}
		}
		user.Role = *input.Role
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewBadRequest("name cannot be blank")
		}
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, apperrors.NewBadRequest("email cannot be blank")
		}
		if !strings.EqualFold(email, user.Email) {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}
		user.PasswordHash = hash
	}
	if input.Department != nil {
		user.Department = input.Department
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteMunicipalityUser removes a staff account. The administrator count is
// taken from a fresh read at deletion time so concurrent deletions cannot
// remove the last administrator.
func (s *AccountService) DeleteMunicipalityUser(ctx context.Context, id int64) error {
	user, err := s.GetMunicipalityUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdministrator {
		if err := s.ensureNotLastAdministrator(ctx); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("municipality user")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// MunicipalityRoles lists assignable roles for administrator tooling.
func (s *AccountService) MunicipalityRoles() []domain.Role {
	return s.policy.MunicipalityRoles()
}

func (s *AccountService) municipalityRoleAllowed(role domain.Role) bool {
	for _, allowed := range s.policy.MunicipalityRoles() {
		if allowed == role {
			return true
		}
	}
	return false
}

func (s *AccountService) ensureNotLastAdministrator(ctx context.Context) error {
	count, err := s.users.CountByRole(ctx, domain.RoleAdministrator)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count <= 1 {
		return apperrors.NewBadRequest("cannot remove the last administrator")
	}
	return nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if existing.ID == selfID {
		return nil
	}
	return apperrors.NewConflict("email already registered")
}

func (s *AccountService) getByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AccountService) getByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AccountService) sendVerificationMail(user *domain.User, code string) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("Hello %s,\n\nYour verification code is %s. It expires in %d minutes.\n",
		user.Name, code, int(s.verificationTTL.Minutes()))
	if err := s.mailer.Send(user.Email, "Verify your account", body); err != nil {
		s.logger.Error("failed to send verification email", zap.String("email", user.Email), zap.Error(err))
	}
}

// removeStoredObject best-effort deletes the object backing a stored URL.
func (s *AccountService) removeStoredObject(ctx context.Context, url string) {
	idx := strings.Index(url, "profiles/")
	if idx < 0 {
		return
	}
	if err := s.store.Delete(ctx, url[idx:]); err != nil {
		s.logger.Warn("failed to remove replaced profile photo", zap.String("url", url), zap.Error(err))
	}
}

// generateVerificationCode returns a 6-digit numeric code.
func generateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

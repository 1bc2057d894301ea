package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/auth"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/guard"
	"github.com/playwatch/platform/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles guardian registration and login.
type AuthService struct {
	pool   *pgxpool.Pool
	users  repository.UserRepository
	jwtMgr *auth.JWTManager
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(pool *pgxpool.Pool, users repository.UserRepository, jwtMgr *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{pool: pool, users: users, jwtMgr: jwtMgr, logger: logger}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates a new guardian account. Self-registration is always a
// parent account; admin accounts are created through the admin panel.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Username == "" {
		return nil, domain.ErrValidation("username is required")
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if input.Role != "" && input.Role != string(domain.RoleParent) {
		return nil, domain.ErrValidation("self-registration is limited to parent accounts")
	}

	existing, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleParent,
	}
	if err := s.users.Create(ctx, s.pool, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrConflict("username already taken")
		}
		return nil, domain.ErrInternal("create user", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmParent, user.ID, user.Username)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a guardian or admin and returns a realm-scoped JWT.
// Attempts are recorded for the lockout window regardless of outcome.
func (s *AuthService) Login(ctx context.Context, input LoginInput, ip string) (*AuthResult, error) {
	if err := guard.CheckLocked(ctx, s.pool, input.Username); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	guard.RecordAttempt(ctx, s.pool, input.Username, ip, true)

	realm := auth.RealmParent
	if user.Role == domain.RoleAdmin {
		realm = auth.RealmAdmin
	}
	token, err := s.jwtMgr.GenerateToken(realm, user.ID, user.Username)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists yet.
// Called once at API startup so a fresh deployment is never locked out of
// the admin panel.
func (s *AuthService) EnsureAdmin(ctx context.Context, password string) error {
	count, err := s.users.CountAdmins(ctx, s.pool)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, s.pool, admin); err != nil {
		// Another instance may have raced us to the bootstrap insert.
		if repository.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap admin account created", "username", admin.Username)
	return nil
}

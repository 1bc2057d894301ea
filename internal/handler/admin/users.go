package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/handler"
	"github.com/playwatch/platform/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserAdminHandler handles admin account management.
type UserAdminHandler struct {
	pool  *pgxpool.Pool
	users repository.UserRepository
}

// NewUserAdminHandler creates a new UserAdminHandler.
func NewUserAdminHandler(pool *pgxpool.Pool, users repository.UserRepository) *UserAdminHandler {
	return &UserAdminHandler{pool: pool, users: users}
}

// ListUsers handles GET /admin/users.
func (h *UserAdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), h.pool)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list users", err))
		return
	}
	handler.RespondJSON(w, http.StatusOK, users)
}

type userInput struct {
	Username          string `json:"username"`
	Password          string `json:"password"`
	Role              string `json:"role"`
	Email             string `json:"email"`
	DiscordWebhookURL string `json:"discord_webhook_url"`
}

func (in *userInput) validate(requirePassword bool) error {
	if in.Username == "" {
		return domain.ErrValidation("username is required")
	}
	if requirePassword && len(in.Password) < 8 {
		return domain.ErrValidation("password must be at least 8 characters")
	}
	if err := domain.ValidateRole(domain.Role(in.Role)); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if in.Email != "" {
		if err := domain.ValidateEmail(in.Email); err != nil {
			return domain.ErrValidation(err.Error())
		}
	}
	if err := domain.ValidateDiscordWebhookURL(in.DiscordWebhookURL); err != nil {
		return domain.ErrValidation(err.Error())
	}
	return nil
}

// CreateUser handles POST /admin/users. Unlike self-registration, the admin
// panel may create accounts of either role.
func (h *UserAdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input userInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.Role == "" {
		input.Role = string(domain.RoleParent)
	}
	if err := input.validate(true); err != nil {
		handler.RespondError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("hash password", err))
		return
	}

	user := &domain.User{
		ID:                uuid.New(),
		Username:          input.Username,
		PasswordHash:      string(hash),
		Role:              domain.Role(input.Role),
		Email:             input.Email,
		DiscordWebhookURL: input.DiscordWebhookURL,
	}
	if err := h.users.Create(r.Context(), h.pool, user); err != nil {
		if repository.IsUniqueViolation(err) {
			handler.RespondError(w, domain.ErrConflict("username already taken"))
			return
		}
		handler.RespondError(w, domain.ErrInternal("create user", err))
		return
	}

	handler.RespondJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /admin/users/{id}. The last remaining admin cannot
// be demoted to parent.
func (h *UserAdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid user id"))
		return
	}

	var input userInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := input.validate(false); err != nil {
		handler.RespondError(w, err)
		return
	}

	existing, err := h.users.FindByID(r.Context(), h.pool, id)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("find user", err))
		return
	}
	if existing == nil {
		handler.RespondError(w, domain.ErrNotFound("user", id.String()))
		return
	}

	if existing.Role == domain.RoleAdmin && domain.Role(input.Role) != domain.RoleAdmin {
		if err := h.ensureNotLastAdmin(r); err != nil {
			handler.RespondError(w, err)
			return
		}
	}

	existing.Username = input.Username
	existing.Role = domain.Role(input.Role)
	existing.Email = input.Email
	existing.DiscordWebhookURL = input.DiscordWebhookURL

	affected, err := h.users.Update(r.Context(), h.pool, existing)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			handler.RespondError(w, domain.ErrConflict("username already taken"))
			return
		}
		handler.RespondError(w, domain.ErrInternal("update user", err))
		return
	}
	if affected == 0 {
		handler.RespondError(w, domain.ErrNotFound("user", id.String()))
		return
	}

	handler.RespondJSON(w, http.StatusOK, existing)
}

// DeleteUser handles DELETE /admin/users/{id}. Deleting a guardian cascades
// to its children; the last remaining admin cannot be deleted.
func (h *UserAdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid user id"))
		return
	}

	existing, err := h.users.FindByID(r.Context(), h.pool, id)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("find user", err))
		return
	}
	if existing == nil {
		handler.RespondError(w, domain.ErrNotFound("user", id.String()))
		return
	}

	if existing.Role == domain.RoleAdmin {
		if err := h.ensureNotLastAdmin(r); err != nil {
			handler.RespondError(w, err)
			return
		}
	}

	affected, err := h.users.Delete(r.Context(), h.pool, id)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("delete user", err))
		return
	}
	if affected == 0 {
		handler.RespondError(w, domain.ErrNotFound("user", id.String()))
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *UserAdminHandler) ensureNotLastAdmin(r *http.Request) error {
	count, err := h.users.CountAdmins(r.Context(), h.pool)
	if err != nil {
		return domain.ErrInternal("count admins", err)
	}
	if count <= 1 {
		return domain.ErrForbidden("cannot remove the last admin account")
	}
	return nil
}

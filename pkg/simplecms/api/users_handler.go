package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// UsersHandler handles HTTP requests for users using pkg/simplecms
type UsersHandler struct {
	service simplecms.Service
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(service simplecms.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

// Routes returns the routes for users
func (h *UsersHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateUser)
	r.Post("/page-users", h.CreatePageUser)
	r.Get("/{id}", h.GetUser)

	return r
}

// CreateUserRequest is the request body for registering a user
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// CreateUser registers a user account
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.service.CreateUser(r.Context(), simplecms.CreateUserRequest{
		Username:    req.Username,
		Email:       req.Email,
		IsStaff:     req.IsStaff,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		slog.Error("Failed to create user", "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("User created", "user_id", user.ID.String(), "username", user.Username)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// GetUser retrieves a user by ID
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid user ID", "user_id", idStr, "error", err)
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get user", "user_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, user)
}

// CreatePageUserRequest is the request body for promoting a user to editor
type CreatePageUserRequest struct {
	CreatedByID string                         `json:"created_by_id"`
	UserID      string                         `json:"user_id"`
	GrantAll    bool                           `json:"grant_all,omitempty"`
	Permissions *simplecms.PageUserPermissions `json:"permissions,omitempty"`
}

// CreatePageUser promotes an existing user to a CMS editor
func (h *UsersHandler) CreatePageUser(w http.ResponseWriter, r *http.Request) {
	var req CreatePageUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createdByID, err := uuid.Parse(req.CreatedByID)
	if err != nil {
		slog.Error("Invalid creator ID", "created_by_id", req.CreatedByID, "error", err)
		http.Error(w, "Invalid creator ID", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		slog.Error("Invalid user ID", "user_id", req.UserID, "error", err)
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.service.CreatePageUser(r.Context(), simplecms.CreatePageUserRequest{
		CreatedByID: createdByID,
		UserID:      userID,
		GrantAll:    req.GrantAll,
		Permissions: req.Permissions,
	})
	if err != nil {
		slog.Error("Failed to create page user", "user_id", req.UserID, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Page user created", "user_id", user.ID.String())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

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

// PluginsHandler handles HTTP requests for plugins using pkg/simplecms
type PluginsHandler struct {
	service simplecms.Service
}

// NewPluginsHandler creates a new plugins handler
func NewPluginsHandler(service simplecms.Service) *PluginsHandler {
	return &PluginsHandler{service: service}
}

// Routes returns the routes for plugins
func (h *PluginsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.AddPlugin)
	r.Get("/{id}", h.GetPlugin)

	return r
}

// AddPluginRequest is the request body for placing a plugin
type AddPluginRequest struct {
	PlaceholderID string                 `json:"placeholder_id"`
	PluginType    string                 `json:"plugin_type"`
	Language      string                 `json:"language"`
	Position      string                 `json:"position,omitempty"`
	TargetID      string                 `json:"target_id,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`
}

// AddPlugin places a typed content block into a placeholder
func (h *PluginsHandler) AddPlugin(w http.ResponseWriter, r *http.Request) {
	var req AddPluginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	placeholderID, err := uuid.Parse(req.PlaceholderID)
	if err != nil {
		slog.Error("Invalid placeholder ID", "placeholder_id", req.PlaceholderID, "error", err)
		http.Error(w, "Invalid placeholder ID", http.StatusBadRequest)
		return
	}

	addReq := simplecms.AddPluginRequest{
		PlaceholderID: placeholderID,
		PluginType:    req.PluginType,
		Language:      req.Language,
		Position:      simplecms.TreePosition(req.Position),
		Data:          req.Data,
	}

	if req.TargetID != "" {
		targetID, err := uuid.Parse(req.TargetID)
		if err != nil {
			slog.Error("Invalid target ID", "target_id", req.TargetID, "error", err)
			http.Error(w, "Invalid target ID", http.StatusBadRequest)
			return
		}
		addReq.TargetID = &targetID
	}

	plugin, err := h.service.AddPlugin(r.Context(), addReq)
	if err != nil {
		slog.Error("Failed to add plugin", "placeholder_id", req.PlaceholderID, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Plugin added", "plugin_id", plugin.ID.String(), "plugin_type", plugin.PluginType)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, plugin)
}

// GetPlugin retrieves a plugin by ID, with its stored data attached
func (h *PluginsHandler) GetPlugin(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid plugin ID", "plugin_id", idStr, "error", err)
		http.Error(w, "Invalid plugin ID", http.StatusBadRequest)
		return
	}

	plugin, err := h.service.GetPlugin(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get plugin", "plugin_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, plugin)
}

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

// SitesHandler handles HTTP requests for sites using pkg/simplecms
type SitesHandler struct {
	service simplecms.Service
}

// NewSitesHandler creates a new sites handler
func NewSitesHandler(service simplecms.Service) *SitesHandler {
	return &SitesHandler{service: service}
}

// Routes returns the routes for sites
func (h *SitesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSite)
	r.Get("/{id}", h.GetSite)

	return r
}

// CreateSiteRequest is the request body for registering a site
type CreateSiteRequest struct {
	Name      string   `json:"name"`
	Domain    string   `json:"domain,omitempty"`
	Languages []string `json:"languages"`
}

// CreateSite registers a site with its enabled languages
func (h *SitesHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	site, err := h.service.CreateSite(r.Context(), simplecms.CreateSiteRequest{
		Name:      req.Name,
		Domain:    req.Domain,
		Languages: req.Languages,
	})
	if err != nil {
		slog.Error("Failed to create site", "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Site created", "site_id", site.ID.String(), "name", site.Name)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, site)
}

// GetSite retrieves a site by ID
func (h *SitesHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid site ID", "site_id", idStr, "error", err)
		http.Error(w, "Invalid site ID", http.StatusBadRequest)
		return
	}

	site, err := h.service.GetSite(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get site", "site_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, site)
}

package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms/admin"
)

// AdminHandler exposes the administrative page reads over HTTP. The routes
// bypass permission checks, so the mount point must sit behind operator
// authentication.
type AdminHandler struct {
	admin admin.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc admin.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminSvc}
}

// Routes returns the routes for admin page reads
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/pages", h.ListPages)
	r.Get("/pages/count", h.CountPages)
	r.Get("/pages/statistics", h.GetStatistics)
	r.Get("/users/{id}/permissions", h.ListPermissions)

	return r
}

// ListPages lists pages across all sites and both trees
func (h *AdminHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.parseFilters(w, r)
	if !ok {
		return
	}

	resp, err := h.admin.ListAllPages(r.Context(), admin.ListPagesRequest{Filters: filters})
	if err != nil {
		slog.Error("Failed to list pages", "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, resp)
}

// CountPages counts pages matching the query filters
func (h *AdminHandler) CountPages(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.parseFilters(w, r)
	if !ok {
		return
	}

	resp, err := h.admin.CountPages(r.Context(), admin.CountRequest{Filters: filters})
	if err != nil {
		slog.Error("Failed to count pages", "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, resp)
}

// GetStatistics reports aggregated page statistics
func (h *AdminHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.parseFilters(w, r)
	if !ok {
		return
	}

	resp, err := h.admin.GetStatistics(r.Context(), admin.StatisticsRequest{
		Filters: filters,
		Options: admin.DefaultStatisticsOptions(),
	})
	if err != nil {
		slog.Error("Failed to get statistics", "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, resp)
}

// ListPermissions returns every permission row granted to a user
func (h *AdminHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Invalid user ID", "error", err)
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	resp, err := h.admin.ListPermissions(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list permissions", "user_id", userID, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, resp)
}

// parseFilters builds admin filters from query parameters, writing a 400
// response and returning false when a parameter does not parse.
func (h *AdminHandler) parseFilters(w http.ResponseWriter, r *http.Request) (admin.PageFilters, bool) {
	filters := admin.PageFilters{}
	query := r.URL.Query()

	if v := query.Get("site_id"); v != "" {
		siteID, err := uuid.Parse(v)
		if err != nil {
			slog.Error("Invalid site ID", "site_id", v, "error", err)
			http.Error(w, "Invalid site ID", http.StatusBadRequest)
			return filters, false
		}
		filters.SiteID = &siteID
	}

	if v := query.Get("is_draft"); v != "" {
		isDraft, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid is_draft value", http.StatusBadRequest)
			return filters, false
		}
		filters.IsDraft = &isDraft
	}

	if v := query.Get("published"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid published value", http.StatusBadRequest)
			return filters, false
		}
		filters.Published = &published
	}

	if v := query.Get("language"); v != "" {
		filters.Language = &v
	}
	if v := query.Get("template"); v != "" {
		filters.Template = &v
	}
	if v := query.Get("reverse_id"); v != "" {
		filters.ReverseID = &v
	}
	if v := query.Get("title"); v != "" {
		filters.TitleContains = &v
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit value", http.StatusBadRequest)
			return filters, false
		}
		filters.Limit = &limit
	}

	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			http.Error(w, "Invalid offset value", http.StatusBadRequest)
			return filters, false
		}
		filters.Offset = &offset
	}

	if v := query.Get("sort_by"); v != "" {
		filters.SortBy = &v
	}
	if v := query.Get("sort_order"); v != "" {
		filters.SortOrder = &v
	}

	return filters, true
}

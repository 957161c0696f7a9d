package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// AdminService defines the interface for administrative page operations.
// These operations read across every site and both page trees without
// permission checks and are intended for operational, monitoring, and
// reporting use cases.
//
// IMPORTANT: Endpoints using this service should be protected with appropriate
// authentication and authorization middleware to ensure only authorized
// administrators can access these operations.
type AdminService interface {
	// ListAllPages returns a paginated list of pages with optional filtering.
	// Unlike regular page reads, this spans drafts and public pages of all
	// sites at once.
	ListAllPages(ctx context.Context, req ListPagesRequest) (*ListPagesResponse, error)

	// CountPages returns the count of pages matching the given filters.
	// This is useful for pagination and monitoring purposes.
	CountPages(ctx context.Context, req CountRequest) (*CountResponse, error)

	// GetStatistics returns aggregated statistics about pages.
	// This provides breakdown by state, site, template, language, etc.
	GetStatistics(ctx context.Context, req StatisticsRequest) (*StatisticsResponse, error)

	// ListPermissions returns every page-level and global permission row
	// granted to the given user. This is an audit view and does not
	// evaluate staff or superuser shortcuts.
	ListPermissions(ctx context.Context, userID uuid.UUID) (*PermissionsResponse, error)
}

// New creates a new AdminService instance that uses the provided repository.
func New(repo simplecms.Repository) AdminService {
	return &adminService{
		repo: repo,
	}
}

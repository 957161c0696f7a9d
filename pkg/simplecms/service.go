package simplecms

import (
	"context"
	"iter"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-cms library
type Service interface {
	// Page operations
	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	GetPageDraft(ctx context.Context, id uuid.UUID) (*Page, error)

	// Title operations
	CreateTitle(ctx context.Context, req CreateTitleRequest) (*Title, error)
	GetTitle(ctx context.Context, pageID uuid.UUID, language string) (*Title, error)

	// Placeholder and plugin operations
	CreatePlaceholder(ctx context.Context, pageID uuid.UUID, slot string) (*Placeholder, error)
	ListPlaceholders(ctx context.Context, pageID uuid.UUID) ([]*Placeholder, error)
	AddPlugin(ctx context.Context, req AddPluginRequest) (*Plugin, error)
	GetPlugin(ctx context.Context, id uuid.UUID) (*Plugin, error)
	CopyPluginsToLanguage(ctx context.Context, pageID uuid.UUID, sourceLanguage, targetLanguage string, onlyEmpty bool) (int, error)

	// Permission operations
	CreatePageUser(ctx context.Context, req CreatePageUserRequest) (*User, error)
	AssignUserToPage(ctx context.Context, req AssignUserToPageRequest) (*PagePermission, *GlobalPagePermission, error)
	CanChangePage(ctx context.Context, userID, pageID uuid.UUID) (bool, error)

	// Publication workflow
	PublishPage(ctx context.Context, pageID, userID uuid.UUID, language string) (*Page, error)
	PublishPages(ctx context.Context, req PublishPagesRequest) (iter.Seq2[*Page, bool], error)

	// Slug operations
	GenerateValidSlug(ctx context.Context, source string, parentID *uuid.UUID, language string) (string, error)

	// Site and user operations
	CreateSite(ctx context.Context, req CreateSiteRequest) (*Site, error)
	GetSite(ctx context.Context, id uuid.UUID) (*Site, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

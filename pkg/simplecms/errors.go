package simplecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrValidation indicates invalid input: an unknown template, a
	// language not enabled for the site, a bad position or visibility
	// literal, an unregistered apphook or plugin type, or bad plugin data.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateReverseID indicates a reverse identifier is already used
	// by another draft page on the same site.
	ErrDuplicateReverseID = errors.New("duplicate reverse id")

	// ErrPermissionDenied indicates the acting user lacks the capability
	// required by the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRevisionsNotConfigured indicates a revision snapshot was requested
	// but no revisions collaborator is configured on the service.
	ErrRevisionsNotConfigured = errors.New("revisions not configured")

	// ErrPageNotFound indicates a page was not found
	ErrPageNotFound = errors.New("page not found")

	// ErrTitleNotFound indicates a title was not found
	ErrTitleNotFound = errors.New("title not found")

	// ErrPlaceholderNotFound indicates a placeholder was not found
	ErrPlaceholderNotFound = errors.New("placeholder not found")

	// ErrPluginNotFound indicates a plugin was not found
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrSiteNotFound indicates a site was not found
	ErrSiteNotFound = errors.New("site not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrRevisionNotFound indicates a revision was not found
	ErrRevisionNotFound = errors.New("revision not found")
)

// PageError represents an error related to page operations
type PageError struct {
	PageID uuid.UUID
	Op     string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page operation %s failed for page %s: %v", e.Op, e.PageID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// TitleError represents an error related to title operations
type TitleError struct {
	PageID   uuid.UUID
	Language string
	Op       string
	Err      error
}

func (e *TitleError) Error() string {
	return fmt.Sprintf("title operation %s failed for page %s language %s: %v", e.Op, e.PageID, e.Language, e.Err)
}

func (e *TitleError) Unwrap() error {
	return e.Err
}

// PluginError represents an error related to plugin operations
type PluginError struct {
	PlaceholderID uuid.UUID
	Op            string
	Err           error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin operation %s failed for placeholder %s: %v", e.Op, e.PlaceholderID, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

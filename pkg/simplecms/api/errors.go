package api

import (
	"errors"
	"net/http"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, simplecms.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, simplecms.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, simplecms.ErrDuplicateReverseID):
		return http.StatusConflict
	case errors.Is(err, simplecms.ErrPageNotFound),
		errors.Is(err, simplecms.ErrTitleNotFound),
		errors.Is(err, simplecms.ErrPlaceholderNotFound),
		errors.Is(err, simplecms.ErrPluginNotFound),
		errors.Is(err, simplecms.ErrSiteNotFound),
		errors.Is(err, simplecms.ErrUserNotFound),
		errors.Is(err, simplecms.ErrRevisionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}

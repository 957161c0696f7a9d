package simplecms

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
)

// PublishPage promotes one language of a draft page into its public
// counterpart under the identity of the acting user, so authorship
// metadata is attributed correctly. The user must hold publish capability
// for the page; without it the call fails with ErrPermissionDenied and
// changes nothing.
func (s *service) PublishPage(ctx context.Context, pageID, userID uuid.UUID, language string) (*Page, error) {
	page, err := s.repository.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	user, err := s.repository.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canPublish(ctx, user, page)
	if err != nil {
		return nil, fmt.Errorf("failed to check publish permission: %w", err)
	}
	if !allowed {
		return nil, &PageError{PageID: page.ID, Op: "publish", Err: ErrPermissionDenied}
	}

	if _, err := s.repository.PublishPage(ctx, page.ID, language, user.Username); err != nil {
		return nil, &PageError{PageID: page.ID, Op: "publish", Err: err}
	}

	published, err := s.repository.GetPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload page: %w", err)
	}

	if s.eventSink != nil {
		// Event failures do not fail the operation.
		_ = s.eventSink.PagePublished(ctx, published, language)
	}

	return published, nil
}

// PublishPages bulk-publishes draft pages: every draft already published
// somewhere by default, widened to all drafts with IncludeUnpublished,
// optionally restricted to one site and one language. The page set is
// materialized up front; publishing happens lazily as the sequence is
// consumed, yielding each page with a success flag that is false when any
// targeted language failed to publish. Failures never abort the run.
//
// After each page the locale activator receives the first language the
// run processed, so dependent rendering sticks to one locale context.
func (s *service) PublishPages(ctx context.Context, req PublishPagesRequest) (iter.Seq2[*Page, bool], error) {
	filter := PageFilter{
		IsDraft: boolPtr(true),
		SiteID:  req.SiteID,
	}
	if !req.IncludeUnpublished {
		filter.Published = boolPtr(true)
	}
	pages, err := s.repository.ListPages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft pages: %w", err)
	}

	return func(yield func(*Page, bool) bool) {
		var outputLanguage string
		for _, page := range pages {
			ok := true
			titles, err := s.repository.ListTitles(ctx, page.ID)
			if err != nil {
				if !yield(page, false) {
					return
				}
				continue
			}

			for _, title := range titles {
				if !req.IncludeUnpublished && !title.Published {
					continue
				}
				if req.Language != "" && title.Language != req.Language {
					continue
				}
				if outputLanguage == "" {
					outputLanguage = title.Language
				}
				published, err := s.repository.PublishPage(ctx, page.ID, title.Language, "")
				if err != nil || !published {
					ok = false
				}
			}

			if outputLanguage != "" {
				s.localeActivator.Activate(ctx, outputLanguage)
			}

			if fresh, err := s.repository.GetPage(ctx, page.ID); err == nil {
				page = fresh
			}
			if !yield(page, ok) {
				return
			}
		}
	}, nil
}

// canPublish applies the configured permission policy. With permission
// checking disabled, staff standing is enough.
func (s *service) canPublish(ctx context.Context, user *User, page *Page) (bool, error) {
	if !s.permissionsEnabled {
		return user.IsStaff || user.IsSuperuser, nil
	}
	return s.permissions.CanPublishPage(ctx, user, page)
}

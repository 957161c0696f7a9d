package simplecms

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryRevisions stores revision snapshots through the repository.
// Wire it with WithRevisions to enable snapshot requests:
//
//	revisions := simplecms.NewRepositoryRevisions(repo)
//	svc, err := simplecms.New(
//	    simplecms.WithRepository(repo),
//	    simplecms.WithRevisions(revisions),
//	)
type RepositoryRevisions struct {
	repository Repository
}

// NewRepositoryRevisions creates a revisions collaborator backed by the
// given repository.
func NewRepositoryRevisions(repo Repository) *RepositoryRevisions {
	return &RepositoryRevisions{repository: repo}
}

var _ Revisions = (*RepositoryRevisions)(nil)

// Snapshot records a revision of the page attributed to userName.
func (r *RepositoryRevisions) Snapshot(ctx context.Context, pageID uuid.UUID, userName, comment string) (*Revision, error) {
	revision := &Revision{
		ID:        uuid.New(),
		PageID:    pageID,
		UserName:  userName,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repository.CreateRevision(ctx, revision); err != nil {
		return nil, err
	}
	return revision, nil
}

// List returns the recorded revisions of a page, oldest first.
func (r *RepositoryRevisions) List(ctx context.Context, pageID uuid.UUID) ([]*Revision, error) {
	return r.repository.ListRevisions(ctx, pageID)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// DBTX is an interface that allows us to use either a connection pool or a
// transaction. Tree operations open their own transactions through Begin.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) simplecms.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) simplecms.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "reverse_id") {
				return simplecms.ErrDuplicateReverseID
			}
			if strings.Contains(pgErr.ConstraintName, "title_page_language") {
				return fmt.Errorf("page already has a title in that language")
			}
			if strings.Contains(pgErr.ConstraintName, "username") {
				return fmt.Errorf("username already taken")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("record not found")
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const pageColumns = `id, site_id, parent_id, position, is_draft, draft_id, public_id,
	created_by, changed_by, template_name, publication_date, publication_end_date,
	in_navigation, soft_root, reverse_id, navigation_extenders,
	application_urls, application_namespace, login_required,
	limit_visibility_in_menu, xframe_options, created_at, updated_at`

func scanPage(row rowScanner) (*simplecms.Page, error) {
	var page simplecms.Page
	err := row.Scan(
		&page.ID, &page.SiteID, &page.ParentID, &page.Position, &page.IsDraft,
		&page.DraftID, &page.PublicID, &page.CreatedBy, &page.ChangedBy,
		&page.TemplateName, &page.PublicationDate, &page.PublicationEndDate,
		&page.InNavigation, &page.SoftRoot, &page.ReverseID,
		&page.NavigationExtenders, &page.ApplicationURLs, &page.ApplicationNamespace,
		&page.LoginRequired, &page.LimitVisibilityInMenu, &page.XFrameOptions,
		&page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

const titleColumns = `id, page_id, language, title, menu_title, slug, path,
	has_url_overwrite, redirect, meta_description, published, created_at, updated_at`

func scanTitle(row rowScanner) (*simplecms.Title, error) {
	var title simplecms.Title
	err := row.Scan(
		&title.ID, &title.PageID, &title.Language, &title.Title, &title.MenuTitle,
		&title.Slug, &title.Path, &title.HasURLOverwrite, &title.Redirect,
		&title.MetaDescription, &title.Published, &title.CreatedAt, &title.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &title, nil
}

const pluginColumns = `id, placeholder_id, parent_id, position, language,
	plugin_type, created_at, updated_at`

func scanPlugin(row rowScanner) (*simplecms.Plugin, error) {
	var plugin simplecms.Plugin
	err := row.Scan(
		&plugin.ID, &plugin.PlaceholderID, &plugin.ParentID, &plugin.Position,
		&plugin.Language, &plugin.PluginType, &plugin.CreatedAt, &plugin.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &plugin, nil
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *simplecms.Page) error {
	// The new page joins the end of its sibling set; the computed position
	// comes back so the caller's struct stays accurate.
	query := `
		INSERT INTO page (
			id, site_id, parent_id, position, is_draft, draft_id, public_id,
			created_by, changed_by, template_name, publication_date, publication_end_date,
			in_navigation, soft_root, reverse_id, navigation_extenders,
			application_urls, application_namespace, login_required,
			limit_visibility_in_menu, xframe_options, created_at, updated_at
		) VALUES (
			$1, $2, $3,
			(SELECT COUNT(*) FROM page WHERE site_id = $2 AND is_draft = $4 AND parent_id IS NOT DISTINCT FROM $3),
			$4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		) RETURNING position`

	err := r.db.QueryRow(ctx, query,
		page.ID, page.SiteID, page.ParentID, page.IsDraft, page.DraftID, page.PublicID,
		page.CreatedBy, page.ChangedBy, page.TemplateName,
		page.PublicationDate, page.PublicationEndDate,
		page.InNavigation, page.SoftRoot, page.ReverseID, page.NavigationExtenders,
		page.ApplicationURLs, page.ApplicationNamespace, page.LoginRequired,
		page.LimitVisibilityInMenu, page.XFrameOptions,
		page.CreatedAt, page.UpdatedAt).Scan(&page.Position)

	if err != nil {
		return r.handlePostgresError("create page", err)
	}

	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*simplecms.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM page WHERE id = $1`

	page, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrPageNotFound
		}
		return nil, err
	}

	return page, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *simplecms.Page) error {
	query := `
		UPDATE page SET
			site_id = $2, parent_id = $3, position = $4, is_draft = $5,
			draft_id = $6, public_id = $7, created_by = $8, changed_by = $9,
			template_name = $10, publication_date = $11, publication_end_date = $12,
			in_navigation = $13, soft_root = $14, reverse_id = $15,
			navigation_extenders = $16, application_urls = $17,
			application_namespace = $18, login_required = $19,
			limit_visibility_in_menu = $20, xframe_options = $21, updated_at = $22
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		page.ID, page.SiteID, page.ParentID, page.Position, page.IsDraft,
		page.DraftID, page.PublicID, page.CreatedBy, page.ChangedBy,
		page.TemplateName, page.PublicationDate, page.PublicationEndDate,
		page.InNavigation, page.SoftRoot, page.ReverseID,
		page.NavigationExtenders, page.ApplicationURLs, page.ApplicationNamespace,
		page.LoginRequired, page.LimitVisibilityInMenu, page.XFrameOptions,
		page.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("update page", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrPageNotFound
	}

	return nil
}

// buildPageFilter renders the filter as WHERE fragments against a relation
// that exposes the page columns.
func buildPageFilter(filter simplecms.PageFilter, argIndex int) (string, []interface{}) {
	var clause strings.Builder
	var args []interface{}

	if filter.SiteID != nil {
		clause.WriteString(fmt.Sprintf(" AND site_id = $%d", argIndex))
		args = append(args, *filter.SiteID)
		argIndex++
	}
	if filter.ParentID != nil {
		clause.WriteString(fmt.Sprintf(" AND parent_id = $%d", argIndex))
		args = append(args, *filter.ParentID)
		argIndex++
	}
	if filter.IsDraft != nil {
		clause.WriteString(fmt.Sprintf(" AND is_draft = $%d", argIndex))
		args = append(args, *filter.IsDraft)
		argIndex++
	}
	if filter.ReverseID != nil {
		clause.WriteString(fmt.Sprintf(" AND reverse_id = $%d", argIndex))
		args = append(args, *filter.ReverseID)
		argIndex++
	}
	if filter.Language != nil {
		clause.WriteString(fmt.Sprintf(" AND EXISTS (SELECT 1 FROM title t WHERE t.page_id = id AND t.language = $%d)", argIndex))
		args = append(args, *filter.Language)
		argIndex++
	}
	if filter.Published != nil {
		if *filter.Published {
			clause.WriteString(" AND EXISTS (SELECT 1 FROM title t WHERE t.page_id = id AND t.published)")
		} else {
			clause.WriteString(" AND NOT EXISTS (SELECT 1 FROM title t WHERE t.page_id = id AND t.published)")
		}
	}

	return clause.String(), args
}

func (r *Repository) ListPages(ctx context.Context, filter simplecms.PageFilter) ([]*simplecms.Page, error) {
	// Depth-first tree order: parents always precede their descendants,
	// siblings come back by position.
	where, args := buildPageFilter(filter, 1)
	query := `
		WITH RECURSIVE tree AS (
			SELECT p.*, ARRAY[p.position] AS sort_path
			FROM page p WHERE p.parent_id IS NULL
			UNION ALL
			SELECT c.*, t.sort_path || c.position
			FROM page c JOIN tree t ON c.parent_id = t.id
		)
		SELECT ` + pageColumns + ` FROM tree WHERE 1=1` + where + `
		ORDER BY sort_path, created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list pages", err)
	}
	defer rows.Close()

	var pages []*simplecms.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan page", err)
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate page rows", err)
	}

	return pages, nil
}

func (r *Repository) CountPages(ctx context.Context, filter simplecms.PageFilter) (int64, error) {
	where, args := buildPageFilter(filter, 1)
	query := `SELECT COUNT(*) FROM page WHERE 1=1` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count pages", err)
	}

	return count, nil
}

func (r *Repository) MovePage(ctx context.Context, pageID, targetID uuid.UUID, position simplecms.TreePosition) error {
	if !position.Valid() {
		return fmt.Errorf("invalid tree position %q", position)
	}

	return r.withTx(ctx, func(tx pgx.Tx) error {
		// Lock both rows so concurrent moves in the same sibling sets
		// serialize on them.
		rows, err := tx.Query(ctx,
			`SELECT `+pageColumns+` FROM page WHERE id = ANY($1) FOR UPDATE`,
			[]uuid.UUID{pageID, targetID})
		if err != nil {
			return r.handlePostgresError("lock pages", err)
		}
		locked := make(map[uuid.UUID]*simplecms.Page, 2)
		for rows.Next() {
			page, err := scanPage(rows)
			if err != nil {
				rows.Close()
				return r.handlePostgresError("scan page", err)
			}
			locked[page.ID] = page
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return r.handlePostgresError("iterate page rows", err)
		}

		page, ok := locked[pageID]
		if !ok {
			return simplecms.ErrPageNotFound
		}
		target, ok := locked[targetID]
		if !ok {
			return simplecms.ErrPageNotFound
		}

		var cycle bool
		err = tx.QueryRow(ctx, `
			WITH RECURSIVE ancestors AS (
				SELECT id, parent_id FROM page WHERE id = $1
				UNION ALL
				SELECT p.id, p.parent_id FROM page p JOIN ancestors a ON p.id = a.parent_id
			)
			SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = $2)`,
			targetID, pageID).Scan(&cycle)
		if err != nil {
			return r.handlePostgresError("check ancestry", err)
		}
		if cycle {
			return fmt.Errorf("cannot move page %s below itself", pageID)
		}

		// Close the gap in the old sibling set.
		_, err = tx.Exec(ctx, `
			UPDATE page SET position = position - 1
			WHERE site_id = $1 AND is_draft = $2 AND parent_id IS NOT DISTINCT FROM $3
			  AND position > $4 AND id <> $5`,
			page.SiteID, page.IsDraft, page.ParentID, page.Position, page.ID)
		if err != nil {
			return r.handlePostgresError("close sibling gap", err)
		}

		var newParent *uuid.UUID
		switch position {
		case simplecms.PositionLastChild, simplecms.PositionFirstChild:
			newParent = &target.ID
		case simplecms.PositionLeft, simplecms.PositionRight:
			newParent = target.ParentID
		}

		var idx int
		switch position {
		case simplecms.PositionLastChild:
			err = tx.QueryRow(ctx, `
				SELECT COUNT(*) FROM page
				WHERE site_id = $1 AND is_draft = $2 AND parent_id IS NOT DISTINCT FROM $3 AND id <> $4`,
				target.SiteID, page.IsDraft, newParent, page.ID).Scan(&idx)
			if err != nil {
				return r.handlePostgresError("count siblings", err)
			}
		case simplecms.PositionFirstChild:
			idx = 0
		case simplecms.PositionLeft, simplecms.PositionRight:
			// Re-read: closing the gap may have shifted the target.
			var targetPos int
			if err := tx.QueryRow(ctx, `SELECT position FROM page WHERE id = $1`, targetID).Scan(&targetPos); err != nil {
				return r.handlePostgresError("read target position", err)
			}
			idx = targetPos
			if position == simplecms.PositionRight {
				idx++
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE page SET position = position + 1
			WHERE site_id = $1 AND is_draft = $2 AND parent_id IS NOT DISTINCT FROM $3
			  AND position >= $4 AND id <> $5`,
			target.SiteID, page.IsDraft, newParent, idx, page.ID)
		if err != nil {
			return r.handlePostgresError("shift siblings", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE page SET parent_id = $2, site_id = $3, position = $4, updated_at = now()
			WHERE id = $1`,
			page.ID, newParent, target.SiteID, idx)
		if err != nil {
			return r.handlePostgresError("move page", err)
		}

		return nil
	})
}

func (r *Repository) ListAncestors(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Page, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM page WHERE id = $1)`, pageID).Scan(&exists); err != nil {
		return nil, r.handlePostgresError("check page", err)
	}
	if !exists {
		return nil, simplecms.ErrPageNotFound
	}

	query := `
		WITH RECURSIVE ancestors AS (
			SELECT p.*, 1 AS depth FROM page p
			WHERE p.id = (SELECT parent_id FROM page WHERE id = $1)
			UNION ALL
			SELECT p.*, a.depth + 1 FROM page p JOIN ancestors a ON p.id = a.parent_id
		)
		SELECT ` + pageColumns + ` FROM ancestors ORDER BY depth`

	rows, err := r.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, r.handlePostgresError("list ancestors", err)
	}
	defer rows.Close()

	var pages []*simplecms.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan page", err)
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate page rows", err)
	}

	return pages, nil
}

// Title operations

func (r *Repository) CreateTitle(ctx context.Context, title *simplecms.Title) error {
	query := `
		INSERT INTO title (
			id, page_id, language, title, menu_title, slug, path,
			has_url_overwrite, redirect, meta_description, published,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		title.ID, title.PageID, title.Language, title.Title, title.MenuTitle,
		title.Slug, title.Path, title.HasURLOverwrite, title.Redirect,
		title.MetaDescription, title.Published, title.CreatedAt, title.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create title", err)
	}

	return nil
}

func (r *Repository) GetTitle(ctx context.Context, pageID uuid.UUID, language string) (*simplecms.Title, error) {
	query := `SELECT ` + titleColumns + ` FROM title WHERE page_id = $1 AND language = $2`

	title, err := scanTitle(r.db.QueryRow(ctx, query, pageID, language))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrTitleNotFound
		}
		return nil, err
	}

	return title, nil
}

func (r *Repository) UpdateTitle(ctx context.Context, title *simplecms.Title) error {
	query := `
		UPDATE title SET
			page_id = $2, language = $3, title = $4, menu_title = $5, slug = $6,
			path = $7, has_url_overwrite = $8, redirect = $9, meta_description = $10,
			published = $11, updated_at = $12
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		title.ID, title.PageID, title.Language, title.Title, title.MenuTitle,
		title.Slug, title.Path, title.HasURLOverwrite, title.Redirect,
		title.MetaDescription, title.Published, title.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("update title", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrTitleNotFound
	}

	return nil
}

func (r *Repository) ListTitles(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Title, error) {
	query := `SELECT ` + titleColumns + ` FROM title WHERE page_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, r.handlePostgresError("list titles", err)
	}
	defer rows.Close()

	titles := []*simplecms.Title{}
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan title", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate title rows", err)
	}

	return titles, nil
}

func (r *Repository) ListSiblingSlugs(ctx context.Context, parentID *uuid.UUID, language string) ([]string, error) {
	query := `
		SELECT t.slug FROM title t
		JOIN page p ON p.id = t.page_id
		WHERE p.is_draft AND p.parent_id IS NOT DISTINCT FROM $1 AND t.language = $2
		ORDER BY t.slug`

	rows, err := r.db.Query(ctx, query, parentID, language)
	if err != nil {
		return nil, r.handlePostgresError("list sibling slugs", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, r.handlePostgresError("scan slug", err)
		}
		slugs = append(slugs, slug)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate slug rows", err)
	}

	return slugs, nil
}

// Placeholder operations

func (r *Repository) CreatePlaceholder(ctx context.Context, placeholder *simplecms.Placeholder) error {
	query := `INSERT INTO placeholder (id, page_id, slot, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		placeholder.ID, placeholder.PageID, placeholder.Slot, placeholder.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create placeholder", err)
	}

	return nil
}

func (r *Repository) GetPlaceholder(ctx context.Context, id uuid.UUID) (*simplecms.Placeholder, error) {
	query := `SELECT id, page_id, slot, created_at FROM placeholder WHERE id = $1`

	var placeholder simplecms.Placeholder
	err := r.db.QueryRow(ctx, query, id).Scan(
		&placeholder.ID, &placeholder.PageID, &placeholder.Slot, &placeholder.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrPlaceholderNotFound
		}
		return nil, err
	}

	return &placeholder, nil
}

func (r *Repository) ListPlaceholders(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Placeholder, error) {
	query := `SELECT id, page_id, slot, created_at FROM placeholder WHERE page_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, r.handlePostgresError("list placeholders", err)
	}
	defer rows.Close()

	placeholders := []*simplecms.Placeholder{}
	for rows.Next() {
		var placeholder simplecms.Placeholder
		if err := rows.Scan(&placeholder.ID, &placeholder.PageID, &placeholder.Slot, &placeholder.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan placeholder", err)
		}
		placeholders = append(placeholders, &placeholder)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate placeholder rows", err)
	}

	return placeholders, nil
}

// Plugin operations

func (r *Repository) CreatePlugin(ctx context.Context, plugin *simplecms.Plugin) error {
	query := `
		INSERT INTO plugin (
			id, placeholder_id, parent_id, position, language, plugin_type,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		plugin.ID, plugin.PlaceholderID, plugin.ParentID, plugin.Position,
		plugin.Language, plugin.PluginType, plugin.CreatedAt, plugin.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create plugin", err)
	}

	return nil
}

func (r *Repository) GetPlugin(ctx context.Context, id uuid.UUID) (*simplecms.Plugin, error) {
	query := `SELECT ` + pluginColumns + ` FROM plugin WHERE id = $1`

	plugin, err := scanPlugin(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrPluginNotFound
		}
		return nil, err
	}

	return plugin, nil
}

func (r *Repository) InsertPluginAt(ctx context.Context, plugin *simplecms.Plugin) error {
	// Shift and insert in one transaction so concurrent inserts cannot
	// interleave and leave duplicate positions behind.
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE plugin SET position = position + 1
			WHERE placeholder_id = $1 AND language = $2
			  AND parent_id IS NOT DISTINCT FROM $3 AND position >= $4`,
			plugin.PlaceholderID, plugin.Language, plugin.ParentID, plugin.Position)
		if err != nil {
			return r.handlePostgresError("shift plugins", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO plugin (
				id, placeholder_id, parent_id, position, language, plugin_type,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			plugin.ID, plugin.PlaceholderID, plugin.ParentID, plugin.Position,
			plugin.Language, plugin.PluginType, plugin.CreatedAt, plugin.UpdatedAt)
		if err != nil {
			return r.handlePostgresError("insert plugin", err)
		}

		return nil
	})
}

func (r *Repository) ListPlugins(ctx context.Context, filter simplecms.PluginFilter) ([]*simplecms.Plugin, error) {
	var query string
	args := []interface{}{filter.PlaceholderID, filter.Language}

	switch {
	case filter.ParentID != nil:
		query = `
			SELECT ` + pluginColumns + ` FROM plugin
			WHERE placeholder_id = $1 AND ($2 = '' OR language = $2) AND parent_id = $3
			ORDER BY position, created_at`
		args = append(args, *filter.ParentID)
	case filter.RootsOnly:
		query = `
			SELECT ` + pluginColumns + ` FROM plugin
			WHERE placeholder_id = $1 AND ($2 = '' OR language = $2) AND parent_id IS NULL
			ORDER BY position, created_at`
	default:
		// Whole tree in depth-first order.
		query = `
			WITH RECURSIVE tree AS (
				SELECT p.*, ARRAY[p.position] AS sort_path
				FROM plugin p
				WHERE p.placeholder_id = $1 AND ($2 = '' OR p.language = $2) AND p.parent_id IS NULL
				UNION ALL
				SELECT c.*, t.sort_path || c.position
				FROM plugin c JOIN tree t ON c.parent_id = t.id
			)
			SELECT ` + pluginColumns + ` FROM tree ORDER BY sort_path, created_at`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list plugins", err)
	}
	defer rows.Close()

	plugins := []*simplecms.Plugin{}
	for rows.Next() {
		plugin, err := scanPlugin(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan plugin", err)
		}
		plugins = append(plugins, plugin)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate plugin rows", err)
	}

	return plugins, nil
}

func (r *Repository) CountPlugins(ctx context.Context, filter simplecms.PluginFilter) (int, error) {
	query := `SELECT COUNT(*) FROM plugin WHERE placeholder_id = $1 AND ($2 = '' OR language = $2)`
	args := []interface{}{filter.PlaceholderID, filter.Language}

	switch {
	case filter.ParentID != nil:
		query += ` AND parent_id = $3`
		args = append(args, *filter.ParentID)
	case filter.RootsOnly:
		query += ` AND parent_id IS NULL`
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count plugins", err)
	}

	return count, nil
}

func (r *Repository) SetPluginData(ctx context.Context, pluginID uuid.UUID, data map[string]interface{}) error {
	query := `
		INSERT INTO plugin_data (plugin_id, data) VALUES ($1, $2)
		ON CONFLICT (plugin_id) DO UPDATE SET data = EXCLUDED.data`

	if _, err := r.db.Exec(ctx, query, pluginID, data); err != nil {
		return r.handlePostgresError("set plugin data", err)
	}

	return nil
}

func (r *Repository) GetPluginData(ctx context.Context, pluginID uuid.UUID) (map[string]interface{}, error) {
	query := `
		SELECT COALESCE(pd.data, '{}'::jsonb)
		FROM plugin p LEFT JOIN plugin_data pd ON pd.plugin_id = p.id
		WHERE p.id = $1`

	var data map[string]interface{}
	err := r.db.QueryRow(ctx, query, pluginID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrPluginNotFound
		}
		return nil, err
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

// Site operations

func (r *Repository) CreateSite(ctx context.Context, site *simplecms.Site) error {
	query := `INSERT INTO site (id, name, domain, languages, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		site.ID, site.Name, site.Domain, site.Languages, site.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create site", err)
	}

	return nil
}

func (r *Repository) GetSite(ctx context.Context, id uuid.UUID) (*simplecms.Site, error) {
	query := `SELECT id, name, domain, languages, created_at FROM site WHERE id = $1`

	var site simplecms.Site
	err := r.db.QueryRow(ctx, query, id).Scan(
		&site.ID, &site.Name, &site.Domain, &site.Languages, &site.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrSiteNotFound
		}
		return nil, err
	}

	return &site, nil
}

func (r *Repository) ListSites(ctx context.Context) ([]*simplecms.Site, error) {
	query := `SELECT id, name, domain, languages, created_at FROM site ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list sites", err)
	}
	defer rows.Close()

	sites := []*simplecms.Site{}
	for rows.Next() {
		var site simplecms.Site
		if err := rows.Scan(&site.ID, &site.Name, &site.Domain, &site.Languages, &site.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan site", err)
		}
		sites = append(sites, &site)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate site rows", err)
	}

	return sites, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *simplecms.User) error {
	query := `
		INSERT INTO cms_user (id, username, email, is_staff, is_active, is_superuser, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.IsStaff, user.IsActive,
		user.IsSuperuser, user.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create user", err)
	}

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*simplecms.User, error) {
	query := `SELECT id, username, email, is_staff, is_active, is_superuser, created_at FROM cms_user WHERE id = $1`

	var user simplecms.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.IsStaff, &user.IsActive,
		&user.IsSuperuser, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *simplecms.User) error {
	query := `
		UPDATE cms_user SET
			username = $2, email = $3, is_staff = $4, is_active = $5, is_superuser = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.IsStaff, user.IsActive, user.IsSuperuser)

	if err != nil {
		return r.handlePostgresError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrUserNotFound
	}

	return nil
}

func (r *Repository) CreatePageUser(ctx context.Context, pageUser *simplecms.PageUser) error {
	query := `
		INSERT INTO page_user (id, user_id, created_by, permissions, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			created_by = EXCLUDED.created_by,
			permissions = EXCLUDED.permissions`

	_, err := r.db.Exec(ctx, query,
		pageUser.ID, pageUser.UserID, pageUser.CreatedBy, pageUser.Permissions,
		pageUser.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create page user", err)
	}

	return nil
}

func (r *Repository) GetPageUser(ctx context.Context, userID uuid.UUID) (*simplecms.PageUser, error) {
	query := `SELECT id, user_id, created_by, permissions, created_at FROM page_user WHERE user_id = $1`

	var pageUser simplecms.PageUser
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&pageUser.ID, &pageUser.UserID, &pageUser.CreatedBy, &pageUser.Permissions,
		&pageUser.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrUserNotFound
		}
		return nil, err
	}

	return &pageUser, nil
}

// Permission operations

func (r *Repository) CreatePagePermission(ctx context.Context, permission *simplecms.PagePermission) error {
	query := `
		INSERT INTO page_permission (id, page_id, user_id, grant_on, flags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		permission.ID, permission.PageID, permission.UserID, permission.GrantOn,
		permission.Flags, permission.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create page permission", err)
	}

	return nil
}

func (r *Repository) CreateGlobalPagePermission(ctx context.Context, permission *simplecms.GlobalPagePermission) error {
	query := `
		INSERT INTO global_page_permission (id, user_id, site_ids, flags, can_recover_page, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		permission.ID, permission.UserID, permission.SiteIDs, permission.Flags,
		permission.CanRecoverPage, permission.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create global page permission", err)
	}

	return nil
}

func (r *Repository) ListPagePermissions(ctx context.Context, userID uuid.UUID) ([]*simplecms.PagePermission, error) {
	query := `
		SELECT id, page_id, user_id, grant_on, flags, created_at
		FROM page_permission WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, r.handlePostgresError("list page permissions", err)
	}
	defer rows.Close()

	permissions := []*simplecms.PagePermission{}
	for rows.Next() {
		var permission simplecms.PagePermission
		if err := rows.Scan(
			&permission.ID, &permission.PageID, &permission.UserID,
			&permission.GrantOn, &permission.Flags, &permission.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan page permission", err)
		}
		permissions = append(permissions, &permission)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate page permission rows", err)
	}

	return permissions, nil
}

func (r *Repository) ListGlobalPagePermissions(ctx context.Context, userID uuid.UUID) ([]*simplecms.GlobalPagePermission, error) {
	query := `
		SELECT id, user_id, site_ids, flags, can_recover_page, created_at
		FROM global_page_permission WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, r.handlePostgresError("list global page permissions", err)
	}
	defer rows.Close()

	permissions := []*simplecms.GlobalPagePermission{}
	for rows.Next() {
		var permission simplecms.GlobalPagePermission
		if err := rows.Scan(
			&permission.ID, &permission.UserID, &permission.SiteIDs,
			&permission.Flags, &permission.CanRecoverPage, &permission.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan global page permission", err)
		}
		permissions = append(permissions, &permission)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate global page permission rows", err)
	}

	return permissions, nil
}

// Publishing

func (r *Repository) PublishPage(ctx context.Context, pageID uuid.UUID, language, changedBy string) (bool, error) {
	var published bool

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		draft, err := scanPage(tx.QueryRow(ctx,
			`SELECT `+pageColumns+` FROM page WHERE id = $1 FOR UPDATE`, pageID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return simplecms.ErrPageNotFound
			}
			return r.handlePostgresError("load draft", err)
		}
		if !draft.IsDraft {
			return fmt.Errorf("page %s is not a draft", pageID)
		}

		draftTitle, err := scanTitle(tx.QueryRow(ctx,
			`SELECT `+titleColumns+` FROM title WHERE page_id = $1 AND language = $2`,
			pageID, language))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return r.handlePostgresError("load draft title", err)
		}

		// A page cannot go public below an unpublished ancestor.
		var blocked bool
		err = tx.QueryRow(ctx, `
			WITH RECURSIVE ancestors AS (
				SELECT p.id, p.parent_id, p.public_id FROM page p
				WHERE p.id = (SELECT parent_id FROM page WHERE id = $1)
				UNION ALL
				SELECT p.id, p.parent_id, p.public_id FROM page p JOIN ancestors a ON p.id = a.parent_id
			)
			SELECT EXISTS (SELECT 1 FROM ancestors WHERE public_id IS NULL)`,
			pageID).Scan(&blocked)
		if err != nil {
			return r.handlePostgresError("check ancestors", err)
		}
		if blocked {
			return nil
		}

		now := time.Now().UTC()

		err = tx.QueryRow(ctx, `
			UPDATE page SET
				publication_date = COALESCE(publication_date, $2),
				changed_by = CASE WHEN $3 <> '' THEN $3 ELSE changed_by END,
				updated_at = $2
			WHERE id = $1
			RETURNING publication_date, changed_by`,
			pageID, now, changedBy).Scan(&draft.PublicationDate, &draft.ChangedBy)
		if err != nil {
			return r.handlePostgresError("stamp draft", err)
		}

		var publicParentID *uuid.UUID
		if draft.ParentID != nil {
			if err := tx.QueryRow(ctx,
				`SELECT public_id FROM page WHERE id = $1`, *draft.ParentID).Scan(&publicParentID); err != nil {
				return r.handlePostgresError("resolve public parent", err)
			}
		}

		publicID := uuid.New()
		if draft.PublicID != nil {
			publicID = *draft.PublicID
			_, err = tx.Exec(ctx, `
				UPDATE page SET
					site_id = $2, parent_id = $3, position = $4, changed_by = $5,
					template_name = $6, publication_date = $7, publication_end_date = $8,
					in_navigation = $9, soft_root = $10, reverse_id = $11,
					navigation_extenders = $12, application_urls = $13,
					application_namespace = $14, login_required = $15,
					limit_visibility_in_menu = $16, xframe_options = $17, updated_at = $18
				WHERE id = $1`,
				publicID, draft.SiteID, publicParentID, draft.Position, draft.ChangedBy,
				draft.TemplateName, draft.PublicationDate, draft.PublicationEndDate,
				draft.InNavigation, draft.SoftRoot, draft.ReverseID,
				draft.NavigationExtenders, draft.ApplicationURLs, draft.ApplicationNamespace,
				draft.LoginRequired, draft.LimitVisibilityInMenu, draft.XFrameOptions, now)
			if err != nil {
				return r.handlePostgresError("update public page", err)
			}
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO page (
					id, site_id, parent_id, position, is_draft, draft_id, public_id,
					created_by, changed_by, template_name, publication_date, publication_end_date,
					in_navigation, soft_root, reverse_id, navigation_extenders,
					application_urls, application_namespace, login_required,
					limit_visibility_in_menu, xframe_options, created_at, updated_at
				) VALUES ($1, $2, $3, $4, FALSE, $5, NULL, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
				publicID, draft.SiteID, publicParentID, draft.Position, draft.ID,
				draft.CreatedBy, draft.ChangedBy, draft.TemplateName,
				draft.PublicationDate, draft.PublicationEndDate,
				draft.InNavigation, draft.SoftRoot, draft.ReverseID,
				draft.NavigationExtenders, draft.ApplicationURLs, draft.ApplicationNamespace,
				draft.LoginRequired, draft.LimitVisibilityInMenu, draft.XFrameOptions,
				draft.CreatedAt, now)
			if err != nil {
				return r.handlePostgresError("insert public page", err)
			}

			if _, err := tx.Exec(ctx,
				`UPDATE page SET public_id = $2 WHERE id = $1`, draft.ID, publicID); err != nil {
				return r.handlePostgresError("link public page", err)
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE title SET published = TRUE, updated_at = $3
			WHERE page_id = $1 AND language = $2`,
			pageID, language, now); err != nil {
			return r.handlePostgresError("mark draft title published", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO title (
				id, page_id, language, title, menu_title, slug, path,
				has_url_overwrite, redirect, meta_description, published,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11, $11)
			ON CONFLICT (page_id, language) DO UPDATE SET
				title = EXCLUDED.title,
				menu_title = EXCLUDED.menu_title,
				slug = EXCLUDED.slug,
				path = EXCLUDED.path,
				has_url_overwrite = EXCLUDED.has_url_overwrite,
				redirect = EXCLUDED.redirect,
				meta_description = EXCLUDED.meta_description,
				published = TRUE,
				updated_at = EXCLUDED.updated_at`,
			uuid.New(), publicID, language, draftTitle.Title, draftTitle.MenuTitle,
			draftTitle.Slug, draftTitle.Path, draftTitle.HasURLOverwrite,
			draftTitle.Redirect, draftTitle.MetaDescription, now)
		if err != nil {
			return r.handlePostgresError("upsert public title", err)
		}

		if err := r.copyLanguageContent(ctx, tx, draft.ID, publicID, language, now); err != nil {
			return err
		}

		published = true
		return nil
	})

	return published, err
}

// copyLanguageContent replaces the public page's plugin content in one
// language with a copy of the draft's, placeholder by placeholder.
func (r *Repository) copyLanguageContent(ctx context.Context, tx pgx.Tx, draftPageID, publicPageID uuid.UUID, language string, now time.Time) error {
	rows, err := tx.Query(ctx,
		`SELECT id, slot FROM placeholder WHERE page_id = $1 ORDER BY created_at, id`, draftPageID)
	if err != nil {
		return r.handlePostgresError("list draft placeholders", err)
	}
	type slotRef struct {
		id   uuid.UUID
		slot string
	}
	var draftPlaceholders []slotRef
	for rows.Next() {
		var ref slotRef
		if err := rows.Scan(&ref.id, &ref.slot); err != nil {
			rows.Close()
			return r.handlePostgresError("scan placeholder", err)
		}
		draftPlaceholders = append(draftPlaceholders, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return r.handlePostgresError("iterate placeholder rows", err)
	}

	for _, draftPlaceholder := range draftPlaceholders {
		var publicPlaceholderID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT id FROM placeholder WHERE page_id = $1 AND slot = $2 ORDER BY created_at LIMIT 1`,
			publicPageID, draftPlaceholder.slot).Scan(&publicPlaceholderID)
		if errors.Is(err, pgx.ErrNoRows) {
			publicPlaceholderID = uuid.New()
			if _, err := tx.Exec(ctx,
				`INSERT INTO placeholder (id, page_id, slot, created_at) VALUES ($1, $2, $3, $4)`,
				publicPlaceholderID, publicPageID, draftPlaceholder.slot, now); err != nil {
				return r.handlePostgresError("insert public placeholder", err)
			}
		} else if err != nil {
			return r.handlePostgresError("find public placeholder", err)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM plugin WHERE placeholder_id = $1 AND language = $2`,
			publicPlaceholderID, language); err != nil {
			return r.handlePostgresError("clear public plugins", err)
		}

		sourceRows, err := tx.Query(ctx, `
			WITH RECURSIVE tree AS (
				SELECT p.*, ARRAY[p.position] AS sort_path
				FROM plugin p
				WHERE p.placeholder_id = $1 AND p.language = $2 AND p.parent_id IS NULL
				UNION ALL
				SELECT c.*, t.sort_path || c.position
				FROM plugin c JOIN tree t ON c.parent_id = t.id
			)
			SELECT `+pluginColumns+` FROM tree ORDER BY sort_path, created_at`,
			draftPlaceholder.id, language)
		if err != nil {
			return r.handlePostgresError("list draft plugins", err)
		}
		var source []*simplecms.Plugin
		for sourceRows.Next() {
			plugin, err := scanPlugin(sourceRows)
			if err != nil {
				sourceRows.Close()
				return r.handlePostgresError("scan plugin", err)
			}
			source = append(source, plugin)
		}
		sourceRows.Close()
		if err := sourceRows.Err(); err != nil {
			return r.handlePostgresError("iterate plugin rows", err)
		}

		idMap := make(map[uuid.UUID]uuid.UUID, len(source))
		for _, plugin := range source {
			newID := uuid.New()
			idMap[plugin.ID] = newID

			var parentID *uuid.UUID
			if plugin.ParentID != nil {
				mapped := idMap[*plugin.ParentID]
				parentID = &mapped
			}

			if _, err := tx.Exec(ctx, `
				INSERT INTO plugin (
					id, placeholder_id, parent_id, position, language, plugin_type,
					created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
				newID, publicPlaceholderID, parentID, plugin.Position,
				plugin.Language, plugin.PluginType, now); err != nil {
				return r.handlePostgresError("copy plugin", err)
			}

			if _, err := tx.Exec(ctx, `
				INSERT INTO plugin_data (plugin_id, data)
				SELECT $1, data FROM plugin_data WHERE plugin_id = $2`,
				newID, plugin.ID); err != nil {
				return r.handlePostgresError("copy plugin data", err)
			}
		}
	}

	return nil
}

// Revision operations

func (r *Repository) CreateRevision(ctx context.Context, revision *simplecms.Revision) error {
	query := `
		INSERT INTO revision (id, page_id, user_name, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		revision.ID, revision.PageID, revision.UserName, revision.Comment,
		revision.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create revision", err)
	}

	return nil
}

func (r *Repository) ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Revision, error) {
	query := `
		SELECT id, page_id, user_name, comment, created_at
		FROM revision WHERE page_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, r.handlePostgresError("list revisions", err)
	}
	defer rows.Close()

	revisions := []*simplecms.Revision{}
	for rows.Next() {
		var revision simplecms.Revision
		if err := rows.Scan(
			&revision.ID, &revision.PageID, &revision.UserName,
			&revision.Comment, &revision.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan revision", err)
		}
		revisions = append(revisions, &revision)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate revision rows", err)
	}

	return revisions, nil
}

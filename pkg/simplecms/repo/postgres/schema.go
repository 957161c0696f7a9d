package postgres

import (
	"context"
	"fmt"
)

// Schema holds the DDL for the cms schema. Statements are idempotent so
// EnsureSchema can run at startup against an existing database.
var Schema = []string{
	`CREATE SCHEMA IF NOT EXISTS cms`,
	`CREATE TABLE IF NOT EXISTS cms.page (
		id UUID PRIMARY KEY,
		site_id UUID NOT NULL,
		parent_id UUID REFERENCES cms.page(id),
		position INTEGER NOT NULL DEFAULT 0,
		is_draft BOOLEAN NOT NULL,
		draft_id UUID,
		public_id UUID,
		created_by VARCHAR(255) NOT NULL DEFAULT '',
		changed_by VARCHAR(255) NOT NULL DEFAULT '',
		template_name VARCHAR(100) NOT NULL DEFAULT '',
		publication_date TIMESTAMPTZ,
		publication_end_date TIMESTAMPTZ,
		in_navigation BOOLEAN NOT NULL DEFAULT FALSE,
		soft_root BOOLEAN NOT NULL DEFAULT FALSE,
		reverse_id VARCHAR(40) NOT NULL DEFAULT '',
		navigation_extenders VARCHAR(80) NOT NULL DEFAULT '',
		application_urls VARCHAR(200) NOT NULL DEFAULT '',
		application_namespace VARCHAR(200) NOT NULL DEFAULT '',
		login_required BOOLEAN NOT NULL DEFAULT FALSE,
		limit_visibility_in_menu VARCHAR(20) NOT NULL DEFAULT 'all',
		xframe_options VARCHAR(20) NOT NULL DEFAULT 'inherit',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Reverse ids must be unique among the draft pages of one site.
	`CREATE UNIQUE INDEX IF NOT EXISTS page_reverse_id_site_draft_idx
		ON cms.page (site_id, reverse_id)
		WHERE is_draft AND reverse_id <> ''`,
	`CREATE INDEX IF NOT EXISTS page_parent_idx ON cms.page (parent_id)`,
	`CREATE TABLE IF NOT EXISTS cms.title (
		id UUID PRIMARY KEY,
		page_id UUID NOT NULL REFERENCES cms.page(id),
		language VARCHAR(15) NOT NULL,
		title VARCHAR(255) NOT NULL,
		menu_title VARCHAR(255) NOT NULL DEFAULT '',
		slug VARCHAR(255) NOT NULL,
		path VARCHAR(255) NOT NULL DEFAULT '',
		has_url_overwrite BOOLEAN NOT NULL DEFAULT FALSE,
		redirect VARCHAR(255) NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT title_page_language_key UNIQUE (page_id, language)
	)`,
	`CREATE TABLE IF NOT EXISTS cms.placeholder (
		id UUID PRIMARY KEY,
		page_id UUID NOT NULL REFERENCES cms.page(id),
		slot VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cms.plugin (
		id UUID PRIMARY KEY,
		placeholder_id UUID NOT NULL REFERENCES cms.placeholder(id),
		parent_id UUID REFERENCES cms.plugin(id),
		position INTEGER NOT NULL DEFAULT 0,
		language VARCHAR(15) NOT NULL,
		plugin_type VARCHAR(150) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS plugin_placeholder_language_idx
		ON cms.plugin (placeholder_id, language)`,
	`CREATE TABLE IF NOT EXISTS cms.plugin_data (
		plugin_id UUID PRIMARY KEY REFERENCES cms.plugin(id) ON DELETE CASCADE,
		data JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,
	`CREATE TABLE IF NOT EXISTS cms.site (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		domain VARCHAR(255) NOT NULL DEFAULT '',
		languages TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cms.cms_user (
		id UUID PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL DEFAULT '',
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cms.page_user (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES cms.cms_user(id),
		created_by VARCHAR(255) NOT NULL DEFAULT '',
		permissions JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cms.page_permission (
		id UUID PRIMARY KEY,
		page_id UUID NOT NULL REFERENCES cms.page(id),
		user_id UUID NOT NULL REFERENCES cms.cms_user(id),
		grant_on VARCHAR(30) NOT NULL,
		flags JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cms.global_page_permission (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES cms.cms_user(id),
		site_ids UUID[] NOT NULL DEFAULT '{}',
		flags JSONB NOT NULL DEFAULT '{}'::jsonb,
		can_recover_page BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cms.revision (
		id UUID PRIMARY KEY,
		page_id UUID NOT NULL REFERENCES cms.page(id),
		user_name VARCHAR(255) NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the cms schema and all tables if they do not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for _, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

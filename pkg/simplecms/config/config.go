package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/apphooks"
	"github.com/tendant/simple-cms/pkg/simplecms/menus"
	"github.com/tendant/simple-cms/pkg/simplecms/plugins"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	"github.com/tendant/simple-cms/pkg/simplecms/templates"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		DBSchema:           "cms",
		PermissionsEnabled: true,
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the simple-cms service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: cms)

	// ApplySchema creates missing cms tables on startup.
	ApplySchema bool

	// CurrentSiteID is the site used when a request does not name one.
	CurrentSiteID string

	// Server options
	PermissionsEnabled bool
	EnableEventLogging bool
	EnableRevisions    bool
	EnableAdminAPI     bool

	// Registries applied to the service at build time
	Templates     []TemplateConfig
	Apphooks      []apphooks.Apphook
	PluginTypes   []plugins.Descriptor
	MenuExtenders []menus.Extender
}

// TemplateConfig declares one page template together with the placeholder
// slots it seeds on newly created pages.
type TemplateConfig struct {
	Name  string
	Body  string
	Slots []string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.DatabaseType,
			validation.Required,
			validation.In("memory", "postgres").Error("must be 'memory' or 'postgres'")),
		validation.Field(&c.DatabaseURL,
			validation.Required.When(c.DatabaseType == "postgres").Error("is required when using postgres")),
	)
	if err != nil {
		return err
	}

	if c.CurrentSiteID != "" {
		if _, err := uuid.Parse(c.CurrentSiteID); err != nil {
			return fmt.Errorf("invalid site id %q: %w", c.CurrentSiteID, err)
		}
	}

	for _, t := range c.Templates {
		if t.Name == "" {
			return errors.New("template name is required")
		}
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (simplecms.Service, error) {
	repo, err := c.BuildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	return c.BuildServiceWithRepository(repo)
}

// BuildServiceWithRepository creates a Service on an existing repository.
// Callers that run sibling services (for example the admin read API) build
// the repository once and hand the same instance to each of them.
func (c *ServerConfig) BuildServiceWithRepository(repo simplecms.Repository) (simplecms.Service, error) {
	options := []simplecms.Option{
		simplecms.WithRepository(repo),
		simplecms.WithPermissionsEnabled(c.PermissionsEnabled),
	}

	resolver := templates.NewResolver()
	for _, t := range c.Templates {
		if err := resolver.Register(t.Name, t.Body, t.Slots...); err != nil {
			return nil, fmt.Errorf("failed to register template %s: %w", t.Name, err)
		}
	}
	options = append(options, simplecms.WithTemplates(resolver))

	if len(c.Apphooks) > 0 {
		pool := apphooks.NewPool()
		for _, app := range c.Apphooks {
			if err := pool.Register(app); err != nil {
				return nil, fmt.Errorf("failed to register apphook %s: %w", app.Name, err)
			}
		}
		options = append(options, simplecms.WithApphooks(pool))
	}

	if len(c.PluginTypes) > 0 {
		pool := plugins.NewPool()
		for _, d := range c.PluginTypes {
			if err := pool.Register(d); err != nil {
				return nil, fmt.Errorf("failed to register plugin type %s: %w", d.Name, err)
			}
		}
		options = append(options, simplecms.WithPluginTypes(pool))
	}

	if len(c.MenuExtenders) > 0 {
		pool := menus.NewPool()
		for _, e := range c.MenuExtenders {
			if err := pool.Register(e); err != nil {
				return nil, fmt.Errorf("failed to register menu extender %s: %w", e.Name, err)
			}
		}
		options = append(options, simplecms.WithMenus(pool))
	}

	if c.CurrentSiteID != "" {
		siteID, err := uuid.Parse(c.CurrentSiteID)
		if err != nil {
			return nil, fmt.Errorf("invalid site id %q: %w", c.CurrentSiteID, err)
		}
		options = append(options, simplecms.WithCurrentSite(siteID))
	}

	if c.EnableEventLogging {
		options = append(options, simplecms.WithEventSink(simplecms.NewLoggingEventSink(slog.Default())))
	}

	if c.EnableRevisions {
		options = append(options, simplecms.WithRevisions(simplecms.NewRepositoryRevisions(repo)))
	}

	return simplecms.New(options...)
}

// BuildRepository creates a Repository based on the configuration
func (c *ServerConfig) BuildRepository() (simplecms.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		// Optionally set search_path for the connection
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			// set search_path for this session
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if c.ApplySchema {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := repopg.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

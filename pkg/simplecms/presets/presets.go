package presets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
	"github.com/tendant/simple-cms/pkg/simplecms/menus"
	"github.com/tendant/simple-cms/pkg/simplecms/plugins"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	"github.com/tendant/simple-cms/pkg/simplecms/templates"
)

// Configuration Presets
//
// This package provides easy-to-use service assemblies for common use cases.
// Presets eliminate boilerplate and provide sensible defaults while remaining customizable.

// NewDevelopment creates a service configured for local development.
//
// Features:
//   - In-memory repository (instant startup, no setup required)
//   - Starter registries (page/landing templates, text/link plugin types,
//     a "navigation" menu extender)
//   - A seeded site bound as the current site, so requests may omit SiteID
//   - Event logging via slog (helpful for debugging)
//   - Revision snapshots enabled
//
// Returns:
//   - Service instance
//   - The seeded site (use its ID and languages in requests)
//   - Error if setup fails
//
// Example:
//
//	svc, site, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	page, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
//	    Title:    "Home",
//	    Template: "page.html",
//	    Language: site.Languages[0],
//	})
func NewDevelopment(opts ...DevelopmentOption) (simplecms.Service, *simplecms.Site, error) {
	// Default configuration
	cfg := &devConfig{
		domain:    "localhost",
		languages: []string{"en"},
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Create repository (in-memory for development)
	repo := memoryrepo.New()

	site := &simplecms.Site{
		ID:        uuid.New(),
		Name:      cfg.domain,
		Domain:    cfg.domain,
		Languages: cfg.languages,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateSite(context.Background(), site); err != nil {
		return nil, nil, fmt.Errorf("failed to seed development site: %w", err)
	}

	resolver, pluginPool, menuPool, err := starterRegistries()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build starter registries: %w", err)
	}

	// Build service options
	options := []simplecms.Option{
		simplecms.WithRepository(repo),
		simplecms.WithTemplates(resolver),
		simplecms.WithPluginTypes(pluginPool),
		simplecms.WithMenus(menuPool),
		simplecms.WithCurrentSite(site.ID),
		simplecms.WithEventSink(simplecms.NewLoggingEventSink(slog.Default())),
		simplecms.WithRevisions(simplecms.NewRepositoryRevisions(repo)),
	}

	// Create service
	svc, err := simplecms.New(options...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	return svc, site, nil
}

// NewTesting creates a service configured for unit and integration tests.
//
// Features:
//   - In-memory repository (isolated per test)
//   - Starter registries (same set as NewDevelopment)
//   - No event logging (cleaner test output)
//   - Supports parallel test execution
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t, presets.WithTestSite("test.example.com", "en"))
//
//	    // Use service in test...
//	}
func NewTesting(t *testing.T, opts ...TestingOption) simplecms.Service {
	// Default configuration
	cfg := &testConfig{
		permissions: true,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Create repository (in-memory for testing)
	repo := memoryrepo.New()

	resolver, pluginPool, menuPool, err := starterRegistries()
	if err != nil {
		t.Fatalf("failed to build starter registries: %v", err)
	}

	// Build service options
	options := []simplecms.Option{
		simplecms.WithRepository(repo),
		simplecms.WithTemplates(resolver),
		simplecms.WithPluginTypes(pluginPool),
		simplecms.WithMenus(menuPool),
		simplecms.WithPermissionsEnabled(cfg.permissions),
	}

	if cfg.siteDomain != "" {
		languages := cfg.siteLanguages
		if len(languages) == 0 {
			languages = []string{"en"}
		}
		site := &simplecms.Site{
			ID:        uuid.New(),
			Name:      cfg.siteDomain,
			Domain:    cfg.siteDomain,
			Languages: languages,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateSite(context.Background(), site); err != nil {
			t.Fatalf("failed to seed test site: %v", err)
		}
		options = append(options, simplecms.WithCurrentSite(site.ID))
	}

	// Create service
	svc, err := simplecms.New(options...)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	return svc
}

// NewProduction creates a service configured for production deployment.
//
// Features:
//   - Database from environment (DATABASE_TYPE, DATABASE_URL, DB_SCHEMA)
//   - Current site from environment (SITE_ID)
//   - Event logging enabled
//   - Validation of required configuration
//
// Required Environment Variables:
//   - DATABASE_URL: PostgreSQL connection string
//
// Optional Environment Variables:
//   - DATABASE_TYPE: "postgres" (the default; memory is rejected)
//   - DB_SCHEMA: schema holding the cms tables (default "cms")
//   - SITE_ID: UUID of the site used when a request does not name one
//
// Example:
//
//	svc, err := presets.NewProduction()
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewProduction(opts ...ProductionOption) (simplecms.Service, error) {
	// Default configuration (loads from environment)
	cfg := &prodConfig{
		databaseType: getEnv("DATABASE_TYPE", "postgres"),
		databaseURL:  getEnv("DATABASE_URL", ""),
		dbSchema:     getEnv("DB_SCHEMA", "cms"),
		currentSite:  getEnv("SITE_ID", ""),
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Validate required configuration
	if cfg.databaseType == "memory" {
		return nil, fmt.Errorf("production preset requires DATABASE_TYPE=postgres (memory not allowed in production)")
	}
	if cfg.databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for production")
	}

	// Delegate assembly to the config package
	serverCfg, err := config.Load(
		config.WithEnvironment("production"),
		config.WithDatabase(cfg.databaseType, cfg.databaseURL),
		config.WithDatabaseSchema(cfg.dbSchema),
		config.WithCurrentSite(cfg.currentSite),
		config.WithEventLogging(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load production configuration: %w", err)
	}

	return serverCfg.BuildService()
}

// starterRegistries builds the template, plugin-type and menu registries
// shared by the development and testing presets.
func starterRegistries() (*templates.Resolver, *plugins.Pool, *menus.Pool, error) {
	resolver := templates.NewResolver()
	if err := resolver.Register("page.html", "<main>{content}</main><aside>{sidebar}</aside>", "content", "sidebar"); err != nil {
		return nil, nil, nil, err
	}
	if err := resolver.Register("landing.html", "<main>{content}</main>", "content"); err != nil {
		return nil, nil, nil, err
	}

	pluginPool := plugins.NewPool()
	descriptors := []plugins.Descriptor{
		{Name: "TextPlugin", Fields: []plugins.Field{{Name: "body", Required: true}}},
		{Name: "LinkPlugin", Fields: []plugins.Field{{Name: "url", Required: true}, {Name: "label"}}},
	}
	for _, d := range descriptors {
		if err := pluginPool.Register(d); err != nil {
			return nil, nil, nil, err
		}
	}

	menuPool := menus.NewPool()
	if err := menuPool.Register(menus.Extender{Name: "navigation", Enabled: true}); err != nil {
		return nil, nil, nil, err
	}

	return resolver, pluginPool, menuPool, nil
}

// Option types for customization

// devConfig holds development preset configuration
type devConfig struct {
	domain    string
	languages []string
}

// testConfig holds testing preset configuration
type testConfig struct {
	siteDomain    string
	siteLanguages []string
	permissions   bool
}

// prodConfig holds production preset configuration
type prodConfig struct {
	databaseType string
	databaseURL  string
	dbSchema     string
	currentSite  string
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevDomain sets the seeded development site's domain
func WithDevDomain(domain string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.domain = domain
	}
}

// WithDevLanguages sets the seeded development site's enabled languages
func WithDevLanguages(languages ...string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.languages = languages
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestSite seeds a site and binds it as the current site, so test
// requests may omit SiteID. Languages default to "en".
func WithTestSite(domain string, languages ...string) TestingOption {
	return func(cfg *testConfig) {
		cfg.siteDomain = domain
		cfg.siteLanguages = languages
	}
}

// WithoutPermissionChecks disables permission checking, so tests can
// publish without seeding users and grants.
func WithoutPermissionChecks() TestingOption {
	return func(cfg *testConfig) {
		cfg.permissions = false
	}
}

// ProductionOption is a functional option for NewProduction
type ProductionOption func(*prodConfig)

// WithProdDatabase sets the production database configuration
func WithProdDatabase(dbType, url string) ProductionOption {
	return func(cfg *prodConfig) {
		cfg.databaseType = dbType
		cfg.databaseURL = url
	}
}

// WithProdSchema sets the postgres schema holding the cms tables
func WithProdSchema(schema string) ProductionOption {
	return func(cfg *prodConfig) {
		cfg.dbSchema = schema
	}
}

// WithProdCurrentSite sets the site used when a request does not name one
func WithProdCurrentSite(siteID string) ProductionOption {
	return func(cfg *prodConfig) {
		cfg.currentSite = siteID
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// TestService is a convenience function that creates a test service
// This is an alias for NewTesting with no options
func TestService(t *testing.T) simplecms.Service {
	return NewTesting(t)
}

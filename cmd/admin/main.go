package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/admin"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
)

const usage = `Simple CMS Admin CLI

A lightweight admin tool for page inventory that only requires database access.

USAGE:
  admin <command> [options]

COMMANDS:
  list         List pages with optional filtering
  count        Count pages with optional filtering
  stats        Get aggregated page statistics
  permissions  List all permission rows granted to a user

ENVIRONMENT VARIABLES:
  DATABASE_TYPE     Database type: postgres or memory (default: memory)
  DATABASE_URL      PostgreSQL connection string; when unset the URL is
                    composed from CMS_PG_HOST, CMS_PG_PORT, CMS_PG_NAME,
                    CMS_PG_USER, CMS_PG_PASSWORD
  DB_SCHEMA         PostgreSQL schema name (default: cms)

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  # List all pages
  admin list

  # List pages for a specific site
  admin list --site-id=550e8400-e29b-41d4-a716-446655440000

  # List with pagination
  admin list --limit=10 --offset=0

  # List draft pages only
  admin list --is-draft=true

  # List published drafts
  admin list --is-draft=true --published=true

  # Count all pages
  admin count

  # Count by template
  admin count --template=page.html

  # Get statistics
  admin stats

  # Get statistics for a specific site
  admin stats --site-id=550e8400-e29b-41d4-a716-446655440000

  # List the permission grants of a user
  admin permissions 550e8400-e29b-41d4-a716-446655440000

  # Output as JSON
  admin list --json
  admin stats --json

OPTIONS (for list/count/stats):
  --site-id=<uuid>             Filter by site ID
  --is-draft=<bool>            Filter by draft state (true or false)
  --published=<bool>           Filter by published state
  --template=<name>            Filter by template name
  --language=<code>            Filter by title language
  --reverse-id=<id>            Filter by reverse ID
  --title=<text>               Filter by title text (case-insensitive match)
  --in-navigation=<bool>       Filter by navigation visibility
  --limit=<n>                  Maximum results (list only, default: 100)
  --offset=<n>                 Pagination offset (list only, default: 0)
  --sort-by=<field>            Sort field: created_at, updated_at, position
  --sort-order=<order>         Sort order: asc or desc
  --json                       Output as JSON
`

// Config is the CLI configuration, read from the environment.
type Config struct {
	DB           DbConfig
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"`
	DBSchema     string `env:"DB_SCHEMA" env-default:"cms"`
}

// DbConfig describes the postgres connection. A full DATABASE_URL wins;
// otherwise the URL is composed from the individual parts.
type DbConfig struct {
	URL      string `env:"DATABASE_URL" env-default:""`
	Port     uint16 `env:"CMS_PG_PORT" env-default:"5432"`
	Host     string `env:"CMS_PG_HOST" env-default:"localhost"`
	Name     string `env:"CMS_PG_NAME" env-default:"cms_db"`
	User     string `env:"CMS_PG_USER" env-default:"cms"`
	Password string `env:"CMS_PG_PASSWORD" env-default:"pwd"`
}

func (c DbConfig) toDatabaseUrl() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Printf("%s\n", usage)
		os.Exit(1)
	}

	command := os.Args[1]

	// Check for help
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Printf("%s\n", usage)
		os.Exit(0)
	}

	// Create admin service
	adminSvc, err := createAdminService(cfg)
	if err != nil {
		log.Fatalf("Failed to create admin service: %v", err)
	}

	ctx := context.Background()

	// Parse common flags
	filters, useJSON := parseFilters(os.Args[2:])

	// Execute command
	switch command {
	case "list":
		handleList(ctx, adminSvc, filters, useJSON)
	case "count":
		handleCount(ctx, adminSvc, filters, useJSON)
	case "stats":
		handleStats(ctx, adminSvc, filters, useJSON)
	case "permissions":
		handlePermissions(ctx, adminSvc, os.Args[2:], useJSON)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Printf("%s\n", usage)
		os.Exit(1)
	}
}

func createAdminService(cfg Config) (admin.AdminService, error) {
	switch cfg.DatabaseType {
	case "postgres":
		// Connect to postgres
		poolConfig, err := pgxpool.ParseConfig(cfg.DB.toDatabaseUrl())
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}

		// Set search_path
		poolConfig.ConnConfig.RuntimeParams["search_path"] = cfg.DBSchema

		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// Test connection
		if err := pool.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		repo := repopg.NewWithPool(pool)
		return admin.New(repo), nil

	case "memory":
		repo := memory.New()
		return admin.New(repo), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s (use 'postgres' or 'memory')", cfg.DatabaseType)
	}
}

func parseFilters(args []string) (admin.PageFilters, bool) {
	filters := admin.PageFilters{}
	useJSON := false

	// Default pagination
	defaultLimit := 100
	defaultOffset := 0
	filters.Limit = &defaultLimit
	filters.Offset = &defaultOffset

	for _, arg := range args {
		if arg == "--json" {
			useJSON = true
			continue
		}

		// Parse key=value flags
		key, value := parseFlag(arg)

		switch key {
		case "site-id":
			if id, err := uuid.Parse(value); err == nil {
				filters.SiteID = &id
			}
		case "is-draft":
			if b, err := strconv.ParseBool(value); err == nil {
				filters.IsDraft = &b
			}
		case "published":
			if b, err := strconv.ParseBool(value); err == nil {
				filters.Published = &b
			}
		case "template":
			filters.Template = &value
		case "language":
			filters.Language = &value
		case "reverse-id":
			filters.ReverseID = &value
		case "title":
			filters.TitleContains = &value
		case "in-navigation":
			if b, err := strconv.ParseBool(value); err == nil {
				filters.InNavigation = &b
			}
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				filters.Limit = &n
			}
		case "offset":
			if n, err := strconv.Atoi(value); err == nil {
				filters.Offset = &n
			}
		case "sort-by":
			filters.SortBy = &value
		case "sort-order":
			filters.SortOrder = &value
		}
	}

	return filters, useJSON
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

func handleList(ctx context.Context, adminSvc admin.AdminService, filters admin.PageFilters, useJSON bool) {
	resp, err := adminSvc.ListAllPages(ctx, admin.ListPagesRequest{
		Filters: filters,
	})
	if err != nil {
		log.Fatalf("Failed to list pages: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	// Table output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSITE\tTEMPLATE\tSTATE\tPUBLISHED\tREVERSE ID\tCREATED\n")
	fmt.Fprintf(w, "──────────────────────────────────────\t────────────\t────────────────\t────────\t─────────\t────────────────\t──────────────────────\n")

	for _, page := range resp.Pages {
		createdAt := page.CreatedAt.Format("2006-01-02 15:04:05")

		state := "public"
		published := "yes"
		if page.IsDraft {
			state = "draft"
			published = "no"
			if page.PublicID != nil {
				published = "yes"
			}
		}

		reverseID := page.ReverseID
		if reverseID == "" {
			reverseID = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			page.ID.String()[:8]+"...",
			page.SiteID.String()[:8]+"...",
			truncate(page.TemplateName, 15),
			state,
			published,
			truncate(reverseID, 15),
			createdAt,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d", len(resp.Pages))
	if resp.HasMore {
		fmt.Printf(" (has more, use --offset=%d to continue)", *filters.Offset+*filters.Limit)
	}
	fmt.Println()
}

func handleCount(ctx context.Context, adminSvc admin.AdminService, filters admin.PageFilters, useJSON bool) {
	resp, err := adminSvc.CountPages(ctx, admin.CountRequest{
		Filters: filters,
	})
	if err != nil {
		log.Fatalf("Failed to count pages: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Total count: %d\n", resp.Count)
}

func handleStats(ctx context.Context, adminSvc admin.AdminService, filters admin.PageFilters, useJSON bool) {
	resp, err := adminSvc.GetStatistics(ctx, admin.StatisticsRequest{
		Filters: filters,
		Options: admin.DefaultStatisticsOptions(),
	})
	if err != nil {
		log.Fatalf("Failed to get statistics: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	stats := resp.Statistics

	fmt.Println("=== Page Statistics ===")
	fmt.Printf("\nTotal Count: %d\n", stats.TotalCount)

	if len(stats.ByState) > 0 {
		fmt.Println("\nBy State:")
		for state, count := range stats.ByState {
			fmt.Printf("  %-18s: %d\n", state, count)
		}
	}

	if len(stats.BySite) > 0 {
		fmt.Println("\nBy Site:")
		for site, count := range stats.BySite {
			fmt.Printf("  %-30s: %d\n", truncate(site, 30), count)
		}
	}

	if len(stats.ByTemplate) > 0 {
		fmt.Println("\nBy Template:")
		for template, count := range stats.ByTemplate {
			fmt.Printf("  %-30s: %d\n", truncate(template, 30), count)
		}
	}

	if len(stats.ByLanguage) > 0 {
		fmt.Println("\nBy Language:")
		for language, count := range stats.ByLanguage {
			fmt.Printf("  %-15s: %d\n", language, count)
		}
	}

	if stats.OldestPage != nil && stats.NewestPage != nil {
		fmt.Println("\nTime Range:")
		fmt.Printf("  Oldest: %s\n", stats.OldestPage.Format(time.RFC3339))
		fmt.Printf("  Newest: %s\n", stats.NewestPage.Format(time.RFC3339))
	}

	fmt.Printf("\nComputed at: %s\n", resp.ComputedAt.Format(time.RFC3339))
}

func handlePermissions(ctx context.Context, adminSvc admin.AdminService, args []string, useJSON bool) {
	var idArg string
	for _, arg := range args {
		if len(arg) < 2 || arg[:2] != "--" {
			idArg = arg
			break
		}
	}
	if idArg == "" {
		log.Fatal("Usage: admin permissions <user-id> [--json]")
	}

	userID, err := uuid.Parse(idArg)
	if err != nil {
		log.Fatalf("Invalid user ID %q: %v", idArg, err)
	}

	resp, err := adminSvc.ListPermissions(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to list permissions: %v", err)
	}

	if useJSON {
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Permissions for user %s\n", resp.UserID)

	if len(resp.PagePermissions) == 0 && len(resp.GlobalPermissions) == 0 {
		fmt.Println("\nNo permissions granted")
		return
	}

	if len(resp.PagePermissions) > 0 {
		fmt.Println("\nPage permissions:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "PAGE\tSCOPE\tGRANTS\tCREATED\n")
		for _, perm := range resp.PagePermissions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				perm.PageID.String()[:8]+"...",
				perm.GrantOn,
				grantSummary(perm.Flags),
				perm.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		w.Flush()
	}

	if len(resp.GlobalPermissions) > 0 {
		fmt.Println("\nGlobal permissions:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SITES\tRECOVER\tGRANTS\tCREATED\n")
		for _, perm := range resp.GlobalPermissions {
			scope := "all"
			if len(perm.SiteIDs) > 0 {
				scope = fmt.Sprintf("%d site(s)", len(perm.SiteIDs))
			}
			canRecover := "no"
			if perm.CanRecoverPage {
				canRecover = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				scope,
				canRecover,
				grantSummary(perm.Flags),
				perm.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		w.Flush()
	}
}

// grantSummary renders enabled permission flags as a short comma list.
func grantSummary(flags simplecms.PermissionFlags) string {
	var names []string
	if flags.CanAdd {
		names = append(names, "add")
	}
	if flags.CanChange {
		names = append(names, "change")
	}
	if flags.CanDelete {
		names = append(names, "delete")
	}
	if flags.CanChangeAdvancedSettings {
		names = append(names, "advanced")
	}
	if flags.CanPublish {
		names = append(names, "publish")
	}
	if flags.CanChangePermissions {
		names = append(names, "permissions")
	}
	if flags.CanMovePage {
		names = append(names, "move")
	}
	if flags.CanView {
		names = append(names, "view")
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

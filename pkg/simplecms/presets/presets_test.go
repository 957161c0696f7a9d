package presets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestNewDevelopment(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		svc, site, err := NewDevelopment()
		require.NoError(t, err)
		require.NotNil(t, svc)
		require.NotNil(t, site)
		assert.Equal(t, "localhost", site.Domain)
		assert.Equal(t, []string{"en"}, site.Languages)

		// Verify service works; the seeded site is bound as the current
		// site, so the request may omit SiteID
		ctx := context.Background()
		page, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
			Title:    "Home",
			Template: "page.html",
			Language: "en",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, page.ID)
		assert.Equal(t, site.ID, page.SiteID)
	})

	t.Run("custom domain and languages", func(t *testing.T) {
		svc, site, err := NewDevelopment(
			WithDevDomain("dev.example.com"),
			WithDevLanguages("en", "de"),
		)
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.Equal(t, "dev.example.com", site.Domain)
		assert.Equal(t, []string{"en", "de"}, site.Languages)

		ctx := context.Background()
		page, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
			Title:    "Startseite",
			Template: "landing.html",
			Language: "de",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, page.ID)
	})
}

func TestNewTesting(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		svc := NewTesting(t)
		require.NotNil(t, svc)

		// No site is seeded by default; create one through the service
		ctx := context.Background()
		site, err := svc.CreateSite(ctx, simplecms.CreateSiteRequest{
			Name:      "Test",
			Domain:    "test.example.com",
			Languages: []string{"en"},
		})
		require.NoError(t, err)

		page, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
			Title:    "Home",
			Template: "page.html",
			Language: "en",
			SiteID:   &site.ID,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, page.ID)
	})

	t.Run("seeded site", func(t *testing.T) {
		svc := NewTesting(t, WithTestSite("test.example.com", "en", "de"))

		ctx := context.Background()
		page, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
			Title:    "Home",
			Template: "page.html",
			Language: "de",
		})
		require.NoError(t, err)

		site, err := svc.GetSite(ctx, page.SiteID)
		require.NoError(t, err)
		assert.Equal(t, "test.example.com", site.Domain)
		assert.Equal(t, []string{"en", "de"}, site.Languages)
	})

	t.Run("parallel execution", func(t *testing.T) {
		// Test that multiple tests can run in parallel
		t.Run("test1", func(t *testing.T) {
			t.Parallel()
			svc := NewTesting(t, WithTestSite("one.example.com"))
			ctx := context.Background()
			_, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
				Title:    "One",
				Template: "page.html",
				Language: "en",
			})
			require.NoError(t, err)
		})

		t.Run("test2", func(t *testing.T) {
			t.Parallel()
			svc := NewTesting(t, WithTestSite("two.example.com"))
			ctx := context.Background()
			_, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
				Title:    "Two",
				Template: "page.html",
				Language: "en",
			})
			require.NoError(t, err)
		})
	})
}

func TestWithoutPermissionChecks(t *testing.T) {
	t.Run("staff can publish without grants", func(t *testing.T) {
		svc := NewTesting(t, WithTestSite("test.example.com"), WithoutPermissionChecks())

		ctx := context.Background()
		editor, err := svc.CreateUser(ctx, simplecms.CreateUserRequest{
			Username: "editor",
			IsStaff:  true,
			IsActive: true,
		})
		require.NoError(t, err)

		page, err := svc.CreatePage(ctx, simplecms.CreatePageRequest{
			Title:    "Home",
			Template: "page.html",
			Language: "en",
		})
		require.NoError(t, err)

		published, err := svc.PublishPage(ctx, page.ID, editor.ID, "en")
		require.NoError(t, err)
		require.NotNil(t, published.PublicID)
	})
}

func TestTestService(t *testing.T) {
	t.Run("convenience function", func(t *testing.T) {
		svc := TestService(t)
		require.NotNil(t, svc)

		// Verify service works
		ctx := context.Background()
		site, err := svc.CreateSite(ctx, simplecms.CreateSiteRequest{
			Name:      "Test",
			Domain:    "test.example.com",
			Languages: []string{"en"},
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, site.ID)
	})
}

func TestNewProduction(t *testing.T) {
	t.Run("validation - requires postgres", func(t *testing.T) {
		// Memory database (should fail)
		_, err := NewProduction(WithProdDatabase("memory", ""))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "requires DATABASE_TYPE=postgres")
	})

	t.Run("validation - requires database URL", func(t *testing.T) {
		// No database URL (should fail)
		_, err := NewProduction(WithProdDatabase("postgres", ""))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("validation - rejects unknown database type", func(t *testing.T) {
		_, err := NewProduction(WithProdDatabase("mysql", "postgresql://localhost/cms"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be 'memory' or 'postgres'")
	})

	// Note: Full production test would require a running Postgres
	// so we only test validation here
}

func TestPresetIsolation(t *testing.T) {
	t.Run("testing presets are isolated", func(t *testing.T) {
		// Create two test services
		svc1 := NewTesting(t, WithTestSite("one.example.com"))
		svc2 := NewTesting(t, WithTestSite("two.example.com"))

		ctx := context.Background()

		// Create a page in svc1
		page1, err := svc1.CreatePage(ctx, simplecms.CreatePageRequest{
			Title:    "Home",
			Template: "page.html",
			Language: "en",
		})
		require.NoError(t, err)

		// Page should NOT exist in svc2 (isolated)
		_, err = svc2.GetPage(ctx, page1.ID)
		assert.Error(t, err, "page from svc1 should not exist in svc2")
	})
}

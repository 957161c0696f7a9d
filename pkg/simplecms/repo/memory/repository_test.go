package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
)

func seedSite(t *testing.T, repo simplecms.Repository, domain string) *simplecms.Site {
	t.Helper()
	site := &simplecms.Site{
		ID:        uuid.New(),
		Name:      domain,
		Domain:    domain,
		Languages: []string{"en", "de"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateSite(context.Background(), site))
	return site
}

func seedPage(t *testing.T, repo simplecms.Repository, siteID uuid.UUID, parentID *uuid.UUID) *simplecms.Page {
	t.Helper()
	page := &simplecms.Page{
		ID:           uuid.New(),
		SiteID:       siteID,
		ParentID:     parentID,
		IsDraft:      true,
		TemplateName: "page.html",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.CreatePage(context.Background(), page))
	return page
}

func seedTitle(t *testing.T, repo simplecms.Repository, pageID uuid.UUID, language, text, slug string) *simplecms.Title {
	t.Helper()
	title := &simplecms.Title{
		ID:        uuid.New(),
		PageID:    pageID,
		Language:  language,
		Title:     text,
		Slug:      slug,
		Path:      slug,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateTitle(context.Background(), title))
	return title
}

func seedPlaceholder(t *testing.T, repo simplecms.Repository, pageID uuid.UUID, slot string) *simplecms.Placeholder {
	t.Helper()
	placeholder := &simplecms.Placeholder{
		ID:        uuid.New(),
		PageID:    pageID,
		Slot:      slot,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.CreatePlaceholder(context.Background(), placeholder))
	return placeholder
}

func seedPlugin(t *testing.T, repo simplecms.Repository, placeholderID uuid.UUID, parentID *uuid.UUID, language string, position int) *simplecms.Plugin {
	t.Helper()
	plugin := &simplecms.Plugin{
		ID:            uuid.New(),
		PlaceholderID: placeholderID,
		ParentID:      parentID,
		Position:      position,
		Language:      language,
		PluginType:    "TextPlugin",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, repo.CreatePlugin(context.Background(), plugin))
	return plugin
}

func seedUser(t *testing.T, repo simplecms.Repository, username string) *simplecms.User {
	t.Helper()
	user := &simplecms.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestMemoryRepository_PageOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("CreatePage", func(t *testing.T) {
		site := seedSite(t, repo, "pages.example.com")

		page := &simplecms.Page{
			ID:           uuid.New(),
			SiteID:       site.ID,
			IsDraft:      true,
			TemplateName: "page.html",
			InNavigation: true,
			CreatedBy:    "api",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		err := repo.CreatePage(ctx, page)
		assert.NoError(t, err)
		assert.Equal(t, 0, page.Position)

		retrieved, err := repo.GetPage(ctx, page.ID)
		assert.NoError(t, err)
		assert.Equal(t, page.ID, retrieved.ID)
		assert.Equal(t, "page.html", retrieved.TemplateName)
		assert.True(t, retrieved.InNavigation)
		assert.Equal(t, "api", retrieved.CreatedBy)
	})

	t.Run("CreatePage_AppendsToSiblingSet", func(t *testing.T) {
		site := seedSite(t, repo, "siblings.example.com")

		first := seedPage(t, repo, site.ID, nil)
		second := seedPage(t, repo, site.ID, nil)
		third := seedPage(t, repo, site.ID, nil)

		assert.Equal(t, 0, first.Position)
		assert.Equal(t, 1, second.Position)
		assert.Equal(t, 2, third.Position)
	})

	t.Run("CreatePage_SiblingSetsNumberIndependently", func(t *testing.T) {
		site := seedSite(t, repo, "numbering.example.com")

		root := seedPage(t, repo, site.ID, nil)
		child := seedPage(t, repo, site.ID, &root.ID)
		assert.Equal(t, 0, child.Position)

		// Public pages keep their own sibling numbering.
		public := &simplecms.Page{
			ID:        uuid.New(),
			SiteID:    site.ID,
			IsDraft:   false,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		require.NoError(t, repo.CreatePage(ctx, public))
		assert.Equal(t, 0, public.Position)
	})

	t.Run("GetPage_NotFound", func(t *testing.T) {
		page, err := repo.GetPage(ctx, uuid.New())
		assert.Error(t, err)
		assert.Nil(t, page)
		assert.Equal(t, simplecms.ErrPageNotFound, err)
	})

	t.Run("GetPage_ReturnsCopy", func(t *testing.T) {
		site := seedSite(t, repo, "copies.example.com")
		page := seedPage(t, repo, site.ID, nil)

		retrieved, err := repo.GetPage(ctx, page.ID)
		require.NoError(t, err)
		retrieved.TemplateName = "mutated.html"
		retrieved.ParentID = &site.ID

		again, err := repo.GetPage(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, "page.html", again.TemplateName)
		assert.Nil(t, again.ParentID)
	})

	t.Run("UpdatePage", func(t *testing.T) {
		site := seedSite(t, repo, "updates.example.com")
		page := seedPage(t, repo, site.ID, nil)

		page.TemplateName = "landing.html"
		page.SoftRoot = true
		page.ReverseID = "promo"
		err := repo.UpdatePage(ctx, page)
		assert.NoError(t, err)

		retrieved, err := repo.GetPage(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, "landing.html", retrieved.TemplateName)
		assert.True(t, retrieved.SoftRoot)
		assert.Equal(t, "promo", retrieved.ReverseID)
	})

	t.Run("UpdatePage_NotFound", func(t *testing.T) {
		page := &simplecms.Page{ID: uuid.New(), IsDraft: true}
		err := repo.UpdatePage(ctx, page)
		assert.Equal(t, simplecms.ErrPageNotFound, err)
	})

	t.Run("ListPages_TreeOrder", func(t *testing.T) {
		site := seedSite(t, repo, "tree.example.com")

		rootA := seedPage(t, repo, site.ID, nil)
		childA1 := seedPage(t, repo, site.ID, &rootA.ID)
		childA2 := seedPage(t, repo, site.ID, &rootA.ID)
		rootB := seedPage(t, repo, site.ID, nil)
		childB1 := seedPage(t, repo, site.ID, &rootB.ID)

		pages, err := repo.ListPages(ctx, simplecms.PageFilter{SiteID: &site.ID})
		require.NoError(t, err)
		require.Len(t, pages, 5)

		got := make([]uuid.UUID, 0, len(pages))
		for _, page := range pages {
			got = append(got, page.ID)
		}
		want := []uuid.UUID{rootA.ID, childA1.ID, childA2.ID, rootB.ID, childB1.ID}
		assert.Equal(t, want, got)
	})

	t.Run("ListPages_Filters", func(t *testing.T) {
		site := seedSite(t, repo, "filters.example.com")

		root := seedPage(t, repo, site.ID, nil)
		root.ReverseID = "home"
		require.NoError(t, repo.UpdatePage(ctx, root))
		published := seedTitle(t, repo, root.ID, "en", "Home", "home")
		published.Published = true
		require.NoError(t, repo.UpdateTitle(ctx, published))

		childA := seedPage(t, repo, site.ID, &root.ID)
		seedTitle(t, repo, childA.ID, "en", "News", "news")
		childB := seedPage(t, repo, site.ID, &root.ID)
		seedTitle(t, repo, childB.ID, "de", "Neuigkeiten", "neuigkeiten")

		public := &simplecms.Page{
			ID:        uuid.New(),
			SiteID:    site.ID,
			IsDraft:   false,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		require.NoError(t, repo.CreatePage(ctx, public))

		drafts := true
		pages, err := repo.ListPages(ctx, simplecms.PageFilter{SiteID: &site.ID, IsDraft: &drafts})
		require.NoError(t, err)
		assert.Len(t, pages, 3)

		publicOnly := false
		pages, err = repo.ListPages(ctx, simplecms.PageFilter{SiteID: &site.ID, IsDraft: &publicOnly})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, public.ID, pages[0].ID)

		pages, err = repo.ListPages(ctx, simplecms.PageFilter{SiteID: &site.ID, ParentID: &root.ID})
		require.NoError(t, err)
		assert.Len(t, pages, 2)

		reverseID := "home"
		pages, err = repo.ListPages(ctx, simplecms.PageFilter{SiteID: &site.ID, ReverseID: &reverseID})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, root.ID, pages[0].ID)

		language := "de"
		pages, err = repo.ListPages(ctx, simplecms.PageFilter{SiteID: &site.ID, Language: &language})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, childB.ID, pages[0].ID)

		isPublished := true
		pages, err = repo.ListPages(ctx, simplecms.PageFilter{SiteID: &site.ID, Published: &isPublished})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, root.ID, pages[0].ID)

		otherSite := uuid.New()
		pages, err = repo.ListPages(ctx, simplecms.PageFilter{SiteID: &otherSite})
		require.NoError(t, err)
		assert.Empty(t, pages)
	})

	t.Run("CountPages", func(t *testing.T) {
		site := seedSite(t, repo, "counts.example.com")

		root := seedPage(t, repo, site.ID, nil)
		seedPage(t, repo, site.ID, &root.ID)
		root.ReverseID = "footer"
		require.NoError(t, repo.UpdatePage(ctx, root))

		count, err := repo.CountPages(ctx, simplecms.PageFilter{SiteID: &site.ID})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)

		reverseID := "footer"
		count, err = repo.CountPages(ctx, simplecms.PageFilter{SiteID: &site.ID, ReverseID: &reverseID})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ListAncestors", func(t *testing.T) {
		site := seedSite(t, repo, "ancestors.example.com")

		root := seedPage(t, repo, site.ID, nil)
		child := seedPage(t, repo, site.ID, &root.ID)
		grandchild := seedPage(t, repo, site.ID, &child.ID)

		ancestors, err := repo.ListAncestors(ctx, grandchild.ID)
		require.NoError(t, err)
		require.Len(t, ancestors, 2)
		// Nearest ancestor comes first.
		assert.Equal(t, child.ID, ancestors[0].ID)
		assert.Equal(t, root.ID, ancestors[1].ID)

		ancestors, err = repo.ListAncestors(ctx, root.ID)
		require.NoError(t, err)
		assert.Empty(t, ancestors)
	})

	t.Run("ListAncestors_NotFound", func(t *testing.T) {
		ancestors, err := repo.ListAncestors(ctx, uuid.New())
		assert.Equal(t, simplecms.ErrPageNotFound, err)
		assert.Nil(t, ancestors)
	})
}

func TestMemoryRepository_MovePage(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("LastChild", func(t *testing.T) {
		site := seedSite(t, repo, "move-last.example.com")
		parent := seedPage(t, repo, site.ID, nil)
		page := seedPage(t, repo, site.ID, nil)
		tail := seedPage(t, repo, site.ID, nil)

		err := repo.MovePage(ctx, page.ID, parent.ID, simplecms.PositionLastChild)
		assert.NoError(t, err)

		moved, err := repo.GetPage(ctx, page.ID)
		require.NoError(t, err)
		require.NotNil(t, moved.ParentID)
		assert.Equal(t, parent.ID, *moved.ParentID)
		assert.Equal(t, 0, moved.Position)

		// The old sibling set closes the gap.
		remaining, err := repo.GetPage(ctx, tail.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining.Position)
	})

	t.Run("FirstChild", func(t *testing.T) {
		site := seedSite(t, repo, "move-first.example.com")
		parent := seedPage(t, repo, site.ID, nil)
		childX := seedPage(t, repo, site.ID, &parent.ID)
		childY := seedPage(t, repo, site.ID, &parent.ID)
		page := seedPage(t, repo, site.ID, nil)

		err := repo.MovePage(ctx, page.ID, parent.ID, simplecms.PositionFirstChild)
		assert.NoError(t, err)

		moved, err := repo.GetPage(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, moved.Position)

		x, err := repo.GetPage(ctx, childX.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, x.Position)
		y, err := repo.GetPage(ctx, childY.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, y.Position)
	})

	t.Run("Left", func(t *testing.T) {
		site := seedSite(t, repo, "move-left.example.com")
		pageA := seedPage(t, repo, site.ID, nil)
		pageB := seedPage(t, repo, site.ID, nil)
		pageC := seedPage(t, repo, site.ID, nil)

		err := repo.MovePage(ctx, pageC.ID, pageA.ID, simplecms.PositionLeft)
		assert.NoError(t, err)

		c, err := repo.GetPage(ctx, pageC.ID)
		require.NoError(t, err)
		assert.Nil(t, c.ParentID)
		assert.Equal(t, 0, c.Position)

		a, err := repo.GetPage(ctx, pageA.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, a.Position)
		b, err := repo.GetPage(ctx, pageB.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, b.Position)
	})

	t.Run("Right", func(t *testing.T) {
		site := seedSite(t, repo, "move-right.example.com")
		pageA := seedPage(t, repo, site.ID, nil)
		pageB := seedPage(t, repo, site.ID, nil)
		pageC := seedPage(t, repo, site.ID, nil)

		err := repo.MovePage(ctx, pageA.ID, pageB.ID, simplecms.PositionRight)
		assert.NoError(t, err)

		b, err := repo.GetPage(ctx, pageB.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, b.Position)
		a, err := repo.GetPage(ctx, pageA.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, a.Position)
		c, err := repo.GetPage(ctx, pageC.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Position)
	})

	t.Run("AdoptsTargetSite", func(t *testing.T) {
		siteA := seedSite(t, repo, "move-from.example.com")
		siteB := seedSite(t, repo, "move-to.example.com")
		page := seedPage(t, repo, siteA.ID, nil)
		target := seedPage(t, repo, siteB.ID, nil)

		err := repo.MovePage(ctx, page.ID, target.ID, simplecms.PositionLastChild)
		assert.NoError(t, err)

		moved, err := repo.GetPage(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, siteB.ID, moved.SiteID)
		require.NotNil(t, moved.ParentID)
		assert.Equal(t, target.ID, *moved.ParentID)
	})

	t.Run("BelowItself", func(t *testing.T) {
		site := seedSite(t, repo, "move-cycle.example.com")
		parent := seedPage(t, repo, site.ID, nil)
		child := seedPage(t, repo, site.ID, &parent.ID)

		err := repo.MovePage(ctx, parent.ID, child.ID, simplecms.PositionLastChild)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "below itself")

		err = repo.MovePage(ctx, parent.ID, parent.ID, simplecms.PositionLastChild)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "below itself")
	})

	t.Run("InvalidPosition", func(t *testing.T) {
		site := seedSite(t, repo, "move-invalid.example.com")
		page := seedPage(t, repo, site.ID, nil)
		target := seedPage(t, repo, site.ID, nil)

		err := repo.MovePage(ctx, page.ID, target.ID, simplecms.TreePosition("middle"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid tree position")
	})

	t.Run("PageNotFound", func(t *testing.T) {
		site := seedSite(t, repo, "move-missing.example.com")
		target := seedPage(t, repo, site.ID, nil)

		err := repo.MovePage(ctx, uuid.New(), target.ID, simplecms.PositionLastChild)
		assert.Equal(t, simplecms.ErrPageNotFound, err)

		err = repo.MovePage(ctx, target.ID, uuid.New(), simplecms.PositionLastChild)
		assert.Equal(t, simplecms.ErrPageNotFound, err)
	})
}

func TestMemoryRepository_TitleOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	site := seedSite(t, repo, "titles.example.com")

	t.Run("CreateTitle", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)

		title := &simplecms.Title{
			ID:              uuid.New(),
			PageID:          page.ID,
			Language:        "en",
			Title:           "About Us",
			MenuTitle:       "About",
			Slug:            "about-us",
			Path:            "about-us",
			MetaDescription: "Who we are",
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		err := repo.CreateTitle(ctx, title)
		assert.NoError(t, err)

		retrieved, err := repo.GetTitle(ctx, page.ID, "en")
		assert.NoError(t, err)
		assert.Equal(t, title.ID, retrieved.ID)
		assert.Equal(t, "About Us", retrieved.Title)
		assert.Equal(t, "About", retrieved.MenuTitle)
		assert.Equal(t, "about-us", retrieved.Path)
		assert.Equal(t, "Who we are", retrieved.MetaDescription)
		assert.False(t, retrieved.Published)
	})

	t.Run("CreateTitle_SecondLanguage", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, page.ID, "en", "Contact", "contact")
		seedTitle(t, repo, page.ID, "de", "Kontakt", "kontakt")

		titles, err := repo.ListTitles(ctx, page.ID)
		require.NoError(t, err)
		require.Len(t, titles, 2)
		// Creation order is preserved.
		assert.Equal(t, "en", titles[0].Language)
		assert.Equal(t, "de", titles[1].Language)
	})

	t.Run("CreateTitle_DuplicateLanguage", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, page.ID, "en", "Jobs", "jobs")

		duplicate := &simplecms.Title{
			ID:       uuid.New(),
			PageID:   page.ID,
			Language: "en",
			Title:    "Careers",
			Slug:     "careers",
			Path:     "careers",
		}
		err := repo.CreateTitle(ctx, duplicate)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already has a title")
	})

	t.Run("CreateTitle_PageNotFound", func(t *testing.T) {
		title := &simplecms.Title{
			ID:       uuid.New(),
			PageID:   uuid.New(),
			Language: "en",
			Title:    "Orphan",
			Slug:     "orphan",
		}
		err := repo.CreateTitle(ctx, title)
		assert.Equal(t, simplecms.ErrPageNotFound, err)
	})

	t.Run("GetTitle_NotFound", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, page.ID, "en", "Press", "press")

		title, err := repo.GetTitle(ctx, page.ID, "fr")
		assert.Equal(t, simplecms.ErrTitleNotFound, err)
		assert.Nil(t, title)
	})

	t.Run("UpdateTitle", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)
		title := seedTitle(t, repo, page.ID, "en", "Blog", "blog")

		title.Title = "Journal"
		title.Redirect = "/news/"
		title.Published = true
		err := repo.UpdateTitle(ctx, title)
		assert.NoError(t, err)

		retrieved, err := repo.GetTitle(ctx, page.ID, "en")
		require.NoError(t, err)
		assert.Equal(t, "Journal", retrieved.Title)
		assert.Equal(t, "/news/", retrieved.Redirect)
		assert.True(t, retrieved.Published)
	})

	t.Run("UpdateTitle_NotFound", func(t *testing.T) {
		title := &simplecms.Title{ID: uuid.New(), PageID: uuid.New(), Language: "en"}
		err := repo.UpdateTitle(ctx, title)
		assert.Equal(t, simplecms.ErrTitleNotFound, err)
	})

	t.Run("ListTitles_Empty", func(t *testing.T) {
		titles, err := repo.ListTitles(ctx, uuid.New())
		assert.NoError(t, err)
		assert.NotNil(t, titles)
		assert.Empty(t, titles)
	})

	t.Run("ListSiblingSlugs", func(t *testing.T) {
		scoped := seedSite(t, repo, "slugs.example.com")

		rootA := seedPage(t, repo, scoped.ID, nil)
		seedTitle(t, repo, rootA.ID, "en", "Beta", "beta")
		rootB := seedPage(t, repo, scoped.ID, nil)
		seedTitle(t, repo, rootB.ID, "en", "Alpha", "alpha")
		rootC := seedPage(t, repo, scoped.ID, nil)
		seedTitle(t, repo, rootC.ID, "de", "Gamma", "gamma")

		child := seedPage(t, repo, scoped.ID, &rootA.ID)
		seedTitle(t, repo, child.ID, "en", "Nested", "nested")

		// Public pages never contribute slugs.
		public := &simplecms.Page{
			ID:        uuid.New(),
			SiteID:    scoped.ID,
			IsDraft:   false,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		require.NoError(t, repo.CreatePage(ctx, public))
		seedTitle(t, repo, public.ID, "en", "Shadow", "shadow")

		slugs, err := repo.ListSiblingSlugs(ctx, nil, "en")
		require.NoError(t, err)
		assert.Contains(t, slugs, "alpha")
		assert.Contains(t, slugs, "beta")
		assert.NotContains(t, slugs, "gamma")
		assert.NotContains(t, slugs, "nested")
		assert.NotContains(t, slugs, "shadow")
		assert.IsIncreasing(t, slugs)

		slugs, err = repo.ListSiblingSlugs(ctx, &rootA.ID, "en")
		require.NoError(t, err)
		assert.Equal(t, []string{"nested"}, slugs)
	})
}

func TestMemoryRepository_PlaceholderOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	site := seedSite(t, repo, "placeholders.example.com")

	t.Run("CreatePlaceholder", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)

		placeholder := &simplecms.Placeholder{
			ID:        uuid.New(),
			PageID:    page.ID,
			Slot:      "content",
			CreatedAt: time.Now(),
		}
		err := repo.CreatePlaceholder(ctx, placeholder)
		assert.NoError(t, err)

		retrieved, err := repo.GetPlaceholder(ctx, placeholder.ID)
		assert.NoError(t, err)
		assert.Equal(t, page.ID, retrieved.PageID)
		assert.Equal(t, "content", retrieved.Slot)
	})

	t.Run("CreatePlaceholder_PageNotFound", func(t *testing.T) {
		placeholder := &simplecms.Placeholder{
			ID:     uuid.New(),
			PageID: uuid.New(),
			Slot:   "content",
		}
		err := repo.CreatePlaceholder(ctx, placeholder)
		assert.Equal(t, simplecms.ErrPageNotFound, err)
	})

	t.Run("GetPlaceholder_NotFound", func(t *testing.T) {
		placeholder, err := repo.GetPlaceholder(ctx, uuid.New())
		assert.Equal(t, simplecms.ErrPlaceholderNotFound, err)
		assert.Nil(t, placeholder)
	})

	t.Run("ListPlaceholders", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)
		seedPlaceholder(t, repo, page.ID, "content")
		seedPlaceholder(t, repo, page.ID, "sidebar")

		placeholders, err := repo.ListPlaceholders(ctx, page.ID)
		require.NoError(t, err)
		require.Len(t, placeholders, 2)
		assert.Equal(t, "content", placeholders[0].Slot)
		assert.Equal(t, "sidebar", placeholders[1].Slot)
	})

	t.Run("ListPlaceholders_Empty", func(t *testing.T) {
		placeholders, err := repo.ListPlaceholders(ctx, uuid.New())
		assert.NoError(t, err)
		assert.NotNil(t, placeholders)
		assert.Empty(t, placeholders)
	})
}

func TestMemoryRepository_PluginOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	site := seedSite(t, repo, "plugins.example.com")
	page := seedPage(t, repo, site.ID, nil)

	t.Run("CreatePlugin", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "create")

		plugin := &simplecms.Plugin{
			ID:            uuid.New(),
			PlaceholderID: placeholder.ID,
			Language:      "en",
			PluginType:    "TextPlugin",
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		err := repo.CreatePlugin(ctx, plugin)
		assert.NoError(t, err)

		retrieved, err := repo.GetPlugin(ctx, plugin.ID)
		assert.NoError(t, err)
		assert.Equal(t, "TextPlugin", retrieved.PluginType)
		assert.Equal(t, "en", retrieved.Language)
	})

	t.Run("CreatePlugin_PlaceholderNotFound", func(t *testing.T) {
		plugin := &simplecms.Plugin{
			ID:            uuid.New(),
			PlaceholderID: uuid.New(),
			Language:      "en",
			PluginType:    "TextPlugin",
		}
		err := repo.CreatePlugin(ctx, plugin)
		assert.Equal(t, simplecms.ErrPlaceholderNotFound, err)
	})

	t.Run("CreatePlugin_ParentNotFound", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "orphan-parent")
		missing := uuid.New()

		plugin := &simplecms.Plugin{
			ID:            uuid.New(),
			PlaceholderID: placeholder.ID,
			ParentID:      &missing,
			Language:      "en",
			PluginType:    "TextPlugin",
		}
		err := repo.CreatePlugin(ctx, plugin)
		assert.Equal(t, simplecms.ErrPluginNotFound, err)
	})

	t.Run("GetPlugin_NotFound", func(t *testing.T) {
		plugin, err := repo.GetPlugin(ctx, uuid.New())
		assert.Equal(t, simplecms.ErrPluginNotFound, err)
		assert.Nil(t, plugin)
	})

	t.Run("InsertPluginAt_ShiftsSiblings", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "shift")
		first := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		second := seedPlugin(t, repo, placeholder.ID, nil, "en", 1)

		inserted := &simplecms.Plugin{
			ID:            uuid.New(),
			PlaceholderID: placeholder.ID,
			Position:      0,
			Language:      "en",
			PluginType:    "TextPlugin",
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		err := repo.InsertPluginAt(ctx, inserted)
		assert.NoError(t, err)

		plugins, err := repo.ListPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: placeholder.ID,
			Language:      "en",
			RootsOnly:     true,
		})
		require.NoError(t, err)
		require.Len(t, plugins, 3)
		assert.Equal(t, inserted.ID, plugins[0].ID)
		assert.Equal(t, first.ID, plugins[1].ID)
		assert.Equal(t, second.ID, plugins[2].ID)
	})

	t.Run("InsertPluginAt_LanguageScoped", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "lang-scope")
		english := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		german := seedPlugin(t, repo, placeholder.ID, nil, "de", 0)

		inserted := &simplecms.Plugin{
			ID:            uuid.New(),
			PlaceholderID: placeholder.ID,
			Position:      0,
			Language:      "en",
			PluginType:    "TextPlugin",
		}
		require.NoError(t, repo.InsertPluginAt(ctx, inserted))

		shifted, err := repo.GetPlugin(ctx, english.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, shifted.Position)

		untouched, err := repo.GetPlugin(ctx, german.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, untouched.Position)
	})

	t.Run("InsertPluginAt_ParentScoped", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "parent-scope")
		root := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		child := seedPlugin(t, repo, placeholder.ID, &root.ID, "en", 0)

		inserted := &simplecms.Plugin{
			ID:            uuid.New(),
			PlaceholderID: placeholder.ID,
			Position:      0,
			Language:      "en",
			PluginType:    "TextPlugin",
		}
		require.NoError(t, repo.InsertPluginAt(ctx, inserted))

		shiftedRoot, err := repo.GetPlugin(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, shiftedRoot.Position)

		nestedChild, err := repo.GetPlugin(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, nestedChild.Position)
	})

	t.Run("ListPlugins_TreeOrder", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "tree-order")
		rootOne := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		rootTwo := seedPlugin(t, repo, placeholder.ID, nil, "en", 1)
		childOne := seedPlugin(t, repo, placeholder.ID, &rootOne.ID, "en", 0)
		childTwo := seedPlugin(t, repo, placeholder.ID, &rootOne.ID, "en", 1)
		grandchild := seedPlugin(t, repo, placeholder.ID, &childOne.ID, "en", 0)

		plugins, err := repo.ListPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: placeholder.ID,
			Language:      "en",
		})
		require.NoError(t, err)
		require.Len(t, plugins, 5)

		got := make([]uuid.UUID, 0, len(plugins))
		for _, plugin := range plugins {
			got = append(got, plugin.ID)
		}
		want := []uuid.UUID{rootOne.ID, childOne.ID, grandchild.ID, childTwo.ID, rootTwo.ID}
		assert.Equal(t, want, got)
	})

	t.Run("ListPlugins_ChildrenOnly", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "children-only")
		root := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		childOne := seedPlugin(t, repo, placeholder.ID, &root.ID, "en", 0)
		childTwo := seedPlugin(t, repo, placeholder.ID, &root.ID, "en", 1)

		plugins, err := repo.ListPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: placeholder.ID,
			Language:      "en",
			ParentID:      &root.ID,
		})
		require.NoError(t, err)
		require.Len(t, plugins, 2)
		assert.Equal(t, childOne.ID, plugins[0].ID)
		assert.Equal(t, childTwo.ID, plugins[1].ID)
	})

	t.Run("CountPlugins", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "counting")
		root := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		seedPlugin(t, repo, placeholder.ID, &root.ID, "en", 0)
		seedPlugin(t, repo, placeholder.ID, nil, "de", 0)

		count, err := repo.CountPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: placeholder.ID,
			Language:      "en",
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = repo.CountPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: placeholder.ID,
			Language:      "en",
			RootsOnly:     true,
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("PluginData", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "data")
		plugin := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)

		data := map[string]interface{}{"body": "<p>Hello</p>", "format": "html"}
		err := repo.SetPluginData(ctx, plugin.ID, data)
		assert.NoError(t, err)

		retrieved, err := repo.GetPluginData(ctx, plugin.ID)
		require.NoError(t, err)
		assert.Equal(t, data, retrieved)

		// Mutating the returned map must not leak back into the store.
		retrieved["body"] = "tampered"
		again, err := repo.GetPluginData(ctx, plugin.ID)
		require.NoError(t, err)
		assert.Equal(t, "<p>Hello</p>", again["body"])
	})

	t.Run("GetPluginData_NoData", func(t *testing.T) {
		placeholder := seedPlaceholder(t, repo, page.ID, "no-data")
		plugin := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)

		data, err := repo.GetPluginData(ctx, plugin.ID)
		assert.NoError(t, err)
		assert.NotNil(t, data)
		assert.Empty(t, data)
	})

	t.Run("GetPluginData_PluginNotFound", func(t *testing.T) {
		data, err := repo.GetPluginData(ctx, uuid.New())
		assert.Equal(t, simplecms.ErrPluginNotFound, err)
		assert.Nil(t, data)
	})

	t.Run("SetPluginData_PluginNotFound", func(t *testing.T) {
		err := repo.SetPluginData(ctx, uuid.New(), map[string]interface{}{"body": "x"})
		assert.Equal(t, simplecms.ErrPluginNotFound, err)
	})
}

func TestMemoryRepository_SiteOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("CreateSite", func(t *testing.T) {
		site := &simplecms.Site{
			ID:        uuid.New(),
			Name:      "Example",
			Domain:    "example.com",
			Languages: []string{"en", "de", "fr"},
			CreatedAt: time.Now(),
		}
		err := repo.CreateSite(ctx, site)
		assert.NoError(t, err)

		retrieved, err := repo.GetSite(ctx, site.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Example", retrieved.Name)
		assert.Equal(t, "example.com", retrieved.Domain)
		assert.Equal(t, []string{"en", "de", "fr"}, retrieved.Languages)
	})

	t.Run("GetSite_NotFound", func(t *testing.T) {
		site, err := repo.GetSite(ctx, uuid.New())
		assert.Equal(t, simplecms.ErrSiteNotFound, err)
		assert.Nil(t, site)
	})

	t.Run("ListSites", func(t *testing.T) {
		scoped := memory.New()
		now := time.Now()

		// Created out of order on purpose.
		second := &simplecms.Site{ID: uuid.New(), Name: "b", Domain: "b.example.com", CreatedAt: now.Add(-time.Hour)}
		require.NoError(t, scoped.CreateSite(ctx, second))
		first := &simplecms.Site{ID: uuid.New(), Name: "a", Domain: "a.example.com", CreatedAt: now.Add(-2 * time.Hour)}
		require.NoError(t, scoped.CreateSite(ctx, first))
		third := &simplecms.Site{ID: uuid.New(), Name: "c", Domain: "c.example.com", CreatedAt: now}
		require.NoError(t, scoped.CreateSite(ctx, third))

		sites, err := scoped.ListSites(ctx)
		require.NoError(t, err)
		require.Len(t, sites, 3)
		assert.Equal(t, "a.example.com", sites[0].Domain)
		assert.Equal(t, "b.example.com", sites[1].Domain)
		assert.Equal(t, "c.example.com", sites[2].Domain)
	})
}

func TestMemoryRepository_UserOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	site := seedSite(t, repo, "users.example.com")

	t.Run("CreateUser", func(t *testing.T) {
		user := &simplecms.User{
			ID:        uuid.New(),
			Username:  "alice",
			Email:     "alice@example.com",
			IsStaff:   true,
			IsActive:  true,
			CreatedAt: time.Now(),
		}
		err := repo.CreateUser(ctx, user)
		assert.NoError(t, err)

		retrieved, err := repo.GetUser(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, "alice", retrieved.Username)
		assert.True(t, retrieved.IsStaff)
		assert.False(t, retrieved.IsSuperuser)
	})

	t.Run("GetUser_NotFound", func(t *testing.T) {
		user, err := repo.GetUser(ctx, uuid.New())
		assert.Equal(t, simplecms.ErrUserNotFound, err)
		assert.Nil(t, user)
	})

	t.Run("UpdateUser", func(t *testing.T) {
		user := seedUser(t, repo, "bob")

		user.IsStaff = true
		user.IsSuperuser = true
		err := repo.UpdateUser(ctx, user)
		assert.NoError(t, err)

		retrieved, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, retrieved.IsStaff)
		assert.True(t, retrieved.IsSuperuser)
	})

	t.Run("UpdateUser_NotFound", func(t *testing.T) {
		user := &simplecms.User{ID: uuid.New(), Username: "ghost"}
		err := repo.UpdateUser(ctx, user)
		assert.Equal(t, simplecms.ErrUserNotFound, err)
	})

	t.Run("CreatePageUser", func(t *testing.T) {
		user := seedUser(t, repo, "carol")

		pageUser := &simplecms.PageUser{
			ID:          uuid.New(),
			UserID:      user.ID,
			CreatedBy:   "admin",
			Permissions: simplecms.AllPageUserPermissions(),
			CreatedAt:   time.Now(),
		}
		err := repo.CreatePageUser(ctx, pageUser)
		assert.NoError(t, err)

		retrieved, err := repo.GetPageUser(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, pageUser.ID, retrieved.ID)
		assert.Equal(t, "admin", retrieved.CreatedBy)
		assert.True(t, retrieved.Permissions.CanAddPage)
	})

	t.Run("CreatePageUser_UserNotFound", func(t *testing.T) {
		pageUser := &simplecms.PageUser{
			ID:     uuid.New(),
			UserID: uuid.New(),
		}
		err := repo.CreatePageUser(ctx, pageUser)
		assert.Equal(t, simplecms.ErrUserNotFound, err)
	})

	t.Run("GetPageUser_NotFound", func(t *testing.T) {
		pageUser, err := repo.GetPageUser(ctx, uuid.New())
		assert.Equal(t, simplecms.ErrUserNotFound, err)
		assert.Nil(t, pageUser)
	})

	t.Run("CreatePagePermission", func(t *testing.T) {
		user := seedUser(t, repo, "dave")
		target := seedPage(t, repo, site.ID, nil)

		permission := &simplecms.PagePermission{
			ID:        uuid.New(),
			PageID:    target.ID,
			UserID:    user.ID,
			GrantOn:   simplecms.AccessPageAndDescendants,
			Flags:     simplecms.PermissionFlags{CanChange: true},
			CreatedAt: time.Now(),
		}
		err := repo.CreatePagePermission(ctx, permission)
		assert.NoError(t, err)

		permissions, err := repo.ListPagePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, permissions, 1)
		assert.Equal(t, target.ID, permissions[0].PageID)
		assert.True(t, permissions[0].Flags.CanChange)
		assert.False(t, permissions[0].Flags.CanPublish)
	})

	t.Run("CreatePagePermission_PageNotFound", func(t *testing.T) {
		user := seedUser(t, repo, "erin")

		permission := &simplecms.PagePermission{
			ID:     uuid.New(),
			PageID: uuid.New(),
			UserID: user.ID,
		}
		err := repo.CreatePagePermission(ctx, permission)
		assert.Equal(t, simplecms.ErrPageNotFound, err)
	})

	t.Run("CreatePagePermission_UserNotFound", func(t *testing.T) {
		target := seedPage(t, repo, site.ID, nil)

		permission := &simplecms.PagePermission{
			ID:     uuid.New(),
			PageID: target.ID,
			UserID: uuid.New(),
		}
		err := repo.CreatePagePermission(ctx, permission)
		assert.Equal(t, simplecms.ErrUserNotFound, err)
	})

	t.Run("ListPagePermissions_FiltersByUser", func(t *testing.T) {
		granted := seedUser(t, repo, "frank")
		other := seedUser(t, repo, "grace")
		target := seedPage(t, repo, site.ID, nil)

		require.NoError(t, repo.CreatePagePermission(ctx, &simplecms.PagePermission{
			ID:     uuid.New(),
			PageID: target.ID,
			UserID: granted.ID,
		}))

		permissions, err := repo.ListPagePermissions(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, permissions)
	})

	t.Run("CreateGlobalPagePermission", func(t *testing.T) {
		user := seedUser(t, repo, "holly")

		siteIDs := []uuid.UUID{site.ID}
		permission := &simplecms.GlobalPagePermission{
			ID:             uuid.New(),
			UserID:         user.ID,
			SiteIDs:        siteIDs,
			Flags:          simplecms.AllPermissionFlags(),
			CanRecoverPage: true,
			CreatedAt:      time.Now(),
		}
		err := repo.CreateGlobalPagePermission(ctx, permission)
		assert.NoError(t, err)

		// The stored grant keeps its own copy of the site list.
		siteIDs[0] = uuid.New()

		permissions, err := repo.ListGlobalPagePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, permissions, 1)
		assert.Equal(t, []uuid.UUID{site.ID}, permissions[0].SiteIDs)
		assert.True(t, permissions[0].CanRecoverPage)
		assert.True(t, permissions[0].Flags.CanPublish)
	})

	t.Run("CreateGlobalPagePermission_UserNotFound", func(t *testing.T) {
		permission := &simplecms.GlobalPagePermission{
			ID:     uuid.New(),
			UserID: uuid.New(),
		}
		err := repo.CreateGlobalPagePermission(ctx, permission)
		assert.Equal(t, simplecms.ErrUserNotFound, err)
	})
}

func TestMemoryRepository_PublishPage(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("FirstPublish", func(t *testing.T) {
		site := seedSite(t, repo, "publish.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		draft.InNavigation = true
		draft.ReverseID = "home"
		require.NoError(t, repo.UpdatePage(ctx, draft))
		seedTitle(t, repo, draft.ID, "en", "Home", "home")

		ok, err := repo.PublishPage(ctx, draft.ID, "en", "alice")
		assert.NoError(t, err)
		assert.True(t, ok)

		published, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		require.NotNil(t, published.PublicID)
		assert.NotNil(t, published.PublicationDate)
		assert.Equal(t, "alice", published.ChangedBy)

		public, err := repo.GetPage(ctx, *published.PublicID)
		require.NoError(t, err)
		assert.False(t, public.IsDraft)
		require.NotNil(t, public.DraftID)
		assert.Equal(t, draft.ID, *public.DraftID)
		assert.Equal(t, site.ID, public.SiteID)
		assert.Equal(t, "page.html", public.TemplateName)
		assert.True(t, public.InNavigation)
		assert.Equal(t, "home", public.ReverseID)
		assert.Equal(t, draft.CreatedBy, public.CreatedBy)
		assert.True(t, public.CreatedAt.Equal(draft.CreatedAt))

		draftTitle, err := repo.GetTitle(ctx, draft.ID, "en")
		require.NoError(t, err)
		assert.True(t, draftTitle.Published)

		publicTitle, err := repo.GetTitle(ctx, *published.PublicID, "en")
		require.NoError(t, err)
		assert.True(t, publicTitle.Published)
		assert.Equal(t, "Home", publicTitle.Title)
		assert.Equal(t, "home", publicTitle.Slug)
		assert.Equal(t, "home", publicTitle.Path)
	})

	t.Run("RepublishReusesPublicPage", func(t *testing.T) {
		site := seedSite(t, repo, "republish.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, draft.ID, "en", "Docs", "docs")

		ok, err := repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)
		require.True(t, ok)

		first, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		require.NotNil(t, first.PublicID)
		publicID := *first.PublicID
		firstDate := first.PublicationDate
		require.NotNil(t, firstDate)

		first.TemplateName = "landing.html"
		require.NoError(t, repo.UpdatePage(ctx, first))

		ok, err = repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)
		require.True(t, ok)

		second, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		require.NotNil(t, second.PublicID)
		assert.Equal(t, publicID, *second.PublicID)
		// The publication date is recorded once.
		assert.True(t, second.PublicationDate.Equal(*firstDate))

		public, err := repo.GetPage(ctx, publicID)
		require.NoError(t, err)
		assert.Equal(t, "landing.html", public.TemplateName)
	})

	t.Run("ChangedByKeptWhenEmpty", func(t *testing.T) {
		site := seedSite(t, repo, "changedby.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, draft.ID, "en", "Team", "team")

		_, err := repo.PublishPage(ctx, draft.ID, "en", "alice")
		require.NoError(t, err)

		_, err = repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)

		page, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", page.ChangedBy)
	})

	t.Run("NoTitleInLanguage", func(t *testing.T) {
		site := seedSite(t, repo, "notitle.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, draft.ID, "en", "Shop", "shop")

		ok, err := repo.PublishPage(ctx, draft.ID, "de", "")
		assert.NoError(t, err)
		assert.False(t, ok)

		page, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		assert.Nil(t, page.PublicID)
	})

	t.Run("UnpublishedAncestorBlocks", func(t *testing.T) {
		site := seedSite(t, repo, "ancestor.example.com")
		parent := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, parent.ID, "en", "Products", "products")
		child := seedPage(t, repo, site.ID, &parent.ID)
		seedTitle(t, repo, child.ID, "en", "Widgets", "widgets")

		ok, err := repo.PublishPage(ctx, child.ID, "en", "")
		assert.NoError(t, err)
		assert.False(t, ok)

		// Publishing the parent unblocks the child, and the public child
		// hangs below the public parent.
		ok, err = repo.PublishPage(ctx, parent.ID, "en", "")
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = repo.PublishPage(ctx, child.ID, "en", "")
		require.NoError(t, err)
		require.True(t, ok)

		parentPage, err := repo.GetPage(ctx, parent.ID)
		require.NoError(t, err)
		require.NotNil(t, parentPage.PublicID)
		childPage, err := repo.GetPage(ctx, child.ID)
		require.NoError(t, err)
		require.NotNil(t, childPage.PublicID)

		publicChild, err := repo.GetPage(ctx, *childPage.PublicID)
		require.NoError(t, err)
		require.NotNil(t, publicChild.ParentID)
		assert.Equal(t, *parentPage.PublicID, *publicChild.ParentID)
	})

	t.Run("NotADraft", func(t *testing.T) {
		site := seedSite(t, repo, "notdraft.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, draft.ID, "en", "Legal", "legal")

		_, err := repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)

		page, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		require.NotNil(t, page.PublicID)

		_, err = repo.PublishPage(ctx, *page.PublicID, "en", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "is not a draft")
	})

	t.Run("PageNotFound", func(t *testing.T) {
		ok, err := repo.PublishPage(ctx, uuid.New(), "en", "")
		assert.Equal(t, simplecms.ErrPageNotFound, err)
		assert.False(t, ok)
	})

	t.Run("CopiesPluginsWithData", func(t *testing.T) {
		site := seedSite(t, repo, "content.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, draft.ID, "en", "Features", "features")
		placeholder := seedPlaceholder(t, repo, draft.ID, "content")

		root := seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		child := seedPlugin(t, repo, placeholder.ID, &root.ID, "en", 0)
		require.NoError(t, repo.SetPluginData(ctx, root.ID, map[string]interface{}{"body": "<p>Fast</p>"}))

		_, err := repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)

		page, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		require.NotNil(t, page.PublicID)

		publicPlaceholders, err := repo.ListPlaceholders(ctx, *page.PublicID)
		require.NoError(t, err)
		require.Len(t, publicPlaceholders, 1)
		assert.Equal(t, "content", publicPlaceholders[0].Slot)

		publicPlugins, err := repo.ListPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: publicPlaceholders[0].ID,
			Language:      "en",
		})
		require.NoError(t, err)
		require.Len(t, publicPlugins, 2)
		assert.NotEqual(t, root.ID, publicPlugins[0].ID)
		assert.Nil(t, publicPlugins[0].ParentID)
		require.NotNil(t, publicPlugins[1].ParentID)
		assert.Equal(t, publicPlugins[0].ID, *publicPlugins[1].ParentID)
		assert.NotEqual(t, child.ID, publicPlugins[1].ID)

		data, err := repo.GetPluginData(ctx, publicPlugins[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "<p>Fast</p>", data["body"])
	})

	t.Run("ReplacesPublicPluginsOnRepublish", func(t *testing.T) {
		site := seedSite(t, repo, "replace.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, draft.ID, "en", "Pricing", "pricing")
		placeholder := seedPlaceholder(t, repo, draft.ID, "content")
		seedPlugin(t, repo, placeholder.ID, nil, "en", 0)

		_, err := repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)

		seedPlugin(t, repo, placeholder.ID, nil, "en", 1)
		_, err = repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)

		page, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		publicPlaceholders, err := repo.ListPlaceholders(ctx, *page.PublicID)
		require.NoError(t, err)
		require.Len(t, publicPlaceholders, 1)

		count, err := repo.CountPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: publicPlaceholders[0].ID,
			Language:      "en",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("OtherLanguageContentSurvives", func(t *testing.T) {
		site := seedSite(t, repo, "languages.example.com")
		draft := seedPage(t, repo, site.ID, nil)
		seedTitle(t, repo, draft.ID, "en", "Support", "support")
		seedTitle(t, repo, draft.ID, "de", "Hilfe", "hilfe")
		placeholder := seedPlaceholder(t, repo, draft.ID, "content")
		seedPlugin(t, repo, placeholder.ID, nil, "en", 0)
		seedPlugin(t, repo, placeholder.ID, nil, "de", 0)

		_, err := repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)
		_, err = repo.PublishPage(ctx, draft.ID, "de", "")
		require.NoError(t, err)
		// Republishing one language leaves the other language's public
		// plugins in place.
		_, err = repo.PublishPage(ctx, draft.ID, "en", "")
		require.NoError(t, err)

		page, err := repo.GetPage(ctx, draft.ID)
		require.NoError(t, err)
		publicPlaceholders, err := repo.ListPlaceholders(ctx, *page.PublicID)
		require.NoError(t, err)
		require.Len(t, publicPlaceholders, 1)

		count, err := repo.CountPlugins(ctx, simplecms.PluginFilter{
			PlaceholderID: publicPlaceholders[0].ID,
			Language:      "de",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestMemoryRepository_RevisionOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	site := seedSite(t, repo, "revisions.example.com")

	t.Run("CreateRevision", func(t *testing.T) {
		page := seedPage(t, repo, site.ID, nil)

		first := &simplecms.Revision{
			ID:        uuid.New(),
			PageID:    page.ID,
			UserName:  "alice",
			Comment:   "Initial version.",
			CreatedAt: time.Now(),
		}
		require.NoError(t, repo.CreateRevision(ctx, first))
		second := &simplecms.Revision{
			ID:        uuid.New(),
			PageID:    page.ID,
			UserName:  "bob",
			Comment:   "Reworded the intro.",
			CreatedAt: time.Now(),
		}
		require.NoError(t, repo.CreateRevision(ctx, second))

		revisions, err := repo.ListRevisions(ctx, page.ID)
		require.NoError(t, err)
		require.Len(t, revisions, 2)
		assert.Equal(t, "Initial version.", revisions[0].Comment)
		assert.Equal(t, "alice", revisions[0].UserName)
		assert.Equal(t, "Reworded the intro.", revisions[1].Comment)
	})

	t.Run("CreateRevision_PageNotFound", func(t *testing.T) {
		revision := &simplecms.Revision{
			ID:     uuid.New(),
			PageID: uuid.New(),
		}
		err := repo.CreateRevision(ctx, revision)
		assert.Equal(t, simplecms.ErrPageNotFound, err)
	})

	t.Run("ListRevisions_Empty", func(t *testing.T) {
		revisions, err := repo.ListRevisions(ctx, uuid.New())
		assert.NoError(t, err)
		assert.NotNil(t, revisions)
		assert.Empty(t, revisions)
	})
}

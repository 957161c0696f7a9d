package simplecms

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a human-readable string into a URL-safe slug. Text is
// decomposed (NFKD) with combining marks stripped, lowercased and
// trimmed; characters outside [a-z0-9_] are dropped, while whitespace and
// hyphen runs collapse to a single hyphen.
func Slugify(source string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, source)
	if err != nil {
		folded = source
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || unicode.IsSpace(r):
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// uniqueSlug returns base, or the first "base-N" (N = 1, 2, ...) not
// present in used.
func uniqueSlug(base string, used []string) string {
	if len(used) == 0 {
		return base
	}
	taken := make(map[string]struct{}, len(used))
	for _, s := range used {
		taken[s] = struct{}{}
	}
	slug := base
	for i := 1; ; i++ {
		if _, ok := taken[slug]; !ok {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// GenerateValidSlug derives a slug from source that is unique among the
// titles of sibling pages under parentID (nil for the root level) in the
// given language. Collisions append -1, -2, ... to the base slug.
func (s *service) GenerateValidSlug(ctx context.Context, source string, parentID *uuid.UUID, language string) (string, error) {
	used, err := s.repository.ListSiblingSlugs(ctx, parentID, language)
	if err != nil {
		return "", fmt.Errorf("failed to list sibling slugs: %w", err)
	}
	return uniqueSlug(Slugify(source), used), nil
}

// derivePath joins a parent URL path with a slug segment.
func derivePath(parentPath, slug string) string {
	if parentPath == "" {
		return slug
	}
	return parentPath + "/" + slug
}

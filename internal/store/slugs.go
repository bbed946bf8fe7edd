package store

import (
	"context"
	"fmt"

	"github.com/01moynul/koodos-golang/internal/slugs"
)

var slugTables = map[slugs.EntityType]string{
	slugs.EntityCategory: "categories",
	slugs.EntityArticle:  "articles",
}

// SlugExists implements slugs.Exister. Table names come from a whitelist,
// never from the caller.
func (s *Store) SlugExists(ctx context.Context, entity slugs.EntityType, slug string, excludeID int64) (bool, error) {
	table, ok := slugTables[entity]
	if !ok {
		return false, fmt.Errorf("%w: %q", slugs.ErrUnknownEntity, entity)
	}

	query := "SELECT EXISTS(SELECT 1 FROM " + table + " WHERE slug = ? AND id <> ?)"
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("probe %s slug: %w", entity, err)
	}
	return exists, nil
}

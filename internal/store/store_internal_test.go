package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/slugs"
)

func TestMapSlugConflict(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'elden-ring' for key 'uq_articles_slug'"}

	err := mapSlugConflict(fmt.Errorf("exec: %w", dup))
	require.ErrorIs(t, err, slugs.ErrDuplicateSlug)

	other := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	assert.Same(t, other, mapSlugConflict(other))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapSlugConflict(plain))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(sql.ErrNoRows), ErrNotFound)
	boom := errors.New("boom")
	assert.Equal(t, boom, notFound(boom))
}

func TestKeywordsJSON(t *testing.T) {
	raw, err := encodeKeywords(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	raw, err = encodeKeywords([]string{"elden", "ring"})
	require.NoError(t, err)

	got, err := decodeKeywords(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"elden", "ring"}, got)

	got, err = decodeKeywords(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = decodeKeywords([]byte("{not json"))
	assert.Error(t, err)
}

func TestArticleWhere(t *testing.T) {
	where, args := articleWhere(models.ArticleFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = articleWhere(models.ArticleFilter{
		Status:       models.ArticleStatusPublished,
		Vertical:     "games",
		Kind:         models.ArticleKindReview,
		CategorySlug: "rpg",
	})
	assert.Equal(t, " WHERE a.status = ? AND a.vertical = ? AND a.kind = ? AND c.slug = ?", where)
	assert.Equal(t, []any{"published", "games", "review", "rpg"}, args)
}

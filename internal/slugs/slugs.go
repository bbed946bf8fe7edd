// Package slugs derives URL-safe identifiers from names and keeps them unique
// within an entity type.
package slugs

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	gosimple "github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/metrics"
)

// EntityType scopes slug uniqueness. Categories and articles have separate namespaces.
type EntityType string

const (
	EntityCategory EntityType = "category"
	EntityArticle  EntityType = "article"
)

func (e EntityType) Valid() bool {
	return e == EntityCategory || e == EntityArticle
}

const (
	// MaxBaseLength leaves room for a numeric suffix inside a VARCHAR(191) column.
	MaxBaseLength       = 180
	DefaultMaxAttempts  = 1000
	fallbackPrefix      = "untitled"
	fallbackTokenLength = 8
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Exister is the "does this slug exist" oracle. excludeID == 0 means no
// exclusion; otherwise a row with that id does not count as a collision.
type Exister interface {
	SlugExists(ctx context.Context, entity EntityType, slug string, excludeID int64) (bool, error)
}

// ExisterFunc adapts a plain function to Exister.
type ExisterFunc func(ctx context.Context, entity EntityType, slug string, excludeID int64) (bool, error)

func (f ExisterFunc) SlugExists(ctx context.Context, entity EntityType, slug string, excludeID int64) (bool, error) {
	return f(ctx, entity, slug, excludeID)
}

// Normalize trims, transliterates and lower-cases name, then collapses every
// run of non-alphanumerics to a single hyphen and strips hyphens at both ends.
// Symbols are separators, never spelled out: "Rock & Roll" is "rock-roll".
// The result may be empty.
func Normalize(name string) string {
	s := unidecode.Unidecode(strings.TrimSpace(name))
	s = nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxBaseLength {
		s = strings.TrimRight(s[:MaxBaseLength], "-")
	}
	return s
}

// Valid reports whether s already has the shape Normalize produces.
func Valid(s string) bool {
	return len(s) <= MaxBaseLength+8 &&
		gosimple.IsSlug(s) &&
		!strings.Contains(s, "_") &&
		!strings.Contains(s, "--")
}

// Service assigns unique slugs by probing an Exister.
type Service struct {
	exister     Exister
	maxAttempts int
	token       func() string
}

type Option func(*Service)

// WithMaxAttempts bounds the suffix loop. Values below 1 keep the default.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithTokenSource replaces the random token used when a name normalizes to "".
func WithTokenSource(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.token = fn
		}
	}
}

func NewService(exister Exister, opts ...Option) *Service {
	s := &Service{
		exister:     exister,
		maxAttempts: DefaultMaxAttempts,
		token:       randomToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign returns a slug for name that no other entity of the same type holds.
// The base candidate is tried first, then base-1, base-2 and so on.
// The caller must persist the slug in the same operation that writes the entity.
func (s *Service) Assign(ctx context.Context, name string, entity EntityType, excludeID int64) (string, error) {
	if !entity.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}

	base := Normalize(name)
	if base == "" {
		base = fallbackPrefix + "-" + s.token()
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		exists, err := s.exister.SlugExists(ctx, entity, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}

		metrics.SlugCollisions.WithLabelValues(string(entity)).Inc()
		logger.Log.Debug("slug taken, trying next suffix",
			zap.String("entity", string(entity)),
			zap.String("candidate", candidate))
	}

	metrics.SlugExhausted.WithLabelValues(string(entity)).Inc()
	logger.Log.Warn("slug attempts exhausted",
		zap.String("entity", string(entity)),
		zap.String("base", base),
		zap.Int("attempts", s.maxAttempts))

	return "", fmt.Errorf("%w: base %q after %d attempts", ErrSlugGenerationExhausted, base, s.maxAttempts)
}

// UpdateRequest describes an edit to a slug-bearing entity.
type UpdateRequest struct {
	ID          int64
	CurrentSlug string
	OldName     string
	NewName     string
	// Explicit is a caller-supplied slug override; nil means "derive".
	Explicit *string
}

// ForUpdate picks the slug an entity should carry after an update. An explicit
// slug wins; otherwise the slug is re-derived only when the name changed.
// The entity's own row never counts as a collision.
func (s *Service) ForUpdate(ctx context.Context, entity EntityType, req UpdateRequest) (string, error) {
	switch {
	case req.Explicit != nil && strings.TrimSpace(*req.Explicit) != "":
		return s.Assign(ctx, *req.Explicit, entity, req.ID)
	case req.NewName != req.OldName:
		return s.Assign(ctx, req.NewName, entity, req.ID)
	default:
		return req.CurrentSlug, nil
	}
}

// RetryOnDuplicate runs attempt and, if it lost a slug race against a
// concurrent writer, runs it exactly once more. attempt must recompute the
// slug on every call.
func RetryOnDuplicate(ctx context.Context, attempt func(ctx context.Context) error) error {
	err := attempt(ctx)
	if !errors.Is(err, ErrDuplicateSlug) {
		return err
	}

	logger.Log.Info("slug race lost, retrying with a fresh slug", zap.Error(err))

	if err := attempt(ctx); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			return fmt.Errorf("slug still taken after retry: %w", err)
		}
		return err
	}
	return nil
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:fallbackTokenLength]
}

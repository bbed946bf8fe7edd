package slugs

import "errors"

var (
	// ErrSlugGenerationExhausted means every suffix up to the attempt bound was taken.
	ErrSlugGenerationExhausted = errors.New("slugs: no free slug within attempt bound")

	// ErrDuplicateSlug is returned by stores when the storage-level unique
	// constraint rejects a slug that the probe reported as free.
	ErrDuplicateSlug = errors.New("slugs: slug already taken")

	ErrUnknownEntity = errors.New("slugs: unknown entity type")
)

package seo

import "errors"

var (
	ErrSuggestionNotFound   = errors.New("seo: suggestion not found")
	ErrSuggestionNotPending = errors.New("seo: suggestion already reviewed")
	ErrEditedTextRequired   = errors.New("seo: edited text is required for an edited decision")
	ErrInvalidDecision      = errors.New("seo: decision must be approved, edited or rejected")
	ErrPageNotFound         = errors.New("seo: page not found")

	// errEmptyGeneration marks a generation response with no usable text.
	errEmptyGeneration = errors.New("seo: generation service returned no text")
)

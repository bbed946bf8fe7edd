// Package seo proposes meta descriptions for crawled pages and applies the
// editorial review that publishes them.
package seo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/metrics"
	"github.com/01moynul/koodos-golang/internal/models"
)

const (
	SourceAI       = "ai"
	SourceTemplate = "template"
)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AppliedReview is the state change a review writes. PublishMeta is nil for rejections.
type AppliedReview struct {
	SuggestionID int64
	PageID       int64
	Status       string
	EditedText   *string
	Reviewer     string
	PublishMeta  *string
}

// Repository persists suggestions. ApplyReview must only transition rows
// still pending and must update the page in the same transaction; it returns
// ErrSuggestionNotPending when a concurrent reviewer got there first.
type Repository interface {
	CreateSuggestion(ctx context.Context, s *models.MetaSuggestion) error
	GetSuggestion(ctx context.Context, id int64) (*models.MetaSuggestion, error)
	ApplyReview(ctx context.Context, review AppliedReview) error
}

type Pipeline struct {
	gen     Generator
	repo    Repository
	timeout time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

type Option func(*Pipeline)

// WithGenerationTimeout bounds each generation call. Zero means no extra bound.
func WithGenerationTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithRand sets the source used to pick fallback templates.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pipeline) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// NewPipeline wires the pipeline. gen may be nil, in which case every
// suggestion comes from the fallback templates.
func NewPipeline(gen Generator, repo Repository, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:     gen,
		repo:    repo,
		timeout: 15 * time.Second,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6b6f6f646f73)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Draft is a proposed description before it is stored.
type Draft struct {
	Text       string
	Keywords   []string
	Confidence float64
	Source     string
}

// Draft builds a suggestion for page without persisting it. Generation
// failures are absorbed by the template fallback and never returned.
func (p *Pipeline) Draft(ctx context.Context, page models.SeoPage) Draft {
	keywords := ExtractKeywords(page.Title+" "+page.ContentPreview, MaxKeywords)

	text, source := p.generate(ctx, page, keywords)
	text = Truncate(text, MaxMetaLength)

	return Draft{
		Text:       text,
		Keywords:   keywords,
		Confidence: Confidence(text, keywords),
		Source:     source,
	}
}

func (p *Pipeline) generate(ctx context.Context, page models.SeoPage, keywords []string) (string, string) {
	if p.gen != nil {
		genCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			genCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}

		raw, err := p.gen.Generate(genCtx, BuildPrompt(page.Title, page.ContentPreview, keywords))
		if err == nil {
			if text := Clean(raw); text != "" {
				return text, SourceAI
			}
			err = errEmptyGeneration
		}
		logger.Log.Warn("generation service unavailable, using template",
			zap.String("url", page.URL),
			zap.Error(err))
	}

	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return FallbackDescription(p.rng, page.Title, keywords), SourceTemplate
}

// Propose drafts a suggestion for page and stores it as pending.
func (p *Pipeline) Propose(ctx context.Context, page models.SeoPage) (*models.MetaSuggestion, error) {
	draft := p.Draft(ctx, page)

	now := p.now()
	suggestion := &models.MetaSuggestion{
		PageID:     page.ID,
		Suggestion: draft.Text,
		Keywords:   draft.Keywords,
		Confidence: draft.Confidence,
		Source:     draft.Source,
		Status:     models.SuggestionPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.repo.CreateSuggestion(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("store suggestion: %w", err)
	}

	metrics.SuggestionsGenerated.WithLabelValues(draft.Source).Inc()
	logger.Log.Info("meta suggestion proposed",
		zap.Int64("page_id", page.ID),
		zap.Int64("suggestion_id", suggestion.ID),
		zap.String("source", draft.Source),
		zap.Float64("confidence", draft.Confidence))

	return suggestion, nil
}

// ReviewRequest is a human decision on a pending suggestion.
type ReviewRequest struct {
	SuggestionID int64
	Decision     string
	EditedText   string
	Reviewer     string
}

// Review applies a terminal decision. Approved publishes the suggestion text
// to the page, edited publishes EditedText, rejected leaves the page alone.
func (p *Pipeline) Review(ctx context.Context, req ReviewRequest) (*models.MetaSuggestion, error) {
	edited := strings.TrimSpace(req.EditedText)

	switch req.Decision {
	case models.SuggestionApproved, models.SuggestionRejected:
	case models.SuggestionEdited:
		if edited == "" {
			return nil, ErrEditedTextRequired
		}
	default:
		return nil, ErrInvalidDecision
	}

	suggestion, err := p.repo.GetSuggestion(ctx, req.SuggestionID)
	if err != nil {
		return nil, err
	}
	if suggestion.Status != models.SuggestionPending {
		return nil, ErrSuggestionNotPending
	}

	review := AppliedReview{
		SuggestionID: suggestion.ID,
		PageID:       suggestion.PageID,
		Status:       req.Decision,
		Reviewer:     req.Reviewer,
	}
	switch req.Decision {
	case models.SuggestionApproved:
		publish := suggestion.Suggestion
		review.PublishMeta = &publish
	case models.SuggestionEdited:
		review.EditedText = &edited
		review.PublishMeta = &edited
	}

	if err := p.repo.ApplyReview(ctx, review); err != nil {
		return nil, err
	}

	suggestion.Status = review.Status
	suggestion.EditedText = review.EditedText
	reviewer := req.Reviewer
	suggestion.ApprovedBy = &reviewer
	suggestion.UpdatedAt = p.now()

	metrics.SuggestionReviews.WithLabelValues(req.Decision).Inc()
	logger.Log.Info("meta suggestion reviewed",
		zap.Int64("suggestion_id", suggestion.ID),
		zap.String("decision", req.Decision),
		zap.String("reviewer", req.Reviewer))

	return suggestion, nil
}

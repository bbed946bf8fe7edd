package seo_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/seo"
)

type fakeRepo struct {
	mu          sync.Mutex
	nextID      int64
	suggestions map[int64]*models.MetaSuggestion
	pageMeta    map[int64]*string
	applyErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		suggestions: map[int64]*models.MetaSuggestion{},
		pageMeta:    map[int64]*string{},
	}
}

func (r *fakeRepo) CreateSuggestion(_ context.Context, s *models.MetaSuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	stored := *s
	r.suggestions[s.ID] = &stored
	return nil
}

func (r *fakeRepo) GetSuggestion(_ context.Context, id int64) (*models.MetaSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok {
		return nil, seo.ErrSuggestionNotFound
	}
	out := *s
	return &out, nil
}

func (r *fakeRepo) ApplyReview(_ context.Context, review seo.AppliedReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return r.applyErr
	}
	s, ok := r.suggestions[review.SuggestionID]
	if !ok {
		return seo.ErrSuggestionNotFound
	}
	if s.Status != models.SuggestionPending {
		return seo.ErrSuggestionNotPending
	}
	s.Status = review.Status
	s.EditedText = review.EditedText
	s.ApprovedBy = &review.Reviewer
	if review.PublishMeta != nil {
		meta := *review.PublishMeta
		r.pageMeta[review.PageID] = &meta
	}
	return nil
}

func (r *fakeRepo) meta(pageID int64) *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageMeta[pageID]
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var testPage = models.SeoPage{
	ID:             42,
	URL:            "https://koodos.example/reviews/zelda-tears-of-the-kingdom",
	Title:          "Zelda Tears of the Kingdom Review",
	ContentPreview: "Zelda returns to Hyrule. The kingdom is vast and Zelda fans will love the sky islands of the kingdom.",
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestPropose_UsesGenerator(t *testing.T) {
	repo := newFakeRepo()
	var gotPrompt string
	gen := generatorFunc(func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "\"Our Zelda Tears of the Kingdom review: sky islands, Ultrahand builds and a vast Hyrule make this the most inventive Zelda yet. Read the full verdict.\"", nil
	})
	p := seo.NewPipeline(gen, repo, seo.WithRand(seeded()))

	s, err := p.Propose(context.Background(), testPage)
	require.NoError(t, err)

	require.Equal(t, int64(1), s.ID)
	require.Equal(t, testPage.ID, s.PageID)
	require.Equal(t, models.SuggestionPending, s.Status)
	require.Equal(t, seo.SourceAI, s.Source)
	require.False(t, strings.HasPrefix(s.Suggestion, "\""))
	require.LessOrEqual(t, len([]rune(s.Suggestion)), seo.MaxMetaLength)
	require.Equal(t, []string{"zelda", "kingdom", "tears", "review", "returns", "hyrule", "vast", "fans", "will", "love"}, s.Keywords)
	require.InDelta(t, 1.0, s.Confidence, 1e-9)
	require.Contains(t, gotPrompt, "zelda, kingdom, tears, review, returns")

	stored, err := repo.GetSuggestion(context.Background(), s.ID)
	require.NoError(t, err)
	require.Equal(t, s.Suggestion, stored.Suggestion)
}

func TestPropose_TruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("word ", 60)
	gen := generatorFunc(func(context.Context, string) (string, error) { return long, nil })
	p := seo.NewPipeline(gen, newFakeRepo())

	s, err := p.Propose(context.Background(), testPage)
	require.NoError(t, err)
	require.Len(t, []rune(s.Suggestion), seo.MaxMetaLength)
}

func TestPropose_FallsBackOnGeneratorError(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("503 service unavailable")
	})
	p := seo.NewPipeline(gen, newFakeRepo(), seo.WithRand(seeded()))

	s, err := p.Propose(context.Background(), testPage)
	require.NoError(t, err)
	require.Equal(t, seo.SourceTemplate, s.Source)
	require.Contains(t, s.Suggestion, "zelda")
	require.Contains(t, s.Suggestion, "kingdom")
	require.GreaterOrEqual(t, s.Confidence, 0.7)
}

func TestPropose_FallsBackOnEmptyOutput(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) { return "  \n ", nil })
	p := seo.NewPipeline(gen, newFakeRepo())

	s, err := p.Propose(context.Background(), testPage)
	require.NoError(t, err)
	require.Equal(t, seo.SourceTemplate, s.Source)
	require.NotEmpty(t, s.Suggestion)
}

func TestPropose_NilGeneratorUsesTemplates(t *testing.T) {
	p := seo.NewPipeline(nil, newFakeRepo())

	s, err := p.Propose(context.Background(), testPage)
	require.NoError(t, err)
	require.Equal(t, seo.SourceTemplate, s.Source)
}

func TestPropose_GeneratorTimeout(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	p := seo.NewPipeline(gen, newFakeRepo(), seo.WithGenerationTimeout(10*time.Millisecond))

	start := time.Now()
	s, err := p.Propose(context.Background(), testPage)
	require.NoError(t, err)
	require.Equal(t, seo.SourceTemplate, s.Source)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestPropose_FallbackTemplatesAreFixed(t *testing.T) {
	p := seo.NewPipeline(nil, newFakeRepo(), seo.WithRand(seeded()))
	page := models.SeoPage{ID: 1, Title: "Alpha Beta", ContentPreview: "alpha alpha beta"}

	seen := map[string]bool{}
	for range 50 {
		seen[p.Draft(context.Background(), page).Text] = true
	}
	require.LessOrEqual(t, len(seen), 3)
	for text := range seen {
		require.Contains(t, text, "alpha")
		require.Contains(t, text, "beta")
	}
}

func proposeOne(t *testing.T, repo *fakeRepo, text string) *models.MetaSuggestion {
	t.Helper()
	gen := generatorFunc(func(context.Context, string) (string, error) { return text, nil })
	s, err := seo.NewPipeline(gen, repo).Propose(context.Background(), testPage)
	require.NoError(t, err)
	return s
}

func TestReview_ApproveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := proposeOne(t, repo, "Zelda review: a vast, inventive Hyrule.")
	p := seo.NewPipeline(nil, repo)

	reviewed, err := p.Review(ctx, seo.ReviewRequest{SuggestionID: s.ID, Decision: models.SuggestionApproved, Reviewer: "editor-7"})
	require.NoError(t, err)
	require.Equal(t, models.SuggestionApproved, reviewed.Status)
	require.Equal(t, "editor-7", *reviewed.ApprovedBy)

	meta := repo.meta(testPage.ID)
	require.NotNil(t, meta)
	require.Equal(t, s.Suggestion, *meta)
}

func TestReview_EditedPublishesEditedText(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := proposeOne(t, repo, "Generated text")
	p := seo.NewPipeline(nil, repo)

	reviewed, err := p.Review(ctx, seo.ReviewRequest{
		SuggestionID: s.ID, Decision: models.SuggestionEdited, EditedText: "  Hand-written description  ", Reviewer: "editor-1",
	})
	require.NoError(t, err)
	require.Equal(t, models.SuggestionEdited, reviewed.Status)
	require.Equal(t, "Hand-written description", *reviewed.EditedText)
	require.Equal(t, "Hand-written description", reviewed.FinalText())
	require.Equal(t, "Hand-written description", *repo.meta(testPage.ID))
}

func TestReview_EditedRequiresText(t *testing.T) {
	repo := newFakeRepo()
	s := proposeOne(t, repo, "Generated text")
	p := seo.NewPipeline(nil, repo)

	_, err := p.Review(context.Background(), seo.ReviewRequest{SuggestionID: s.ID, Decision: models.SuggestionEdited, EditedText: "   "})
	require.ErrorIs(t, err, seo.ErrEditedTextRequired)

	stored, err := repo.GetSuggestion(context.Background(), s.ID)
	require.NoError(t, err)
	require.Equal(t, models.SuggestionPending, stored.Status)
}

func TestReview_RejectLeavesPageAlone(t *testing.T) {
	repo := newFakeRepo()
	s := proposeOne(t, repo, "Generated text")
	p := seo.NewPipeline(nil, repo)

	reviewed, err := p.Review(context.Background(), seo.ReviewRequest{SuggestionID: s.ID, Decision: models.SuggestionRejected, Reviewer: "editor-2"})
	require.NoError(t, err)
	require.Equal(t, models.SuggestionRejected, reviewed.Status)
	require.Nil(t, repo.meta(testPage.ID))
}

func TestReview_TerminalStatesCannotBeReviewedAgain(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	s := proposeOne(t, repo, "First approved text")
	p := seo.NewPipeline(nil, repo)

	_, err := p.Review(ctx, seo.ReviewRequest{SuggestionID: s.ID, Decision: models.SuggestionApproved, Reviewer: "a"})
	require.NoError(t, err)

	for _, decision := range []string{models.SuggestionEdited, models.SuggestionRejected, models.SuggestionApproved} {
		t.Run(decision, func(t *testing.T) {
			_, err := p.Review(ctx, seo.ReviewRequest{SuggestionID: s.ID, Decision: decision, EditedText: "other", Reviewer: "b"})
			require.ErrorIs(t, err, seo.ErrSuggestionNotPending)
			require.Equal(t, "First approved text", *repo.meta(testPage.ID))
		})
	}
}

func TestReview_NotFound(t *testing.T) {
	p := seo.NewPipeline(nil, newFakeRepo())

	_, err := p.Review(context.Background(), seo.ReviewRequest{SuggestionID: 999, Decision: models.SuggestionApproved})
	require.ErrorIs(t, err, seo.ErrSuggestionNotFound)
}

func TestReview_InvalidDecision(t *testing.T) {
	p := seo.NewPipeline(nil, newFakeRepo())

	_, err := p.Review(context.Background(), seo.ReviewRequest{SuggestionID: 1, Decision: "maybe"})
	require.ErrorIs(t, err, seo.ErrInvalidDecision)
}

func TestReview_LostRaceSurfacesNotPending(t *testing.T) {
	repo := newFakeRepo()
	s := proposeOne(t, repo, "Generated text")
	repo.applyErr = fmt.Errorf("apply: %w", seo.ErrSuggestionNotPending)
	p := seo.NewPipeline(nil, repo)

	_, err := p.Review(context.Background(), seo.ReviewRequest{SuggestionID: s.ID, Decision: models.SuggestionApproved})
	require.ErrorIs(t, err, seo.ErrSuggestionNotPending)
}

func TestReview_ConcurrentReviewersOnlyOneWins(t *testing.T) {
	repo := newFakeRepo()
	s := proposeOne(t, repo, "Generated text")
	p := seo.NewPipeline(nil, repo)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := p.Review(context.Background(), seo.ReviewRequest{
				SuggestionID: s.ID, Decision: models.SuggestionEdited, EditedText: fmt.Sprintf("text %d", i), Reviewer: "r",
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, seo.ErrSuggestionNotPending)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

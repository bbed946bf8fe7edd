package handlers_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/01moynul/koodos-golang/internal/models"
	"github.com/01moynul/koodos-golang/internal/seo"
	"github.com/01moynul/koodos-golang/internal/slugs"
	"github.com/01moynul/koodos-golang/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store.
type fakeStore struct {
	mu sync.Mutex

	nextID      int64
	categories  map[int64]*models.Category
	articles    map[int64]*models.Article
	comments    map[int64]*models.Comment
	pages       map[int64]*models.SeoPage
	suggestions map[int64]*models.MetaSuggestion
	issues      []models.SeoIssue
	jobs        map[int64]*models.CrawlJob

	// duplicateOnce makes the next article/category write fail as if a
	// concurrent writer had taken the slug.
	duplicateOnce bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories:  make(map[int64]*models.Category),
		articles:    make(map[int64]*models.Article),
		comments:    make(map[int64]*models.Comment),
		pages:       make(map[int64]*models.SeoPage),
		suggestions: make(map[int64]*models.MetaSuggestion),
		jobs:        make(map[int64]*models.CrawlJob),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) SlugExists(_ context.Context, entity slugs.EntityType, slug string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch entity {
	case slugs.EntityCategory:
		for _, c := range f.categories {
			if c.Slug == slug && c.ID != excludeID {
				return true, nil
			}
		}
	case slugs.EntityArticle:
		for _, a := range f.articles {
			if a.Slug == slug && a.ID != excludeID {
				return true, nil
			}
		}
	default:
		return false, slugs.ErrUnknownEntity
	}
	return false, nil
}

func (f *fakeStore) takeDuplicate() bool {
	if f.duplicateOnce {
		f.duplicateOnce = false
		return true
	}
	return false
}

// --- categories ---

func (f *fakeStore) ListCategories(_ context.Context, vertical string) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Category{}
	for _, c := range f.categories {
		if vertical == "" || c.Vertical == vertical {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) GetCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateCategory(_ context.Context, cat *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takeDuplicate() {
		// Simulate the racing writer: it now owns the slug.
		f.categories[f.id()] = &models.Category{ID: f.nextID, Name: "racer", Slug: cat.Slug, Vertical: cat.Vertical}
		return slugs.ErrDuplicateSlug
	}
	cat.ID = f.id()
	cp := *cat
	f.categories[cat.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, cat *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[cat.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *cat
	f.categories[cat.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

// --- articles ---

func (f *fakeStore) categorySlug(id *int64) string {
	if id == nil {
		return ""
	}
	if c, ok := f.categories[*id]; ok {
		return c.Slug
	}
	return ""
}

func (f *fakeStore) ListArticles(_ context.Context, flt models.ArticleFilter) ([]models.Article, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Article
	for _, a := range f.articles {
		cp := *a
		cp.CategorySlug = f.categorySlug(a.CategoryID)
		if (flt.Status == "" || cp.Status == flt.Status) &&
			(flt.Vertical == "" || cp.Vertical == flt.Vertical) &&
			(flt.Kind == "" || cp.Kind == flt.Kind) &&
			(flt.CategorySlug == "" || cp.CategorySlug == flt.CategorySlug) {
			matched = append(matched, cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start := min(flt.Offset, total)
	end := total
	if flt.Limit > 0 {
		end = min(start+flt.Limit, total)
	}
	out := append([]models.Article{}, matched[start:end]...)
	return out, total, nil
}

func (f *fakeStore) GetArticle(_ context.Context, id int64) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	cp.CategorySlug = f.categorySlug(a.CategoryID)
	return &cp, nil
}

func (f *fakeStore) GetPublishedArticleBySlug(_ context.Context, slug string) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.articles {
		if a.Slug == slug && a.Status == models.ArticleStatusPublished {
			cp := *a
			cp.CategorySlug = f.categorySlug(a.CategoryID)
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateArticle(_ context.Context, a *models.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takeDuplicate() {
		f.articles[f.id()] = &models.Article{ID: f.nextID, Title: "racer", Slug: a.Slug, Status: models.ArticleStatusDraft}
		return slugs.ErrDuplicateSlug
	}
	a.ID = f.id()
	cp := *a
	f.articles[a.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateArticle(_ context.Context, a *models.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[a.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *a
	f.articles[a.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteArticle(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.articles, id)
	return nil
}

// --- comments ---

func (f *fakeStore) ListApprovedComments(_ context.Context, articleID int64) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.ArticleID == articleID && c.Status == models.CommentStatusApproved {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListComments(_ context.Context, status string, limit int) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.comments {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CreateComment(_ context.Context, cm *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm.ID = f.id()
	cm.CreatedAt = time.Now()
	cp := *cm
	f.comments[cm.ID] = &cp
	return nil
}

func (f *fakeStore) SetCommentStatus(_ context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeStore) DeleteComment(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

// --- seo ---

func (f *fakeStore) addPage(p models.SeoPage) *models.SeoPage {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id()
	f.pages[p.ID] = &p
	return &p
}

func (f *fakeStore) ListPages(_ context.Context, limit, offset int) ([]models.SeoPage, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.SeoPage{}
	for _, p := range f.pages {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	total := len(out)
	start := min(offset, total)
	end := min(start+limit, total)
	return out[start:end], total, nil
}

func (f *fakeStore) GetPage(_ context.Context, id int64) (*models.SeoPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return nil, seo.ErrPageNotFound
	}
	cp := *p
	for _, s := range f.suggestions {
		if s.PageID == id {
			cp.Suggestions = append(cp.Suggestions, *s)
		}
	}
	return &cp, nil
}

func (f *fakeStore) ListIssues(_ context.Context, kind string) ([]models.SeoIssue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.SeoIssue{}
	for _, is := range f.issues {
		if kind == "" || is.Kind == kind {
			out = append(out, is)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSuggestions(_ context.Context, status string) ([]models.MetaSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.MetaSuggestion{}
	for _, s := range f.suggestions {
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateSuggestion(_ context.Context, s *models.MetaSuggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.id()
	cp := *s
	f.suggestions[s.ID] = &cp
	return nil
}

func (f *fakeStore) GetSuggestion(_ context.Context, id int64) (*models.MetaSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.suggestions[id]
	if !ok {
		return nil, seo.ErrSuggestionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ApplyReview(_ context.Context, r seo.AppliedReview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.suggestions[r.SuggestionID]
	if !ok || s.Status != models.SuggestionPending {
		return seo.ErrSuggestionNotPending
	}
	s.Status = r.Status
	s.EditedText = r.EditedText
	reviewer := r.Reviewer
	s.ApprovedBy = &reviewer
	if r.PublishMeta != nil {
		meta := *r.PublishMeta
		f.pages[r.PageID].CurrentMeta = &meta
	}
	return nil
}

// --- jobs & dashboard ---

func (f *fakeStore) CreateCrawlJob(_ context.Context, baseURL string, maxPages int) (*models.CrawlJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &models.CrawlJob{ID: f.id(), BaseURL: baseURL, MaxPages: maxPages, Status: models.CrawlRunning}
	f.jobs[job.ID] = job
	cp := *job
	return &cp, nil
}

func (f *fakeStore) GetCrawlJob(_ context.Context, id int64) (*models.CrawlJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) DashboardStats(_ context.Context) (*models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &models.DashboardStats{Categories: len(f.categories), SeoPages: len(f.pages), OpenIssues: len(f.issues)}
	for _, a := range f.articles {
		switch a.Status {
		case models.ArticleStatusPublished:
			st.PublishedArticles++
		case models.ArticleStatusDraft:
			st.DraftArticles++
		}
	}
	for _, c := range f.comments {
		if c.Status == models.CommentStatusPending {
			st.PendingComments++
		}
	}
	for _, s := range f.suggestions {
		if s.Status == models.SuggestionPending {
			st.PendingSuggestions++
		}
	}
	return st, nil
}

// recordingCache is an ArticleCache that remembers invalidations.
type recordingCache struct {
	mu          sync.Mutex
	entries     map[string]models.Article
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string]models.Article)}
}

func (r *recordingCache) Get(_ context.Context, slug string) (*models.Article, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.entries[slug]
	if !ok {
		return nil, false
	}
	return &a, true
}

func (r *recordingCache) Set(_ context.Context, a *models.Article) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[a.Slug] = *a
}

func (r *recordingCache) Invalidate(_ context.Context, slugList ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slugList {
		delete(r.entries, s)
		r.invalidated = append(r.invalidated, s)
	}
}

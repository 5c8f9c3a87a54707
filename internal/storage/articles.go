// Package storage owns the article collection. It is the only place articles
// are mutated: every write goes through one of its operations, which keeps
// url uniqueness and the timestamp ordering intact, and every successful
// mutation is persisted to the JSON snapshot before it is reported back.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/0x0BSoD/articleKeeper/internal/model"
)

var (
	ErrDuplicateURL = errors.New("article with this url already exists")
	ErrNotFound     = errors.New("article not found")
)

// permanentWindow is the "never unpublish" sentinel: an article published
// without an explicit unpublish time keeps its publish window open for a
// century.
const permanentWindow = 100 * 365 * 24 * time.Hour

// ArticleStorage holds the articles in memory, in insertion order, and
// mirrors them to a snapshot file. All methods are safe for concurrent use;
// mutators hold the write lock across both the in-memory change and the
// persist, so readers never observe a half-applied operation.
type ArticleStorage struct {
	mu       sync.RWMutex
	path     string
	articles []model.Article
}

func NewArticleStorage(snapshotPath string) *ArticleStorage {
	return &ArticleStorage{path: snapshotPath}
}

// Load replaces the in-memory collection with the persisted snapshot.
// A missing snapshot file yields an empty collection; malformed content is
// an error, never an empty collection, so bad data cannot be lost silently.
func (s *ArticleStorage) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.articles = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var articles []model.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.articles = articles
	s.mu.Unlock()
	return nil
}

// SaveSnapshot persists the current collection, e.g. on shutdown.
func (s *ArticleStorage) SaveSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the full collection to the snapshot path via a temp file and
// rename, so a crash mid-write never leaves a truncated snapshot behind.
// Callers must hold the write lock.
func (s *ArticleStorage) save() error {
	raw, err := json.MarshalIndent(s.articles, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// ListPublished returns the published articles in insertion order.
func (s *ArticleStorage) ListPublished() []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(s.articles, func(a model.Article, _ int) bool {
		return a.Status == model.StatusPublished
	})
}

// Create validates url uniqueness, fills in identity, timestamps and the
// scheduling defaults, appends the article and persists. On a persist
// failure the append is rolled back and the create fails as a whole.
func (s *ArticleStorage) Create(draft model.Draft, ownerID string) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.ContainsBy(s.articles, func(a model.Article) bool { return a.URL == draft.URL }) {
		return model.Article{}, fmt.Errorf("%w: %s", ErrDuplicateURL, draft.URL)
	}

	status := draft.Status
	if status == "" {
		status = model.StatusUnpublished
	}

	now := time.Now().UTC()
	article := model.Article{
		ID:        uuid.NewString(),
		Title:     draft.Title,
		URL:       draft.URL,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		OwnerID:   ownerID,
	}
	applyScheduleDefaults(&article, draft.PublishAt, draft.UnpublishAt, now)

	s.articles = append(s.articles, article)
	if err := s.save(); err != nil {
		s.articles = s.articles[:len(s.articles)-1]
		return model.Article{}, err
	}
	return article, nil
}

// Update applies the non-nil fields of patch to the article matching idOrURL,
// refreshes UpdatedAt and OwnerID, persists and returns the result. When the
// patch sets Status the scheduling defaults are reapplied.
func (s *ArticleStorage) Update(idOrURL string, patch model.Patch, ownerID string) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(idOrURL)
	if i < 0 {
		return model.Article{}, fmt.Errorf("%w: %s", ErrNotFound, idOrURL)
	}

	prev := s.articles[i]
	article := prev

	if patch.Title != nil {
		article.Title = *patch.Title
	}
	if patch.URL != nil && *patch.URL != article.URL {
		if lo.ContainsBy(s.articles, func(a model.Article) bool { return a.URL == *patch.URL }) {
			return model.Article{}, fmt.Errorf("%w: %s", ErrDuplicateURL, *patch.URL)
		}
		article.URL = *patch.URL
	}

	now := time.Now().UTC()
	if patch.Status != nil {
		article.Status = *patch.Status
		applyScheduleDefaults(&article, patch.PublishAt, patch.UnpublishAt, now)
	} else {
		if patch.PublishAt != nil {
			article.PublishAt = patch.PublishAt
		}
		if patch.UnpublishAt != nil {
			article.UnpublishAt = patch.UnpublishAt
		}
	}
	article.UpdatedAt = now
	article.OwnerID = ownerID

	s.articles[i] = article
	if err := s.save(); err != nil {
		s.articles[i] = prev
		return model.Article{}, err
	}
	return article, nil
}

// UpdateStatus sets only the status, refreshing UpdatedAt and OwnerID.
// Scheduled publish/unpublish times are left as they are.
func (s *ArticleStorage) UpdateStatus(idOrURL string, status model.Status, ownerID string) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(idOrURL)
	if i < 0 {
		return model.Article{}, fmt.Errorf("%w: %s", ErrNotFound, idOrURL)
	}

	prev := s.articles[i]
	article := prev
	article.Status = status
	article.UpdatedAt = time.Now().UTC()
	article.OwnerID = ownerID

	s.articles[i] = article
	if err := s.save(); err != nil {
		s.articles[i] = prev
		return model.Article{}, err
	}
	return article, nil
}

// Sweep applies the scheduled lifecycle transitions that are due at now and
// persists when anything changed. An unpublished article is published once
// now has reached PublishAt, but only while its publish window is still
// open (UnpublishAt unset or in the future); a published article is
// unpublished once now has reached UnpublishAt. The window condition makes
// the sweep idempotent: a second run at the same instant finds nothing to do.
func (s *ArticleStorage) Sweep(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := slices.Clone(s.articles)

	var flipped int
	for i := range s.articles {
		a := &s.articles[i]
		switch a.Status {
		case model.StatusUnpublished:
			if a.PublishAt != nil && !a.PublishAt.After(now) &&
				(a.UnpublishAt == nil || a.UnpublishAt.After(now)) {
				a.Status = model.StatusPublished
				a.UpdatedAt = now
				flipped++
			}
		case model.StatusPublished:
			if a.UnpublishAt != nil && !a.UnpublishAt.After(now) {
				a.Status = model.StatusUnpublished
				a.UpdatedAt = now
				flipped++
			}
		}
	}

	if flipped == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		s.articles = prev
		return 0, err
	}
	return flipped, nil
}

// indexOf locates an article by id, falling back to its url.
func (s *ArticleStorage) indexOf(idOrURL string) int {
	_, i, ok := lo.FindIndexOf(s.articles, func(a model.Article) bool {
		return a.ID == idOrURL || a.URL == idOrURL
	})
	if !ok {
		return -1
	}
	return i
}

// applyScheduleDefaults resolves PublishAt/UnpublishAt after an explicit
// status change. Publishing opens a window from now (or the caller's
// PublishAt) to effectively-never unless the caller bounds it. Unpublishing
// clears any pending schedule, keeping only what the caller supplies.
func applyScheduleDefaults(a *model.Article, publishAt, unpublishAt *time.Time, now time.Time) {
	switch a.Status {
	case model.StatusPublished:
		a.PublishAt = &now
		if publishAt != nil {
			a.PublishAt = publishAt
		}
		forever := now.Add(permanentWindow)
		a.UnpublishAt = &forever
		if unpublishAt != nil {
			a.UnpublishAt = unpublishAt
		}
	case model.StatusUnpublished:
		a.PublishAt = publishAt
		a.UnpublishAt = unpublishAt
	}
}

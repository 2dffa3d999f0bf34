package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrNewsNotFound       = errors.New("news post not found")
	ErrNewsTitleRequired  = errors.New("news title is required")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// NewsInput represents fields accepted when creating or updating a news post.
type NewsInput struct {
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"image_url"`
	IsPublished bool       `json:"is_published"`
	IsFeatured  bool       `json:"is_featured"`
	PublishedAt *time.Time `json:"published_at"`
}

// NewsArticle is a published post with its body rendered to HTML.
type NewsArticle struct {
	Post db.NewsPost
	HTML string
}

// NewsService wraps news related database operations.
type NewsService struct {
	db      *gorm.DB
	objects storage.Storage
	now     func() time.Time
}

// NewNewsService creates a NewsService. objects stores attachments.
func NewNewsService(gdb *gorm.DB, objects storage.Storage) *NewsService {
	return &NewsService{db: gdb, objects: objects, now: time.Now}
}

// List returns every post, newest publication first.
func (s *NewsService) List() ([]db.NewsPost, error) {
	var posts []db.NewsPost
	if err := s.db.Order("published_at desc").Order("id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches a post with its attachments.
func (s *NewsService) Get(id uint) (*db.NewsPost, error) {
	var post db.NewsPost
	if err := s.db.Preload("Attachments").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Article returns a published post with its body rendered. Drafts are
// reported as not found.
func (s *NewsService) Article(id uint) (*NewsArticle, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, ErrNewsNotFound
	}
	body, err := RenderMarkdown(post.Content)
	if err != nil {
		return nil, fmt.Errorf("render news %d: %w", id, err)
	}
	return &NewsArticle{Post: *post, HTML: body}, nil
}

// Featured returns up to limit published posts: featured ones first, then
// the latest non-featured posts to fill the remaining slots.
func (s *NewsService) Featured(limit int) ([]db.NewsPost, error) {
	if limit <= 0 {
		limit = FeaturedLimit
	}

	var posts []db.NewsPost
	err := s.db.Where("is_published = ? AND is_featured = ?", true, true).
		Order("published_at desc").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if len(posts) >= limit {
		return posts, nil
	}

	var latest []db.NewsPost
	err = s.db.Where("is_published = ? AND is_featured = ?", true, false).
		Order("published_at desc").Limit(limit - len(posts)).Find(&latest).Error
	if err != nil {
		return nil, err
	}
	return append(posts, latest...), nil
}

// Create persists a post.
func (s *NewsService) Create(input NewsInput) (*db.NewsPost, error) {
	var post db.NewsPost
	if err := s.apply(&post, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update replaces the editable fields of a post.
func (s *NewsService) Update(id uint, input NewsInput) (*db.NewsPost, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(post, input); err != nil {
		return nil, err
	}
	if err := s.db.Omit("Attachments").Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post and its attachment rows.
func (s *NewsService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("news_id = ?", id).Delete(&db.NewsAttachment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&db.NewsPost{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNewsNotFound
		}
		return nil
	})
}

// AddAttachment uploads f to the attachments bucket and links it to a post.
func (s *NewsService) AddAttachment(ctx context.Context, newsID uint, f storage.File) (*db.NewsAttachment, error) {
	if _, err := s.Get(newsID); err != nil {
		return nil, err
	}
	stored, err := storage.UploadDocument(ctx, s.objects, storage.BucketNewsAttachments, f)
	if err != nil {
		return nil, err
	}
	attachment := db.NewsAttachment{
		NewsID:      newsID,
		FileName:    stored.Name,
		FileURL:     stored.URL,
		FileType:    stored.ContentType,
		FileSize:    stored.Size,
		StoragePath: stored.Path,
	}
	if err := s.db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// RemoveAttachment deletes the attachment row. The stored file is kept.
func (s *NewsService) RemoveAttachment(newsID, attachmentID uint) error {
	result := s.db.Where("news_id = ?", newsID).Delete(&db.NewsAttachment{}, attachmentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}

func (s *NewsService) apply(post *db.NewsPost, input NewsInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrNewsTitleRequired
	}
	post.Title = title
	post.Excerpt = strings.TrimSpace(input.Excerpt)
	post.Content = input.Content
	post.ImageURL = strings.TrimSpace(input.ImageURL)
	post.IsPublished = input.IsPublished
	post.IsFeatured = input.IsFeatured

	switch {
	case input.PublishedAt != nil && !input.PublishedAt.IsZero():
		post.PublishedAt = *input.PublishedAt
	case post.PublishedAt.IsZero():
		post.PublishedAt = s.now()
	}
	return nil
}

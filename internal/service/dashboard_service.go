package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/harvestcms/internal/content"
	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/storage"
	"gorm.io/gorm"
)

// DashboardStats aggregates the counters shown on the admin overview.
type DashboardStats struct {
	Projects             int64   `json:"projects"`
	FeaturedProjects     int64   `json:"featured_projects"`
	Programs             int64   `json:"programs"`
	News                 int64   `json:"news"`
	NewsThisMonth        int64   `json:"news_this_month"`
	DraftNews            int64   `json:"draft_news"`
	Messages             int64   `json:"messages"`
	NewMessages          int64   `json:"new_messages"`
	UnreadMessages       int64   `json:"unread_messages"`
	Subscribers          int64   `json:"subscribers"`
	SubscribersThisMonth int64   `json:"subscribers_this_month"`
	StalePages           int64   `json:"stale_pages"`
	StorageFiles         int     `json:"storage_files"`
	StorageMB            float64 `json:"storage_mb"`
	StorageError         string  `json:"storage_error,omitempty"`
}

// DashboardService computes the admin overview.
type DashboardService struct {
	db      *gorm.DB
	pages   *content.Store
	objects storage.Storage
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(gdb *gorm.DB, pages *content.Store, objects storage.Storage) *DashboardService {
	return &DashboardService{db: gdb, pages: pages, objects: objects}
}

// Overview computes the dashboard counters as of now.
func (s *DashboardService) Overview(ctx context.Context, now time.Time) (DashboardStats, error) {
	var stats DashboardStats
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	recent := now.Add(-30 * 24 * time.Hour)
	tx := s.db.WithContext(ctx)

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&stats.Projects, &db.Project{}, "", nil},
		{&stats.FeaturedProjects, &db.Project{}, "is_featured = ?", []any{true}},
		{&stats.Programs, &db.Program{}, "", nil},
		{&stats.News, &db.NewsPost{}, "", nil},
		{&stats.NewsThisMonth, &db.NewsPost{}, "published_at >= ?", []any{monthStart}},
		{&stats.DraftNews, &db.NewsPost{}, "is_published = ?", []any{false}},
		{&stats.Messages, &db.ContactMessage{}, "", nil},
		{&stats.NewMessages, &db.ContactMessage{}, "created_at > ?", []any{recent}},
		{&stats.UnreadMessages, &db.ContactMessage{}, "is_read = ?", []any{false}},
		{&stats.Subscribers, &db.NewsletterSubscriber{}, "", nil},
		{&stats.SubscribersThisMonth, &db.NewsletterSubscriber{}, "created_at >= ?", []any{monthStart}},
	}
	for _, c := range counts {
		query := tx.Model(c.model)
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dst).Error; err != nil {
			return stats, err
		}
	}

	stale, err := s.pages.CountStalePages(ctx, content.StaleCutoff(now))
	if err != nil {
		return stats, err
	}
	stats.StalePages = stale

	if s.objects != nil {
		usage, err := storage.Stats(ctx, s.objects, storage.MediaBuckets)
		if err != nil {
			slog.WarnContext(ctx, "storage stats incomplete", "error", err)
			stats.StorageError = "storage usage could not be fully computed"
		}
		stats.StorageFiles = usage.TotalFiles
		stats.StorageMB = usage.SizeMB()
	}

	return stats, nil
}

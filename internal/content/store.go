package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harvestcms/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPageNotFound    = errors.New("page not found")
	ErrSectionNotFound = errors.New("section not found")
)

// PageOption is a selectable target for page-link fields.
type PageOption struct {
	Slug  string
	Title string
}

// Store reads and writes pages and their sections.
type Store struct {
	db *gorm.DB
}

// NewStore returns a Store backed by gdb.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

func preloadSections(tx *gorm.DB) *gorm.DB {
	return tx.Order("id asc")
}

// PageWithSections loads a page and all of its sections in one round trip.
func (s *Store) PageWithSections(ctx context.Context, pageID uint) (*db.Page, error) {
	var page db.Page
	err := s.db.WithContext(ctx).Preload("Sections", preloadSections).First(&page, pageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("load page %d: %w", pageID, err)
	}
	return &page, nil
}

// PageBySlug loads a page with sections by its public slug.
func (s *Store) PageBySlug(ctx context.Context, slug string) (*db.Page, error) {
	var page db.Page
	err := s.db.WithContext(ctx).Preload("Sections", preloadSections).
		Where("slug = ?", slug).First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("load page %q: %w", slug, err)
	}
	return &page, nil
}

// ListPages returns all pages ordered by title, without sections.
func (s *Store) ListPages(ctx context.Context) ([]db.Page, error) {
	var pages []db.Page
	if err := s.db.WithContext(ctx).Order("title asc").Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// PageOptions returns every known page slug for the page picker.
func (s *Store) PageOptions(ctx context.Context) ([]PageOption, error) {
	var options []PageOption
	err := s.db.WithContext(ctx).Model(&db.Page{}).
		Select("slug", "title").
		Order("title asc").
		Scan(&options).Error
	if err != nil {
		return nil, fmt.Errorf("list page options: %w", err)
	}
	return options, nil
}

// UpdateSection overwrites the content of an existing section row. The row
// must belong to pageID.
func (s *Store) UpdateSection(ctx context.Context, pageID, sectionID uint, raw []byte) error {
	result := s.db.WithContext(ctx).Model(&db.Section{}).
		Where("id = ? AND page_id = ?", sectionID, pageID).
		Updates(map[string]any{
			"content":    datatypes.JSON(raw),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update section %d: %w", sectionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSectionNotFound
	}
	return nil
}

// CreateSection inserts a section for pageID. If a row with the same name
// already exists its content is replaced instead.
func (s *Store) CreateSection(ctx context.Context, pageID uint, name string, raw []byte) (*db.Section, error) {
	section := db.Section{PageID: pageID, SectionName: name, Content: datatypes.JSON(raw)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "page_id"}, {Name: "section_name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"content":    datatypes.JSON(raw),
			"updated_at": time.Now(),
		}),
	}).Create(&section).Error
	if err != nil {
		return nil, fmt.Errorf("create section %s: %w", name, err)
	}
	return &section, nil
}

// UpdateHeroImage sets the hero image reference of a page.
func (s *Store) UpdateHeroImage(ctx context.Context, pageID uint, url string) error {
	result := s.db.WithContext(ctx).Model(&db.Page{}).
		Where("id = ?", pageID).
		Update("hero_image_url", url)
	if result.Error != nil {
		return fmt.Errorf("update hero image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

// CountStalePages counts pages owning at least one section last modified
// before cutoff.
func (s *Store) CountStalePages(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&db.Section{}).
		Where("updated_at < ?", cutoff).
		Distinct("page_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count stale pages: %w", err)
	}
	return count, nil
}

// StalePageIDs returns the pages counted by CountStalePages.
func (s *Store) StalePageIDs(ctx context.Context, cutoff time.Time) (map[uint]bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&db.Section{}).
		Where("updated_at < ?", cutoff).
		Distinct().
		Pluck("page_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list stale pages: %w", err)
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/harvestcms/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidSettingKey is returned for keys outside the lowercase snake_case form.
var ErrInvalidSettingKey = errors.New("setting key must be lowercase letters, digits or underscores")

var settingKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,99}$`)

// DefaultSiteName is used when no site_name setting is stored.
const DefaultSiteName = "Harvest Foundation"

// SettingService reads and updates site-wide settings.
type SettingService struct {
	db *gorm.DB
}

// NewSettingService returns a SettingService.
func NewSettingService(gdb *gorm.DB) *SettingService {
	return &SettingService{db: gdb}
}

// List returns every stored setting ordered by key.
func (s *SettingService) List() ([]db.SiteSetting, error) {
	var records []db.SiteSetting
	if err := s.db.Order("key asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load site settings: %w", err)
	}
	return records, nil
}

// Map returns the settings as a key/value map with defaults applied.
func (s *SettingService) Map() (map[string]string, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	result := map[string]string{db.SettingKeySiteName: DefaultSiteName}
	for _, record := range records {
		if record.Key == db.SettingKeySiteName && strings.TrimSpace(record.Value) == "" {
			continue
		}
		result[record.Key] = record.Value
	}
	return result, nil
}

// Update upserts every value in a single transaction.
func (s *SettingService) Update(values map[string]string) error {
	for key := range values {
		if !settingKeyPattern.MatchString(key) {
			return fmt.Errorf("%w: %q", ErrInvalidSettingKey, key)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := upsertSetting(tx, key, strings.TrimSpace(value)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update site settings: %w", err)
	}
	return nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SiteSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

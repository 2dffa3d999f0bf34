package content

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harvestcms/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

func setupContentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:content-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), dbCounter.Add(1))
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type seedSection struct {
	name    string
	payload Payload
}

func seedPage(t *testing.T, gdb *gorm.DB, slug, title string, sections ...seedSection) *db.Page {
	t.Helper()
	page := db.Page{Slug: slug, Title: title}
	if err := gdb.Create(&page).Error; err != nil {
		t.Fatalf("failed to seed page %s: %v", slug, err)
	}
	for _, s := range sections {
		raw, err := s.payload.Encode()
		if err != nil {
			t.Fatalf("failed to encode %s: %v", s.name, err)
		}
		row := db.Section{PageID: page.ID, SectionName: s.name, Content: datatypes.JSON(raw)}
		if err := gdb.Create(&row).Error; err != nil {
			t.Fatalf("failed to seed section %s: %v", s.name, err)
		}
	}
	return &page
}

func loadSections(t *testing.T, gdb *gorm.DB, pageID uint) map[string]db.Section {
	t.Helper()
	var rows []db.Section
	if err := gdb.Where("page_id = ?", pageID).Find(&rows).Error; err != nil {
		t.Fatalf("failed to load sections: %v", err)
	}
	out := make(map[string]db.Section, len(rows))
	for _, row := range rows {
		out[row.SectionName] = row
	}
	return out
}

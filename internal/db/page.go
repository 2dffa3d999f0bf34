package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Page represents a public route whose editable regions are stored as sections.
type Page struct {
	gorm.Model
	Slug         string `gorm:"uniqueIndex;not null"`
	Title        string `gorm:"not null"`
	HeroImageURL string
	Sections     []Section
}

// Section is a named content region of a page. SectionName is unique per page
// and is the join key against the page schema.
type Section struct {
	ID          uint   `gorm:"primarykey"`
	PageID      uint   `gorm:"not null;uniqueIndex:idx_sections_page_name"`
	SectionName string `gorm:"size:120;not null;uniqueIndex:idx_sections_page_name"`
	Content     datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SectionByName returns the section with the given name or nil.
func (p *Page) SectionByName(name string) *Section {
	for i := range p.Sections {
		if p.Sections[i].SectionName == name {
			return &p.Sections[i]
		}
	}
	return nil
}

// SectionByID returns the section with the given row id or nil.
func (p *Page) SectionByID(id uint) *Section {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i]
		}
	}
	return nil
}

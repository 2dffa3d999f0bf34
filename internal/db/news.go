package db

import (
	"time"

	"gorm.io/gorm"
)

// NewsPost is an update published on the news page.
type NewsPost struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Excerpt     string
	Content     string `gorm:"type:text"`
	ImageURL    string
	IsPublished bool `gorm:"index"`
	IsFeatured  bool
	PublishedAt time.Time `gorm:"index"`
	Attachments []NewsAttachment `gorm:"foreignKey:NewsID"`
}

// NewsAttachment is a document uploaded alongside a news post.
type NewsAttachment struct {
	gorm.Model
	NewsID      uint `gorm:"index;not null"`
	FileName    string
	FileURL     string
	FileType    string
	FileSize    int64
	StoragePath string
}

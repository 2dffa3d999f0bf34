package db

import "gorm.io/gorm"

// TeamMember is a staff or board member listed on the about page.
type TeamMember struct {
	gorm.Model
	Name      string `gorm:"not null"`
	Role      string
	Bio       string `gorm:"type:text"`
	ImageURL  string
	SortOrder int `gorm:"default:0"`
}

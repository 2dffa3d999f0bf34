package db

import "gorm.io/gorm"

// Program groups projects under one of the organisation's delivery programs.
type Program struct {
	gorm.Model
	Name        string `gorm:"size:200;uniqueIndex;not null"`
	Description string
	SortOrder   int `gorm:"default:0"`
}

// Project is a field project shown on the work and home pages.
type Project struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Location      string
	Category      string
	Summary       string `gorm:"type:text"`
	Beneficiaries string
	Technologies  string
	ImageURL      string
	IsFeatured    bool `gorm:"index"`
	ProgramID     *uint
	Program       *Program
}

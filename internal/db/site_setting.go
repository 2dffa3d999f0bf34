package db

import "gorm.io/gorm"

// SiteSetting stores a site-wide key/value pair such as the contact email.
type SiteSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName keeps the table name stable across renames.
func (SiteSetting) TableName() string {
	return "site_settings"
}

const (
	// SettingKeySiteName is the organisation name shown in the header.
	SettingKeySiteName = "site_name"
	// SettingKeyContactEmail is the public contact address.
	SettingKeyContactEmail = "contact_email"
	// SettingKeyContactPhone is the public phone number.
	SettingKeyContactPhone = "contact_phone"
	// SettingKeyAddress is the postal address.
	SettingKeyAddress = "address"
	// SettingKeyMapEmbed is the map iframe URL on the contact page.
	SettingKeyMapEmbed = "map_embed_url"
)

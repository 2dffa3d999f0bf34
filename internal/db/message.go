package db

import "gorm.io/gorm"

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	gorm.Model
	Name    string
	Email   string
	Subject string
	Message string `gorm:"type:text"`
	IsRead  bool   `gorm:"index"`
}

// NewsletterSubscriber is an email address signed up for the newsletter.
type NewsletterSubscriber struct {
	gorm.Model
	Email string `gorm:"size:320;uniqueIndex;not null"`
}

package service

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/harvestcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrMessageIncomplete  = errors.New("name, email and message are required")
	ErrInvalidEmail       = errors.New("email address is invalid")
	ErrAlreadySubscribed  = errors.New("email is already subscribed")
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

// Read filters accepted by MessageService.List.
const (
	MessageFilterAll    = "all"
	MessageFilterRead   = "read"
	MessageFilterUnread = "unread"
)

// ContactInput is a message submitted through the public contact form.
type ContactInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// MessageService stores and triages contact form messages.
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a MessageService instance.
func NewMessageService(gdb *gorm.DB) *MessageService {
	return &MessageService{db: gdb}
}

// Submit stores a contact message as unread.
func (s *MessageService) Submit(input ContactInput) (*db.ContactMessage, error) {
	msg := db.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	email := strings.TrimSpace(input.Email)
	if msg.Name == "" || email == "" || msg.Message == "" {
		return nil, ErrMessageIncomplete
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	msg.Email = normalized
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns messages newest first. Unknown filters list everything.
func (s *MessageService) List(filter string) ([]db.ContactMessage, error) {
	query := s.db.Order("created_at desc")
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case MessageFilterRead:
		query = query.Where("is_read = ?", true)
	case MessageFilterUnread:
		query = query.Where("is_read = ?", false)
	}
	var messages []db.ContactMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// View fetches a message and marks it read.
func (s *MessageService) View(id uint) (*db.ContactMessage, error) {
	var msg db.ContactMessage
	if err := s.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if !msg.IsRead {
		if err := s.db.Model(&msg).Update("is_read", true).Error; err != nil {
			return nil, err
		}
		msg.IsRead = true
	}
	return &msg, nil
}

// SetRead marks a message read or unread.
func (s *MessageService) SetRead(id uint, read bool) error {
	result := s.db.Model(&db.ContactMessage{}).Where("id = ?", id).Update("is_read", read)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// Delete removes a message.
func (s *MessageService) Delete(id uint) error {
	result := s.db.Delete(&db.ContactMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// SubscriberService manages newsletter sign-ups.
type SubscriberService struct {
	db *gorm.DB
}

// NewSubscriberService creates a SubscriberService instance.
func NewSubscriberService(gdb *gorm.DB) *SubscriberService {
	return &SubscriberService{db: gdb}
}

// Subscribe records an email address once.
func (s *SubscriberService) Subscribe(email string) (*db.NewsletterSubscriber, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.Model(&db.NewsletterSubscriber{}).Where("email = ?", normalized).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadySubscribed
	}

	sub := db.NewsletterSubscriber{Email: normalized}
	if err := s.db.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return &sub, nil
}

// List returns subscribers newest first.
func (s *SubscriberService) List() ([]db.NewsletterSubscriber, error) {
	var subs []db.NewsletterSubscriber
	if err := s.db.Order("created_at desc").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Delete permanently removes a subscriber so the address can sign up again.
func (s *SubscriberService) Delete(id uint) error {
	result := s.db.Unscoped().Delete(&db.NewsletterSubscriber{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

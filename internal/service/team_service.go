package service

import (
	"errors"
	"strings"

	"github.com/harvestcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamNameRequired   = errors.New("team member name is required")
)

// TeamMemberInput represents fields accepted for a team member.
type TeamMemberInput struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Bio       string `json:"bio"`
	ImageURL  string `json:"image_url"`
	SortOrder int    `json:"sort_order"`
}

// TeamService manages the people shown on the about page.
type TeamService struct {
	db *gorm.DB
}

// NewTeamService creates a TeamService instance.
func NewTeamService(gdb *gorm.DB) *TeamService {
	return &TeamService{db: gdb}
}

// List returns members in display order.
func (s *TeamService) List() ([]db.TeamMember, error) {
	var members []db.TeamMember
	if err := s.db.Order("sort_order asc").Order("name asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Get fetches a member by id.
func (s *TeamService) Get(id uint) (*db.TeamMember, error) {
	var member db.TeamMember
	if err := s.db.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// Create persists a member.
func (s *TeamService) Create(input TeamMemberInput) (*db.TeamMember, error) {
	var member db.TeamMember
	if err := applyTeamMember(&member, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Update replaces the fields of a member.
func (s *TeamService) Update(id uint, input TeamMemberInput) (*db.TeamMember, error) {
	member, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := applyTeamMember(member, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// Delete removes a member.
func (s *TeamService) Delete(id uint) error {
	result := s.db.Delete(&db.TeamMember{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

func applyTeamMember(member *db.TeamMember, input TeamMemberInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrTeamNameRequired
	}
	member.Name = name
	member.Role = strings.TrimSpace(input.Role)
	member.Bio = strings.TrimSpace(input.Bio)
	member.ImageURL = strings.TrimSpace(input.ImageURL)
	member.SortOrder = input.SortOrder
	return nil
}

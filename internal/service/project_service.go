package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harvestcms/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectTitleRequired = errors.New("project title is required")
	ErrProgramNotFound      = errors.New("program not found")
)

// FeaturedLimit is the number of cards shown in homepage feeds.
const FeaturedLimit = 3

// ProjectInput represents fields accepted when creating or updating a project.
type ProjectInput struct {
	Title         string `json:"title"`
	Location      string `json:"location"`
	Category      string `json:"category"`
	Summary       string `json:"summary"`
	Beneficiaries string `json:"beneficiaries"`
	Technologies  string `json:"technologies"`
	ImageURL      string `json:"image_url"`
	IsFeatured    bool   `json:"is_featured"`
	ProgramID     *uint  `json:"program_id"`
}

// ProjectService wraps project related database operations.
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService creates a ProjectService instance.
func NewProjectService(gdb *gorm.DB) *ProjectService {
	return &ProjectService{db: gdb}
}

// List returns all projects with their program, newest first.
func (s *ProjectService) List() ([]db.Project, error) {
	var projects []db.Project
	if err := s.db.Preload("Program").Order("created_at desc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Get fetches a project by id.
func (s *ProjectService) Get(id uint) (*db.Project, error) {
	var project db.Project
	if err := s.db.Preload("Program").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Featured returns the newest featured projects.
func (s *ProjectService) Featured(limit int) ([]db.Project, error) {
	if limit <= 0 {
		limit = FeaturedLimit
	}
	var projects []db.Project
	err := s.db.Where("is_featured = ?", true).Order("created_at desc").Limit(limit).Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Create persists a new project.
func (s *ProjectService) Create(input ProjectInput) (*db.Project, error) {
	var project db.Project
	if err := s.apply(&project, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return s.Get(project.ID)
}

// Update replaces the editable fields of a project.
func (s *ProjectService) Update(id uint, input ProjectInput) (*db.Project, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(project, input); err != nil {
		return nil, err
	}
	project.Program = nil
	if err := s.db.Omit("Program").Save(project).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a project.
func (s *ProjectService) Delete(id uint) error {
	result := s.db.Delete(&db.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *ProjectService) apply(project *db.Project, input ProjectInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrProjectTitleRequired
	}

	programName := ""
	if input.ProgramID != nil && *input.ProgramID != 0 {
		var program db.Program
		if err := s.db.First(&program, *input.ProgramID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProgramNotFound
			}
			return err
		}
		programName = program.Name
		id := program.ID
		project.ProgramID = &id
	} else {
		project.ProgramID = nil
	}

	project.Title = title
	project.Location = strings.TrimSpace(input.Location)
	project.Category = strings.TrimSpace(input.Category)
	project.Summary = strings.TrimSpace(input.Summary)
	project.Beneficiaries = strings.TrimSpace(input.Beneficiaries)
	project.ImageURL = strings.TrimSpace(input.ImageURL)
	project.IsFeatured = input.IsFeatured
	project.Technologies = ""
	if ProgramUsesTechnologies(programName) {
		project.Technologies = strings.TrimSpace(input.Technologies)
	}
	return nil
}

// ProgramUsesTechnologies reports whether projects under the named program
// record the technologies they deploy.
func ProgramUsesTechnologies(programName string) bool {
	name := strings.ToLower(programName)
	return strings.Contains(name, "irrigation") || strings.Contains(name, "climate-smart")
}

// ProgramService manages the delivery programs projects belong to.
type ProgramService struct {
	db *gorm.DB
}

// NewProgramService creates a ProgramService instance.
func NewProgramService(gdb *gorm.DB) *ProgramService {
	return &ProgramService{db: gdb}
}

// DefaultPrograms are seeded the first time the admin panel is opened.
var DefaultPrograms = []db.Program{
	{Name: "Solar-Powered Irrigation Technology", Description: "Enabling year-round production and resilience against climate-induced droughts.", SortOrder: 1},
	{Name: "Climate-Smart Agricultural Practices", Description: "Training farmers in techniques that increase productivity while protecting the environment.", SortOrder: 2},
	{Name: "Capacity Building and Technical Training", Description: "Providing the knowledge and skills necessary for modern, efficient agribusiness management.", SortOrder: 3},
	{Name: "Women and Youth Enterprise Development", Description: "Empowering women and youth as drivers of inclusive growth and community-level economic resilience.", SortOrder: 4},
	{Name: "Sustainable Financing and Reinvestment", Description: "Ensuring long-term viability through reinvestment and sustainable financial models for community projects.", SortOrder: 5},
}

// List returns programs in display order.
func (s *ProgramService) List() ([]db.Program, error) {
	var programs []db.Program
	if err := s.db.Order("sort_order asc").Order("name asc").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// SeedDefaults upserts DefaultPrograms by name when no program exists and
// reports how many were written.
func (s *ProgramService) SeedDefaults() (int, error) {
	var count int64
	if err := s.db.Model(&db.Program{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	return s.Upsert(DefaultPrograms)
}

// Upsert writes programs keyed by name.
func (s *ProgramService) Upsert(programs []db.Program) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range programs {
			program := db.Program{Name: strings.TrimSpace(p.Name), Description: p.Description, SortOrder: p.SortOrder}
			if program.Name == "" {
				continue
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"description", "sort_order", "updated_at"}),
			}).Create(&program).Error; err != nil {
				return fmt.Errorf("upsert program %s: %w", program.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(programs), nil
}

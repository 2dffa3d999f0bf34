// Package seed loads the initial pages, sections, programs and settings of a
// fresh site from a YAML file.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/harvestcms/internal/content"
	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/service"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// File is the seed document.
type File struct {
	Settings map[string]string `yaml:"settings"`
	Programs []Program         `yaml:"programs"`
	Pages    []Page            `yaml:"pages"`
}

type Program struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SortOrder   int    `yaml:"sort_order"`
}

type Page struct {
	Slug         string    `yaml:"slug"`
	Title        string    `yaml:"title"`
	HeroImageURL string    `yaml:"hero_image_url"`
	Sections     []Section `yaml:"sections"`
}

// Section holds either a scalar text or a list of items. Its payload kind
// comes from the page schema; undeclared names are stored as rich text.
type Section struct {
	Name  string             `yaml:"name"`
	Text  string             `yaml:"text"`
	Items []content.ListItem `yaml:"items"`
}

// Defaults returns the embedded seed document.
func Defaults() (*File, error) {
	return Parse(strings.NewReader(string(defaultsYAML)))
}

// Parse decodes and validates a seed document.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	seen := map[string]bool{}
	for _, p := range f.Pages {
		slug := strings.TrimSpace(p.Slug)
		if slug == "" {
			return nil, errors.New("seed page without slug")
		}
		if seen[slug] {
			return nil, fmt.Errorf("duplicate seed page %q", slug)
		}
		seen[slug] = true
	}
	return &f, nil
}

// Options controls how existing rows are treated.
type Options struct {
	// Overwrite replaces stored sections and settings. Otherwise only
	// missing rows are created.
	Overwrite bool
	Registry  content.Registry
}

// Result counts the rows written by Apply.
type Result struct {
	Pages    int
	Sections int
	Settings int
	Programs int
}

// Apply writes f into gdb. It is safe to run repeatedly.
func Apply(ctx context.Context, gdb *gorm.DB, f *File, opts Options) (Result, error) {
	var res Result
	registry := opts.Registry
	if registry == nil {
		registry = content.DefaultRegistry
	}
	store := content.NewStore(gdb)

	for _, p := range f.Pages {
		created, err := ensurePage(ctx, gdb, p, opts.Overwrite)
		if err != nil {
			return res, err
		}
		if created {
			res.Pages++
		}
		page, err := store.PageBySlug(ctx, strings.TrimSpace(p.Slug))
		if err != nil {
			return res, err
		}
		for _, s := range p.Sections {
			if !opts.Overwrite && page.SectionByName(s.Name) != nil {
				continue
			}
			raw, err := sectionPayload(registry, page.Slug, s).Encode()
			if err != nil {
				return res, fmt.Errorf("encode section %s: %w", s.Name, err)
			}
			if _, err := store.CreateSection(ctx, page.ID, s.Name, raw); err != nil {
				return res, err
			}
			res.Sections++
		}
	}

	settings, err := missingSettings(gdb, f.Settings, opts.Overwrite)
	if err != nil {
		return res, err
	}
	if len(settings) > 0 {
		if err := service.NewSettingService(gdb).Update(settings); err != nil {
			return res, err
		}
		res.Settings = len(settings)
	}

	if len(f.Programs) > 0 {
		programs := make([]db.Program, 0, len(f.Programs))
		for _, p := range f.Programs {
			programs = append(programs, db.Program{Name: p.Name, Description: p.Description, SortOrder: p.SortOrder})
		}
		n, err := service.NewProgramService(gdb).Upsert(programs)
		if err != nil {
			return res, err
		}
		res.Programs = n
	}

	slog.InfoContext(ctx, "seed applied",
		"pages", res.Pages, "sections", res.Sections, "settings", res.Settings, "programs", res.Programs)
	return res, nil
}

func ensurePage(ctx context.Context, gdb *gorm.DB, p Page, overwrite bool) (bool, error) {
	slug := strings.TrimSpace(p.Slug)
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = slug
	}

	var page db.Page
	err := gdb.WithContext(ctx).Where("slug = ?", slug).First(&page).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		page = db.Page{Slug: slug, Title: title, HeroImageURL: p.HeroImageURL}
		if err := gdb.WithContext(ctx).Create(&page).Error; err != nil {
			return false, fmt.Errorf("create page %s: %w", slug, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("load page %s: %w", slug, err)
	}

	if !overwrite {
		return false, nil
	}
	updates := map[string]any{"title": title}
	if p.HeroImageURL != "" {
		updates["hero_image_url"] = p.HeroImageURL
	}
	if err := gdb.WithContext(ctx).Model(&page).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("update page %s: %w", slug, err)
	}
	return false, nil
}

func sectionPayload(registry content.Registry, slug string, s Section) content.Payload {
	kind, ok := registry.KindOf(slug, s.Name)
	if !ok {
		kind = content.KindRich
	}
	if kind == content.KindList {
		return content.List(s.Items)
	}
	return content.Payload{Kind: kind, Value: s.Text}
}

func missingSettings(gdb *gorm.DB, values map[string]string, overwrite bool) (map[string]string, error) {
	if overwrite || len(values) == 0 {
		return values, nil
	}
	existing, err := service.NewSettingService(gdb).List()
	if err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(existing))
	for _, s := range existing {
		stored[s.Key] = true
	}
	out := map[string]string{}
	for k, v := range values {
		if !stored[k] {
			out[k] = v
		}
	}
	return out, nil
}

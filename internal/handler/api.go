package handler

import (
	"time"

	"github.com/harvestcms/internal/content"
	"github.com/harvestcms/internal/service"
	"github.com/harvestcms/internal/storage"
	"gorm.io/gorm"
)

// Options configures the handler set.
type Options struct {
	// PublicDir holds the public page markup rendered by ShowPublicPage.
	PublicDir string
	// SynthesizeMissing is passed to the section editor.
	SynthesizeMissing bool
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	registry    content.Registry
	pages       *content.Store
	editor      *content.Editor
	projects    *service.ProjectService
	programs    *service.ProgramService
	news        *service.NewsService
	team        *service.TeamService
	messages    *service.MessageService
	subscribers *service.SubscriberService
	settings    *service.SettingService
	dashboard   *service.DashboardService
	objects     storage.Storage
	panels      *PanelRegistry
	publicDir   string
	now         func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, objects storage.Storage, opts Options) *API {
	pages := content.NewStore(gdb)
	a := &API{
		db:          gdb,
		registry:    content.DefaultRegistry,
		pages:       pages,
		editor:      content.NewEditor(pages, objects, content.DefaultRegistry, content.EditorOptions{SynthesizeMissing: opts.SynthesizeMissing}),
		projects:    service.NewProjectService(gdb),
		programs:    service.NewProgramService(gdb),
		news:        service.NewNewsService(gdb, objects),
		team:        service.NewTeamService(gdb),
		messages:    service.NewMessageService(gdb),
		subscribers: service.NewSubscriberService(gdb),
		settings:    service.NewSettingService(gdb),
		dashboard:   service.NewDashboardService(gdb, pages, objects),
		objects:     objects,
		publicDir:   opts.PublicDir,
		now:         time.Now,
	}
	a.panels = a.defaultPanels()
	return a
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Panels returns the admin panel registry.
func (a *API) Panels() *PanelRegistry {
	return a.panels
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/service"
)

var ErrDuplicatePanel = errors.New("panel already registered")

// Panel is one admin screen reachable at /admin/panels/:name.
type Panel struct {
	Name    string
	Label   string
	Handler gin.HandlerFunc
}

// PanelRegistry maps panel names to their handlers in navigation order.
type PanelRegistry struct {
	panels []Panel
	index  map[string]int
}

// NewPanelRegistry returns an empty registry.
func NewPanelRegistry() *PanelRegistry {
	return &PanelRegistry{index: map[string]int{}}
}

// Register adds a panel. Names must be unique.
func (r *PanelRegistry) Register(name, label string, h gin.HandlerFunc) error {
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePanel, name)
	}
	r.index[name] = len(r.panels)
	r.panels = append(r.panels, Panel{Name: name, Label: label, Handler: h})
	return nil
}

// Lookup returns the panel registered under name.
func (r *PanelRegistry) Lookup(name string) (Panel, bool) {
	i, ok := r.index[name]
	if !ok {
		return Panel{}, false
	}
	return r.panels[i], true
}

// List returns the panels in registration order.
func (r *PanelRegistry) List() []Panel {
	out := make([]Panel, len(r.panels))
	copy(out, r.panels)
	return out
}

type navItem struct {
	Name   string
	Label  string
	Active bool
}

// ServePanel dispatches /admin/panels/:name to the registered panel.
func (a *API) ServePanel(c *gin.Context) {
	panel, ok := a.panels.Lookup(c.Param("name"))
	if !ok {
		a.renderAdmin(c, http.StatusNotFound, "panel.html", "", gin.H{
			"title": "Not found",
			"error": "Unknown panel",
		})
		return
	}
	panel.Handler(c)
}

func (a *API) renderAdmin(c *gin.Context, status int, template, active string, data gin.H) {
	nav := make([]navItem, 0, len(a.panels.panels))
	for _, p := range a.panels.panels {
		nav = append(nav, navItem{Name: p.Name, Label: p.Label, Active: p.Name == active})
	}
	payload := gin.H{"nav": nav, "username": currentUsername(c)}
	for key, value := range data {
		payload[key] = value
	}
	c.HTML(status, template, payload)
}

func (a *API) defaultPanels() *PanelRegistry {
	r := NewPanelRegistry()
	r.Register("dashboard", "Dashboard", a.showDashboardPanel)
	r.Register("pages", "Pages", a.showPagesPanel)
	r.Register("projects", "Projects", a.showProjectsPanel)
	r.Register("news", "News", a.showNewsPanel)
	r.Register("team", "Team", a.showTeamPanel)
	r.Register("messages", "Messages", a.showMessagesPanel)
	r.Register("subscribers", "Subscribers", a.showSubscribersPanel)
	r.Register("settings", "Settings", a.showSettingsPanel)
	return r
}

// panelTable is the generic listing rendered by panel.html.
type panelTable struct {
	Columns []string
	Rows    []panelRow
	APIPath string
}

type panelRow struct {
	ID    uint
	Cells []string
}

func (a *API) renderTable(c *gin.Context, name, title string, table panelTable) {
	a.renderAdmin(c, http.StatusOK, "panel.html", name, gin.H{
		"title": title,
		"panel": name,
		"table": table,
	})
}

func (a *API) panelError(c *gin.Context, name, message string, err error) {
	c.Error(err)
	a.renderAdmin(c, http.StatusInternalServerError, "panel.html", name, gin.H{
		"title": message,
		"error": message,
	})
}

func (a *API) showDashboardPanel(c *gin.Context) {
	if _, err := a.programs.SeedDefaults(); err != nil {
		c.Error(err)
	}
	stats, err := a.dashboard.Overview(c.Request.Context(), a.now())
	if err != nil {
		a.panelError(c, "dashboard", "Failed to load dashboard", err)
		return
	}
	a.renderAdmin(c, http.StatusOK, "dashboard.html", "dashboard", gin.H{
		"title": "Dashboard",
		"stats": stats,
	})
}

func (a *API) showPagesPanel(c *gin.Context) {
	summaries, err := a.pageSummaries(c)
	if err != nil {
		a.panelError(c, "pages", "Failed to load pages", err)
		return
	}
	a.renderAdmin(c, http.StatusOK, "pages.html", "pages", gin.H{
		"title": "Pages",
		"pages": summaries,
	})
}

func (a *API) showProjectsPanel(c *gin.Context) {
	projects, err := a.projects.List()
	if err != nil {
		a.panelError(c, "projects", "Failed to load projects", err)
		return
	}
	table := panelTable{Columns: []string{"Title", "Program", "Location", "Featured"}, APIPath: "/admin/api/projects"}
	for _, p := range projects {
		program := "No Program"
		if p.Program != nil {
			program = p.Program.Name
		}
		table.Rows = append(table.Rows, panelRow{ID: p.ID, Cells: []string{p.Title, program, p.Location, yesNo(p.IsFeatured)}})
	}
	a.renderTable(c, "projects", "Projects", table)
}

func (a *API) showNewsPanel(c *gin.Context) {
	posts, err := a.news.List()
	if err != nil {
		a.panelError(c, "news", "Failed to load news", err)
		return
	}
	table := panelTable{Columns: []string{"Title", "Published", "Featured", "Date"}, APIPath: "/admin/api/news"}
	for _, n := range posts {
		table.Rows = append(table.Rows, panelRow{ID: n.ID, Cells: []string{n.Title, yesNo(n.IsPublished), yesNo(n.IsFeatured), n.PublishedAt.Format("2006-01-02")}})
	}
	a.renderTable(c, "news", "News", table)
}

func (a *API) showTeamPanel(c *gin.Context) {
	members, err := a.team.List()
	if err != nil {
		a.panelError(c, "team", "Failed to load team", err)
		return
	}
	table := panelTable{Columns: []string{"Name", "Role", "Order"}, APIPath: "/admin/api/team"}
	for _, m := range members {
		table.Rows = append(table.Rows, panelRow{ID: m.ID, Cells: []string{m.Name, m.Role, strconv.Itoa(m.SortOrder)}})
	}
	a.renderTable(c, "team", "Team", table)
}

func (a *API) showMessagesPanel(c *gin.Context) {
	filter := c.DefaultQuery("filter", service.MessageFilterAll)
	messages, err := a.messages.List(filter)
	if err != nil {
		a.panelError(c, "messages", "Failed to load messages", err)
		return
	}
	table := panelTable{Columns: []string{"Status", "From", "Subject", "Received"}, APIPath: "/admin/api/messages"}
	for _, m := range messages {
		status := "New"
		if m.IsRead {
			status = "Read"
		}
		table.Rows = append(table.Rows, panelRow{ID: m.ID, Cells: []string{status, m.Name + " <" + m.Email + ">", m.Subject, m.CreatedAt.Format("2006-01-02 15:04")}})
	}
	a.renderAdmin(c, http.StatusOK, "panel.html", "messages", gin.H{
		"title":   "Messages",
		"panel":   "messages",
		"table":   table,
		"filter":  filter,
		"filters": []string{service.MessageFilterAll, service.MessageFilterUnread, service.MessageFilterRead},
	})
}

func (a *API) showSubscribersPanel(c *gin.Context) {
	subs, err := a.subscribers.List()
	if err != nil {
		a.panelError(c, "subscribers", "Failed to load subscribers", err)
		return
	}
	table := panelTable{Columns: []string{"Email", "Subscribed"}, APIPath: "/admin/api/subscribers"}
	for _, s := range subs {
		table.Rows = append(table.Rows, panelRow{ID: s.ID, Cells: []string{s.Email, s.CreatedAt.Format("2006-01-02")}})
	}
	a.renderTable(c, "subscribers", "Subscribers", table)
}

func (a *API) showSettingsPanel(c *gin.Context) {
	settings, err := a.settings.Map()
	if err != nil {
		a.panelError(c, "settings", "Failed to load settings", err)
		return
	}
	a.renderAdmin(c, http.StatusOK, "settings.html", "settings", gin.H{
		"title":    "Settings",
		"settings": settings,
	})
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

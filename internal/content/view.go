package content

import (
	"fmt"

	"github.com/harvestcms/internal/db"
)

const placeholderImage = "assets/placeholder.png"

// FeedItem is one card of a featured feed.
type FeedItem struct {
	Title    string
	Summary  string
	ImageURL string
	Tag      string
	Date     string
	URL      string
}

// View is everything the renderer injects into a public page.
type View struct {
	Slug         string
	HeroImageURL string
	Blocks       map[string]Payload
	Settings     map[string]string
	Feeds        map[string][]FeedItem
}

// ViewBuilder assembles a View.
type ViewBuilder struct {
	view View
}

// NewViewBuilder starts a view for page. A nil page yields an empty view.
func NewViewBuilder(page *db.Page) *ViewBuilder {
	b := &ViewBuilder{view: View{
		Blocks:   map[string]Payload{},
		Settings: map[string]string{},
		Feeds:    map[string][]FeedItem{},
	}}
	if page != nil {
		b.view.Slug = page.Slug
		b.view.HeroImageURL = page.HeroImageURL
	}
	return b
}

// Hero overrides the hero image URL.
func (b *ViewBuilder) Hero(url string) *ViewBuilder {
	b.view.HeroImageURL = url
	return b
}

// Section sets the payload rendered for a named block.
func (b *ViewBuilder) Section(name string, payload Payload) *ViewBuilder {
	b.view.Blocks[name] = payload
	return b
}

// Settings merges site settings into the view.
func (b *ViewBuilder) Settings(settings map[string]string) *ViewBuilder {
	for key, value := range settings {
		b.view.Settings[key] = value
	}
	return b
}

// Feed sets the cards of a named feed. A nil slice still marks the feed as
// present so that its empty message is rendered.
func (b *ViewBuilder) Feed(name string, items []FeedItem) *ViewBuilder {
	if items == nil {
		items = []FeedItem{}
	}
	b.view.Feeds[name] = items
	return b
}

// Build returns the assembled view.
func (b *ViewBuilder) Build() View {
	return b.view
}

// ViewFromPage decodes every stored section of page using the kinds declared
// in registry. Sections the schema does not know are rendered as rich text.
func ViewFromPage(page *db.Page, registry Registry) *ViewBuilder {
	b := NewViewBuilder(page)
	if page == nil {
		return b
	}
	for _, section := range page.Sections {
		kind, ok := registry.KindOf(page.Slug, section.SectionName)
		if !ok {
			kind = KindRich
		}
		b.Section(section.SectionName, DecodePayload(kind, section.Content))
	}
	return b
}

// ProjectCards converts featured projects into feed cards.
func ProjectCards(projects []db.Project) []FeedItem {
	items := make([]FeedItem, 0, len(projects))
	for _, p := range projects {
		tag := p.Category
		if tag == "" {
			tag = "Project"
		}
		items = append(items, FeedItem{
			Title:    p.Title,
			Summary:  p.Summary,
			ImageURL: orPlaceholder(p.ImageURL),
			Tag:      tag,
			URL:      fmt.Sprintf("projects.html?id=%d", p.ID),
		})
	}
	return items
}

// NewsCards converts news posts into feed cards.
func NewsCards(posts []db.NewsPost) []FeedItem {
	items := make([]FeedItem, 0, len(posts))
	for _, n := range posts {
		tag := "Update"
		if n.IsFeatured {
			tag = "Featured"
		}
		date := ""
		if !n.PublishedAt.IsZero() {
			date = n.PublishedAt.Format("Jan 2, 2006")
		}
		items = append(items, FeedItem{
			Title:    n.Title,
			Summary:  n.Excerpt,
			ImageURL: orPlaceholder(n.ImageURL),
			Tag:      tag,
			Date:     date,
			URL:      fmt.Sprintf("news.html?id=%d", n.ID),
		})
	}
	return items
}

func orPlaceholder(url string) string {
	if url == "" {
		return placeholderImage
	}
	return url
}

package content

// FieldType is the value type of an editable field.
type FieldType string

const (
	FieldText FieldType = "text"
	FieldRich FieldType = "rich"
	FieldPage FieldType = "page"
)

// RepeatableStatsKey names the homepage impact numbers list.
const RepeatableStatsKey = "home_stats"

// Field declares one editable section of a page.
type Field struct {
	Key   string
	Label string
	Type  FieldType
}

// Group is a labelled block of fields in the page editor. A repeatable group
// owns a single list section named by Key instead of Fields.
type Group struct {
	ID           string
	Label        string
	Description  string
	HasHeroImage bool
	Repeatable   bool
	Key          string
	Fields       []Field
}

// Registry maps a page slug to its ordered editor groups.
type Registry map[string][]Group

// Groups returns the declared groups for slug, or nil when the page has no
// schema and is therefore not editable.
func (r Registry) Groups(slug string) []Group {
	return r[slug]
}

// Editable reports whether slug has at least one declared group.
func (r Registry) Editable(slug string) bool {
	return len(r[slug]) > 0
}

// Field looks up a declared scalar field on slug.
func (r Registry) Field(slug, key string) (Field, bool) {
	for _, group := range r[slug] {
		for _, field := range group.Fields {
			if field.Key == key {
				return field, true
			}
		}
	}
	return Field{}, false
}

// RepeatableGroup looks up the repeatable group owning key on slug.
func (r Registry) RepeatableGroup(slug, key string) (Group, bool) {
	for _, group := range r[slug] {
		if group.Repeatable && group.Key == key {
			return group, true
		}
	}
	return Group{}, false
}

// HasHeroImage reports whether any group on slug carries the hero image.
func (r Registry) HasHeroImage(slug string) bool {
	for _, group := range r[slug] {
		if group.HasHeroImage {
			return true
		}
	}
	return false
}

// KindOf returns the payload kind declared for a section name on slug.
func (r Registry) KindOf(slug, name string) (Kind, bool) {
	if _, ok := r.RepeatableGroup(slug, name); ok {
		return KindList, true
	}
	if field, ok := r.Field(slug, name); ok {
		return KindForField(field.Type), true
	}
	return "", false
}

func heroGroup(description, titleKey, titleLabel, subtitleKey, subtitleLabel string) Group {
	return Group{
		ID:           "hero",
		Label:        "Top Page Image",
		Description:  description,
		HasHeroImage: true,
		Fields: []Field{
			{Key: titleKey, Label: titleLabel, Type: FieldText},
			{Key: subtitleKey, Label: subtitleLabel, Type: FieldText},
		},
	}
}

// DefaultRegistry is the schema of the deployed public site.
var DefaultRegistry = Registry{
	"index.html": {
		heroGroup("The main banner at the top of the homepage.",
			"home_hero_title", "Main Heading", "home_hero_subtitle", "Sub-heading"),
		{
			ID:          "stats",
			Label:       "Impact Numbers",
			Description: "Key statistics shown on the homepage.",
			Repeatable:  true,
			Key:         RepeatableStatsKey,
		},
		{
			ID:          "challenge",
			Label:       "The Challenge",
			Description: "Section explaining the problems being addressed.",
			Fields: []Field{
				{Key: "home_challenge_title", Label: "Section Title", Type: FieldText},
				{Key: "home_challenge_content", Label: "Main Content", Type: FieldRich},
			},
		},
		{
			ID:          "work",
			Label:       "Our Model",
			Description: "Overview of the integrated delivery model.",
			Fields: []Field{
				{Key: "home_work_title", Label: "Section Title", Type: FieldText},
				{Key: "home_work_subtitle", Label: "Sub-heading", Type: FieldText},
			},
		},
		{
			ID:          "cta",
			Label:       "Action Section",
			Description: "The final call-to-action at the bottom of the page.",
			Fields: []Field{
				{Key: "home_cta_title", Label: "Heading", Type: FieldText},
				{Key: "home_cta_subtitle", Label: "Description", Type: FieldText},
				{Key: "home_cta_btn1_label", Label: "Button 1 Label", Type: FieldText},
				{Key: "home_cta_btn1_link", Label: "Button 1 Link", Type: FieldPage},
				{Key: "home_cta_btn2_label", Label: "Button 2 Label", Type: FieldText},
				{Key: "home_cta_btn2_link", Label: "Button 2 Link", Type: FieldPage},
			},
		},
	},
	"about.html": {
		heroGroup("The main banner at the top of the About page.",
			"about_hero_title", "Page Title", "about_hero_subtitle", "Page Subtitle"),
		{
			ID:          "story",
			Label:       "Our Story",
			Description: "Detailed information about the foundation.",
			Fields: []Field{
				{Key: "about_who_we_are_title", Label: "Section Title", Type: FieldText},
				{Key: "about_who_we_are_content", Label: "Main Content", Type: FieldRich},
			},
		},
	},
	"work.html": {
		heroGroup("", "work_hero_title", "Page Title", "work_hero_subtitle", "Page Subtitle"),
		{
			ID:    "model",
			Label: "Our Integrated Model",
			Fields: []Field{
				{Key: "work_model_title", Label: "Section Title", Type: FieldText},
				{Key: "work_model_content", Label: "Main Content", Type: FieldRich},
			},
		},
	},
	"impact.html": {
		heroGroup("", "impact_hero_title", "Page Title", "impact_hero_subtitle", "Page Subtitle"),
		{
			ID:    "scaling",
			Label: "Scaling Forward",
			Fields: []Field{
				{Key: "impact_scaling_title", Label: "Section Title", Type: FieldText},
				{Key: "impact_scaling_target", Label: "Target Number", Type: FieldText},
				{Key: "impact_scaling_subtext", Label: "Description", Type: FieldText},
			},
		},
	},
	"contact.html": {
		heroGroup("", "contact_hero_title", "Page Title", "contact_hero_subtitle", "Page Subtitle"),
		{
			ID:    "form",
			Label: "Contact Form",
			Fields: []Field{
				{Key: "contact_form_title", Label: "Form Heading", Type: FieldText},
			},
		},
	},
}

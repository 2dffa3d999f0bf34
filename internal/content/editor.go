package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/storage"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrUnknownField      = errors.New("field is not declared for this page")
	ErrFieldTypeMismatch = errors.New("field type does not match its declaration")
	ErrInvalidLink       = errors.New("link target is not a known page")
	ErrHeroNotSupported  = errors.New("page does not have a hero image")
)

// SectionStore is the subset of Store used by the editor.
type SectionStore interface {
	PageWithSections(ctx context.Context, pageID uint) (*db.Page, error)
	PageOptions(ctx context.Context) ([]PageOption, error)
	UpdateSection(ctx context.Context, pageID, sectionID uint, raw []byte) error
	CreateSection(ctx context.Context, pageID uint, name string, raw []byte) (*db.Section, error)
	UpdateHeroImage(ctx context.Context, pageID uint, url string) error
}

// EditorOptions tunes reconciliation between schema and stored rows.
type EditorOptions struct {
	// SynthesizeMissing renders declared fields that have no stored row as
	// blank controls and creates the row when the form is saved. When false
	// such fields are omitted from the form.
	SynthesizeMissing bool
}

// Editor reconciles page schemas with stored sections and writes edits back.
type Editor struct {
	store     SectionStore
	objects   storage.Storage
	registry  Registry
	sanitizer *bluemonday.Policy
	opts      EditorOptions
}

// NewEditor returns an Editor. objects receives hero image uploads.
func NewEditor(store SectionStore, objects storage.Storage, registry Registry, opts EditorOptions) *Editor {
	return &Editor{
		store:     store,
		objects:   objects,
		registry:  registry,
		sanitizer: bluemonday.UGCPolicy(),
		opts:      opts,
	}
}

// Form is the editable view of one page.
type Form struct {
	PageID       uint        `json:"page_id"`
	Slug         string      `json:"slug"`
	Title        string      `json:"title"`
	HeroImageURL string      `json:"hero_image_url"`
	Editable     bool        `json:"editable"`
	Groups       []GroupView `json:"groups"`
}

// GroupView is one card of the editor.
type GroupView struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Description string           `json:"description,omitempty"`
	Hero        *HeroControl     `json:"hero,omitempty"`
	Repeatable  *RepeatableBlock `json:"repeatable,omitempty"`
	Fields      []FieldControl   `json:"fields"`
}

// HeroControl seeds the hero image picker with the current image.
type HeroControl struct {
	CurrentURL string `json:"current_url"`
}

// RepeatableBlock is an editable list section. SectionID is zero when the
// row does not exist yet.
type RepeatableBlock struct {
	Key       string     `json:"key"`
	SectionID uint       `json:"section_id"`
	Items     []ListItem `json:"items"`
}

// FieldControl is one input of the editor, addressed by its section row.
type FieldControl struct {
	SectionID uint         `json:"section_id"`
	Key       string       `json:"key"`
	Label     string       `json:"label"`
	Type      FieldType    `json:"type"`
	Value     string       `json:"value"`
	Missing   bool         `json:"missing,omitempty"`
	Options   []PageChoice `json:"options,omitempty"`
}

// PageChoice is an option of a page-link select.
type PageChoice struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// Open builds the editor form for pageID from its schema and stored rows.
func (e *Editor) Open(ctx context.Context, pageID uint) (*Form, error) {
	page, err := e.store.PageWithSections(ctx, pageID)
	if err != nil {
		return nil, err
	}

	groups := e.registry.Groups(page.Slug)
	form := &Form{
		PageID:       page.ID,
		Slug:         page.Slug,
		Title:        page.Title,
		HeroImageURL: page.HeroImageURL,
		Editable:     len(groups) > 0,
		Groups:       make([]GroupView, 0, len(groups)),
	}

	var options []PageOption
	if hasPageField(groups) {
		options, err = e.store.PageOptions(ctx)
		if err != nil {
			return nil, err
		}
	}

	for _, group := range groups {
		view := GroupView{ID: group.ID, Label: group.Label, Description: group.Description}

		if group.HasHeroImage {
			view.Hero = &HeroControl{CurrentURL: page.HeroImageURL}
		}

		if group.Repeatable {
			block := &RepeatableBlock{Key: group.Key, Items: []ListItem{}}
			if section := page.SectionByName(group.Key); section != nil {
				block.SectionID = section.ID
				block.Items = DecodePayload(KindList, section.Content).Items
			}
			view.Repeatable = block
		}

		for _, field := range group.Fields {
			section := page.SectionByName(field.Key)
			if section == nil && !e.opts.SynthesizeMissing {
				continue
			}

			control := FieldControl{Key: field.Key, Label: field.Label, Type: field.Type}
			if section != nil {
				control.SectionID = section.ID
				control.Value = DecodePayload(KindForField(field.Type), section.Content).Value
			} else {
				control.Missing = true
			}
			if field.Type == FieldPage {
				control.Options = pageChoices(options, control.Value)
			}
			view.Fields = append(view.Fields, control)
		}

		form.Groups = append(form.Groups, view)
	}

	return form, nil
}

func hasPageField(groups []Group) bool {
	for _, group := range groups {
		for _, field := range group.Fields {
			if field.Type == FieldPage {
				return true
			}
		}
	}
	return false
}

func pageChoices(options []PageOption, selected string) []PageChoice {
	choices := make([]PageChoice, 0, len(options))
	for _, option := range options {
		choices = append(choices, PageChoice{
			Slug:     option.Slug,
			Title:    option.Title,
			Selected: option.Slug == selected,
		})
	}
	return choices
}

// FieldValue is a submitted scalar input. SectionID addresses the row
// captured when the form was opened; Key is used when the row is missing.
type FieldValue struct {
	SectionID uint   `json:"section_id,omitempty"`
	Key       string `json:"key,omitempty"`
	Value     string `json:"value"`
}

// RepeatableValue is a submitted repeatable block.
type RepeatableValue struct {
	Key       string     `json:"key"`
	SectionID uint       `json:"section_id,omitempty"`
	Items     []ListItem `json:"items"`
}

// Submission is everything posted by the editor form.
type Submission struct {
	Fields      []FieldValue      `json:"fields,omitempty"`
	Rich        []FieldValue      `json:"rich,omitempty"`
	Repeatables []RepeatableValue `json:"repeatables,omitempty"`
	HeroImage   *storage.File     `json:"-"`
}

// SaveStep names the phase of a save.
type SaveStep string

const (
	StepHero       SaveStep = "hero"
	StepField      SaveStep = "field"
	StepRich       SaveStep = "rich"
	StepRepeatable SaveStep = "repeatable"
)

// SaveError reports the step at which a save stopped. Writes issued before
// the failing step stay committed.
type SaveError struct {
	Step SaveStep
	Key  string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("save %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("save %s %q: %v", e.Step, e.Key, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// SaveResult summarises the writes issued by Save.
type SaveResult struct {
	HeroImageURL string `json:"hero_image_url,omitempty"`
	Updated      int    `json:"updated"`
	Created      int    `json:"created"`
	Unchanged    int    `json:"unchanged"`
}

type plannedWrite struct {
	step      SaveStep
	key       string
	sectionID uint
	raw       []byte
	unchanged bool
}

// Save validates the submission against the page schema, then writes it as a
// best-effort sequential upsert: hero image, scalar fields, rich text,
// repeatable blocks. The first failing write stops the save; there is no
// rollback. Rows whose content is unchanged are not rewritten.
func (e *Editor) Save(ctx context.Context, pageID uint, sub Submission) (*SaveResult, error) {
	page, err := e.store.PageWithSections(ctx, pageID)
	if err != nil {
		return nil, err
	}

	writes, err := e.plan(ctx, page, sub)
	if err != nil {
		return nil, err
	}

	result := &SaveResult{}

	if sub.HeroImage != nil {
		stored, err := storage.UploadImage(ctx, e.objects, storage.BucketHeroes, *sub.HeroImage)
		if err != nil {
			return result, &SaveError{Step: StepHero, Err: err}
		}
		if err := e.store.UpdateHeroImage(ctx, page.ID, stored.URL); err != nil {
			return result, &SaveError{Step: StepHero, Err: err}
		}
		result.HeroImageURL = stored.URL
	}

	for _, w := range writes {
		if w.unchanged {
			result.Unchanged++
			continue
		}
		if w.sectionID != 0 {
			err = e.store.UpdateSection(ctx, page.ID, w.sectionID, w.raw)
			if err == nil {
				result.Updated++
			}
		} else {
			_, err = e.store.CreateSection(ctx, page.ID, w.key, w.raw)
			if err == nil {
				result.Created++
			}
		}
		if err != nil {
			return result, &SaveError{Step: w.step, Key: w.key, Err: err}
		}
	}

	return result, nil
}

func (e *Editor) plan(ctx context.Context, page *db.Page, sub Submission) ([]plannedWrite, error) {
	if sub.HeroImage != nil && !e.registry.HasHeroImage(page.Slug) {
		return nil, &SaveError{Step: StepHero, Err: ErrHeroNotSupported}
	}

	var slugs map[string]bool
	writes := make([]plannedWrite, 0, len(sub.Fields)+len(sub.Rich)+len(sub.Repeatables))

	for _, fv := range sub.Fields {
		field, section, err := e.resolveField(page, fv)
		if err != nil {
			return nil, &SaveError{Step: StepField, Key: fieldKey(fv, section), Err: err}
		}
		if field.Type == FieldRich {
			return nil, &SaveError{Step: StepField, Key: field.Key, Err: ErrFieldTypeMismatch}
		}
		value := fv.Value
		if field.Type == FieldPage {
			value = strings.TrimSpace(value)
			if slugs == nil {
				slugs, err = e.knownSlugs(ctx)
				if err != nil {
					return nil, err
				}
			}
			if value != "" && !slugs[value] {
				return nil, &SaveError{Step: StepField, Key: field.Key, Err: ErrInvalidLink}
			}
		}
		w, err := scalarWrite(StepField, field, section, value, value)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}

	for _, fv := range sub.Rich {
		field, section, err := e.resolveField(page, fv)
		if err != nil {
			return nil, &SaveError{Step: StepRich, Key: fieldKey(fv, section), Err: err}
		}
		if field.Type != FieldRich {
			return nil, &SaveError{Step: StepRich, Key: field.Key, Err: ErrFieldTypeMismatch}
		}
		w, err := scalarWrite(StepRich, field, section, fv.Value, e.sanitizer.Sanitize(fv.Value))
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}

	for _, rv := range sub.Repeatables {
		group, ok := e.registry.RepeatableGroup(page.Slug, rv.Key)
		if !ok {
			return nil, &SaveError{Step: StepRepeatable, Key: rv.Key, Err: ErrUnknownField}
		}
		section := page.SectionByName(group.Key)
		if rv.SectionID != 0 && (section == nil || section.ID != rv.SectionID) {
			return nil, &SaveError{Step: StepRepeatable, Key: group.Key, Err: ErrSectionNotFound}
		}

		items := make([]ListItem, 0, len(rv.Items))
		for _, item := range rv.Items {
			if !item.Empty() {
				items = append(items, item)
			}
		}
		payload := List(items)

		w := plannedWrite{step: StepRepeatable, key: group.Key}
		if section != nil {
			w.sectionID = section.ID
			w.unchanged = DecodePayload(KindList, section.Content).Equal(payload)
		}
		if !w.unchanged {
			raw, err := payload.Encode()
			if err != nil {
				return nil, &SaveError{Step: StepRepeatable, Key: group.Key, Err: err}
			}
			w.raw = raw
		}
		writes = append(writes, w)
	}

	return writes, nil
}

// resolveField maps a submitted value to its declared field and stored row.
// section is nil when the row does not exist and synthesis is enabled.
func (e *Editor) resolveField(page *db.Page, fv FieldValue) (Field, *db.Section, error) {
	var section *db.Section
	key := strings.TrimSpace(fv.Key)

	if fv.SectionID != 0 {
		section = page.SectionByID(fv.SectionID)
		if section == nil {
			return Field{}, nil, ErrSectionNotFound
		}
		if key != "" && key != section.SectionName {
			return Field{}, section, ErrSectionNotFound
		}
		key = section.SectionName
	} else {
		if key == "" {
			return Field{}, nil, ErrUnknownField
		}
		section = page.SectionByName(key)
		if section == nil && !e.opts.SynthesizeMissing {
			return Field{}, nil, ErrSectionNotFound
		}
	}

	field, ok := e.registry.Field(page.Slug, key)
	if !ok {
		return Field{}, section, ErrUnknownField
	}
	return field, section, nil
}

func fieldKey(fv FieldValue, section *db.Section) string {
	if section != nil {
		return section.SectionName
	}
	return fv.Key
}

// scalarWrite compares the submitted value with the stored one before any
// normalisation so that saving an untouched form rewrites nothing.
func scalarWrite(step SaveStep, field Field, section *db.Section, submitted, normalized string) (plannedWrite, error) {
	kind := KindForField(field.Type)
	w := plannedWrite{step: step, key: field.Key}
	if section != nil {
		w.sectionID = section.ID
		if DecodePayload(kind, section.Content).Value == submitted {
			w.unchanged = true
			return w, nil
		}
	}
	raw, err := Payload{Kind: kind, Value: normalized}.Encode()
	if err != nil {
		return w, &SaveError{Step: step, Key: field.Key, Err: err}
	}
	w.raw = raw
	return w, nil
}

func (e *Editor) knownSlugs(ctx context.Context) (map[string]bool, error) {
	options, err := e.store.PageOptions(ctx)
	if err != nil {
		return nil, err
	}
	slugs := make(map[string]bool, len(options))
	for _, option := range options {
		slugs[option.Slug] = true
	}
	return slugs, nil
}

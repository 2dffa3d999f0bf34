package content

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Kind tags the shape of a stored section payload.
type Kind string

const (
	KindText Kind = "text"
	KindRich Kind = "rich"
	KindLink Kind = "link"
	KindList Kind = "list"
)

// ListItem is one entry of a repeatable block.
type ListItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Empty reports whether both label and value are blank.
func (i ListItem) Empty() bool {
	return strings.TrimSpace(i.Label) == "" && strings.TrimSpace(i.Value) == ""
}

// Payload is the decoded content of a section. Value is used by the scalar
// kinds, Items by KindList.
type Payload struct {
	Kind  Kind
	Value string
	Items []ListItem
}

// Text returns a plain text payload.
func Text(value string) Payload { return Payload{Kind: KindText, Value: value} }

// Rich returns a rich text payload holding formatted markup.
func Rich(value string) Payload { return Payload{Kind: KindRich, Value: value} }

// Link returns a page-link payload holding a page slug.
func Link(slug string) Payload { return Payload{Kind: KindLink, Value: slug} }

// List returns a repeatable list payload.
func List(items []ListItem) Payload { return Payload{Kind: KindList, Items: items} }

// KindForField maps a schema field type to its payload kind.
func KindForField(t FieldType) Kind {
	switch t {
	case FieldRich:
		return KindRich
	case FieldPage:
		return KindLink
	default:
		return KindText
	}
}

// Equal compares two payloads by kind and content.
func (p Payload) Equal(other Payload) bool {
	if p.Kind != other.Kind {
		return false
	}
	if p.Kind == KindList {
		return slices.Equal(p.Items, other.Items)
	}
	return p.Value == other.Value
}

type scalarWire struct {
	Value string `json:"value"`
}

type listWire struct {
	List []ListItem `json:"list"`
}

// Encode returns the canonical JSON stored in the sections table:
// {"value": ...} for scalar kinds and {"list": [...]} for lists. Markup is
// not HTML-escaped so stored rich text stays readable.
func (p Payload) Encode() ([]byte, error) {
	var wire any
	if p.Kind == KindList {
		items := p.Items
		if items == nil {
			items = []ListItem{}
		}
		wire = listWire{List: items}
	} else {
		wire = scalarWire{Value: p.Value}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodePayload reads raw stored JSON as the declared kind. Empty, malformed
// or wrongly shaped content yields an empty payload of that kind.
func DecodePayload(kind Kind, raw []byte) Payload {
	empty := Payload{Kind: kind}
	if kind == KindList {
		empty.Items = []ListItem{}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return empty
	}

	if kind == KindList {
		var wire struct {
			List *[]ListItem `json:"list"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil || wire.List == nil {
			return empty
		}
		items := *wire.List
		if items == nil {
			items = []ListItem{}
		}
		return Payload{Kind: KindList, Items: items}
	}

	var wire struct {
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil || wire.Value == nil {
		return empty
	}
	return Payload{Kind: kind, Value: *wire.Value}
}

package content

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Placeholder attributes recognised in public markup.
const (
	attrHero    = "data-cms-hero"
	attrBlock   = "data-cms-block"
	attrLink    = "data-cms-link"
	attrSetting = "data-setting"
	attrFeed    = "data-cms-feed"
)

// Feed names understood by data-cms-feed.
const (
	FeedProjects = "projects"
	FeedNews     = "news"
)

var emptyFeedMessages = map[string]string{
	FeedProjects: "No featured projects available.",
	FeedNews:     "No news updates available.",
}

// Render parses markup, injects the content of view into its placeholders
// and writes the result to w. Placeholders without matching content are left
// as they are.
func Render(markup io.Reader, view View, w io.Writer) error {
	doc, err := html.Parse(markup)
	if err != nil {
		return fmt.Errorf("parse markup: %w", err)
	}
	inject(doc, view)
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render markup: %w", err)
	}
	return nil
}

func inject(n *html.Node, view View) {
	if n.Type == html.ElementNode && applyPlaceholders(n, view) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		inject(c, view)
		c = next
	}
}

// applyPlaceholders rewrites n and reports whether its children were
// replaced, in which case they are not visited again.
func applyPlaceholders(n *html.Node, view View) bool {
	if _, ok := getAttr(n, attrHero); ok && view.HeroImageURL != "" {
		style, _ := getAttr(n, "style")
		setAttr(n, "style", appendStyle(style, heroStyle(view.HeroImageURL)))
	}

	if name, ok := getAttr(n, attrLink); ok {
		if payload, found := view.Blocks[name]; found && payload.Value != "" {
			setAttr(n, "href", payload.Value)
		}
	}

	replaced := false

	if name, ok := getAttr(n, attrBlock); ok {
		if payload, found := view.Blocks[name]; found {
			switch {
			case payload.Kind == KindList:
				replaceChildren(n, metricNodes(payload.Items)...)
			case n.DataAtom == atom.A:
				replaceChildren(n, textNode(payload.Value))
			default:
				replaceChildren(n, &html.Node{Type: html.RawNode, Data: payload.Value})
			}
			replaced = true
		}
	}

	if key, ok := getAttr(n, attrSetting); ok {
		if value, found := view.Settings[key]; found {
			replaced = applySetting(n, key, value) || replaced
		}
	}

	if name, ok := getAttr(n, attrFeed); ok {
		if items, found := view.Feeds[name]; found {
			replaceChildren(n, feedNodes(name, items)...)
			replaced = true
		}
	}

	return replaced
}

func applySetting(n *html.Node, key, value string) bool {
	switch {
	case n.DataAtom == atom.A && strings.Contains(key, "email"):
		setAttr(n, "href", "mailto:"+value)
	case n.DataAtom == atom.A && strings.Contains(key, "phone"):
		setAttr(n, "href", "tel:"+value)
	case n.DataAtom == atom.Iframe:
		setAttr(n, "src", value)
		return false
	case strings.Contains(key, "map"):
		return false
	}
	replaceChildren(n, textNode(value))
	return true
}

var cssURLEscaper = strings.NewReplacer(`'`, "%27", `"`, "%22", "\n", "", ")", "%29")

func backgroundStyle(url string) string {
	return fmt.Sprintf("background-image: url('%s')", cssURLEscaper.Replace(url))
}

func heroStyle(url string) string {
	return backgroundStyle(url) + "; background-size: cover; background-position: center"
}

func appendStyle(existing, extra string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return extra
	}
	if !strings.HasSuffix(existing, ";") {
		existing += ";"
	}
	return existing + " " + extra
}

func metricNodes(items []ListItem) []*html.Node {
	nodes := make([]*html.Node, 0, len(items))
	for _, item := range items {
		counter := element(atom.Span, []html.Attribute{
			{Key: "class", Val: "counter"},
			{Key: "data-target", Val: digitsOnly(item.Value)},
		}, textNode(item.Value))
		label := element(atom.P, nil, textNode(item.Label))
		nodes = append(nodes, element(atom.Div, classAttr("metric-item"), counter, label))
	}
	return nodes
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func feedNodes(name string, items []FeedItem) []*html.Node {
	if len(items) == 0 {
		message, ok := emptyFeedMessages[name]
		if !ok {
			message = "Nothing to show yet."
		}
		return []*html.Node{element(atom.Div, classAttr("no-results"), textNode(message))}
	}
	nodes := make([]*html.Node, 0, len(items))
	for _, item := range items {
		if name == FeedNews {
			nodes = append(nodes, newsCard(item))
		} else {
			nodes = append(nodes, projectCard(item))
		}
	}
	return nodes
}

func projectCard(item FeedItem) *html.Node {
	image := element(atom.Div, classAttr("project-image-wrapper"),
		element(atom.Div, classAttr("project-category"), textNode(item.Tag)),
		element(atom.Div, []html.Attribute{
			{Key: "class", Val: "project-image"},
			{Key: "style", Val: backgroundStyle(item.ImageURL)},
		}),
	)
	info := element(atom.Div, classAttr("project-info"),
		element(atom.H3, nil, textNode(item.Title)),
		element(atom.P, nil, textNode(item.Summary)),
		element(atom.A, []html.Attribute{{Key: "href", Val: item.URL}, {Key: "class", Val: "read-more"}},
			textNode("Explore Project")),
	)
	return element(atom.Div, classAttr("project-card"), image, info)
}

func newsCard(item FeedItem) *html.Node {
	image := element(atom.Div, classAttr("news-image-wrapper"),
		element(atom.Div, []html.Attribute{
			{Key: "class", Val: "news-image"},
			{Key: "style", Val: backgroundStyle(item.ImageURL)},
		}),
	)
	body := element(atom.Div, classAttr("news-content"),
		element(atom.Div, classAttr("news-meta"),
			element(atom.Span, classAttr("news-date"), textNode(item.Date)),
			element(atom.Span, classAttr("news-tag"), textNode(item.Tag)),
		),
		element(atom.H3, nil, textNode(item.Title)),
		element(atom.P, classAttr("news-excerpt"), textNode(item.Summary)),
		element(atom.A, []html.Attribute{{Key: "href", Val: item.URL}, {Key: "class", Val: "read-more"}},
			textNode("Read Full Story")),
	)
	return element(atom.Article, classAttr("news-card"), image, body)
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}

func classAttr(class string) []html.Attribute {
	return []html.Attribute{{Key: "class", Val: class}}
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func replaceChildren(n *html.Node, children ...*html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, child := range children {
		n.AppendChild(child)
	}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

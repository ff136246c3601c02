package wikicode

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/graphport/wikitext/definitions"
)

// Attribute is one attribute of a tag, like `class="foo"`. The three pad
// fields hold the whitespace around the attribute exactly as written.
type Attribute struct {
	Name *Wikicode

	// Value is nil for a bare attribute with no "=".
	Value *Wikicode

	// Quotes is the quote character around the value: `"`, "'" or empty
	// for an unquoted value.
	Quotes string

	PadFirst    string
	PadBeforeEq string
	PadAfterEq  string
}

func (a *Attribute) String() string {
	result := a.PadFirst + a.Name.String() + a.PadBeforeEq
	if a.Value == nil {
		return result
	}
	result += "=" + a.PadAfterEq
	if a.Quotes != "" {
		return result + a.Quotes + a.Value.String() + a.Quotes
	}

	return result + a.Value.String()
}

// SetPadding replaces the whitespace runs around the attribute. Each value
// must be empty or entirely whitespace.
func (a *Attribute) SetPadding(first, beforeEq, afterEq string) error {
	for _, pad := range []string{first, beforeEq, afterEq} {
		if strings.ContainsFunc(pad, func(r rune) bool { return !unicode.IsSpace(r) }) {
			return fmt.Errorf("wikicode: padding %q must be entirely whitespace", pad)
		}
	}
	a.PadFirst = first
	a.PadBeforeEq = beforeEq
	a.PadAfterEq = afterEq

	return nil
}

// CoerceQuotes validates an attribute quote style: `"`, "'" or empty for an
// unquoted value.
func CoerceQuotes(quotes string) (string, error) {
	switch quotes {
	case "", `"`, "'":
		return quotes, nil
	}

	return "", fmt.Errorf("wikicode: %q is not a valid quote type", quotes)
}

// ValueNeedsQuotes returns the quote styles an attribute value accepts, or
// empty when the value can stand unquoted. A whitespace-bearing value free
// of both quote characters reports `"'`: either style works, with `"`
// preferred.
func ValueNeedsQuotes(value *Wikicode) string {
	if value == nil {
		return ""
	}
	var b strings.Builder
	for _, node := range value.nodes {
		if text, ok := node.(*Text); ok {
			b.WriteString(text.Value)
		}
	}
	val := b.String()
	if !strings.ContainsFunc(val, unicode.IsSpace) {
		return ""
	}
	hasSingle := strings.Contains(val, "'")
	hasDouble := strings.Contains(val, `"`)
	switch {
	case hasSingle && !hasDouble:
		return `"`
	case hasDouble && !hasSingle:
		return "'"
	}

	return `"'`
}

// Tag is an HTML tag like "<ref>...</ref>", or the tag form of wiki syntax:
// bold and italic quotes, list items, horizontal rules and tables all parse
// into tags carrying their original markup.
type Tag struct {
	Tag *Wikicode

	// Contents is nil for self-closing tags.
	Contents *Wikicode

	Attributes []*Attribute

	// WikiMarkup is the wiki shorthand this tag stands for, like "'''" for
	// a bold tag or "{|" for a table; empty for real HTML syntax.
	WikiMarkup string

	SelfClosing bool

	// Invalid marks a tag recovered from a stray "</"; it renders with the
	// slash.
	Invalid bool

	// Implicit marks a self-closing tag the parser supplied for syntax
	// that never closes in the source, like list items.
	Implicit bool

	// Padding is the whitespace before the ">" that ends the opening tag.
	Padding string

	// ClosingTag is the name written in the closing tag, which malformed
	// input can spell differently from the opening name. nil falls back to
	// Tag.
	ClosingTag *Wikicode

	// WikiStyleSeparator sits between a table cell's attributes and its
	// contents ("|").
	WikiStyleSeparator string

	// ClosingWikiMarkup closes wiki-markup syntax, like "|}" for a table;
	// empty when the construct closes without markup of its own.
	ClosingWikiMarkup string
}

func (t *Tag) String() string {
	var b strings.Builder
	if t.WikiMarkup != "" {
		b.WriteString(t.WikiMarkup)
		for _, attr := range t.Attributes {
			b.WriteString(attr.String())
		}
		b.WriteString(t.Padding)
		b.WriteString(t.WikiStyleSeparator)
		if t.SelfClosing {
			return b.String()
		}
		if t.Contents != nil {
			b.WriteString(t.Contents.String())
		}
		b.WriteString(t.ClosingWikiMarkup)

		return b.String()
	}

	if t.Invalid {
		b.WriteString("</")
	} else {
		b.WriteString("<")
	}
	b.WriteString(t.Tag.String())
	for _, attr := range t.Attributes {
		b.WriteString(attr.String())
	}
	if t.SelfClosing {
		b.WriteString(t.Padding)
		if t.Implicit {
			b.WriteString(">")
		} else {
			b.WriteString("/>")
		}

		return b.String()
	}
	b.WriteString(t.Padding)
	b.WriteString(">")
	if t.Contents != nil {
		b.WriteString(t.Contents.String())
	}
	b.WriteString("</")
	b.WriteString(t.closingTag().String())
	b.WriteString(">")

	return b.String()
}

func (t *Tag) closingTag() *Wikicode {
	if t.ClosingTag != nil {
		return t.ClosingTag
	}

	return t.Tag
}

func (t *Tag) NodeType() NodeType { return TypeTag }

func (t *Tag) Children() []*Wikicode {
	children := []*Wikicode{t.Tag}
	for _, attr := range t.Attributes {
		children = append(children, attr.Name)
		if attr.Value != nil {
			children = append(children, attr.Value)
		}
	}
	if !t.SelfClosing {
		if t.Contents != nil {
			children = append(children, t.Contents)
		}
		if t.ClosingTag != nil && t.ClosingTag != t.Tag {
			children = append(children, t.ClosingTag)
		}
	}

	return children
}

func (t *Tag) Strip(opts StripOptions) (string, bool) {
	if t.Contents == nil || !definitions.IsVisible(t.Tag.String()) {
		return "", false
	}

	return t.Contents.StripCodeOpts(opts), true
}

func (t *Tag) showTree(w *treeWriter) {
	if t.Invalid {
		w.write("</")
	} else {
		w.write("<")
	}
	w.get(t.Tag)
	for _, attr := range t.Attributes {
		w.get(attr.Name)
		if attr.Value == nil || attr.Value.String() == "" {
			continue
		}
		w.write("    = ")
		w.mark()
		w.get(attr.Value)
	}
	if t.SelfClosing {
		if t.Implicit {
			w.write(">")
		} else {
			w.write("/>")
		}
		return
	}
	w.write(">")
	if t.Contents != nil {
		w.get(t.Contents)
	}
	w.write("</")
	w.get(t.closingTag())
	w.write(">")
}

// HasAttr reports whether the tag has an attribute named name.
func (t *Tag) HasAttr(name string) bool {
	name = strings.TrimSpace(name)
	for _, attr := range t.Attributes {
		if attr.Name.String() == name {
			return true
		}
	}

	return false
}

// GetAttr returns the last attribute named name, or nil. Browsers ignore
// all but the last duplicate, so that is the one worth editing.
func (t *Tag) GetAttr(name string) *Attribute {
	name = strings.TrimSpace(name)
	for i := len(t.Attributes) - 1; i >= 0; i-- {
		if t.Attributes[i].Name.String() == name {
			return t.Attributes[i]
		}
	}

	return nil
}

// AddAttr appends an attribute named name with the given value, quoted
// with a style the value allows.
func (t *Tag) AddAttr(name, value string) (*Attribute, error) {
	nameCode, err := Parse(name)
	if err != nil {
		return nil, err
	}
	valueCode, err := Parse(value)
	if err != nil {
		return nil, err
	}
	quotes := `"`
	if needed := ValueNeedsQuotes(valueCode); needed != "" && !strings.Contains(needed, quotes) {
		quotes = needed[:1]
	}
	attr := &Attribute{
		Name:     nameCode,
		Value:    valueCode,
		Quotes:   quotes,
		PadFirst: " ",
	}
	t.Attributes = append(t.Attributes, attr)

	return attr, nil
}

// RemoveAttr removes every attribute named name.
func (t *Tag) RemoveAttr(name string) error {
	name = strings.TrimSpace(name)
	kept := t.Attributes[:0]
	removed := false
	for _, attr := range t.Attributes {
		if attr.Name.String() == name {
			removed = true
			continue
		}
		kept = append(kept, attr)
	}
	if !removed {
		return fmt.Errorf("wikicode: no attribute named %q", name)
	}
	t.Attributes = kept

	return nil
}

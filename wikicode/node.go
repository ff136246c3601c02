package wikicode

import (
	"fmt"
	"strings"
)

// NodeType identifies a node's kind. The filter helpers on Wikicode use it,
// and it keeps type switches over nodes honest.
type NodeType string

const (
	TypeArgument     NodeType = "ARGUMENT"
	TypeComment      NodeType = "COMMENT"
	TypeExternalLink NodeType = "EXTERNAL_LINK"
	TypeHeading      NodeType = "HEADING"
	TypeHTMLEntity   NodeType = "HTML_ENTITY"
	TypeTag          NodeType = "TAG"
	TypeTemplate     NodeType = "TEMPLATE"
	TypeText         NodeType = "TEXT"
	TypeWikilink     NodeType = "WIKILINK"
)

// StripOptions controls the plain-text projection done by StripCode and the
// Strip method on nodes.
type StripOptions struct {
	// Normalize replaces HTML entities with the characters they stand for.
	Normalize bool

	// Collapse squeezes repeated blank lines left behind by stripped nodes
	// and trims newlines from the ends of the result.
	Collapse bool

	// KeepTemplateParams keeps the values of a template's parameters in
	// place of the template, instead of dropping it entirely.
	KeepTemplateParams bool
}

// Node is a single element of parsed wikitext. String returns the node's
// exact source markup, so concatenating every node of a tree reproduces the
// parsed input byte for byte.
//
// The set of implementations is closed: Text, Comment, HTMLEntity, Template,
// Argument, Wikilink, ExternalLink, Heading and Tag.
type Node interface {
	fmt.Stringer

	// NodeType reports which kind of node this is.
	NodeType() NodeType

	// Children returns the code sequences nested directly inside the node,
	// in source order.
	Children() []*Wikicode

	// Strip returns the node's contribution to stripped plain text. ok is
	// false for nodes that contribute nothing, such as comments.
	Strip(opts StripOptions) (string, bool)

	showTree(w *treeWriter)
}

// treeWriter accumulates the indented lines of a GetTree dump. Each nesting
// level indents by six spaces; mark makes the next write continue the
// current line, which is how separators like "| " pick up their operand.
type treeWriter struct {
	lines    []string
	indent   int
	joinNext bool
}

func (w *treeWriter) write(text string) {
	if w.joinNext && len(w.lines) > 0 {
		w.lines[len(w.lines)-1] += text
		w.joinNext = false
		return
	}
	w.lines = append(w.lines, strings.Repeat(" ", 6*w.indent)+text)
}

func (w *treeWriter) mark() {
	w.joinNext = true
}

func (w *treeWriter) get(code *Wikicode) {
	w.indent++
	for _, node := range code.nodes {
		node.showTree(w)
	}
	w.indent--
}

var treeTextEscaper = strings.NewReplacer(
	"\\", `\\`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// Text is a run of ordinary text between markup constructs.
type Text struct {
	Value string
}

func (t *Text) String() string { return t.Value }

func (t *Text) NodeType() NodeType { return TypeText }

func (t *Text) Children() []*Wikicode { return nil }

func (t *Text) Strip(StripOptions) (string, bool) { return t.Value, true }

func (t *Text) showTree(w *treeWriter) {
	w.write(treeTextEscaper.Replace(t.Value))
}

// Comment is a hidden HTML comment, like "<!-- foobar -->".
type Comment struct {
	Contents string
}

func (c *Comment) String() string { return "<!--" + c.Contents + "-->" }

func (c *Comment) NodeType() NodeType { return TypeComment }

func (c *Comment) Children() []*Wikicode { return nil }

func (c *Comment) Strip(StripOptions) (string, bool) { return "", false }

func (c *Comment) showTree(w *treeWriter) {
	w.write(c.String())
}

// Heading is a section heading: its title framed by level-many "=" signs.
type Heading struct {
	Title *Wikicode
	Level int
}

func (h *Heading) String() string {
	bar := strings.Repeat("=", h.Level)

	return bar + h.Title.String() + bar
}

func (h *Heading) NodeType() NodeType { return TypeHeading }

func (h *Heading) Children() []*Wikicode { return []*Wikicode{h.Title} }

func (h *Heading) Strip(opts StripOptions) (string, bool) {
	return h.Title.StripCodeOpts(opts), true
}

// SetLevel changes the heading depth, which must stay between 1 and 6.
func (h *Heading) SetLevel(level int) error {
	if level < 1 || level > 6 {
		return fmt.Errorf("wikicode: heading level %d out of range", level)
	}
	h.Level = level

	return nil
}

func (h *Heading) showTree(w *treeWriter) {
	bar := strings.Repeat("=", h.Level)
	w.write(bar)
	w.get(h.Title)
	w.write(bar)
}

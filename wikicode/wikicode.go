package wikicode

import "strings"

// Wikicode is an ordered sequence of parsed nodes: the result of Parse and
// the value of every nested code field on nodes. Its String method renders
// the exact source the sequence was parsed from.
type Wikicode struct {
	nodes []Node
}

func newWikicode(nodes []Node) *Wikicode {
	return &Wikicode{nodes: nodes}
}

func (w *Wikicode) String() string {
	var b strings.Builder
	for _, node := range w.nodes {
		b.WriteString(node.String())
	}

	return b.String()
}

// Nodes returns the node list. The slice is the live backing of the tree;
// mutate through the editing methods instead.
func (w *Wikicode) Nodes() []Node {
	return w.nodes
}

// Len returns the number of direct child nodes.
func (w *Wikicode) Len() int {
	return len(w.nodes)
}

// Get returns the node at index. The index must be in range, like a slice
// index.
func (w *Wikicode) Get(index int) Node {
	return w.nodes[index]
}

// Set replaces the node at index.
func (w *Wikicode) Set(index int, node Node) {
	w.nodes[index] = node
}

// IndexOf returns the position of target among the direct children,
// matched by identity, or -1.
func (w *Wikicode) IndexOf(target Node) int {
	for i, node := range w.nodes {
		if node == target {
			return i
		}
	}

	return -1
}

// Insert places node at index, shifting later nodes right. index may equal
// Len to append.
func (w *Wikicode) Insert(index int, node Node) {
	w.nodes = append(w.nodes[:index], append([]Node{node}, w.nodes[index:]...)...)
}

// Append adds node at the end.
func (w *Wikicode) Append(node Node) {
	w.nodes = append(w.nodes, node)
}

// Remove deletes target from the tree, matched by identity anywhere in the
// nested code sequences. It reports whether the node was found.
func (w *Wikicode) Remove(target Node) bool {
	if i := w.IndexOf(target); i >= 0 {
		w.nodes = append(w.nodes[:i], w.nodes[i+1:]...)
		return true
	}
	for _, node := range w.nodes {
		for _, child := range node.Children() {
			if child.Remove(target) {
				return true
			}
		}
	}

	return false
}

// walk visits the direct children in order and, when recursive, every
// nested node in document order after its parent.
func (w *Wikicode) walk(recursive bool, visit func(Node)) {
	for _, node := range w.nodes {
		visit(node)
		if recursive {
			walkChildren(node, visit)
		}
	}
}

func walkChildren(node Node, visit func(Node)) {
	for _, code := range node.Children() {
		for _, child := range code.nodes {
			visit(child)
			walkChildren(child, visit)
		}
	}
}

// Filter returns the nodes for which match returns true; a nil match keeps
// everything. With recursive, nested nodes are walked in document order.
func (w *Wikicode) Filter(recursive bool, match func(Node) bool) []Node {
	var out []Node
	w.walk(recursive, func(node Node) {
		if match == nil || match(node) {
			out = append(out, node)
		}
	})

	return out
}

// FilterTemplates returns every template node.
func (w *Wikicode) FilterTemplates(recursive bool) []*Template {
	var out []*Template
	w.walk(recursive, func(node Node) {
		if t, ok := node.(*Template); ok {
			out = append(out, t)
		}
	})

	return out
}

// FilterText returns every plain text node.
func (w *Wikicode) FilterText(recursive bool) []*Text {
	var out []*Text
	w.walk(recursive, func(node Node) {
		if t, ok := node.(*Text); ok {
			out = append(out, t)
		}
	})

	return out
}

// FilterComments returns every comment node.
func (w *Wikicode) FilterComments(recursive bool) []*Comment {
	var out []*Comment
	w.walk(recursive, func(node Node) {
		if c, ok := node.(*Comment); ok {
			out = append(out, c)
		}
	})

	return out
}

// FilterHTMLEntities returns every HTML entity node.
func (w *Wikicode) FilterHTMLEntities(recursive bool) []*HTMLEntity {
	var out []*HTMLEntity
	w.walk(recursive, func(node Node) {
		if e, ok := node.(*HTMLEntity); ok {
			out = append(out, e)
		}
	})

	return out
}

// FilterHeadings returns every heading node.
func (w *Wikicode) FilterHeadings(recursive bool) []*Heading {
	var out []*Heading
	w.walk(recursive, func(node Node) {
		if h, ok := node.(*Heading); ok {
			out = append(out, h)
		}
	})

	return out
}

// FilterWikilinks returns every internal link node.
func (w *Wikicode) FilterWikilinks(recursive bool) []*Wikilink {
	var out []*Wikilink
	w.walk(recursive, func(node Node) {
		if l, ok := node.(*Wikilink); ok {
			out = append(out, l)
		}
	})

	return out
}

// FilterExternalLinks returns every external link node.
func (w *Wikicode) FilterExternalLinks(recursive bool) []*ExternalLink {
	var out []*ExternalLink
	w.walk(recursive, func(node Node) {
		if l, ok := node.(*ExternalLink); ok {
			out = append(out, l)
		}
	})

	return out
}

// FilterArguments returns every template argument node.
func (w *Wikicode) FilterArguments(recursive bool) []*Argument {
	var out []*Argument
	w.walk(recursive, func(node Node) {
		if a, ok := node.(*Argument); ok {
			out = append(out, a)
		}
	})

	return out
}

// FilterTags returns every tag node.
func (w *Wikicode) FilterTags(recursive bool) []*Tag {
	var out []*Tag
	w.walk(recursive, func(node Node) {
		if t, ok := node.(*Tag); ok {
			out = append(out, t)
		}
	})

	return out
}

// StripCode renders the sequence as plain text with markup removed,
// normalizing entities and collapsing the gaps stripped nodes leave.
func (w *Wikicode) StripCode() string {
	return w.StripCodeOpts(StripOptions{Normalize: true, Collapse: true})
}

// StripCodeOpts is StripCode under explicit options.
func (w *Wikicode) StripCodeOpts(opts StripOptions) string {
	var b strings.Builder
	for _, node := range w.nodes {
		if text, ok := node.Strip(opts); ok {
			b.WriteString(text)
		}
	}
	stripped := b.String()
	if opts.Collapse {
		stripped = strings.Trim(stripped, "\n")
		for strings.Contains(stripped, "\n\n\n") {
			stripped = strings.ReplaceAll(stripped, "\n\n\n", "\n\n")
		}
	}

	return stripped
}

// GetTree renders an indented outline of the parse tree, one syntax element
// per line, nested content six spaces deeper than its parent.
func (w *Wikicode) GetTree() string {
	tw := &treeWriter{}
	for _, node := range w.nodes {
		node.showTree(tw)
	}

	return strings.Join(tw.lines, "\n")
}

package wikicode

// Wikilink is an internal link, "[[title]]" or "[[title|text]]".
type Wikilink struct {
	Title *Wikicode

	// Text is the displayed text after the pipe, or nil when the link has
	// no pipe.
	Text *Wikicode
}

func (l *Wikilink) String() string {
	if l.Text != nil {
		return "[[" + l.Title.String() + "|" + l.Text.String() + "]]"
	}

	return "[[" + l.Title.String() + "]]"
}

func (l *Wikilink) NodeType() NodeType { return TypeWikilink }

func (l *Wikilink) Children() []*Wikicode {
	children := []*Wikicode{l.Title}
	if l.Text != nil {
		children = append(children, l.Text)
	}

	return children
}

func (l *Wikilink) Strip(opts StripOptions) (string, bool) {
	if l.Text != nil {
		return l.Text.StripCodeOpts(opts), true
	}

	return l.Title.StripCodeOpts(opts), true
}

func (l *Wikilink) showTree(w *treeWriter) {
	w.write("[[")
	w.get(l.Title)
	if l.Text != nil {
		w.write("    | ")
		w.mark()
		w.get(l.Text)
	}
	w.write("]]")
}

// ExternalLink is an outbound link: bracketed with an optional title, like
// "[http://example.com Example]", or a bare URL recognized in running text.
type ExternalLink struct {
	URL *Wikicode

	// Title is the displayed text of a bracketed link, or nil.
	Title *Wikicode

	// Brackets distinguishes "[url]" links from free links.
	Brackets bool

	// SuppressSpace is set when no space separated the URL from the title
	// in the source, which happens when markup like bold quotes ends the
	// URL instead.
	SuppressSpace bool
}

func (l *ExternalLink) String() string {
	if !l.Brackets {
		return l.URL.String()
	}
	if l.Title == nil {
		return "[" + l.URL.String() + "]"
	}
	if l.SuppressSpace {
		return "[" + l.URL.String() + l.Title.String() + "]"
	}

	return "[" + l.URL.String() + " " + l.Title.String() + "]"
}

func (l *ExternalLink) NodeType() NodeType { return TypeExternalLink }

func (l *ExternalLink) Children() []*Wikicode {
	children := []*Wikicode{l.URL}
	if l.Title != nil {
		children = append(children, l.Title)
	}

	return children
}

func (l *ExternalLink) Strip(opts StripOptions) (string, bool) {
	if l.Brackets {
		if l.Title != nil {
			return l.Title.StripCodeOpts(opts), true
		}
		return "", false
	}

	return l.URL.StripCodeOpts(opts), true
}

func (l *ExternalLink) showTree(w *treeWriter) {
	if l.Brackets {
		w.write("[")
	}
	w.get(l.URL)
	if l.Title != nil {
		w.get(l.Title)
	}
	if l.Brackets {
		w.write("]")
	}
}

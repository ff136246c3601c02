package wikicode

// Argument is a template argument, "{{{name}}}" or "{{{name|default}}}".
type Argument struct {
	Name *Wikicode

	// Default is the fallback value after the pipe, or nil.
	Default *Wikicode
}

func (a *Argument) String() string {
	if a.Default != nil {
		return "{{{" + a.Name.String() + "|" + a.Default.String() + "}}}"
	}

	return "{{{" + a.Name.String() + "}}}"
}

func (a *Argument) NodeType() NodeType { return TypeArgument }

func (a *Argument) Children() []*Wikicode {
	children := []*Wikicode{a.Name}
	if a.Default != nil {
		children = append(children, a.Default)
	}

	return children
}

func (a *Argument) Strip(opts StripOptions) (string, bool) {
	if a.Default != nil {
		return a.Default.StripCodeOpts(opts), true
	}

	return "", false
}

func (a *Argument) showTree(w *treeWriter) {
	w.write("{{{")
	w.get(a.Name)
	if a.Default != nil {
		w.write("    | ")
		w.mark()
		w.get(a.Default)
	}
	w.write("}}}")
}

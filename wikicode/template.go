package wikicode

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Parameter is one parameter of a template. When ShowKey is false the
// parameter is positional: its Name holds the implicit ordinal ("1", "2", …)
// and only the value appears in the source.
type Parameter struct {
	Name    *Wikicode
	Value   *Wikicode
	ShowKey bool
}

func (p *Parameter) String() string {
	if p.ShowKey {
		return p.Name.String() + "=" + p.Value.String()
	}

	return p.Value.String()
}

// CanHideKey reports whether a parameter key may be left implicit, which is
// true only for purely numeric keys.
func CanHideKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}

	return true
}

// KeyMode selects how AddParam decides between a named and a positional
// parameter.
type KeyMode int

const (
	// KeyAuto hides the key when it is the next expected ordinal and shows
	// it otherwise.
	KeyAuto KeyMode = iota
	// KeyNamed always writes the key.
	KeyNamed
	// KeyHidden writes a positional parameter; the key must be numeric.
	KeyHidden
)

// ParamOptions adjusts AddParam. The zero value matches Add: automatic key
// handling, spacing conventions preserved, parameter appended at the end.
type ParamOptions struct {
	Key KeyMode

	// Before and After name an existing parameter to insert next to.
	Before string
	After  string

	// RawSpacing suppresses copying the template's whitespace conventions
	// onto the new parameter.
	RawSpacing bool
}

// Template is a transclusion, "{{name|...}}".
type Template struct {
	Name   *Wikicode
	Params []*Parameter
}

func (t *Template) String() string {
	if len(t.Params) == 0 {
		return "{{" + t.Name.String() + "}}"
	}
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(t.Name.String())
	for _, param := range t.Params {
		b.WriteString("|")
		b.WriteString(param.String())
	}
	b.WriteString("}}")

	return b.String()
}

func (t *Template) NodeType() NodeType { return TypeTemplate }

func (t *Template) Children() []*Wikicode {
	children := []*Wikicode{t.Name}
	for _, param := range t.Params {
		if param.ShowKey {
			children = append(children, param.Name)
		}
		children = append(children, param.Value)
	}

	return children
}

func (t *Template) Strip(opts StripOptions) (string, bool) {
	if !opts.KeepTemplateParams {
		return "", false
	}
	var parts []string
	for _, param := range t.Params {
		if part := param.Value.StripCodeOpts(opts); part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, " "), true
}

func (t *Template) showTree(w *treeWriter) {
	w.write("{{")
	w.get(t.Name)
	for _, param := range t.Params {
		w.write("    | ")
		w.mark()
		w.get(param.Name)
		w.write("    = ")
		w.mark()
		w.get(param.Value)
	}
	w.write("}}")
}

// Has reports whether the template has a parameter named name. With
// ignoreEmpty, parameters whose value is blank do not count.
func (t *Template) Has(name string, ignoreEmpty bool) bool {
	name = strings.TrimSpace(name)
	for _, param := range t.Params {
		if strings.TrimSpace(param.Name.String()) == name {
			if ignoreEmpty && strings.TrimSpace(param.Value.String()) == "" {
				continue
			}
			return true
		}
	}

	return false
}

// Get returns the parameter named name, or nil. When several parameters
// share a name the last one wins, matching how MediaWiki resolves them.
func (t *Template) Get(name string) *Parameter {
	name = strings.TrimSpace(name)
	for i := len(t.Params) - 1; i >= 0; i-- {
		if strings.TrimSpace(t.Params[i].Name.String()) == name {
			return t.Params[i]
		}
	}

	return nil
}

// Add sets the parameter name to value, replacing the value of an existing
// parameter of that name. Purely numeric names become positional parameters
// when they fit the template's parameter order, and the whitespace style of
// the existing named parameters is copied onto the new one.
func (t *Template) Add(name, value string) (*Parameter, error) {
	return t.AddParam(name, value, ParamOptions{})
}

// AddParam is Add with explicit control over key handling, spacing and
// insert position.
func (t *Template) AddParam(name, value string, opts ParamOptions) (*Parameter, error) {
	nameCode, err := Parse(name)
	if err != nil {
		return nil, err
	}
	valueCode, err := Parse(value)
	if err != nil {
		return nil, err
	}
	surfaceEscape(valueCode, '|')

	if t.Has(name, false) {
		return t.setExisting(name, valueCode, opts)
	}

	showKey := true
	switch opts.Key {
	case KeyHidden:
		if !CanHideKey(name) {
			return nil, fmt.Errorf("wikicode: parameter key %q cannot be hidden", strings.TrimSpace(name))
		}
		showKey = false
	case KeyNamed:
	case KeyAuto:
		if CanHideKey(name) {
			intName, _ := strconv.Atoi(strings.TrimSpace(name))
			hidden := make(map[int]bool)
			for _, param := range t.Params {
				if param.ShowKey {
					continue
				}
				if k, err := strconv.Atoi(strings.TrimSpace(param.Name.String())); err == nil {
					hidden[k] = true
				}
			}
			expected := 1
			for hidden[expected] {
				expected++
			}
			showKey = expected != intName
		}
	}
	if !showKey {
		surfaceEscape(valueCode, '=')
	}

	if !opts.RawSpacing && showKey {
		beforeN, afterN := t.spacingConventions(true)
		beforeV, afterV := t.spacingConventions(false)
		wrapWhitespace(nameCode, beforeN, afterN)
		wrapWhitespace(valueCode, beforeV, afterV)
	}

	param := &Parameter{Name: nameCode, Value: valueCode, ShowKey: showKey}
	switch {
	case opts.Before != "":
		target := t.Get(opts.Before)
		if target == nil {
			return nil, fmt.Errorf("wikicode: no parameter named %q", opts.Before)
		}
		i := t.paramIndex(target)
		t.Params = append(t.Params[:i], append([]*Parameter{param}, t.Params[i:]...)...)
	case opts.After != "":
		target := t.Get(opts.After)
		if target == nil {
			return nil, fmt.Errorf("wikicode: no parameter named %q", opts.After)
		}
		i := t.paramIndex(target) + 1
		t.Params = append(t.Params[:i], append([]*Parameter{param}, t.Params[i:]...)...)
	default:
		t.Params = append(t.Params, param)
	}

	return param, nil
}

// setExisting replaces the value of the parameter named name, keeping the
// whitespace that framed the old value.
func (t *Template) setExisting(name string, valueCode *Wikicode, opts ParamOptions) (*Parameter, error) {
	if err := t.Remove(name, true); err != nil {
		return nil, err
	}
	existing := t.Get(name)
	switch opts.Key {
	case KeyNamed:
		existing.ShowKey = true
	case KeyHidden:
		if !CanHideKey(existing.Name.String()) {
			return nil, fmt.Errorf("wikicode: parameter key %q cannot be hidden", strings.TrimSpace(existing.Name.String()))
		}
		existing.ShowKey = false
	}
	if !existing.ShowKey {
		surfaceEscape(valueCode, '=')
	}

	blanks := existing.Value.nodes
	if !opts.RawSpacing && existing.ShowKey && len(blanks) == 2 {
		var nodes []Node
		if before, ok := blanks[0].(*Text); ok && before.Value != "" {
			nodes = append(nodes, before)
		}
		nodes = append(nodes, valueCode.nodes...)
		if after, ok := blanks[1].(*Text); ok && after.Value != "" {
			nodes = append(nodes, after)
		}
		existing.Value = newWikicode(nodes)
	} else {
		existing.Value = valueCode
	}

	return existing, nil
}

// Remove drops every parameter named name. With keepField the first
// surviving match keeps its name and whitespace but loses its value.
// Removing a positional parameter makes the positional parameters after it
// show their keys, so their values keep their places.
func (t *Template) Remove(name string, keepField bool) error {
	name = strings.TrimSpace(name)
	removed := false
	var toRemove []int
	for i, param := range t.Params {
		if strings.TrimSpace(param.Name.String()) != name {
			continue
		}
		if keepField {
			if t.shouldRemove(i, name) {
				toRemove = append(toRemove, i)
			} else {
				blankParamValue(param.Value)
				keepField = false
			}
		} else {
			t.fixDependentParams(i)
			toRemove = append(toRemove, i)
		}
		removed = true
	}
	if !removed {
		return fmt.Errorf("wikicode: no parameter named %q", name)
	}
	for j := len(toRemove) - 1; j >= 0; j-- {
		i := toRemove[j]
		t.Params = append(t.Params[:i], t.Params[i+1:]...)
	}

	return nil
}

// RemoveExact removes one specific parameter, matched by identity.
func (t *Template) RemoveExact(needle *Parameter, keepField bool) error {
	for i, param := range t.Params {
		if param != needle {
			continue
		}
		if keepField {
			blankParamValue(param.Value)
		} else {
			t.fixDependentParams(i)
			t.Params = append(t.Params[:i], t.Params[i+1:]...)
		}
		return nil
	}

	return fmt.Errorf("wikicode: parameter is not part of the template")
}

// Update sets several parameters at once, in sorted key order so the result
// is deterministic.
func (t *Template) Update(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := t.Add(key, values[key]); err != nil {
			return err
		}
	}

	return nil
}

func (t *Template) paramIndex(needle *Parameter) int {
	for i, param := range t.Params {
		if param == needle {
			return i
		}
	}

	return -1
}

// shouldRemove looks ahead for a positional parameter with the same name.
// If one follows, the named one here should go instead of being blanked,
// since the positional one overrides it anyway.
func (t *Template) shouldRemove(i int, name string) bool {
	if !t.Params[i].ShowKey {
		return false
	}
	for _, after := range t.Params[i+1:] {
		if strings.TrimSpace(after.Name.String()) == name && !after.ShowKey {
			return true
		}
	}

	return false
}

// fixDependentParams unhides the keys of the positional parameters after
// index i, called before removing the positional parameter at i.
func (t *Template) fixDependentParams(i int) {
	if t.Params[i].ShowKey {
		return
	}
	for _, param := range t.Params[i+1:] {
		if !param.ShowKey {
			param.ShowKey = true
		}
	}
}

// blankParamValue replaces value's content with its own leading and
// trailing whitespace.
func blankParamValue(value *Wikicode) {
	sval := value.String()
	var before, after string
	if isAllSpace(sval) {
		after = sval
	} else {
		before, after = surroundingWhitespace(sval)
	}
	value.nodes = []Node{&Text{Value: before}, &Text{Value: after}}
}

// surfaceEscape rewrites char inside code's direct text nodes as a numeric
// HTML entity, so parameter values cannot break the template syntax around
// them.
func surfaceEscape(code *Wikicode, char byte) {
	entity := "&#" + strconv.Itoa(int(char)) + ";"
	for i := 0; i < len(code.nodes); i++ {
		text, ok := code.nodes[i].(*Text)
		if !ok || !strings.Contains(text.Value, string(char)) {
			continue
		}
		escaped := strings.ReplaceAll(text.Value, string(char), entity)
		replaced, err := Parse(escaped)
		if err != nil {
			text.Value = escaped
			continue
		}
		nodes := replaced.nodes
		code.nodes = append(code.nodes[:i], append(nodes, code.nodes[i+1:]...)...)
		i += len(nodes) - 1
	}
}

// wrapWhitespace surrounds code with literal whitespace text nodes.
func wrapWhitespace(code *Wikicode, before, after string) {
	if before != "" {
		code.nodes = append([]Node{&Text{Value: before}}, code.nodes...)
	}
	if after != "" {
		code.nodes = append(code.nodes, &Text{Value: after})
	}
}

// spacingConventions guesses the whitespace the template writes around its
// parameter names (useNames) or values. A style must account for more than
// half of the named parameters to win.
func (t *Template) spacingConventions(useNames bool) (string, string) {
	beforeTheories := make(map[string]int)
	afterTheories := make(map[string]int)
	for _, param := range t.Params {
		if !param.ShowKey {
			continue
		}
		var component string
		if useNames {
			component = param.Name.String()
		} else {
			component = param.Value.String()
		}
		before, after := surroundingWhitespace(component)
		if !useNames && isAllSpace(component) && strings.Contains(before, "\n") {
			// A blank value keeps its newline after the content slot, not
			// before it.
			head, rest, _ := strings.Cut(before, "\n")
			before, after = head, "\n"+rest
		}
		beforeTheories[before]++
		afterTheories[after]++
	}

	return selectTheory(beforeTheories), selectTheory(afterTheories)
}

func selectTheory(theories map[string]int) string {
	if len(theories) == 0 {
		return ""
	}
	best, bestCount, total := "", -1, 0
	for theory, count := range theories {
		total += count
		if count > bestCount {
			best, bestCount = theory, count
		}
	}
	if float64(bestCount)/float64(total) > 0.5 {
		return best
	}

	return ""
}

// surroundingWhitespace splits off the leading and trailing whitespace
// runs. A string that is all whitespace counts entirely as leading.
func surroundingWhitespace(s string) (before, after string) {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	before = s[:len(s)-len(trimmed)]
	if trimmed == "" {
		return before, ""
	}
	rest := strings.TrimRightFunc(trimmed, unicode.IsSpace)

	return before, trimmed[len(rest):]
}

func isAllSpace(s string) bool {
	return s != "" && strings.TrimLeftFunc(s, unicode.IsSpace) == ""
}

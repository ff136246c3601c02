package wikicode

import "strings"

// parseTemplateOrArgument matches the longest run of opening braces
// and peels it into templates and arguments from the inside out.
// Braces that pair with nothing degrade back into text.
func (t *tokenizer) parseTemplateOrArgument() error {
	t.head += 2
	braces := 2
	for t.read(0).text == "{" {
		t.head++
		braces++
	}
	hasContent := false
	if err := t.push(0); err != nil {
		return err
	}

	for braces > 0 {
		if braces == 1 {
			t.emitTextThenStack("{")
			return nil
		}
		if braces == 2 {
			if err := t.parseTemplate(hasContent); err != nil {
				if !isBadRoute(err) {
					return err
				}
				t.emitTextThenStack("{{")
				return nil
			}
			break
		}
		if err := t.parseArgument(); err != nil {
			if !isBadRoute(err) {
				return err
			}
			if err := t.parseTemplate(hasContent); err != nil {
				if !isBadRoute(err) {
					return err
				}
				t.emitTextThenStack(strings.Repeat("{", braces))
				return nil
			}
			braces -= 2
		} else {
			braces -= 3
		}
		if braces > 0 {
			t.head++
			hasContent = true
		}
	}

	t.emitAll(t.pop())
	if t.context()&ctxFailNext != 0 {
		t.top().context ^= ctxFailNext
	}
	return nil
}

// parseTemplate parses "{{...}}" as a template. hasContent marks a
// name that already wraps an inner template, which an empty name check
// would otherwise reject.
func (t *tokenizer) parseTemplate(hasContent bool) error {
	reset := t.head
	context := ctxTemplateName
	if hasContent {
		context |= ctxHasTemplate
	}
	template, err := t.parse(context, true)
	if err != nil {
		if isBadRoute(err) {
			t.head = reset
		}
		return err
	}
	t.emitFirst(Token{Type: TokenTemplateOpen})
	t.emitAll(template)
	t.emit(Token{Type: TokenTemplateClose})
	return nil
}

// parseArgument parses "{{{...}}}" as a template argument.
func (t *tokenizer) parseArgument() error {
	reset := t.head
	argument, err := t.parse(ctxArgumentName, true)
	if err != nil {
		if isBadRoute(err) {
			t.head = reset
		}
		return err
	}
	t.emitFirst(Token{Type: TokenArgumentOpen})
	t.emitAll(argument)
	t.emit(Token{Type: TokenArgumentClose})
	return nil
}

// handleTemplateParam closes out the name or the previous parameter
// and opens a fresh frame for the next one. A template whose name
// holds neither text nor a nested template cannot take parameters.
func (t *tokenizer) handleTemplateParam() error {
	if t.context()&ctxTemplateName != 0 {
		if t.context()&(ctxHasText|ctxHasTemplate) == 0 {
			return t.failRoute()
		}
		t.top().context ^= ctxTemplateName
	} else if t.context()&ctxTemplateParamValue != 0 {
		t.top().context ^= ctxTemplateParamValue
	} else {
		t.emitAll(t.pop())
	}
	t.top().context |= ctxTemplateParamKey
	t.emit(Token{Type: TokenTemplateParamSeparator})
	return t.push(t.context())
}

// handleTemplateParamValue folds the parameter key frame back in and
// switches to parsing its value.
func (t *tokenizer) handleTemplateParamValue() {
	t.emitAll(t.pop())
	t.top().context ^= ctxTemplateParamKey
	t.top().context |= ctxTemplateParamValue
	t.emit(Token{Type: TokenTemplateParamEquals})
}

// handleTemplateEnd closes the template. "{{}}" fails here: a name
// must have held text or a nested template.
func (t *tokenizer) handleTemplateEnd() ([]Token, error) {
	if t.context()&ctxTemplateName != 0 {
		if t.context()&(ctxHasText|ctxHasTemplate) == 0 {
			return nil, t.failRoute()
		}
	} else if t.context()&ctxTemplateParamKey != 0 {
		t.emitAll(t.pop())
	}
	t.head++
	return t.pop(), nil
}

// handleArgumentSeparator switches from an argument's name to its
// default value.
func (t *tokenizer) handleArgumentSeparator() {
	t.top().context ^= ctxArgumentName
	t.top().context |= ctxArgumentDefault
	t.emit(Token{Type: TokenArgumentSeparator})
}

// handleArgumentEnd closes the argument at its triple brace.
func (t *tokenizer) handleArgumentEnd() []Token {
	t.head += 2
	return t.pop()
}

package wikicode

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/graphport/wikitext/definitions"
)

const validSchemeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789+.-"

func validScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(validSchemeChars, s[i]) < 0 {
			return false
		}
	}
	return true
}

// isWordRune mirrors the word-boundary class: letters, digits, and
// underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// parseWikilink parses "[[...]]". A target that reads as an external
// link is reparsed as one, except inside an external link's title
// where it stays text.
func (t *tokenizer) parseWikilink() error {
	reset := t.head + 1
	t.head += 2
	link, _, err := t.reallyParseExternalLink(true)
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset + 1
		wikilink, err := t.parse(ctxWikilinkTitle, true)
		if err != nil {
			if !isBadRoute(err) {
				return err
			}
			t.head = reset
			t.emitText("[[")
			return nil
		}
		t.emit(Token{Type: TokenWikilinkOpen})
		t.emitAll(wikilink)
		t.emit(Token{Type: TokenWikilinkClose})
		return nil
	}
	if t.context()&ctxExtLinkTitle != 0 {
		t.head = reset
		t.emitText("[[")
		return nil
	}
	t.emitText("[")
	t.emit(Token{Type: TokenExternalLinkOpen, Brackets: true})
	t.emitAll(link)
	t.emit(Token{Type: TokenExternalLinkClose})
	return nil
}

// handleWikilinkSeparator switches from a wikilink's title to its
// display text.
func (t *tokenizer) handleWikilinkSeparator() {
	t.top().context ^= ctxWikilinkTitle
	t.top().context |= ctxWikilinkText
	t.emit(Token{Type: TokenWikilinkSeparator})
}

// handleWikilinkEnd closes the wikilink at its double bracket.
func (t *tokenizer) handleWikilinkEnd() []Token {
	t.head++
	return t.pop()
}

// parseBracketedURIScheme parses the scheme opening a "[..." link.
func (t *tokenizer) parseBracketedURIScheme() error {
	if err := t.push(ctxExtLinkURI); err != nil {
		return err
	}
	if t.read(0).text == "/" && t.read(1).text == "/" {
		t.emitText("//")
		t.head += 2
		return nil
	}
	var scheme strings.Builder
	for t.read(0).kind != fragEnd && validScheme(t.read(0).text) {
		scheme.WriteString(t.read(0).text)
		t.emitText(t.read(0).text)
		t.head++
	}
	if t.read(0).text != ":" {
		return t.failRoute()
	}
	t.emitText(":")
	t.head++
	slashes := t.read(0).text == "/" && t.read(1).text == "/"
	if slashes {
		t.emitText("//")
		t.head += 2
	}
	if !definitions.IsScheme(scheme.String(), slashes) {
		return t.failRoute()
	}
	return nil
}

// parseFreeURIScheme backtracks through buffered text for the scheme
// preceding the colon, then reopens it inside the link's own frame.
// The scheme was already written as plain text, so the caller strips
// it back out of the buffer once the link parses.
func (t *tokenizer) parseFreeURIScheme() error {
	var scheme []rune
	top := t.top()
scan:
	for i := len(top.textbuf) - 1; i >= 0; i-- {
		runes := []rune(top.textbuf[i])
		for j := len(runes) - 1; j >= 0; j-- {
			r := runes[j]
			if !isWordRune(r) {
				break scan
			}
			if r >= utf8.RuneSelf || strings.IndexByte(validSchemeChars, byte(r)) < 0 {
				return badRoute{}
			}
			scheme = append(scheme, r)
		}
	}
	for i, j := 0, len(scheme)-1; i < j; i, j = i+1, j-1 {
		scheme[i], scheme[j] = scheme[j], scheme[i]
	}
	slashes := t.read(0).text == "/" && t.read(1).text == "/"
	if !definitions.IsScheme(string(scheme), slashes) {
		return badRoute{}
	}
	if err := t.push(t.context() | ctxExtLinkURI); err != nil {
		return err
	}
	t.emitText(string(scheme))
	t.emitText(":")
	if slashes {
		t.emitText("//")
		t.head += 2
	}
	return nil
}

// handleFreeLinkText writes link text while peeling trailing
// punctuation off into tail. Held punctuation is flushed back into the
// link as soon as more link text follows it. Once an open paren
// appears, a closing paren stops counting as punctuation.
func (t *tokenizer) handleFreeLinkText(punct, tail, this string) (string, string) {
	if strings.Contains(this, "(") && strings.Contains(punct, ")") {
		punct = punct[:len(punct)-1]
	}
	if len(this) > 0 && strings.IndexByte(punct, this[len(this)-1]) >= 0 {
		i := len(this) - 1
		for ; i > 0; i-- {
			if strings.IndexByte(punct, this[i-1]) < 0 {
				break
			}
		}
		stripped := this[:i]
		if stripped != "" && tail != "" {
			t.emitText(tail)
			tail = ""
		}
		tail += this[i:]
		t.emitText(stripped)
		return punct, tail
	}
	if tail != "" {
		t.emitText(tail)
	}
	t.emitText(this)
	return punct, ""
}

// isURIEnd reports whether the current fragment terminates a URI.
func (t *tokenizer) isURIEnd(this, nxt frag) bool {
	if this.kind == fragEnd {
		return true
	}
	after := t.read(2)
	context := t.context()
	switch {
	case this.text == "\n" || this.text == "[" || this.text == "]" ||
		this.text == "<" || this.text == ">" || this.text == "\"":
		return true
	case strings.Contains(this.text, " "):
		return true
	case this.text == "'" && nxt.text == "'":
		return true
	case this.text == "|" && context&ctxTemplate != 0:
		return true
	case this.text == "=" && context&(ctxTemplateParamKey|ctxHeading) != 0:
		return true
	case this.text == "}" && nxt.text == "}" && context&ctxTemplate != 0:
		return true
	case this.text == "}" && nxt.text == "}" && after.text == "}" && context&ctxArgument != 0:
		return true
	}
	return false
}

// reallyParseExternalLink parses an external link's URI and title.
// The free-link form also returns trailing text that belongs after
// the link, like stripped punctuation.
func (t *tokenizer) reallyParseExternalLink(brackets bool) ([]Token, string, error) {
	var invalid string
	if brackets {
		if err := t.parseBracketedURIScheme(); err != nil {
			return nil, "", err
		}
		invalid = "\n ]"
	} else {
		if err := t.parseFreeURIScheme(); err != nil {
			return nil, "", err
		}
		invalid = "\n []"
	}
	first := t.read(0)
	if first.kind == fragEnd || strings.IndexByte(invalid, first.text[0]) >= 0 {
		return nil, "", t.failRoute()
	}
	punct := ",;\\.:!?)"
	tail := ""
	for {
		this, nxt := t.read(0), t.read(1)
		switch {
		case this.text == "&":
			if tail != "" {
				t.emitText(tail)
				tail = ""
			}
			if err := t.parseEntity(); err != nil {
				return nil, "", err
			}
		case this.text == "<" && nxt.text == "!" && t.read(2).text == "-" && t.read(3).text == "-":
			if tail != "" {
				t.emitText(tail)
				tail = ""
			}
			if err := t.parseComment(); err != nil {
				return nil, "", err
			}
		case this.text == "{" && nxt.text == "{" && t.canRecurse():
			if tail != "" {
				t.emitText(tail)
				tail = ""
			}
			if err := t.parseTemplateOrArgument(); err != nil {
				return nil, "", err
			}
		case brackets:
			if this.kind == fragEnd || this.text == "\n" {
				return nil, "", t.failRoute()
			}
			if this.text == "]" {
				return t.pop(), "", nil
			}
			if t.isURIEnd(this, nxt) {
				if strings.Contains(this.text, " ") {
					before, after, _ := strings.Cut(this.text, " ")
					t.emitText(before)
					t.emit(Token{Type: TokenExternalLinkSeparator})
					if after != "" {
						t.emitText(after)
					}
					t.head++
				} else {
					t.emit(Token{Type: TokenExternalLinkSeparator, SuppressSpace: true})
				}
				t.top().context ^= ctxExtLinkURI
				t.top().context |= ctxExtLinkTitle
				title, err := t.parse(0, false)
				return title, "", err
			}
			t.emitText(this.text)
		default:
			if t.isURIEnd(this, nxt) {
				if this.kind != fragEnd && strings.Contains(this.text, " ") {
					before, after, _ := strings.Cut(this.text, " ")
					punct, tail = t.handleFreeLinkText(punct, tail, before)
					tail += " " + after
				} else {
					t.head--
				}
				return t.pop(), tail, nil
			}
			punct, tail = t.handleFreeLinkText(punct, tail, this.text)
		}
		t.head++
	}
}

// removeURISchemeFromTextbuffer strips the scheme off the tail of the
// buffered text once a free link is confirmed. The colon after it was
// never buffered; it is the fragment that triggered the link parse.
func (t *tokenizer) removeURISchemeFromTextbuffer(scheme string) {
	length := len(scheme)
	top := t.top()
	for length > 0 {
		last := top.textbuf[len(top.textbuf)-1]
		if length < len(last) {
			top.textbuf[len(top.textbuf)-1] = last[:len(last)-length]
			break
		}
		length -= len(last)
		top.textbuf = top.textbuf[:len(top.textbuf)-1]
	}
}

// parseExternalLink parses a bracketed or free external link, falling
// back to plain text when the link route fails.
func (t *tokenizer) parseExternalLink(brackets bool) error {
	if t.context()&ctxNoExtLinks != 0 || !t.canRecurse() {
		if !brackets && t.context()&ctxDLTerm != 0 {
			t.handleDlTerm()
		} else {
			t.emitText(t.read(0).text)
		}
		return nil
	}

	reset := t.head
	t.head++
	link, extra, err := t.reallyParseExternalLink(brackets)
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		if !brackets && t.context()&ctxDLTerm != 0 {
			t.handleDlTerm()
		} else {
			t.emitText(t.read(0).text)
		}
		return nil
	}
	if !brackets {
		scheme, _, _ := strings.Cut(link[0].Text, ":")
		t.removeURISchemeFromTextbuffer(scheme)
	}
	t.emit(Token{Type: TokenExternalLinkOpen, Brackets: brackets})
	t.emitAll(link)
	t.emit(Token{Type: TokenExternalLinkClose})
	if extra != "" {
		t.emitText(extra)
	}
	return nil
}

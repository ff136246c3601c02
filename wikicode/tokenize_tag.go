package wikicode

import (
	"strings"
	"unicode"

	"github.com/graphport/wikitext/definitions"
)

// tagOpenData tracks attribute state while scanning an HTML open tag.
type tagOpenData struct {
	context     uint8
	padFirst    string
	padBeforeEq string
	padAfterEq  string
	quoter      string
	reset       int
}

const (
	tagCxName       uint8 = 1 << 0
	tagCxAttrReady  uint8 = 1 << 1
	tagCxAttrName   uint8 = 1 << 2
	tagCxAttrValue  uint8 = 1 << 3
	tagCxQuoted     uint8 = 1 << 4
	tagCxNoteSpace  uint8 = 1 << 5
	tagCxNoteEquals uint8 = 1 << 6
	tagCxNoteQuote  uint8 = 1 << 7
)

// splitTagChunks splits tag text into alternating runs of break
// characters (whitespace, double quotes, backslashes) and plain text.
func splitTagChunks(text string) []string {
	isBreak := func(r rune) bool {
		return r == '"' || r == '\\' || unicode.IsSpace(r)
	}
	var chunks []string
	start := 0
	inBreak := false
	for i, r := range text {
		b := isBreak(r)
		if i == 0 {
			inBreak = b
			continue
		}
		if b != inBreak {
			chunks = append(chunks, text[start:i])
			start = i
			inBreak = b
		}
	}
	if len(text) > 0 {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

// handleTagData routes a fragment of open-tag text through the
// attribute state machine.
func (t *tokenizer) handleTagData(data *tagOpenData, text string) error {
	for _, chunk := range splitTagChunks(text) {
		if data.context&tagCxName != 0 {
			if isMarkerText(chunk) || isSpaceText(chunk) {
				// Tags must start with text, not spaces.
				return t.failRoute()
			}
			data.context = tagCxNoteSpace
		} else if isSpaceText(chunk) {
			t.handleTagSpace(data, chunk)
			continue
		} else if data.context&tagCxNoteSpace != 0 {
			if data.context&tagCxQuoted != 0 {
				data.context = tagCxAttrValue
				t.memoizeBadRoute()
				t.pop()
				t.head = data.reset - 1 // advanced by the tag loop
				return nil
			}
			return t.failRoute()
		} else if data.context&tagCxAttrReady != 0 {
			data.context = tagCxAttrName
			if err := t.push(t.context() | ctxTagAttr); err != nil {
				return err
			}
		} else if data.context&tagCxAttrName != 0 {
			if chunk == "=" {
				data.context = tagCxAttrValue | tagCxNoteQuote
				t.emit(Token{Type: TokenTagAttrEquals})
				continue
			}
			if data.context&tagCxNoteEquals != 0 {
				t.pushTagBuffer(data)
				data.context = tagCxAttrName
				if err := t.push(t.context() | ctxTagAttr); err != nil {
					return err
				}
			}
		} else { // tagCxAttrValue
			escaped := t.read(-1).text == "\\" && t.read(-2).text != "\\"
			if data.context&tagCxNoteQuote != 0 {
				data.context ^= tagCxNoteQuote
				if (chunk == "'" || chunk == "\"") && !escaped {
					data.context |= tagCxQuoted
					data.quoter = chunk
					data.reset = t.head
					if err := t.push(t.context()); err != nil {
						if !isBadRoute(err) {
							return err
						}
						// Already failed to parse this as a quoted string.
						data.context = tagCxAttrValue
						t.head--
						return nil
					}
					continue
				}
			} else if data.context&tagCxQuoted != 0 {
				if chunk == data.quoter && !escaped {
					data.context |= tagCxNoteSpace
					continue
				}
			}
		}
		if err := t.handleTagText(chunk); err != nil {
			return err
		}
	}
	return nil
}

// handleTagSpace records whitespace inside an open tag, closing off
// a finished attribute value when one is pending.
func (t *tokenizer) handleTagSpace(data *tagOpenData, text string) {
	ctx := data.context
	endOfValue := ctx&tagCxAttrValue != 0 && ctx&(tagCxQuoted|tagCxNoteQuote) == 0
	if endOfValue || (ctx&tagCxQuoted != 0 && ctx&tagCxNoteSpace != 0) {
		t.pushTagBuffer(data)
		data.context = tagCxAttrReady
	} else if ctx&tagCxNoteSpace != 0 {
		data.context = tagCxAttrReady
	} else if ctx&tagCxAttrName != 0 {
		data.context |= tagCxNoteEquals
		data.padBeforeEq += text
	}
	if ctx&tagCxQuoted != 0 && ctx&tagCxNoteSpace == 0 {
		t.emitText(text)
	} else if data.context&tagCxAttrReady != 0 {
		data.padFirst += text
	} else if data.context&tagCxAttrValue != 0 {
		data.padAfterEq += text
	}
}

// handleTagText emits ordinary text inside an open tag, recursing
// into nested templates, wikilinks, and tags.
func (t *tokenizer) handleTagText(text string) error {
	nxt := t.read(1)
	switch {
	case !t.canRecurse() || !isMarkerText(text):
		t.emitText(text)
	case text == "{" && nxt.text == "{":
		return t.parseTemplateOrArgument()
	case text == "[" && nxt.text == "[":
		return t.parseWikilink()
	case text == "<":
		return t.parseTag()
	default:
		t.emitText(text)
	}
	return nil
}

// pushTagBuffer writes a pending tag attribute to the stack.
func (t *tokenizer) pushTagBuffer(data *tagOpenData) {
	if data.context&tagCxQuoted != 0 {
		t.emitFirst(Token{Type: TokenTagAttrQuote, Char: data.quoter})
		t.emitAll(t.pop())
	}
	t.emitFirst(Token{
		Type:        TokenTagAttrStart,
		PadFirst:    data.padFirst,
		PadBeforeEq: data.padBeforeEq,
		PadAfterEq:  data.padAfterEq,
	})
	t.emitAll(t.pop())
	data.padFirst, data.padBeforeEq, data.padAfterEq = "", "", ""
}

func (t *tokenizer) handleTagCloseOpen(data *tagOpenData, kind TokenType) {
	if data.context&(tagCxAttrName|tagCxAttrValue) != 0 {
		t.pushTagBuffer(data)
	}
	t.emit(Token{Type: kind, Padding: data.padFirst})
	t.head++
}

func (t *tokenizer) handleTagOpenClose() error {
	t.emit(Token{Type: TokenTagOpenClose})
	if err := t.push(ctxTagClose); err != nil {
		return err
	}
	t.head++
	return nil
}

// handleTagCloseClose finishes a closing tag, requiring its name to
// match the opening tag's.
func (t *tokenizer) handleTagCloseClose() ([]Token, error) {
	strip := func(tok Token) string {
		return strings.ToLower(strings.TrimRightFunc(tok.Text, unicode.IsSpace))
	}
	closing := t.pop()
	if len(closing) != 1 || closing[0].Type != TokenText ||
		strip(closing[0]) != strip(t.top().tokens[1]) {
		return nil, t.failRoute()
	}
	t.emitAll(closing)
	t.emit(Token{Type: TokenTagCloseClose})
	return t.pop(), nil
}

// handleBlacklistedTag consumes the body of a tag whose contents are
// never parsed as wikitext, stopping only at a matching closing tag.
func (t *tokenizer) handleBlacklistedTag() ([]Token, error) {
	strip := func(text string) string {
		return strings.ToLower(strings.TrimRightFunc(text, unicode.IsSpace))
	}
	for {
		this, nxt := t.read(0), t.read(1)
		switch {
		case this == endFrag:
			return nil, t.failRoute()
		case this.text == "<" && nxt.text == "/":
			t.head += 3
			if t.read(0).text != ">" || strip(t.read(-1).text) != strip(t.top().tokens[1].Text) {
				t.head--
				t.emitText("</")
				continue
			}
			t.emit(Token{Type: TokenTagOpenClose})
			t.emitText(t.read(-1).text)
			t.emit(Token{Type: TokenTagCloseClose})
			return t.pop(), nil
		case this.text == "&":
			if err := t.parseEntity(); err != nil {
				return nil, err
			}
		default:
			t.emitText(this.text)
		}
		t.head++
	}
}

// handleSingleOnlyTagEnd closes a tag that may never hold content.
func (t *tokenizer) handleSingleOnlyTagEnd() []Token {
	frame := t.top()
	last := frame.tokens[len(frame.tokens)-1]
	frame.tokens = frame.tokens[:len(frame.tokens)-1]
	t.emit(Token{Type: TokenTagCloseSelfclose, Padding: last.Padding, Implicit: true})
	// Offset displacement done by handleTagCloseOpen.
	t.head--
	return t.pop()
}

// handleSingleTagEnd rewrites an unclosed single-supporting tag as
// implicitly self-closing when the stream ends inside its body.
func (t *tokenizer) handleSingleTagEnd() ([]Token, error) {
	stack := t.top().tokens
	// Find the close of the open tag emitted at index 0.
	depth := 1
	index := -1
scan:
	for i := 2; i < len(stack); i++ {
		switch stack[i].Type {
		case TokenTagOpenOpen:
			depth++
		case TokenTagCloseOpen:
			depth--
			if depth == 0 {
				index = i
				break scan
			}
		case TokenTagCloseSelfclose:
			depth--
			if depth == 0 {
				return nil, ErrUnexpectedSelfClose
			}
		}
	}
	if index < 0 {
		return nil, ErrMissedTagCloseOpen
	}
	stack[index] = Token{Type: TokenTagCloseSelfclose, Padding: stack[index].Padding, Implicit: true}
	return t.pop(), nil
}

// handleInvalidTagStart handles "</" outside a tag body, which opens
// a valid tag only for the single-only names.
func (t *tokenizer) handleInvalidTagStart() error {
	reset := t.head + 1
	t.head += 2
	chunks := splitTagChunks(t.read(0).text)
	if len(chunks) == 0 || !definitions.IsSingleOnly(chunks[0]) {
		t.head = reset
		t.emitText("</")
		return nil
	}
	tag, err := t.reallyParseTag()
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		t.emitText("</")
		return nil
	}
	tag[0].Invalid = true
	t.emitAll(tag)
	return nil
}

func (t *tokenizer) reallyParseTag() ([]Token, error) {
	data := &tagOpenData{context: tagCxName}
	if err := t.push(ctxTagOpen); err != nil {
		return nil, err
	}
	t.emit(Token{Type: TokenTagOpenOpen})
	for {
		this, nxt := t.read(0), t.read(1)
		canExit := data.context&(tagCxQuoted|tagCxName) == 0 || data.context&tagCxNoteSpace != 0
		switch {
		case this == endFrag:
			if t.context()&ctxTagAttr != 0 {
				if data.context&tagCxQuoted != 0 {
					// Unclosed attribute quote: reparse it unquoted.
					data.context = tagCxAttrValue
					t.memoizeBadRoute()
					t.pop()
					t.head = data.reset
					continue
				}
				t.pop()
			}
			return nil, t.failRoute()
		case this.text == ">" && canExit:
			t.handleTagCloseOpen(data, TokenTagCloseOpen)
			t.top().context = ctxTagBody
			name := t.top().tokens[1].Text
			if definitions.IsSingleOnly(name) {
				return t.handleSingleOnlyTagEnd(), nil
			}
			if definitions.IsParsable(name) {
				return t.parse(0, false)
			}
			return t.handleBlacklistedTag()
		case this.text == "/" && nxt.text == ">" && canExit:
			t.handleTagCloseOpen(data, TokenTagCloseSelfclose)
			return t.pop(), nil
		default:
			if err := t.handleTagData(data, this.text); err != nil {
				return nil, err
			}
		}
		t.head++
	}
}

// parseTag parses an HTML tag at the head, degrading the bracket to
// text when no tag can be made of it.
func (t *tokenizer) parseTag() error {
	reset := t.head
	t.head++
	tag, err := t.reallyParseTag()
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		t.emitText("<")
		return nil
	}
	t.emitAll(tag)
	return nil
}

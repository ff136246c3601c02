package wikicode

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/graphport/wikitext/definitions"
)

// maxDepth bounds how many stack frames may be open at once. Past it
// the tokenizer degrades to plain text instead of recursing.
const maxDepth = 100

// markerChars are the bytes that can begin or shape wiki markup. The
// input is cut around them so the parser dispatches on one fragment
// at a time.
const markerChars = "{}[]<>|=&'#*;:/\\\"-!\n"

var markerBytes [256]bool

func init() {
	for i := 0; i < len(markerChars); i++ {
		markerBytes[markerChars[i]] = true
	}
}

// splitFragments breaks text into runs of plain text and single marker
// characters, dropping empty runs. Markers are all ASCII, so scanning
// bytes is safe in UTF-8 input.
func splitFragments(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !markerBytes[text[i]] {
			continue
		}
		if start < i {
			out = append(out, text[start:i])
		}
		out = append(out, text[i:i+1])
		start = i + 1
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

type fragKind uint8

const (
	fragText fragKind = iota
	fragStart
	fragEnd
)

// frag is one fragment of the split input. The sentinels bound the
// stream and carry no text.
type frag struct {
	text string
	kind fragKind
}

var (
	startFrag = frag{kind: fragStart}
	endFrag   = frag{kind: fragEnd}
)

// isSpace reports whether the fragment is entirely whitespace.
// Sentinels are not.
func (f frag) isSpace() bool {
	return f.kind == fragText && isSpaceText(f.text)
}

func isSpaceText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// isMarker reports whether the fragment dispatches as markup. The end
// sentinel counts so the main loop can close out the stream; the start
// sentinel does not.
func isMarker(f frag) bool {
	if f.kind == fragEnd {
		return true
	}
	return f.kind == fragText && isMarkerText(f.text)
}

func isMarkerText(s string) bool {
	return len(s) == 1 && markerBytes[s[0]]
}

// routeIdent identifies a parse attempt by where it started and what
// it was trying to parse. Failed attempts are memoized on it so no
// route is ever retried.
type routeIdent struct {
	head    int
	context uint64
}

// stackFrame is one speculative parse in progress: the tokens written
// so far, the context driving the dispatch, and buffered text that has
// not yet become a token.
type stackFrame struct {
	tokens  []Token
	context uint64
	textbuf []string
	ident   routeIdent
}

// tokenizer builds a flat token stream from raw wikitext. Parsing is
// speculative: each construct is attempted on its own stack frame, a
// failed attempt rewinds the head, and the route that failed is
// remembered so backtracking never repeats work.
type tokenizer struct {
	text          []string
	head          int
	global        uint64
	depth         int
	stacks        []stackFrame
	badRoutes     map[routeIdent]struct{}
	skipStyleTags bool

	// headingLevel carries the level computed by handleHeadingEnd back
	// out through parse, which otherwise only returns tokens.
	headingLevel int
}

func newTokenizer() *tokenizer {
	return &tokenizer{badRoutes: make(map[routeIdent]struct{})}
}

func (t *tokenizer) top() *stackFrame { return &t.stacks[len(t.stacks)-1] }

func (t *tokenizer) context() uint64 { return t.top().context }

// push opens a new frame for a speculative parse. It fails immediately
// when this exact route has already failed.
func (t *tokenizer) push(context uint64) error {
	ident := routeIdent{head: t.head, context: context}
	if _, ok := t.badRoutes[ident]; ok {
		return badRoute{context: context}
	}
	t.stacks = append(t.stacks, stackFrame{context: context, ident: ident})
	t.depth++
	return nil
}

// pushTextbuffer flushes buffered text into a single Text token.
func (t *tokenizer) pushTextbuffer() {
	top := t.top()
	if len(top.textbuf) == 0 {
		return
	}
	top.tokens = append(top.tokens, textToken(strings.Join(top.textbuf, "")))
	top.textbuf = nil
}

// pop closes the current frame and returns its tokens. The result is
// never nil, even for an empty frame: parseStyle reports a closed
// style frame to the parse loop by returning a non-nil slice.
func (t *tokenizer) pop() []Token {
	t.pushTextbuffer()
	t.depth--
	last := len(t.stacks) - 1
	frame := t.stacks[last]
	t.stacks = t.stacks[:last]
	if frame.tokens == nil {
		return []Token{}
	}
	return frame.tokens
}

// popKeepingContext pops like pop but transfers the closed frame's
// context onto the frame beneath it.
func (t *tokenizer) popKeepingContext() []Token {
	t.pushTextbuffer()
	t.depth--
	last := len(t.stacks) - 1
	frame := t.stacks[last]
	t.stacks = t.stacks[:last]
	t.stacks[last-1].context = frame.context
	return frame.tokens
}

func (t *tokenizer) canRecurse() bool { return t.depth < maxDepth }

// memoizeBadRoute records the current route so it is never retried.
func (t *tokenizer) memoizeBadRoute() {
	t.badRoutes[t.top().ident] = struct{}{}
}

// failRoute abandons the current frame and reports the failure. The
// returned error carries the context at the moment of failure, which
// style parsing inspects to decide on a second pass.
func (t *tokenizer) failRoute() error {
	context := t.context()
	t.memoizeBadRoute()
	t.pop()
	return badRoute{context: context}
}

// read returns the fragment at head+delta, or a sentinel out of range.
func (t *tokenizer) read(delta int) frag {
	index := t.head + delta
	if index < 0 {
		return startFrag
	}
	if index >= len(t.text) {
		return endFrag
	}
	return frag{text: t.text[index]}
}

// readStrict is read, except running off the end fails the route.
func (t *tokenizer) readStrict(delta int) (frag, error) {
	index := t.head + delta
	if index < 0 {
		return startFrag, nil
	}
	if index >= len(t.text) {
		return frag{}, t.failRoute()
	}
	return frag{text: t.text[index]}, nil
}

// emit writes a token to the current frame, flushing buffered text
// first so ordering is preserved.
func (t *tokenizer) emit(tok Token) {
	t.pushTextbuffer()
	top := t.top()
	top.tokens = append(top.tokens, tok)
}

// emitFirst writes a token to the front of the current frame.
func (t *tokenizer) emitFirst(tok Token) {
	t.pushTextbuffer()
	top := t.top()
	top.tokens = append([]Token{tok}, top.tokens...)
}

// emitText buffers text for a future Text token.
func (t *tokenizer) emitText(text string) {
	top := t.top()
	top.textbuf = append(top.textbuf, text)
}

// emitAll writes a series of tokens at once. A leading Text token is
// folded into the buffer so adjacent text stays contiguous.
func (t *tokenizer) emitAll(toks []Token) {
	if len(toks) > 0 && toks[0].Type == TokenText {
		t.emitText(toks[0].Text)
		toks = toks[1:]
	}
	t.pushTextbuffer()
	top := t.top()
	top.tokens = append(top.tokens, toks...)
}

// emitTextThenStack pops the current frame and flattens it back out as
// text followed by whatever the frame held, stepping back a fragment.
func (t *tokenizer) emitTextThenStack(text string) {
	stack := t.pop()
	t.emitText(text)
	if len(stack) > 0 {
		t.emitAll(stack)
	}
	t.head--
}

// lineStart reports whether the head sits at the start of a line.
func (t *tokenizer) lineStart() bool {
	prev := t.read(-1)
	return prev.text == "\n" || prev.kind == fragStart
}

// lineStartSkippingSpace is lineStart but tolerates leading
// whitespace, which table markup allows. Whitespace runs form a
// single fragment, so one step back covers any amount.
func (t *tokenizer) lineStartSkippingSpace() bool {
	if t.lineStart() {
		return true
	}
	prev2 := t.read(-2)
	return (prev2.text == "\n" || prev2.kind == fragStart) && t.read(-1).isSpace()
}

// verifySafe checks whether the fragment may legally appear in the
// current unsafe context. Some branches only flag the context so the
// next fragment fails instead, letting a potential comment or nested
// brace consume one more fragment before the route dies.
func (t *tokenizer) verifySafe(this frag) bool {
	context := t.context()
	if context&ctxFailNext != 0 {
		return false
	}
	if context&ctxWikilinkTitle != 0 {
		switch {
		case this.text == "]" || this.text == "{":
			t.top().context |= ctxFailNext
		case this.text == "\n" || this.text == "[" || this.text == "}" || this.text == ">":
			return false
		case this.text == "<":
			if t.read(1).text == "!" {
				t.top().context |= ctxFailNext
			} else {
				return false
			}
		}
		return true
	}
	if context&ctxExtLinkTitle != 0 {
		return this.text != "\n"
	}
	if context&ctxTemplateName != 0 {
		switch {
		case this.text == "{":
			t.top().context |= ctxHasTemplate | ctxFailNext
		case this.text == "}" || (this.text == "<" && t.read(1).text == "!"):
			t.top().context |= ctxFailNext
		case this.text == "[" || this.text == "]" || this.text == "<" || this.text == ">":
			return false
		case this.text == "|":
			return true
		case context&ctxHasText != 0:
			if context&ctxFailOnText != 0 {
				if this.kind == fragEnd || !this.isSpace() {
					return false
				}
			} else if this.text == "\n" {
				t.top().context |= ctxFailOnText
			}
		case this.kind == fragEnd || !this.isSpace():
			t.top().context |= ctxHasText
		}
		return true
	}
	if context&ctxTagClose != 0 {
		return this.text != "<"
	}
	switch {
	case context&ctxFailOnEquals != 0:
		if this.text == "=" {
			return false
		}
	case context&ctxFailOnLbrace != 0:
		if this.text == "{" || (t.read(-1).text == "{" && t.read(-2).text == "{") {
			if context&ctxTemplate != 0 {
				t.top().context |= ctxFailOnEquals
			} else {
				t.top().context |= ctxFailNext
			}
			return true
		}
		t.top().context ^= ctxFailOnLbrace
	case context&ctxFailOnRbrace != 0:
		if this.text == "}" {
			t.top().context |= ctxFailNext
			return true
		}
		t.top().context ^= ctxFailOnRbrace
	case this.text == "{":
		t.top().context |= ctxFailOnLbrace
	case this.text == "}":
		t.top().context |= ctxFailOnRbrace
	}
	return true
}

// handleEnd closes out the stream. Frames still expecting structure
// fail their route; an unclosed single-supporting tag gets an implicit
// close synthesized first.
func (t *tokenizer) handleEnd() ([]Token, error) {
	if t.context()&ctxFail != 0 {
		if t.context()&ctxTagBody != 0 {
			top := t.top()
			if len(top.tokens) > 1 && definitions.IsSingle(top.tokens[1].Text) {
				return t.handleSingleTagEnd()
			}
		}
		if t.context()&ctxTableCellOpen != 0 {
			t.pop()
		}
		if t.context()&ctxDouble != 0 {
			t.pop()
		}
		return nil, t.failRoute()
	}
	return t.pop(), nil
}

// handleListMarker emits a synthetic self-closed tag for one list
// marker character.
func (t *tokenizer) handleListMarker() {
	markup := t.read(0).text
	if markup == ";" {
		t.top().context |= ctxDLTerm
	}
	t.emit(Token{Type: TokenTagOpenOpen, WikiMarkup: markup, HasWikiMarkup: true})
	t.emitText(definitions.GetHTMLTag(markup))
	t.emit(Token{Type: TokenTagCloseSelfclose})
}

// handleList consumes a run of list markers at the start of a line.
func (t *tokenizer) handleList() {
	t.handleListMarker()
	for {
		nxt := t.read(1).text
		if nxt != "#" && nxt != "*" && nxt != ";" && nxt != ":" {
			break
		}
		t.head++
		t.handleListMarker()
	}
}

// handleHr consumes a horizontal rule of four or more dashes.
func (t *tokenizer) handleHr() {
	length := 4
	t.head += 3
	for t.read(1).text == "-" {
		length++
		t.head++
	}
	t.emit(Token{Type: TokenTagOpenOpen, WikiMarkup: strings.Repeat("-", length), HasWikiMarkup: true})
	t.emitText("hr")
	t.emit(Token{Type: TokenTagCloseSelfclose})
}

// handleDlTerm ends the term of a description list: a colon starts the
// definition, anything else just breaks the line.
func (t *tokenizer) handleDlTerm() {
	t.top().context ^= ctxDLTerm
	if t.read(0).text == ":" {
		t.handleListMarker()
	} else {
		t.emitText("\n")
	}
}

// parse runs the dispatch loop until the current construct closes or
// the stream ends. With doPush unset it continues on the frame already
// open, which tag and link bodies use after flipping their context.
func (t *tokenizer) parse(context uint64, doPush bool) ([]Token, error) {
	if doPush {
		if err := t.push(context); err != nil {
			return nil, err
		}
	}
	for {
		this := t.read(0)
		if t.context()&ctxUnsafe != 0 && !t.verifySafe(this) {
			if t.context()&ctxDouble != 0 {
				t.pop()
			}
			return nil, t.failRoute()
		}
		if !isMarker(this) {
			t.emitText(this.text)
			t.head++
			continue
		}
		if this.kind == fragEnd {
			return t.handleEnd()
		}
		nxt := t.read(1)
		switch {
		case this.text == "{" && nxt.text == "{":
			if t.canRecurse() {
				if err := t.parseTemplateOrArgument(); err != nil {
					return nil, err
				}
			} else {
				t.emitText("{")
			}
		case this.text == "|" && t.context()&ctxTemplate != 0:
			if err := t.handleTemplateParam(); err != nil {
				return nil, err
			}
		case this.text == "=" && t.context()&ctxTemplateParamKey != 0:
			if t.global&glHeading == 0 && t.lineStart() && nxt.text == "=" {
				if err := t.parseHeading(); err != nil {
					return nil, err
				}
			} else {
				t.handleTemplateParamValue()
			}
		case this.text == "}" && nxt.text == "}" && t.context()&ctxTemplate != 0:
			return t.handleTemplateEnd()
		case this.text == "|" && t.context()&ctxArgumentName != 0:
			t.handleArgumentSeparator()
		case this.text == "}" && nxt.text == "}" && t.context()&ctxArgument != 0:
			if t.read(2).text == "}" {
				return t.handleArgumentEnd(), nil
			}
			t.emitText("}")
		case this.text == "[" && nxt.text == "[" && t.canRecurse():
			if t.context()&ctxNoWikilinks == 0 {
				if err := t.parseWikilink(); err != nil {
					return nil, err
				}
			} else {
				t.emitText("[")
			}
		case this.text == "|" && t.context()&ctxWikilinkTitle != 0:
			t.handleWikilinkSeparator()
		case this.text == "]" && nxt.text == "]" && t.context()&ctxWikilink != 0:
			return t.handleWikilinkEnd(), nil
		case this.text == "[":
			if err := t.parseExternalLink(true); err != nil {
				return nil, err
			}
		case this.text == ":" && t.read(-1).kind == fragText && !isMarkerText(t.read(-1).text):
			if err := t.parseExternalLink(false); err != nil {
				return nil, err
			}
		case this.text == "]" && t.context()&ctxExtLinkTitle != 0:
			return t.pop(), nil
		case this.text == "=" && t.global&glHeading == 0 && t.context()&ctxTemplate == 0:
			if t.lineStart() {
				if err := t.parseHeading(); err != nil {
					return nil, err
				}
			} else {
				t.emitText("=")
			}
		case this.text == "=" && t.context()&ctxHeading != 0:
			return t.handleHeadingEnd()
		case this.text == "\n" && t.context()&ctxHeading != 0:
			return nil, t.failRoute()
		case this.text == "&":
			if err := t.parseEntity(); err != nil {
				return nil, err
			}
		case this.text == "<" && nxt.text == "!":
			if t.read(2).text == "-" && t.read(3).text == "-" {
				if err := t.parseComment(); err != nil {
					return nil, err
				}
			} else {
				t.emitText("<")
			}
		case this.text == "<" && nxt.text == "/" && t.read(2).kind != fragEnd:
			if t.context()&ctxTagBody != 0 {
				if err := t.handleTagOpenClose(); err != nil {
					return nil, err
				}
			} else if err := t.handleInvalidTagStart(); err != nil {
				return nil, err
			}
		case this.text == "<" && t.context()&ctxTagClose == 0:
			if t.canRecurse() {
				if err := t.parseTag(); err != nil {
					return nil, err
				}
			} else {
				t.emitText("<")
			}
		case this.text == ">" && t.context()&ctxTagClose != 0:
			return t.handleTagCloseClose()
		case this.text == "'" && nxt.text == "'" && !t.skipStyleTags:
			closed, err := t.parseStyle()
			if err != nil {
				return nil, err
			}
			if closed != nil {
				return closed, nil
			}
		case (this.text == "#" || this.text == "*" || this.text == ";" || this.text == ":") && t.lineStart():
			t.handleList()
		case this.text == "-" && nxt.text == "-" && t.read(2).text == "-" && t.read(3).text == "-" && t.lineStart():
			t.handleHr()
		case (this.text == "\n" || this.text == ":") && t.context()&ctxDLTerm != 0:
			t.handleDlTerm()
			if this.text == "\n" {
				t.top().context &^= ctxTableCellLineContexts
			}
		case this.text == "{" && nxt.text == "|" && t.lineStartSkippingSpace():
			if t.canRecurse() {
				if err := t.parseTable(); err != nil {
					return nil, err
				}
			} else {
				t.emitText("{")
			}
		case t.context()&ctxTableOpen != 0:
			switch {
			case this.text == "|" && nxt.text == "|" && t.context()&ctxTableTdLine != 0:
				if t.context()&ctxTableCellOpen != 0 {
					return t.handleTableCellEnd(false), nil
				}
				if err := t.handleTableCell("||", "td", ctxTableTdLine); err != nil {
					return nil, err
				}
			case this.text == "|" && nxt.text == "|" && t.context()&ctxTableThLine != 0:
				if t.context()&ctxTableCellOpen != 0 {
					return t.handleTableCellEnd(false), nil
				}
				if err := t.handleTableCell("||", "th", ctxTableThLine); err != nil {
					return nil, err
				}
			case this.text == "!" && nxt.text == "!" && t.context()&ctxTableThLine != 0:
				if t.context()&ctxTableCellOpen != 0 {
					return t.handleTableCellEnd(false), nil
				}
				if err := t.handleTableCell("!!", "th", ctxTableThLine); err != nil {
					return nil, err
				}
			case this.text == "|" && t.context()&ctxTableCellStyle != 0:
				return t.handleTableCellEnd(true), nil
			case this.text == "\n" && t.context()&ctxTableCellLineContexts != 0:
				// A newline ends the row and header line contexts.
				t.top().context &^= ctxTableCellLineContexts
				t.emitText(this.text)
			case t.lineStartSkippingSpace():
				switch {
				case this.text == "|" && nxt.text == "}":
					if t.context()&ctxTableCellOpen != 0 {
						return t.handleTableCellEnd(false), nil
					}
					if t.context()&ctxTableRowOpen != 0 {
						return t.handleTableRowEnd(), nil
					}
					return t.handleTableEnd(), nil
				case this.text == "|" && nxt.text == "-":
					if t.context()&ctxTableCellOpen != 0 {
						return t.handleTableCellEnd(false), nil
					}
					if t.context()&ctxTableRowOpen != 0 {
						return t.handleTableRowEnd(), nil
					}
					if err := t.handleTableRow(); err != nil {
						return nil, err
					}
				case this.text == "|":
					if t.context()&ctxTableCellOpen != 0 {
						return t.handleTableCellEnd(false), nil
					}
					if err := t.handleTableCell("|", "td", ctxTableTdLine); err != nil {
						return nil, err
					}
				case this.text == "!":
					if t.context()&ctxTableCellOpen != 0 {
						return t.handleTableCellEnd(false), nil
					}
					if err := t.handleTableCell("!", "th", ctxTableThLine); err != nil {
						return nil, err
					}
				default:
					t.emitText(this.text)
				}
			default:
				t.emitText(this.text)
			}
		default:
			t.emitText(this.text)
		}
		t.head++
	}
}

// tokenize runs the full pipeline over text and returns the flat token
// stream.
func (t *tokenizer) tokenize(text string, context uint64, skipStyleTags bool) ([]Token, error) {
	t.text = splitFragments(text)
	t.head = 0
	t.global = 0
	t.depth = 0
	t.stacks = t.stacks[:0]
	t.badRoutes = make(map[routeIdent]struct{})
	t.skipStyleTags = skipStyleTags

	tokens, err := t.parse(context, true)
	if err != nil {
		if isBadRoute(err) {
			return nil, fmt.Errorf("%w: %s", ErrFailedRoute, DescribeContext(routeContext(err)))
		}
		return nil, err
	}
	if len(t.stacks) != 0 {
		return nil, ErrOpenStack
	}
	return tokens, nil
}

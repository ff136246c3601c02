package wikicode

import (
	"fmt"
	"strings"
)

// TokenType identifies a token emitted by the tokenizer. The builder folds a
// flat token stream back into a node tree, so every piece of markup syntax has
// an open/close (or self-contained) token pair here.
type TokenType uint8

const (
	// TokenText is a run of plain text between markup.
	TokenText TokenType = iota
	// TokenTemplateOpen is "{{".
	TokenTemplateOpen
	// TokenTemplateParamSeparator is "|" between template parameters.
	TokenTemplateParamSeparator
	// TokenTemplateParamEquals is "=" between a parameter key and value.
	TokenTemplateParamEquals
	// TokenTemplateClose is "}}".
	TokenTemplateClose
	// TokenArgumentOpen is "{{{".
	TokenArgumentOpen
	// TokenArgumentSeparator is "|" before an argument's default value.
	TokenArgumentSeparator
	// TokenArgumentClose is "}}}".
	TokenArgumentClose
	// TokenWikilinkOpen is "[[".
	TokenWikilinkOpen
	// TokenWikilinkSeparator is "|" between a wikilink title and its text.
	TokenWikilinkSeparator
	// TokenWikilinkClose is "]]".
	TokenWikilinkClose
	// TokenExternalLinkOpen starts an external link; Brackets records whether
	// the link was written as "[url title]" or as a free link.
	TokenExternalLinkOpen
	// TokenExternalLinkSeparator splits a bracketed link's URL from its title.
	TokenExternalLinkSeparator
	// TokenExternalLinkClose ends a bracketed external link.
	TokenExternalLinkClose
	// TokenHTMLEntityStart is "&".
	TokenHTMLEntityStart
	// TokenHTMLEntityNumeric is "#" inside a numeric entity.
	TokenHTMLEntityNumeric
	// TokenHTMLEntityHex is the "x" marking a hexadecimal entity; Char keeps
	// the original letter so "&#X" round-trips.
	TokenHTMLEntityHex
	// TokenHTMLEntityEnd is ";".
	TokenHTMLEntityEnd
	// TokenHeadingStart opens a section heading; Level is the number of "="
	// signs, 1 through 6.
	TokenHeadingStart
	// TokenHeadingEnd closes a section heading.
	TokenHeadingEnd
	// TokenCommentStart is "<!--".
	TokenCommentStart
	// TokenCommentEnd is "-->".
	TokenCommentEnd
	// TokenTagOpenOpen is "<" opening a tag (or the wiki markup standing in
	// for one, such as "''" or "{|").
	TokenTagOpenOpen
	// TokenTagAttrStart separates a tag attribute from what precedes it and
	// carries the surrounding padding.
	TokenTagAttrStart
	// TokenTagAttrEquals is "=" between an attribute name and value.
	TokenTagAttrEquals
	// TokenTagAttrQuote is the quote character opening an attribute value.
	TokenTagAttrQuote
	// TokenTagCloseOpen is ">" ending a tag's opening half.
	TokenTagCloseOpen
	// TokenTagCloseSelfclose is "/>"; Implicit marks tags that were closed by
	// the parser rather than the text.
	TokenTagCloseSelfclose
	// TokenTagOpenClose is "</" starting a closing tag.
	TokenTagOpenClose
	// TokenTagCloseClose is ">" ending a closing tag.
	TokenTagCloseClose
)

var tokenTypeNames = map[TokenType]string{
	TokenText:                   "Text",
	TokenTemplateOpen:           "TemplateOpen",
	TokenTemplateParamSeparator: "TemplateParamSeparator",
	TokenTemplateParamEquals:    "TemplateParamEquals",
	TokenTemplateClose:          "TemplateClose",
	TokenArgumentOpen:           "ArgumentOpen",
	TokenArgumentSeparator:      "ArgumentSeparator",
	TokenArgumentClose:          "ArgumentClose",
	TokenWikilinkOpen:           "WikilinkOpen",
	TokenWikilinkSeparator:      "WikilinkSeparator",
	TokenWikilinkClose:          "WikilinkClose",
	TokenExternalLinkOpen:       "ExternalLinkOpen",
	TokenExternalLinkSeparator:  "ExternalLinkSeparator",
	TokenExternalLinkClose:      "ExternalLinkClose",
	TokenHTMLEntityStart:        "HTMLEntityStart",
	TokenHTMLEntityNumeric:      "HTMLEntityNumeric",
	TokenHTMLEntityHex:          "HTMLEntityHex",
	TokenHTMLEntityEnd:          "HTMLEntityEnd",
	TokenHeadingStart:           "HeadingStart",
	TokenHeadingEnd:             "HeadingEnd",
	TokenCommentStart:           "CommentStart",
	TokenCommentEnd:             "CommentEnd",
	TokenTagOpenOpen:            "TagOpenOpen",
	TokenTagAttrStart:           "TagAttrStart",
	TokenTagAttrEquals:          "TagAttrEquals",
	TokenTagAttrQuote:           "TagAttrQuote",
	TokenTagCloseOpen:           "TagCloseOpen",
	TokenTagCloseSelfclose:      "TagCloseSelfclose",
	TokenTagOpenClose:           "TagOpenClose",
	TokenTagCloseClose:          "TagCloseClose",
}

func (tt TokenType) String() string {
	if name, ok := tokenTypeNames[tt]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", uint8(tt))
}

// Token is one element of the tokenizer's output stream. Only the fields
// relevant to a token's type are set; the rest stay zero.
type Token struct {
	Type TokenType

	// Text carries the content of Text tokens and the character data of
	// entity tokens.
	Text string

	// Level is the heading depth on HeadingStart, 1 through 6.
	Level int

	// Brackets is set on ExternalLinkOpen for "[url]"-style links and clear
	// for free links.
	Brackets bool

	// SuppressSpace is set on ExternalLinkSeparator when no space separated
	// the URL from the title in the source.
	SuppressSpace bool

	// Char holds the hex marker ("x" or "X") on HTMLEntityHex and the quote
	// character on TagAttrQuote.
	Char string

	// WikiMarkup is the wiki shorthand a tag token stands for: "''" on a
	// bold/italic TagOpenOpen, "{|" on a table, "|-" on a row, and so on.
	// HasWikiMarkup distinguishes an empty-but-present value on TagOpenClose,
	// where table rows legitimately close with no markup of their own.
	WikiMarkup    string
	HasWikiMarkup bool

	// Invalid marks a TagOpenOpen recovered from a stray "</".
	Invalid bool

	// Implicit marks a TagCloseSelfclose the parser supplied for a tag that
	// the text never closed.
	Implicit bool

	// Padding is the whitespace run captured on TagCloseOpen and
	// TagCloseSelfclose.
	Padding string

	// PadFirst, PadBeforeEq and PadAfterEq are the whitespace runs around a
	// tag attribute, captured on TagAttrStart.
	PadFirst    string
	PadBeforeEq string
	PadAfterEq  string
}

// String renders a compact debug form, e.g. Text("foo") or HeadingStart(2).
func (t Token) String() string {
	var b strings.Builder
	b.WriteString(t.Type.String())

	var args []string
	if t.Text != "" || t.Type == TokenText {
		args = append(args, fmt.Sprintf("%q", t.Text))
	}
	if t.Level != 0 {
		args = append(args, fmt.Sprintf("level=%d", t.Level))
	}
	if t.Type == TokenExternalLinkOpen {
		args = append(args, fmt.Sprintf("brackets=%t", t.Brackets))
	}
	if t.SuppressSpace {
		args = append(args, "suppress_space")
	}
	if t.Char != "" {
		args = append(args, fmt.Sprintf("char=%q", t.Char))
	}
	if t.WikiMarkup != "" || t.HasWikiMarkup {
		args = append(args, fmt.Sprintf("wiki_markup=%q", t.WikiMarkup))
	}
	if t.Invalid {
		args = append(args, "invalid")
	}
	if t.Implicit {
		args = append(args, "implicit")
	}
	if t.Padding != "" {
		args = append(args, fmt.Sprintf("padding=%q", t.Padding))
	}
	if t.PadFirst != "" || t.PadBeforeEq != "" || t.PadAfterEq != "" {
		args = append(args, fmt.Sprintf("pad=%q,%q,%q", t.PadFirst, t.PadBeforeEq, t.PadAfterEq))
	}

	if len(args) > 0 {
		b.WriteString("(")
		b.WriteString(strings.Join(args, ", "))
		b.WriteString(")")
	}

	return b.String()
}

func textToken(text string) Token {
	return Token{Type: TokenText, Text: text}
}

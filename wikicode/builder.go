package wikicode

import (
	"fmt"
	"strconv"
	"strings"
)

// builder folds a flat token stream back into a node tree. Each handler
// consumes the tokens of one construct; nested constructs recurse through
// handleToken. A construct's close token must arrive before the stream
// ends, otherwise the stream is malformed and the build fails.
type builder struct {
	tokens []Token
	head   int
	stacks [][]Node
}

func build(tokens []Token) (*Wikicode, error) {
	b := &builder{tokens: tokens}
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		node, err := b.handleToken(tok)
		if err != nil {
			return nil, err
		}
		b.write(node)
	}

	return b.pop(), nil
}

// next returns the next token, or false once the stream is exhausted.
func (b *builder) next() (Token, bool) {
	if b.head >= len(b.tokens) {
		return Token{}, false
	}
	tok := b.tokens[b.head]
	b.head++

	return tok, true
}

// backup rewinds the cursor so the token just read is seen again. Handlers
// use it to leave a shared close token for their caller.
func (b *builder) backup() {
	b.head--
}

func (b *builder) push() {
	b.stacks = append(b.stacks, []Node{})
}

func (b *builder) pop() *Wikicode {
	nodes := b.stacks[len(b.stacks)-1]
	b.stacks = b.stacks[:len(b.stacks)-1]

	return newWikicode(nodes)
}

func (b *builder) write(node Node) {
	b.stacks[len(b.stacks)-1] = append(b.stacks[len(b.stacks)-1], node)
}

// writeToken parses one nested token and appends the resulting node.
func (b *builder) writeToken(tok Token) error {
	node, err := b.handleToken(tok)
	if err != nil {
		return err
	}
	b.write(node)

	return nil
}

func (b *builder) handleToken(tok Token) (Node, error) {
	switch tok.Type {
	case TokenText:
		return &Text{Value: tok.Text}, nil
	case TokenTemplateOpen:
		return b.handleTemplate()
	case TokenArgumentOpen:
		return b.handleArgument()
	case TokenWikilinkOpen:
		return b.handleWikilink()
	case TokenExternalLinkOpen:
		return b.handleExternalLink(tok)
	case TokenHTMLEntityStart:
		return b.handleEntity()
	case TokenHeadingStart:
		return b.handleHeading(tok)
	case TokenCommentStart:
		return b.handleComment()
	case TokenTagOpenOpen:
		return b.handleTag(tok)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnexpectedToken, tok.Type)
}

// handleParameter builds one template parameter. defaultKey numbers the
// parameter when the source gives it no explicit key.
func (b *builder) handleParameter(defaultKey int) (*Parameter, error) {
	var key *Wikicode
	showKey := false
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenTemplateParamEquals:
			key = b.pop()
			showKey = true
			b.push()
		case TokenTemplateParamSeparator, TokenTemplateClose:
			b.backup()
			value := b.pop()
			if key == nil {
				key = newWikicode([]Node{&Text{Value: strconv.Itoa(defaultKey)}})
			}
			return &Parameter{Name: key, Value: value, ShowKey: showKey}, nil
		default:
			if err := b.writeToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: template parameter", ErrMissedCloseToken)
}

func (b *builder) handleTemplate() (Node, error) {
	var name *Wikicode
	var params []*Parameter
	defaultKey := 1
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenTemplateParamSeparator:
			if len(params) == 0 {
				name = b.pop()
			}
			param, err := b.handleParameter(defaultKey)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !param.ShowKey {
				defaultKey++
			}
		case TokenTemplateClose:
			if len(params) == 0 {
				name = b.pop()
			}
			return &Template{Name: name, Params: params}, nil
		default:
			if err := b.writeToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: template", ErrMissedCloseToken)
}

func (b *builder) handleArgument() (Node, error) {
	var name *Wikicode
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenArgumentSeparator:
			name = b.pop()
			b.push()
		case TokenArgumentClose:
			if name != nil {
				return &Argument{Name: name, Default: b.pop()}, nil
			}
			return &Argument{Name: b.pop()}, nil
		default:
			if err := b.writeToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: argument", ErrMissedCloseToken)
}

func (b *builder) handleWikilink() (Node, error) {
	var title *Wikicode
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenWikilinkSeparator:
			title = b.pop()
			b.push()
		case TokenWikilinkClose:
			if title != nil {
				return &Wikilink{Title: title, Text: b.pop()}, nil
			}
			return &Wikilink{Title: b.pop()}, nil
		default:
			if err := b.writeToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: wikilink", ErrMissedCloseToken)
}

func (b *builder) handleExternalLink(open Token) (Node, error) {
	var url *Wikicode
	suppressSpace := false
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenExternalLinkSeparator:
			url = b.pop()
			suppressSpace = tok.SuppressSpace
			b.push()
		case TokenExternalLinkClose:
			link := &ExternalLink{
				Brackets:      open.Brackets,
				SuppressSpace: suppressSpace,
			}
			if url != nil {
				link.URL, link.Title = url, b.pop()
			} else {
				link.URL = b.pop()
			}
			return link, nil
		default:
			if err := b.writeToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: external link", ErrMissedCloseToken)
}

// handleEntity consumes the fixed-shape entity token run: start, optional
// numeric and hex markers, the character data, then the end token.
func (b *builder) handleEntity() (Node, error) {
	tok, ok := b.next()
	if !ok {
		return nil, fmt.Errorf("%w: html entity", ErrMissedCloseToken)
	}
	if tok.Type == TokenHTMLEntityNumeric {
		tok, ok = b.next()
		if !ok {
			return nil, fmt.Errorf("%w: html entity", ErrMissedCloseToken)
		}
		if tok.Type == TokenHTMLEntityHex {
			text, ok := b.next()
			if !ok {
				return nil, fmt.Errorf("%w: html entity", ErrMissedCloseToken)
			}
			if _, ok = b.next(); !ok {
				return nil, fmt.Errorf("%w: html entity", ErrMissedCloseToken)
			}
			return &HTMLEntity{Value: text.Text, Hexadecimal: true, HexChar: tok.Char}, nil
		}
		if _, ok = b.next(); !ok {
			return nil, fmt.Errorf("%w: html entity", ErrMissedCloseToken)
		}
		return &HTMLEntity{Value: tok.Text}, nil
	}
	if _, ok = b.next(); !ok {
		return nil, fmt.Errorf("%w: html entity", ErrMissedCloseToken)
	}

	return &HTMLEntity{Value: tok.Text, Named: true}, nil
}

func (b *builder) handleHeading(open Token) (Node, error) {
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		if tok.Type == TokenHeadingEnd {
			return &Heading{Title: b.pop(), Level: open.Level}, nil
		}
		if err := b.writeToken(tok); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: heading", ErrMissedCloseToken)
}

// handleComment joins the comment's text tokens; nothing else can occur
// between CommentStart and CommentEnd.
func (b *builder) handleComment() (Node, error) {
	var contents strings.Builder
	for {
		tok, ok := b.next()
		if !ok {
			return nil, fmt.Errorf("%w: comment", ErrMissedCloseToken)
		}
		switch tok.Type {
		case TokenCommentEnd:
			return &Comment{Contents: contents.String()}, nil
		case TokenText:
			contents.WriteString(tok.Text)
		default:
			return nil, fmt.Errorf("%w: %s inside a comment", ErrUnexpectedToken, tok.Type)
		}
	}
}

// handleAttribute builds one tag attribute from the tokens after a
// TagAttrStart, leaving the token that ends the attribute for the caller.
func (b *builder) handleAttribute(start Token) (*Attribute, error) {
	var name, value *Wikicode
	var quotes string
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenTagAttrEquals:
			name = b.pop()
			b.push()
		case TokenTagAttrQuote:
			quotes = tok.Char
		case TokenTagAttrStart, TokenTagCloseOpen, TokenTagCloseSelfclose:
			b.backup()
			if name != nil {
				value = b.pop()
			} else {
				name = b.pop()
			}
			return &Attribute{
				Name:        name,
				Value:       value,
				Quotes:      quotes,
				PadFirst:    start.PadFirst,
				PadBeforeEq: start.PadBeforeEq,
				PadAfterEq:  start.PadAfterEq,
			}, nil
		default:
			if err := b.writeToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: tag attribute", ErrMissedCloseToken)
}

func (b *builder) handleTag(open Token) (Node, error) {
	var (
		tag, contents, closingTag *Wikicode
		attrs                     []*Attribute
		padding                   string
		wikiStyleSeparator        string
	)
	// The closing markup defaults to the opening markup for paired wiki
	// syntax like bold quotes. A TagOpenClose carrying its own value, even
	// an empty one, overrides that: table rows and cells close with no
	// markup while the table itself closes with "|}".
	closingMarkup, closingExplicit := "", false
	b.push()
	for {
		tok, ok := b.next()
		if !ok {
			break
		}
		switch tok.Type {
		case TokenTagAttrStart:
			attr, err := b.handleAttribute(tok)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, attr)
		case TokenTagCloseOpen:
			wikiStyleSeparator = tok.WikiMarkup
			padding = tok.Padding
			tag = b.pop()
			b.push()
		case TokenTagOpenClose:
			closingMarkup, closingExplicit = tok.WikiMarkup, tok.HasWikiMarkup
			contents = b.pop()
			b.push()
		case TokenTagCloseSelfclose:
			tag = b.pop()
			return &Tag{
				Tag:                tag,
				Attributes:         attrs,
				WikiMarkup:         open.WikiMarkup,
				SelfClosing:        true,
				Invalid:            open.Invalid,
				Implicit:           tok.Implicit,
				Padding:            tok.Padding,
				ClosingTag:         tag,
				WikiStyleSeparator: wikiStyleSeparator,
				ClosingWikiMarkup:  open.WikiMarkup,
			}, nil
		case TokenTagCloseClose:
			closingTag = b.pop()
			closing := closingMarkup
			if !closingExplicit && open.WikiMarkup != "" {
				closing = open.WikiMarkup
			}
			return &Tag{
				Tag:                tag,
				Contents:           contents,
				Attributes:         attrs,
				WikiMarkup:         open.WikiMarkup,
				Invalid:            open.Invalid,
				Padding:            padding,
				ClosingTag:         closingTag,
				WikiStyleSeparator: wikiStyleSeparator,
				ClosingWikiMarkup:  closing,
			}, nil
		default:
			if err := b.writeToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: tag", ErrMissedCloseToken)
}

package wikicode

import (
	"strconv"
	"strings"

	"github.com/graphport/wikitext/definitions"
)

// parseEntity parses an HTML entity at the head, degrading the
// ampersand to text when the entity is malformed.
func (t *tokenizer) parseEntity() error {
	reset := t.head
	err := t.push(ctxHTMLEntity)
	if err == nil {
		err = t.reallyParseEntity()
	}
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		t.emitText(t.read(0).text)
		return nil
	}
	t.emitAll(t.pop())
	return nil
}

func (t *tokenizer) reallyParseEntity() error {
	t.emit(Token{Type: TokenHTMLEntityStart})
	t.head++

	this, err := t.readStrict(0)
	if err != nil {
		return err
	}
	text := this.text
	numeric, hexadecimal := false, false
	if text == "#" {
		numeric = true
		t.emit(Token{Type: TokenHTMLEntityNumeric})
		t.head++
		this, err = t.readStrict(0)
		if err != nil {
			return err
		}
		text = this.text
		if len(text) > 0 && (text[0] == 'x' || text[0] == 'X') {
			hexadecimal = true
			t.emit(Token{Type: TokenHTMLEntityHex, Char: text[:1]})
			text = text[1:]
			if text == "" {
				return t.failRoute()
			}
		}
	}

	var valid string
	switch {
	case hexadecimal:
		valid = "0123456789abcdef"
	case numeric:
		valid = "0123456789"
	default:
		valid = "0123456789abcdefghijklmnopqrstuvwxyz"
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if strings.IndexByte(valid, c) < 0 {
			return t.failRoute()
		}
	}

	t.head++
	if t.read(0).text != ";" {
		return t.failRoute()
	}
	if numeric {
		base := 10
		if hexadecimal {
			base = 16
		}
		test, err := strconv.ParseInt(text, base, 64)
		if err != nil || test < 1 || test > 0x10FFFF {
			return t.failRoute()
		}
	} else if !definitions.IsHTMLEntity(text) {
		return t.failRoute()
	}

	t.emit(textToken(text))
	t.emit(Token{Type: TokenHTMLEntityEnd})
	return nil
}

// parseComment parses an HTML comment. An unterminated comment
// renders its opener as literal text.
func (t *tokenizer) parseComment() error {
	t.head += 4
	reset := t.head - 1
	if err := t.push(0); err != nil {
		return err
	}
	for {
		this := t.read(0)
		if this == endFrag {
			t.pop()
			t.head = reset
			t.emitText("<!--")
			return nil
		}
		if this.text == "-" && t.read(1).text == "-" && t.read(2).text == ">" {
			t.emitFirst(Token{Type: TokenCommentStart})
			t.emit(Token{Type: TokenCommentEnd})
			t.emitAll(t.pop())
			t.head += 2
			if t.context()&ctxFailNext != 0 {
				// verifySafe sets the flag when it sees a possible
				// comment; a real one lets parsing continue.
				t.top().context ^= ctxFailNext
			}
			return nil
		}
		t.emitText(this.text)
		t.head++
	}
}

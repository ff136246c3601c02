package wikicode

import "strings"

// emitStyleTag writes body wrapped in a synthetic tag pair carrying
// the original wiki markup.
func (t *tokenizer) emitStyleTag(tag, markup string, body []Token) {
	t.emit(Token{Type: TokenTagOpenOpen, WikiMarkup: markup, HasWikiMarkup: true})
	t.emitText(tag)
	t.emit(Token{Type: TokenTagCloseOpen})
	t.emitAll(body)
	t.emit(Token{Type: TokenTagOpenClose})
	t.emitText(tag)
	t.emit(Token{Type: TokenTagCloseClose})
}

// parseItalics parses "''...''". A failure flagged for a second pass
// means an inner bold run wants the ticks regrouped, so the route is
// retried once in second-pass mode.
func (t *tokenizer) parseItalics() error {
	reset := t.head
	stack, err := t.parse(ctxStyleItalics, true)
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		if routeContext(err)&ctxStylePassAgain == 0 {
			t.emitText("''")
			return nil
		}
		stack, err = t.parse(ctxStyleItalics|ctxStyleSecondPass, true)
		if err != nil {
			if !isBadRoute(err) {
				return err
			}
			t.head = reset
			t.emitText("''")
			return nil
		}
	}
	t.emitStyleTag("i", "''", stack)
	return nil
}

// parseBold parses "'''...'''". It reports true when the caller's
// style frame should close with a stray apostrophe absorbed.
func (t *tokenizer) parseBold() (bool, error) {
	reset := t.head
	stack, err := t.parse(ctxStyleBold, true)
	if err != nil {
		if !isBadRoute(err) {
			return false, err
		}
		t.head = reset
		if t.context()&ctxStyleSecondPass != 0 {
			t.emitText("'")
			return true, nil
		}
		if t.context()&ctxStyleItalics != 0 {
			t.top().context |= ctxStylePassAgain
			t.emitText("'''")
			return false, nil
		}
		t.emitText("'")
		return false, t.parseItalics()
	}
	t.emitStyleTag("b", "'''", stack)
	return false, nil
}

// parseItalicsAndBold handles a five tick run, trying bold-in-italics
// then italics-in-bold before degrading the ticks to text.
func (t *tokenizer) parseItalicsAndBold() error {
	reset := t.head
	stack, err := t.parse(ctxStyleBold, true)
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		stack, err = t.parse(ctxStyleItalics, true)
		if err != nil {
			if !isBadRoute(err) {
				return err
			}
			t.head = reset
			t.emitText("'''''")
			return nil
		}
		reset = t.head
		stack2, err := t.parse(ctxStyleBold, true)
		if err != nil {
			if !isBadRoute(err) {
				return err
			}
			t.head = reset
			t.emitText("'''")
			t.emitStyleTag("i", "''", stack)
			return nil
		}
		if err := t.push(0); err != nil {
			return err
		}
		t.emitStyleTag("i", "''", stack)
		t.emitAll(stack2)
		t.emitStyleTag("b", "'''", t.pop())
		return nil
	}
	reset = t.head
	stack2, err := t.parse(ctxStyleItalics, true)
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		t.emitText("''")
		t.emitStyleTag("b", "'''", stack)
		return nil
	}
	if err := t.push(0); err != nil {
		return err
	}
	t.emitStyleTag("b", "'''", stack)
	t.emitAll(stack2)
	t.emitStyleTag("i", "''", t.pop())
	return nil
}

// parseStyle interprets a run of apostrophes. A non-nil token slice
// means the run closed the enclosing style frame.
func (t *tokenizer) parseStyle() ([]Token, error) {
	t.head += 2
	ticks := 2
	for t.read(0).text == "'" {
		t.head++
		ticks++
	}
	italics := t.context()&ctxStyleItalics != 0
	bold := t.context()&ctxStyleBold != 0
	if ticks > 5 {
		t.emitText(strings.Repeat("'", ticks-5))
		ticks = 5
	} else if ticks == 4 {
		t.emitText("'")
		ticks = 3
	}

	if (italics && (ticks == 2 || ticks == 5)) || (bold && (ticks == 3 || ticks == 5)) {
		if ticks == 5 {
			if italics {
				t.head -= 3
			} else {
				t.head -= 2
			}
		}
		return t.pop(), nil
	}
	if !t.canRecurse() {
		if ticks == 3 {
			if t.context()&ctxStyleSecondPass != 0 {
				t.emitText("'")
				return t.pop(), nil
			}
			if t.context()&ctxStyleItalics != 0 {
				t.top().context |= ctxStylePassAgain
			}
		}
		t.emitText(strings.Repeat("'", ticks))
	} else if ticks == 2 {
		if err := t.parseItalics(); err != nil {
			return nil, err
		}
	} else if ticks == 3 {
		closed, err := t.parseBold()
		if err != nil {
			return nil, err
		}
		if closed {
			return t.pop(), nil
		}
	} else {
		if err := t.parseItalicsAndBold(); err != nil {
			return nil, err
		}
	}
	t.head--
	return nil, nil
}

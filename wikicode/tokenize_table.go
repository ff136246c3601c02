package wikicode

// handleTableStyle parses table attribute text until endToken.
func (t *tokenizer) handleTableStyle(endToken string) (string, error) {
	data := &tagOpenData{context: tagCxAttrReady}
	for {
		this := t.read(0)
		canExit := data.context&tagCxQuoted == 0 || data.context&tagCxNoteSpace != 0
		if this.text == endToken && canExit {
			if data.context&(tagCxAttrName|tagCxAttrValue) != 0 {
				t.pushTagBuffer(data)
			}
			if this.isSpace() {
				data.padFirst += this.text
			}
			return data.padFirst, nil
		}
		if this == endFrag || this.text == endToken {
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
			return "", t.failRoute()
		}
		if err := t.handleTagData(data, this.text); err != nil {
			return "", err
		}
		t.head++
	}
}

// parseTable parses a table starting at "{|", reading the first line
// as attributes and the rest as rows.
func (t *tokenizer) parseTable() error {
	reset := t.head
	t.head += 2
	err := t.push(ctxTableOpen)
	var padding string
	if err == nil {
		padding, err = t.handleTableStyle("\n")
	}
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset
		t.emitText("{")
		return nil
	}
	style := t.pop()

	t.head++
	restore := len(t.stacks)
	table, err := t.parse(ctxTableOpen, true)
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		for len(t.stacks) > restore {
			t.memoizeBadRoute()
			t.pop()
		}
		t.head = reset
		t.emitText("{")
		return nil
	}

	t.emitTableTag("{|", "table", style, padding, "", table, "|}")
	// Offset displacement done by parse.
	t.head--
	return nil
}

// handleTableRow parses "|-" as attributes until the end of the line,
// then the rest of the row as normal syntax.
func (t *tokenizer) handleTableRow() error {
	t.head += 2
	if !t.canRecurse() {
		t.emitText("|-")
		t.head--
		return nil
	}

	if err := t.push(ctxTableOpen | ctxTableRowOpen); err != nil {
		return err
	}
	padding, err := t.handleTableStyle("\n")
	if err != nil {
		return err
	}
	style := t.pop()

	// Don't parse the style separator.
	t.head++
	row, err := t.parse(ctxTableOpen|ctxTableRowOpen, true)
	if err != nil {
		return err
	}

	t.emitTableTag("|-", "tr", style, padding, "", row, "")
	// Offset displacement done by parse.
	t.head--
	return nil
}

// handleTableCell parses a cell as normal syntax unless a style
// marker shows up, then reparses the lead as attributes and the
// remainder as normal syntax.
func (t *tokenizer) handleTableCell(markup, tag string, lineContext uint64) error {
	oldContext := t.context()
	padding := ""
	var style []Token
	t.head += len(markup)
	reset := t.head
	if !t.canRecurse() {
		t.emitText(markup)
		t.head--
		return nil
	}

	cell, err := t.parse(ctxTableOpen|ctxTableCellOpen|lineContext|ctxTableCellStyle, true)
	if err != nil {
		return err
	}
	cellContext := t.context()
	t.top().context = oldContext

	resetForStyle := cellContext&ctxTableCellStyle != 0
	if resetForStyle {
		t.head = reset
		if err := t.push(ctxTableOpen | ctxTableCellOpen | lineContext); err != nil {
			return err
		}
		padding, err = t.handleTableStyle("|")
		if err != nil {
			return err
		}
		style = t.pop()

		// Don't parse the style separator.
		t.head++
		cell, err = t.parse(ctxTableOpen|ctxTableCellOpen|lineContext, true)
		if err != nil {
			return err
		}
		cellContext = t.context()
		t.top().context = oldContext
	}

	closeOpenMarkup := ""
	if resetForStyle {
		closeOpenMarkup = "|"
	}
	t.emitTableTag(markup, tag, style, padding, closeOpenMarkup, cell, "")
	// Keep the cell line contexts.
	t.top().context |= cellContext & ctxTableCellLineContexts
	t.head--
	return nil
}

// handleTableCellEnd returns the cell, noting on the enclosing frame
// whether the cell has to be reparsed for style attributes.
func (t *tokenizer) handleTableCellEnd(resetForStyle bool) []Token {
	if resetForStyle {
		t.top().context |= ctxTableCellStyle
	} else {
		t.top().context &^= ctxTableCellStyle
	}
	return t.popKeepingContext()
}

func (t *tokenizer) handleTableRowEnd() []Token {
	return t.pop()
}

func (t *tokenizer) handleTableEnd() []Token {
	t.head += 2
	return t.pop()
}

// emitTableTag writes a table construct as a synthetic tag. An empty
// openCloseMarkup still rides along on the close token so the tag
// renders without closing markup instead of reusing the opening one.
func (t *tokenizer) emitTableTag(openOpenMarkup, tag string, style []Token, padding, closeOpenMarkup string, contents []Token, openCloseMarkup string) {
	t.emit(Token{Type: TokenTagOpenOpen, WikiMarkup: openOpenMarkup, HasWikiMarkup: true})
	t.emitText(tag)
	if len(style) > 0 {
		t.emitAll(style)
	}
	if closeOpenMarkup != "" {
		t.emit(Token{Type: TokenTagCloseOpen, WikiMarkup: closeOpenMarkup, HasWikiMarkup: true, Padding: padding})
	} else {
		t.emit(Token{Type: TokenTagCloseOpen, Padding: padding})
	}
	if len(contents) > 0 {
		t.emitAll(contents)
	}
	t.emit(Token{Type: TokenTagOpenClose, WikiMarkup: openCloseMarkup, HasWikiMarkup: true})
	t.emitText(tag)
	t.emit(Token{Type: TokenTagCloseClose})
}

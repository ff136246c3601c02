package wikicode

import (
	"math/bits"
	"strings"
)

// headingLevelOf recovers the level from a heading context bit. Levels
// occupy consecutive bits, so the position is the level.
func headingLevelOf(context uint64) int {
	return bits.Len64((context & ctxHeading) >> 9)
}

// parseHeading parses a section heading, whose level is bounded by the
// shorter of its two runs of equals signs.
func (t *tokenizer) parseHeading() error {
	t.global |= glHeading
	defer func() { t.global ^= glHeading }()
	reset := t.head
	t.head++
	best := 1
	for t.read(0).text == "=" {
		best++
		t.head++
	}
	shift := best - 1
	if shift > 5 {
		shift = 5
	}
	title, err := t.parse(ctxHeadingLevel1<<shift, true)
	if err != nil {
		if !isBadRoute(err) {
			return err
		}
		t.head = reset + best - 1
		t.emitText(strings.Repeat("=", best))
		return nil
	}
	level := t.headingLevel
	t.emit(Token{Type: TokenHeadingStart, Level: level})
	if level < best {
		t.emitText(strings.Repeat("=", best-level))
	}
	t.emitAll(title)
	t.emit(Token{Type: TokenHeadingEnd})
	return nil
}

// handleHeadingEnd closes a heading at its second run of equals signs,
// merging with any further closure on the same line. The level it
// settles on is left in t.headingLevel for parseHeading to pick up.
func (t *tokenizer) handleHeadingEnd() ([]Token, error) {
	reset := t.head
	t.head++
	best := 1
	for t.read(0).text == "=" {
		best++
		t.head++
	}
	current := headingLevelOf(t.context())
	level := current
	if best < level {
		level = best
	}
	if level > 6 {
		level = 6
	}
	after, err := t.parse(t.context(), true)
	if err != nil {
		if !isBadRoute(err) {
			return nil, err
		}
		if level < best {
			t.emitText(strings.Repeat("=", best-level))
		}
		t.head = reset + best - 1
		t.headingLevel = level
		return t.pop(), nil
	}
	// Found another closure: absorb it and keep its level.
	t.emitText(strings.Repeat("=", best))
	t.emitAll(after)
	return t.pop(), nil
}

package wikicode

import (
	"strconv"

	"github.com/graphport/wikitext/definitions"
)

// HTMLEntity is a character reference: named ("&nbsp;"), decimal ("&#160;")
// or hexadecimal ("&#xa0;").
type HTMLEntity struct {
	// Value is the reference body: the entity name, or the number without
	// its "#" and hex markers.
	Value string

	// Named is set for character references by name.
	Named bool

	// Hexadecimal is set for "&#x..." references; HexChar preserves the
	// original case of the x marker.
	Hexadecimal bool
	HexChar     string
}

func (e *HTMLEntity) String() string {
	if e.Named {
		return "&" + e.Value + ";"
	}
	if e.Hexadecimal {
		return "&#" + e.hexChar() + e.Value + ";"
	}

	return "&#" + e.Value + ";"
}

func (e *HTMLEntity) hexChar() string {
	if e.HexChar == "" {
		return "x"
	}

	return e.HexChar
}

func (e *HTMLEntity) NodeType() NodeType { return TypeHTMLEntity }

func (e *HTMLEntity) Children() []*Wikicode { return nil }

// Normalize returns the character the entity stands for. An entity that
// does not resolve, which the tokenizer never produces but a caller can
// construct, normalizes to its own source text.
func (e *HTMLEntity) Normalize() string {
	if e.Named {
		if r, ok := definitions.HTMLEntityCodepoint(e.Value); ok {
			return string(r)
		}
		return e.String()
	}
	base := 10
	if e.Hexadecimal {
		base = 16
	}
	n, err := strconv.ParseInt(e.Value, base, 32)
	if err != nil || n < 1 || n > 0x10FFFF {
		return e.String()
	}

	return string(rune(n))
}

func (e *HTMLEntity) Strip(opts StripOptions) (string, bool) {
	if opts.Normalize {
		return e.Normalize(), true
	}

	return e.String(), true
}

func (e *HTMLEntity) showTree(w *treeWriter) {
	w.write(e.String())
}

package wikicode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Rendering a parsed tree must reproduce the source exactly, whatever
// the input. Every case here goes through the full tokenize and build
// pipeline.
func requireRoundTrip(t *testing.T, input string) {
	t.Helper()
	code, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, input, code.String())
}

func TestRoundTripText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plain", "Lorem ipsum dolor sit amet."},
		{"unicode", "café ünïcödé 😀"},
		{"newlines", "line one\nline two\n\nline four"},
		{"lone markers", "a | b = c & d ' e"},
		{"colon without scheme", "time: 12:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripTemplates(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare", "{{foo}}"},
		{"empty name", "{{}}"},
		{"positional and named", "{{foo|bar|spam=eggs}}"},
		{"named only", "{{Template|param1=value1|param2=value2}}"},
		{"nested", "{{foo|{{bar}}|2=x}}"},
		{"numbered key before positional", "{{foo|1=bar|baz}}"},
		{"spaces everywhere", "{{ foo | bar = baz }}"},
		{"newline before close", "{{foo\n}}"},
		{"newline spaced params", "{{foo\n| a = b\n| c = d\n}}"},
		{"trailing empty param", "{{foo|bar|baz=qux|}}"},
		{"equals inside value", "{{echo|a=b=c}}"},
		{"argument", "{{{arg}}}"},
		{"argument with default", "{{{arg|default}}}"},
		{"numeric argument", "{{{1}}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty wikilink", "[[]]"},
		{"wikilink", "[[Foo]]"},
		{"wikilink with text", "[[Foo|Bar]]"},
		{"namespace", "[[Category:Test]]"},
		{"file with options", "[[File:Example.png|thumb|Caption text]]"},
		{"redirect", "#REDIRECT [[United States#History]]"},
		{"free link", "http://example.com"},
		{"free link in text", "Visit http://example.com now"},
		{"trailing period", "See http://example.com."},
		{"trailing comma and text", "http://example.com/foo, bar"},
		{"parenthesized path", "http://en.wikipedia.org/wiki/Foo_(bar)"},
		{"uppercase scheme", "HTTP://EXAMPLE.COM"},
		{"slashless scheme", "mailto:someone@example.com"},
		{"bracketed", "[http://example.com]"},
		{"bracketed with title", "[http://example.com Example]"},
		{"wikilink around url", "[[http://example.com]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripHeadings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"level two", "== Heading =="},
		{"level three", "=== deep ==="},
		{"level one", "=x="},
		{"lopsided close", "==x="},
		{"heading then body", "== Heading ==\nBody text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripCommentsAndEntities(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"comment", "<!-- comment -->"},
		{"comment between text", "a<!--b-->c"},
		{"empty comment", "<!---->"},
		{"named entity", "&nbsp;"},
		{"decimal entity", "&#160;"},
		{"hex entity", "&#xa0;"},
		{"uppercase hex marker", "&#XA0;"},
		{"unknown entity", "&fake;"},
		{"out of range codepoint", "&#999999999;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple tag", "<b>bold</b>"},
		{"tags in text", "This is a <b>bold</b> text and this is <i>italic</i>."},
		{"ref", "<ref>Reference text</ref>"},
		{"ref with attribute", "<ref name=\"first\">text</ref>"},
		{"quoted attribute with spaces", "<div style=\"color: red\">styled</div>"},
		{"self-closing", "<br/>"},
		{"self-closing with space", "<br />"},
		{"implicit single", "<br>"},
		{"invalid single", "</br>"},
		{"nowiki", "<nowiki>Some unprocessed text</nowiki>"},
		{"nowiki shields markup", "<nowiki>{{not|a|template}}</nowiki>"},
		{"italics", "''italic''"},
		{"bold", "'''bold'''"},
		{"bold italics", "'''''both'''''"},
		{"bold italics in sentence", "I am '''''bold italics'''''!"},
		{"bare tick run", "''''''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripListsAndRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bullets", "* one\n* two\n** nested"},
		{"numbered", "# first\n# second"},
		{"definition list", "; term : definition"},
		{"double indent", ":: indented"},
		{"mixed markers", "#* mixed"},
		{"list after text", "text\n* item"},
		{"marker mid-line stays text", "not * a list"},
		{"rule", "----"},
		{"long rule", "------"},
		{"rule then text", "----\ntext"},
		{"text then rule", "a\n----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripTables(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "{|\n|}"},
		{"single cell", "{|\n|-\n| cell\n|}"},
		{"inline cells", "{|\n|-\n| a || b\n|}"},
		{"quoted table attribute", "{| class=\"wikitable\"\n|-\n| x\n|}"},
		{"unquoted table attribute", "{| border=1\n| foo\n|}"},
		{"caption and headers", "{|\n|+ caption\n|-\n! header\n|-\n| a || b\n|}"},
		{"double bang headers", "{|\n! a !! b\n|}"},
		{"text after table", "{|\n|}\nafter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

// Broken markup degrades to text without losing a byte.
func TestRoundTripUnclosedMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed template", "{{unterminated"},
		{"unclosed wikilink", "[[unterminated"},
		{"newline splits template name", "{{foo\nbar}}"},
		{"unclosed bold", "'''unterminated"},
		{"unclosed tag", "<b>unterminated"},
		{"broken table", "{|x"},
		{"table without close", "{|\n|"},
		{"deep nesting", strings.Repeat("{{x|", 150) + "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRoundTrip(t, tt.input)
		})
	}
}

func TestRoundTripDocument(t *testing.T) {
	const doc = "== History ==\n" +
		"The '''city''' was founded in [[1850]].<ref name=\"founding\">See {{cite|title=Records}}</ref>\n" +
		"\n" +
		"* Growth: rapid\n" +
		"* Decline: slow\n" +
		"\n" +
		"{|\n|-\n| Population || 50,000\n|}\n" +
		"\n" +
		"See also http://example.com/history and &copy; notices.\n" +
		"<!-- needs sources -->"

	requireRoundTrip(t, doc)
}

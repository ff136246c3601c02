package wikicode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}

	return types
}

func TestTokenizeConstructs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "plain text",
			input: "hello world",
			want:  []TokenType{TokenText},
		},
		{
			name:  "template",
			input: "{{foo}}",
			want:  []TokenType{TokenTemplateOpen, TokenText, TokenTemplateClose},
		},
		{
			name:  "template with params",
			input: "{{foo|bar|spam=eggs}}",
			want: []TokenType{
				TokenTemplateOpen, TokenText,
				TokenTemplateParamSeparator, TokenText,
				TokenTemplateParamSeparator, TokenText, TokenTemplateParamEquals, TokenText,
				TokenTemplateClose,
			},
		},
		{
			name:  "argument",
			input: "{{{arg}}}",
			want:  []TokenType{TokenArgumentOpen, TokenText, TokenArgumentClose},
		},
		{
			name:  "argument with default",
			input: "{{{arg|def}}}",
			want:  []TokenType{TokenArgumentOpen, TokenText, TokenArgumentSeparator, TokenText, TokenArgumentClose},
		},
		{
			name:  "wikilink",
			input: "[[foo]]",
			want:  []TokenType{TokenWikilinkOpen, TokenText, TokenWikilinkClose},
		},
		{
			name:  "wikilink with text",
			input: "[[foo|bar]]",
			want:  []TokenType{TokenWikilinkOpen, TokenText, TokenWikilinkSeparator, TokenText, TokenWikilinkClose},
		},
		{
			name:  "heading",
			input: "==x==",
			want:  []TokenType{TokenHeadingStart, TokenText, TokenHeadingEnd},
		},
		{
			name:  "comment",
			input: "<!--x-->",
			want:  []TokenType{TokenCommentStart, TokenText, TokenCommentEnd},
		},
		{
			name:  "comment in text",
			input: "a<!--b-->c",
			want:  []TokenType{TokenText, TokenCommentStart, TokenText, TokenCommentEnd, TokenText},
		},
		{
			name:  "named entity",
			input: "&amp;",
			want:  []TokenType{TokenHTMLEntityStart, TokenText, TokenHTMLEntityEnd},
		},
		{
			name:  "decimal entity",
			input: "&#160;",
			want:  []TokenType{TokenHTMLEntityStart, TokenHTMLEntityNumeric, TokenText, TokenHTMLEntityEnd},
		},
		{
			name:  "hex entity",
			input: "&#xa0;",
			want:  []TokenType{TokenHTMLEntityStart, TokenHTMLEntityNumeric, TokenHTMLEntityHex, TokenText, TokenHTMLEntityEnd},
		},
		{
			name:  "html tag",
			input: "<ref>x</ref>",
			want: []TokenType{
				TokenTagOpenOpen, TokenText, TokenTagCloseOpen, TokenText,
				TokenTagOpenClose, TokenText, TokenTagCloseClose,
			},
		},
		{
			name:  "self-closing tag",
			input: "<br/>",
			want:  []TokenType{TokenTagOpenOpen, TokenText, TokenTagCloseSelfclose},
		},
		{
			name:  "list item",
			input: "* item",
			want:  []TokenType{TokenTagOpenOpen, TokenText, TokenTagCloseSelfclose, TokenText},
		},
		{
			name:  "horizontal rule",
			input: "----",
			want:  []TokenType{TokenTagOpenOpen, TokenText, TokenTagCloseSelfclose},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, tokenTypes(tokens))
		})
	}
}

// Inputs whose markup never closes have to come back as one text token so
// nothing of the source is lost.
func TestTokenizeFallsBackToText(t *testing.T) {
	inputs := []string{
		"{{",
		"{{foo",
		"{{foo|",
		"{{foo}",
		"{{foo\nbar}}",
		"[[",
		"[[foo",
		"[[foo]",
		"==foo",
		"<!-- no end",
		"&",
		"&;",
		"&fake;",
		"&#999999999;",
		"<b>x",
		"< b>x</b>",
		"''x",
		"{|x",
		"{|\n|",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tokens, err := Tokenize(input)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			require.Equal(t, TokenText, tokens[0].Type)
			require.Equal(t, input, tokens[0].Text)
		})
	}
}

func TestTokenizeHeadingLevel(t *testing.T) {
	tokens, err := Tokenize("=== deep ===")
	require.NoError(t, err)
	require.Equal(t, TokenHeadingStart, tokens[0].Type)
	require.Equal(t, 3, tokens[0].Level)
	require.Equal(t, " deep ", tokens[1].Text)
}

func TestTokenizeStyleTags(t *testing.T) {
	tokens, err := Tokenize("''x''")
	require.NoError(t, err)
	require.Equal(t, []TokenType{
		TokenTagOpenOpen, TokenText, TokenTagCloseOpen, TokenText,
		TokenTagOpenClose, TokenText, TokenTagCloseClose,
	}, tokenTypes(tokens))
	require.Equal(t, "''", tokens[0].WikiMarkup)
	require.Equal(t, "i", tokens[1].Text)
	require.Equal(t, "x", tokens[3].Text)

	tokens, err = Tokenize("'''x'''")
	require.NoError(t, err)
	require.Equal(t, "'''", tokens[0].WikiMarkup)
	require.Equal(t, "b", tokens[1].Text)
}

func TestTokenizeSkipStyleTags(t *testing.T) {
	tokens, err := TokenizeContext("''x''", 0, true)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Equal(t, TokenText, tokens[0].Type)
	require.Equal(t, "''x''", tokens[0].Text)
}

func TestTokenizeFreeLinks(t *testing.T) {
	t.Run("bare url", func(t *testing.T) {
		tokens, err := Tokenize("http://example.com")
		require.NoError(t, err)
		require.Equal(t, []TokenType{TokenExternalLinkOpen, TokenText, TokenExternalLinkClose}, tokenTypes(tokens))
		require.False(t, tokens[0].Brackets)
		require.Equal(t, "http://example.com", tokens[1].Text)
	})

	t.Run("url in running text", func(t *testing.T) {
		tokens, err := Tokenize("Visit http://example.com now")
		require.NoError(t, err)
		require.Equal(t, []TokenType{
			TokenText, TokenExternalLinkOpen, TokenText, TokenExternalLinkClose, TokenText,
		}, tokenTypes(tokens))
		require.Equal(t, "Visit ", tokens[0].Text)
		require.Equal(t, "http://example.com", tokens[2].Text)
		require.Equal(t, " now", tokens[4].Text)
	})

	t.Run("trailing punctuation stays out", func(t *testing.T) {
		tokens, err := Tokenize("See http://example.com.")
		require.NoError(t, err)
		require.Equal(t, []TokenType{
			TokenText, TokenExternalLinkOpen, TokenText, TokenExternalLinkClose, TokenText,
		}, tokenTypes(tokens))
		require.Equal(t, "http://example.com", tokens[2].Text)
		require.Equal(t, ".", tokens[4].Text)
	})

	t.Run("scheme case is preserved", func(t *testing.T) {
		tokens, err := Tokenize("HTTP://EXAMPLE.COM")
		require.NoError(t, err)
		require.Equal(t, []TokenType{TokenExternalLinkOpen, TokenText, TokenExternalLinkClose}, tokenTypes(tokens))
		require.Equal(t, "HTTP://EXAMPLE.COM", tokens[1].Text)
	})

	t.Run("unknown scheme stays text", func(t *testing.T) {
		tokens, err := Tokenize("foo:bar")
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		require.Equal(t, "foo:bar", tokens[0].Text)
	})

	t.Run("scheme that needs slashes stays text without them", func(t *testing.T) {
		tokens, err := Tokenize("ftp:bar")
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		require.Equal(t, "ftp:bar", tokens[0].Text)
	})

	t.Run("slashless scheme", func(t *testing.T) {
		tokens, err := Tokenize("mailto:user@example.com")
		require.NoError(t, err)
		require.Equal(t, []TokenType{TokenExternalLinkOpen, TokenText, TokenExternalLinkClose}, tokenTypes(tokens))
		require.Equal(t, "mailto:user@example.com", tokens[1].Text)
	})

	t.Run("failed bracket attempt leaves free link", func(t *testing.T) {
		tokens, err := Tokenize("[http://x")
		require.NoError(t, err)
		require.Equal(t, []TokenType{
			TokenText, TokenExternalLinkOpen, TokenText, TokenExternalLinkClose,
		}, tokenTypes(tokens))
		require.Equal(t, "[", tokens[0].Text)
		require.Equal(t, "http://x", tokens[2].Text)
	})
}

func TestTokenizeBracketedLinks(t *testing.T) {
	tokens, err := Tokenize("[http://example.com]")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenExternalLinkOpen, TokenText, TokenExternalLinkClose}, tokenTypes(tokens))
	require.True(t, tokens[0].Brackets)

	tokens, err = Tokenize("[http://example.com Example]")
	require.NoError(t, err)
	require.Equal(t, []TokenType{
		TokenExternalLinkOpen, TokenText, TokenExternalLinkSeparator, TokenText, TokenExternalLinkClose,
	}, tokenTypes(tokens))
	require.Equal(t, "http://example.com", tokens[1].Text)
	require.False(t, tokens[2].SuppressSpace)
	require.Equal(t, "Example", tokens[3].Text)
}

func TestTokenizeTable(t *testing.T) {
	tokens, err := Tokenize("{|\n|}")
	require.NoError(t, err)
	require.Equal(t, []TokenType{
		TokenTagOpenOpen, TokenText, TokenTagCloseOpen,
		TokenTagOpenClose, TokenText, TokenTagCloseClose,
	}, tokenTypes(tokens))
	require.Equal(t, "{|", tokens[0].WikiMarkup)
	require.Equal(t, "table", tokens[1].Text)
	require.Equal(t, "\n", tokens[2].Padding)
	require.Equal(t, "|}", tokens[3].WikiMarkup)
	require.True(t, tokens[3].HasWikiMarkup)
}

func TestTokenizeInvalidSingleTag(t *testing.T) {
	tokens, err := Tokenize("</br>")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenTagOpenOpen, TokenText, TokenTagCloseSelfclose}, tokenTypes(tokens))
	require.True(t, tokens[0].Invalid)
	require.Equal(t, "br", tokens[1].Text)
	require.True(t, tokens[2].Implicit)
}

// Nesting far past the recursion cap has to finish, with the excess kept
// as plain text.
func TestTokenizeDepthBound(t *testing.T) {
	input := strings.Repeat("{{x|", 150) + "y"
	tokens, err := Tokenize(input)
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
}

// Failed-route memos belong to a single run. Reusing one tokenizer for
// several inputs must give the same streams as fresh instances.
func TestTokenizeDeterministic(t *testing.T) {
	const input = "{{a|[[b]]}} ''c'' {{unterminated [http://x.test y]"

	first, err := Tokenize(input)
	require.NoError(t, err)
	second, err := Tokenize(input)
	require.NoError(t, err)
	require.Equal(t, first, second)

	tk := newTokenizer()
	for i := 0; i < 3; i++ {
		tokens, err := tk.tokenize(input, 0, false)
		require.NoError(t, err)
		require.Equal(t, first, tokens)
	}
}

// A five tick run wraps a bold region in an italic one; the trailing
// italic region is empty and must still close its frame.
func TestTokenizeBoldItalics(t *testing.T) {
	tokens, err := Tokenize("'''''x'''''")
	require.NoError(t, err)
	require.Equal(t, []TokenType{
		TokenTagOpenOpen, TokenText, TokenTagCloseOpen,
		TokenTagOpenOpen, TokenText, TokenTagCloseOpen,
		TokenText,
		TokenTagOpenClose, TokenText, TokenTagCloseClose,
		TokenTagOpenClose, TokenText, TokenTagCloseClose,
	}, tokenTypes(tokens))
	require.Equal(t, "''", tokens[0].WikiMarkup)
	require.Equal(t, "i", tokens[1].Text)
	require.Equal(t, "'''", tokens[3].WikiMarkup)
	require.Equal(t, "b", tokens[4].Text)
	require.Equal(t, "x", tokens[6].Text)
}

// A colon at the very start of input is an indent marker, not a free
// link candidate.
func TestTokenizeLeadingIndentMarker(t *testing.T) {
	tokens, err := Tokenize(":foo")
	require.NoError(t, err)
	require.Equal(t, []TokenType{
		TokenTagOpenOpen, TokenText, TokenTagCloseSelfclose, TokenText,
	}, tokenTypes(tokens))
	require.Equal(t, ":", tokens[0].WikiMarkup)
	require.Equal(t, "dd", tokens[1].Text)
	require.Equal(t, "foo", tokens[3].Text)
}

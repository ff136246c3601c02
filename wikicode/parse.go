// Package wikicode parses MediaWiki wikitext into a navigable node tree
// whose String rendering reproduces the input byte for byte. Markup that
// fails to close or nest is kept as plain text rather than rejected, so
// Parse succeeds on any input the depth limit admits.
package wikicode

// Parse tokenizes text and builds its node tree.
func Parse(text string) (*Wikicode, error) {
	return ParseContext(text, 0, false)
}

// ParseContext is Parse with an explicit starting tokenizer context and a
// switch to leave '' and ''' markup as plain text. A nonzero context treats
// text as if it appeared inside that construct; callers outside the
// tokenizer normally pass 0.
func ParseContext(text string, context uint64, skipStyleTags bool) (*Wikicode, error) {
	tokens, err := TokenizeContext(text, context, skipStyleTags)
	if err != nil {
		return nil, err
	}

	return build(tokens)
}

// Tokenize splits text into its lexical tokens without building a tree.
func Tokenize(text string) ([]Token, error) {
	return TokenizeContext(text, 0, false)
}

// Build assembles a token stream into a node tree. Tokens normally come
// from Tokenize; Build reports an error for a stream no tokenizer could
// have produced, such as an open token with no matching close.
func Build(tokens []Token) (*Wikicode, error) {
	return build(tokens)
}

// TokenizeContext is Tokenize with an explicit starting context and style
// handling, like ParseContext.
func TokenizeContext(text string, context uint64, skipStyleTags bool) ([]Token, error) {
	return newTokenizer().tokenize(text, context, skipStyleTags)
}

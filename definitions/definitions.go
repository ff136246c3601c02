// Package definitions holds static data about wiki markup: recognized URI
// schemes for external links, HTML tag classes, and the tags list markers
// expand to. Lookups are case-insensitive.
package definitions

import "strings"

// uriSchemes maps a scheme to whether it requires a "//" after the colon.
// Schemes flagged false are also valid in slash-free form (e.g. mailto:).
var uriSchemes = map[string]bool{
	"bitcoin":   false,
	"ftp":       true,
	"ftps":      true,
	"geo":       false,
	"git":       true,
	"gopher":    true,
	"http":      true,
	"https":     true,
	"irc":       true,
	"ircs":      true,
	"magnet":    false,
	"mailto":    false,
	"mms":       true,
	"news":      false,
	"nntp":      true,
	"redis":     true,
	"sftp":      true,
	"sip":       false,
	"sips":      false,
	"sms":       false,
	"ssh":       true,
	"svn":       true,
	"tel":       false,
	"telnet":    true,
	"urn":       false,
	"worldwind": true,
	"xmpp":      false,
}

// parserBlacklist lists tags whose contents are never passed back to the
// parser (they are consumed as raw text).
var parserBlacklist = map[string]bool{
	"categorytree":    true,
	"ce":              true,
	"chem":            true,
	"gallery":         true,
	"graph":           true,
	"hiero":           true,
	"imagemap":        true,
	"inputbox":        true,
	"math":            true,
	"nowiki":          true,
	"pre":             true,
	"score":           true,
	"section":         true,
	"source":          true,
	"syntaxhighlight": true,
	"templatedata":    true,
	"timeline":        true,
}

// invisibleTags lists tags whose contents do not render as visible text.
var invisibleTags = map[string]bool{
	"categorytree": true,
	"gallery":      true,
	"graph":        true,
	"imagemap":     true,
	"inputbox":     true,
	"math":         true,
	"score":        true,
	"section":      true,
	"templatedata": true,
	"timeline":     true,
}

// singleOnly lists tags that must not have a closing tag.
var singleOnly = map[string]bool{
	"br":   true,
	"wbr":  true,
	"hr":   true,
	"meta": true,
	"link": true,
	"img":  true,
}

// single lists tags that may appear without a closing tag.
var single = map[string]bool{
	"br":   true,
	"wbr":  true,
	"hr":   true,
	"meta": true,
	"link": true,
	"img":  true,
	"li":   true,
	"dt":   true,
	"dd":   true,
	"th":   true,
	"td":   true,
	"tr":   true,
}

// IsScheme reports whether scheme is valid for external links. With slashes
// true any known scheme is accepted; with slashes false only schemes that can
// appear without "//" are.
func IsScheme(scheme string, slashes bool) bool {
	requires, ok := uriSchemes[strings.ToLower(scheme)]
	if !ok {
		return false
	}

	if slashes {
		return true
	}

	return !requires
}

// IsParsable reports whether the given tag's contents should be passed to the
// parser.
func IsParsable(tag string) bool {
	return !parserBlacklist[strings.ToLower(tag)]
}

// IsVisible reports whether the given tag contains visible text.
func IsVisible(tag string) bool {
	return !invisibleTags[strings.ToLower(tag)]
}

// IsSingle reports whether the given tag can exist without a close tag.
func IsSingle(tag string) bool {
	return single[strings.ToLower(tag)]
}

// IsSingleOnly reports whether the given tag must exist without a close tag.
func IsSingleOnly(tag string) bool {
	return singleOnly[strings.ToLower(tag)]
}

// GetHTMLTag returns the HTML tag associated with the given wiki markup.
// It panics on unknown markup; callers only pass markers the tokenizer
// recognized.
func GetHTMLTag(markup string) string {
	switch markup {
	case "#", "*":
		return "li"
	case ";":
		return "dt"
	case ":":
		return "dd"
	default:
		panic("unknown markup: " + markup)
	}
}

package wikicode

import "strings"

// Context bits describe what the tokenizer is inside of at a given point.
// Each parse frame carries its own context; many dispatch decisions are
// single-bit tests. The layout is load-bearing: heading levels are consecutive
// bits so the current level can be recovered by shifting.
const (
	ctxTemplateName       uint64 = 1 << 0
	ctxTemplateParamKey   uint64 = 1 << 1
	ctxTemplateParamValue uint64 = 1 << 2
	ctxTemplate                  = ctxTemplateName | ctxTemplateParamKey | ctxTemplateParamValue

	ctxArgumentName    uint64 = 1 << 3
	ctxArgumentDefault uint64 = 1 << 4
	ctxArgument               = ctxArgumentName | ctxArgumentDefault

	ctxWikilinkTitle uint64 = 1 << 5
	ctxWikilinkText  uint64 = 1 << 6
	ctxWikilink             = ctxWikilinkTitle | ctxWikilinkText

	ctxExtLinkURI   uint64 = 1 << 7
	ctxExtLinkTitle uint64 = 1 << 8
	ctxExtLink             = ctxExtLinkURI | ctxExtLinkTitle

	ctxHeadingLevel1 uint64 = 1 << 9
	ctxHeadingLevel2 uint64 = 1 << 10
	ctxHeadingLevel3 uint64 = 1 << 11
	ctxHeadingLevel4 uint64 = 1 << 12
	ctxHeadingLevel5 uint64 = 1 << 13
	ctxHeadingLevel6 uint64 = 1 << 14
	ctxHeading              = ctxHeadingLevel1 | ctxHeadingLevel2 | ctxHeadingLevel3 |
		ctxHeadingLevel4 | ctxHeadingLevel5 | ctxHeadingLevel6

	ctxTagOpen  uint64 = 1 << 15
	ctxTagAttr  uint64 = 1 << 16
	ctxTagBody  uint64 = 1 << 17
	ctxTagClose uint64 = 1 << 18
	ctxTag             = ctxTagOpen | ctxTagAttr | ctxTagBody | ctxTagClose

	ctxStyleItalics    uint64 = 1 << 19
	ctxStyleBold       uint64 = 1 << 20
	ctxStylePassAgain  uint64 = 1 << 21
	ctxStyleSecondPass uint64 = 1 << 22
	ctxStyle                  = ctxStyleItalics | ctxStyleBold | ctxStylePassAgain | ctxStyleSecondPass

	ctxDLTerm uint64 = 1 << 23

	ctxHasText      uint64 = 1 << 24
	ctxFailOnText   uint64 = 1 << 25
	ctxFailNext     uint64 = 1 << 26
	ctxFailOnLbrace uint64 = 1 << 27
	ctxFailOnRbrace uint64 = 1 << 28
	ctxFailOnEquals uint64 = 1 << 29
	ctxHasTemplate  uint64 = 1 << 30
	ctxSafetyCheck         = ctxHasText | ctxFailOnText | ctxFailNext |
		ctxFailOnLbrace | ctxFailOnRbrace | ctxFailOnEquals | ctxHasTemplate

	ctxTableOpen      uint64 = 1 << 31
	ctxTableCellOpen  uint64 = 1 << 32
	ctxTableCellStyle uint64 = 1 << 33
	ctxTableRowOpen   uint64 = 1 << 34
	ctxTableTdLine    uint64 = 1 << 35
	ctxTableThLine    uint64 = 1 << 36
	ctxTable                 = ctxTableOpen | ctxTableCellOpen | ctxTableCellStyle |
		ctxTableRowOpen | ctxTableTdLine | ctxTableThLine
	ctxTableCellLineContexts = ctxTableTdLine | ctxTableThLine | ctxTableCellStyle

	ctxHTMLEntity uint64 = 1 << 37
)

// Aggregates used by the dispatch loop and the end-of-input handler.
const (
	ctxFail = ctxTemplate | ctxArgument | ctxWikilink | ctxExtLinkTitle |
		ctxHeading | ctxTag | ctxStyle | ctxTable
	ctxUnsafe = ctxTemplateName | ctxWikilinkTitle | ctxExtLinkTitle |
		ctxTemplateParamKey | ctxArgumentName | ctxTagClose
	ctxDouble      = ctxTemplateParamKey | ctxTagClose | ctxTableRowOpen
	ctxNoWikilinks = ctxTemplateName | ctxArgumentName | ctxWikilinkTitle | ctxExtLinkURI
	ctxNoExtLinks  = ctxTemplateName | ctxArgumentName | ctxWikilinkTitle | ctxExtLink
)

// Global bits persist across the whole tokenize call, outside any one frame.
const glHeading uint64 = 1 << 0

var contextNames = []struct {
	bit  uint64
	name string
}{
	{ctxTemplateName, "TEMPLATE_NAME"},
	{ctxTemplateParamKey, "TEMPLATE_PARAM_KEY"},
	{ctxTemplateParamValue, "TEMPLATE_PARAM_VALUE"},
	{ctxArgumentName, "ARGUMENT_NAME"},
	{ctxArgumentDefault, "ARGUMENT_DEFAULT"},
	{ctxWikilinkTitle, "WIKILINK_TITLE"},
	{ctxWikilinkText, "WIKILINK_TEXT"},
	{ctxExtLinkURI, "EXT_LINK_URI"},
	{ctxExtLinkTitle, "EXT_LINK_TITLE"},
	{ctxHeadingLevel1, "HEADING_LEVEL_1"},
	{ctxHeadingLevel2, "HEADING_LEVEL_2"},
	{ctxHeadingLevel3, "HEADING_LEVEL_3"},
	{ctxHeadingLevel4, "HEADING_LEVEL_4"},
	{ctxHeadingLevel5, "HEADING_LEVEL_5"},
	{ctxHeadingLevel6, "HEADING_LEVEL_6"},
	{ctxTagOpen, "TAG_OPEN"},
	{ctxTagAttr, "TAG_ATTR"},
	{ctxTagBody, "TAG_BODY"},
	{ctxTagClose, "TAG_CLOSE"},
	{ctxStyleItalics, "STYLE_ITALICS"},
	{ctxStyleBold, "STYLE_BOLD"},
	{ctxStylePassAgain, "STYLE_PASS_AGAIN"},
	{ctxStyleSecondPass, "STYLE_SECOND_PASS"},
	{ctxDLTerm, "DL_TERM"},
	{ctxHasText, "HAS_TEXT"},
	{ctxFailOnText, "FAIL_ON_TEXT"},
	{ctxFailNext, "FAIL_NEXT"},
	{ctxFailOnLbrace, "FAIL_ON_LBRACE"},
	{ctxFailOnRbrace, "FAIL_ON_RBRACE"},
	{ctxFailOnEquals, "FAIL_ON_EQUALS"},
	{ctxHasTemplate, "HAS_TEMPLATE"},
	{ctxTableOpen, "TABLE_OPEN"},
	{ctxTableCellOpen, "TABLE_CELL_OPEN"},
	{ctxTableCellStyle, "TABLE_CELL_STYLE"},
	{ctxTableRowOpen, "TABLE_ROW_OPEN"},
	{ctxTableTdLine, "TABLE_TD_LINE"},
	{ctxTableThLine, "TABLE_TH_LINE"},
	{ctxHTMLEntity, "HTML_ENTITY"},
}

// DescribeContext renders the set bits of a tokenizer context by name, for
// debugging and error messages. An empty context renders as "NONE".
func DescribeContext(context uint64) string {
	var names []string
	for _, c := range contextNames {
		if context&c.bit != 0 {
			names = append(names, c.name)
		}
	}

	if len(names) == 0 {
		return "NONE"
	}

	return strings.Join(names, "|")
}

package wikicode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) *Wikicode {
	t.Helper()
	code, err := Parse(input)
	require.NoError(t, err)

	return code
}

func TestGetTreeTemplate(t *testing.T) {
	code := mustParse(t, "Lorem ipsum {{foo|bar|{{baz}}|spam=eggs}}")

	want := strings.Join([]string{
		"Lorem ipsum ",
		"{{",
		"      foo",
		"    | 1",
		"    = bar",
		"    | 2",
		"    = {{",
		"            baz",
		"      }}",
		"    | spam",
		"    = eggs",
		"}}",
	}, "\n")
	require.Equal(t, want, code.GetTree())
}

func TestGetTreeWikilink(t *testing.T) {
	code := mustParse(t, "[[Foo|Bar]]")

	want := strings.Join([]string{
		"[[",
		"      Foo",
		"    | Bar",
		"]]",
	}, "\n")
	require.Equal(t, want, code.GetTree())
}

func TestFilters(t *testing.T) {
	code := mustParse(t, "== H ==\n[[a]] {{t}} <!--c--> &amp; [http://x y] <b>z</b> {{{p}}}")

	require.Len(t, code.FilterHeadings(true), 1)
	require.Len(t, code.FilterWikilinks(true), 1)
	require.Len(t, code.FilterTemplates(true), 1)
	require.Len(t, code.FilterComments(true), 1)
	require.Len(t, code.FilterHTMLEntities(true), 1)
	require.Len(t, code.FilterExternalLinks(true), 1)
	require.Len(t, code.FilterTags(true), 1)
	require.Len(t, code.FilterArguments(true), 1)

	// Top level only: the seven text runs between the constructs.
	require.Len(t, code.FilterText(false), 7)
}

func TestFilterTemplatesRecursion(t *testing.T) {
	code := mustParse(t, "{{foo|{{bar}}}}")

	all := code.FilterTemplates(true)
	require.Len(t, all, 2)
	require.Equal(t, "foo", all[0].Name.String())
	require.Equal(t, "bar", all[1].Name.String())

	require.Len(t, code.FilterTemplates(false), 1)
}

func TestFilterMatchFunc(t *testing.T) {
	code := mustParse(t, "a{{b}}c{{d}}")

	long := code.Filter(true, func(node Node) bool {
		tpl, ok := node.(*Template)
		return ok && tpl.Name.String() == "d"
	})
	require.Len(t, long, 1)

	everything := code.Filter(true, nil)
	require.NotEmpty(t, everything)
}

func TestStripCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "foo bar", "foo bar"},
		{"template dropped", "{{tpl|a}}text", "text"},
		{"comment collapsed", "foo\n\n<!-- comment -->\n\nbar", "foo\n\nbar"},
		{"entity normalized", "a&nbsp;b", "a b"},
		{"wikilink text", "[[Foo|Bar]]", "Bar"},
		{"wikilink title", "[[Foo]]", "Foo"},
		{"external link title", "[http://example.com Example]", "Example"},
		{"bare external link dropped", "x[http://example.com]y", "xy"},
		{"free link kept", "http://example.com", "http://example.com"},
		{"ref contents kept", "<ref>Reference text</ref>", "Reference text"},
		{"heading title kept", "== Foo ==\ntext", " Foo \ntext"},
		{"argument default", "{{{arg|default}}}", "default"},
		{"argument dropped", "x{{{arg}}}y", "xy"},
		{"bold contents kept", "'''bold'''", "bold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustParse(t, tt.input)
			require.Equal(t, tt.want, code.StripCode())
		})
	}
}

func TestStripCodeOptions(t *testing.T) {
	t.Run("keep template params", func(t *testing.T) {
		code := mustParse(t, "{{foo|bar|spam=eggs}}")
		got := code.StripCodeOpts(StripOptions{
			Normalize:          true,
			Collapse:           true,
			KeepTemplateParams: true,
		})
		require.Equal(t, "bar eggs", got)
	})

	t.Run("without normalize", func(t *testing.T) {
		code := mustParse(t, "a&nbsp;b")
		got := code.StripCodeOpts(StripOptions{Collapse: true})
		require.Equal(t, "a&nbsp;b", got)
	})

	t.Run("without collapse", func(t *testing.T) {
		code := mustParse(t, "\n\nfoo\n\n\n\nbar\n")
		got := code.StripCodeOpts(StripOptions{Normalize: true})
		require.Equal(t, "\n\nfoo\n\n\n\nbar\n", got)
	})
}

func TestWikicodeEditing(t *testing.T) {
	code := mustParse(t, "a{{b}}c")
	require.Equal(t, 3, code.Len())

	tpl := code.FilterTemplates(false)[0]
	require.Equal(t, 1, code.IndexOf(tpl))
	require.Same(t, Node(tpl), code.Get(1))

	code.Insert(1, &Text{Value: "X"})
	require.Equal(t, "aX{{b}}c", code.String())

	code.Append(&Text{Value: "!"})
	require.Equal(t, "aX{{b}}c!", code.String())

	code.Set(1, &Text{Value: "Y"})
	require.Equal(t, "aY{{b}}c!", code.String())

	require.True(t, code.Remove(tpl))
	require.Equal(t, "aYc!", code.String())

	// Absent nodes are reported, not invented.
	require.False(t, code.Remove(tpl))
	require.Equal(t, -1, code.IndexOf(tpl))
}

func TestRemoveNestedNode(t *testing.T) {
	code := mustParse(t, "{{foo|{{bar}}}}")

	inner := code.FilterTemplates(true)[1]
	require.True(t, code.Remove(inner))
	require.Equal(t, "{{foo|}}", code.String())
}

func TestStripCodeIdempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		"{{foo|bar}} [[x|y]] baz",
		"''emphasis'' and &amp; <!--gone-->",
		"== h ==\nbody\n\n\n\ntail",
	}

	for _, input := range inputs {
		stripped := mustParse(t, input).StripCode()
		require.Equal(t, stripped, mustParse(t, stripped).StripCode(), "input %q", input)
	}
}

package wikicode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func firstTemplate(t *testing.T, input string) *Template {
	t.Helper()
	code := mustParse(t, input)
	templates := code.FilterTemplates(false)
	require.NotEmpty(t, templates, "no template in %q", input)

	return templates[0]
}

func TestCanHideKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"1", true},
		{"42", true},
		{" 42 ", true},
		{"0", true},
		{"a", false},
		{"", false},
		{"1a", false},
		{"-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.Equal(t, tt.want, CanHideKey(tt.key))
		})
	}
}

func TestTemplateHasAndGet(t *testing.T) {
	tpl := firstTemplate(t, "{{foo|bar|spam=eggs|empty=}}")

	require.True(t, tpl.Has("1", false))
	require.True(t, tpl.Has("spam", false))
	require.True(t, tpl.Has(" spam ", false))
	require.False(t, tpl.Has("2", false))

	require.True(t, tpl.Has("empty", false))
	require.False(t, tpl.Has("empty", true))

	require.Equal(t, "bar", tpl.Get("1").Value.String())
	require.Equal(t, "eggs", tpl.Get("spam").Value.String())
	require.Nil(t, tpl.Get("missing"))
}

// Duplicate names resolve to the last parameter, the one MediaWiki renders.
func TestTemplateGetDuplicate(t *testing.T) {
	tpl := firstTemplate(t, "{{foo|1=bar|baz}}")
	require.Equal(t, "baz", tpl.Get("1").Value.String())
}

func TestTemplateAdd(t *testing.T) {
	t.Run("replace existing named", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|bar|spam=eggs}}")
		_, err := tpl.Add("spam", "cheese")
		require.NoError(t, err)
		require.Equal(t, "{{foo|bar|spam=cheese}}", tpl.String())
	})

	t.Run("append new named", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|bar|spam=eggs}}")
		_, err := tpl.Add("eggs", "milk")
		require.NoError(t, err)
		require.Equal(t, "{{foo|bar|spam=eggs|eggs=milk}}", tpl.String())
	})

	t.Run("next ordinal hides its key", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|bar}}")
		_, err := tpl.Add("2", "two")
		require.NoError(t, err)
		require.Equal(t, "{{foo|bar|two}}", tpl.String())
	})

	t.Run("ordinal out of sequence stays named", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|bar}}")
		_, err := tpl.Add("3", "three")
		require.NoError(t, err)
		require.Equal(t, "{{foo|bar|3=three}}", tpl.String())
	})

	t.Run("replace positional by ordinal", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|1=bar|baz}}")
		_, err := tpl.Add("1", "x")
		require.NoError(t, err)
		require.Equal(t, "{{foo|x}}", tpl.String())
	})

	t.Run("copies spacing conventions", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo\n| a = b\n| c = d\n}}")
		_, err := tpl.Add("e", "f")
		require.NoError(t, err)
		require.Equal(t, "{{foo\n| a = b\n| c = d\n| e = f\n}}", tpl.String())
	})
}

func TestTemplateAddParamOptions(t *testing.T) {
	t.Run("forced named key", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|bar}}")
		_, err := tpl.AddParam("2", "two", ParamOptions{Key: KeyNamed})
		require.NoError(t, err)
		require.Equal(t, "{{foo|bar|2=two}}", tpl.String())
	})

	t.Run("hidden key must be numeric", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo}}")
		_, err := tpl.AddParam("abc", "v", ParamOptions{Key: KeyHidden})
		require.Error(t, err)
	})

	t.Run("insert after", func(t *testing.T) {
		tpl := firstTemplate(t, "{{t|a=1|b=2}}")
		_, err := tpl.AddParam("x", "9", ParamOptions{After: "a"})
		require.NoError(t, err)
		require.Equal(t, "{{t|a=1|x=9|b=2}}", tpl.String())
	})

	t.Run("insert before", func(t *testing.T) {
		tpl := firstTemplate(t, "{{t|a=1|b=2}}")
		_, err := tpl.AddParam("x", "9", ParamOptions{Before: "b"})
		require.NoError(t, err)
		require.Equal(t, "{{t|a=1|x=9|b=2}}", tpl.String())
	})

	t.Run("anchor must exist", func(t *testing.T) {
		tpl := firstTemplate(t, "{{t|a=1}}")
		_, err := tpl.AddParam("x", "9", ParamOptions{Before: "zzz"})
		require.Error(t, err)
	})
}

func TestTemplateRemove(t *testing.T) {
	t.Run("positional removal unhides followers", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|bar|baz}}")
		require.NoError(t, tpl.Remove("1", false))
		require.Equal(t, "{{foo|2=baz}}", tpl.String())
	})

	t.Run("keep field blanks the value", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|spam=eggs|baz}}")
		require.NoError(t, tpl.Remove("spam", true))
		require.Equal(t, "{{foo|spam=|baz}}", tpl.String())
	})

	t.Run("missing parameter", func(t *testing.T) {
		tpl := firstTemplate(t, "{{foo|bar}}")
		require.Error(t, tpl.Remove("nope", false))
	})
}

func TestTemplateRemoveExact(t *testing.T) {
	tpl := firstTemplate(t, "{{foo|a=1|a=2}}")

	first := tpl.Params[0]
	require.NoError(t, tpl.RemoveExact(first, false))
	require.Equal(t, "{{foo|a=2}}", tpl.String())

	require.Error(t, tpl.RemoveExact(first, false))
}

func TestTemplateUpdate(t *testing.T) {
	tpl := firstTemplate(t, "{{t|a=1|b=2}}")

	err := tpl.Update(map[string]string{"a": "x", "c": "y"})
	require.NoError(t, err)
	require.Equal(t, "{{t|a=x|b=2|c=y}}", tpl.String())
}

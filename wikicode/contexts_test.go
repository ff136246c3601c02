package wikicode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescribeContext(t *testing.T) {
	require.Equal(t, "NONE", DescribeContext(0))
	require.Equal(t, "TEMPLATE_NAME", DescribeContext(ctxTemplateName))
	require.Equal(t, "TEMPLATE_NAME|HAS_TEXT", DescribeContext(ctxTemplateName|ctxHasText))
}

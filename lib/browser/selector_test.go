package browser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectorCSS(t *testing.T) {
	testCases := []struct {
		sel      Selector
		css      string
		hasCSS   bool
		xpath    string
		rendered string
	}{
		{
			sel:      ByName("username"),
			css:      `[name="username"]`,
			hasCSS:   true,
			rendered: "name=username",
		},
		{
			sel:      ByClass("no_sub"),
			css:      ".no_sub",
			hasCSS:   true,
			rendered: "class=no_sub",
		},
		{
			sel:      ByText("div", "LearnedLeague"),
			hasCSS:   false,
			xpath:    `//div[text()='LearnedLeague']`,
			rendered: `//div[text()='LearnedLeague']`,
		},
	}

	for _, test := range testCases {
		css, ok := test.sel.CSS()
		require.Equal(t, test.hasCSS, ok)
		require.Equal(t, test.css, css)
		if !ok {
			require.Equal(t, test.xpath, test.sel.XPath())
		}
		require.Equal(t, test.rendered, test.sel.String())
	}
}

func TestXPathUntaggedText(t *testing.T) {
	require.Equal(t, `//*[text()='Submitted']`, ByText("", "Submitted").XPath())
}

func TestXPathLiteral(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "LearnedLeague", expected: `'LearnedLeague'`},
		{in: "Ryan's League", expected: `"Ryan's League"`},
		{in: `say "hi"`, expected: `'say "hi"'`},
		{in: `it's "x"`, expected: `concat('it', "'", 's "x"')`},
		{in: `'"`, expected: `concat("'", '"')`},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, xpathLiteral(test.in), test.in)
	}
}

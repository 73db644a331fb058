package browser

import (
	"fmt"
	"strings"
)

type SelectorKind int

const (
	KindName SelectorKind = iota
	KindClass
	KindText
)

// Selector addresses an element the way the target site's markup allows:
// by name attribute, by class name or by the exact text of a tag.
type Selector struct {
	Kind  SelectorKind
	Tag   string
	Value string
}

// ByName matches elements whose name attribute equals `name`.
func ByName(name string) Selector {
	return Selector{Kind: KindName, Value: name}
}

// ByClass matches elements carrying the class `class`.
func ByClass(class string) Selector {
	return Selector{Kind: KindClass, Value: class}
}

// ByText matches `tag` elements with a direct text node equal to `text`,
// the xpath `//tag[text()='text']`.
func ByText(tag, text string) Selector {
	return Selector{Kind: KindText, Tag: tag, Value: text}
}

func (s Selector) String() string {
	switch s.Kind {
	case KindName:
		return fmt.Sprintf("name=%s", s.Value)
	case KindClass:
		return fmt.Sprintf("class=%s", s.Value)
	case KindText:
		return s.XPath()
	}
	return fmt.Sprintf("selector(%d)=%s", s.Kind, s.Value)
}

// CSS returns the css form of the selector, ok is false for text selectors
// which have no css equivalent.
func (s Selector) CSS() (css string, ok bool) {
	switch s.Kind {
	case KindName:
		return fmt.Sprintf(`[name="%s"]`, strings.ReplaceAll(s.Value, `"`, `\"`)), true
	case KindClass:
		return "." + s.Value, true
	}
	return "", false
}

// XPath returns the xpath form of a text selector. Name and class selectors
// are always looked up through CSS.
func (s Selector) XPath() string {
	tag := s.Tag
	if tag == "" {
		tag = "*"
	}
	return fmt.Sprintf("//%s[text()=%s]", tag, xpathLiteral(s.Value))
}

// xpathLiteral quotes `s` as an xpath 1.0 string literal. xpath has no
// escape sequences so a value containing both quote kinds is built with
// concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

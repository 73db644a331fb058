package htmlutil

import "golang.org/x/net/html"

// OwnTexts returns the data of each text node that is a direct child of
// `node`, this is the node-set selected by the xpath `text()`.
func OwnTexts(node *html.Node) []string {
	if node == nil {
		return nil
	}
	var texts []string
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			texts = append(texts, child.Data)
		}
	}
	return texts
}

// HasOwnText reports whether any direct text child of `node` equals `text`
// exactly, mirroring the xpath predicate `[text()='...']`.
func HasOwnText(node *html.Node, text string) bool {
	for _, t := range OwnTexts(node) {
		if t == text {
			return true
		}
	}
	return false
}

// Attr returns the value of attribute `key` and whether it is present.
func Attr(node *html.Node, key string) (string, bool) {
	if node == nil {
		return "", false
	}
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets (or adds) attribute `key` on `node`.
func SetAttr(node *html.Node, key, value string) {
	for i, a := range node.Attr {
		if a.Key == key {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

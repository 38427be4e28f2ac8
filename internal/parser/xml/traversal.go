// Package xml parses NFe documents and cancellation events into the
// domain model. Traversal matches elements by local tag name only,
// because source files inconsistently declare or omit namespace
// prefixes.
package xml

import (
	"strings"

	"github.com/beevik/etree"
)

// localName strips a namespace prefix from a tag ("nfe:det" -> "det").
func localName(tag string) string {
	if idx := strings.IndexByte(tag, ':'); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}

// hasLocalName checks if an element has the given local name, ignoring
// any namespace prefix.
func hasLocalName(elem *etree.Element, name string) bool {
	return localName(elem.Tag) == name
}

// findFirst returns the first descendant of elem, in depth-first
// document order, whose local tag name matches name. elem itself is not
// considered.
func findFirst(elem *etree.Element, name string) *etree.Element {
	for _, child := range elem.ChildElements() {
		if hasLocalName(child, name) {
			return child
		}
		if found := findFirst(child, name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant of elem whose local tag name matches
// name, in document order. Matching elements are not searched further,
// so nested blocks of the same name yield only the outermost.
func findAll(elem *etree.Element, name string) []*etree.Element {
	var out []*etree.Element
	for _, child := range elem.ChildElements() {
		if hasLocalName(child, name) {
			out = append(out, child)
			continue
		}
		out = append(out, findAll(child, name)...)
	}
	return out
}

// text returns the trimmed text of the first matching descendant, or ""
// when the element is absent.
func text(elem *etree.Element, name string) string {
	if found := findFirst(elem, name); found != nil {
		return strings.TrimSpace(found.Text())
	}
	return ""
}

// attr returns the value of the named attribute, matched by local name.
func attr(elem *etree.Element, name string) string {
	for _, a := range elem.Attr {
		if localName(a.Key) == name {
			return a.Value
		}
	}
	return ""
}

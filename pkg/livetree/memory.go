package livetree

import (
	"fmt"
	"sort"
	"strings"
)

// MemDocument is an in-memory Document for tests, dev tooling, and
// snapshots. It is not safe for concurrent use; the reconciler runs
// single-threaded over one tree by contract.
type MemDocument struct {
	nextID          int
	ElementsCreated int
	TextsCreated    int
}

// NewMemDocument creates an empty in-memory document.
func NewMemDocument() *MemDocument {
	return &MemDocument{}
}

// CreateElement implements Document.
func (d *MemDocument) CreateElement(tag string) Element {
	d.nextID++
	d.ElementsCreated++
	return &MemElement{
		id:    fmt.Sprintf("e%d", d.nextID),
		tag:   tag,
		attrs: make(map[string]string),
	}
}

// CreateText implements Document.
func (d *MemDocument) CreateText(content string) Text {
	d.nextID++
	d.TextsCreated++
	return &MemText{
		id:      fmt.Sprintf("t%d", d.nextID),
		content: content,
	}
}

// MemElement is the in-memory Element.
type MemElement struct {
	id        string
	tag       string
	children  []Node
	attrs     map[string]string
	listeners map[string]ListenerFunc

	// Mutation counters, for tests asserting call minimality.
	Appends  int
	Replaces int
	Removes  int
}

// ID implements Node.
func (e *MemElement) ID() string { return e.id }

// Tag returns the element's tag name.
func (e *MemElement) Tag() string { return e.tag }

// Children returns the element's current children in order.
func (e *MemElement) Children() []Node { return e.children }

// AttrValue returns an attribute value and whether it is set.
func (e *MemElement) AttrValue(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// AppendChild implements Element.
func (e *MemElement) AppendChild(child Node) {
	e.Appends++
	e.children = append(e.children, child)
}

// ReplaceChild implements Element.
func (e *MemElement) ReplaceChild(old, new Node) {
	e.Replaces++
	for i, c := range e.children {
		if c == old {
			e.children[i] = new
			return
		}
	}
	// Old node missing: keep the tree consistent by appending. The
	// reconciler never hits this path with correct bookkeeping.
	e.children = append(e.children, new)
}

// RemoveChild implements Element.
func (e *MemElement) RemoveChild(child Node) error {
	for i, c := range e.children {
		if c == child {
			e.Removes++
			e.children = append(e.children[:i], e.children[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SetAttr implements Element.
func (e *MemElement) SetAttr(key, value string) {
	e.attrs[key] = value
}

// RemoveAttr implements Element.
func (e *MemElement) RemoveAttr(key string) {
	delete(e.attrs, key)
}

// SetListener implements Element.
func (e *MemElement) SetListener(event string, fn ListenerFunc) {
	if e.listeners == nil {
		e.listeners = make(map[string]ListenerFunc)
	}
	e.listeners[event] = fn
}

// RemoveListener implements Element.
func (e *MemElement) RemoveListener(event string) {
	delete(e.listeners, event)
}

// HasListener reports whether a handler is installed for the event type.
func (e *MemElement) HasListener(event string) bool {
	_, ok := e.listeners[event]
	return ok
}

// Fire invokes the installed handler for ev.Type, if any.
func (e *MemElement) Fire(ev Event) {
	if fn, ok := e.listeners[ev.Type]; ok {
		fn(ev)
	}
}

// HTML renders the subtree as HTML with escaped content. Attributes are
// emitted in sorted order so output is deterministic.
func (e *MemElement) HTML() string {
	var b strings.Builder
	e.writeHTML(&b)
	return b.String()
}

func (e *MemElement) writeHTML(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.tag)

	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(e.attrs[k]))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	for _, c := range e.children {
		switch n := c.(type) {
		case *MemElement:
			n.writeHTML(b)
		case *MemText:
			b.WriteString(escapeHTML(n.content))
		}
	}

	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}

// MemText is the in-memory Text.
type MemText struct {
	id      string
	content string

	// Writes counts SetContent calls, for tests asserting that the
	// reconciler skips redundant content updates.
	Writes int
}

// ID implements Node.
func (t *MemText) ID() string { return t.id }

// Content returns the node's current text content.
func (t *MemText) Content() string { return t.content }

// SetContent implements Text.
func (t *MemText) SetContent(content string) {
	t.Writes++
	t.content = content
}

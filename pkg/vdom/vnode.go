package vdom

import (
	"sort"
	"strings"

	"github.com/vireo-dev/vireo/pkg/livetree"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is a virtual tree node: a logical descriptor plus an optional
// exclusive binding to the live node that materializes it.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes and event handlers
	Children []*VNode // Child nodes
	Text     string   // For KindText

	// ref is the live binding. It is owned by exactly one VNode at a
	// time; Apply moves it from the previous generation into the new
	// one. nil means not yet materialized.
	ref livetree.Node

	// consumed is set once the node has been through Apply or Remove
	// as the previous generation. A consumed node must not be reused.
	consumed bool
}

// Props holds attributes and event handlers. Keys starting with "on"
// are event handlers; everything else is an attribute.
type Props map[string]any

// Event is the payload delivered to a listener.
type Event = livetree.Event

// Listener is an event handler that may produce a message for the
// sink. A nil return means no message.
type Listener func(ev Event) any

// Sink routes messages produced by event listeners. It is passed down
// the reconciliation by value; copies are cheap and share delivery.
type Sink func(msg any)

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// EventHandler represents an event handler being attached to a node.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}

// Bound reports whether the node currently owns a live binding.
func (v *VNode) Bound() bool {
	return v != nil && v.ref != nil
}

// Ref returns the node's live binding, or nil if the node has not been
// materialized. The binding remains owned by the node.
func (v *VNode) Ref() livetree.Node {
	if v == nil {
		return nil
	}
	return v.ref
}

// takeRef moves the live binding out of the node.
func (v *VNode) takeRef() livetree.Node {
	ref := v.ref
	v.ref = nil
	return ref
}

// Equal reports structural equality of the logical descriptors. Live
// bindings are ignored, as are event handlers (function values have no
// useful equality).
func (v *VNode) Equal(other *VNode) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == other.Text
	case KindElement:
		if v.Tag != other.Tag {
			return false
		}
		if !attrsEqual(v.Props, other.Props) {
			return false
		}
		if len(v.Children) != len(other.Children) {
			return false
		}
		for i := range v.Children {
			if !v.Children[i].Equal(other.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// attrsEqual compares the attribute portion of two prop sets, skipping
// event handlers.
func attrsEqual(a, b Props) bool {
	for key, av := range a {
		if isListener(key) {
			continue
		}
		bv, ok := b[key]
		if !ok || !propsEqual(av, bv) {
			return false
		}
	}
	for key := range b {
		if isListener(key) {
			continue
		}
		if _, ok := a[key]; !ok {
			return false
		}
	}
	return true
}

// String renders the logical descriptor as HTML-like text, ignoring
// live bindings and event handlers. Intended for debugging and test
// failure output.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	var b strings.Builder
	v.writeString(&b)
	return b.String()
}

func (v *VNode) writeString(b *strings.Builder) {
	switch v.Kind {
	case KindText:
		b.WriteString(v.Text)
	case KindElement:
		b.WriteByte('<')
		b.WriteString(v.Tag)
		keys := make([]string, 0, len(v.Props))
		for k := range v.Props {
			if !isListener(k) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteString(`="`)
			b.WriteString(propToString(v.Props[k]))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		for _, c := range v.Children {
			if c != nil {
				c.writeString(b)
			}
		}
		b.WriteString("</")
		b.WriteString(v.Tag)
		b.WriteByte('>')
	}
}

package livetree

import "errors"

// ErrNotFound is returned by RemoveChild when the node is not a child
// of the parent. Callers treat this as benign drift: the tree may have
// been mutated by something outside the reconciler.
var ErrNotFound = errors.New("livetree: node not found")

// Node is any live node. IDs are stable for the lifetime of the node
// and unique within a Document.
type Node interface {
	ID() string
}

// Text is a live text node.
type Text interface {
	Node

	// SetContent replaces the node's text content.
	SetContent(content string)
}

// Element is a live element node with children, attributes, and
// event listeners.
type Element interface {
	Node

	// AppendChild adds child as the element's last child.
	AppendChild(child Node)

	// ReplaceChild swaps old for new in place, keeping the position.
	ReplaceChild(old, new Node)

	// RemoveChild detaches child from the element. Returns ErrNotFound
	// if child is not currently a child of the element.
	RemoveChild(child Node) error

	// SetAttr sets or updates an attribute.
	SetAttr(key, value string)

	// RemoveAttr removes an attribute. Removing an absent attribute is
	// a no-op.
	RemoveAttr(key string)

	// SetListener installs the handler for an event type, replacing any
	// previous handler for that type.
	SetListener(event string, fn ListenerFunc)

	// RemoveListener uninstalls the handler for an event type.
	RemoveListener(event string)
}

// Document creates live nodes. Created nodes are detached until
// appended to a parent.
type Document interface {
	CreateElement(tag string) Element
	CreateText(content string) Text
}

// ListenerFunc handles a live event.
type ListenerFunc func(ev Event)

// Event is the payload delivered to a listener.
type Event struct {
	Type  string // "click", "input", etc.
	Value string // Input value, if any
	Key   string // Keyboard key, if any
	X     int    // Pointer position
	Y     int
}

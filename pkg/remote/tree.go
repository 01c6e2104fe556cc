package remote

import (
	"fmt"

	"github.com/vireo-dev/vireo/pkg/livetree"
	"github.com/vireo-dev/vireo/pkg/protocol"
)

// RootID is the node ID of the client's mount point. The client binds
// it to its root container before the first ops frame arrives.
const RootID = "root"

// Tree is a livetree.Document backed by a thin client. Mutations are
// buffered as protocol ops until Flush.
type Tree struct {
	nextID    int
	buf       []protocol.Op
	seq       uint64
	parent    map[string]string   // node ID -> parent node ID
	children  map[string][]string // node ID -> child node IDs
	listeners map[string]map[string]livetree.ListenerFunc
}

// NewTree creates an empty remote tree.
func NewTree() *Tree {
	return &Tree{
		parent:    make(map[string]string),
		children:  make(map[string][]string),
		listeners: make(map[string]map[string]livetree.ListenerFunc),
	}
}

// Root returns the element bound to the client's mount point.
func (t *Tree) Root() livetree.Element {
	return &element{tree: t, id: RootID}
}

// CreateElement implements livetree.Document.
func (t *Tree) CreateElement(tag string) livetree.Element {
	t.nextID++
	id := fmt.Sprintf("e%d", t.nextID)
	t.push(protocol.Op{Code: protocol.OpCreateElement, Node: id, Tag: tag})
	return &element{tree: t, id: id}
}

// CreateText implements livetree.Document.
func (t *Tree) CreateText(content string) livetree.Text {
	t.nextID++
	id := fmt.Sprintf("t%d", t.nextID)
	t.push(protocol.Op{Code: protocol.OpCreateText, Node: id, Value: content})
	return &text{tree: t, id: id}
}

// Flush returns the ops buffered since the previous flush as a frame
// with the next sequence number. Returns nil when nothing changed.
func (t *Tree) Flush() *protocol.OpsFrame {
	if len(t.buf) == 0 {
		return nil
	}
	t.seq++
	of := &protocol.OpsFrame{Seq: t.seq, Ops: t.buf}
	t.buf = nil
	return of
}

// Pending returns the number of ops buffered for the next flush.
func (t *Tree) Pending() int {
	return len(t.buf)
}

// Dispatch routes a client event to the listener registered for its
// target node and event type. Returns false if no listener matches,
// which can happen benignly when an event races a removal.
func (t *Tree) Dispatch(ev *protocol.Event) bool {
	fns, ok := t.listeners[ev.Node]
	if !ok {
		return false
	}
	fn, ok := fns[ev.Name]
	if !ok {
		return false
	}
	fn(livetree.Event{Type: ev.Name, Value: ev.Value, Key: ev.Key, X: ev.X, Y: ev.Y})
	return true
}

func (t *Tree) push(op protocol.Op) {
	t.buf = append(t.buf, op)
}

func (t *Tree) attach(parentID, childID string) {
	t.parent[childID] = parentID
	t.children[parentID] = append(t.children[parentID], childID)
}

// detach removes the node from its parent's bookkeeping and purges the
// listeners of the whole detached subtree so stale events stop routing.
func (t *Tree) detach(parentID, childID string) {
	delete(t.parent, childID)
	kids := t.children[parentID]
	for i, id := range kids {
		if id == childID {
			t.children[parentID] = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	t.purge(childID)
}

func (t *Tree) purge(id string) {
	delete(t.listeners, id)
	for _, child := range t.children[id] {
		t.purge(child)
	}
	delete(t.children, id)
}

// element is a remote live element node.
type element struct {
	tree *Tree
	id   string
}

// ID implements livetree.Node.
func (e *element) ID() string { return e.id }

// AppendChild implements livetree.Element.
func (e *element) AppendChild(child livetree.Node) {
	e.tree.attach(e.id, child.ID())
	e.tree.push(protocol.Op{Code: protocol.OpAppendChild, Node: child.ID(), Parent: e.id})
}

// ReplaceChild implements livetree.Element.
func (e *element) ReplaceChild(old, new livetree.Node) {
	e.tree.detach(e.id, old.ID())
	e.tree.attach(e.id, new.ID())
	e.tree.push(protocol.Op{
		Code:   protocol.OpReplaceChild,
		Node:   new.ID(),
		Parent: e.id,
		Old:    old.ID(),
	})
}

// RemoveChild implements livetree.Element.
func (e *element) RemoveChild(child livetree.Node) error {
	if e.tree.parent[child.ID()] != e.id {
		return livetree.ErrNotFound
	}
	e.tree.detach(e.id, child.ID())
	e.tree.push(protocol.Op{Code: protocol.OpRemoveChild, Node: child.ID(), Parent: e.id})
	return nil
}

// SetAttr implements livetree.Element.
func (e *element) SetAttr(key, value string) {
	e.tree.push(protocol.Op{Code: protocol.OpSetAttr, Node: e.id, Key: key, Value: value})
}

// RemoveAttr implements livetree.Element.
func (e *element) RemoveAttr(key string) {
	e.tree.push(protocol.Op{Code: protocol.OpRemoveAttr, Node: e.id, Key: key})
}

// SetListener implements livetree.Element. The client only needs a
// forwarding hook per (node, event) pair, so the op is emitted on
// first registration; later passes just swap the server-side handler.
func (e *element) SetListener(event string, fn livetree.ListenerFunc) {
	fns, ok := e.tree.listeners[e.id]
	if !ok {
		fns = make(map[string]livetree.ListenerFunc)
		e.tree.listeners[e.id] = fns
	}
	if _, registered := fns[event]; !registered {
		e.tree.push(protocol.Op{Code: protocol.OpSetListener, Node: e.id, Key: event})
	}
	fns[event] = fn
}

// RemoveListener implements livetree.Element.
func (e *element) RemoveListener(event string) {
	fns, ok := e.tree.listeners[e.id]
	if !ok {
		return
	}
	if _, registered := fns[event]; !registered {
		return
	}
	delete(fns, event)
	e.tree.push(protocol.Op{Code: protocol.OpRemoveListener, Node: e.id, Key: event})
}

// text is a remote live text node.
type text struct {
	tree *Tree
	id   string
}

// ID implements livetree.Node.
func (t *text) ID() string { return t.id }

// SetContent implements livetree.Text.
func (t *text) SetContent(content string) {
	t.tree.push(protocol.Op{Code: protocol.OpSetText, Node: t.id, Value: content})
}

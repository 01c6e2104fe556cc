package remote

import (
	"errors"
	"testing"

	"github.com/vireo-dev/vireo/pkg/livetree"
	"github.com/vireo-dev/vireo/pkg/protocol"
)

func TestCreateRecordsOps(t *testing.T) {
	tree := NewTree()
	el := tree.CreateElement("div")
	txt := tree.CreateText("hi")
	el.AppendChild(txt)
	tree.Root().AppendChild(el)

	of := tree.Flush()
	if of == nil {
		t.Fatal("Flush returned nil after mutations")
	}
	if of.Seq != 1 {
		t.Errorf("Seq = %d, want 1", of.Seq)
	}

	want := []protocol.Op{
		{Code: protocol.OpCreateElement, Node: "e1", Tag: "div"},
		{Code: protocol.OpCreateText, Node: "t2", Value: "hi"},
		{Code: protocol.OpAppendChild, Node: "t2", Parent: "e1"},
		{Code: protocol.OpAppendChild, Node: "e1", Parent: RootID},
	}
	if len(of.Ops) != len(want) {
		t.Fatalf("got %d ops, want %d", len(of.Ops), len(want))
	}
	for i, op := range of.Ops {
		if op != want[i] {
			t.Errorf("op %d = %+v, want %+v", i, op, want[i])
		}
	}
}

func TestFlushClearsBuffer(t *testing.T) {
	tree := NewTree()
	tree.CreateElement("span")

	if tree.Flush() == nil {
		t.Fatal("first Flush returned nil")
	}
	if of := tree.Flush(); of != nil {
		t.Errorf("second Flush = %+v, want nil", of)
	}
	if tree.Pending() != 0 {
		t.Errorf("Pending = %d after flush, want 0", tree.Pending())
	}
}

func TestFlushSequenceAdvances(t *testing.T) {
	tree := NewTree()

	tree.CreateElement("a")
	first := tree.Flush()
	tree.CreateElement("b")
	second := tree.Flush()

	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("seqs = %d, %d, want 1, 2", first.Seq, second.Seq)
	}
}

func TestRemoveChildOfUntrackedNode(t *testing.T) {
	tree := NewTree()
	parent := tree.CreateElement("ul")
	stray := tree.CreateElement("li")

	if err := parent.RemoveChild(stray); !errors.Is(err, livetree.ErrNotFound) {
		t.Fatalf("RemoveChild = %v, want ErrNotFound", err)
	}

	// The failed removal must not leak an op to the client.
	for _, op := range tree.Flush().Ops {
		if op.Code == protocol.OpRemoveChild {
			t.Errorf("unexpected remove op: %+v", op)
		}
	}
}

func TestRemoveChildAfterReparent(t *testing.T) {
	tree := NewTree()
	a := tree.CreateElement("div")
	b := tree.CreateElement("div")
	child := tree.CreateElement("p")
	a.AppendChild(child)
	b.AppendChild(child)

	if err := a.RemoveChild(child); !errors.Is(err, livetree.ErrNotFound) {
		t.Errorf("RemoveChild from old parent = %v, want ErrNotFound", err)
	}
	if err := b.RemoveChild(child); err != nil {
		t.Errorf("RemoveChild from current parent = %v", err)
	}
}

func TestDispatchRoutesToListener(t *testing.T) {
	tree := NewTree()
	el := tree.CreateElement("button")

	var got livetree.Event
	el.SetListener("click", func(ev livetree.Event) { got = ev })

	ok := tree.Dispatch(&protocol.Event{Node: el.ID(), Name: "click", X: 10, Y: 20})
	if !ok {
		t.Fatal("Dispatch returned false for registered listener")
	}
	if got.Type != "click" || got.X != 10 || got.Y != 20 {
		t.Errorf("event = %+v", got)
	}
}

func TestDispatchUnknownTarget(t *testing.T) {
	tree := NewTree()
	if tree.Dispatch(&protocol.Event{Node: "e99", Name: "click"}) {
		t.Error("Dispatch returned true for unknown node")
	}

	el := tree.CreateElement("div")
	el.SetListener("click", func(livetree.Event) {})
	if tree.Dispatch(&protocol.Event{Node: el.ID(), Name: "input"}) {
		t.Error("Dispatch returned true for unregistered event type")
	}
}

func TestSetListenerEmitsOpOnce(t *testing.T) {
	tree := NewTree()
	el := tree.CreateElement("button")
	el.SetListener("click", func(livetree.Event) {})
	el.SetListener("click", func(livetree.Event) {})

	var hooks int
	for _, op := range tree.Flush().Ops {
		if op.Code == protocol.OpSetListener {
			hooks++
		}
	}
	if hooks != 1 {
		t.Errorf("emitted %d listener ops, want 1", hooks)
	}
}

func TestRemoveListenerStopsDispatch(t *testing.T) {
	tree := NewTree()
	el := tree.CreateElement("input")
	el.SetListener("input", func(livetree.Event) {})
	el.RemoveListener("input")

	if tree.Dispatch(&protocol.Event{Node: el.ID(), Name: "input"}) {
		t.Error("Dispatch routed to removed listener")
	}

	ops := tree.Flush().Ops
	last := ops[len(ops)-1]
	if last.Code != protocol.OpRemoveListener || last.Key != "input" {
		t.Errorf("last op = %+v, want remove-listener", last)
	}
}

func TestDetachPurgesSubtreeListeners(t *testing.T) {
	tree := NewTree()
	parent := tree.CreateElement("div")
	child := tree.CreateElement("span")
	leaf := tree.CreateElement("button")
	parent.AppendChild(child)
	child.AppendChild(leaf)
	tree.Root().AppendChild(parent)
	leaf.SetListener("click", func(livetree.Event) {})

	if err := tree.Root().RemoveChild(parent); err != nil {
		t.Fatalf("RemoveChild: %v", err)
	}
	if tree.Dispatch(&protocol.Event{Node: leaf.ID(), Name: "click"}) {
		t.Error("Dispatch routed into detached subtree")
	}
}

func TestReplaceChildRewiresTracking(t *testing.T) {
	tree := NewTree()
	parent := tree.CreateElement("div")
	old := tree.CreateElement("span")
	repl := tree.CreateElement("p")
	parent.AppendChild(old)
	parent.ReplaceChild(old, repl)

	if err := parent.RemoveChild(old); !errors.Is(err, livetree.ErrNotFound) {
		t.Errorf("RemoveChild(old) = %v, want ErrNotFound", err)
	}
	if err := parent.RemoveChild(repl); err != nil {
		t.Errorf("RemoveChild(replacement) = %v", err)
	}
}

func TestSetContentRecordsOp(t *testing.T) {
	tree := NewTree()
	txt := tree.CreateText("a")
	tree.Flush()

	txt.SetContent("b")
	of := tree.Flush()
	if len(of.Ops) != 1 || of.Ops[0].Code != protocol.OpSetText || of.Ops[0].Value != "b" {
		t.Errorf("ops = %+v", of.Ops)
	}
}

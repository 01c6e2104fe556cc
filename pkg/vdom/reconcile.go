package vdom

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vireo-dev/vireo/pkg/livetree"
)

// ErrChildPairing is returned when positional child pairing produces a
// position where neither generation has a child. With both child lists
// padded to the longer side this only happens when a child slice holds
// a nil entry in both generations at the same index - a construction
// defect, not a runtime condition - so the pass is aborted rather than
// silently continued over a corrupted tree.
var ErrChildPairing = errors.New("vdom: child pairing produced an empty pair")

// Observer receives a callback for every live-tree action the
// reconciler takes. Implementations must be cheap; they run inline.
type Observer interface {
	ElementCreated(tag string)
	ElementReused(tag string)
	ElementReplaced(tag string)
	TextCreated()
	TextReplaced()
	TextUpdated()
	NodeRemoved()
	RemoveMissed()
}

// Reconciler applies virtual trees to a live tree. The zero value is
// not usable; construct with New.
type Reconciler struct {
	doc    livetree.Document
	logger *slog.Logger
	obs    Observer
}

// ReconcilerOption configures a Reconciler. The name stays clear of
// Option, the <option> element factory.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithObserver installs an Observer for reconciliation actions.
func WithObserver(obs Observer) ReconcilerOption {
	return func(r *Reconciler) {
		r.obs = obs
	}
}

// New creates a Reconciler that materializes nodes through doc.
func New(doc livetree.Document, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		doc:    doc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply reconciles next against prev under parent, mutating the live
// tree so that on return next is bound to a live node attached under
// parent. prev is the node from the previous pass, or nil on first
// mount; it is consumed by the call and must not be used again - its
// binding has either moved into next or its live node was destroyed.
//
// The traversal is depth-first and synchronous: a node's own mutation
// completes before its children are reconciled. A non-nil error aborts
// the pass, leaving the live tree partially updated.
func (r *Reconciler) Apply(next *VNode, parent livetree.Element, prev *VNode, sink Sink) error {
	if next == nil {
		return errors.New("vdom: cannot apply nil node")
	}
	switch next.Kind {
	case KindElement:
		return r.applyElement(next, parent, prev, sink)
	case KindText:
		r.applyText(next, parent, prev)
		return nil
	default:
		return fmt.Errorf("vdom: unknown node kind %d", next.Kind)
	}
}

// applyElement handles the element branch: reuse, replace, or create,
// then content sync and positional child reconciliation.
func (r *Reconciler) applyElement(next *VNode, parent livetree.Element, prev *VNode, sink Sink) error {
	// matched is the previous descriptor when the live element is
	// reused; its props and children drive the diffs below. A replace
	// or create is a fresh mount and diffs against nothing.
	var matched *VNode

	switch {
	case prev != nil && prev.Kind == KindElement && prev.Tag == next.Tag && prev.ref != nil:
		next.ref = prev.takeRef()
		matched = prev
		if r.obs != nil {
			r.obs.ElementReused(next.Tag)
		}

	case prev != nil && prev.ref != nil:
		// Shape mismatch with a live binding: one replace, never an
		// append plus a remove.
		el := r.doc.CreateElement(next.Tag)
		parent.ReplaceChild(prev.takeRef(), el)
		next.ref = el
		if r.obs != nil {
			r.obs.ElementReplaced(next.Tag)
		}

	default:
		el := r.doc.CreateElement(next.Tag)
		parent.AppendChild(el)
		next.ref = el
		if r.obs != nil {
			r.obs.ElementCreated(next.Tag)
		}
	}
	if prev != nil {
		prev.consumed = true
	}

	el, ok := next.ref.(livetree.Element)
	if !ok {
		return fmt.Errorf("vdom: <%s> bound to non-element live node %s", next.Tag, next.ref.ID())
	}

	r.renderElement(el, next, matched, sink)

	var prevChildren []*VNode
	if matched != nil {
		prevChildren = matched.Children
	}

	// Pair children strictly by position, padded to the longer list so
	// trailing removals are not dropped.
	max := len(next.Children)
	if len(prevChildren) > max {
		max = len(prevChildren)
	}
	for i := 0; i < max; i++ {
		var nc, pc *VNode
		if i < len(next.Children) {
			nc = next.Children[i]
		}
		if i < len(prevChildren) {
			pc = prevChildren[i]
		}
		switch {
		case nc != nil:
			if err := r.Apply(nc, el, pc, sink); err != nil {
				return err
			}
		case pc != nil:
			r.Remove(pc, el)
		default:
			return fmt.Errorf("%w: child %d of <%s>", ErrChildPairing, i, next.Tag)
		}
	}
	return nil
}

// applyText handles the text branch. Content is only written when it
// actually changed.
func (r *Reconciler) applyText(next *VNode, parent livetree.Element, prev *VNode) {
	switch {
	case prev != nil && prev.Kind == KindText && prev.ref != nil:
		next.ref = prev.takeRef()
		if prev.Text != next.Text {
			next.ref.(livetree.Text).SetContent(next.Text)
			if r.obs != nil {
				r.obs.TextUpdated()
			}
		}

	case prev != nil && prev.ref != nil:
		tn := r.doc.CreateText(next.Text)
		parent.ReplaceChild(prev.takeRef(), tn)
		next.ref = tn
		if r.obs != nil {
			r.obs.TextReplaced()
		}

	default:
		tn := r.doc.CreateText(next.Text)
		parent.AppendChild(tn)
		next.ref = tn
		if r.obs != nil {
			r.obs.TextCreated()
		}
	}
	if prev != nil {
		prev.consumed = true
	}
}

// Remove detaches node's live binding from parent and consumes node.
// A node that was never materialized is a no-op. A removal target the
// live parent no longer holds is logged and skipped: the live tree may
// have been mutated externally, and that is not a caller error.
func (r *Reconciler) Remove(node *VNode, parent livetree.Element) {
	if node == nil {
		return
	}
	node.consumed = true
	ref := node.takeRef()
	if ref == nil {
		return
	}
	if err := parent.RemoveChild(ref); err != nil {
		r.logger.Warn("removal target not found in live parent",
			"node", ref.ID(), "parent", parent.ID(), "error", err)
		if r.obs != nil {
			r.obs.RemoveMissed()
		}
		return
	}
	if r.obs != nil {
		r.obs.NodeRemoved()
	}
}

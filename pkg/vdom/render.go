package vdom

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vireo-dev/vireo/pkg/livetree"
)

// renderElement synchronizes attributes and event listeners on el.
// matched is the previous descriptor when the element was reused; nil
// means a fresh mount and every prop is treated as newly set. matched
// retains ownership of its children; only its props are read here.
func (r *Reconciler) renderElement(el livetree.Element, next, matched *VNode, sink Sink) {
	var prevProps Props
	if matched != nil {
		prevProps = matched.Props
	}

	// Drop props the new generation no longer carries.
	for key := range prevProps {
		if _, ok := next.Props[key]; ok {
			continue
		}
		if isListener(key) {
			el.RemoveListener(eventName(key))
		} else {
			el.RemoveAttr(key)
		}
	}

	// Set added and changed props. Listeners are reinstalled on every
	// pass: function values have no useful equality, and installing
	// replaces the previous handler.
	for key, val := range next.Props {
		if isListener(key) {
			el.SetListener(eventName(key), bindListener(val, sink))
			continue
		}
		if prevVal, ok := prevProps[key]; ok && propsEqual(prevVal, val) {
			continue
		}
		el.SetAttr(key, propToString(val))
	}
}

// bindListener wraps a handler so messages it produces flow into sink.
func bindListener(handler any, sink Sink) livetree.ListenerFunc {
	return func(ev livetree.Event) {
		var msg any
		switch h := handler.(type) {
		case Listener:
			msg = h(ev)
		case func(Event) any:
			msg = h(ev)
		case func() any:
			msg = h()
		case func(Event):
			h(ev)
		case func():
			h()
		default:
			// Anything else is delivered to the sink as-is, letting
			// callers use plain message values as handlers.
			msg = handler
		}
		if msg != nil && sink != nil {
			sink(msg)
		}
	}
}

// isListener returns true if the prop key is an event handler (starts
// with "on"). Case-insensitive to catch onclick, onClick, ONCLICK.
func isListener(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// eventName strips the "on" prefix from a handler prop key.
func eventName(key string) string {
	return strings.ToLower(key[2:])
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}

// propToString converts a prop value to its attribute string form.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

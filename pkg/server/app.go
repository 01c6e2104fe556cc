package server

import "github.com/vireo-dev/vireo/pkg/vdom"

// App is the application state machine a session drives. Update folds
// one message into the state; View produces the virtual tree for the
// current state. Both are called from the session goroutine only.
type App interface {
	Update(msg any)
	View() *vdom.VNode
}

// Factory creates a fresh App for each new session.
type Factory func() App

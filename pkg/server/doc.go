// Package server hosts reconciliation sessions over WebSocket.
//
// Each connected client gets a Session that owns an App instance, a
// remote live tree, and a reconciler. Client events are decoded from
// protocol frames, dispatched to virtual-tree listeners, folded into
// the app via Update, and the resulting view is reconciled against the
// previous one. The mutation ops the pass produces are flushed to the
// client as a single ops frame.
package server

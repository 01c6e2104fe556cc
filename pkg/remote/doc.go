// Package remote implements a livetree.Document whose nodes live on a
// thin client. Every primitive the reconciler invokes is recorded as a
// protocol op; the session flushes buffered ops to the client after
// each reconciliation pass, and client events are routed back to the
// listeners registered here.
//
// A Tree is owned by a single session goroutine: reconciliation,
// Flush, and Dispatch must not be called concurrently.
package remote

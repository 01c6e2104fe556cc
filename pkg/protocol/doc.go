// Package protocol implements the binary wire format between a Vireo
// server and its thin client.
//
// The server holds the virtual tree and reconciles it in place against
// a remote live tree; every live-tree primitive the reconciler invokes
// becomes a mutation op streamed to the client, and client-side events
// flow back as event messages. The format is optimized for minimal
// bandwidth: no reflection, direct byte manipulation, varint integers,
// length-prefixed strings.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): Client → Server events
//   - FrameOps (0x02): Server → Client mutation ops
//   - FrameControl (0x03): Control messages (ping/pong)
package protocol

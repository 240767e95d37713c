// Package bridge implements the binary wire contract between the render
// engine and the native host (iOS/Android). It carries mutation ops from
// engine to host and events from host to engine over an ordered, reliable
// async channel (§6).
//
// # Design Goals
//
//   - Minimal size: direct byte manipulation, no reflection
//   - Ordered delivery: sequence numbers per batch, acknowledgments
//   - Reconnection: resync of missed batches after a transport drop
//   - Extensible: version negotiation, reserved opcodes
//   - No code execution: the bridge has no "run arbitrary code on the
//     native side" operation, by construction (see op.go)
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
//   - FrameHandshake (0x00): connection setup
//   - FrameEvent (0x01): host → engine events
//   - FrameBatch (0x02): engine → host mutation batches
//   - FrameControl (0x03): control messages (ping, resync)
//   - FrameAck (0x04): acknowledgment
//   - FrameError (0x05): error message
//
// # Encoding
//
//   - Varint: compact encoding for small integers (protobuf-style)
//   - ZigZag: signed integers encoded as unsigned varints
//   - Length-prefixed: strings and byte arrays prefixed with varint length
//   - Big-endian: fixed-width integers (uint16, uint32, uint64)
//
// # Outbound ops
//
// A Batch is a sequenced group of Ops (op.go). There are exactly six op
// kinds: Create, Update, Delete, Attach, BindEvent, UnbindEvent. Props
// travel as pre-serialized JSON; event-handler presence is carried
// separately via BindEvent/UnbindEvent rather than as a prop value.
//
// # Inbound events
//
// Event (event.go) carries a view, an opaque event name defined by the
// native widget, and a self-describing payload map — there is no fixed
// enum of event kinds, since native event taxonomy varies by host.
//
// # Handshake
//
//	Host                            Engine
//	  │                                │
//	  │──── ClientHello ─────────────>│
//	  │     (version, csrf, session)  │
//	  │                                │
//	  │<──── ServerHello ─────────────│
//	  │     (status, session, time)   │
//	  │                                │
//
// # Control Messages
//
//   - Ping/Pong: heartbeat for connection health
//   - ResyncRequest: host requests batches it missed after reconnect
//   - ResyncBatches: engine response replaying the missed batches in order
//   - Close: graceful session termination
//
// # File Structure
//
//   - varint.go: varint encoding/decoding
//   - encoder.go: binary encoder
//   - decoder.go: binary decoder
//   - frame.go: frame types and transport
//   - op.go: mutation op types and batch encoding
//   - event.go: inbound event envelope and self-describing value encoding
//   - handshake.go: handshake protocol
//   - control.go: control messages
//   - ack.go: acknowledgment
//   - error.go: error messages
package bridge

// Package ws provides real-time session synchronization over WebSocket.
//
// Two pieces live here:
//   - Hub: per-session group membership and fan-out. Delivery is
//     best-effort and at-most-once; a slow peer whose buffer fills is
//     dropped rather than allowed to stall the group.
//   - Gateway: the per-connection event loop tying the session store and
//     the hub together.
//
// Message Types (Client → Server):
//   - joinSession: enter a session group, creating the document if new
//   - codeChange: persist the full buffer, rebroadcast to peers
//   - languageChange: persist the language, rebroadcast to peers
//   - runResult: rebroadcast execution output to peers (never persisted)
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - initSession: current {code, language}, sent to the joiner only
//   - codeUpdate / languageUpdate: peer edits
//   - runResult: peer execution output
//   - pong, error
//
// Ordering: events from one connection are handled to completion in
// arrival order and enqueued to every peer in that order, so per-sender
// FIFO holds end-to-end. There is no cross-sender ordering; concurrent
// edits resolve by last write wins at the store.
//
// Example Usage:
//
//	gateway := ws.NewGateway(hub, store, logger)
//	router.GET("/socket", gateway.HandleConnection)
package ws

// Package main is the entry point for the collaborative editor backend.
//
// The server lets multiple browser clients co-edit one code buffer in
// real time and execute it against sandboxed, resource-limited docker
// containers, fanning captured output back out to session peers.
//
// Architecture:
//
//	Frontend (editor) → WebSocket gateway → Session store (SQLite)
//	                 → REST /api/run      → Docker sandbox
//
// The server provides:
//   - WebSocket session synchronization (join, edits, run results)
//   - REST execution endpoint with a hard outer timeout
//   - Automatic session expiry after the retention window
//   - Prometheus metrics, rate limiting, CORS
//
// Configuration is environment-driven (12-factor); see
// internal/infrastructure/config for the variable list and defaults.
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

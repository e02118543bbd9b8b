// Package session persists collaboration session documents.
//
// A session is one shared code buffer plus its language, keyed by a
// client-chosen opaque identifier. Documents are created lazily on first
// join, overwritten whole-field on every edit (last write wins), and
// expire once updated_at is older than the retention window.
//
// Components:
//   - Store: SQLite-backed get-or-create and partial update
//   - Reaper: background loop removing expired documents
//
// Expiry is enforced twice: the reaper deletes old rows asynchronously,
// and GetOrCreate treats an expired row as absent so a stale document is
// never handed to a joining client even between reaper passes.
//
// Example Usage:
//
//	store, err := session.Open(cfg.Path, cfg.Retention, logger)
//	store.StartReaper(cfg.ReapInterval)
//	defer store.Close()
package session

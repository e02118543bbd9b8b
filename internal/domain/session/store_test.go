package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairpad/backend/internal/infrastructure/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"), 720*time.Hour, logging.NewDefault())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func strptr(s string) *string { return &s }

func TestGetOrCreateDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "abc-123")
	require.NoError(t, err)

	assert.Equal(t, "abc-123", sess.SessionID)
	assert.Equal(t, DefaultLanguage, sess.Language)
	assert.Equal(t, "", sess.Code)
	assert.WithinDuration(t, time.Now(), sess.UpdatedAt, 5*time.Second)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "abc-123")
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "abc-123", Update{Code: strptr("int main() {}")}))

	sess, err := store.GetOrCreate(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "int main() {}", sess.Code)
}

func TestUpdateMergesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, "s1", Update{Code: strptr("print(1)")}))
	require.NoError(t, store.Update(ctx, "s1", Update{Language: strptr("python")}))

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", sess.Code)
	assert.Equal(t, "python", sess.Language)
}

func TestUpdateLastWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, "s1", Update{Code: strptr("first")}))
	require.NoError(t, store.Update(ctx, "s1", Update{Code: strptr("second")}))

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "second", sess.Code)
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(context.Background(), "never-seen", Update{Code: strptr("x")})
	assert.NoError(t, err)
}

func TestExpiredSessionTreatedAsNew(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "old", Update{Code: strptr("stale code")}))

	// Backdate past the retention window
	_, err = store.db.Exec(`UPDATE sessions SET updated_at = ? WHERE session_id = ?`,
		time.Now().UTC().Add(-721*time.Hour), "old")
	require.NoError(t, err)

	sess, err := store.GetOrCreate(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "", sess.Code)
	assert.Equal(t, DefaultLanguage, sess.Language)
}

func TestDeleteExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "fresh")
	require.NoError(t, err)
	_, err = store.GetOrCreate(ctx, "stale")
	require.NoError(t, err)

	_, err = store.db.Exec(`UPDATE sessions SET updated_at = ? WHERE session_id = ?`,
		time.Now().UTC().Add(-1000*time.Hour), "stale")
	require.NoError(t, err)

	count, err := store.DeleteExpired(ctx, time.Now().UTC().Add(-720*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var remaining int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&remaining))
	assert.Equal(t, 1, remaining)
}

func TestUpdateResetsExpiryClock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)

	_, err = store.db.Exec(`UPDATE sessions SET updated_at = ? WHERE session_id = ?`,
		time.Now().UTC().Add(-700*time.Hour), "s1")
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, "s1", Update{Code: strptr("touched")}))

	count, err := store.DeleteExpired(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
)

// recordingQuerier logs every statement. Queries fail with queryErr.
type recordingQuerier struct {
	stmts    []string
	queryErr error
}

func (q *recordingQuerier) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	q.stmts = append(q.stmts, query)
	return driver.RowsAffected(1), nil
}

func (q *recordingQuerier) QueryContext(_ context.Context, query string, _ ...any) (*sql.Rows, error) {
	q.stmts = append(q.stmts, "QUERY")
	return nil, q.queryErr
}

func (q *recordingQuerier) QueryRowContext(context.Context, string, ...any) *sql.Row {
	panic("QueryRowContext not expected")
}

const (
	userUUID = "4b7e6a52-3f0c-4c51-9d7e-1a2b3c4d5e6f"
	instUUID = "9a1f2e3d-4c5b-4a69-8877-665544332211"
)

func TestValidIDs(t *testing.T) {
	assert.True(t, validIDs())
	assert.True(t, validIDs(userUUID, instUUID))
	assert.False(t, validIDs(userUUID, "x"))
	assert.False(t, validIDs(""))
	assert.False(t, validIDs("urn:uuid:"+userUUID))
}

func TestInstitutionLinkDelete_MalformedIDNeverReachesDatabase(t *testing.T) {
	q := &recordingQuerier{}
	links := &institutionLinkRepo{q: q, savepoint: true}

	for range 2 {
		removed, err := links.Delete(t.Context(), userUUID, "x")
		require.NoError(t, err)
		assert.False(t, removed)
	}
	assert.Empty(t, q.stmts)

	removed, err := links.Delete(t.Context(), userUUID, instUUID)
	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, q.stmts, 1)
	assert.Contains(t, q.stmts[0], "DELETE FROM institution_links")
}

func TestListMembers_FailureRollsBackToSavepoint(t *testing.T) {
	queryErr := &pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"}

	q := &recordingQuerier{queryErr: queryErr}
	_, err := (&institutionLinkRepo{q: q, savepoint: true}).ListMembers(t.Context(), instUUID)
	assert.ErrorIs(t, err, queryErr)
	assert.Equal(t, []string{"SAVEPOINT members", "QUERY", "ROLLBACK TO SAVEPOINT members"}, q.stmts)

	q = &recordingQuerier{queryErr: queryErr}
	_, err = (&institutionLinkRepo{q: q}).ListMembers(t.Context(), instUUID)
	assert.ErrorIs(t, err, queryErr)
	assert.Equal(t, []string{"QUERY"}, q.stmts, "no savepoint outside a transaction")
}

func TestNotificationCreate_ReleasesSavepoint(t *testing.T) {
	q := &recordingQuerier{}
	err := (&notificationRepo{q: q, savepoint: true}).Create(t.Context(), domain.Notification{
		ID:        userUUID,
		UserID:    userUUID,
		Message:   "Nova cuidoteca disponível",
		Type:      domain.NotificationCuidotecaCreated,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, q.stmts, 3)
	assert.Equal(t, "SAVEPOINT notify", q.stmts[0])
	assert.Contains(t, q.stmts[1], "INSERT INTO notifications")
	assert.Equal(t, "RELEASE SAVEPOINT notify", q.stmts[2])
}

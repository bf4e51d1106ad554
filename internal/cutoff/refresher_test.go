// internal/cutoff/refresher_test.go
package cutoff

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/crs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	draws []crs.Draw
	err   error
	calls atomic.Int32
}

func (s *stubSource) Fetch(context.Context) ([]crs.Draw, error) {
	s.calls.Add(1)
	return s.draws, s.err
}

func expectSave(mock sqlmock.Sqlmock, draws []crs.Draw) {
	mock.ExpectBegin()
	for range draws {
		mock.ExpectExec("INSERT INTO crs_draws").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

func TestRefresher_Refresh(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, mr := setupTestRedis(t)
	store := newTestStore(t, db, rdb)
	src := &stubSource{draws: storedDraws()}

	expectSave(mock, src.draws)

	r := NewRefresher(src, store, "General", logger.NewTestLogger(t))
	fixed := time.Date(2025, 3, 22, 6, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	res, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 485, res.Cutoff.Score)
	assert.Equal(t, SourceFeed, res.Cutoff.Source)
	assert.Equal(t, 3, res.DrawsStored)
	assert.Equal(t, fixed, res.RefreshedAt)
	assert.NoError(t, mock.ExpectationsWereMet())

	c, err := store.LatestCutoff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 485, c.Score)
	assert.Equal(t, SourceCache, c.Source)
	assert.True(t, mr.Exists(keyRecent))
}

func TestRefresher_FeedFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, mr := setupTestRedis(t)
	src := &stubSource{err: errors.NewDrawFeedTimeoutError("http://feed")}

	r := NewRefresher(src, newTestStore(t, db, rdb), "General", logger.NewTestLogger(t))
	_, err := r.Refresh(context.Background())

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDrawFeedTimeout, stdErr.Code)
	assert.False(t, mr.Exists(keyLatest))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresher_Run(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, _ := setupTestRedis(t)
	src := &stubSource{draws: storedDraws()[:1]}

	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 5; i++ {
		expectSave(mock, src.draws)
	}

	r := NewRefresher(src, newTestStore(t, db, rdb), "General", logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 20*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

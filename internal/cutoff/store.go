// internal/cutoff/store.go
package cutoff

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/crs"

	"github.com/redis/go-redis/v9"
)

const (
	keyLatest = "crs:cutoff:latest"
	keyRecent = "crs:draws:recent"
)

// Cutoff sources.
const (
	SourceCache    = "cache"
	SourceDatabase = "database"
	SourceFeed     = "feed"
	SourceInput    = "input"
)

// Cutoff is the score threshold applicants are classified against.
type Cutoff struct {
	Score      int       `json:"score"`
	DrawNumber int       `json:"drawNumber"`
	DrawDate   time.Time `json:"drawDate"`
	DrawType   string    `json:"drawType"`
	Source     string    `json:"source"`
}

// CutoffFromDraw wraps a draw as a cutoff.
func CutoffFromDraw(d crs.Draw, source string) Cutoff {
	return Cutoff{Score: d.Score, DrawNumber: d.Number, DrawDate: d.Date, DrawType: d.Type, Source: source}
}

// StoreConfig tunes the draw store.
type StoreConfig struct {
	DrawType    string
	CacheTTL    time.Duration
	RecentLimit int
}

// Store persists draws in Postgres and caches the current cutoff in Redis.
// Redis is an accelerator: read failures fall through to Postgres.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	config StoreConfig
	log    logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, cfg StoreConfig, log logger.Logger) *Store {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 10
	}
	return &Store{
		db:     db,
		redis:  rdb,
		config: cfg,
		log:    log.WithFields(map[string]interface{}{"component": "cutoff-store"}),
	}
}

const upsertDrawSQL = `
INSERT INTO crs_draws (draw_number, draw_date, draw_type, score, invitations, fetched_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (draw_number) DO UPDATE SET
    draw_date = EXCLUDED.draw_date,
    draw_type = EXCLUDED.draw_type,
    score = EXCLUDED.score,
    invitations = EXCLUDED.invitations,
    fetched_at = now()`

const recentDrawsSQL = `
SELECT draw_number, draw_date, draw_type, score, invitations
FROM crs_draws
ORDER BY draw_date DESC, draw_number DESC
LIMIT $1`

// SaveDraws upserts draws in one transaction and returns how many were written.
func (s *Store) SaveDraws(ctx context.Context, draws []crs.Draw) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback()

	for _, d := range draws {
		if _, err := tx.ExecContext(ctx, upsertDrawSQL, d.Number, d.Date, d.Type, d.Score, d.Invitations); err != nil {
			return 0, errors.NewDatabaseInsertFailedError(fmt.Errorf("draw %d: %w", d.Number, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.NewDatabaseInsertFailedError(err)
	}
	return len(draws), nil
}

// CacheLatest stores the cutoff and the recent draws under one TTL.
func (s *Store) CacheLatest(ctx context.Context, c Cutoff, recent []crs.Draw) error {
	if len(recent) > s.config.RecentLimit {
		recent = recent[:s.config.RecentLimit]
	}
	cutoffJSON, err := json.Marshal(c)
	if err != nil {
		return err
	}
	recentJSON, err := json.Marshal(recent)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, keyLatest, cutoffJSON, s.config.CacheTTL)
	pipe.Set(ctx, keyRecent, recentJSON, s.config.CacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}

// LatestCutoff returns the cached cutoff, or derives it from the stored draws
// and re-warms the cache. It fails with CUTOFF_UNAVAILABLE when neither has one.
func (s *Store) LatestCutoff(ctx context.Context) (Cutoff, error) {
	var c Cutoff
	if ok := s.cacheGet(ctx, keyLatest, &c); ok {
		c.Source = SourceCache
		return c, nil
	}

	draws, err := s.queryRecent(ctx)
	if err != nil {
		return Cutoff{}, err
	}
	d, ok := crs.SelectCutoff(draws, s.config.DrawType)
	if !ok {
		return Cutoff{}, errors.NewCutoffUnavailableError("no draws stored")
	}

	c = CutoffFromDraw(d, SourceDatabase)
	if err := s.CacheLatest(ctx, c, draws); err != nil {
		s.log.Warn("failed to re-warm cutoff cache", map[string]interface{}{"error": err.Error()})
	}
	return c, nil
}

// RecentDraws returns up to RecentLimit draws, newest first. An empty result
// is not an error.
func (s *Store) RecentDraws(ctx context.Context) ([]crs.Draw, error) {
	var draws []crs.Draw
	if ok := s.cacheGet(ctx, keyRecent, &draws); ok {
		return draws, nil
	}
	return s.queryRecent(ctx)
}

func (s *Store) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	val, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			s.log.Warn("cutoff cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		s.log.Warn("discarding corrupt cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	return true
}

func (s *Store) queryRecent(ctx context.Context) ([]crs.Draw, error) {
	rows, err := s.db.QueryContext(ctx, recentDrawsSQL, s.config.RecentLimit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("recent_draws", err)
	}
	defer rows.Close()

	var draws []crs.Draw
	for rows.Next() {
		var d crs.Draw
		if err := rows.Scan(&d.Number, &d.Date, &d.Type, &d.Score, &d.Invitations); err != nil {
			return nil, errors.NewQueryExecutionFailedError("recent_draws", err)
		}
		draws = append(draws, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("recent_draws", err)
	}
	return draws, nil
}

// internal/cutoff/refresher.go
package cutoff

import (
	"context"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/common/metrics"
	"immigration-workers/internal/crs"
)

// RefreshResult summarises one feed refresh.
type RefreshResult struct {
	Cutoff      Cutoff    `json:"cutoff"`
	DrawsStored int       `json:"drawsStored"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Refresher pulls the draw feed into the store.
type Refresher struct {
	source   DrawSource
	store    *Store
	drawType string
	log      logger.Logger
	now      func() time.Time
}

func NewRefresher(source DrawSource, store *Store, drawType string, log logger.Logger) *Refresher {
	return &Refresher{
		source:   source,
		store:    store,
		drawType: drawType,
		log:      log.WithFields(map[string]interface{}{"component": "cutoff-refresher"}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Refresh fetches the feed, upserts every draw and caches the new cutoff.
// A cache write failure is logged; the draws are already durable.
func (r *Refresher) Refresh(ctx context.Context) (*RefreshResult, error) {
	res, err := r.refresh(ctx)
	if err != nil {
		metrics.CRSCutoffRefresh.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.CRSCutoffRefresh.WithLabelValues("success").Inc()
	metrics.CRSCutoffCurrent.Set(float64(res.Cutoff.Score))
	return res, nil
}

func (r *Refresher) refresh(ctx context.Context) (*RefreshResult, error) {
	draws, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := r.store.SaveDraws(ctx, draws)
	if err != nil {
		return nil, err
	}

	d, ok := crs.SelectCutoff(draws, r.drawType)
	if !ok {
		return nil, errors.NewDrawFeedEmptyError("feed returned no draws")
	}
	c := CutoffFromDraw(d, SourceFeed)

	recent := append([]crs.Draw(nil), draws...)
	crs.SortDrawsNewestFirst(recent)
	if err := r.store.CacheLatest(ctx, c, recent); err != nil {
		r.log.Warn("failed to cache cutoff", map[string]interface{}{"error": err.Error()})
	}

	r.log.Info("cutoff refreshed", map[string]interface{}{
		"cutoff":      c.Score,
		"drawNumber":  c.DrawNumber,
		"drawType":    c.DrawType,
		"drawsStored": stored,
	})
	return &RefreshResult{Cutoff: c, DrawsStored: stored, RefreshedAt: r.now()}, nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
			r.log.Error("cutoff refresh failed", map[string]interface{}{"error": err.Error()})
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

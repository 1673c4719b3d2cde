package storage

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"portalku_backend/internals/configs"
	"portalku_backend/internals/helpers/metrics"
)

// ReferenceChecker reports whether some table still points at bucket/key.
type ReferenceChecker interface {
	HasReference(ctx context.Context, bucket, key string) (bool, error)
}

type ReferenceFunc func(ctx context.Context, bucket, key string) (bool, error)

func (f ReferenceFunc) HasReference(ctx context.Context, bucket, key string) (bool, error) {
	return f(ctx, bucket, key)
}

type ReaperConfig struct {
	Schedule  string
	Grace     time.Duration
	DryRun    bool
	BatchSize int
}

func ReaperConfigFromEnv() ReaperConfig {
	return ReaperConfig{
		Schedule:  configs.String("REAPER_CRON"),
		Grace:     configs.Duration("REAPER_GRACE"),
		DryRun:    configs.Bool("REAPER_DRY_RUN"),
		BatchSize: 500,
	}
}

type Reaper struct {
	Store  ObjectStore
	Ledger Ledger
	Refs   []ReferenceChecker
	Cfg    ReaperConfig
	Now    func() time.Time
}

type ReapStats struct {
	Scanned    int
	Referenced int
	Removed    int
	Failed     int
}

func NewReaper(store ObjectStore, ledger Ledger, cfg ReaperConfig, refs ...ReferenceChecker) *Reaper {
	if cfg.Grace <= 0 {
		cfg.Grace = time.Hour
	}
	return &Reaper{Store: store, Ledger: ledger, Refs: refs, Cfg: cfg, Now: time.Now}
}

func (r *Reaper) referenced(ctx context.Context, bucket, key string) (bool, error) {
	for _, rc := range r.Refs {
		ok, err := rc.HasReference(ctx, bucket, key)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// RunOnce sweeps markers older than the grace period. Referenced objects keep
// living and lose their marker; unreferenced ones are removed.
func (r *Reaper) RunOnce(ctx context.Context) (ReapStats, error) {
	var st ReapStats
	threshold := r.Now().Add(-r.Cfg.Grace)
	rows, err := r.Ledger.Stale(ctx, threshold, r.Cfg.BatchSize)
	if err != nil {
		return st, err
	}
	st.Scanned = len(rows)

	for _, row := range rows {
		ref, err := r.referenced(ctx, row.Bucket, row.ObjectKey)
		if err != nil {
			log.Printf("[ORPHAN-REAPER] check %s/%s gagal: %v", row.Bucket, row.ObjectKey, err)
			st.Failed++
			continue
		}
		if ref {
			st.Referenced++
			if !r.Cfg.DryRun {
				_ = r.Ledger.Forget(ctx, row.ID)
			}
			continue
		}
		if r.Cfg.DryRun {
			log.Printf("[ORPHAN-REAPER] DRY-RUN would remove %s/%s", row.Bucket, row.ObjectKey)
			st.Removed++
			continue
		}
		if err := r.Store.Remove(ctx, row.Bucket, row.ObjectKey); err != nil {
			log.Printf("[ORPHAN-REAPER] remove %s/%s gagal: %v", row.Bucket, row.ObjectKey, err)
			st.Failed++
			continue
		}
		_ = r.Ledger.Forget(ctx, row.ID)
		metrics.OrphansReaped.Inc()
		st.Removed++
	}

	if st.Scanned > 0 {
		log.Printf("[ORPHAN-REAPER] scanned=%d referenced=%d removed=%d failed=%d dry=%v",
			st.Scanned, st.Referenced, st.Removed, st.Failed, r.Cfg.DryRun)
	}
	return st, nil
}

// Start schedules RunOnce; overlapping runs are skipped.
func (r *Reaper) Start() (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(r.Cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			log.Printf("[ORPHAN-REAPER] error: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[ORPHAN-REAPER] started schedule=%q grace=%s dryRun=%v", r.Cfg.Schedule, r.Cfg.Grace, r.Cfg.DryRun)
	c.Start()
	return c, nil
}

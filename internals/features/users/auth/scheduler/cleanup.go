package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type blacklistCleaner interface {
	CleanupBlacklist(ctx context.Context) (int64, error)
}

// StartBlacklistCleanupScheduler hapus token_blacklist yang sudah kadaluarsa sesuai jadwal cron.
func StartBlacklistCleanupScheduler(svc blacklistCleaner, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist...")
		n, err := svc.CleanupBlacklist(ctx)
		switch {
		case err != nil:
			log.Printf("[CLEANUP ERROR] Gagal hapus token: %v", err)
		case n > 0:
			log.Printf("[CLEANUP] %d token kadaluarsa dihapus", n)
		default:
			log.Println("[CLEANUP] Tidak ada token yang memenuhi syarat dihapus")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[CLEANUP] token_blacklist scheduler aktif schedule=%q", schedule)
	return c, nil
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/robfig/cron/v3"

	"portalku_backend/internals/configs"
	database "portalku_backend/internals/databases"
	scheduler "portalku_backend/internals/features/users/auth/scheduler"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/reporting"
	"portalku_backend/internals/helpers/storage"
	middlewares "portalku_backend/internals/middlewares"
	routes "portalku_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	reporting.Init(configs.String("APP_VERSION"))
	defer reporting.Close()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               int(configs.Int64("UPLOAD_MAX_BYTES")) + 1<<20,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"}, // sesuaikan dengan CIDR proxy jika perlu
		ErrorHandler:            errorHandler,
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	if configs.Bool("DB_AUTO_MIGRATE") {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatalf("❌ migrate gagal: %v", err)
		}
	}
	database.WarmUpQueries()

	ctx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := storage.NewFromEnv(ctx)
	cancelInit()
	if err != nil {
		log.Fatalf("❌ storage init gagal: %v", err)
	}

	deps := routes.NewDeps(database.DB, store)
	sqlDB, err := database.DB.DB()
	if err != nil {
		log.Fatalf("❌ sql.DB tidak tersedia: %v", err)
	}
	routes.SetupRoutes(app, deps, sqlDB)

	// ⏱ scheduler setelah DB siap
	blacklistCron, err := scheduler.StartBlacklistCleanupScheduler(deps.Auth, configs.String("TOKEN_BLACKLIST_CRON"))
	if err != nil {
		log.Printf("[SCHEDULER] blacklist cleanup tidak jalan: %v", err)
	}
	reaperCron, err := deps.Reaper(storage.ReaperConfigFromEnv()).Start()
	if err != nil {
		log.Printf("[REAPER] tidak jalan: %v", err)
	}
	// role yang diubah portaladmin sampai ke cache principal server ini
	roleSyncCron, err := deps.RoleSync.Start(configs.String("ROLE_SYNC_CRON"))
	if err != nil {
		log.Printf("[ROLE-SYNC] tidak jalan: %v", err)
	}

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 30 * time.Second
	app.Server().WriteTimeout = 60 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.String("PORT")
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: berhenti terima request, stop cron, baru tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.Duration("SHUTDOWN_TIMEOUT"))
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)

	stopCron(blacklistCron)
	stopCron(reaperCron)
	stopCron(roleSyncCron)
	deps.Close()
	database.Close()
}

func stopCron(c *cron.Cron) {
	if c == nil {
		return
	}
	<-c.Stop().Done()
}

// errorHandler menangkap error yang lolos dari handler (404 route, body limit, panic yang sudah dipulihkan).
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
	}
	if status >= fiber.StatusInternalServerError {
		reporting.Error(err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
			"reqid":  c.Locals("reqid"),
		}, nil)
	}
	return helper.JsonAppError(c, err)
}

package configs

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	JWTSecret      string
	GoogleClientID string

	// Conf memegang semua konfigurasi typed (default + ENV).
	Conf = newConf()
)

func newConf() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_NAME", "portalku")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	v.SetDefault("JWT_ACCESS_TTL", 24*time.Hour)
	v.SetDefault("JWT_EXP_SKEW", 30*time.Second)
	v.SetDefault("BLACKLIST_TTL_FALLBACK", 2*time.Minute)
	v.SetDefault("TOKEN_BLACKLIST_CRON", "30 3 * * *")
	v.SetDefault("ROLE_SYNC_CRON", "@every 5s")

	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_STATEMENT_TIMEOUT_MS", 3000)
	v.SetDefault("DB_SLOW_THRESHOLD", 200*time.Millisecond)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("STORAGE_DRIVER", "oss")
	v.SetDefault("ALI_OSS_BUCKET_PREFIX", "portalku-")
	v.SetDefault("B2_BUCKET_PREFIX", "portalku-")
	v.SetDefault("UPLOAD_MAX_BYTES", int64(20*1024*1024))

	v.SetDefault("REAPER_CRON", "*/15 * * * *")
	v.SetDefault("REAPER_GRACE", time.Hour)
	v.SetDefault("REAPER_DRY_RUN", false)

	v.SetDefault("IMAGE_WEBP_ENABLED", true)
	v.SetDefault("IMAGE_WEBP_MAX_W", 1600)
	v.SetDefault("IMAGE_WEBP_MAX_H", 1600)
	v.SetDefault("IMAGE_WEBP_QUALITY", 80)

	v.AutomaticEnv()
	return v
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env tidak ditemukan, pakai ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, pakai ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	GoogleClientID = GetEnv("GOOGLE_CLIENT_ID")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}
	if GoogleClientID == "" {
		log.Println("⚠️ GOOGLE_CLIENT_ID kosong, login Google nonaktif")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func String(key string) string          { return strings.TrimSpace(Conf.GetString(key)) }
func Int(key string) int                { return Conf.GetInt(key) }
func Int64(key string) int64            { return Conf.GetInt64(key) }
func Bool(key string) bool              { return Conf.GetBool(key) }
func Duration(key string) time.Duration { return Conf.GetDuration(key) }

// AppLocation dipakai untuk menyusun deadline dari input tanggal + jam + menit.
func AppLocation() *time.Location {
	name := String("APP_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[CONFIG] APP_TIMEZONE %q tidak valid, fallback UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

package storage

import (
	"context"
	"fmt"
	"log"
	"strings"

	"portalku_backend/internals/configs"
)

// NewFromEnv memilih driver berdasarkan STORAGE_DRIVER (oss | b2 | memory).
func NewFromEnv(ctx context.Context) (ObjectStore, error) {
	driver := strings.ToLower(configs.String("STORAGE_DRIVER"))
	switch driver {
	case "", "oss":
		return NewOSSStoreFromEnv()
	case "b2":
		return NewB2StoreFromEnv(ctx)
	case "memory":
		log.Println("[STORAGE] ⚠️ memory driver aktif, file hilang saat restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/radityasp/umkm-katalog/internal/config"
	"github.com/radityasp/umkm-katalog/internal/database"
	"github.com/radityasp/umkm-katalog/internal/handler"
	"github.com/radityasp/umkm-katalog/internal/queue"
	"github.com/radityasp/umkm-katalog/internal/repository"
	"github.com/radityasp/umkm-katalog/internal/router"
	"github.com/radityasp/umkm-katalog/internal/storage"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	// Product store: flat JSON file or MySQL, selected by STORE_DRIVER.
	var store repository.ProductStore
	switch cfg.StoreDriver {
	case "mysql":
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("mysql connect: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Fatalf("mysql schema: %v", err)
		}
		cancel()
		store = repository.NewMySQLStore(db)
	case "file":
		store = repository.NewFileStore(cfg.ProductsFile)
	default:
		log.Fatalf("unknown STORE_DRIVER %q (want file or mysql)", cfg.StoreDriver)
	}

	e := echo.New()

	// Image storage: local disk (served under /uploads) or S3-compatible
	// object store, selected by STORAGE_DRIVER.
	var imgStore storage.ImageStorage
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatalf("object storage: %v", err)
		}
		imgStore = s3
	case "local":
		local, err := storage.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			log.Fatalf("local storage: %v", err)
		}
		imgStore = local
		router.RegisterUploads(e, cfg.UploadDir)
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q (want local or s3)", cfg.StorageDriver)
	}

	// Redis caches the public product list; nil client disables caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, list caching disabled")
	}

	auth := handler.NewAuthHandler(cfg)
	products := handler.NewProductHandler(store, imgStore, rdb, time.Duration(cfg.CacheTTLSec)*time.Second)

	router.RegisterRoutes(e)
	router.RegisterAPI(e, auth, products, cfg.JWTSecret)

	// Optional consumer that turns orphaned-image diagnostics into log lines.
	if cfg.CleanupConsumer {
		go func() {
			if err := queue.StartCleanupConsumer(); err != nil {
				log.Printf("cleanup consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s, storage=%s)", addr, cfg.Env, cfg.StoreDriver, cfg.StorageDriver)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
